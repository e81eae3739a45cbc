package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/agent/config"
)

// NewConfigCmd создаёт группу команд для локальных настроек CLI.
//
// Пример использования:
//
//	schedctl config set-server http://scheduler.local:8080
//	schedctl config show
func NewConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Локальные настройки CLI",
	}

	setServer := &cobra.Command{
		Use:   "set-server <url>",
		Short: "Сохранить адрес сервера по умолчанию",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := config.NormalizeServer(args[0])
			if err != nil {
				return err
			}

			app.Settings.Server = server
			if err := SaveSettings(app.SettingsPath, app.Settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "server set to %s (%s)\n", server, app.SettingsPath)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Показать текущие настройки",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "settings_file=%s\nserver=%s\n", app.SettingsPath, app.ServerURL)
		},
	}

	cmd.AddCommand(setServer, show)
	return cmd
}
