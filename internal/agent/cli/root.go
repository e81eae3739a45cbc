// Package cli реализует командный интерфейс (CLI) клиента планировщика встреч.
//
// Пакет отвечает за:
//   - определение root-команды и набора подкоманд;
//   - разбор аргументов и флагов командной строки;
//   - загрузку локальных настроек (адрес сервера) из конфигурационного файла;
//   - выполнение команд и вывод результата пользователю (таблица или JSON).
//
// Точка входа пакета — функция Execute.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/agent/config"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// App содержит состояние CLI-приложения, разделяемое между командами.
//
// Экземпляр App создаётся при построении root-команды и передаётся в подкоманды.
type App struct {
	// ServerURL — базовый URL сервера (например, "http://127.0.0.1:8080").
	ServerURL string
	// Output — формат вывода: table|json.
	Output string

	// SettingsPath — путь к файлу с настройками.
	SettingsPath string
	// Settings — загруженные настройки. nil до PersistentPreRunE.
	Settings *config.Settings
}

// NewRootCmd создаёт root-команду CLI и регистрирует подкоманды.
//
// buildVersion и buildDate используются командой version.
// В PersistentPreRunE загружаются настройки: адрес сервера из файла
// применяется, только если флаг --server не задан явно.
func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:   "schedctl",
		Short: "schedctl — CLI планировщика встреч",
		Long: `schedctl — клиент HTTP API планировщика встреч.

Команды:
  user      Пользователи: create, get, list, update, delete, meetings
  meeting   Встречи: create, get, list, update, delete
  config    Локальные настройки (адрес сервера)
  version   Версия клиента, --check опрашивает сервер

Примеры:
  schedctl config set-server http://127.0.0.1:8080
  schedctl user create --name Alice --email alice@example.com
  schedctl meeting create --user <uuid> --title Standup \
      --start 2024-01-01T09:00:00Z --end 2024-01-01T10:00:00Z
  schedctl meeting list --user <uuid> --from 2024-01-01 --to 2024-01-31 -o json
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Output != OutputTable && app.Output != OutputJSON {
				return fmt.Errorf("--output must be %s|%s", OutputTable, OutputJSON)
			}

			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			app.SettingsPath = p

			settings, err := config.Load(app.SettingsPath)
			if err != nil {
				return fmt.Errorf("load settings %s: %w", p, err)
			}
			app.Settings = settings

			if !cmd.Flags().Changed("server") && settings.Server != "" {
				app.ServerURL = settings.Server
			}
			return nil
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", config.DefaultServer, "server base URL")
	cmd.PersistentFlags().StringVarP(&app.Output, "output", "o", OutputTable, "output format: table|json")

	cmd.AddCommand(NewUserCmd(app))
	cmd.AddCommand(NewMeetingCmd(app))
	cmd.AddCommand(NewConfigCmd(app))
	cmd.AddCommand(NewVersionCmd(app, buildVersion, buildDate))

	return cmd
}

// Execute запускает обработку CLI-команд.
//
// При ошибке выполнения команды сообщение выводится в stderr, после чего процесс
// завершается с кодом 1 (os.Exit(1)).
func Execute(buildVersion, buildDate string) {
	if err := NewRootCmd(buildVersion, buildDate).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
