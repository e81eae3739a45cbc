package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCmd создаёт команду вывода версии клиента, даты сборки и версии Go.
// С --check дополнительно опрашивает /health сервера.
//
// Пример использования:
//
//	schedctl version
//	schedctl version --check
func NewVersionCmd(app *App, buildVersion, buildDate string) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Показать версию клиента и состояние сервера",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version=%s\nbuild_date=%s\ngo=%s %s/%s\n",
				buildVersion, buildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH,
			)
			if !check {
				return nil
			}

			h, err := NewAPIClient(app.ServerURL).Health()
			if err != nil {
				fmt.Fprintf(out, "server=%s status=unavailable\n", app.ServerURL)
				return err
			}
			fmt.Fprintf(out, "server=%s status=%s\n", app.ServerURL, h.Status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "проверить доступность сервера")
	return cmd
}
