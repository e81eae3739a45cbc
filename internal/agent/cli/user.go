package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/agent/api"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
)

// NewUserCmd создаёт группу команд для работы с пользователями.
//
// Примеры:
//
//	schedctl user create --name Alice --email alice@example.com
//	schedctl user list --limit 20
//	schedctl user update <id> --email alice@corp.example.com
//	schedctl user meetings <id>
func NewUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Управление пользователями",
	}

	cmd.AddCommand(
		userCreateCmd(app),
		userGetCmd(app),
		userListCmd(app),
		userUpdateCmd(app),
		userDeleteCmd(app),
		userMeetingsCmd(app),
	)
	return cmd
}

// addPageFlags регистрирует --offset/--limit. 0 — значение сервера по умолчанию.
func addPageFlags(cmd *cobra.Command, p *api.Page) {
	cmd.Flags().IntVar(&p.Offset, "offset", 0, "number of records to skip")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "max records to return (server default when 0)")
}

func userCreateCmd(app *App) *cobra.Command {
	var req models.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать пользователя",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Name == "" || req.Email == "" {
				return errors.New("--name and --email are required")
			}

			u, err := NewAPIClient(app.ServerURL).CreateUser(req)
			if err != nil {
				return err
			}
			return app.printUser(cmd.OutOrStdout(), u)
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "user name")
	cmd.Flags().StringVar(&req.Email, "email", "", "user email (unique)")
	return cmd
}

func userGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Показать пользователя",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := NewAPIClient(app.ServerURL).GetUser(args[0])
			if err != nil {
				return err
			}
			return app.printUser(cmd.OutOrStdout(), u)
		},
	}
}

func userListCmd(app *App) *cobra.Command {
	var page api.Page

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Список пользователей (новые первыми)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, total, err := NewAPIClient(app.ServerURL).ListUsers(page)
			if err != nil {
				return err
			}
			return app.printUsers(cmd.OutOrStdout(), list, total)
		},
	}

	addPageFlags(cmd, &page)
	return cmd
}

func userUpdateCmd(app *App) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Изменить имя и/или email пользователя",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req models.UpdateUserRequest
			// передаём только явно заданные флаги
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("email") {
				req.Email = &email
			}
			if req.Empty() {
				return errors.New("nothing to update: set --name and/or --email")
			}

			u, err := NewAPIClient(app.ServerURL).UpdateUser(args[0], req)
			if err != nil {
				return err
			}
			return app.printUser(cmd.OutOrStdout(), u)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&email, "email", "", "new email")
	return cmd
}

func userDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить пользователя вместе со всеми его встречами",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := NewAPIClient(app.ServerURL).DeleteUser(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", args[0])
			return nil
		},
	}
}

func userMeetingsCmd(app *App) *cobra.Command {
	var page api.Page

	cmd := &cobra.Command{
		Use:   "meetings <id>",
		Short: "Встречи пользователя",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, total, err := NewAPIClient(app.ServerURL).ListUserMeetings(args[0], page)
			if err != nil {
				return err
			}
			return app.printMeetings(cmd.OutOrStdout(), list, total)
		},
	}

	addPageFlags(cmd, &page)
	return cmd
}
