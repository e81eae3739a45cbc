package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/agent/api"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
)

// NewMeetingCmd создаёт группу команд для работы со встречами.
//
// Время задаётся в RFC 3339 (2024-01-01T09:00:00Z). Интервалы полуоткрытые:
// встреча 09:00–10:00 не пересекается со встречей 10:00–11:00.
//
// Примеры:
//
//	schedctl meeting create --user <uuid> --title Standup --start 2024-01-01T09:00:00Z --end 2024-01-01T10:00:00Z
//	schedctl meeting list --user <uuid> --from 2024-01-01 --to 2024-01-07
//	schedctl meeting update <id> --start 2024-01-01T10:00:00Z --end 2024-01-01T11:00:00Z
func NewMeetingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "meeting",
		Aliases: []string{"meetings"},
		Short:   "Управление встречами",
	}

	cmd.AddCommand(
		meetingCreateCmd(app),
		meetingGetCmd(app),
		meetingListCmd(app),
		meetingUpdateCmd(app),
		meetingDeleteCmd(app),
	)
	return cmd
}

func parseTimeFlag(name, v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be RFC 3339 (e.g. 2024-01-01T09:00:00Z): %w", name, err)
	}
	return t, nil
}

func meetingCreateCmd(app *App) *cobra.Command {
	var userID, title, start, end string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать встречу",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" || title == "" || start == "" || end == "" {
				return errors.New("--user, --title, --start and --end are required")
			}
			st, err := parseTimeFlag("start", start)
			if err != nil {
				return err
			}
			et, err := parseTimeFlag("end", end)
			if err != nil {
				return err
			}

			m, err := NewAPIClient(app.ServerURL).CreateMeeting(models.CreateMeetingRequest{
				UserID:    userID,
				Title:     title,
				StartTime: st,
				EndTime:   et,
			})
			if err != nil {
				return err
			}
			return app.printMeeting(cmd.OutOrStdout(), m)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "owner user ID")
	cmd.Flags().StringVar(&title, "title", "", "meeting title (3..255 chars)")
	cmd.Flags().StringVar(&start, "start", "", "start time, RFC 3339")
	cmd.Flags().StringVar(&end, "end", "", "end time, RFC 3339")
	return cmd
}

func meetingGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Показать встречу",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := NewAPIClient(app.ServerURL).GetMeeting(args[0])
			if err != nil {
				return err
			}
			return app.printMeeting(cmd.OutOrStdout(), m)
		},
	}
}

func meetingListCmd(app *App) *cobra.Command {
	var f api.MeetingFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Список встреч по startTime",
		Long: `Список встреч, отсортированный по startTime.

--from ограничивает startTime снизу, --to ограничивает endTime сверху
(дата YYYY-MM-DD означает конец этого дня).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, total, err := NewAPIClient(app.ServerURL).ListMeetings(f)
			if err != nil {
				return err
			}
			return app.printMeetings(cmd.OutOrStdout(), list, total)
		},
	}

	cmd.Flags().StringVar(&f.UserID, "user", "", "filter by owner user ID")
	cmd.Flags().StringVar(&f.StartDate, "from", "", "startTime >= from (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&f.EndDate, "to", "", "endTime <= to (YYYY-MM-DD or RFC 3339)")
	addPageFlags(cmd, &f.Page)
	return cmd
}

func meetingUpdateCmd(app *App) *cobra.Command {
	var title, start, end string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Изменить название и/или время встречи",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req models.UpdateMeetingRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("start") {
				st, err := parseTimeFlag("start", start)
				if err != nil {
					return err
				}
				req.StartTime = &st
			}
			if cmd.Flags().Changed("end") {
				et, err := parseTimeFlag("end", end)
				if err != nil {
					return err
				}
				req.EndTime = &et
			}
			if req.Empty() {
				return errors.New("nothing to update: set --title, --start and/or --end")
			}

			m, err := NewAPIClient(app.ServerURL).UpdateMeeting(args[0], req)
			if err != nil {
				return err
			}
			return app.printMeeting(cmd.OutOrStdout(), m)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&start, "start", "", "new start time, RFC 3339")
	cmd.Flags().StringVar(&end, "end", "", "new end time, RFC 3339")
	return cmd
}

func meetingDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить встречу",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := NewAPIClient(app.ServerURL).DeleteMeeting(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted meeting %s\n", args[0])
			return nil
		},
	}
}
