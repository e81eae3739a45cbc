package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
)

const timeLayout = "2006-01-02 15:04 MST"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func (a *App) printUser(w io.Writer, u models.User) error {
	if a.Output == OutputJSON {
		return printJSON(w, u)
	}
	fmt.Fprintf(w, "ID: %s\nName: %s\nEmail: %s\nCreatedAt: %s\nUpdatedAt: %s\n",
		u.ID, u.Name, u.Email, fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt))
	return nil
}

func (a *App) printUsers(w io.Writer, list []models.User, total int) error {
	if a.Output == OutputJSON {
		return printJSON(w, models.UserListResponse{Status: models.StatusSuccess, Data: list, Total: total})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCREATED")
	for _, u := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, fmtTime(u.CreatedAt))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "shown %d of %d\n", len(list), total)
	return nil
}

func (a *App) printMeeting(w io.Writer, m models.Meeting) error {
	if a.Output == OutputJSON {
		return printJSON(w, m)
	}
	fmt.Fprintf(w, "ID: %s\nTitle: %s\nStart: %s\nEnd: %s\nUserID: %s\n",
		m.ID, m.Title, fmtTime(m.StartTime), fmtTime(m.EndTime), m.UserID)
	if m.User != nil {
		fmt.Fprintf(w, "Owner: %s <%s>\n", m.User.Name, m.User.Email)
	}
	return nil
}

func (a *App) printMeetings(w io.Writer, list []models.Meeting, total int) error {
	if a.Output == OutputJSON {
		return printJSON(w, models.MeetingListResponse{Status: models.StatusSuccess, Data: list, Total: total})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTART\tEND\tOWNER")
	for _, m := range list {
		owner := m.UserID
		if m.User != nil {
			owner = m.User.Email
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Title, fmtTime(m.StartTime), fmtTime(m.EndTime), owner)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "shown %d of %d\n", len(list), total)
	return nil
}
