package api

import (
	"net/url"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
)

// MeetingFilter — фильтры GET /api/meetings. Пустые поля не передаются.
//
// StartDate и EndDate передаются как есть: YYYY-MM-DD или RFC 3339.
type MeetingFilter struct {
	UserID    string
	StartDate string
	EndDate   string
	Page      Page
}

// CreateMeeting создаёт встречу: POST /api/meetings.
// Пересечение с другой встречей пользователя — *APIError с кодом SCHEDULING_CONFLICT.
func (c *Client) CreateMeeting(req models.CreateMeetingRequest) (models.Meeting, error) {
	var resp models.MeetingResponse
	err := c.PostJSON("/api/meetings", req, &resp)
	return resp.Data, err
}

// GetMeeting возвращает встречу вместе с владельцем.
func (c *Client) GetMeeting(id string) (models.Meeting, error) {
	var resp models.MeetingResponse
	err := c.GetJSON("/api/meetings/"+url.PathEscape(id), &resp)
	return resp.Data, err
}

// ListMeetings возвращает страницу встреч по фильтру и общее количество.
func (c *Client) ListMeetings(f MeetingFilter) ([]models.Meeting, int, error) {
	q := url.Values{}
	if f.UserID != "" {
		q.Set("userId", f.UserID)
	}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	f.Page.encode(q)

	var resp models.MeetingListResponse
	err := c.GetJSON(withQuery("/api/meetings", q), &resp)
	return resp.Data, resp.Total, err
}

// UpdateMeeting частично обновляет встречу: PUT /api/meetings/{id}.
func (c *Client) UpdateMeeting(id string, req models.UpdateMeetingRequest) (models.Meeting, error) {
	var resp models.MeetingResponse
	err := c.PutJSON("/api/meetings/"+url.PathEscape(id), req, &resp)
	return resp.Data, err
}

// DeleteMeeting удаляет встречу.
func (c *Client) DeleteMeeting(id string) error {
	return c.DeleteJSON("/api/meetings/"+url.PathEscape(id), nil)
}
