// В этом файле описаны методы клиента для работы с пользователями.
package api

import (
	"net/url"
	"strconv"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
)

// Page — offset/limit для списков. Нулевые значения не передаются (дефолты сервера).
type Page struct {
	Offset int
	Limit  int
}

func (p Page) encode(q url.Values) {
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// CreateUser создаёт пользователя: POST /api/users.
func (c *Client) CreateUser(req models.CreateUserRequest) (models.User, error) {
	var resp models.UserResponse
	err := c.PostJSON("/api/users", req, &resp)
	return resp.Data, err
}

// GetUser возвращает пользователя: GET /api/users/{id}.
func (c *Client) GetUser(id string) (models.User, error) {
	var resp models.UserResponse
	err := c.GetJSON("/api/users/"+url.PathEscape(id), &resp)
	return resp.Data, err
}

// ListUsers возвращает страницу пользователей и общее количество.
func (c *Client) ListUsers(page Page) ([]models.User, int, error) {
	q := url.Values{}
	page.encode(q)

	var resp models.UserListResponse
	err := c.GetJSON(withQuery("/api/users", q), &resp)
	return resp.Data, resp.Total, err
}

// UpdateUser частично обновляет пользователя: PUT /api/users/{id}.
func (c *Client) UpdateUser(id string, req models.UpdateUserRequest) (models.User, error) {
	var resp models.UserResponse
	err := c.PutJSON("/api/users/"+url.PathEscape(id), req, &resp)
	return resp.Data, err
}

// DeleteUser удаляет пользователя вместе с его встречами.
func (c *Client) DeleteUser(id string) error {
	return c.DeleteJSON("/api/users/"+url.PathEscape(id), nil)
}

// ListUserMeetings возвращает встречи пользователя: GET /api/users/{id}/meetings.
func (c *Client) ListUserMeetings(id string, page Page) ([]models.Meeting, int, error) {
	q := url.Values{}
	page.encode(q)

	var resp models.MeetingListResponse
	err := c.GetJSON(withQuery("/api/users/"+url.PathEscape(id)+"/meetings", q), &resp)
	return resp.Data, resp.Total, err
}
