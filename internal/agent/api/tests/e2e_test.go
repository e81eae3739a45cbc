package tests

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/agent/api"
	serverapi "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/api"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/config"
	h "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/net/http"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/repository/memory"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/utils"
)

// newServer поднимает настоящий сервер на in-memory хранилище.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{DB: config.DBConfig{Driver: config.DriverMemory}}
	config.ApplyDefaults(cfg)

	store := memory.NewStore()
	log := logger.NewNop()
	svc := service.NewServices(service.Repositories{
		Users:    store.Users(),
		Meetings: store.Meetings(),
		Health:   store,
	}, cfg, log)

	srv := httptest.NewServer(h.NewRouter(serverapi.NewHandler(svc, log), cfg, nil))
	t.Cleanup(srv.Close)
	return srv
}

func at(hour int) time.Time {
	return time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC)
}

// Клиент против сервера: пользователи, встречи, конфликт, каскад
func TestClient_EndToEnd(t *testing.T) {
	c := api.NewClient(newServer(t).URL)

	u, err := c.CreateUser(models.CreateUserRequest{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	got, err := c.GetUser(u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got.Email)

	u, err = c.UpdateUser(u.ID, models.UpdateUserRequest{Name: utils.StrPtr("Alice Liddell")})
	require.NoError(t, err)
	require.Equal(t, "Alice Liddell", u.Name)

	users, total, err := c.ListUsers(api.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, users, 1)

	m, err := c.CreateMeeting(models.CreateMeetingRequest{UserID: u.ID, Title: "Standup", StartTime: at(9), EndTime: at(10)})
	require.NoError(t, err)
	require.Equal(t, u.ID, m.UserID)

	_, err = c.CreateMeeting(models.CreateMeetingRequest{UserID: u.ID, Title: "Clash", StartTime: at(9), EndTime: at(11)})
	var apiErr *api.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.Equal(t, "SCHEDULING_CONFLICT", apiErr.Code)

	m, err = c.UpdateMeeting(m.ID, models.UpdateMeetingRequest{Title: utils.StrPtr("Daily standup")})
	require.NoError(t, err)
	require.Equal(t, "Daily standup", m.Title)

	list, total, err := c.ListUserMeetings(u.ID, api.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, m.ID, list[0].ID)

	list, total, err = c.ListMeetings(api.MeetingFilter{StartDate: "2024-01-02"})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, list)

	require.NoError(t, c.DeleteUser(u.ID))

	_, err = c.GetMeeting(m.ID)
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "MEETING_NOT_FOUND", apiErr.Code)

	err = c.DeleteMeeting(m.ID)
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

// 200 — статус ok, 503 — *APIError со статусом ответа
func TestClient_Health(t *testing.T) {
	hr, err := api.NewClient(newServer(t).URL).Health()
	require.NoError(t, err)
	require.Equal(t, "ok", hr.Status)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable","timestamp":"2024-01-01T00:00:00Z"}`))
	}))
	t.Cleanup(down.Close)

	_, err = api.NewClient(down.URL).Health()
	var apiErr *api.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}
