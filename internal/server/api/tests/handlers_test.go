package tests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/api"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/config"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/middleware"
	dm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/mocks"
	sm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/models"
	serr "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
)

type deps struct {
	users    *mocks.MockUsersRepo
	meetings *mocks.MockMeetingsRepo
	health   *mocks.MockHealthRepo
	router   http.Handler
}

// newDeps собирает настоящие сервисы поверх мок-репозиториев
// и минимальный chi-роутер с хендлерами.
func newDeps(t *testing.T) deps {
	t.Helper()
	return newDepsWithLog(t, logger.NewNop())
}

func newDepsWithLog(t *testing.T, log *logger.Logger) deps {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := deps{
		users:    mocks.NewMockUsersRepo(ctrl),
		meetings: mocks.NewMockMeetingsRepo(ctrl),
		health:   mocks.NewMockHealthRepo(ctrl),
	}

	cfg := &config.Config{Pagination: config.PaginationConfig{DefaultLimit: 100, MaxLimit: 1000}}
	svc := service.NewServices(service.Repositories{
		Users:    d.users,
		Meetings: d.meetings,
		Health:   d.health,
	}, cfg, logger.NewNop())
	h := api.NewHandler(svc, log)

	r := chi.NewRouter()
	r.Use(middleware.MaxBodyBytes(256))
	r.Get("/health", h.Health)
	r.Post("/api/users", h.CreateUser)
	r.Get("/api/users", h.ListUsers)
	r.Get("/api/users/{id}", h.GetUser)
	r.Put("/api/users/{id}", h.UpdateUser)
	r.Post("/api/meetings", h.CreateMeeting)
	r.Get("/api/meetings", h.ListMeetings)
	r.Put("/api/meetings/{id}", h.UpdateMeeting)
	r.Delete("/api/meetings/{id}", h.DeleteMeeting)
	d.router = r
	return d
}

func (d deps) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	d.router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp), rec.Body.String())
	require.Equal(t, models.StatusError, resp.Status)
	return resp
}

// Ошибки валидации создания пользователя: до репозитория не доходим
func TestCreateUser_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		details map[string]string
	}{
		{"bad json", `{"name":}`, map[string]string{"payload": "invalid json"}},
		{"wrong type", `{"name":1,"email":"a@b.io"}`, map[string]string{"name": "has invalid type"}},
		{"missing email", `{"name":"Alice"}`, map[string]string{"email": "is required"}},
		{"invalid email", `{"name":"Alice","email":"nope"}`, map[string]string{"email": "must be a valid email"}},
		{"blank name", `{"name":"   ","email":"a@b.io"}`, map[string]string{"name": "is required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps(t)

			rec := d.do(http.MethodPost, "/api/users", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := errorBody(t, rec)
			require.Equal(t, api.CodeValidation, resp.Code)
			require.Equal(t, "Invalid request data", resp.Message)
			require.Equal(t, tt.details, resp.Details)
		})
	}
}

// Email нормализуется до обращения к репозиторию, дубликат — 409
func TestCreateUser_DuplicateEmail(t *testing.T) {
	d := newDeps(t)
	d.users.EXPECT().Create(gomock.Any(), "Alice", "alice@example.com").Return(dm.User{}, serr.ErrDuplicateEmail)

	rec := d.do(http.MethodPost, "/api/users", `{"name":" Alice ","email":" ALICE@example.com "}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	resp := errorBody(t, rec)
	require.Equal(t, api.CodeDuplicateEmail, resp.Code)
	require.Equal(t, "email must be unique", resp.Message)
}

func TestCreateUser_Created(t *testing.T) {
	d := newDeps(t)
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	id := uuid.New()
	d.users.EXPECT().Create(gomock.Any(), "Alice", "alice@example.com").
		Return(dm.User{ID: id, Name: "Alice", Email: "alice@example.com", CreatedAt: now, UpdatedAt: now}, nil)

	rec := d.do(http.MethodPost, "/api/users", `{"name":"Alice","email":"alice@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp models.UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, models.StatusSuccess, resp.Status)
	require.Equal(t, "User created successfully", resp.Message)
	require.Equal(t, id.String(), resp.Data.ID)
	require.True(t, resp.Data.CreatedAt.Equal(now))
}

// Адрес, принятый валидатором запроса, не отклоняется сервисом
func TestCreateUser_QuotedEmail(t *testing.T) {
	d := newDeps(t)
	d.users.EXPECT().Create(gomock.Any(), "Alice", `"a b"@ex.com`).
		Return(dm.User{ID: uuid.New(), Name: "Alice", Email: `"a b"@ex.com`}, nil)

	rec := d.do(http.MethodPost, "/api/users", `{"name":"Alice","email":"\"a b\"@ex.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestGetUser_InvalidID(t *testing.T) {
	d := newDeps(t)

	rec := d.do(http.MethodGet, "/api/users/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, map[string]string{"id": "must be a valid UUID"}, errorBody(t, rec).Details)
}

// Неожиданная ошибка хранилища — 500 без подробностей
func TestGetUser_InternalError(t *testing.T) {
	d := newDeps(t)
	id := uuid.New()
	d.users.EXPECT().GetByID(gomock.Any(), id).Return(dm.User{}, errors.New("pq: connection reset"))

	rec := d.do(http.MethodGet, "/api/users/"+id.String(), "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := errorBody(t, rec)
	require.Equal(t, api.CodeInternal, resp.Code)
	require.Equal(t, "An unexpected error occurred", resp.Message)
	require.NotContains(t, rec.Body.String(), "connection reset")
}

// Причина внутренней ошибки попадает в лог вместе с request id
func TestGetUser_InternalErrorLogsCause(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	d := newDepsWithLog(t, &logger.Logger{Logger: zap.New(core)})

	id := uuid.New()
	d.users.EXPECT().GetByID(gomock.Any(), id).
		Return(dm.User{}, fmt.Errorf("%w: %v", serr.ErrInternal, errors.New("pq: connection reset by peer")))

	rec := d.do(http.MethodGet, "/api/users/"+id.String(), "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "connection reset")

	entries := logs.FilterMessage("get user failed").All()
	require.Len(t, entries, 1)
	require.Contains(t, entries[0].ContextMap()["error"], "connection reset by peer")
}

func TestUpdateUser_EmptyBody(t *testing.T) {
	d := newDeps(t)

	rec := d.do(http.MethodPut, "/api/users/"+uuid.NewString(), `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, errorBody(t, rec).Details, "payload")
}

// limit по умолчанию подставляет сервис
func TestListUsers_DefaultPage(t *testing.T) {
	d := newDeps(t)
	d.users.EXPECT().List(gomock.Any(), sm.Page{Offset: 5, Limit: 100}).
		Return([]dm.User{{ID: uuid.New(), Name: "A", Email: "a@b.io"}}, 6, nil)

	rec := d.do(http.MethodGet, "/api/users?offset=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.UserListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 6, resp.Total)
	require.Len(t, resp.Data, 1)
}

func TestListUsers_BadPage(t *testing.T) {
	d := newDeps(t)

	rec := d.do(http.MethodGet, "/api/users?offset=-1&limit=abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	details := errorBody(t, rec).Details
	require.Contains(t, details, "offset")
	require.Contains(t, details, "limit")
}

// endTime <= startTime: отдельное сообщение, репозиторий не вызывается
func TestCreateMeeting_InvertedInterval(t *testing.T) {
	d := newDeps(t)

	rec := d.do(http.MethodPost, "/api/meetings", `{
		"userId":"`+uuid.NewString()+`",
		"title":"Standup",
		"startTime":"2024-01-01T10:00:00Z",
		"endTime":"2024-01-01T10:00:00Z"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := errorBody(t, rec)
	require.Equal(t, "Start time must be before end time", resp.Message)
	require.Equal(t, "must be after startTime", resp.Details["endTime"])
}

func TestCreateMeeting_Validation(t *testing.T) {
	d := newDeps(t)

	rec := d.do(http.MethodPost, "/api/meetings", `{"userId":"x","title":"ab"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	details := errorBody(t, rec).Details
	require.Equal(t, "must be a valid UUID", details["userId"])
	require.Equal(t, "must be at least 3 characters long", details["title"])
	require.Equal(t, "is required", details["startTime"])
}

func TestCreateMeeting_UserNotFound(t *testing.T) {
	d := newDeps(t)
	userID := uuid.New()
	d.meetings.EXPECT().WithUserLock(gomock.Any(), userID, gomock.Any()).Return(serr.ErrUserNotFound)

	rec := d.do(http.MethodPost, "/api/meetings", `{
		"userId":"`+userID.String()+`",
		"title":"Standup",
		"startTime":"2024-01-01T09:00:00+02:00",
		"endTime":"2024-01-01T10:00:00+02:00"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, api.CodeUserNotFound, errorBody(t, rec).Code)
}

// userId в верхнем регистре — валидный UUID
func TestCreateMeeting_UppercaseUserID(t *testing.T) {
	d := newDeps(t)
	userID := uuid.New()
	d.meetings.EXPECT().WithUserLock(gomock.Any(), userID, gomock.Any()).Return(serr.ErrUserNotFound)

	rec := d.do(http.MethodPost, "/api/meetings", `{
		"userId":"`+strings.ToUpper(userID.String())+`",
		"title":"Standup",
		"startTime":"2024-01-01T09:00:00Z",
		"endTime":"2024-01-01T10:00:00Z"}`)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	require.Equal(t, api.CodeUserNotFound, errorBody(t, rec).Code)
}

func TestCreateMeeting_Conflict(t *testing.T) {
	d := newDeps(t)
	userID := uuid.New()
	d.meetings.EXPECT().WithUserLock(gomock.Any(), userID, gomock.Any()).Return(serr.ErrSchedulingConflict)

	rec := d.do(http.MethodPost, "/api/meetings", `{
		"userId":"`+userID.String()+`",
		"title":"Standup",
		"startTime":"2024-01-01T09:00:00Z",
		"endTime":"2024-01-01T10:00:00Z"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	resp := errorBody(t, rec)
	require.Equal(t, api.CodeSchedulingConflict, resp.Code)
	require.Equal(t, "Time slot already booked", resp.Message)
}

func TestUpdateMeeting_BodyChecks(t *testing.T) {
	d := newDeps(t)
	path := "/api/meetings/" + uuid.NewString()

	rec := d.do(http.MethodPut, path, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, errorBody(t, rec).Details, "payload")

	rec = d.do(http.MethodPut, path, `{"startTime":"2024-01-01T11:00:00Z","endTime":"2024-01-01T10:00:00Z"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Start time must be before end time", errorBody(t, rec).Message)
}

func TestUpdateMeeting_NotFound(t *testing.T) {
	d := newDeps(t)
	id := uuid.New()
	d.meetings.EXPECT().GetByID(gomock.Any(), id).Return(dm.Meeting{}, serr.ErrMeetingNotFound)

	rec := d.do(http.MethodPut, "/api/meetings/"+id.String(), `{"title":"Renamed"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, api.CodeMeetingNotFound, errorBody(t, rec).Code)
}

func TestDeleteMeeting_NoContent(t *testing.T) {
	d := newDeps(t)
	id := uuid.New()
	d.meetings.EXPECT().Delete(gomock.Any(), id).Return(nil)

	rec := d.do(http.MethodDelete, "/api/meetings/"+id.String(), "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Zero(t, rec.Body.Len())
}

// Фильтры списка встреч: userId, даты, ошибки разбора
func TestListMeetings_Filters(t *testing.T) {
	d := newDeps(t)
	userID := uuid.New()

	d.meetings.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f sm.MeetingFilter) ([]dm.Meeting, int, error) {
			require.NotNil(t, f.UserID)
			require.Equal(t, userID, *f.UserID)
			require.NotNil(t, f.StartFrom)
			require.True(t, f.StartFrom.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
			require.NotNil(t, f.EndTo)
			require.True(t, f.EndTo.Equal(time.Date(2024, 1, 31, 23, 59, 59, 999_000_000, time.UTC)))
			require.Equal(t, 100, f.Page.Limit)
			return nil, 0, nil
		})

	rec := d.do(http.MethodGet, "/api/meetings?userId="+userID.String()+"&startDate=2024-01-01&endDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.MeetingListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Data)
	require.Zero(t, resp.Total)

	rec = d.do(http.MethodGet, "/api/meetings?startDate=yesterday&endDate=2024-13-01", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	details := errorBody(t, rec).Details
	require.Equal(t, "must be a valid date", details["startDate"])
	require.Equal(t, "must be a valid date", details["endDate"])
}

// Тело больше лимита — 413
func TestCreateUser_PayloadTooLarge(t *testing.T) {
	d := newDeps(t)

	rec := d.do(http.MethodPost, "/api/users", `{"name":"`+strings.Repeat("a", 512)+`","email":"a@b.io"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Equal(t, api.CodePayloadTooLarge, errorBody(t, rec).Code)
}

func TestHealth(t *testing.T) {
	d := newDeps(t)
	d.health.EXPECT().Ping(gomock.Any()).Return(nil)

	rec := d.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	d.health.EXPECT().Ping(gomock.Any()).Return(serr.ErrInternal)
	rec = d.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "unavailable", resp.Status)
}
