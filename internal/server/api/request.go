package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	dm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/models"
	sm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
)

const (
	msgInvalidData      = "Invalid request data"
	msgInvalidTimeRange = "Start time must be before end time"
)

// decodeBody читает JSON тела в dst. При ошибке ответ уже записан.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			WriteError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Request body too large", nil)
			return false
		}
		WriteError(w, http.StatusBadRequest, CodeValidation, msgInvalidData, ToDetails(err))
		return false
	}
	return true
}

// validate проверяет DTO по validate-тегам. При ошибке ответ уже записан.
func (h *Handler) validate(w http.ResponseWriter, v any) bool {
	err := h.Validate.Struct(v)
	if err == nil {
		return true
	}

	msg := msgInvalidData
	if hasTimeOrderError(err) {
		msg = msgInvalidTimeRange
	}
	WriteError(w, http.StatusBadRequest, CodeValidation, msg, ToDetails(err))
	return false
}

// pathID разбирает {id} из пути.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, msgInvalidData, map[string]string{"id": "must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

// parsePage читает offset и limit. Отсутствующие параметры — нули (значения по умолчанию).
func parsePage(q url.Values, details map[string]string) sm.Page {
	var p sm.Page
	p.Offset = parseNonNegative(q, "offset", details)
	p.Limit = parseNonNegative(q, "limit", details)
	return p
}

func parseNonNegative(q url.Values, key string, details map[string]string) int {
	raw := q.Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		details[key] = "must be a non-negative integer"
		return 0
	}
	return n
}

func toUser(u dm.User) models.User {
	return models.User{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUsers(list []dm.User) []models.User {
	out := make([]models.User, 0, len(list))
	for _, u := range list {
		out = append(out, toUser(u))
	}
	return out
}

func toMeeting(m dm.Meeting) models.Meeting {
	out := models.Meeting{
		ID:        m.ID.String(),
		UserID:    m.UserID.String(),
		Title:     m.Title,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Owner != nil {
		out.User = &models.UserSummary{
			ID:    m.Owner.ID.String(),
			Name:  m.Owner.Name,
			Email: m.Owner.Email,
		}
	}
	return out
}

func toMeetings(list []dm.Meeting) []models.Meeting {
	out := make([]models.Meeting, 0, len(list))
	for _, m := range list {
		out = append(out, toMeeting(m))
	}
	return out
}
