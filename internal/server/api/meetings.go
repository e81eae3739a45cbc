package api

import (
	"net/http"

	"github.com/google/uuid"

	sm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/utils"
)

// CreateMeeting создаёт встречу.
//
// Проверки по порядку: поля запроса, существование пользователя, пересечения.
//
// @Summary      Create meeting
// @Description  Books a time slot. Intervals are half-open: back-to-back meetings are allowed.
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        request body models.CreateMeetingRequest true "Create meeting request"
// @Success      201 {object} models.MeetingResponse
// @Failure      400 {object} models.ErrorResponse "Validation error"
// @Failure      404 {object} models.ErrorResponse "User not found"
// @Failure      409 {object} models.ErrorResponse "Time slot already booked"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/meetings [post]
func (h *Handler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMeetingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Normalize()
	if !h.validate(w, &req) {
		return
	}

	m, err := h.Svc.Meetings.Create(r.Context(), sm.CreateMeetingInput{
		UserID:    uuid.MustParse(req.UserID),
		Title:     req.Title,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
	})
	if err != nil {
		h.writeServiceError(w, r, "create meeting", err)
		return
	}

	WriteJSON(w, http.StatusCreated, models.MeetingResponse{
		Status:  models.StatusSuccess,
		Message: "Meeting created successfully",
		Data:    toMeeting(m),
	})
}

// ListMeetings возвращает страницу встреч, отсортированных по startTime.
//
// startDate ограничивает startTime снизу, endDate — endTime сверху концом дня.
//
// @Summary      List meetings
// @Tags         meetings
// @Produce      json
// @Param        userId    query string false "Owner ID" format(uuid)
// @Param        startDate query string false "startTime >= startDate (YYYY-MM-DD or RFC 3339)"
// @Param        endDate   query string false "endTime <= end of endDate (YYYY-MM-DD or RFC 3339)"
// @Param        offset    query int    false "Offset" minimum(0)
// @Param        limit     query int    false "Limit (default 100)" minimum(0)
// @Success      200 {object} models.MeetingListResponse
// @Failure      400 {object} models.ErrorResponse "Validation error"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/meetings [get]
func (h *Handler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	details := map[string]string{}

	query := sm.MeetingQuery{Page: parsePage(q, details)}

	if raw := q.Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			details["userId"] = "must be a valid UUID"
		} else {
			query.UserID = &id
		}
	}
	if raw := q.Get("startDate"); raw != "" {
		t, err := utils.ParseDate(raw)
		if err != nil {
			details["startDate"] = "must be a valid date"
		} else {
			query.StartDate = &t
		}
	}
	if raw := q.Get("endDate"); raw != "" {
		t, err := utils.ParseDate(raw)
		if err != nil {
			details["endDate"] = "must be a valid date"
		} else {
			query.EndDate = &t
		}
	}

	if len(details) > 0 {
		WriteError(w, http.StatusBadRequest, CodeValidation, msgInvalidData, details)
		return
	}

	list, total, err := h.Svc.Meetings.List(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, r, "list meetings", err)
		return
	}

	WriteJSON(w, http.StatusOK, models.MeetingListResponse{
		Status:  models.StatusSuccess,
		Message: "Meetings fetched successfully",
		Data:    toMeetings(list),
		Total:   total,
	})
}

// GetMeeting возвращает встречу вместе с владельцем.
//
// @Summary      Get meeting
// @Tags         meetings
// @Produce      json
// @Param        id path string true "Meeting ID" format(uuid)
// @Success      200 {object} models.MeetingResponse
// @Failure      400 {object} models.ErrorResponse "Invalid id"
// @Failure      404 {object} models.ErrorResponse "Meeting not found"
// @Router       /api/meetings/{id} [get]
func (h *Handler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	m, err := h.Svc.Meetings.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "get meeting", err)
		return
	}

	WriteJSON(w, http.StatusOK, models.MeetingResponse{
		Status:  models.StatusSuccess,
		Message: "Meeting fetched successfully",
		Data:    toMeeting(m),
	})
}

// UpdateMeeting частично обновляет встречу.
//
// Пересечения проверяются, только если передан startTime или endTime.
//
// @Summary      Update meeting
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Meeting ID" format(uuid)
// @Param        request body models.UpdateMeetingRequest true "Fields to update"
// @Success      200 {object} models.MeetingResponse
// @Failure      400 {object} models.ErrorResponse "Validation error"
// @Failure      404 {object} models.ErrorResponse "Meeting not found"
// @Failure      409 {object} models.ErrorResponse "Time slot already booked"
// @Router       /api/meetings/{id} [put]
func (h *Handler) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.UpdateMeetingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Empty() {
		WriteError(w, http.StatusBadRequest, CodeValidation, msgInvalidData,
			map[string]string{"payload": "at least one field must be provided"})
		return
	}
	req.Normalize()
	if !h.validate(w, &req) {
		return
	}
	if req.StartTime != nil && req.EndTime != nil && !req.StartTime.Before(*req.EndTime) {
		WriteError(w, http.StatusBadRequest, CodeValidation, msgInvalidTimeRange,
			map[string]string{"endTime": "must be after startTime"})
		return
	}

	in := sm.UpdateMeetingInput{Title: req.Title}
	if req.StartTime != nil {
		in.StartTime = utils.Ptr(req.StartTime.UTC())
	}
	if req.EndTime != nil {
		in.EndTime = utils.Ptr(req.EndTime.UTC())
	}

	m, err := h.Svc.Meetings.Update(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(w, r, "update meeting", err)
		return
	}

	WriteJSON(w, http.StatusOK, models.MeetingResponse{
		Status:  models.StatusSuccess,
		Message: "Meeting updated successfully",
		Data:    toMeeting(m),
	})
}

// DeleteMeeting удаляет встречу.
//
// @Summary      Delete meeting
// @Tags         meetings
// @Param        id path string true "Meeting ID" format(uuid)
// @Success      204 "No Content"
// @Failure      404 {object} models.ErrorResponse "Meeting not found"
// @Router       /api/meetings/{id} [delete]
func (h *Handler) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Svc.Meetings.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "delete meeting", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
