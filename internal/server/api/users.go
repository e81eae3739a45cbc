package api

import (
	"net/http"

	sm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
)

// CreateUser создаёт пользователя.
//
// @Summary      Create user
// @Description  Creates a user. Email is trimmed, lowercased and must be unique.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body models.CreateUserRequest true "Create user request"
// @Success      201 {object} models.UserResponse
// @Failure      400 {object} models.ErrorResponse "Validation error"
// @Failure      409 {object} models.ErrorResponse "Duplicate email"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Normalize()
	if !h.validate(w, &req) {
		return
	}

	u, err := h.Svc.Users.Create(r.Context(), sm.CreateUserInput{Name: req.Name, Email: req.Email})
	if err != nil {
		h.writeServiceError(w, r, "create user", err)
		return
	}

	WriteJSON(w, http.StatusCreated, models.UserResponse{
		Status:  models.StatusSuccess,
		Message: "User created successfully",
		Data:    toUser(u),
	})
}

// ListUsers возвращает страницу пользователей, новые первыми.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        offset query int false "Offset" minimum(0)
// @Param        limit  query int false "Limit (default 100)" minimum(0)
// @Success      200 {object} models.UserListResponse
// @Failure      400 {object} models.ErrorResponse "Validation error"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	details := map[string]string{}
	page := parsePage(r.URL.Query(), details)
	if len(details) > 0 {
		WriteError(w, http.StatusBadRequest, CodeValidation, msgInvalidData, details)
		return
	}

	users, total, err := h.Svc.Users.List(r.Context(), page)
	if err != nil {
		h.writeServiceError(w, r, "list users", err)
		return
	}

	WriteJSON(w, http.StatusOK, models.UserListResponse{
		Status:  models.StatusSuccess,
		Message: "Users fetched successfully",
		Data:    toUsers(users),
		Total:   total,
	})
}

// GetUser возвращает пользователя по id.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} models.UserResponse
// @Failure      400 {object} models.ErrorResponse "Invalid id"
// @Failure      404 {object} models.ErrorResponse "User not found"
// @Router       /api/users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := h.Svc.Users.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "get user", err)
		return
	}

	WriteJSON(w, http.StatusOK, models.UserResponse{
		Status:  models.StatusSuccess,
		Message: "User fetched successfully",
		Data:    toUser(u),
	})
}

// UpdateUser частично обновляет пользователя.
//
// @Summary      Update user
// @Description  Updates only the supplied fields. At least one field is required.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "User ID" format(uuid)
// @Param        request body models.UpdateUserRequest true "Fields to update"
// @Success      200 {object} models.UserResponse
// @Failure      400 {object} models.ErrorResponse "Validation error"
// @Failure      404 {object} models.ErrorResponse "User not found"
// @Failure      409 {object} models.ErrorResponse "Duplicate email"
// @Router       /api/users/{id} [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
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

	u, err := h.Svc.Users.Update(r.Context(), id, sm.UpdateUserInput{Name: req.Name, Email: req.Email})
	if err != nil {
		h.writeServiceError(w, r, "update user", err)
		return
	}

	WriteJSON(w, http.StatusOK, models.UserResponse{
		Status:  models.StatusSuccess,
		Message: "User updated successfully",
		Data:    toUser(u),
	})
}

// DeleteUser удаляет пользователя и все его встречи.
//
// @Summary      Delete user
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Success      204 "No Content"
// @Failure      404 {object} models.ErrorResponse "User not found"
// @Router       /api/users/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Svc.Users.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUserMeetings возвращает встречи пользователя.
//
// @Summary      List user meetings
// @Tags         users
// @Produce      json
// @Param        id     path  string true  "User ID" format(uuid)
// @Param        offset query int    false "Offset" minimum(0)
// @Param        limit  query int    false "Limit (default 100)" minimum(0)
// @Success      200 {object} models.MeetingListResponse
// @Failure      404 {object} models.ErrorResponse "User not found"
// @Router       /api/users/{id}/meetings [get]
func (h *Handler) ListUserMeetings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	details := map[string]string{}
	page := parsePage(r.URL.Query(), details)
	if len(details) > 0 {
		WriteError(w, http.StatusBadRequest, CodeValidation, msgInvalidData, details)
		return
	}

	list, total, err := h.Svc.Meetings.ListByUser(r.Context(), id, page)
	if err != nil {
		h.writeServiceError(w, r, "list user meetings", err)
		return
	}

	WriteJSON(w, http.StatusOK, models.MeetingListResponse{
		Status:  models.StatusSuccess,
		Message: "Meetings fetched successfully",
		Data:    toMeetings(list),
		Total:   total,
	})
}
