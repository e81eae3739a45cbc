// Package models содержит модели HTTP API, общие для сервера и CLI-клиента.
//
// Формат ответов:
//
//	{"status":"success","message":"...","data":{...}}
//	{"status":"success","message":"...","data":[...],"total":N}
//	{"status":"error","code":"...","message":"...","details":{...}}
package models

import (
	"strings"
	"time"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// User — пользователь в ответах API.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary — владелец встречи, вкладывается в ответы по встречам.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Meeting — встреча в ответах API.
type Meeting struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Title     string       `json:"title"`
	StartTime time.Time    `json:"startTime"`
	EndTime   time.Time    `json:"endTime"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	User      *UserSummary `json:"user,omitempty"`
}

// CreateUserRequest — тело POST /api/users.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// Normalize обрезает пробелы и приводит email к нижнему регистру до валидации.
func (r *CreateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// UpdateUserRequest — тело PUT /api/users/{id}.
//
// Поля — указатели: передаются только изменяемые поля, но хотя бы одно обязательно.
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

func (r *UpdateUserRequest) Normalize() {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &v
	}
}

// Empty сообщает, что в запросе нет ни одного поля.
func (r *UpdateUserRequest) Empty() bool {
	return r.Name == nil && r.Email == nil
}

// CreateMeetingRequest — тело POST /api/meetings. Время в RFC 3339.
type CreateMeetingRequest struct {
	UserID    string    `json:"userId" validate:"required,anyuuid"`
	Title     string    `json:"title" validate:"required,min=3,max=255"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
}

func (r *CreateMeetingRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Title = strings.TrimSpace(r.Title)
}

// UpdateMeetingRequest — тело PUT /api/meetings/{id} (partial update).
type UpdateMeetingRequest struct {
	Title     *string    `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

func (r *UpdateMeetingRequest) Normalize() {
	if r.Title != nil {
		v := strings.TrimSpace(*r.Title)
		r.Title = &v
	}
}

func (r *UpdateMeetingRequest) Empty() bool {
	return r.Title == nil && r.StartTime == nil && r.EndTime == nil
}

// UserResponse — ответ с одним пользователем.
type UserResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    User   `json:"data"`
}

// UserListResponse — страница пользователей и общее количество.
type UserListResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    []User `json:"data"`
	Total   int    `json:"total"`
}

// MeetingResponse — ответ с одной встречей.
type MeetingResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Data    Meeting `json:"data"`
}

// MeetingListResponse — страница встреч и общее количество.
type MeetingListResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    []Meeting `json:"data"`
	Total   int       `json:"total"`
}

// ErrorResponse — стандартный формат ошибки API.
type ErrorResponse struct {
	Status  string            `json:"status"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthResponse — ответ GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
