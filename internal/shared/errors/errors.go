// Package errors содержит общие доменные ошибки приложения.
//
// Эти ошибки используются в service и repository слоях
// и маппятся на HTTP-статусы и коды ответа в api слое.
package errors

import "errors"

var (
	// Входные данные невалидны (пустые поля, неправильный формат и т.п.)
	ErrInvalidInput = errors.New("invalid input")
	// Получена непредвиденная ошибка
	ErrInternal = errors.New("internal error")
	// ожидаемая ошибка, используется в тестах
	ErrExpectedError = errors.New("expected error")
)

// пользователи
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// встречи
var (
	ErrMeetingNotFound = errors.New("meeting not found")
	// Интервал пересекается с другой встречей того же пользователя
	ErrSchedulingConflict = errors.New("time slot already booked")
	// start_time >= end_time
	ErrInvalidTimeRange = errors.New("start time must be before end time")
)
