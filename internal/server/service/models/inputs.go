// Package models содержит входные модели сервисного слоя:
// уже провалидированные транспортом запросы и фильтры выборок.
package models

import (
	"time"

	"github.com/google/uuid"

	dm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/models"
)

type CreateUserInput struct {
	Name  string
	Email string
}

// UpdateUserInput — partial update: nil означает "не менять".
type UpdateUserInput struct {
	Name  *string
	Email *string
}

// Apply накладывает изменения на текущую запись пользователя.
func (in UpdateUserInput) Apply(u dm.User) dm.User {
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	return u
}

type CreateMeetingInput struct {
	UserID    uuid.UUID
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

func (in CreateMeetingInput) Interval() dm.Interval {
	return dm.Interval{Start: in.StartTime, End: in.EndTime}
}

// UpdateMeetingInput — partial update встречи.
type UpdateMeetingInput struct {
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
}

// ChangesTime сообщает, что в запросе передано startTime или endTime.
func (in UpdateMeetingInput) ChangesTime() bool {
	return in.StartTime != nil || in.EndTime != nil
}

// Apply накладывает изменения на текущую встречу (merge, не replace).
func (in UpdateMeetingInput) Apply(m dm.Meeting) dm.Meeting {
	if in.Title != nil {
		m.Title = *in.Title
	}
	if in.StartTime != nil {
		m.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		m.EndTime = *in.EndTime
	}
	return m
}

// Page — offset/limit выборки.
type Page struct {
	Offset int
	Limit  int
}

// MeetingQuery — фильтры списка встреч в терминах API.
//
// StartDate — нижняя граница start_time, EndDate — календарный день,
// до конца которого (включительно) должен закончиться end_time.
type MeetingQuery struct {
	UserID    *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Page
}

// MeetingFilter — фильтр в терминах хранилища.
//
// StartFrom: start_time >= StartFrom; EndTo: end_time <= EndTo.
// Границы независимы друг от друга.
type MeetingFilter struct {
	UserID    *uuid.UUID
	StartFrom *time.Time
	EndTo     *time.Time
	Page
}
