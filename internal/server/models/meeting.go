package models

import (
	"time"

	"github.com/google/uuid"
)

// Meeting — встреча пользователя. Owner заполняется при чтении (JOIN users).
type Meeting struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	Owner     *UserSummary
}

func (m Meeting) Interval() Interval {
	return Interval{Start: m.StartTime, End: m.EndTime}
}

// Interval — полуоткрытый интервал [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid: Start строго раньше End.
func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Overlaps — пересечение интервалов: a.Start < b.End && a.End > b.Start.
// Интервалы "встык" (a.End == b.Start) не пересекаются.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}
