package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	dm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/errors"
)

// meetingsTx видит стор с наложенными поверх staged-записями.
// Все методы вызываются под s.mu, взятым WithUserLock.
type meetingsTx struct {
	s      *Store
	owner  dm.User
	staged map[uuid.UUID]dm.Meeting
}

func (t *meetingsTx) Owner() dm.User {
	return t.owner
}

func (t *meetingsTx) get(id uuid.UUID) (dm.Meeting, bool) {
	if m, ok := t.staged[id]; ok {
		return m, true
	}
	m, ok := t.s.meetings[id]
	return m, ok
}

// each обходит встречи с учётом staged-изменений.
func (t *meetingsTx) each(fn func(m dm.Meeting) bool) {
	for id, m := range t.s.meetings {
		if _, ok := t.staged[id]; ok {
			continue
		}
		if !fn(m) {
			return
		}
	}
	for _, m := range t.staged {
		if !fn(m) {
			return
		}
	}
}

func (t *meetingsTx) overlaps(userID uuid.UUID, iv dm.Interval, excludeID uuid.UUID) bool {
	found := false
	t.each(func(m dm.Meeting) bool {
		if m.UserID == userID && m.ID != excludeID && m.Interval().Overlaps(iv) {
			found = true
			return false
		}
		return true
	})
	return found
}

func (t *meetingsTx) HasOverlap(ctx context.Context, userID uuid.UUID, iv dm.Interval, excludeID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", serr.ErrInternal, err)
	}
	return t.overlaps(userID, iv, excludeID), nil
}

func (t *meetingsTx) GetByID(_ context.Context, id uuid.UUID) (dm.Meeting, error) {
	m, ok := t.get(id)
	if !ok {
		return dm.Meeting{}, serr.ErrMeetingNotFound
	}
	return t.s.withOwner(m), nil
}

func (t *meetingsTx) Insert(_ context.Context, m dm.Meeting) (dm.Meeting, error) {
	if !m.Interval().Valid() {
		return dm.Meeting{}, serr.ErrInvalidTimeRange
	}
	if _, ok := t.s.users[m.UserID]; !ok {
		return dm.Meeting{}, serr.ErrUserNotFound
	}

	now := t.s.now()
	m.ID = uuid.New()
	m.CreatedAt, m.UpdatedAt = now, now
	m.Owner = nil
	t.staged[m.ID] = m
	return t.s.withOwner(m), nil
}

func (t *meetingsTx) Update(_ context.Context, m dm.Meeting) (dm.Meeting, error) {
	cur, ok := t.get(m.ID)
	if !ok {
		return dm.Meeting{}, serr.ErrMeetingNotFound
	}
	if !m.Interval().Valid() {
		return dm.Meeting{}, serr.ErrInvalidTimeRange
	}

	cur.Title = m.Title
	cur.StartTime = m.StartTime
	cur.EndTime = m.EndTime
	cur.UpdatedAt = t.s.now()
	t.staged[cur.ID] = cur
	return t.s.withOwner(cur), nil
}

// commit повторяет проверку пересечений для staged-записей
// (аналог exclusion-констрейнта) и применяет их.
func (t *meetingsTx) commit() error {
	for _, m := range t.staged {
		if t.overlaps(m.UserID, m.Interval(), m.ID) {
			return serr.ErrSchedulingConflict
		}
	}
	for id, m := range t.staged {
		t.s.meetings[id] = m
	}
	return nil
}
