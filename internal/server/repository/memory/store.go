// Package memory — потокобезопасное in-memory хранилище пользователей и встреч.
//
// Используется драйвером "memory" (локальный запуск, тесты). Семантика совпадает
// с PostgreSQL-репозиторием: уникальный email, каскадное удаление встреч,
// запрет пересечений встреч одного пользователя.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	dm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/models"
	serr "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/errors"
)

type userRow struct {
	dm.User
	// seq упорядочивает пользователей с одинаковым created_at
	seq uint64
}

// Store хранит все данные под одним RWMutex.
// WithUserLock держит мьютекс на запись до конца транзакции.
type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]userRow
	emails   map[string]uuid.UUID
	meetings map[uuid.UUID]dm.Meeting
	seq      uint64
	now      func() time.Time
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]userRow),
		emails:   make(map[string]uuid.UUID),
		meetings: make(map[uuid.UUID]dm.Meeting),
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// Users — репозиторий пользователей поверх стора.
func (s *Store) Users() *UsersRepository {
	return &UsersRepository{s: s}
}

// Meetings — репозиторий встреч поверх стора.
func (s *Store) Meetings() *MeetingsRepository {
	return &MeetingsRepository{s: s}
}

// Ping всегда успешен, пока жив контекст.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// withOwner прикладывает краткие данные владельца. Вызывать под мьютексом.
func (s *Store) withOwner(m dm.Meeting) dm.Meeting {
	if u, ok := s.users[m.UserID]; ok {
		m.Owner = u.User.Summary()
	}
	return m
}

// UsersRepository реализует service.UsersRepo.
type UsersRepository struct {
	s *Store
}

func (r *UsersRepository) Create(ctx context.Context, name, email string) (dm.User, error) {
	if err := ctx.Err(); err != nil {
		return dm.User{}, fmt.Errorf("%w: %v", serr.ErrInternal, err)
	}

	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[email]; taken {
		return dm.User{}, serr.ErrDuplicateEmail
	}

	now := s.now()
	s.seq++
	u := dm.User{ID: uuid.New(), Name: name, Email: email, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = userRow{User: u, seq: s.seq}
	s.emails[email] = u.ID
	return u, nil
}

func (r *UsersRepository) GetByID(_ context.Context, id uuid.UUID) (dm.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.users[id]
	if !ok {
		return dm.User{}, serr.ErrUserNotFound
	}
	return row.User, nil
}

// List: новые первыми (created_at DESC).
func (r *UsersRepository) List(_ context.Context, page models.Page) ([]dm.User, int, error) {
	r.s.mu.RLock()
	rows := make([]userRow, 0, len(r.s.users))
	for _, row := range r.s.users {
		rows = append(rows, row)
	}
	r.s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	lo, hi := window(len(rows), page)
	out := make([]dm.User, 0, hi-lo)
	for _, row := range rows[lo:hi] {
		out = append(out, row.User)
	}
	return out, len(rows), nil
}

// Update накладывает переданные поля на текущую запись под мьютексом.
func (r *UsersRepository) Update(_ context.Context, id uuid.UUID, in models.UpdateUserInput) (dm.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.users[id]
	if !ok {
		return dm.User{}, serr.ErrUserNotFound
	}
	next := in.Apply(row.User)
	if owner, taken := s.emails[next.Email]; taken && owner != id {
		return dm.User{}, serr.ErrDuplicateEmail
	}

	delete(s.emails, row.Email)
	s.emails[next.Email] = id

	next.UpdatedAt = s.now()
	row.User = next
	s.users[id] = row
	return row.User, nil
}

// Delete удаляет пользователя и каскадно все его встречи.
func (r *UsersRepository) Delete(_ context.Context, id uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.users[id]
	if !ok {
		return serr.ErrUserNotFound
	}

	delete(s.users, id)
	delete(s.emails, row.Email)
	for mid, m := range s.meetings {
		if m.UserID == id {
			delete(s.meetings, mid)
		}
	}
	return nil
}

// MeetingsRepository реализует service.MeetingsRepo.
type MeetingsRepository struct {
	s *Store
}

func (r *MeetingsRepository) GetByID(_ context.Context, id uuid.UUID) (dm.Meeting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.meetings[id]
	if !ok {
		return dm.Meeting{}, serr.ErrMeetingNotFound
	}
	return r.s.withOwner(m), nil
}

// List: start_time >= StartFrom, end_time <= EndTo, сортировка по start_time и id.
func (r *MeetingsRepository) List(_ context.Context, f models.MeetingFilter) ([]dm.Meeting, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]dm.Meeting, 0)
	for _, m := range r.s.meetings {
		if f.UserID != nil && m.UserID != *f.UserID {
			continue
		}
		if f.StartFrom != nil && m.StartTime.Before(*f.StartFrom) {
			continue
		}
		if f.EndTo != nil && m.EndTime.After(*f.EndTo) {
			continue
		}
		matched = append(matched, m)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].StartTime.Equal(matched[j].StartTime) {
			return matched[i].StartTime.Before(matched[j].StartTime)
		}
		return bytes.Compare(matched[i].ID[:], matched[j].ID[:]) < 0
	})

	lo, hi := window(len(matched), f.Page)
	out := make([]dm.Meeting, 0, hi-lo)
	for _, m := range matched[lo:hi] {
		out = append(out, r.s.withOwner(m))
	}
	return out, len(matched), nil
}

func (r *MeetingsRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.meetings[id]; !ok {
		return serr.ErrMeetingNotFound
	}
	delete(r.s.meetings, id)
	return nil
}

// WithUserLock выполняет fn под эксклюзивной блокировкой стора.
//
// Записи fn копятся в tx и применяются только при успешном завершении fn;
// перед применением каждая ещё раз проверяется на пересечения.
func (r *MeetingsRepository) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(tx service.MeetingsTx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", serr.ErrInternal, err)
	}

	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.users[userID]
	if !ok {
		return serr.ErrUserNotFound
	}

	tx := &meetingsTx{s: s, owner: owner.User, staged: make(map[uuid.UUID]dm.Meeting)}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

// window переводит offset/limit в границы среза длины n.
func window(n int, page models.Page) (int, int) {
	lo := page.Offset
	if lo > n {
		lo = n
	}
	hi := n
	if page.Limit > 0 && lo+page.Limit < n {
		hi = lo + page.Limit
	}
	return lo, hi
}
