package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"

	dm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/models"
	serr "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/errors"
)

const (
	meetingColumns = `id, user_id, title, start_time, end_time, created_at, updated_at`

	meetingWithOwner = `SELECT m.id, m.user_id, m.title, m.start_time, m.end_time, m.created_at, m.updated_at,
		       u.id, u.name, u.email
		FROM meetings m
		JOIN users u ON u.id = m.user_id`
)

// MeetingsRepository хранит встречи в PostgreSQL.
//
// Защита от пересечений двухуровневая: WithUserLock сериализует записи
// одного пользователя через SELECT ... FOR UPDATE, а exclusion-констрейнт
// meetings_no_overlap отклоняет пересечение даже в обход сервиса.
type MeetingsRepository struct {
	db *sql.DB
}

func NewMeetingsRepository(db *sql.DB) *MeetingsRepository {
	return &MeetingsRepository{db: db}
}

func scanMeeting(row rowScanner) (dm.Meeting, error) {
	var m dm.Meeting
	if err := row.Scan(&m.ID, &m.UserID, &m.Title, &m.StartTime, &m.EndTime, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return dm.Meeting{}, err
	}
	utc(&m.StartTime, &m.EndTime, &m.CreatedAt, &m.UpdatedAt)
	return m, nil
}

func scanMeetingWithOwner(row rowScanner) (dm.Meeting, error) {
	var (
		m     dm.Meeting
		owner dm.UserSummary
	)
	err := row.Scan(
		&m.ID, &m.UserID, &m.Title, &m.StartTime, &m.EndTime, &m.CreatedAt, &m.UpdatedAt,
		&owner.ID, &owner.Name, &owner.Email,
	)
	if err != nil {
		return dm.Meeting{}, err
	}
	utc(&m.StartTime, &m.EndTime, &m.CreatedAt, &m.UpdatedAt)
	m.Owner = &owner
	return m, nil
}

// GetByID возвращает встречу вместе с кратким описанием владельца.
func (r *MeetingsRepository) GetByID(ctx context.Context, id uuid.UUID) (dm.Meeting, error) {
	m, err := scanMeetingWithOwner(r.db.QueryRowContext(ctx, meetingWithOwner+` WHERE m.id=$1`, id))
	if err != nil {
		return dm.Meeting{}, mapErr(err, serr.ErrMeetingNotFound)
	}
	return m, nil
}

// List возвращает страницу встреч по фильтру и общее количество подходящих.
// Порядок: start_time, затем id.
func (r *MeetingsRepository) List(ctx context.Context, f models.MeetingFilter) ([]dm.Meeting, int, error) {
	where, args := meetingsWhere(f)

	var (
		meetings []dm.Meeting
		total    int
	)

	err := readTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM meetings m`+where, args...).Scan(&total); err != nil {
			return err
		}

		n := len(args)
		q := meetingWithOwner + where +
			` ORDER BY m.start_time ASC, m.id ASC` +
			` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)

		rows, err := tx.QueryContext(ctx, q, append(args, f.Limit, f.Offset)...)
		if err != nil {
			return err
		}
		defer rows.Close()

		meetings = make([]dm.Meeting, 0, f.Limit)
		for rows.Next() {
			m, err := scanMeetingWithOwner(rows)
			if err != nil {
				return err
			}
			meetings = append(meetings, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, mapErr(err, serr.ErrInternal)
	}

	return meetings, total, nil
}

// meetingsWhere собирает WHERE по заданным полям фильтра.
func meetingsWhere(f models.MeetingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+"$"+strconv.Itoa(len(args)))
	}

	if f.UserID != nil {
		add("m.user_id = ", *f.UserID)
	}
	if f.StartFrom != nil {
		add("m.start_time >= ", *f.StartFrom)
	}
	if f.EndTo != nil {
		add("m.end_time <= ", *f.EndTo)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *MeetingsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id=$1`, id)
	if err != nil {
		return internalErr(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return internalErr(err)
	}
	if n == 0 {
		return serr.ErrMeetingNotFound
	}
	return nil
}

// WithUserLock открывает транзакцию и берёт блокировку строки пользователя.
//
// Конкурентные записи встреч одного пользователя ждут друг друга на этой
// блокировке, поэтому проверка пересечения внутри fn видит все ранее
// закоммиченные встречи. Ошибка fn откатывает транзакцию.
func (r *MeetingsRepository) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(tx service.MeetingsTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return internalErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	owner, err := scanUser(tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`,
		userID,
	))
	if err != nil {
		return mapErr(err, serr.ErrUserNotFound)
	}

	if err := fn(&meetingsTx{tx: tx, owner: owner}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapErr(err, serr.ErrInternal)
	}
	return nil
}

// meetingsTx — операции над встречами внутри WithUserLock.
type meetingsTx struct {
	tx    *sql.Tx
	owner dm.User
}

func (t *meetingsTx) Owner() dm.User {
	return t.owner
}

// HasOverlap: существует ли встреча userID с start < iv.End и end > iv.Start.
func (t *meetingsTx) HasOverlap(ctx context.Context, userID uuid.UUID, iv dm.Interval, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM meetings
			WHERE user_id=$1
			  AND start_time < $3
			  AND end_time > $2
			  AND id <> $4
		)`,
		userID, iv.Start, iv.End, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, internalErr(err)
	}
	return exists, nil
}

func (t *meetingsTx) GetByID(ctx context.Context, id uuid.UUID) (dm.Meeting, error) {
	m, err := scanMeetingWithOwner(t.tx.QueryRowContext(ctx,
		meetingWithOwner+` WHERE m.id=$1 FOR UPDATE OF m`,
		id,
	))
	if err != nil {
		return dm.Meeting{}, mapErr(err, serr.ErrMeetingNotFound)
	}
	return m, nil
}

func (t *meetingsTx) Insert(ctx context.Context, m dm.Meeting) (dm.Meeting, error) {
	out, err := scanMeeting(t.tx.QueryRowContext(ctx,
		`INSERT INTO meetings (user_id, title, start_time, end_time)
		 VALUES ($1,$2,$3,$4)
		 RETURNING `+meetingColumns,
		m.UserID, m.Title, m.StartTime, m.EndTime,
	))
	if err != nil {
		return dm.Meeting{}, mapErr(err, serr.ErrInternal)
	}
	out.Owner = t.owner.Summary()
	return out, nil
}

func (t *meetingsTx) Update(ctx context.Context, m dm.Meeting) (dm.Meeting, error) {
	out, err := scanMeeting(t.tx.QueryRowContext(ctx,
		`UPDATE meetings
		 SET title=$2, start_time=$3, end_time=$4, updated_at=now()
		 WHERE id=$1
		 RETURNING `+meetingColumns,
		m.ID, m.Title, m.StartTime, m.EndTime,
	))
	if err != nil {
		return dm.Meeting{}, mapErr(err, serr.ErrMeetingNotFound)
	}
	out.Owner = t.owner.Summary()
	return out, nil
}
