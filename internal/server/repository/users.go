package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	dm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/models"
	serr "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/errors"
)

const userColumns = `id, name, email, created_at, updated_at`

// UsersRepository хранит пользователей в PostgreSQL.
type UsersRepository struct {
	db *sql.DB
}

func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (dm.User, error) {
	var u dm.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return dm.User{}, err
	}
	utc(&u.CreatedAt, &u.UpdatedAt)
	return u, nil
}

// Create добавляет пользователя.
//
// Ошибки:
//   - ErrDuplicateEmail — email уже занят (users_email_key)
//   - ErrInternal — ошибка базы данных
func (r *UsersRepository) Create(ctx context.Context, name, email string) (dm.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email)
		 VALUES ($1,$2)
		 RETURNING `+userColumns,
		name, email,
	))
	if err != nil {
		return dm.User{}, mapErr(err, serr.ErrInternal)
	}
	return u, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (dm.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1`,
		id,
	))
	if err != nil {
		return dm.User{}, mapErr(err, serr.ErrUserNotFound)
	}
	return u, nil
}

// List возвращает страницу пользователей (новые первыми) и их общее количество.
// Оба запроса выполняются в одном снимке данных.
func (r *UsersRepository) List(ctx context.Context, page models.Page) ([]dm.User, int, error) {
	var (
		users []dm.User
		total int
	)

	err := readTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT `+userColumns+` FROM users
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1 OFFSET $2`,
			page.Limit, page.Offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		users = make([]dm.User, 0, page.Limit)
		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, mapErr(err, serr.ErrInternal)
	}

	return users, total, nil
}

// Update меняет переданные поля одним UPDATE: NULL в COALESCE оставляет текущее значение,
// поэтому параллельные правки разных полей не затирают друг друга.
func (r *UsersRepository) Update(ctx context.Context, id uuid.UUID, in models.UpdateUserInput) (dm.User, error) {
	out, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET name=COALESCE($2, name), email=COALESCE($3, email), updated_at=now()
		 WHERE id=$1
		 RETURNING `+userColumns,
		id, nullString(in.Name), nullString(in.Email),
	))
	if err != nil {
		return dm.User{}, mapErr(err, serr.ErrUserNotFound)
	}
	return out, nil
}

// Delete удаляет пользователя; встречи удаляются каскадом (ON DELETE CASCADE).
func (r *UsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return internalErr(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return internalErr(err)
	}
	if n == 0 {
		return serr.ErrUserNotFound
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// readTx выполняет fn в read-only транзакции REPEATABLE READ,
// чтобы COUNT и выборка страницы видели одни и те же данные.
func readTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
