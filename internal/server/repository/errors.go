// Package repository содержит реализации слоя доступа к данным (Repository layer).
//
// Репозитории инкапсулируют работу с БД и не содержат бизнес-логики.
// Все ошибки приводятся к доменным ошибкам из internal/shared/errors.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"

	serr "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/errors"
)

// коды ошибок PostgreSQL
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgExclusionViolation  = "23P01"
)

const (
	constraintEmailKey  = "users_email_key"
	constraintTimeRange = "meetings_time_range_check"
)

// mapErr приводит ошибку драйвера к доменной.
// notFound возвращается для sql.ErrNoRows, всё неизвестное — ErrInternal с причиной.
func mapErr(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == constraintEmailKey {
				return serr.ErrDuplicateEmail
			}
		case pgExclusionViolation:
			return serr.ErrSchedulingConflict
		case pgCheckViolation:
			if pgErr.ConstraintName == constraintTimeRange {
				return serr.ErrInvalidTimeRange
			}
			return serr.ErrInvalidInput
		case pgForeignKeyViolation:
			return serr.ErrUserNotFound
		}
	}

	return internalErr(err)
}

// internalErr оборачивает ошибку драйвера в ErrInternal, сохраняя причину для лога.
func internalErr(err error) error {
	return fmt.Errorf("%w: %v", serr.ErrInternal, err)
}

// utc нормализует время из БД: драйвер отдаёт timestamptz в локальной зоне.
func utc(ts ...*time.Time) {
	for _, t := range ts {
		*t = t.UTC()
	}
}
