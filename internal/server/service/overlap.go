package service

import (
	"context"

	"github.com/google/uuid"

	dm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/errors"
)

// OverlapChecker решает, можно ли записать интервал iv пользователю userID.
//
// Вызывается только внутри MeetingsRepo.WithUserLock: снимок встреч
// пользователя не меняется до коммита записи, которая следует за проверкой.
type OverlapChecker struct{}

// Ensure возвращает:
//   - ErrInvalidTimeRange, если iv.Start >= iv.End;
//   - ErrSchedulingConflict, если есть пересечение с другой встречей;
//   - ошибку хранилища как есть.
//
// excludeID — id самой обновляемой встречи (uuid.Nil при создании).
func (OverlapChecker) Ensure(ctx context.Context, tx MeetingsTx, userID uuid.UUID, iv dm.Interval, excludeID uuid.UUID) error {
	if !iv.Valid() {
		return serr.ErrInvalidTimeRange
	}

	busy, err := tx.HasOverlap(ctx, userID, iv, excludeID)
	if err != nil {
		return err
	}
	if busy {
		return serr.ErrSchedulingConflict
	}
	return nil
}
