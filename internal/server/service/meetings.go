package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/models"
	serr "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/utils"
)

const (
	minTitleLen = 3
	maxTitleLen = 255
)

// MeetingsService реализует жизненный цикл встреч.
//
// Любая запись, меняющая время встречи, идёт по схеме:
// блокировка пользователя -> проверка пересечений -> запись -> коммит.
// Хранилище дополнительно отклоняет пересечения exclusion-констрейнтом,
// поэтому два пересекающихся интервала одного пользователя не коммитятся никогда.
type MeetingsService struct {
	repo    MeetingsRepo
	users   UsersRepo
	pager   Pager
	overlap OverlapChecker
	log     *logger.Logger
}

func NewMeetingsService(repo MeetingsRepo, users UsersRepo, pager Pager, log *logger.Logger) *MeetingsService {
	return &MeetingsService{repo: repo, users: users, pager: pager, log: log}
}

// Create создаёт встречу.
//
// Порядок проверок:
//  1. title и интервал (ErrInvalidInput / ErrInvalidTimeRange);
//  2. существование пользователя (ErrUserNotFound);
//  3. пересечения (ErrSchedulingConflict).
func (s *MeetingsService) Create(ctx context.Context, in models.CreateMeetingInput) (dm.Meeting, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return dm.Meeting{}, err
	}
	iv := in.Interval()
	if !iv.Valid() {
		return dm.Meeting{}, serr.ErrInvalidTimeRange
	}

	var created dm.Meeting
	err = s.repo.WithUserLock(ctx, in.UserID, func(tx MeetingsTx) error {
		if err := s.overlap.Ensure(ctx, tx, in.UserID, iv, uuid.Nil); err != nil {
			return err
		}

		m, err := tx.Insert(ctx, dm.Meeting{
			UserID:    in.UserID,
			Title:     title,
			StartTime: iv.Start,
			EndTime:   iv.End,
		})
		if err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		s.logRejected("create", in.UserID, uuid.Nil, err)
		return dm.Meeting{}, err
	}

	return created, nil
}

func (s *MeetingsService) GetByID(ctx context.Context, id uuid.UUID) (dm.Meeting, error) {
	return s.repo.GetByID(ctx, id)
}

// Update частично обновляет встречу.
//
// Непереданные поля сохраняют текущие значения. Итоговый интервал обязан
// удовлетворять start < end. Проверка пересечений выполняется, только если
// передано startTime или endTime; сама встреча из проверки исключается.
func (s *MeetingsService) Update(ctx context.Context, id uuid.UUID, in models.UpdateMeetingInput) (dm.Meeting, error) {
	if in.Title == nil && !in.ChangesTime() {
		return dm.Meeting{}, serr.ErrInvalidInput
	}
	if in.Title != nil {
		title, err := normalizeTitle(*in.Title)
		if err != nil {
			return dm.Meeting{}, err
		}
		in.Title = &title
	}

	cur, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dm.Meeting{}, err
	}

	var updated dm.Meeting
	err = s.repo.WithUserLock(ctx, cur.UserID, func(tx MeetingsTx) error {
		// перечитываем под блокировкой: встречу могли изменить или удалить
		locked, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}

		next := in.Apply(locked)
		if !next.Interval().Valid() {
			return serr.ErrInvalidTimeRange
		}
		if in.ChangesTime() {
			if err := s.overlap.Ensure(ctx, tx, next.UserID, next.Interval(), next.ID); err != nil {
				return err
			}
		}

		m, err := tx.Update(ctx, next)
		if err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		// пользователя удалили между чтением и блокировкой — встреча ушла каскадом
		if errors.Is(err, serr.ErrUserNotFound) {
			err = serr.ErrMeetingNotFound
		}
		s.logRejected("update", cur.UserID, id, err)
		return dm.Meeting{}, err
	}

	return updated, nil
}

// Delete удаляет встречу. Каскадов нет.
func (s *MeetingsService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// List возвращает страницу встреч по фильтрам, отсортированную по start_time.
//
// StartDate ограничивает start_time снизу, EndDate ограничивает end_time сверху
// концом указанного дня (23:59:59.999). При обоих фильтрах границы проверяются
// независимо: это не поиск пересечения с диапазоном.
func (s *MeetingsService) List(ctx context.Context, q models.MeetingQuery) ([]dm.Meeting, int, error) {
	page, err := s.pager.Normalize(q.Page)
	if err != nil {
		return nil, 0, err
	}

	f := models.MeetingFilter{UserID: q.UserID, StartFrom: q.StartDate, Page: page}
	if q.EndDate != nil {
		end := utils.EndOfDay(*q.EndDate)
		f.EndTo = &end
	}

	return s.repo.List(ctx, f)
}

// ListByUser — встречи одного пользователя; ErrUserNotFound, если пользователя нет.
func (s *MeetingsService) ListByUser(ctx context.Context, userID uuid.UUID, page models.Page) ([]dm.Meeting, int, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.List(ctx, models.MeetingQuery{UserID: &userID, Page: page})
}

// logRejected пишет отказ в debug; внутренние ошибки логирует api слой.
func (s *MeetingsService) logRejected(op string, userID, meetingID uuid.UUID, err error) {
	if errors.Is(err, serr.ErrInternal) {
		return
	}
	s.log.Debug("meeting "+op+" rejected",
		zap.String("user_id", userID.String()),
		zap.String("meeting_id", meetingID.String()),
		zap.Error(err),
	)
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	n := utf8.RuneCountInString(title)
	if n < minTitleLen || n > maxTitleLen {
		return "", serr.ErrInvalidInput
	}
	return title, nil
}
