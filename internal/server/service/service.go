// Package service содержит бизнес-логику планировщика встреч.
// Это прослойка между HTTP-обработчиками (api) и хранилищем данных (repository).
//
// Главный инвариант: у одного пользователя никогда не хранятся две
// пересекающиеся встречи. Проверка пересечения и запись выполняются внутри
// одной транзакции под блокировкой пользователя (MeetingsRepo.WithUserLock).
package service

//go:generate mockgen -source=service.go -destination=mocks/mock_repos.go -package=mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/config"
	dm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"
)

// Repositories — набор интерфейсов, которые сервисный слой ожидает от слоя repository.
type Repositories struct {
	Users    UsersRepo
	Meetings MeetingsRepo
	Health   HealthRepo
}

// Services — агрегатор всех сервисов приложения.
type Services struct {
	Users    *UsersService
	Meetings *MeetingsService
	Health   *HealthService
}

// NewServices собирает все сервисы приложения.
// cfg нужен для лимитов пагинации, log — для записи неожиданных ошибок.
func NewServices(repos Repositories, cfg *config.Config, log *logger.Logger) *Services {
	pager := NewPager(cfg.Pagination)
	return &Services{
		Users:    NewUsersService(repos.Users, pager, log.Named("users")),
		Meetings: NewMeetingsService(repos.Meetings, repos.Users, pager, log.Named("meetings")),
		Health:   NewHealthService(repos.Health),
	}
}

// HealthRepo — минимально нужное для health-check.
type HealthRepo interface {
	Ping(ctx context.Context) error
}

// UsersRepo — репозиторий пользователей.
type UsersRepo interface {
	Create(ctx context.Context, name, email string) (dm.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (dm.User, error)
	List(ctx context.Context, page models.Page) ([]dm.User, int, error)
	// Update атомарно меняет только переданные поля (nil — оставить как есть).
	Update(ctx context.Context, id uuid.UUID, in models.UpdateUserInput) (dm.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MeetingsRepo — репозиторий встреч.
type MeetingsRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (dm.Meeting, error)
	List(ctx context.Context, f models.MeetingFilter) ([]dm.Meeting, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// WithUserLock открывает транзакцию, блокирует пользователя userID
	// и выполняет fn. Нет пользователя — ErrUserNotFound, fn не вызывается.
	// Ошибка из fn откатывает транзакцию.
	WithUserLock(ctx context.Context, userID uuid.UUID, fn func(tx MeetingsTx) error) error
}

// MeetingsTx — операции над встречами внутри транзакции WithUserLock.
type MeetingsTx interface {
	// Owner — заблокированный пользователь.
	Owner() dm.User
	// HasOverlap ищет встречу пользователя, пересекающую iv; excludeID (если не uuid.Nil) не учитывается.
	HasOverlap(ctx context.Context, userID uuid.UUID, iv dm.Interval, excludeID uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (dm.Meeting, error)
	Insert(ctx context.Context, m dm.Meeting) (dm.Meeting, error)
	Update(ctx context.Context, m dm.Meeting) (dm.Meeting, error)
}
