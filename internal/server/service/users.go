package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	dm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/models"
	serr "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/utils"
)

// правила совпадают с validate-тегами DTO в shared/models
const (
	nameRule  = "required,max=255"
	emailRule = "required,email,max=255"
)

var validate = validator.New()

// UsersService реализует CRUD пользователей.
//
// Email хранится в нижнем регистре без пробелов; уникальность гарантирует
// хранилище (ErrDuplicateEmail). Удаление пользователя каскадно удаляет его встречи
// на уровне хранилища.
type UsersService struct {
	repo  UsersRepo
	pager Pager
	log   *logger.Logger
}

func NewUsersService(repo UsersRepo, pager Pager, log *logger.Logger) *UsersService {
	return &UsersService{repo: repo, pager: pager, log: log}
}

// Create создаёт пользователя.
//
// Ошибки:
//   - ErrInvalidInput — пустое имя, имя длиннее 255 символов, невалидный email;
//   - ErrDuplicateEmail — email уже занят.
func (s *UsersService) Create(ctx context.Context, in models.CreateUserInput) (dm.User, error) {
	name := strings.TrimSpace(in.Name)
	email := utils.NormalizeEmail(in.Email)

	if err := validateName(name); err != nil {
		return dm.User{}, err
	}
	if err := validateEmail(email); err != nil {
		return dm.User{}, err
	}

	u, err := s.repo.Create(ctx, name, email)
	if err != nil {
		return dm.User{}, err
	}
	s.log.Debug("user created", zap.String("user_id", u.ID.String()))
	return u, nil
}

func (s *UsersService) GetByID(ctx context.Context, id uuid.UUID) (dm.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List — страница пользователей (новые первыми) и общее количество.
func (s *UsersService) List(ctx context.Context, page models.Page) ([]dm.User, int, error) {
	page, err := s.pager.Normalize(page)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, page)
}

// Update частично обновляет пользователя: непереданные поля сохраняют текущие значения.
// Слияние выполняет хранилище одной операцией.
func (s *UsersService) Update(ctx context.Context, id uuid.UUID, in models.UpdateUserInput) (dm.User, error) {
	if in.Name == nil && in.Email == nil {
		return dm.User{}, serr.ErrInvalidInput
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return dm.User{}, err
		}
		in.Name = &name
	}
	if in.Email != nil {
		email := utils.NormalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return dm.User{}, err
		}
		in.Email = &email
	}

	return s.repo.Update(ctx, id, in)
}

// Delete удаляет пользователя вместе со всеми его встречами.
func (s *UsersService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func validateName(name string) error {
	if err := validate.Var(name, nameRule); err != nil {
		return serr.ErrInvalidInput
	}
	return nil
}

func validateEmail(email string) error {
	if err := validate.Var(email, emailRule); err != nil {
		return serr.ErrInvalidInput
	}
	return nil
}
