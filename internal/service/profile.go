// profile.go — сервис профилей пользователей.
// Профиль создаётся при регистрации через auth-сервис и хранится
// в таблице profiles. Роль в колонке user_type — авторитетный источник
// прав доступа; claim в токене лишь кэширует её на время сессии.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/rbac"
	"github.com/bigkaa/hackingtorch/portal-module/internal/repository"
)

// ProfileService — сервис профилей пользователей.
type ProfileService struct {
	repo   repository.ProfileRepository
	logger *slog.Logger
}

// NewProfileService создаёт сервис профилей.
func NewProfileService(repo repository.ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		logger: logger.With(slog.String("component", "profile_service")),
	}
}

// Get возвращает профиль пользователя по ID.
func (s *ProfileService) Get(ctx context.Context, id string) (*model.Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение профиля: %w", err)
	}
	return p, nil
}

// UserRole возвращает роль пользователя из колонки user_type.
// Используется middleware админской панели: роль читается из БД
// при каждой проверке, а не из токена сессии.
func (s *ProfileService) UserRole(ctx context.Context, userID string) (string, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("получение роли пользователя: %w", err)
	}
	return p.UserType, nil
}

// Register создаёт профиль для нового пользователя auth-сервиса.
// ID — subject из auth-сервиса. Роль по умолчанию — participant,
// статус — active. Повторная регистрация того же email — конфликт.
func (s *ProfileService) Register(ctx context.Context, id, firstName, lastName, email string) (*model.Profile, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)
	if id == "" || email == "" || firstName == "" {
		return nil, fmt.Errorf("%w: имя и email обязательны", ErrValidation)
	}

	p := &model.Profile{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		UserType:  rbac.RoleParticipant,
		Status:    rbac.StatusActive,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("создание профиля: %w", err)
	}

	s.logger.Info("Профиль создан",
		slog.String("user_id", p.ID),
		slog.String("email", p.Email),
	)
	return p, nil
}

// Update сохраняет редактируемые поля профиля (имя, фамилия, аватар).
// Роль и статус через этот метод не меняются.
func (s *ProfileService) Update(ctx context.Context, p *model.Profile) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("%w: имя не может быть пустым", ErrValidation)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("обновление профиля: %w", err)
	}
	return nil
}
