// Пакет service — бизнес-логика Portal Module.
// admin.go — сервис административной панели: управление пользователями,
// модерация мероприятий, агрегированная статистика.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/rbac"
	"github.com/bigkaa/hackingtorch/portal-module/internal/repository"
)

// Пределы постраничной выдачи админских списков.
const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// UserFilter — параметры выборки пользователей в админке.
// Пустые строки означают отсутствие фильтра.
type UserFilter struct {
	// Role — фильтр по роли (participant, organizer, admin).
	Role string
	// Status — фильтр по статусу аккаунта.
	Status string
	// Search — подстрока для поиска по имени/email.
	Search string
	// Page — номер страницы, начиная с 1.
	Page int
	// Limit — размер страницы.
	Limit int
}

// EventFilter — параметры выборки мероприятий в админке.
type EventFilter struct {
	// Status — фильтр по статусу мероприятия.
	Status string
	// EventType — фильтр по типу мероприятия.
	EventType string
	// Search — подстрока для поиска по названию или описанию.
	Search string
	// Page — номер страницы, начиная с 1.
	Page int
	// Limit — размер страницы.
	Limit int
}

// AdminService — сервис административной панели.
// Все операции доступны только пользователям с ролью admin;
// контроль доступа выполняется в middleware, сюда запросы приходят
// уже авторизованными.
type AdminService struct {
	profileRepo  repository.ProfileRepository
	eventRepo    repository.EventRepository
	statsRepo    repository.StatsRepository
	settingsRepo repository.SettingsRepository
	logger       *slog.Logger
}

// NewAdminService создаёт сервис административной панели.
func NewAdminService(
	profileRepo repository.ProfileRepository,
	eventRepo repository.EventRepository,
	statsRepo repository.StatsRepository,
	settingsRepo repository.SettingsRepository,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		profileRepo:  profileRepo,
		eventRepo:    eventRepo,
		statsRepo:    statsRepo,
		settingsRepo: settingsRepo,
		logger:       logger.With(slog.String("component", "admin_service")),
	}
}

// pageWindow преобразует номер страницы и размер в limit/offset,
// нормализуя некорректные значения к допустимым.
func pageWindow(page, limit int) (int, int) {
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// optional превращает пустую строку в nil-фильтр.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ListUsers возвращает страницу пользователей и общее количество
// с учётом фильтров.
func (s *AdminService) ListUsers(ctx context.Context, f UserFilter) ([]*model.Profile, int, error) {
	if f.Role != "" && !rbac.IsValidRole(f.Role) {
		return nil, 0, ErrInvalidRole
	}
	if f.Status != "" && !rbac.IsValidStatus(f.Status) {
		return nil, 0, ErrInvalidStatus
	}

	limit, offset := pageWindow(f.Page, f.Limit)
	role, status, search := optional(f.Role), optional(f.Status), optional(f.Search)

	users, err := s.profileRepo.List(ctx, role, status, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("получение списка пользователей: %w", err)
	}

	total, err := s.profileRepo.Count(ctx, role, status, search)
	if err != nil {
		return nil, 0, fmt.Errorf("подсчёт пользователей: %w", err)
	}

	return users, total, nil
}

// GetUser возвращает профиль пользователя по ID.
func (s *AdminService) GetUser(ctx context.Context, id string) (*model.Profile, error) {
	p, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение профиля: %w", err)
	}
	return p, nil
}

// UpdateUserRole меняет роль пользователя.
// Роль валидируется до обращения к хранилищу.
func (s *AdminService) UpdateUserRole(ctx context.Context, id, role string) (*model.Profile, error) {
	if !rbac.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	if err := s.profileRepo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("изменение роли: %w", err)
	}

	s.logger.Info("Роль пользователя изменена",
		slog.String("user_id", id),
		slog.String("role", role),
	)

	return s.GetUser(ctx, id)
}

// UpdateUserStatus меняет статус аккаунта (active, suspended, pending).
func (s *AdminService) UpdateUserStatus(ctx context.Context, id, status string) (*model.Profile, error) {
	if !rbac.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	if err := s.profileRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("изменение статуса аккаунта: %w", err)
	}

	s.logger.Info("Статус аккаунта изменён",
		slog.String("user_id", id),
		slog.String("status", status),
	)

	return s.GetUser(ctx, id)
}

// ListEvents возвращает страницу мероприятий и общее количество
// с учётом фильтров.
func (s *AdminService) ListEvents(ctx context.Context, f EventFilter) ([]*model.Event, int, error) {
	if f.Status != "" && !model.IsValidEventStatus(f.Status) {
		return nil, 0, ErrInvalidEventStatus
	}

	limit, offset := pageWindow(f.Page, f.Limit)
	status, eventType, search := optional(f.Status), optional(f.EventType), optional(f.Search)

	events, err := s.eventRepo.List(ctx, status, eventType, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("получение списка мероприятий: %w", err)
	}

	total, err := s.eventRepo.Count(ctx, status, eventType, search)
	if err != nil {
		return nil, 0, fmt.Errorf("подсчёт мероприятий: %w", err)
	}

	return events, total, nil
}

// GetEvent возвращает мероприятие по ID без ограничений по статусу.
func (s *AdminService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение мероприятия: %w", err)
	}
	return e, nil
}

// UpdateEventStatus меняет статус мероприятия (модерация: approve/reject,
// а также публикация, завершение, отмена).
func (s *AdminService) UpdateEventStatus(ctx context.Context, id, status string) (*model.Event, error) {
	if !model.IsValidEventStatus(status) {
		return nil, ErrInvalidEventStatus
	}

	if err := s.eventRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("изменение статуса мероприятия: %w", err)
	}

	s.logger.Info("Статус мероприятия изменён",
		slog.String("event_id", id),
		slog.String("status", status),
	)

	return s.GetEvent(ctx, id)
}

// DeleteEvent удаляет мероприятие вместе со связанными записями.
func (s *AdminService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление мероприятия: %w", err)
	}

	s.logger.Info("Мероприятие удалено", slog.String("event_id", id))
	return nil
}

// GetStats возвращает агрегированную статистику платформы.
// Агрегат собирается по принципу «всё или ничего»: при любой ошибке
// вместо частичной статистики возвращается ошибка целиком.
func (s *AdminService) GetStats(ctx context.Context) (*model.PlatformStats, error) {
	stats, err := s.statsRepo.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("сбор статистики платформы: %w", err)
	}
	return stats, nil
}

// GetSettings возвращает текущие настройки платформы.
func (s *AdminService) GetSettings(ctx context.Context) (*model.PlatformSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение настроек платформы: %w", err)
	}
	return settings, nil
}

// UpdateSettings валидирует и сохраняет настройки платформы.
func (s *AdminService) UpdateSettings(ctx context.Context, settings *model.PlatformSettings) error {
	if settings.FeaturedLimit < 1 || settings.FeaturedLimit > 24 {
		return fmt.Errorf("%w: лимит продвигаемых мероприятий должен быть от 1 до 24", ErrValidation)
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return fmt.Errorf("сохранение настроек платформы: %w", err)
	}

	s.logger.Info("Настройки платформы обновлены",
		slog.Bool("registration_open", settings.RegistrationOpen),
		slog.Int("featured_limit", settings.FeaturedLimit),
	)
	return nil
}
