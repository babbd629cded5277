// catalog.go — сервис публичного каталога мероприятий.
// Каталог показывает только опубликованные мероприятия: продвигаемые
// на главной странице (лимит задаётся настройками платформы) и
// предстоящие с фильтром по типу.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
	"github.com/bigkaa/hackingtorch/portal-module/internal/repository"
)

// fallbackFeaturedLimit — лимит продвигаемых мероприятий, если настройки
// платформы недоступны.
const fallbackFeaturedLimit = 6

// CatalogService — сервис публичного каталога.
type CatalogService struct {
	eventRepo    repository.EventRepository
	settingsRepo repository.SettingsRepository
	logger       *slog.Logger
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(
	eventRepo repository.EventRepository,
	settingsRepo repository.SettingsRepository,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		eventRepo:    eventRepo,
		settingsRepo: settingsRepo,
		logger:       logger.With(slog.String("component", "catalog_service")),
	}
}

// Settings возвращает настройки платформы для публичных страниц
// (баннер техработ, флаг открытой регистрации). При недоступности
// хранилища возвращает дефолты: публичные страницы не должны падать
// из-за настроек.
func (s *CatalogService) Settings(ctx context.Context) *model.PlatformSettings {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		s.logger.Warn("Настройки платформы недоступны, используются значения по умолчанию",
			slog.String("error", err.Error()),
		)
		return &model.PlatformSettings{
			RegistrationOpen: true,
			FeaturedLimit:    fallbackFeaturedLimit,
		}
	}
	return settings
}

// Featured возвращает продвигаемые мероприятия для главной страницы.
// Количество ограничено настройкой платформы featured_limit; при
// недоступности настроек используется запасной лимит, чтобы главная
// страница продолжала работать.
func (s *CatalogService) Featured(ctx context.Context) ([]*model.Event, error) {
	limit := fallbackFeaturedLimit
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		s.logger.Warn("Настройки платформы недоступны, используется запасной лимит",
			slog.String("error", err.Error()),
		)
	} else {
		limit = settings.FeaturedLimit
	}

	events, err := s.eventRepo.ListPublished(ctx, repository.CatalogFilter{
		FeaturedOnly: true,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("получение продвигаемых мероприятий: %w", err)
	}
	return events, nil
}

// Upcoming возвращает предстоящие опубликованные мероприятия,
// опционально отфильтрованные по типу.
func (s *CatalogService) Upcoming(ctx context.Context, eventType string) ([]*model.Event, error) {
	events, err := s.eventRepo.ListPublished(ctx, repository.CatalogFilter{
		EventType:    eventType,
		UpcomingOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("получение предстоящих мероприятий: %w", err)
	}
	return events, nil
}

// GetEvent возвращает мероприятие для публичной страницы деталей.
// Черновики и мероприятия на модерации наружу не отдаются: для
// посетителя каталога они неотличимы от несуществующих.
func (s *CatalogService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение мероприятия: %w", err)
	}

	switch e.Status {
	case model.EventStatusPublished, model.EventStatusActive, model.EventStatusCompleted:
		return e, nil
	default:
		return nil, ErrNotFound
	}
}
