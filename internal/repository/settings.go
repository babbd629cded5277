package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
)

// SettingsRepository — доступ к единственной строке platform_settings.
type SettingsRepository interface {
	// Get возвращает текущие настройки платформы.
	Get(ctx context.Context) (*model.PlatformSettings, error)
	// Update перезаписывает настройки платформы одним запросом.
	Update(ctx context.Context, s *model.PlatformSettings) error
}

type settingsRepo struct {
	db DBTX
}

// NewSettingsRepository создаёт репозиторий настроек платформы.
func NewSettingsRepository(db DBTX) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*model.PlatformSettings, error) {
	query := `
		SELECT registration_open, featured_limit, maintenance_message, updated_at
		FROM platform_settings
		WHERE id = 1`

	s := &model.PlatformSettings{}
	err := r.db.QueryRow(ctx, query).Scan(
		&s.RegistrationOpen, &s.FeaturedLimit, &s.MaintenanceMessage, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения настроек платформы: %w", err)
	}
	return s, nil
}

func (r *settingsRepo) Update(ctx context.Context, s *model.PlatformSettings) error {
	query := `
		UPDATE platform_settings
		SET registration_open = $1, featured_limit = $2,
			maintenance_message = $3, updated_at = now()
		WHERE id = 1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		s.RegistrationOpen, s.FeaturedLimit, s.MaintenanceMessage,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления настроек платформы: %w", err)
	}
	return nil
}
