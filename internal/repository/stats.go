package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
)

// StatsRepository — агрегированные счётчики для панели администратора.
type StatsRepository interface {
	// Collect собирает статистику платформы.
	// Если хотя бы один счётчик недоступен — возвращается ошибка,
	// частичная статистика не отдаётся.
	Collect(ctx context.Context) (*model.PlatformStats, error)
}

type statsRepo struct {
	db DBTX
}

// NewStatsRepository создаёт репозиторий статистики.
func NewStatsRepository(db DBTX) StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) Collect(ctx context.Context) (*model.PlatformStats, error) {
	// Все счётчики одним запросом, чтобы статистика была
	// согласована на один момент времени.
	query := `
		SELECT
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM events WHERE status IN ('published', 'active')),
			(SELECT COUNT(*) FROM events WHERE status = 'pending'),
			(SELECT COUNT(*) FROM teams),
			(SELECT COUNT(*) FROM submissions)`

	stats := &model.PlatformStats{}
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalUsers, &stats.TotalEvents, &stats.ActiveEvents,
		&stats.PendingEvents, &stats.TotalTeams, &stats.TotalSubmissions,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка сбора статистики: %w", err)
	}
	return stats, nil
}
