package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
)

const eventColumns = `e.id, e.organizer_id, e.name, e.description, e.event_type, e.format,
		e.location, e.online_url, e.start_date, e.end_date, e.cover_image_url,
		e.max_participants, e.max_team_size, e.is_featured, e.status,
		e.created_at, e.updated_at`

// CatalogFilter — параметры выборки публичного каталога мероприятий.
type CatalogFilter struct {
	// EventType — фильтр по типу (hackathon, workshop и т.д.). Пустая строка — все.
	EventType string
	// FeaturedOnly — только избранные мероприятия.
	FeaturedOnly bool
	// UpcomingOnly — только будущие (start_date >= now()).
	UpcomingOnly bool
	// Limit — максимум записей (0 — без ограничения).
	Limit int
}

// EventRepository — доступ к таблицам events и event_categories.
type EventRepository interface {
	// GetByID возвращает мероприятие с категориями.
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// List возвращает страницу мероприятий для админки с фильтрацией
	// по статусу, типу и поиском по названию или описанию (ILIKE).
	List(ctx context.Context, status, eventType, search *string, limit, offset int) ([]*model.Event, error)
	// Count возвращает количество мероприятий с той же фильтрацией.
	Count(ctx context.Context, status, eventType, search *string) (int, error)
	// ListPublished возвращает опубликованные мероприятия для каталога,
	// отсортированные по дате начала.
	ListPublished(ctx context.Context, filter CatalogFilter) ([]*model.Event, error)
	// UpdateStatus меняет статус мероприятия одним запросом.
	UpdateStatus(ctx context.Context, id, status string) error
	// Delete удаляет мероприятие. Связанные записи удаляются каскадно.
	Delete(ctx context.Context, id string) error
}

type eventRepo struct {
	db DBTX
}

// NewEventRepository создаёт репозиторий мероприятий.
func NewEventRepository(db DBTX) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		WHERE e.id = $1`

	e := &model.Event{}
	err := r.db.QueryRow(ctx, query, id).Scan(scanDest(e)...)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения мероприятия: %w", err)
	}

	if err := r.loadCategories(ctx, []*model.Event{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// eventFilter строит WHERE-условия для List и Count.
func eventFilter(status, eventType, search *string) (string, []any) {
	var conditions []string
	var args []any
	argNum := 1

	if status != nil {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", argNum))
		args = append(args, *status)
		argNum++
	}
	if eventType != nil {
		conditions = append(conditions, fmt.Sprintf("e.event_type = $%d", argNum))
		args = append(args, *eventType)
		argNum++
	}
	if search != nil && *search != "" {
		conditions = append(conditions,
			fmt.Sprintf("(e.name ILIKE $%d OR e.description ILIKE $%d)", argNum, argNum))
		args = append(args, "%"+*search+"%")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return where, args
}

func (r *eventRepo) List(ctx context.Context, status, eventType, search *string, limit, offset int) ([]*model.Event, error) {
	where, args := eventFilter(status, eventType, search)
	argNum := len(args) + 1

	query := fmt.Sprintf(`
		SELECT `+eventColumns+`
		FROM events e
		%s
		ORDER BY e.created_at DESC, e.id
		LIMIT $%d OFFSET $%d`, where, argNum, argNum+1)

	args = append(args, limit, offset)

	events, err := r.queryEvents(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := r.loadCategories(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepo) Count(ctx context.Context, status, eventType, search *string) (int, error) {
	where, args := eventFilter(status, eventType, search)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM events e %s`, where)

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта мероприятий: %w", err)
	}
	return count, nil
}

func (r *eventRepo) ListPublished(ctx context.Context, filter CatalogFilter) ([]*model.Event, error) {
	// Каталог показывает опубликованные и идущие мероприятия
	conditions := []string{"e.status IN ('published', 'active')"}
	var args []any
	argNum := 1

	if filter.EventType != "" {
		conditions = append(conditions, fmt.Sprintf("e.event_type = $%d", argNum))
		args = append(args, filter.EventType)
		argNum++
	}
	if filter.FeaturedOnly {
		conditions = append(conditions, "e.is_featured = TRUE")
	}
	if filter.UpcomingOnly {
		conditions = append(conditions, "e.start_date >= now()")
	}

	limitClause := ""
	if filter.Limit > 0 {
		limitClause = fmt.Sprintf("LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	query := fmt.Sprintf(`
		SELECT `+eventColumns+`
		FROM events e
		WHERE %s
		ORDER BY e.start_date ASC, e.id
		%s`, strings.Join(conditions, " AND "), limitClause)

	events, err := r.queryEvents(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := r.loadCategories(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса мероприятия: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления мероприятия: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *eventRepo) queryEvents(ctx context.Context, query string, args ...any) ([]*model.Event, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка мероприятий: %w", err)
	}
	defer rows.Close()

	var result []*model.Event
	for rows.Next() {
		e := &model.Event{}
		if err := rows.Scan(scanDest(e)...); err != nil {
			return nil, fmt.Errorf("ошибка сканирования мероприятия: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// loadCategories дозагружает названия категорий одним запросом
// для всех мероприятий выборки.
func (r *eventRepo) loadCategories(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}

	byID := make(map[string]*model.Event, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	query := `
		SELECT ec.event_id, c.name
		FROM event_categories ec
		JOIN categories c ON c.id = ec.category_id
		WHERE ec.event_id = ANY($1)
		ORDER BY c.name`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("ошибка получения категорий: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, name string
		if err := rows.Scan(&eventID, &name); err != nil {
			return fmt.Errorf("ошибка сканирования категории: %w", err)
		}
		if e, ok := byID[eventID]; ok {
			e.Categories = append(e.Categories, name)
		}
	}
	return rows.Err()
}

// scanDest возвращает указатели на поля Event в порядке eventColumns.
func scanDest(e *model.Event) []any {
	return []any{
		&e.ID, &e.OrganizerID, &e.Name, &e.Description, &e.EventType, &e.Format,
		&e.Location, &e.OnlineURL, &e.StartDate, &e.EndDate, &e.CoverImageURL,
		&e.MaxParticipants, &e.MaxTeamSize, &e.IsFeatured, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
	}
}
