package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
)

// ProfileRepository — доступ к таблице profiles.
type ProfileRepository interface {
	// Create создаёт профиль пользователя. ID — subject из auth-сервиса.
	Create(ctx context.Context, p *model.Profile) error
	// GetByID возвращает профиль по UUID.
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	// GetByEmail возвращает профиль по email.
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	// List возвращает страницу профилей с фильтрацией по роли, статусу
	// и поиском по имени/email (ILIKE).
	List(ctx context.Context, role, status, search *string, limit, offset int) ([]*model.Profile, error)
	// Count возвращает количество профилей с той же фильтрацией, что и List.
	Count(ctx context.Context, role, status, search *string) (int, error)
	// UpdateRole меняет роль пользователя одним запросом.
	UpdateRole(ctx context.Context, id, role string) error
	// UpdateStatus меняет статус аккаунта одним запросом.
	UpdateStatus(ctx context.Context, id, status string) error
	// Update обновляет редактируемые поля профиля.
	Update(ctx context.Context, p *model.Profile) error
}

type profileRepo struct {
	db DBTX
}

// NewProfileRepository создаёт репозиторий профилей.
func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (id, first_name, last_name, email, avatar_url, user_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.FirstName, p.LastName, p.Email, p.AvatarURL, p.UserType, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email уже зарегистрирован", ErrConflict)
		}
		return fmt.Errorf("ошибка создания профиля: %w", err)
	}
	return nil
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	query := `
		SELECT id, first_name, last_name, email, avatar_url, user_type, status,
			created_at, updated_at
		FROM profiles
		WHERE id = $1`

	p := &model.Profile{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.AvatarURL,
		&p.UserType, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}
	return p, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	query := `
		SELECT id, first_name, last_name, email, avatar_url, user_type, status,
			created_at, updated_at
		FROM profiles
		WHERE email = $1`

	p := &model.Profile{}
	err := r.db.QueryRow(ctx, query, email).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.AvatarURL,
		&p.UserType, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}
	return p, nil
}

// profileFilter строит WHERE-условия для List и Count.
// Поиск — ILIKE по имени, фамилии и email одновременно.
func profileFilter(role, status, search *string) (string, []any) {
	var conditions []string
	var args []any
	argNum := 1

	if role != nil {
		conditions = append(conditions, fmt.Sprintf("user_type = $%d", argNum))
		args = append(args, *role)
		argNum++
	}
	if status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, *status)
		argNum++
	}
	if search != nil && *search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)",
			argNum, argNum, argNum))
		args = append(args, "%"+*search+"%")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return where, args
}

func (r *profileRepo) List(ctx context.Context, role, status, search *string, limit, offset int) ([]*model.Profile, error) {
	where, args := profileFilter(role, status, search)
	argNum := len(args) + 1

	query := fmt.Sprintf(`
		SELECT id, first_name, last_name, email, avatar_url, user_type, status,
			created_at, updated_at
		FROM profiles
		%s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`, where, argNum, argNum+1)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка профилей: %w", err)
	}
	defer rows.Close()

	var result []*model.Profile
	for rows.Next() {
		p := &model.Profile{}
		if err := rows.Scan(
			&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.AvatarURL,
			&p.UserType, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования профиля: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *profileRepo) Count(ctx context.Context, role, status, search *string) (int, error) {
	where, args := profileFilter(role, status, search)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM profiles %s`, where)

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта профилей: %w", err)
	}
	return count, nil
}

func (r *profileRepo) UpdateRole(ctx context.Context, id, role string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET user_type = $2, updated_at = now() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("ошибка обновления роли: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *profileRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса аккаунта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *profileRepo) Update(ctx context.Context, p *model.Profile) error {
	query := `
		UPDATE profiles
		SET first_name = $2, last_name = $3, avatar_url = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query, p.ID, p.FirstName, p.LastName, p.AvatarURL).
		Scan(&p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления профиля: %w", err)
	}
	return nil
}
