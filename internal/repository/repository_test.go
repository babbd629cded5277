package repository

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/hackingtorch/portal-module/internal/config"
	"github.com/bigkaa/hackingtorch/portal-module/internal/database"
	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
// Возвращает pgxpool.Pool с регистрацией очистки через t.Cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("hackingtorch_test"),
		postgres.WithUsername("hackingtorch"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	// Настраиваем env для config.Load()
	os.Setenv("HT_DB_HOST", host)
	os.Setenv("HT_DB_PORT", port.Port())
	os.Setenv("HT_DB_NAME", "hackingtorch_test")
	os.Setenv("HT_DB_USER", "hackingtorch")
	os.Setenv("HT_DB_PASSWORD", "test-password")
	os.Setenv("HT_DB_SSL_MODE", "disable")
	os.Setenv("HT_AUTH_URL", "http://localhost:9999")
	os.Setenv("HT_AUTH_API_KEY", "test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Применяем миграции
	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	// Подключаемся
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

// createProfile — вспомогательное создание профиля для тестов.
func createProfile(t *testing.T, repo ProfileRepository, role string) *model.Profile {
	t.Helper()
	id := uuid.New().String()
	p := &model.Profile{
		ID:        id,
		FirstName: "Test",
		LastName:  "User",
		Email:     id + "@example.com",
		UserType:  role,
		Status:    "active",
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Создание профиля: %v", err)
	}
	return p
}

// --- Тесты ProfileRepository ---

func TestProfileCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository(pool)

	id := uuid.New().String()
	p := &model.Profile{
		ID:        id,
		FirstName: "Maria",
		LastName:  "Silva",
		Email:     "maria@example.com",
		UserType:  "participant",
		Status:    "active",
	}

	// Create
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt не установлен")
	}

	// Дубликат email — конфликт
	dup := &model.Profile{
		ID: uuid.New().String(), Email: "maria@example.com",
		UserType: "participant", Status: "active",
	}
	if err := repo.Create(ctx, dup); err == nil {
		t.Error("Create() с дублирующимся email должен вернуть ошибку")
	}

	// GetByID
	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.Email != "maria@example.com" {
		t.Errorf("Email = %q, хотели %q", got.Email, "maria@example.com")
	}
	if got.UserType != "participant" {
		t.Errorf("UserType = %q, хотели %q", got.UserType, "participant")
	}

	// GetByEmail
	got2, err := repo.GetByEmail(ctx, "maria@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() ошибка: %v", err)
	}
	if got2.ID != id {
		t.Errorf("ID = %q, хотели %q", got2.ID, id)
	}

	// UpdateRole
	if err := repo.UpdateRole(ctx, id, "organizer"); err != nil {
		t.Fatalf("UpdateRole() ошибка: %v", err)
	}
	got3, _ := repo.GetByID(ctx, id)
	if got3.UserType != "organizer" {
		t.Errorf("После UpdateRole: UserType = %q, хотели %q", got3.UserType, "organizer")
	}

	// UpdateStatus
	if err := repo.UpdateStatus(ctx, id, "suspended"); err != nil {
		t.Fatalf("UpdateStatus() ошибка: %v", err)
	}
	got4, _ := repo.GetByID(ctx, id)
	if got4.Status != "suspended" {
		t.Errorf("После UpdateStatus: Status = %q, хотели %q", got4.Status, "suspended")
	}

	// Update несуществующего — ErrNotFound
	if err := repo.UpdateRole(ctx, uuid.New().String(), "admin"); err != ErrNotFound {
		t.Errorf("UpdateRole() несуществующего: ожидали ErrNotFound, получили: %v", err)
	}
}

func TestProfileListFilters(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository(pool)

	admin := createProfile(t, repo, "admin")
	createProfile(t, repo, "participant")
	createProfile(t, repo, "participant")

	// Фильтр по роли
	role := "participant"
	list, err := repo.List(ctx, &role, nil, nil, 10, 0)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("List(role=participant) вернул %d записей, хотели 2", len(list))
	}

	// Поиск по email (ILIKE, регистронезависимый)
	search := admin.Email[:8]
	list2, err := repo.List(ctx, nil, nil, &search, 10, 0)
	if err != nil {
		t.Fatalf("List() с поиском ошибка: %v", err)
	}
	if len(list2) != 1 {
		t.Errorf("List(search) вернул %d записей, хотели 1", len(list2))
	}

	// Count согласован с List
	count, err := repo.Count(ctx, &role, nil, nil)
	if err != nil {
		t.Fatalf("Count() ошибка: %v", err)
	}
	if count != 2 {
		t.Errorf("Count(role=participant) = %d, хотели 2", count)
	}

	// Пагинация: limit=1 offset=1
	list3, err := repo.List(ctx, nil, nil, nil, 1, 1)
	if err != nil {
		t.Fatalf("List() пагинация ошибка: %v", err)
	}
	if len(list3) != 1 {
		t.Errorf("List(limit=1) вернул %d записей, хотели 1", len(list3))
	}
}

// --- Тесты EventRepository ---

func createEvent(t *testing.T, pool *pgxpool.Pool, organizerID, name, status string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO events (id, organizer_id, name, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, now() + interval '7 days', now() + interval '9 days')`,
		id, organizerID, name, status)
	if err != nil {
		t.Fatalf("Создание мероприятия: %v", err)
	}
	return id
}

func TestEventRepository(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	profRepo := NewProfileRepository(pool)
	repo := NewEventRepository(pool)

	org := createProfile(t, profRepo, "organizer")
	pubID := createEvent(t, pool, org.ID, "AI Hackathon", "published")
	createEvent(t, pool, org.ID, "Draft Meetup", "draft")
	createEvent(t, pool, org.ID, "Pending Workshop", "pending")

	// Привязываем категорию
	_, err := pool.Exec(ctx, `
		INSERT INTO event_categories (event_id, category_id)
		SELECT $1, id FROM categories WHERE slug = 'ai'`, pubID)
	if err != nil {
		t.Fatalf("Привязка категории: %v", err)
	}

	// GetByID — с категориями
	got, err := repo.GetByID(ctx, pubID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.Name != "AI Hackathon" {
		t.Errorf("Name = %q, хотели %q", got.Name, "AI Hackathon")
	}
	if len(got.Categories) != 1 || got.Categories[0] != "Artificial Intelligence" {
		t.Errorf("Categories = %v, хотели [Artificial Intelligence]", got.Categories)
	}

	// List с фильтром по статусу
	status := "draft"
	list, err := repo.List(ctx, &status, nil, nil, 10, 0)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List(status=draft) вернул %d записей, хотели 1", len(list))
	}

	// Поиск по названию
	search := "hackathon"
	list2, err := repo.List(ctx, nil, nil, &search, 10, 0)
	if err != nil {
		t.Fatalf("List() с поиском ошибка: %v", err)
	}
	if len(list2) != 1 {
		t.Errorf("List(search=hackathon) вернул %d записей, хотели 1", len(list2))
	}

	// Поиск находит и по описанию: подстрока есть только в description
	_, err = pool.Exec(ctx,
		`UPDATE events SET description = 'Соревнование по кибербезопасности' WHERE id = $1`, pubID)
	if err != nil {
		t.Fatalf("Обновление описания: %v", err)
	}
	descSearch := "кибербезопасности"
	byDesc, err := repo.List(ctx, nil, nil, &descSearch, 10, 0)
	if err != nil {
		t.Fatalf("List() с поиском по описанию ошибка: %v", err)
	}
	if len(byDesc) != 1 || byDesc[0].ID != pubID {
		t.Errorf("List(search по описанию) вернул %d записей, хотели мероприятие %s", len(byDesc), pubID)
	}
	if n, _ := repo.Count(ctx, nil, nil, &descSearch); n != 1 {
		t.Errorf("Count(search по описанию) = %d, хотели 1", n)
	}

	// Каталог — только published/active
	catalog, err := repo.ListPublished(ctx, CatalogFilter{})
	if err != nil {
		t.Fatalf("ListPublished() ошибка: %v", err)
	}
	if len(catalog) != 1 {
		t.Errorf("ListPublished() вернул %d записей, хотели 1", len(catalog))
	}

	// Count без фильтров
	count, _ := repo.Count(ctx, nil, nil, nil)
	if count != 3 {
		t.Errorf("Count() = %d, хотели 3", count)
	}

	// Delete
	if err := repo.Delete(ctx, pubID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if _, err := repo.GetByID(ctx, pubID); err != ErrNotFound {
		t.Errorf("После Delete ожидали ErrNotFound, получили: %v", err)
	}
}

func TestEventUpdateStatus(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	profRepo := NewProfileRepository(pool)
	repo := NewEventRepository(pool)

	org := createProfile(t, profRepo, "organizer")
	id := createEvent(t, pool, org.ID, "Moderated Event", "pending")

	if err := repo.UpdateStatus(ctx, id, "published"); err != nil {
		t.Fatalf("UpdateStatus() ошибка: %v", err)
	}
	got, _ := repo.GetByID(ctx, id)
	if got.Status != "published" {
		t.Errorf("Status = %q, хотели %q", got.Status, "published")
	}

	if err := repo.UpdateStatus(ctx, uuid.New().String(), "published"); err != ErrNotFound {
		t.Errorf("UpdateStatus() несуществующего: ожидали ErrNotFound, получили: %v", err)
	}
}

// --- Тесты StatsRepository ---

func TestStatsCollect(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	profRepo := NewProfileRepository(pool)
	repo := NewStatsRepository(pool)

	org := createProfile(t, profRepo, "organizer")
	createProfile(t, profRepo, "participant")
	createEvent(t, pool, org.ID, "Published", "published")
	createEvent(t, pool, org.ID, "Pending", "pending")
	createEvent(t, pool, org.ID, "Draft", "draft")

	stats, err := repo.Collect(ctx)
	if err != nil {
		t.Fatalf("Collect() ошибка: %v", err)
	}
	if stats.TotalUsers != 2 {
		t.Errorf("TotalUsers = %d, хотели 2", stats.TotalUsers)
	}
	if stats.TotalEvents != 3 {
		t.Errorf("TotalEvents = %d, хотели 3", stats.TotalEvents)
	}
	if stats.ActiveEvents != 1 {
		t.Errorf("ActiveEvents = %d, хотели 1", stats.ActiveEvents)
	}
	if stats.PendingEvents != 1 {
		t.Errorf("PendingEvents = %d, хотели 1", stats.PendingEvents)
	}
}

// --- Тесты SettingsRepository ---

func TestPlatformSettings(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewSettingsRepository(pool)

	// Начальная строка создаётся миграцией
	s, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() ошибка: %v", err)
	}
	if !s.RegistrationOpen {
		t.Error("RegistrationOpen по умолчанию должен быть true")
	}

	s.RegistrationOpen = false
	s.FeaturedLimit = 3
	s.MaintenanceMessage = "Плановые работы"
	if err := repo.Update(ctx, s); err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}

	got, _ := repo.Get(ctx)
	if got.RegistrationOpen {
		t.Error("После Update: RegistrationOpen должен быть false")
	}
	if got.FeaturedLimit != 3 {
		t.Errorf("FeaturedLimit = %d, хотели 3", got.FeaturedLimit)
	}
}
