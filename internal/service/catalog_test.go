// catalog_test.go — unit-тесты сервиса публичного каталога.
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
)

func catalogEvent(id, status string, featured bool, start time.Time) *model.Event {
	return &model.Event{
		ID:         id,
		Name:       "Event " + id,
		EventType:  model.EventTypeHackathon,
		Status:     status,
		IsFeatured: featured,
		StartDate:  start,
		EndDate:    start.Add(48 * time.Hour),
	}
}

// TestFeaturedHonorsLimit проверяет, что количество продвигаемых
// мероприятий ограничено настройкой платформы.
func TestFeaturedHonorsLimit(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	events := newFakeEventRepo(
		catalogEvent("e1", model.EventStatusPublished, true, future),
		catalogEvent("e2", model.EventStatusPublished, true, future),
		catalogEvent("e3", model.EventStatusPublished, true, future),
		catalogEvent("e4", model.EventStatusPublished, false, future),
		catalogEvent("e5", model.EventStatusDraft, true, future),
	)
	settings := &fakeSettingsRepo{settings: &model.PlatformSettings{FeaturedLimit: 2, RegistrationOpen: true}}
	svc := NewCatalogService(events, settings, testLogger())

	got, err := svc.Featured(context.Background())
	if err != nil {
		t.Fatalf("Featured вернул ошибку: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("получено %d мероприятий, ожидалось 2 (featured_limit)", len(got))
	}
	for _, e := range got {
		if !e.IsFeatured || e.Status != model.EventStatusPublished {
			t.Errorf("мероприятие %s не должно попадать в продвигаемые: featured=%v status=%s",
				e.ID, e.IsFeatured, e.Status)
		}
	}
}

// TestFeaturedFallbackOnSettingsError проверяет, что главная страница
// работает даже при недоступных настройках платформы.
func TestFeaturedFallbackOnSettingsError(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	events := newFakeEventRepo(
		catalogEvent("e1", model.EventStatusPublished, true, future),
	)
	settings := &fakeSettingsRepo{err: errors.New("connection refused")}
	svc := NewCatalogService(events, settings, testLogger())

	got, err := svc.Featured(context.Background())
	if err != nil {
		t.Fatalf("Featured вернул ошибку при недоступных настройках: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("получено %d мероприятий, ожидалось 1", len(got))
	}
}

// TestUpcomingFiltersByType проверяет фильтрацию предстоящих мероприятий.
func TestUpcomingFiltersByType(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)
	workshop := catalogEvent("e2", model.EventStatusPublished, false, future)
	workshop.EventType = model.EventTypeWorkshop
	events := newFakeEventRepo(
		catalogEvent("e1", model.EventStatusPublished, false, future),
		workshop,
		catalogEvent("e3", model.EventStatusPublished, false, past),
	)
	svc := NewCatalogService(events, &fakeSettingsRepo{settings: &model.PlatformSettings{FeaturedLimit: 6}}, testLogger())

	got, err := svc.Upcoming(context.Background(), model.EventTypeWorkshop)
	if err != nil {
		t.Fatalf("Upcoming вернул ошибку: %v", err)
	}
	if len(got) != 1 || got[0].ID != "e2" {
		t.Fatalf("ожидался только воркшоп e2, получено: %d", len(got))
	}

	// Без фильтра — все будущие опубликованные
	got, err = svc.Upcoming(context.Background(), "")
	if err != nil {
		t.Fatalf("Upcoming вернул ошибку: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("получено %d мероприятий, ожидалось 2 (прошедшие исключены)", len(got))
	}
}

// TestGetEventHidesNonPublic проверяет, что черновики и мероприятия
// на модерации недоступны через публичный каталог.
func TestGetEventHidesNonPublic(t *testing.T) {
	now := time.Now()
	events := newFakeEventRepo(
		catalogEvent("pub", model.EventStatusPublished, false, now),
		catalogEvent("act", model.EventStatusActive, false, now),
		catalogEvent("done", model.EventStatusCompleted, false, now),
		catalogEvent("draft", model.EventStatusDraft, false, now),
		catalogEvent("mod", model.EventStatusPending, false, now),
		catalogEvent("rej", model.EventStatusRejected, false, now),
	)
	svc := NewCatalogService(events, &fakeSettingsRepo{settings: &model.PlatformSettings{FeaturedLimit: 6}}, testLogger())

	for _, id := range []string{"pub", "act", "done"} {
		if _, err := svc.GetEvent(context.Background(), id); err != nil {
			t.Errorf("мероприятие %s должно быть видимо, получена ошибка: %v", id, err)
		}
	}
	for _, id := range []string{"draft", "mod", "rej", "missing"} {
		if _, err := svc.GetEvent(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Errorf("мероприятие %s не должно быть видимо, получено: %v", id, err)
		}
	}
}
