package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
	"github.com/bigkaa/hackingtorch/portal-module/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stubStatsRepo отдаёт фиксированную статистику.
type stubStatsRepo struct {
	stats *model.PlatformStats
	err   error
}

func (s stubStatsRepo) Collect(ctx context.Context) (*model.PlatformStats, error) {
	return s.stats, s.err
}

// stubDepHealth отдаёт фиксированное состояние зависимостей.
type stubDepHealth map[string]bool

func (s stubDepHealth) Health() map[string]bool { return s }

func newDashboardHandler(depHealth DependencyHealth) *AdminHandler {
	logger := testLogger()
	stats := stubStatsRepo{stats: &model.PlatformStats{
		TotalUsers:  42,
		TotalEvents: 7,
	}}
	adminSvc := service.NewAdminService(nil, nil, stats, nil, logger)
	return NewAdminHandler(adminSvc, depHealth, logger)
}

// TestAdminDashboardDependencyHealth проверяет, что главная страница
// админки показывает состояние каждой зависимости мониторинга.
func TestAdminDashboardDependencyHealth(t *testing.T) {
	h := newDashboardHandler(stubDepHealth{
		"postgresql": true,
		"auth-jwks":  false,
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	h.HandleDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Статус = %d, хотели 200", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "postgresql") || !strings.Contains(body, "auth-jwks") {
		t.Error("На странице нет имён зависимостей")
	}
	// postgresql доступна, auth-jwks нет
	pgIdx := strings.Index(body, "postgresql")
	if pgIdx < 0 || !strings.Contains(body[:pgIdx], "auth-jwks") {
		t.Error("Зависимости не отсортированы по имени")
	}
	if !strings.Contains(body, "dep-ok") {
		t.Error("Нет статуса доступной зависимости (dep-ok)")
	}
	if !strings.Contains(body, "dep-fail") {
		t.Error("Нет статуса недоступной зависимости (dep-fail)")
	}
	// Статистика отображается вместе с зависимостями
	if !strings.Contains(body, "42") {
		t.Error("Нет данных статистики на странице")
	}
}

// TestAdminDashboardWithoutMonitoring проверяет, что при выключенном
// мониторинге (nil) страница рендерится без блока зависимостей.
func TestAdminDashboardWithoutMonitoring(t *testing.T) {
	h := newDashboardHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	h.HandleDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Статус = %d, хотели 200", w.Code)
	}
	if strings.Contains(w.Body.String(), "dep-list") {
		t.Error("Блок зависимостей не должен выводиться без мониторинга")
	}
}
