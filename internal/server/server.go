// Пакет server — HTTP-сервер Portal Module с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на ingress.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/hackingtorch/portal-module/internal/api/handlers"
	apimiddleware "github.com/bigkaa/hackingtorch/portal-module/internal/api/middleware"
	"github.com/bigkaa/hackingtorch/portal-module/internal/config"
	uihandlers "github.com/bigkaa/hackingtorch/portal-module/internal/ui/handlers"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/hackingtorch/portal-module/internal/ui/middleware"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/static"
)

// Handlers — набор обработчиков, монтируемых в роутер.
type Handlers struct {
	Health    *handlers.HealthHandler
	Catalog   *uihandlers.CatalogHandler
	Auth      *uihandlers.AuthHandler
	Dashboard *uihandlers.DashboardHandler
	Admin     *uihandlers.AdminHandler
}

// Middlewares — страничные middleware портала.
type Middlewares struct {
	// Gatekeeper — авторизация страничных маршрутов (redirect-логика).
	Gatekeeper *uimiddleware.Gatekeeper
	// AdminGuard — проверка роли admin по данным profiles.
	AdminGuard *uimiddleware.AdminGuard
}

// Server — HTTP-сервер Portal Module.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, h Handlers, mw Middlewares) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(apimiddleware.MetricsMiddleware())
	router.Use(apimiddleware.RequestLogger(logger))

	// Health и metrics — до gatekeeper: Kubernetes и Prometheus
	// ходят сюда без сессий.
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)

	// Статика — тоже вне gatekeeper
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	// Страничные маршруты: i18n + gatekeeper
	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware())
		r.Use(mw.Gatekeeper.Middleware())

		// Публичный каталог
		r.Get("/", h.Catalog.HandleIndex)
		r.Get("/events/list", h.Catalog.HandleEventList)
		r.Get("/event/{id}", h.Catalog.HandleEventDetail)

		// Аутентификация
		r.Get("/auth/login", h.Auth.HandleLoginPage)
		r.Post("/auth/login", h.Auth.HandleLogin)
		r.Get("/auth/register", h.Auth.HandleRegisterPage)
		r.Post("/auth/register", h.Auth.HandleRegister)
		r.Get("/auth/reset-password", h.Auth.HandleResetPage)
		r.Post("/auth/reset-password", h.Auth.HandleReset)
		r.Post("/auth/logout", h.Auth.HandleLogout)

		// Переключение языка
		r.Post("/set-language", uihandlers.HandleSetLanguage)

		// Личный кабинет (gatekeeper требует сессию)
		r.Get("/dashboard", h.Dashboard.HandleDashboard)
		r.Get("/settings", h.Dashboard.HandleSettingsPage)
		r.Post("/settings", h.Dashboard.HandleSettingsSave)

		// Административная панель: сверх сессии — роль admin из profiles
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.AdminGuard.Middleware())

			r.Get("/", h.Admin.HandleDashboard)
			r.Get("/users", h.Admin.HandleUsers)
			r.Get("/users/table", h.Admin.HandleUsersTable)
			r.Patch("/users/{id}/role", h.Admin.HandleUpdateUserRole)
			r.Patch("/users/{id}/status", h.Admin.HandleUpdateUserStatus)
			r.Get("/events", h.Admin.HandleEvents)
			r.Get("/events/table", h.Admin.HandleEventsTable)
			r.Patch("/events/{id}/status", h.Admin.HandleUpdateEventStatus)
			r.Delete("/events/{id}", h.Admin.HandleDeleteEvent)
			r.Get("/settings", h.Admin.HandleSettingsPage)
			r.Post("/settings", h.Admin.HandleSettingsSave)
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
