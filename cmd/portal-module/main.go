// Точка входа Portal Module — веб-портал платформы HackingTorch.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// инициализирует клиент auth-сервиса и session resolver, создаёт сервисный
// слой и UI handlers, запускает topologymetrics и HTTP-сервер
// с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/bigkaa/hackingtorch/portal-module/internal/api/handlers"
	"github.com/bigkaa/hackingtorch/portal-module/internal/authsvc"
	"github.com/bigkaa/hackingtorch/portal-module/internal/config"
	"github.com/bigkaa/hackingtorch/portal-module/internal/database"
	"github.com/bigkaa/hackingtorch/portal-module/internal/repository"
	"github.com/bigkaa/hackingtorch/portal-module/internal/server"
	"github.com/bigkaa/hackingtorch/portal-module/internal/service"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/auth"
	uihandlers "github.com/bigkaa/hackingtorch/portal-module/internal/ui/handlers"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/hackingtorch/portal-module/internal/ui/middleware"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/pages"
)

func main() {
	// 0. Локальная разработка: .env в рабочем каталоге, если есть.
	// В кластере переменные приходят из окружения, файл отсутствует.
	_ = godotenv.Load()

	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Portal Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// Предупреждения о дефолтных значениях topologymetrics
	if os.Getenv("HT_DEPHEALTH_GROUP") == "" {
		logger.Warn("HT_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL идёт через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Клиент внешнего auth-сервиса (GoTrue-совместимый API)
	authClient := authsvc.New(cfg.AuthURL, cfg.AuthAPIKey, nil, logger)
	logger.Info("Клиент auth-сервиса инициализирован",
		slog.String("url", cfg.AuthURL),
	)

	// 6. Репозитории
	profileRepo := repository.NewProfileRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	// 7. Сервисный слой
	profileSvc := service.NewProfileService(profileRepo, logger)
	catalogSvc := service.NewCatalogService(eventRepo, settingsRepo, logger)
	adminSvc := service.NewAdminService(profileRepo, eventRepo, statsRepo, settingsRepo, logger)

	// 8. Session resolver — валидация access token'ов по JWKS auth-сервиса
	resolver, err := auth.NewResolver(
		cfg.AuthJWKSURL,
		cfg.AuthIssuer,
		cfg.JWKSRefreshInterval,
		cfg.JWTLeeway,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания session resolver", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Session resolver инициализирован",
		slog.String("jwks_url", cfg.AuthJWKSURL),
		slog.String("issuer", cfg.AuthIssuer),
	)

	// 9. UI-сессии: secure cookie, если auth-сервис за https
	secureCookie := cfg.SecureCookies()
	sessionMgr, err := auth.NewSessionManager(cfg.SessionSecret, secureCookie)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 10. i18n — каталоги переводов из embed FS
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 11. Readiness checkers для /health/ready
	pgChecker := database.NewReadinessChecker(pool)
	jwksChecker := auth.NewJWKSReadinessChecker(cfg.AuthJWKSURL, 5*time.Second)

	// 12. topologymetrics — мониторинг зависимостей (PostgreSQL + auth-сервис)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"portal-module",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.AuthJWKSURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	// depHealth остаётся nil при деградированном старте — админка
	// тогда не показывает блок зависимостей.
	var depHealth uihandlers.DependencyHealth
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
			defer dephealthSvc.Stop()
			depHealth = dephealthSvc
		}
	}

	// 13. Middleware: gatekeeper (авторизация маршрутов) и admin guard.
	// Роль admin перечитывается из profiles при каждом запросе,
	// при отказе в доступе рендерится блокирующая страница.
	gatekeeper := uimiddleware.NewGatekeeper(sessionMgr, resolver, authClient, logger)
	adminGuard := uimiddleware.NewAdminGuard(profileSvc, renderDenied(logger), logger)

	// 14. UI handlers
	catalogHandler := uihandlers.NewCatalogHandler(catalogSvc, profileSvc, logger)
	authHandler := uihandlers.NewAuthHandler(
		authClient, profileSvc, catalogSvc, sessionMgr, resolver, logger,
	)
	dashboardHandler := uihandlers.NewDashboardHandler(profileSvc, authClient, logger)
	adminHandler := uihandlers.NewAdminHandler(adminSvc, depHealth, logger)
	healthHandler := handlers.NewHealthHandler(pgChecker, jwksChecker, authClient)

	// 15. HTTP-сервер с graceful shutdown
	srv := server.New(cfg, logger,
		server.Handlers{
			Health:    healthHandler,
			Catalog:   catalogHandler,
			Auth:      authHandler,
			Dashboard: dashboardHandler,
			Admin:     adminHandler,
		},
		server.Middlewares{
			Gatekeeper: gatekeeper,
			AdminGuard: adminGuard,
		},
	)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка HTTP-сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// renderDenied возвращает рендерер блокирующей страницы «нет прав»
// для admin guard. Viewer берётся из сессии запроса.
func renderDenied(logger *slog.Logger) uimiddleware.UnauthorizedRenderer {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := pages.Viewer{}
		if session := uimiddleware.SessionFromContext(r.Context()); session != nil {
			viewer = pages.Viewer{
				LoggedIn: true,
				Email:    session.Email,
				Role:     session.Role,
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		if err := pages.Unauthorized(viewer).Render(r.Context(), w); err != nil {
			logger.Error("Ошибка рендеринга страницы отказа", slog.String("error", err.Error()))
		}
	}
}
