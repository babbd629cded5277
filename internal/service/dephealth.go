// dephealth.go — мониторинг внешних зависимостей через topologymetrics.
//
// Портал зависим от PostgreSQL (хранилище платформы) и auth-сервиса
// (валидация сессий); обе зависимости critical. PostgreSQL проверяется
// в connection pool mode через существующий pgxpool — такая проверка
// видит исчерпание пула, а не только доступность сервера. Auth-сервис
// проверяется HTTP-запросом к его JWKS endpoint'у: доступность ключей
// подписи и есть работоспособность валидации.
//
// Метрики (app_dependency_health, app_dependency_latency_seconds,
// app_dependency_status*) отдаются на общем /metrics.
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"     // PostgreSQL checker (pool mode)
	"github.com/prometheus/client_golang/prometheus"
)

// DephealthService оборачивает dephealth с набором зависимостей портала.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// portalDependencies описывает зависимости портала для dephealth.
// db — адаптер pgxpool (stdlib.OpenDBFromPool); pgConnURL нужен только
// для лейблов метрик, подключение идёт через db.
func portalDependencies(db *sql.DB, pgConnURL, authJWKSURL string, interval time.Duration) []dephealth.Option {
	return []dephealth.Option{
		// pgcheck.New + AddDependency напрямую, без contrib/sqldb:
		// тот тянет транзитивную зависимость на MySQL-драйвер.
		dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(db)),
			dephealth.FromURL(pgConnURL),
			dephealth.CheckInterval(interval),
			dephealth.Critical(true),
		),
		dephealth.HTTP("auth-jwks",
			dephealth.FromURL(authJWKSURL),
			dephealth.WithHTTPHealthPath(authHealthPath(authJWKSURL)),
			dephealth.CheckInterval(interval),
			dephealth.Critical(true),
			dephealth.WithHTTPTLSSkipVerify(true), // dev-среда: self-signed сертификаты
		),
	}
}

// NewDephealthService создаёт мониторинг зависимостей портала.
// serviceID — имя вершины графа ("portal-module"), group — группа
// метрик (HT_DEPHEALTH_GROUP). Метрики уходят в глобальный registry.
func NewDephealthService(
	serviceID string,
	group string,
	db *sql.DB,
	pgConnURL string,
	authJWKSURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, db, pgConnURL, authJWKSURL, checkInterval, logger)
}

// NewDephealthServiceWithRegisterer — вариант с изолированным Prometheus
// registerer для тестов.
func NewDephealthServiceWithRegisterer(
	serviceID string,
	group string,
	db *sql.DB,
	pgConnURL string,
	authJWKSURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, db, pgConnURL, authJWKSURL, checkInterval, logger,
		dephealth.WithRegisterer(registerer))
}

func newDephealthService(
	serviceID string,
	group string,
	db *sql.DB,
	pgConnURL string,
	authJWKSURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
	extraOpts ...dephealth.Option,
) (*DephealthService, error) {
	opts := append([]dephealth.Option{dephealth.WithLogger(logger)},
		portalDependencies(db, pgConnURL, authJWKSURL, checkInterval)...)
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(serviceID, group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодические проверки.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен (PostgreSQL + auth-сервис)")
	return ds.dh.Start(ctx)
}

// Stop останавливает проверки.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает состояние зависимостей: имя → true, если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}

// authHealthPath извлекает path из JWKS URL для HTTP-проверки.
// Стандартный /health у auth-сервиса за ingress может быть закрыт,
// поэтому проверяется сам JWKS endpoint.
func authHealthPath(jwksURL string) string {
	if parsed, err := url.Parse(jwksURL); err == nil && parsed.Path != "" {
		return parsed.Path
	}
	return "/health"
}
