// Пакет config — конфигурация Portal Module из переменных окружения
// (префикс HT_).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config — параметры Portal Module.
type Config struct {
	// Сервер
	Port      int
	LogLevel  slog.Level
	LogFormat string // json или text

	// PostgreSQL — общее хранилище платформы
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// Внешний auth-сервис
	AuthURL    string
	AuthAPIKey string
	// Issuer и JWKS URL вычисляются из AuthURL, если не заданы явно
	AuthIssuer          string
	AuthJWKSURL         string
	JWTLeeway           time.Duration
	JWKSRefreshInterval time.Duration

	// Секрет шифрования session cookie. Пустой — случайный ключ
	// на время жизни процесса, сессии не переживут рестарт.
	SessionSecret string

	// Мониторинг зависимостей (topologymetrics)
	DephealthGroup         string
	DephealthCheckInterval time.Duration

	ShutdownTimeout time.Duration
}

// envReader читает переменные окружения, накапливая ошибки разбора.
// Load собирает весь Config за один проход и возвращает все ошибки
// сразу, а не по одной на запуск.
type envReader struct {
	errs []error
}

func (e *envReader) fail(key, format string, args ...any) {
	e.errs = append(e.errs, fmt.Errorf(key+": "+format, args...))
}

func (e *envReader) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (e *envReader) required(key string) string {
	v := os.Getenv(key)
	if v == "" {
		e.fail(key, "обязательная переменная окружения не задана")
	}
	return v
}

func (e *envReader) intVal(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, "некорректное целое число: %q", v)
		return def
	}
	return n
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, "некорректная длительность %q (формат Go: 30s, 15m, 1h)", v)
		return def
	}
	return d
}

// oneOf валидирует значение по списку допустимых.
func (e *envReader) oneOf(key, val string, allowed ...string) {
	for _, a := range allowed {
		if val == a {
			return
		}
	}
	e.fail(key, "недопустимое значение %q, допустимые: %s", val, strings.Join(allowed, ", "))
}

// Load читает и валидирует конфигурацию из окружения.
func Load() (*Config, error) {
	var env envReader
	cfg := &Config{
		Port:      env.intVal("HT_PORT", 8080),
		LogFormat: env.str("HT_LOG_FORMAT", "json"),

		DBHost:     env.required("HT_DB_HOST"),
		DBPort:     env.intVal("HT_DB_PORT", 5432),
		DBName:     env.required("HT_DB_NAME"),
		DBUser:     env.required("HT_DB_USER"),
		DBPassword: env.required("HT_DB_PASSWORD"),
		DBSSLMode:  env.str("HT_DB_SSL_MODE", "disable"),

		AuthAPIKey:          env.required("HT_AUTH_API_KEY"),
		JWTLeeway:           env.duration("HT_JWT_LEEWAY", 30*time.Second),
		JWKSRefreshInterval: env.duration("HT_JWKS_REFRESH_INTERVAL", time.Hour),

		SessionSecret: os.Getenv("HT_SESSION_SECRET"),

		DephealthGroup:         env.str("HT_DEPHEALTH_GROUP", "hackingtorch"),
		DephealthCheckInterval: env.duration("HT_DEPHEALTH_CHECK_INTERVAL", 15*time.Second),

		ShutdownTimeout: env.duration("HT_SHUTDOWN_TIMEOUT", 5*time.Second),
	}

	cfg.AuthURL = strings.TrimRight(env.required("HT_AUTH_URL"), "/")
	cfg.AuthIssuer = env.str("HT_AUTH_ISSUER", cfg.AuthURL+"/auth/v1")
	cfg.AuthJWKSURL = env.str("HT_AUTH_JWKS_URL", cfg.AuthURL+"/auth/v1/.well-known/jwks.json")

	if cfg.Port < 1 || cfg.Port > 65535 {
		env.fail("HT_PORT", "значение %d вне диапазона 1-65535", cfg.Port)
	}
	env.oneOf("HT_LOG_FORMAT", cfg.LogFormat, "json", "text")
	env.oneOf("HT_DB_SSL_MODE", cfg.DBSSLMode, "disable", "require", "verify-ca", "verify-full")

	level, err := parseLogLevel(env.str("HT_LOG_LEVEL", "info"))
	if err != nil {
		env.fail("HT_LOG_LEVEL", "%v", err)
	}
	cfg.LogLevel = level

	if len(env.errs) > 0 {
		return nil, errors.Join(env.errs...)
	}
	return cfg, nil
}

// DatabaseDSN — строка подключения к PostgreSQL в формате key=value.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL — URL подключения к PostgreSQL (для метрик зависимостей).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SecureCookies сообщает, ставить ли на session cookie флаг Secure.
// Платформа за HTTPS — auth-сервис по https означает, что и портал
// отдаётся через TLS-терминацию.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.AuthURL, "https")
}

// SetupLogger настраивает глобальный slog-логгер.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	switch cfg.LogFormat {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", s)
}
