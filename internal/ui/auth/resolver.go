// resolver.go — резолвер сессии портала.
// Дешифрует session cookie, валидирует access token через JWKS
// auth-сервиса и извлекает личность пользователя.
// Любая ошибка на любом шаге трактуется как анонимный запрос (fail closed).
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Identity — проверенная личность пользователя на один запрос.
type Identity struct {
	// Subject — идентификатор пользователя (sub из JWT).
	Subject string
	// Email — email из JWT.
	Email string
	// Role — роль из user_metadata токена (кэш, не авторитетный источник).
	Role string
}

// tokenClaims — raw claims из JWT auth-сервиса.
type tokenClaims struct {
	jwt.RegisteredClaims
	// Email — электронная почта.
	Email string `json:"email"`
	// UserMetadata — произвольные метаданные пользователя (user_type и пр.).
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// Resolver валидирует access token сессии через JWKS auth-сервиса.
type Resolver struct {
	jwks      keyfunc.Keyfunc
	issuer    string
	jwtLeeway time.Duration
	logger    *slog.Logger
}

// NewResolver создаёт резолвер с JWKS из auth-сервиса.
// jwksURL — URL JWKS endpoint'а auth-сервиса.
// issuer — ожидаемый issuer JWT.
// jwksRefreshInterval — интервал фонового обновления ключей.
// jwtLeeway — допустимое отклонение времени при проверке JWT.
func NewResolver(
	jwksURL string,
	issuer string,
	jwksRefreshInterval time.Duration,
	jwtLeeway time.Duration,
	logger *slog.Logger,
) (*Resolver, error) {
	// JWKS Storage с фоновым обновлением.
	// NoErrorReturnFirstHTTPReq — стартуем даже если auth-сервис ещё недоступен.
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           jwksRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", jwksURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return &Resolver{
		jwks:      k,
		issuer:    issuer,
		jwtLeeway: jwtLeeway,
		logger:    logger.With(slog.String("component", "session_resolver")),
	}, nil
}

// NewResolverWithKeyfunc создаёт резолвер с предоставленной keyfunc.
// Используется в тестах для подстановки mock JWKS.
func NewResolverWithKeyfunc(kf keyfunc.Keyfunc, issuer string, logger *slog.Logger) *Resolver {
	return &Resolver{
		jwks:   kf,
		issuer: issuer,
		logger: logger.With(slog.String("component", "session_resolver")),
	}
}

// Resolve валидирует access token сессии и возвращает личность пользователя.
// Возвращает nil при любой ошибке: нет сессии, невалидная подпись,
// просроченный токен, отсутствующий sub.
func (rs *Resolver) Resolve(ctx context.Context, session *SessionData) *Identity {
	if session == nil || session.AccessToken == "" {
		return nil
	}

	rawClaims := &tokenClaims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(rs.jwtLeeway),
	}
	if rs.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(rs.issuer))
	}

	token, err := jwt.ParseWithClaims(session.AccessToken, rawClaims, rs.jwks.KeyfuncCtx(ctx), parserOpts...)
	if err != nil {
		rs.logger.Debug("JWT валидация не пройдена",
			slog.String("error", err.Error()),
		)
		return nil
	}
	if !token.Valid {
		return nil
	}

	subject, err := rawClaims.GetSubject()
	if err != nil || subject == "" {
		return nil
	}

	return &Identity{
		Subject: subject,
		Email:   rawClaims.Email,
		Role:    metadataRole(rawClaims.UserMetadata),
	}
}

// metadataRole извлекает роль из user_metadata токена.
func metadataRole(metadata map[string]any) string {
	if metadata == nil {
		return ""
	}
	role, _ := metadata["user_type"].(string)
	return role
}

// --- ReadinessChecker для auth-сервиса ---

// JWKSReadinessChecker — проверка доступности auth-сервиса через JWKS.
type JWKSReadinessChecker struct {
	jwksURL string
	client  *http.Client
}

// NewJWKSReadinessChecker создаёт checker доступности JWKS endpoint'а.
func NewJWKSReadinessChecker(jwksURL string, timeout time.Duration) *JWKSReadinessChecker {
	return &JWKSReadinessChecker{
		jwksURL: jwksURL,
		client:  &http.Client{Timeout: timeout},
	}
}

const statusFail = "fail"

// CheckReady проверяет доступность JWKS endpoint auth-сервиса.
func (c *JWKSReadinessChecker) CheckReady() (status, message string) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.jwksURL, http.NoBody)
	if err != nil {
		return statusFail, "ошибка создания запроса: " + err.Error()
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return statusFail, fmt.Sprintf("JWKS auth-сервиса недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusFail, fmt.Sprintf("JWKS вернул статус %d", resp.StatusCode)
	}

	// Проверяем, что ответ — валидный JSON с ключами
	var jwksResp struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwksResp); err != nil {
		return "degraded", fmt.Sprintf("JWKS: невалидный JSON: %v", err)
	}

	if len(jwksResp.Keys) == 0 {
		return "degraded", "JWKS: нет ключей"
	}

	return "ok", fmt.Sprintf("JWKS доступен, ключей: %d", len(jwksResp.Keys))
}
