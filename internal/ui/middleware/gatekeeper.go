// Пакет middleware — HTTP middleware страниц портала.
// gatekeeper.go — авторизация маршрутов по уровню доступа,
// авто-refresh токенов, redirect неаутентифицированных пользователей.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bigkaa/hackingtorch/portal-module/internal/authsvc"
	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/rbac"
	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/routes"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/auth"
)

// contextKey — тип для ключей контекста UI (избегаем коллизий).
type contextKey string

const (
	// ContextKeySession — данные сессии в контексте запроса.
	ContextKeySession contextKey = "ui_session"
	// ContextKeyIdentity — проверенная личность в контексте запроса.
	ContextKeyIdentity contextKey = "ui_identity"
)

// Decision — решение гейткипера по запросу.
type Decision int

const (
	// DecisionAllow — пропустить запрос к обработчику.
	DecisionAllow Decision = iota
	// DecisionRedirectToLogin — redirect на страницу входа
	// с сохранением исходного пути в параметре redirectTo.
	DecisionRedirectToLogin
	// DecisionRedirectToDashboard — redirect аутентифицированного
	// пользователя со страниц входа на dashboard.
	DecisionRedirectToDashboard
)

// Authorize принимает решение для пути, факта аутентификации и роли
// из токена. Проверка аутентификации всегда предшествует проверке роли:
// анонимный запрос на админский путь получает redirect на login
// (с сохранением исходного пути), а не отказ по роли.
// Роль из токена — лишь первый рубеж; авторитетная проверка по БД
// выполняется admin guard'ом внутри /admin.
func Authorize(path string, authenticated bool, role string) Decision {
	switch routes.Classify(path) {
	case routes.LevelPublic:
		return DecisionAllow
	case routes.LevelAuthEntry:
		if authenticated {
			return DecisionRedirectToDashboard
		}
		return DecisionAllow
	case routes.LevelAdmin:
		if !authenticated {
			return DecisionRedirectToLogin
		}
		if !rbac.IsAdmin(role) {
			return DecisionRedirectToDashboard
		}
		return DecisionAllow
	default: // LevelAuthenticated
		if !authenticated {
			return DecisionRedirectToLogin
		}
		return DecisionAllow
	}
}

// LoginRedirectURL формирует URL страницы входа с сохранением исходного пути.
// Путь с query-строкой сохраняется целиком, чтобы после входа вернуть
// пользователя ровно туда, куда он шёл.
func LoginRedirectURL(r *http.Request) string {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	return "/auth/login?redirectTo=" + url.QueryEscape(target)
}

// Gatekeeper — middleware авторизации страниц портала.
// Извлекает сессию из зашифрованного cookie, валидирует access token
// через JWKS, при необходимости обновляет токены и применяет
// решение Authorize. Ошибка на любом шаге — запрос анонимный.
type Gatekeeper struct {
	sessionManager *auth.SessionManager
	resolver       *auth.Resolver
	authClient     *authsvc.Client
	logger         *slog.Logger
}

// NewGatekeeper создаёт middleware авторизации маршрутов.
func NewGatekeeper(
	sessionManager *auth.SessionManager,
	resolver *auth.Resolver,
	authClient *authsvc.Client,
	logger *slog.Logger,
) *Gatekeeper {
	return &Gatekeeper{
		sessionManager: sessionManager,
		resolver:       resolver,
		authClient:     authClient,
		logger:         logger.With(slog.String("component", "gatekeeper")),
	}
}

// Middleware возвращает HTTP middleware авторизации.
// Применяется ко всем страничным маршрутам; /health и /metrics
// подключаются в роутере до него.
func (g *Gatekeeper) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, identity := g.resolveRequest(w, r)

			role := ""
			if identity != nil {
				role = identity.Role
			}
			switch Authorize(r.URL.Path, identity != nil, role) {
			case DecisionRedirectToLogin:
				redirect(w, r, LoginRedirectURL(r))
				return
			case DecisionRedirectToDashboard:
				redirect(w, r, "/dashboard")
				return
			}

			// Сессию и личность кладём в контекст и для публичных страниц:
			// каталог показывает шапку с именем вошедшего пользователя.
			ctx := r.Context()
			if session != nil {
				ctx = context.WithValue(ctx, ContextKeySession, session)
			}
			if identity != nil {
				ctx = context.WithValue(ctx, ContextKeyIdentity, identity)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveRequest извлекает сессию из cookie и валидирует её.
// Просроченный access token обновляется через refresh token;
// при неудаче cookie очищается и запрос считается анонимным.
func (g *Gatekeeper) resolveRequest(w http.ResponseWriter, r *http.Request) (*auth.SessionData, *auth.Identity) {
	session, err := g.sessionManager.GetSessionFromRequest(r)
	if err != nil {
		g.logger.Debug("Ошибка чтения сессии",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr),
		)
		// Повреждённый cookie — очищаем
		g.sessionManager.ClearSessionCookie(w)
		return nil, nil
	}
	if session == nil {
		return nil, nil
	}

	if session.IsExpired() {
		refreshed, refreshErr := g.refreshSession(r.Context(), session)
		if refreshErr != nil {
			g.logger.Info("Не удалось обновить сессию",
				slog.String("subject", session.Subject),
				slog.String("error", refreshErr.Error()),
			)
			g.sessionManager.ClearSessionCookie(w)
			return nil, nil
		}

		if err := g.sessionManager.SetSessionCookie(w, refreshed); err != nil {
			g.logger.Error("Ошибка обновления session cookie",
				slog.String("error", err.Error()),
			)
			g.sessionManager.ClearSessionCookie(w)
			return nil, nil
		}

		session = refreshed
		g.logger.Debug("Сессия обновлена через refresh token",
			slog.String("subject", session.Subject),
		)
	}

	identity := g.resolver.Resolve(r.Context(), session)
	if identity == nil {
		// Токен не прошёл проверку подписи — сессия недействительна
		g.sessionManager.ClearSessionCookie(w)
		return nil, nil
	}

	return session, identity
}

// refreshSession обновляет access token через auth-сервис.
func (g *Gatekeeper) refreshSession(ctx context.Context, session *auth.SessionData) (*auth.SessionData, error) {
	tokenResp, err := g.authClient.Refresh(ctx, session.RefreshToken)
	if err != nil {
		return nil, err
	}

	// Обновляем токены, сохраняя subject/email/role
	return &auth.SessionData{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second).Unix(),
		Subject:      session.Subject,
		Email:        session.Email,
		Role:         session.Role,
	}, nil
}

// SessionFromContext извлекает SessionData из контекста запроса.
// Возвращает nil для анонимных запросов.
func SessionFromContext(ctx context.Context) *auth.SessionData {
	session, ok := ctx.Value(ContextKeySession).(*auth.SessionData)
	if !ok {
		return nil
	}
	return session
}

// IdentityFromContext извлекает проверенную личность из контекста запроса.
// Возвращает nil для анонимных запросов.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	identity, ok := ctx.Value(ContextKeyIdentity).(*auth.Identity)
	if !ok {
		return nil
	}
	return identity
}

// IsHTMXRequest сообщает, пришёл ли запрос от HTMX (частичный рендер).
func IsHTMXRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// redirect выполняет redirect с учётом типа запроса.
// HTMX-запрос не может обработать обычный 302 (fetch следует за ним
// молча и вставляет целую страницу в частичный фрагмент), поэтому
// HTMX получает заголовок HX-Redirect и выполняет переход сам.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMXRequest(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
