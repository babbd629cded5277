// guard.go — охранник админских маршрутов.
// Роль перечитывается из БД при каждом запросе: колонка user_type
// в profiles авторитетна, роль из токена — только кэш.
// Не-администратор получает блокирующую страницу «нет прав»,
// а не redirect, чтобы не создавать петлю редиректов.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/rbac"
)

// RoleProvider — источник актуальной роли пользователя.
// Реализуется сервисом профилей (чтение из profiles).
type RoleProvider interface {
	// UserRole возвращает текущую роль пользователя из БД.
	UserRole(ctx context.Context, userID string) (string, error)
}

// UnauthorizedRenderer рендерит блокирующую страницу «нет прав».
type UnauthorizedRenderer func(w http.ResponseWriter, r *http.Request)

// AdminGuard — middleware проверки роли admin для маршрутов /admin/*.
// Применяется ПОСЛЕ Gatekeeper.Middleware(): аутентификация уже проверена.
type AdminGuard struct {
	roleProvider RoleProvider
	renderDenied UnauthorizedRenderer
	logger       *slog.Logger
}

// NewAdminGuard создаёт охранник админских маршрутов.
func NewAdminGuard(roleProvider RoleProvider, renderDenied UnauthorizedRenderer, logger *slog.Logger) *AdminGuard {
	return &AdminGuard{
		roleProvider: roleProvider,
		renderDenied: renderDenied,
		logger:       logger.With(slog.String("component", "admin_guard")),
	}
}

// Middleware возвращает HTTP middleware проверки роли admin.
func (g *AdminGuard) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil {
				// Gatekeeper должен был отправить на login; сюда попадаем
				// только при неправильном порядке middleware
				http.Redirect(w, r, LoginRedirectURL(r), http.StatusFound)
				return
			}

			role, err := g.roleProvider.UserRole(r.Context(), identity.Subject)
			if err != nil {
				// Роль не удалось подтвердить — отказываем (fail closed)
				g.logger.Warn("Не удалось получить роль пользователя",
					slog.String("subject", identity.Subject),
					slog.String("error", err.Error()),
				)
				g.renderDenied(w, r)
				return
			}

			if !rbac.IsAdmin(role) {
				g.logger.Info("Отказ в доступе к админке",
					slog.String("subject", identity.Subject),
					slog.String("role", role),
					slog.String("path", r.URL.Path),
				)
				g.renderDenied(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
