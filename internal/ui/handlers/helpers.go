// Пакет handlers — HTTP-обработчики Portal UI.
// helpers.go — общие вспомогательные функции обработчиков.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/auth"
	uimiddleware "github.com/bigkaa/hackingtorch/portal-module/internal/ui/middleware"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/pages"
)

// viewerFromRequest собирает данные посетителя для шапки страницы
// из сессии в контексте запроса.
func viewerFromRequest(r *http.Request) pages.Viewer {
	session := uimiddleware.SessionFromContext(r.Context())
	if session == nil {
		return pages.Viewer{}
	}
	return pages.Viewer{
		LoggedIn: true,
		Email:    session.Email,
		Role:     session.Role,
	}
}

// identityFromRequest возвращает identity текущего пользователя
// из контекста запроса (nil для анонимных посетителей).
func identityFromRequest(r *http.Request) *auth.Identity {
	return uimiddleware.IdentityFromContext(r.Context())
}

// render отправляет HTML-компонент клиенту.
// Ошибка рендеринга логируется и превращается в 500.
func render(w http.ResponseWriter, r *http.Request, component templ.Component, logger *slog.Logger) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

// safeRedirectPath валидирует путь возврата после входа.
// Разрешены только локальные пути ("/..."); протокол-относительные
// URL ("//evil.example") и абсолютные URL отбрасываются.
func safeRedirectPath(p, fallback string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return fallback
	}
	return p
}

// queryInt читает целочисленный query-параметр с значением по умолчанию.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
