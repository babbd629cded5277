// Пакет pages — HTML-компоненты Portal UI на базе templ.
// Компоненты реализованы через templ.ComponentFunc и рендерятся
// обработчиками как pages.X(data).Render(ctx, w).
package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/rbac"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/i18n"
)

// Viewer — данные текущего посетителя для шапки страницы.
// Заполняется из сессии; для анонимных посетителей — нулевое значение.
type Viewer struct {
	// LoggedIn — есть ли активная сессия.
	LoggedIn bool
	// Email — email пользователя (для шапки).
	Email string
	// Role — роль из сессии. Используется только для отображения
	// пункта меню «Admin»; реальный доступ проверяет middleware.
	Role string
}

// esc экранирует строку для вставки в HTML.
func esc(s string) string {
	return templ.EscapeString(s)
}

// t — перевод по ключу из контекста рендеринга.
func t(ctx context.Context, key string) string {
	return esc(i18n.T(ctx, key))
}

// Layout оборачивает содержимое страницы в общий каркас:
// head со стилями, шапка с навигацией, подвал.
func Layout(title string, viewer Viewer, maintenance string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := i18n.LangFromContext(ctx)
		fmt.Fprintf(w, `<!DOCTYPE html><html lang=%q><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>%s — HackingTorch</title>`+
			`<link rel="stylesheet" href="/static/css/portal.css">`+
			`<script src="/static/js/htmx.min.js" defer></script>`+
			`</head><body>`, lang, esc(title))

		if err := navBar(viewer).Render(ctx, w); err != nil {
			return err
		}

		if maintenance != "" {
			fmt.Fprintf(w, `<div class="maintenance-banner">%s</div>`, esc(maintenance))
		}

		fmt.Fprint(w, `<main class="container">`)
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		fmt.Fprint(w, `</main>`)

		_, err := fmt.Fprint(w, `<footer class="footer">HackingTorch</footer></body></html>`)
		return err
	})
}

// navBar — шапка с навигацией. Пункты меню зависят от состояния сессии.
func navBar(viewer Viewer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<header class="navbar"><a class="brand" href="/">`)
		fmt.Fprint(w, t(ctx, "app.name"))
		fmt.Fprint(w, `</a><nav>`)
		fmt.Fprintf(w, `<a href="/">%s</a>`, t(ctx, "nav.catalog"))

		if viewer.LoggedIn {
			fmt.Fprintf(w, `<a href="/dashboard">%s</a>`, t(ctx, "nav.dashboard"))
			fmt.Fprintf(w, `<a href="/settings">%s</a>`, t(ctx, "nav.settings"))
			if rbac.IsAdmin(viewer.Role) {
				fmt.Fprintf(w, `<a href="/admin">%s</a>`, t(ctx, "nav.admin"))
			}
			fmt.Fprintf(w, `<span class="nav-user">%s</span>`, esc(viewer.Email))
			fmt.Fprintf(w, `<form class="inline" method="post" action="/auth/logout"><button type="submit">%s</button></form>`,
				t(ctx, "nav.logout"))
		} else {
			fmt.Fprintf(w, `<a href="/auth/login">%s</a>`, t(ctx, "nav.login"))
			fmt.Fprintf(w, `<a href="/auth/register">%s</a>`, t(ctx, "nav.register"))
		}

		fmt.Fprint(w, langSwitcher())
		_, err := fmt.Fprint(w, `</nav></header>`)
		return err
	})
}

// langSwitcher — переключатель языка (форма POST /set-language).
func langSwitcher() string {
	return `<form class="inline lang-switch" method="post" action="/set-language">` +
		`<button name="lang" value="en">EN</button>` +
		`<button name="lang" value="pt">PT</button></form>`
}

// alert выводит блок уведомления (kind: success, error, info)
// с переведённым по ключу сообщением.
func alert(ctx context.Context, w io.Writer, kind, key string) {
	fmt.Fprintf(w, `<div class="alert alert-%s">%s</div>`, kind, t(ctx, key))
}
