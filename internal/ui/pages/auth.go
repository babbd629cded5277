// auth.go — страницы входа, регистрации и восстановления пароля.
package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/i18n"
)

// LoginData — данные страницы входа.
type LoginData struct {
	// RedirectTo — путь возврата после успешного входа (hidden-поле формы).
	RedirectTo string
	// Email — введённый email при повторном показе формы с ошибкой.
	Email string
	// ErrorKey — ключ i18n-сообщения об ошибке (пустая строка — нет ошибки).
	ErrorKey string
}

// Login — страница входа.
func Login(data LoginData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<div class="auth-card"><h1>%s</h1>`, t(ctx, "auth.login.title"))
		if data.ErrorKey != "" {
			alert(ctx, w, "error", data.ErrorKey)
		}
		fmt.Fprint(w, `<form method="post" action="/auth/login">`)
		fmt.Fprintf(w, `<input type="hidden" name="redirectTo" value=%q>`, esc(data.RedirectTo))
		fmt.Fprintf(w, `<label>%s<input type="email" name="email" value=%q required></label>`,
			t(ctx, "auth.email"), esc(data.Email))
		fmt.Fprintf(w, `<label>%s<input type="password" name="password" required></label>`,
			t(ctx, "auth.password"))
		fmt.Fprintf(w, `<button type="submit" class="btn btn-primary">%s</button></form>`,
			t(ctx, "auth.sign_in"))
		fmt.Fprintf(w, `<p><a href="/auth/reset-password">%s</a></p>`, t(ctx, "auth.forgot"))
		_, err := fmt.Fprintf(w, `<p>%s <a href="/auth/register">%s</a></p></div>`,
			t(ctx, "auth.no_account"), t(ctx, "auth.sign_up"))
		return err
	})
	return Layout(i18nTitle("auth.login.title"), Viewer{}, "", body)
}

// RegisterData — данные страницы регистрации.
type RegisterData struct {
	FirstName string
	LastName  string
	Email     string
	// ErrorKey — ключ i18n-сообщения об ошибке.
	ErrorKey string
	// RegistrationOpen — открыта ли регистрация (настройка платформы).
	RegistrationOpen bool
}

// Register — страница регистрации.
func Register(data RegisterData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<div class="auth-card"><h1>%s</h1>`, t(ctx, "auth.register.title"))
		if !data.RegistrationOpen {
			alert(ctx, w, "info", "auth.registration_closed")
			_, err := fmt.Fprint(w, `</div>`)
			return err
		}
		if data.ErrorKey != "" {
			alert(ctx, w, "error", data.ErrorKey)
		}
		fmt.Fprint(w, `<form method="post" action="/auth/register">`)
		fmt.Fprintf(w, `<label>%s<input type="text" name="first_name" value=%q required></label>`,
			t(ctx, "auth.first_name"), esc(data.FirstName))
		fmt.Fprintf(w, `<label>%s<input type="text" name="last_name" value=%q></label>`,
			t(ctx, "auth.last_name"), esc(data.LastName))
		fmt.Fprintf(w, `<label>%s<input type="email" name="email" value=%q required></label>`,
			t(ctx, "auth.email"), esc(data.Email))
		fmt.Fprintf(w, `<label>%s<input type="password" name="password" required minlength="8"></label>`,
			t(ctx, "auth.password"))
		fmt.Fprintf(w, `<button type="submit" class="btn btn-primary">%s</button></form>`,
			t(ctx, "auth.sign_up"))
		_, err := fmt.Fprintf(w, `<p>%s <a href="/auth/login">%s</a></p></div>`,
			t(ctx, "auth.have_account"), t(ctx, "auth.sign_in"))
		return err
	})
	return Layout(i18nTitle("auth.register.title"), Viewer{}, "", body)
}

// ResetPasswordData — данные страницы восстановления пароля.
type ResetPasswordData struct {
	// Sent — запрос принят, показываем единообразное подтверждение.
	Sent bool
	// ErrorKey — ключ i18n-сообщения об ошибке.
	ErrorKey string
}

// ResetPassword — страница восстановления пароля.
// Ответ после отправки не раскрывает, зарегистрирован ли email.
func ResetPassword(data ResetPasswordData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<div class="auth-card"><h1>%s</h1>`, t(ctx, "auth.reset.title"))
		if data.Sent {
			alert(ctx, w, "success", "auth.reset.sent")
			_, err := fmt.Fprint(w, `</div>`)
			return err
		}
		if data.ErrorKey != "" {
			alert(ctx, w, "error", data.ErrorKey)
		}
		fmt.Fprintf(w, `<p>%s</p>`, t(ctx, "auth.reset.hint"))
		fmt.Fprint(w, `<form method="post" action="/auth/reset-password">`)
		fmt.Fprintf(w, `<label>%s<input type="email" name="email" required></label>`, t(ctx, "auth.email"))
		_, err := fmt.Fprintf(w, `<button type="submit" class="btn btn-primary">%s</button></form></div>`,
			t(ctx, "auth.send_link"))
		return err
	})
	return Layout(i18nTitle("auth.reset.title"), Viewer{}, "", body)
}

// i18nTitle — заголовок вкладки без контекста запроса.
// В <title> ключ подставляется на английском: LangFromContext недоступен
// до начала рендеринга, а Layout получает заголовок строкой.
func i18nTitle(key string) string {
	if b := i18n.GetBundle(); b != nil {
		return b.Translate("en", key)
	}
	return key
}
