// dashboard.go — личный кабинет и настройки профиля.
package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/i18n"
)

// DashboardData — данные личного кабинета.
type DashboardData struct {
	Viewer  Viewer
	Profile *model.Profile
}

// Dashboard — личный кабинет пользователя.
func Dashboard(data DashboardData) templ.Component {
	p := data.Profile
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<h1>%s</h1>`, t(ctx, "dashboard.title"))
		fmt.Fprintf(w, `<p class="welcome">%s</p>`,
			esc(i18n.Tf(ctx, "dashboard.welcome", p.FullName())))

		fmt.Fprintf(w, `<section class="profile-card"><h2>%s</h2>`, t(ctx, "dashboard.profile"))
		if p.AvatarURL != "" {
			fmt.Fprintf(w, `<img class="avatar" src=%q alt="">`, esc(p.AvatarURL))
		}
		fmt.Fprint(w, `<dl>`)
		fmt.Fprintf(w, `<dt>%s</dt><dd>%s</dd>`, t(ctx, "auth.email"), esc(p.Email))
		fmt.Fprintf(w, `<dt>%s</dt><dd>%s</dd>`, t(ctx, "dashboard.role"), esc(p.UserType))
		fmt.Fprintf(w, `<dt>%s</dt><dd>%s</dd>`, t(ctx, "dashboard.status"), esc(p.Status))
		_, err := fmt.Fprint(w, `</dl></section>`)
		return err
	})
	return Layout(i18nTitle("dashboard.title"), data.Viewer, "", body)
}

// SettingsData — данные страницы настроек профиля.
type SettingsData struct {
	Viewer  Viewer
	Profile *model.Profile
	// Saved — профиль только что сохранён.
	Saved bool
	// ErrorKey — ключ i18n-сообщения об ошибке.
	ErrorKey string
}

// Settings — страница редактирования профиля.
func Settings(data SettingsData) templ.Component {
	p := data.Profile
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<h1>%s</h1>`, t(ctx, "settings.title"))
		if data.Saved {
			alert(ctx, w, "success", "settings.saved")
		}
		if data.ErrorKey != "" {
			alert(ctx, w, "error", data.ErrorKey)
		}
		fmt.Fprint(w, `<form method="post" action="/settings">`)
		fmt.Fprintf(w, `<label>%s<input type="text" name="first_name" value=%q required></label>`,
			t(ctx, "auth.first_name"), esc(p.FirstName))
		fmt.Fprintf(w, `<label>%s<input type="text" name="last_name" value=%q></label>`,
			t(ctx, "auth.last_name"), esc(p.LastName))
		fmt.Fprintf(w, `<label>%s<input type="url" name="avatar_url" value=%q></label>`,
			t(ctx, "settings.avatar_url"), esc(p.AvatarURL))
		_, err := fmt.Fprintf(w, `<button type="submit" class="btn btn-primary">%s</button></form>`,
			t(ctx, "common.save"))
		return err
	})
	return Layout(i18nTitle("settings.title"), data.Viewer, "", body)
}

// Unauthorized — блокирующая страница 403 для не-администраторов.
// Отдаётся вместо redirect, чтобы исключить циклы перенаправлений.
func Unauthorized(viewer Viewer) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="error-page"><h1>403</h1><h2>%s</h2><p>%s</p><a class="btn" href="/dashboard">%s</a></div>`,
			t(ctx, "denied.title"), t(ctx, "denied.message"), t(ctx, "denied.back"))
		return err
	})
	return Layout(i18nTitle("denied.title"), viewer, "", body)
}
