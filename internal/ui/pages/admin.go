// admin.go — страницы административной панели.
package pages

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"

	"github.com/a-h/templ"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/rbac"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/i18n"
)

// adminNav — боковое меню админки с подсветкой активного раздела.
func adminNav(active string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		items := []struct {
			href, key, name string
		}{
			{"/admin", "admin.stats.title", "stats"},
			{"/admin/users", "admin.users.title", "users"},
			{"/admin/events", "admin.events.title", "events"},
			{"/admin/settings", "admin.settings.title", "settings"},
		}
		fmt.Fprint(w, `<aside class="admin-nav"><nav>`)
		for _, it := range items {
			fmt.Fprintf(w, `<a href=%q class=%q>%s</a>`, it.href, activeClass(it.name == active), t(ctx, it.key))
		}
		_, err := fmt.Fprint(w, `</nav></aside>`)
		return err
	})
}

// adminLayout оборачивает содержимое раздела в каркас админки.
func adminLayout(title, active string, viewer Viewer, body templ.Component) templ.Component {
	wrapped := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<div class="admin-layout">`)
		if err := adminNav(active).Render(ctx, w); err != nil {
			return err
		}
		fmt.Fprint(w, `<div class="admin-content">`)
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, `</div></div>`)
		return err
	})
	return Layout(title, viewer, "", wrapped)
}

// AdminDashboardData — данные главной страницы админки.
type AdminDashboardData struct {
	Viewer Viewer
	// Stats — статистика платформы; nil при ошибке сбора.
	Stats *model.PlatformStats
	// Dependencies — состояние внешних зависимостей (имя → доступна);
	// nil, если мониторинг не запущен.
	Dependencies map[string]bool
}

// AdminDashboard — главная страница админки: статистика платформы
// и состояние внешних зависимостей.
func AdminDashboard(data AdminDashboardData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<h1>%s</h1>`, t(ctx, "admin.stats.title"))
		if data.Stats == nil {
			// Статистика собирается по принципу «всё или ничего» —
			// при ошибке не показываем частичные числа.
			alert(ctx, w, "error", "admin.stats.error")
		} else {
			s := data.Stats
			cards := []struct {
				key   string
				value int
			}{
				{"admin.stats.users", s.TotalUsers},
				{"admin.stats.events", s.TotalEvents},
				{"admin.stats.active", s.ActiveEvents},
				{"admin.stats.pending", s.PendingEvents},
				{"admin.stats.teams", s.TotalTeams},
				{"admin.stats.submissions", s.TotalSubmissions},
			}
			fmt.Fprint(w, `<div class="stats-grid">`)
			for _, c := range cards {
				fmt.Fprintf(w, `<div class="stat-card"><span class="stat-value">%d</span><span class="stat-label">%s</span></div>`,
					c.value, t(ctx, c.key))
			}
			fmt.Fprint(w, `</div>`)
		}
		return dependencyHealth(data.Dependencies).Render(ctx, w)
	})
	return adminLayout(i18nTitle("admin.stats.title"), "stats", data.Viewer, body)
}

// dependencyHealth — блок состояния внешних зависимостей (PostgreSQL,
// auth-сервис). При выключенном мониторинге блок не выводится.
func dependencyHealth(deps map[string]bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(deps) == 0 {
			return nil
		}

		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintf(w, `<h2>%s</h2><ul class="dep-list">`, t(ctx, "admin.deps.title"))
		for _, name := range names {
			statusClass, statusKey := "dep-ok", "admin.deps.ok"
			if !deps[name] {
				statusClass, statusKey = "dep-fail", "admin.deps.fail"
			}
			fmt.Fprintf(w, `<li class="dep-item"><span class="dep-name">%s</span><span class="dep-status %s">%s</span></li>`,
				esc(name), statusClass, t(ctx, statusKey))
		}
		_, err := fmt.Fprint(w, `</ul>`)
		return err
	})
}

// AdminUsersData — данные раздела управления пользователями.
type AdminUsersData struct {
	Viewer Viewer
	Users  []*model.Profile
	Total  int
	Page   int
	Limit  int
	// Фильтры (для сохранения состояния формы)
	Role   string
	Status string
	Search string
}

// AdminUsers — раздел управления пользователями.
func AdminUsers(data AdminUsersData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<h1>%s</h1>`, t(ctx, "admin.users.title"))

		// Фильтры обновляют таблицу через HTMX
		fmt.Fprint(w, `<form class="filters" hx-get="/admin/users/table" hx-target="#users-table" hx-trigger="change, submit">`)
		fmt.Fprintf(w, `<input type="search" name="search" value=%q placeholder=%q>`,
			esc(data.Search), t(ctx, "common.search"))
		fmt.Fprintf(w, `<select name="role"><option value="">%s</option>`, t(ctx, "admin.users.all_roles"))
		for _, role := range []string{rbac.RoleParticipant, rbac.RoleOrganizer, rbac.RoleAdmin} {
			fmt.Fprintf(w, `<option value=%q%s>%s</option>`, role, selectedAttr(data.Role == role), esc(role))
		}
		fmt.Fprintf(w, `</select><select name="status"><option value="">%s</option>`, t(ctx, "admin.users.all_statuses"))
		for _, status := range []string{rbac.StatusActive, rbac.StatusSuspended, rbac.StatusPending} {
			fmt.Fprintf(w, `<option value=%q%s>%s</option>`, status, selectedAttr(data.Status == status), esc(status))
		}
		fmt.Fprintf(w, `</select><button type="submit" class="btn">%s</button></form>`, t(ctx, "common.filter"))

		fmt.Fprint(w, `<div id="users-table">`)
		if err := UsersTable(data).Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, `</div>`)
		return err
	})
	return adminLayout(i18nTitle("admin.users.title"), "users", data.Viewer, body)
}

// UsersTable — partial с таблицей пользователей (HTMX-ответ фильтров).
func UsersTable(data AdminUsersData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(data.Users) == 0 {
			_, err := fmt.Fprintf(w, `<p class="empty">%s</p>`, t(ctx, "admin.users.empty"))
			return err
		}
		fmt.Fprintf(w, `<table class="admin-table"><thead><tr><th>%s</th><th>%s</th><th>%s</th><th>%s</th></tr></thead><tbody>`,
			t(ctx, "admin.users.name"), t(ctx, "admin.users.email"),
			t(ctx, "admin.users.role"), t(ctx, "admin.users.status"))
		for _, u := range data.Users {
			if err := UserRow(u).Render(ctx, w); err != nil {
				return err
			}
		}
		fmt.Fprint(w, `</tbody></table>`)

		params := url.Values{}
		setIfNotEmpty(params, "role", data.Role)
		setIfNotEmpty(params, "status", data.Status)
		setIfNotEmpty(params, "search", data.Search)
		return pagination("/admin/users/table", "#users-table", params, data.Page, data.Limit, data.Total).Render(ctx, w)
	})
}

// UserRow — строка таблицы пользователей с inline-селектами смены роли
// и статуса (HTMX-ответ на PATCH).
func UserRow(u *model.Profile) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<tr id="user-%s"><td>%s</td><td>%s</td>`, esc(u.ID), esc(u.FullName()), esc(u.Email))
		fmt.Fprintf(w, `<td><select name="role" hx-patch="/admin/users/%s/role" hx-target="#user-%s" hx-swap="outerHTML">`,
			esc(u.ID), esc(u.ID))
		for _, role := range []string{rbac.RoleParticipant, rbac.RoleOrganizer, rbac.RoleAdmin} {
			fmt.Fprintf(w, `<option value=%q%s>%s</option>`, role, selectedAttr(u.UserType == role), esc(role))
		}
		fmt.Fprintf(w, `</select></td><td><select name="status" hx-patch="/admin/users/%s/status" hx-target="#user-%s" hx-swap="outerHTML">`,
			esc(u.ID), esc(u.ID))
		for _, status := range []string{rbac.StatusActive, rbac.StatusSuspended, rbac.StatusPending} {
			fmt.Fprintf(w, `<option value=%q%s>%s</option>`, status, selectedAttr(u.Status == status), esc(status))
		}
		_, err := fmt.Fprint(w, `</select></td></tr>`)
		return err
	})
}

// AdminEventsData — данные раздела модерации мероприятий.
type AdminEventsData struct {
	Viewer Viewer
	Events []*model.Event
	Total  int
	Page   int
	Limit  int
	// Фильтры
	Status    string
	EventType string
	Search    string
}

// eventStatuses — порядок статусов в фильтре админки.
var eventStatuses = []string{
	model.EventStatusDraft,
	model.EventStatusPending,
	model.EventStatusPublished,
	model.EventStatusActive,
	model.EventStatusRejected,
	model.EventStatusCompleted,
	model.EventStatusCancelled,
}

// AdminEvents — раздел модерации мероприятий.
func AdminEvents(data AdminEventsData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<h1>%s</h1>`, t(ctx, "admin.events.title"))

		fmt.Fprint(w, `<form class="filters" hx-get="/admin/events/table" hx-target="#events-table" hx-trigger="change, submit">`)
		fmt.Fprintf(w, `<input type="search" name="search" value=%q placeholder=%q>`,
			esc(data.Search), t(ctx, "common.search"))
		fmt.Fprintf(w, `<select name="status"><option value="">%s</option>`, t(ctx, "admin.users.all_statuses"))
		for _, status := range eventStatuses {
			fmt.Fprintf(w, `<option value=%q%s>%s</option>`, status, selectedAttr(data.Status == status), esc(status))
		}
		fmt.Fprintf(w, `</select><select name="type"><option value="">%s</option>`, t(ctx, "catalog.all_types"))
		for _, et := range eventTypes {
			fmt.Fprintf(w, `<option value=%q%s>%s</option>`, et, selectedAttr(data.EventType == et), esc(et))
		}
		fmt.Fprintf(w, `</select><button type="submit" class="btn">%s</button></form>`, t(ctx, "common.filter"))

		fmt.Fprint(w, `<div id="events-table">`)
		if err := EventsTable(data).Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, `</div>`)
		return err
	})
	return adminLayout(i18nTitle("admin.events.title"), "events", data.Viewer, body)
}

// EventsTable — partial с таблицей мероприятий (HTMX-ответ фильтров).
func EventsTable(data AdminEventsData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(data.Events) == 0 {
			_, err := fmt.Fprintf(w, `<p class="empty">%s</p>`, t(ctx, "admin.events.empty"))
			return err
		}
		fmt.Fprintf(w, `<table class="admin-table"><thead><tr><th>%s</th><th>%s</th><th>%s</th><th></th></tr></thead><tbody>`,
			t(ctx, "admin.events.name"), t(ctx, "admin.events.type"), t(ctx, "admin.events.status"))
		for _, e := range data.Events {
			if err := EventRow(e).Render(ctx, w); err != nil {
				return err
			}
		}
		fmt.Fprint(w, `</tbody></table>`)

		params := url.Values{}
		setIfNotEmpty(params, "status", data.Status)
		setIfNotEmpty(params, "type", data.EventType)
		setIfNotEmpty(params, "search", data.Search)
		return pagination("/admin/events/table", "#events-table", params, data.Page, data.Limit, data.Total).Render(ctx, w)
	})
}

// EventRow — строка таблицы мероприятий с кнопками модерации
// (HTMX-ответ на approve/reject).
func EventRow(e *model.Event) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<tr id="event-%s"><td><a href="/event/%s">%s</a></td><td>%s</td><td><span class="badge badge-%s">%s</span></td><td class="actions">`,
			esc(e.ID), esc(e.ID), esc(e.Name), esc(e.EventType), esc(e.Status), esc(e.Status))
		if e.Status == model.EventStatusPending {
			fmt.Fprintf(w, `<button class="btn btn-success" hx-patch="/admin/events/%s/status" hx-vals='{"status":"published"}' hx-target="#event-%s" hx-swap="outerHTML">%s</button>`,
				esc(e.ID), esc(e.ID), t(ctx, "admin.events.approve"))
			fmt.Fprintf(w, `<button class="btn btn-warning" hx-patch="/admin/events/%s/status" hx-vals='{"status":"rejected"}' hx-target="#event-%s" hx-swap="outerHTML">%s</button>`,
				esc(e.ID), esc(e.ID), t(ctx, "admin.events.reject"))
		}
		fmt.Fprintf(w, `<button class="btn btn-danger" hx-delete="/admin/events/%s" hx-confirm="%s?" hx-target="#event-%s" hx-swap="outerHTML">%s</button>`,
			esc(e.ID), t(ctx, "admin.events.delete"), esc(e.ID), t(ctx, "admin.events.delete"))
		_, err := fmt.Fprint(w, `</td></tr>`)
		return err
	})
}

// AdminSettingsData — данные раздела настроек платформы.
type AdminSettingsData struct {
	Viewer   Viewer
	Settings *model.PlatformSettings
	// Saved — настройки только что сохранены.
	Saved bool
	// Error — текст ошибки валидации.
	Error string
}

// AdminSettings — раздел настроек платформы.
func AdminSettings(data AdminSettingsData) templ.Component {
	s := data.Settings
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<h1>%s</h1>`, t(ctx, "admin.settings.title"))
		if data.Saved {
			alert(ctx, w, "success", "admin.settings.saved")
		}
		if data.Error != "" {
			fmt.Fprintf(w, `<div class="alert alert-error">%s</div>`, esc(data.Error))
		}
		fmt.Fprint(w, `<form method="post" action="/admin/settings">`)
		fmt.Fprintf(w, `<label class="checkbox"><input type="checkbox" name="registration_open" value="true"%s>%s</label>`,
			checkedAttr(s.RegistrationOpen), t(ctx, "admin.settings.registration_open"))
		fmt.Fprintf(w, `<label>%s<input type="number" name="featured_limit" value="%d" min="1" max="24"></label>`,
			t(ctx, "admin.settings.featured_limit"), s.FeaturedLimit)
		fmt.Fprintf(w, `<label>%s<textarea name="maintenance_message">%s</textarea></label>`,
			t(ctx, "admin.settings.maintenance_message"), esc(s.MaintenanceMessage))
		_, err := fmt.Fprintf(w, `<button type="submit" class="btn btn-primary">%s</button></form>`,
			t(ctx, "common.save"))
		return err
	})
	return adminLayout(i18nTitle("admin.settings.title"), "settings", data.Viewer, body)
}

// --- Хелперы ---

func selectedAttr(selected bool) string {
	if selected {
		return " selected"
	}
	return ""
}

func checkedAttr(checked bool) string {
	if checked {
		return " checked"
	}
	return ""
}

func setIfNotEmpty(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

// pagination — навигация по страницам таблицы через HTMX.
func pagination(basePath, target string, params url.Values, page, limit, total int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if limit < 1 {
			limit = 1
		}
		pages := (total + limit - 1) / limit
		if pages <= 1 {
			return nil
		}
		fmt.Fprint(w, `<div class="pagination">`)
		if page > 1 {
			fmt.Fprintf(w, `<a hx-get=%q hx-target=%q>%s</a>`,
				pageURL(basePath, params, page-1), target, t(ctx, "common.prev"))
		}
		fmt.Fprintf(w, `<span>%s</span>`, esc(i18n.Tf(ctx, "common.page", page, pages)))
		if page < pages {
			fmt.Fprintf(w, `<a hx-get=%q hx-target=%q>%s</a>`,
				pageURL(basePath, params, page+1), target, t(ctx, "common.next"))
		}
		_, err := fmt.Fprint(w, `</div>`)
		return err
	})
}

func pageURL(basePath string, params url.Values, page int) string {
	p := url.Values{}
	for k, v := range params {
		p[k] = v
	}
	p.Set("page", strconv.Itoa(page))
	return basePath + "?" + p.Encode()
}
