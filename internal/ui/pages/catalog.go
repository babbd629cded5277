// catalog.go — страницы публичного каталога мероприятий.
package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
)

// eventTypes — порядок типов в фильтре каталога.
var eventTypes = []string{
	model.EventTypeHackathon,
	model.EventTypeIdeathon,
	model.EventTypeWorkshop,
	model.EventTypeConference,
	model.EventTypeMeetup,
}

// CatalogData — данные главной страницы каталога.
type CatalogData struct {
	Viewer      Viewer
	Maintenance string
	Featured    []*model.Event
	Upcoming    []*model.Event
	// SelectedType — активный фильтр по типу (пустая строка — все).
	SelectedType string
}

// Catalog — главная страница: продвигаемые и предстоящие мероприятия.
func Catalog(data CatalogData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(data.Featured) > 0 {
			fmt.Fprintf(w, `<section class="featured"><h2>%s</h2><div class="event-grid">`, t(ctx, "catalog.featured"))
			for _, e := range data.Featured {
				if err := EventCard(e).Render(ctx, w); err != nil {
					return err
				}
			}
			fmt.Fprint(w, `</div></section>`)
		}

		fmt.Fprintf(w, `<section class="upcoming"><h2>%s</h2>`, t(ctx, "catalog.upcoming"))
		if err := typeFilter(data.SelectedType).Render(ctx, w); err != nil {
			return err
		}
		fmt.Fprint(w, `<div id="event-list">`)
		if err := EventList(data.Upcoming).Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, `</div></section>`)
		return err
	})
	return Layout("HackingTorch", data.Viewer, data.Maintenance, body)
}

// typeFilter — фильтр по типу мероприятия. Обновляет список через HTMX.
func typeFilter(selected string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<div class="type-filter">`)
		fmt.Fprintf(w, `<a href="/" hx-get="/events/list" hx-target="#event-list" class="%s">%s</a>`,
			activeClass(selected == ""), t(ctx, "catalog.all_types"))
		for _, et := range eventTypes {
			fmt.Fprintf(w, `<a href="/?type=%s" hx-get="/events/list?type=%s" hx-target="#event-list" class="%s">%s</a>`,
				esc(et), esc(et), activeClass(selected == et), esc(et))
		}
		_, err := fmt.Fprint(w, `</div>`)
		return err
	})
}

func activeClass(active bool) string {
	if active {
		return "active"
	}
	return ""
}

// EventList — partial со списком карточек. Используется и при первичном
// рендеринге, и как HTMX-ответ фильтра.
func EventList(events []*model.Event) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(events) == 0 {
			_, err := fmt.Fprintf(w, `<p class="empty">%s</p>`, t(ctx, "catalog.empty"))
			return err
		}
		fmt.Fprint(w, `<div class="event-grid">`)
		for _, e := range events {
			if err := EventCard(e).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, `</div>`)
		return err
	})
}

// EventCard — карточка мероприятия в каталоге.
func EventCard(e *model.Event) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<article class="event-card">`)
		if e.CoverImageURL != "" {
			fmt.Fprintf(w, `<img src=%q alt="">`, esc(e.CoverImageURL))
		}
		fmt.Fprintf(w, `<span class="badge badge-%s">%s</span>`, esc(e.EventType), esc(e.EventType))
		fmt.Fprintf(w, `<h3><a href="/event/%s">%s</a></h3>`, esc(e.ID), esc(e.Name))
		fmt.Fprintf(w, `<p class="dates">%s – %s</p>`,
			e.StartDate.Format("02.01.2006"), e.EndDate.Format("02.01.2006"))
		if e.Format == model.EventFormatOnline {
			fmt.Fprintf(w, `<p class="location">%s</p>`, t(ctx, "event.online"))
		} else if e.Location != "" {
			fmt.Fprintf(w, `<p class="location">%s</p>`, esc(e.Location))
		}
		_, err := fmt.Fprintf(w, `<a class="btn" href="/event/%s">%s</a></article>`,
			esc(e.ID), t(ctx, "catalog.view"))
		return err
	})
}

// EventDetailData — данные страницы мероприятия.
type EventDetailData struct {
	Viewer    Viewer
	Event     *model.Event
	Organizer *model.Profile
}

// EventDetail — публичная страница мероприятия.
func EventDetail(data EventDetailData) templ.Component {
	e := data.Event
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<article class="event-detail"><h1>%s</h1>`, esc(e.Name))
		fmt.Fprintf(w, `<span class="badge badge-%s">%s</span> <span class="badge">%s</span>`,
			esc(e.EventType), esc(e.EventType), esc(e.Format))
		if e.CoverImageURL != "" {
			fmt.Fprintf(w, `<img class="cover" src=%q alt="">`, esc(e.CoverImageURL))
		}
		fmt.Fprintf(w, `<p class="description">%s</p>`, esc(e.Description))

		fmt.Fprint(w, `<dl class="event-meta">`)
		fmt.Fprintf(w, `<dt>%s</dt><dd>%s – %s</dd>`, t(ctx, "event.dates"),
			e.StartDate.Format("02.01.2006 15:04"), e.EndDate.Format("02.01.2006 15:04"))
		if e.Location != "" {
			fmt.Fprintf(w, `<dt>%s</dt><dd>%s</dd>`, t(ctx, "event.location"), esc(e.Location))
		}
		if e.OnlineURL != "" {
			fmt.Fprintf(w, `<dt>%s</dt><dd><a href=%q>%s</a></dd>`,
				t(ctx, "event.online"), esc(e.OnlineURL), esc(e.OnlineURL))
		}
		if data.Organizer != nil {
			fmt.Fprintf(w, `<dt>%s</dt><dd>%s</dd>`, t(ctx, "event.organizer"), esc(data.Organizer.FullName()))
		}
		if e.MaxParticipants > 0 {
			fmt.Fprintf(w, `<dt>%s</dt><dd>%d</dd>`, t(ctx, "event.max_participants"), e.MaxParticipants)
		}
		if e.MaxTeamSize > 0 {
			fmt.Fprintf(w, `<dt>%s</dt><dd>%d</dd>`, t(ctx, "event.max_team_size"), e.MaxTeamSize)
		}
		if len(e.Categories) > 0 {
			fmt.Fprintf(w, `<dt>%s</dt><dd>`, t(ctx, "event.categories"))
			for i, c := range e.Categories {
				if i > 0 {
					fmt.Fprint(w, ", ")
				}
				fmt.Fprint(w, esc(c))
			}
			fmt.Fprint(w, `</dd>`)
		}
		_, err := fmt.Fprint(w, `</dl></article>`)
		return err
	})
	return Layout(e.Name, data.Viewer, "", body)
}

// NotFound — страница 404 для каталога.
func NotFound(viewer Viewer) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="error-page"><h1>404</h1><p>%s</p><a class="btn" href="/">%s</a></div>`,
			t(ctx, "event.not_found"), t(ctx, "nav.catalog"))
		return err
	})
	return Layout("404", viewer, "", body)
}
