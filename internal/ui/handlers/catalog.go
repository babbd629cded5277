// catalog.go — обработчики публичного каталога мероприятий.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/hackingtorch/portal-module/internal/service"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/pages"
)

// CatalogHandler — обработчики публичных страниц каталога.
type CatalogHandler struct {
	catalogSvc *service.CatalogService
	profileSvc *service.ProfileService
	logger     *slog.Logger
}

// NewCatalogHandler создаёт обработчики каталога.
func NewCatalogHandler(
	catalogSvc *service.CatalogService,
	profileSvc *service.ProfileService,
	logger *slog.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		catalogSvc: catalogSvc,
		profileSvc: profileSvc,
		logger:     logger.With(slog.String("component", "ui.catalog")),
	}
}

// HandleIndex обрабатывает GET / — главная страница каталога.
func (h *CatalogHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	selectedType := r.URL.Query().Get("type")

	featured, err := h.catalogSvc.Featured(ctx)
	if err != nil {
		h.logger.Error("Ошибка получения продвигаемых мероприятий", slog.String("error", err.Error()))
		// Главная страница показывается и без блока featured
	}

	upcoming, err := h.catalogSvc.Upcoming(ctx, selectedType)
	if err != nil {
		h.logger.Error("Ошибка получения предстоящих мероприятий", slog.String("error", err.Error()))
	}

	data := pages.CatalogData{
		Viewer:       viewerFromRequest(r),
		Maintenance:  h.catalogSvc.Settings(ctx).MaintenanceMessage,
		Featured:     featured,
		Upcoming:     upcoming,
		SelectedType: selectedType,
	}
	render(w, r, pages.Catalog(data), h.logger)
}

// HandleEventList обрабатывает GET /events/list — HTMX-partial списка
// мероприятий при смене фильтра по типу.
func (h *CatalogHandler) HandleEventList(w http.ResponseWriter, r *http.Request) {
	events, err := h.catalogSvc.Upcoming(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.logger.Error("Ошибка получения списка мероприятий", slog.String("error", err.Error()))
		http.Error(w, "Ошибка получения списка", http.StatusInternalServerError)
		return
	}
	render(w, r, pages.EventList(events), h.logger)
}

// HandleEventDetail обрабатывает GET /event/{id} — публичная страница
// мероприятия. Черновики и мероприятия на модерации отдают 404.
func (h *CatalogHandler) HandleEventDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	event, err := h.catalogSvc.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render(w, r, pages.NotFound(viewerFromRequest(r)), h.logger)
			return
		}
		h.logger.Error("Ошибка получения мероприятия",
			slog.String("event_id", id),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	data := pages.EventDetailData{
		Viewer: viewerFromRequest(r),
		Event:  event,
	}
	// Организатор — дополнение к странице; её показ не зависит от него
	if organizer, err := h.profileSvc.Get(ctx, event.OrganizerID); err == nil {
		data.Organizer = organizer
	}

	render(w, r, pages.EventDetail(data), h.logger)
}
