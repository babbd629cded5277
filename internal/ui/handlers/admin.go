// admin.go — обработчики административной панели.
// Доступ контролируется middleware (AdminGuard); сюда запросы приходят
// уже с подтверждённой ролью admin.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
	"github.com/bigkaa/hackingtorch/portal-module/internal/service"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/pages"
)

// adminPageSize — размер страницы админских таблиц.
const adminPageSize = 20

// DependencyHealth — источник состояния внешних зависимостей
// для главной страницы админки.
type DependencyHealth interface {
	// Health возвращает имя зависимости → true, если она доступна.
	Health() map[string]bool
}

// AdminHandler — обработчики административной панели.
type AdminHandler struct {
	adminSvc  *service.AdminService
	depHealth DependencyHealth
	logger    *slog.Logger
}

// NewAdminHandler создаёт обработчики админки.
// depHealth может быть nil — мониторинг зависимостей опционален,
// панель тогда показывает только статистику.
func NewAdminHandler(adminSvc *service.AdminService, depHealth DependencyHealth, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		adminSvc:  adminSvc,
		depHealth: depHealth,
		logger:    logger.With(slog.String("component", "ui.admin")),
	}
}

// HandleDashboard обрабатывает GET /admin — статистика платформы
// и состояние внешних зависимостей.
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminSvc.GetStats(r.Context())
	if err != nil {
		// Статистика либо целиком, либо никак — частичные числа не показываем
		h.logger.Error("Ошибка сбора статистики", slog.String("error", err.Error()))
		stats = nil
	}

	var deps map[string]bool
	if h.depHealth != nil {
		deps = h.depHealth.Health()
	}

	data := pages.AdminDashboardData{
		Viewer:       viewerFromRequest(r),
		Stats:        stats,
		Dependencies: deps,
	}
	render(w, r, pages.AdminDashboard(data), h.logger)
}

// userFilterFromRequest собирает фильтр пользователей из query-параметров.
func userFilterFromRequest(r *http.Request) service.UserFilter {
	return service.UserFilter{
		Role:   r.URL.Query().Get("role"),
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
		Page:   queryInt(r, "page", 1),
		Limit:  adminPageSize,
	}
}

// usersData выполняет выборку пользователей и готовит данные страницы.
func (h *AdminHandler) usersData(w http.ResponseWriter, r *http.Request) (pages.AdminUsersData, bool) {
	filter := userFilterFromRequest(r)
	users, total, err := h.adminSvc.ListUsers(r.Context(), filter)
	if err != nil {
		h.logger.Error("Ошибка получения списка пользователей", slog.String("error", err.Error()))
		http.Error(w, "Ошибка получения списка пользователей", http.StatusInternalServerError)
		return pages.AdminUsersData{}, false
	}
	return pages.AdminUsersData{
		Viewer: viewerFromRequest(r),
		Users:  users,
		Total:  total,
		Page:   filter.Page,
		Limit:  filter.Limit,
		Role:   filter.Role,
		Status: filter.Status,
		Search: filter.Search,
	}, true
}

// HandleUsers обрабатывает GET /admin/users — раздел пользователей.
func (h *AdminHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	data, ok := h.usersData(w, r)
	if !ok {
		return
	}
	render(w, r, pages.AdminUsers(data), h.logger)
}

// HandleUsersTable обрабатывает GET /admin/users/table — HTMX-partial
// таблицы при смене фильтров или страницы.
func (h *AdminHandler) HandleUsersTable(w http.ResponseWriter, r *http.Request) {
	data, ok := h.usersData(w, r)
	if !ok {
		return
	}
	render(w, r, pages.UsersTable(data), h.logger)
}

// HandleUpdateUserRole обрабатывает PATCH /admin/users/{id}/role.
// Отвечает обновлённой строкой таблицы (HTMX swap).
func (h *AdminHandler) HandleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	role := r.FormValue("role")

	user, err := h.adminSvc.UpdateUserRole(r.Context(), id, role)
	if err != nil {
		h.writeUserUpdateError(w, r, id, err)
		return
	}

	h.logger.Info("Админ изменил роль пользователя",
		slog.String("admin", adminSubject(r)),
		slog.String("user_id", id),
		slog.String("role", role),
	)
	render(w, r, pages.UserRow(user), h.logger)
}

// HandleUpdateUserStatus обрабатывает PATCH /admin/users/{id}/status.
func (h *AdminHandler) HandleUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := r.FormValue("status")

	user, err := h.adminSvc.UpdateUserStatus(r.Context(), id, status)
	if err != nil {
		h.writeUserUpdateError(w, r, id, err)
		return
	}

	h.logger.Info("Админ изменил статус аккаунта",
		slog.String("admin", adminSubject(r)),
		slog.String("user_id", id),
		slog.String("status", status),
	)
	render(w, r, pages.UserRow(user), h.logger)
}

// writeUserUpdateError переводит ошибку сервиса в HTTP-ответ.
func (h *AdminHandler) writeUserUpdateError(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "Пользователь не найден", http.StatusNotFound)
	default:
		h.logger.Error("Ошибка обновления пользователя",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}

// eventFilterFromRequest собирает фильтр мероприятий из query-параметров.
func eventFilterFromRequest(r *http.Request) service.EventFilter {
	return service.EventFilter{
		Status:    r.URL.Query().Get("status"),
		EventType: r.URL.Query().Get("type"),
		Search:    r.URL.Query().Get("search"),
		Page:      queryInt(r, "page", 1),
		Limit:     adminPageSize,
	}
}

// eventsData выполняет выборку мероприятий и готовит данные страницы.
func (h *AdminHandler) eventsData(w http.ResponseWriter, r *http.Request) (pages.AdminEventsData, bool) {
	filter := eventFilterFromRequest(r)
	events, total, err := h.adminSvc.ListEvents(r.Context(), filter)
	if err != nil {
		h.logger.Error("Ошибка получения списка мероприятий", slog.String("error", err.Error()))
		http.Error(w, "Ошибка получения списка мероприятий", http.StatusInternalServerError)
		return pages.AdminEventsData{}, false
	}
	return pages.AdminEventsData{
		Viewer:    viewerFromRequest(r),
		Events:    events,
		Total:     total,
		Page:      filter.Page,
		Limit:     filter.Limit,
		Status:    filter.Status,
		EventType: filter.EventType,
		Search:    filter.Search,
	}, true
}

// HandleEvents обрабатывает GET /admin/events — раздел модерации.
func (h *AdminHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	data, ok := h.eventsData(w, r)
	if !ok {
		return
	}
	render(w, r, pages.AdminEvents(data), h.logger)
}

// HandleEventsTable обрабатывает GET /admin/events/table — HTMX-partial.
func (h *AdminHandler) HandleEventsTable(w http.ResponseWriter, r *http.Request) {
	data, ok := h.eventsData(w, r)
	if !ok {
		return
	}
	render(w, r, pages.EventsTable(data), h.logger)
}

// HandleUpdateEventStatus обрабатывает PATCH /admin/events/{id}/status —
// модерация (approve/reject) и прочие смены статуса.
func (h *AdminHandler) HandleUpdateEventStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := r.FormValue("status")

	event, err := h.adminSvc.UpdateEventStatus(r.Context(), id, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEventStatus):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "Мероприятие не найдено", http.StatusNotFound)
		default:
			h.logger.Error("Ошибка смены статуса мероприятия",
				slog.String("event_id", id),
				slog.String("error", err.Error()),
			)
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("Админ изменил статус мероприятия",
		slog.String("admin", adminSubject(r)),
		slog.String("event_id", id),
		slog.String("status", status),
	)
	render(w, r, pages.EventRow(event), h.logger)
}

// HandleDeleteEvent обрабатывает DELETE /admin/events/{id}.
// Пустой ответ убирает строку таблицы (hx-swap outerHTML).
func (h *AdminHandler) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.adminSvc.DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "Мероприятие не найдено", http.StatusNotFound)
			return
		}
		h.logger.Error("Ошибка удаления мероприятия",
			slog.String("event_id", id),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Админ удалил мероприятие",
		slog.String("admin", adminSubject(r)),
		slog.String("event_id", id),
	)
	w.WriteHeader(http.StatusOK)
}

// HandleSettingsPage обрабатывает GET /admin/settings.
func (h *AdminHandler) HandleSettingsPage(w http.ResponseWriter, r *http.Request) {
	settings, err := h.adminSvc.GetSettings(r.Context())
	if err != nil {
		h.logger.Error("Ошибка получения настроек платформы", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}
	data := pages.AdminSettingsData{
		Viewer:   viewerFromRequest(r),
		Settings: settings,
		Saved:    r.URL.Query().Get("saved") == "1",
	}
	render(w, r, pages.AdminSettings(data), h.logger)
}

// HandleSettingsSave обрабатывает POST /admin/settings.
func (h *AdminHandler) HandleSettingsSave(w http.ResponseWriter, r *http.Request) {
	featuredLimit, err := strconv.Atoi(r.FormValue("featured_limit"))
	if err != nil {
		featuredLimit = 0 // провалит валидацию сервиса
	}

	settings := &model.PlatformSettings{
		RegistrationOpen:   r.FormValue("registration_open") == "true",
		FeaturedLimit:      featuredLimit,
		MaintenanceMessage: r.FormValue("maintenance_message"),
	}

	if err := h.adminSvc.UpdateSettings(r.Context(), settings); err != nil {
		if errors.Is(err, service.ErrValidation) {
			data := pages.AdminSettingsData{
				Viewer:   viewerFromRequest(r),
				Settings: settings,
				Error:    err.Error(),
			}
			render(w, r, pages.AdminSettings(data), h.logger)
			return
		}
		h.logger.Error("Ошибка сохранения настроек платформы", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Админ обновил настройки платформы", slog.String("admin", adminSubject(r)))
	http.Redirect(w, r, "/admin/settings?saved=1", http.StatusSeeOther)
}

// adminSubject возвращает ID администратора из контекста для аудита.
func adminSubject(r *http.Request) string {
	if identity := identityFromRequest(r); identity != nil {
		return identity.Subject
	}
	return ""
}
