// dashboard.go — личный кабинет и настройки профиля.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bigkaa/hackingtorch/portal-module/internal/authsvc"
	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/model"
	"github.com/bigkaa/hackingtorch/portal-module/internal/service"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/auth"
	uimiddleware "github.com/bigkaa/hackingtorch/portal-module/internal/ui/middleware"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/pages"
)

// IdentitySource — запись пользователя в auth-сервисе по access token.
// Используется как запасной источник данных профиля при рассинхроне
// auth-сервиса и таблицы profiles.
type IdentitySource interface {
	GetUser(ctx context.Context, accessToken string) (*authsvc.User, error)
}

// DashboardHandler — обработчики личного кабинета.
type DashboardHandler struct {
	profileSvc *service.ProfileService
	authSvc    IdentitySource
	logger     *slog.Logger
}

// NewDashboardHandler создаёт обработчики личного кабинета.
func NewDashboardHandler(profileSvc *service.ProfileService, authSvc IdentitySource, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		profileSvc: profileSvc,
		authSvc:    authSvc,
		logger:     logger.With(slog.String("component", "ui.dashboard")),
	}
}

// profileFromRequest возвращает профиль текущего пользователя.
// Запросы сюда приходят уже авторизованными; отсутствие identity
// означает неправильный порядок middleware.
func (h *DashboardHandler) profileFromRequest(w http.ResponseWriter, r *http.Request) *model.Profile {
	identity := uimiddleware.IdentityFromContext(r.Context())
	if identity == nil {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return nil
	}

	profile, err := h.profileSvc.Get(r.Context(), identity.Subject)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// Аккаунт в auth-сервисе есть, профиля нет — рассинхрон
			// после неудавшейся регистрации
			return h.recoverProfile(r, identity)
		}
		h.logger.Error("Ошибка получения профиля",
			slog.String("user_id", identity.Subject),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return nil
	}
	return profile
}

// recoverProfile собирает профиль без записи в profiles: основа —
// данные сессии, имя и фамилия запрашиваются из записи пользователя
// в auth-сервисе. При недоступном auth-сервисе — только данные сессии.
func (h *DashboardHandler) recoverProfile(r *http.Request, identity *auth.Identity) *model.Profile {
	profile := &model.Profile{
		ID:       identity.Subject,
		Email:    identity.Email,
		UserType: identity.Role,
		Status:   "pending",
	}

	session := uimiddleware.SessionFromContext(r.Context())
	if h.authSvc == nil || session == nil {
		return profile
	}

	user, err := h.authSvc.GetUser(r.Context(), session.AccessToken)
	if err != nil {
		h.logger.Warn("Не удалось получить пользователя из auth-сервиса",
			slog.String("user_id", identity.Subject),
			slog.String("error", err.Error()),
		)
		return profile
	}

	if user.Email != "" {
		profile.Email = user.Email
	}
	if v, ok := user.UserMetadata["first_name"].(string); ok {
		profile.FirstName = v
	}
	if v, ok := user.UserMetadata["last_name"].(string); ok {
		profile.LastName = v
	}
	return profile
}

// HandleDashboard обрабатывает GET /dashboard.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	profile := h.profileFromRequest(w, r)
	if profile == nil {
		return
	}
	data := pages.DashboardData{
		Viewer:  viewerFromRequest(r),
		Profile: profile,
	}
	render(w, r, pages.Dashboard(data), h.logger)
}

// HandleSettingsPage обрабатывает GET /settings — форма профиля.
func (h *DashboardHandler) HandleSettingsPage(w http.ResponseWriter, r *http.Request) {
	profile := h.profileFromRequest(w, r)
	if profile == nil {
		return
	}
	data := pages.SettingsData{
		Viewer:  viewerFromRequest(r),
		Profile: profile,
		Saved:   r.URL.Query().Get("saved") == "1",
	}
	render(w, r, pages.Settings(data), h.logger)
}

// HandleSettingsSave обрабатывает POST /settings — сохранение профиля.
func (h *DashboardHandler) HandleSettingsSave(w http.ResponseWriter, r *http.Request) {
	profile := h.profileFromRequest(w, r)
	if profile == nil {
		return
	}

	profile.FirstName = r.FormValue("first_name")
	profile.LastName = r.FormValue("last_name")
	profile.AvatarURL = r.FormValue("avatar_url")

	if err := h.profileSvc.Update(r.Context(), profile); err != nil {
		if errors.Is(err, service.ErrValidation) {
			data := pages.SettingsData{
				Viewer:   viewerFromRequest(r),
				Profile:  profile,
				ErrorKey: "auth.error.validation",
			}
			render(w, r, pages.Settings(data), h.logger)
			return
		}
		h.logger.Error("Ошибка сохранения профиля",
			slog.String("user_id", profile.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}
