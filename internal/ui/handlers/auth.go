// auth.go — обработчики входа, регистрации и восстановления пароля.
// Аутентификация выполняется внешним auth-сервисом (password grant);
// портал хранит токены в зашифрованной session cookie.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bigkaa/hackingtorch/portal-module/internal/authsvc"
	"github.com/bigkaa/hackingtorch/portal-module/internal/service"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/auth"
	uimiddleware "github.com/bigkaa/hackingtorch/portal-module/internal/ui/middleware"
	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/pages"
)

// AuthHandler — обработчики аутентификации портала.
type AuthHandler struct {
	authClient     *authsvc.Client
	profileSvc     *service.ProfileService
	catalogSvc     *service.CatalogService
	sessionManager *auth.SessionManager
	resolver       *auth.Resolver
	logger         *slog.Logger
}

// NewAuthHandler создаёт обработчики аутентификации.
func NewAuthHandler(
	authClient *authsvc.Client,
	profileSvc *service.ProfileService,
	catalogSvc *service.CatalogService,
	sessionManager *auth.SessionManager,
	resolver *auth.Resolver,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authClient:     authClient,
		profileSvc:     profileSvc,
		catalogSvc:     catalogSvc,
		sessionManager: sessionManager,
		resolver:       resolver,
		logger:         logger.With(slog.String("component", "ui.auth")),
	}
}

// HandleLoginPage обрабатывает GET /auth/login — форма входа.
// Параметр redirectTo сохраняется в hidden-поле формы.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := pages.LoginData{
		RedirectTo: safeRedirectPath(r.URL.Query().Get("redirectTo"), ""),
	}
	render(w, r, pages.Login(data), h.logger)
}

// HandleLogin обрабатывает POST /auth/login — вход по email и паролю.
// При успехе устанавливает session cookie и перенаправляет на
// redirectTo (только локальный путь) либо на /dashboard.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := r.FormValue("email")
	password := r.FormValue("password")
	redirectTo := safeRedirectPath(r.FormValue("redirectTo"), "/dashboard")

	if email == "" || password == "" {
		h.renderLoginError(w, r, email, r.FormValue("redirectTo"), "auth.error.validation")
		return
	}

	tokens, err := h.authClient.SignIn(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			h.renderLoginError(w, r, email, r.FormValue("redirectTo"), "auth.error.invalid_credentials")
		default:
			h.logger.Error("Auth-сервис недоступен при входе", slog.String("error", err.Error()))
			h.renderLoginError(w, r, email, r.FormValue("redirectTo"), "auth.error.unavailable")
		}
		return
	}

	session, err := h.buildSession(ctx, tokens)
	if err != nil {
		h.logger.Error("Ошибка создания сессии", slog.String("error", err.Error()))
		h.renderLoginError(w, r, email, r.FormValue("redirectTo"), "auth.error.unavailable")
		return
	}

	if err := h.sessionManager.SetSessionCookie(w, session); err != nil {
		h.logger.Error("Ошибка установки session cookie", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Пользователь вошёл",
		slog.String("user_id", session.Subject),
		slog.String("email", session.Email),
	)
	http.Redirect(w, r, redirectTo, http.StatusFound)
}

// renderLoginError повторно показывает форму входа с сообщением об ошибке.
func (h *AuthHandler) renderLoginError(w http.ResponseWriter, r *http.Request, email, redirectTo, errorKey string) {
	data := pages.LoginData{
		RedirectTo: safeRedirectPath(redirectTo, ""),
		Email:      email,
		ErrorKey:   errorKey,
	}
	render(w, r, pages.Login(data), h.logger)
}

// buildSession формирует SessionData из ответа auth-сервиса.
// Identity извлекается из подписанного access token; роль в сессии —
// кэш, авторитетный источник остаётся в profiles.
func (h *AuthHandler) buildSession(ctx context.Context, tokens *authsvc.TokenResponse) (*auth.SessionData, error) {
	session := &auth.SessionData{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second).Unix(),
	}

	identity := h.resolver.Resolve(ctx, session)
	if identity == nil {
		return nil, errors.New("access token не прошёл валидацию")
	}
	session.Subject = identity.Subject
	session.Email = identity.Email
	session.Role = identity.Role

	// Роль из профиля точнее claim'а в токене
	if role, err := h.profileSvc.UserRole(ctx, identity.Subject); err == nil {
		session.Role = role
	}
	return session, nil
}

// HandleRegisterPage обрабатывает GET /auth/register — форма регистрации.
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	data := pages.RegisterData{
		RegistrationOpen: h.catalogSvc.Settings(r.Context()).RegistrationOpen,
	}
	render(w, r, pages.Register(data), h.logger)
}

// HandleRegister обрабатывает POST /auth/register — регистрация нового
// пользователя: аккаунт в auth-сервисе + профиль в profiles.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.catalogSvc.Settings(ctx).RegistrationOpen {
		render(w, r, pages.Register(pages.RegisterData{RegistrationOpen: false}), h.logger)
		return
	}

	firstName := r.FormValue("first_name")
	lastName := r.FormValue("last_name")
	email := r.FormValue("email")
	password := r.FormValue("password")

	if firstName == "" || email == "" || len(password) < 8 {
		h.renderRegisterError(w, r, firstName, lastName, email, "auth.error.validation")
		return
	}

	tokens, err := h.authClient.SignUp(ctx, email, password, map[string]any{
		"user_type":  "participant",
		"first_name": firstName,
		"last_name":  lastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailTaken):
			h.renderRegisterError(w, r, firstName, lastName, email, "auth.error.email_taken")
		default:
			h.logger.Error("Auth-сервис недоступен при регистрации", slog.String("error", err.Error()))
			h.renderRegisterError(w, r, firstName, lastName, email, "auth.error.unavailable")
		}
		return
	}

	session, err := h.buildSession(ctx, tokens)
	if err != nil {
		h.logger.Error("Ошибка создания сессии после регистрации", slog.String("error", err.Error()))
		h.renderRegisterError(w, r, firstName, lastName, email, "auth.error.unavailable")
		return
	}

	// Профиль в локальном хранилище. Повторная попытка (refresh формы)
	// упирается в конфликт — это не ошибка регистрации.
	if _, err := h.profileSvc.Register(ctx, session.Subject, firstName, lastName, email); err != nil &&
		!errors.Is(err, service.ErrConflict) {
		h.logger.Error("Ошибка создания профиля",
			slog.String("user_id", session.Subject),
			slog.String("error", err.Error()),
		)
	}

	if err := h.sessionManager.SetSessionCookie(w, session); err != nil {
		h.logger.Error("Ошибка установки session cookie", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Пользователь зарегистрирован", slog.String("user_id", session.Subject))
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// renderRegisterError повторно показывает форму регистрации с ошибкой.
func (h *AuthHandler) renderRegisterError(w http.ResponseWriter, r *http.Request, firstName, lastName, email, errorKey string) {
	data := pages.RegisterData{
		FirstName:        firstName,
		LastName:         lastName,
		Email:            email,
		ErrorKey:         errorKey,
		RegistrationOpen: true,
	}
	render(w, r, pages.Register(data), h.logger)
}

// HandleResetPage обрабатывает GET /auth/reset-password — форма восстановления.
func (h *AuthHandler) HandleResetPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, pages.ResetPassword(pages.ResetPasswordData{}), h.logger)
}

// HandleReset обрабатывает POST /auth/reset-password.
// Ответ одинаков для зарегистрированных и незарегистрированных email.
func (h *AuthHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	if email == "" {
		render(w, r, pages.ResetPassword(pages.ResetPasswordData{ErrorKey: "auth.error.validation"}), h.logger)
		return
	}

	if err := h.authClient.Recover(r.Context(), email); err != nil {
		// Недоступность auth-сервиса не раскрываем деталями
		h.logger.Error("Ошибка запроса восстановления пароля", slog.String("error", err.Error()))
	}
	render(w, r, pages.ResetPassword(pages.ResetPasswordData{Sent: true}), h.logger)
}

// HandleLogout обрабатывает POST /auth/logout — выход из портала.
// Сессия отзывается в auth-сервисе и cookie очищается в любом случае.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if session := uimiddleware.SessionFromContext(r.Context()); session != nil {
		if err := h.authClient.SignOut(r.Context(), session.AccessToken); err != nil {
			h.logger.Warn("Ошибка отзыва сессии в auth-сервисе", slog.String("error", err.Error()))
		}
		h.logger.Info("Пользователь вышел", slog.String("user_id", session.Subject))
	}
	h.sessionManager.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
