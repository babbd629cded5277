// client.go — HTTP-клиент к auth-сервису (GoTrue-совместимый API).
// Операции: SignUp, SignIn (password grant), Refresh, SignOut,
// Recover, GetUser.
package authsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Ошибки клиента auth-сервиса.
var (
	// ErrInvalidCredentials — неверный email или пароль.
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	// ErrEmailTaken — email уже зарегистрирован.
	ErrEmailTaken = errors.New("email уже зарегистрирован")
	// ErrUnauthorized — токен недействителен или отозван.
	ErrUnauthorized = errors.New("токен недействителен")
)

// Client — HTTP-клиент к auth-сервису.
type Client struct {
	baseURL string // Базовый URL API аутентификации (без trailing slash)
	apiKey  string // Публичный API-ключ сервиса

	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент к auth-сервису.
// baseURL — корень auth API (например, https://auth.hackingtorch.io/auth/v1).
// apiKey — публичный ключ, передаётся в заголовке apikey каждого запроса.
func New(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "authsvc_client")),
	}
}

// --- HTTP helpers ---

// do выполняет запрос к auth-сервису. bearer — access token пользователя
// (пустая строка — запрос без пользовательской авторизации).
func (c *Client) do(ctx context.Context, method, path, bearer string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("сериализация тела запроса: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

// decodeResponse декодирует JSON ответ в target, преобразуя
// известные коды ошибок auth-сервиса в sentinel-ошибки.
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return asAPIError(resp)
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("декодирование ответа auth-сервиса: %w", err)
		}
	}

	return nil
}

// asAPIError разбирает тело ошибки auth-сервиса.
func asAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil {
		switch ae.ErrorCode {
		case "invalid_credentials":
			return ErrInvalidCredentials
		case "user_already_exists", "email_exists":
			return ErrEmailTaken
		}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}

	return fmt.Errorf("auth-сервис вернул статус %d: %s", resp.StatusCode, string(body))
}

// --- Операции ---

// SignUp регистрирует нового пользователя.
// metadata сохраняется в user_metadata (имя, фамилия, роль по умолчанию).
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*TokenResponse, error) {
	req := signUpRequest{Email: email, Password: password, Data: metadata}

	resp, err := c.do(ctx, http.MethodPost, "/signup", "", req)
	if err != nil {
		return nil, fmt.Errorf("запрос регистрации: %w", err)
	}

	var token TokenResponse
	if err := decodeResponse(resp, &token); err != nil {
		return nil, fmt.Errorf("SignUp: %w", err)
	}

	return &token, nil
}

// SignIn аутентифицирует пользователя по email и паролю (password grant).
func (c *Client) SignIn(ctx context.Context, email, password string) (*TokenResponse, error) {
	req := passwordGrantRequest{Email: email, Password: password}

	resp, err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", req)
	if err != nil {
		return nil, fmt.Errorf("запрос аутентификации: %w", err)
	}

	var token TokenResponse
	if err := decodeResponse(resp, &token); err != nil {
		return nil, fmt.Errorf("SignIn: %w", err)
	}

	c.logger.Debug("Пользователь аутентифицирован", slog.String("email", email))
	return &token, nil
}

// Refresh обменивает refresh token на новую пару токенов.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	req := refreshGrantRequest{RefreshToken: refreshToken}

	resp, err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", req)
	if err != nil {
		return nil, fmt.Errorf("запрос обновления токена: %w", err)
	}

	var token TokenResponse
	if err := decodeResponse(resp, &token); err != nil {
		return nil, fmt.Errorf("Refresh: %w", err)
	}

	return &token, nil
}

// SignOut отзывает refresh token пользователя на стороне auth-сервиса.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, http.MethodPost, "/logout", accessToken, nil)
	if err != nil {
		return fmt.Errorf("запрос выхода: %w", err)
	}
	defer resp.Body.Close()

	// 204 — успех; 401 — токен уже недействителен, выход считаем успешным
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusUnauthorized {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SignOut: auth-сервис вернул статус %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Recover инициирует восстановление пароля (письмо со ссылкой).
// Auth-сервис отвечает одинаково для существующих и несуществующих
// email, чтобы не раскрывать базу адресов.
func (c *Client) Recover(ctx context.Context, email string) error {
	resp, err := c.do(ctx, http.MethodPost, "/recover", "", recoverRequest{Email: email})
	if err != nil {
		return fmt.Errorf("запрос восстановления пароля: %w", err)
	}

	if err := decodeResponse(resp, nil); err != nil {
		return fmt.Errorf("Recover: %w", err)
	}
	return nil
}

// GetUser возвращает пользователя по его access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/user", accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("запрос пользователя: %w", err)
	}

	var user User
	if err := decodeResponse(resp, &user); err != nil {
		return nil, fmt.Errorf("GetUser: %w", err)
	}

	return &user, nil
}

// --- Readiness checker ---

// CheckReady проверяет доступность auth-сервиса через health endpoint.
// Реализует handlers.ReadinessChecker.
func (c *Client) CheckReady() (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := c.do(ctx, http.MethodGet, "/health", "", nil)
	if err != nil {
		return "fail", fmt.Sprintf("auth-сервис недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "degraded", fmt.Sprintf("auth-сервис вернул статус %d", resp.StatusCode)
	}
	return "ok", "auth-сервис доступен"
}
