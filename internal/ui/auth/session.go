// Пакет auth — сессии пользователей портала и проверка токенов.
// Сессия — это пара токенов auth-сервиса, зашифрованная AES-256-GCM
// и живущая в cookie браузера; на сервере состояние не хранится.
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SessionCookieName — имя cookie с зашифрованной сессией.
const SessionCookieName = "ht_session"

// SessionCookieMaxAge — срок жизни cookie, согласован со сроком
// refresh token'а auth-сервиса (7 суток).
const SessionCookieMaxAge = 7 * 24 * 60 * 60

// expirySkew — запас до истечения access token'а, при котором
// сессия уже считается просроченной и уходит на refresh.
const expirySkew = 30 * time.Second

// SessionData — содержимое зашифрованного session cookie.
type SessionData struct {
	// AccessToken — JWT access token от auth-сервиса.
	AccessToken string `json:"access_token"`
	// RefreshToken — refresh token для обновления access token.
	RefreshToken string `json:"refresh_token"`
	// ExpiresAt — истечение access token (Unix timestamp).
	ExpiresAt int64 `json:"expires_at"`
	// Subject — идентификатор пользователя (sub из JWT).
	Subject string `json:"subject"`
	// Email — email пользователя из JWT.
	Email string `json:"email"`
	// Role — роль на момент входа (participant, organizer, admin).
	// Кэш: авторитетный источник — колонка user_type в profiles.
	Role string `json:"role"`
}

// IsExpired сообщает, пора ли обновлять access token.
func (s *SessionData) IsExpired() bool {
	return time.Now().Add(expirySkew).Unix() >= s.ExpiresAt
}

// SessionManager шифрует и дешифрует SessionData в HTTP cookie.
type SessionManager struct {
	gcm    cipher.AEAD
	secure bool
}

// NewSessionManager создаёт менеджер сессий.
// secure управляет Secure-флагом cookie (true при HTTPS снаружи).
func NewSessionManager(key string, secure bool) (*SessionManager, error) {
	keyBytes, err := deriveKey(key)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("GCM: %w", err)
	}

	return &SessionManager{gcm: gcm, secure: secure}, nil
}

// deriveKey превращает конфигурационный секрет в 32-байтовый ключ AES-256.
// Принимает base64 ровно 32 байт; любую другую строку хеширует SHA-256,
// чтобы секрет можно было задавать произвольной строкой. Пустой секрет
// означает случайный ключ — сессии не переживут рестарт.
func deriveKey(secret string) ([]byte, error) {
	if secret == "" {
		k := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, k); err != nil {
			return nil, fmt.Errorf("генерация ключа сессии: %w", err)
		}
		return k, nil
	}

	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) == 32 {
		return decoded, nil
	}

	h := sha256.Sum256([]byte(secret))
	return h[:], nil
}

// Encrypt сериализует и шифрует сессию; nonce уникален на каждый
// вызов и хранится префиксом шифротекста.
func (sm *SessionManager) Encrypt(data *SessionData) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("сериализация сессии: %w", err)
	}

	nonce := make([]byte, sm.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("генерация nonce: %w", err)
	}

	sealed := sm.gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt восстанавливает SessionData из значения cookie.
// Любое повреждение (обрезка, подмена, чужой ключ) — ошибка.
func (sm *SessionManager) Decrypt(encrypted string) (*SessionData, error) {
	raw, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("декодирование base64: %w", err)
	}

	ns := sm.gcm.NonceSize()
	if len(raw) < ns {
		return nil, errors.New("зашифрованные данные слишком короткие")
	}

	plaintext, err := sm.gcm.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("дешифрование сессии: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("десериализация сессии: %w", err)
	}
	return &data, nil
}

// sessionCookie строит cookie сессии. Path "/" — сессия нужна
// на всех страницах портала, не только в админке.
func (sm *SessionManager) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSessionCookie шифрует сессию и ставит cookie в ответ.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, data *SessionData) error {
	encrypted, err := sm.Encrypt(data)
	if err != nil {
		return err
	}
	http.SetCookie(w, sm.sessionCookie(encrypted, SessionCookieMaxAge))
	return nil
}

// GetSessionFromRequest дешифрует сессию из cookie запроса.
// Отсутствие cookie — не ошибка: (nil, nil).
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) (*SessionData, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sm.Decrypt(cookie.Value)
}

// ClearSessionCookie удаляет cookie сессии (logout).
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, sm.sessionCookie("", -1))
}
