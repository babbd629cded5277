package auth

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestSessionRoundTrip проверяет, что сессия переживает шифрование
// без потерь при любом варианте ключа.
func TestSessionRoundTrip(t *testing.T) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		t.Fatal(err)
	}

	keys := []struct {
		name string
		key  string
	}{
		{"автогенерация", ""},
		{"произвольная строка", "my-secret-key-for-testing"},
		{"base64 32 байта", base64.StdEncoding.EncodeToString(raw)},
	}

	original := &SessionData{
		AccessToken:  "test-access-token-12345",
		RefreshToken: "test-refresh-token-67890",
		ExpiresAt:    time.Now().Add(5 * time.Minute).Unix(),
		Subject:      "4f5c1c0e-1111-2222-3333-444455556666",
		Email:        "maria@example.com",
		Role:         "participant",
	}

	for _, tt := range keys {
		t.Run(tt.name, func(t *testing.T) {
			sm, err := NewSessionManager(tt.key, false)
			if err != nil {
				t.Fatalf("NewSessionManager: %v", err)
			}

			encrypted, err := sm.Encrypt(original)
			if err != nil {
				t.Fatalf("Ошибка шифрования: %v", err)
			}
			if encrypted == "" {
				t.Fatal("Зашифрованная строка пустая")
			}

			got, err := sm.Decrypt(encrypted)
			if err != nil {
				t.Fatalf("Ошибка дешифрования: %v", err)
			}
			if *got != *original {
				t.Errorf("Сессия после round-trip изменилась: %+v != %+v", got, original)
			}
		})
	}
}

// TestSessionDecryptRejectsTampering проверяет, что чужой ключ
// и повреждённый шифротекст отвергаются.
func TestSessionDecryptRejectsTampering(t *testing.T) {
	sm1, _ := NewSessionManager("key-one", false)
	sm2, _ := NewSessionManager("key-two", false)

	encrypted, err := sm1.Encrypt(&SessionData{AccessToken: "secret"})
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	if _, err := sm2.Decrypt(encrypted); err == nil {
		t.Error("Ожидалась ошибка при дешифровании чужим ключом")
	}

	tampered := encrypted[:len(encrypted)-4] + "AAAA"
	if _, err := sm1.Decrypt(tampered); err == nil {
		t.Error("Ожидалась ошибка для повреждённого шифротекста")
	}

	if _, err := sm1.Decrypt("AAAA"); err == nil {
		t.Error("Ожидалась ошибка для обрезанных данных")
	}
}

// TestSessionIsExpired проверяет буферную зону перед истечением.
func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresIn time.Duration
		want      bool
	}{
		{"истёк минуту назад", -time.Minute, true},
		{"истекает через минуту", time.Minute, false},
		{"в буферной зоне (20с)", 20 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &SessionData{ExpiresAt: time.Now().Add(tt.expiresIn).Unix()}
			if got := s.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, хотели %v", got, tt.want)
			}
		})
	}
}

// TestSessionCookieSetAndGet проверяет цикл cookie: установка в ответ,
// чтение из запроса, атрибуты безопасности.
func TestSessionCookieSetAndGet(t *testing.T) {
	sm, _ := NewSessionManager("test-key", false)

	data := &SessionData{
		AccessToken: "access-123",
		Subject:     "user-1",
		Role:        "participant",
		ExpiresAt:   time.Now().Add(5 * time.Minute).Unix(),
	}

	w := httptest.NewRecorder()
	if err := sm.SetSessionCookie(w, data); err != nil {
		t.Fatalf("Ошибка установки cookie: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Cookie не установлен")
	}
	cookie := cookies[0]

	if cookie.Name != SessionCookieName {
		t.Errorf("Имя cookie = %q, хотели %q", cookie.Name, SessionCookieName)
	}
	if cookie.Path != "/" {
		t.Errorf("Path = %q, хотели /", cookie.Path)
	}
	if !cookie.HttpOnly {
		t.Error("Cookie должен быть HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("Cookie должен быть SameSite=Lax")
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)

	got, err := sm.GetSessionFromRequest(req)
	if err != nil {
		t.Fatalf("Ошибка чтения сессии из cookie: %v", err)
	}
	if got == nil || *got != *data {
		t.Errorf("Сессия из cookie = %+v, хотели %+v", got, data)
	}
}

// TestSessionCookieMissing: запрос без cookie — (nil, nil), не ошибка.
func TestSessionCookieMissing(t *testing.T) {
	sm, _ := NewSessionManager("test-key", false)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	data, err := sm.GetSessionFromRequest(req)
	if err != nil {
		t.Fatalf("Ожидалось nil error, получено: %v", err)
	}
	if data != nil {
		t.Error("Ожидалось nil data при отсутствии cookie")
	}
}

// TestClearSessionCookie проверяет cookie очистки.
func TestClearSessionCookie(t *testing.T) {
	sm, _ := NewSessionManager("test-key", false)

	w := httptest.NewRecorder()
	sm.ClearSessionCookie(w)

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Cookie очистки не установлен")
	}
	if c := cookies[0]; c.MaxAge != -1 || c.Value != "" {
		t.Errorf("Cookie очистки: MaxAge=%d Value=%q, хотели -1 и пусто", c.MaxAge, c.Value)
	}
}
