package authsvc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupMockAuth создаёт mock HTTP-сервер auth-сервиса.
func setupMockAuth(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(server.URL, "test-api-key", server.Client(), testLogger())
}

// TestClient_SignIn проверяет password grant и заголовок apikey.
func TestClient_SignIn(t *testing.T) {
	client := setupMockAuth(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			t.Errorf("путь = %q, хотели /token", r.URL.Path)
		}
		if r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("grant_type = %q, хотели password", r.URL.Query().Get("grant_type"))
		}
		if r.Header.Get("apikey") != "test-api-key" {
			t.Errorf("заголовок apikey = %q, хотели test-api-key", r.Header.Get("apikey"))
		}

		var req passwordGrantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("декодирование запроса: %v", err)
		}
		if req.Email != "maria@example.com" {
			t.Errorf("email = %q, хотели maria@example.com", req.Email)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  "access-123",
			TokenType:    "bearer",
			ExpiresIn:    3600,
			RefreshToken: "refresh-123",
			User:         &User{ID: "user-1", Email: "maria@example.com"},
		})
	})

	token, err := client.SignIn(context.Background(), "maria@example.com", "secret")
	if err != nil {
		t.Fatalf("SignIn() ошибка: %v", err)
	}
	if token.AccessToken != "access-123" {
		t.Errorf("AccessToken = %q, хотели access-123", token.AccessToken)
	}
	if token.RefreshToken != "refresh-123" {
		t.Errorf("RefreshToken = %q, хотели refresh-123", token.RefreshToken)
	}
	if token.User == nil || token.User.ID != "user-1" {
		t.Errorf("User = %+v, хотели ID=user-1", token.User)
	}
}

// TestClient_SignInInvalidCredentials проверяет sentinel-ошибку
// при неверном пароле.
func TestClient_SignInInvalidCredentials(t *testing.T) {
	client := setupMockAuth(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(apiError{
			Code: 400, ErrorCode: "invalid_credentials",
			Message: "Invalid login credentials",
		})
	})

	_, err := client.SignIn(context.Background(), "maria@example.com", "wrong")
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("ожидали ErrInvalidCredentials, получили: %v", err)
	}
}

// TestClient_SignUpEmailTaken проверяет sentinel-ошибку
// при уже занятом email.
func TestClient_SignUpEmailTaken(t *testing.T) {
	client := setupMockAuth(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(apiError{
			Code: 422, ErrorCode: "user_already_exists",
			Message: "User already registered",
		})
	})

	_, err := client.SignUp(context.Background(), "taken@example.com", "secret", nil)
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("ожидали ErrEmailTaken, получили: %v", err)
	}
}

// TestClient_Refresh проверяет refresh grant.
func TestClient_Refresh(t *testing.T) {
	client := setupMockAuth(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "refresh_token" {
			t.Errorf("grant_type = %q, хотели refresh_token", r.URL.Query().Get("grant_type"))
		}

		var req refreshGrantRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != "old-refresh" {
			t.Errorf("refresh_token = %q, хотели old-refresh", req.RefreshToken)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    3600,
		})
	})

	token, err := client.Refresh(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("Refresh() ошибка: %v", err)
	}
	if token.AccessToken != "new-access" || token.RefreshToken != "new-refresh" {
		t.Errorf("токены = %q/%q, хотели new-access/new-refresh",
			token.AccessToken, token.RefreshToken)
	}
}

// TestClient_SignOut проверяет выход: 204 и 401 считаются успехом.
func TestClient_SignOut(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusUnauthorized} {
		client := setupMockAuth(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer access-123" {
				t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
			}
			w.WriteHeader(status)
		})

		if err := client.SignOut(context.Background(), "access-123"); err != nil {
			t.Errorf("SignOut() при статусе %d: ошибка %v", status, err)
		}
	}
}

// TestClient_GetUser проверяет получение пользователя по токену.
func TestClient_GetUser(t *testing.T) {
	client := setupMockAuth(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("путь = %q, хотели /user", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(User{
			ID:    "user-1",
			Email: "maria@example.com",
			UserMetadata: map[string]any{
				"first_name": "Maria",
				"user_type":  "participant",
			},
		})
	})

	user, err := client.GetUser(context.Background(), "access-123")
	if err != nil {
		t.Fatalf("GetUser() ошибка: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("ID = %q, хотели user-1", user.ID)
	}
	if user.UserMetadata["user_type"] != "participant" {
		t.Errorf("user_type = %v, хотели participant", user.UserMetadata["user_type"])
	}
}

// TestClient_GetUserUnauthorized проверяет fail closed
// при недействительном токене.
func TestClient_GetUserUnauthorized(t *testing.T) {
	client := setupMockAuth(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetUser(context.Background(), "expired")
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("ожидали ErrUnauthorized, получили: %v", err)
	}
}
