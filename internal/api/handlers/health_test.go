// health_test.go — тесты служебных endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// stubChecker — фиксированный результат проверки готовности.
type stubChecker struct {
	status  string
	message string
}

func (s stubChecker) CheckReady() (string, string) {
	return s.status, s.message
}

func readyResponse(t *testing.T, h *HealthHandler) (int, healthResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	h.HealthReady(rec, req)

	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Декодирование ответа, ошибка: %v", err)
	}
	return rec.Code, resp
}

func TestHealthReadyAllOK(t *testing.T) {
	h := NewHealthHandler(
		stubChecker{status: "ok"},
		stubChecker{status: "ok"},
		stubChecker{status: "ok"},
	)

	code, resp := readyResponse(t, h)
	if code != http.StatusOK {
		t.Errorf("Код ответа: %d, ожидался %d", code, http.StatusOK)
	}
	if resp.Status != "ok" {
		t.Errorf("Статус: %q, ожидался ok", resp.Status)
	}
	for _, name := range []string{"postgresql", "auth_jwks", "auth_api"} {
		if _, found := resp.Checks[name]; !found {
			t.Errorf("В ответе нет проверки %q", name)
		}
	}
}

func TestHealthReadyAuthAPIFail(t *testing.T) {
	// Недоступный REST API auth-сервиса должен проваливать readiness
	// даже при живых PostgreSQL и JWKS.
	h := NewHealthHandler(
		stubChecker{status: "ok"},
		stubChecker{status: "ok"},
		stubChecker{status: "fail", message: "connection refused"},
	)

	code, resp := readyResponse(t, h)
	if code != http.StatusServiceUnavailable {
		t.Errorf("Код ответа: %d, ожидался %d", code, http.StatusServiceUnavailable)
	}
	if resp.Status != "fail" {
		t.Errorf("Статус: %q, ожидался fail", resp.Status)
	}
	if resp.Checks["auth_api"].Message != "connection refused" {
		t.Errorf("Сообщение auth_api: %q", resp.Checks["auth_api"].Message)
	}
}

func TestHealthReadyDegraded(t *testing.T) {
	// degraded — худший из статусов, но трафик не снимается.
	h := NewHealthHandler(
		stubChecker{status: "ok"},
		stubChecker{status: "degraded", message: "медленный ответ"},
		stubChecker{status: "ok"},
	)

	code, resp := readyResponse(t, h)
	if code != http.StatusOK {
		t.Errorf("Код ответа: %d, ожидался %d", code, http.StatusOK)
	}
	if resp.Status != "degraded" {
		t.Errorf("Статус: %q, ожидался degraded", resp.Status)
	}
}

func TestHealthReadyNilChecker(t *testing.T) {
	h := NewHealthHandler(stubChecker{status: "ok"}, nil, stubChecker{status: "ok"})

	code, resp := readyResponse(t, h)
	if code != http.StatusServiceUnavailable {
		t.Errorf("Код ответа: %d, ожидался %d", code, http.StatusServiceUnavailable)
	}
	if resp.Checks["auth_jwks"].Status != "fail" {
		t.Errorf("Статус auth_jwks: %q, ожидался fail", resp.Checks["auth_jwks"].Status)
	}
}

func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil)
	rec := httptest.NewRecorder()
	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Код ответа: %d, ожидался %d", rec.Code, http.StatusOK)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Декодирование ответа, ошибка: %v", err)
	}
	if resp.Status != "ok" || resp.Service != serviceName {
		t.Errorf("Ответ liveness: %+v", resp)
	}
}
