// health.go — служебные endpoints портала.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (PostgreSQL + auth-сервис)
// /metrics — Prometheus метрики
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/hackingtorch/portal-module/internal/config"
)

const serviceName = "portal-module"

// ReadinessChecker — проверка готовности одной зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady() (status string, message string)
}

// statusRank упорядочивает статусы по серьёзности для свёртки
// нескольких проверок в итоговый статус.
var statusRank = map[string]int{"ok": 0, "degraded": 1, "fail": 2}

// HealthHandler отвечает на health и metrics запросы.
type HealthHandler struct {
	pgChecker      ReadinessChecker
	jwksChecker    ReadinessChecker
	authAPIChecker ReadinessChecker
	promHandler    http.Handler
}

// NewHealthHandler создаёт обработчик служебных endpoints.
// Auth-сервис проверяется двумя путями: JWKS endpoint (нужен для
// проверки токенов) и REST API (нужен для входа и регистрации).
// nil-checker в readiness читается как "fail".
func NewHealthHandler(pgChecker, jwksChecker, authAPIChecker ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		pgChecker:      pgChecker,
		jwksChecker:    jwksChecker,
		authAPIChecker: authAPIChecker,
		promHandler:    promhttp.Handler(),
	}
}

// checkResult — результат проверки одной зависимости.
type checkResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthResponse — тело ответа обоих health endpoints;
// Checks заполняется только для readiness.
type healthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Service   string                 `json:"service"`
	Checks    map[string]checkResult `json:"checks,omitempty"`
}

func newHealthResponse(status string) healthResponse {
	return healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// HealthLive — liveness probe: процесс отвечает, значит жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newHealthResponse("ok"))
}

// HealthReady — readiness probe: опрашивает PostgreSQL и auth-сервис.
// Итоговый статус — худший из статусов зависимостей; fail отдаётся
// как 503, чтобы балансировщик снял трафик.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]checkResult{
		"postgresql": runCheck(h.pgChecker),
		"auth_jwks":  runCheck(h.jwksChecker),
		"auth_api":   runCheck(h.authAPIChecker),
	}

	worst := "ok"
	for _, c := range checks {
		if statusRank[c.Status] > statusRank[worst] {
			worst = c.Status
		}
	}

	resp := newHealthResponse(worst)
	resp.Checks = checks

	code := http.StatusOK
	if worst == "fail" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func runCheck(c ReadinessChecker) checkResult {
	if c == nil {
		return checkResult{Status: "fail", Message: "не инициализирован"}
	}
	status, msg := c.CheckReady()
	return checkResult{Status: status, Message: msg}
}

// GetMetrics отдаёт Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}
