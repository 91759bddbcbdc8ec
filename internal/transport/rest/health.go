package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type healthReport struct {
	Status     string                     `json:"status"`
	CheckedAt  time.Time                  `json:"checked_at"`
	Components map[string]componentStatus `json:"components"`
}

// HealthHandler answers liveness and readiness probes. Checks are named
// functions so adding a component is one map entry.
type HealthHandler struct {
	checks map[string]func(ctx context.Context) error
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{
		checks: map[string]func(ctx context.Context) error{
			"postgres": db.PingContext,
		},
	}
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report := healthReport{
		Status:     "healthy",
		CheckedAt:  time.Now().UTC(),
		Components: make(map[string]componentStatus, len(h.checks)),
	}

	for name, check := range h.checks {
		start := time.Now()
		err := check(ctx)
		status := componentStatus{
			OK:         err == nil,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			status.Error = err.Error()
			report.Status = "unhealthy"
		}
		report.Components[name] = status
	}

	code := http.StatusOK
	if report.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report)
}
