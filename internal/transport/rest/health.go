package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/heartmarshall/ideaflow-backend/internal/service/enrichment"
)

const healthCheckTimeout = 3 * time.Second

type dbPinger interface {
	Ping(ctx context.Context) error
}

type workerStatus interface {
	Status() enrichment.Status
}

// HealthHandler serves the probe endpoints.
type HealthHandler struct {
	db      dbPinger
	worker  workerStatus
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db dbPinger, worker workerStatus, version string) *HealthHandler {
	return &HealthHandler{db: db, worker: worker, version: version}
}

// HealthResponse is the JSON body of /live, /ready and /health.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of one component.
type CompStatus struct {
	Status         string `json:"status"`
	Latency        string `json:"latency,omitempty"`
	QueueLength    *int   `json:"queueLength,omitempty"`
	RetryScheduled *int   `json:"retryScheduled,omitempty"`
}

// Live always answers 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready answers 200 when the database is reachable, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "down", Timestamp: time.Now()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Health reports database latency and the enrichment worker state.
// A stopped worker or an unreachable database makes the answer 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	components := make(map[string]CompStatus, 2)
	overall := "ok"

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		components["database"] = CompStatus{Status: "down"}
		overall = "down"
	} else {
		components["database"] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
	}

	st := h.worker.Status()
	worker := CompStatus{
		Status:         "ok",
		QueueLength:    &st.QueueLength,
		RetryScheduled: &st.RetryScheduled,
	}
	if !st.Running {
		worker.Status = "down"
		overall = "down"
	}
	components["enrichment"] = worker

	code := http.StatusOK
	if overall != "ok" {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
