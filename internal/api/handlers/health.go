package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"riffraff/internal/platform/database"
)

// QueueStatus reports the background queue backlog.
type QueueStatus interface {
	Len() int
}

type HealthHandler struct {
	db    *database.DB
	queue QueueStatus
}

func NewHealthHandler(db *database.DB, queue QueueStatus) *HealthHandler {
	return &HealthHandler{db: db, queue: queue}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
	} else {
		checks["database"] = "healthy"
	}

	if h.queue != nil {
		checks["tasks"] = "healthy"
	}

	status := "healthy"
	for _, check := range checks {
		if strings.HasPrefix(check, "unhealthy") {
			status = "degraded"
			break
		}
	}

	response := struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Dialect   string            `json:"dialect"`
		Queued    int               `json:"queued"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Dialect:   string(h.db.Dialect),
		Checks:    checks,
	}
	if h.queue != nil {
		response.Queued = h.queue.Len()
	}

	statusCode := http.StatusOK
	if status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
