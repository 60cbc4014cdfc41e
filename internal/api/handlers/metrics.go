package handlers

import (
	"net/http"

	"riffraff/internal/platform/database"
	"riffraff/internal/platform/metrics"
)

type MetricsHandler struct {
	db       *database.DB
	exporter http.Handler
}

func NewMetricsHandler(db *database.DB) *MetricsHandler {
	return &MetricsHandler{db: db, exporter: metrics.Handler()}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	metrics.RecordDBStats(h.db.DB)
	h.exporter.ServeHTTP(w, r)
}
