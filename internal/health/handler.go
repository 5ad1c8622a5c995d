package health

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Proton-105/citrine-bot/internal/middleware"
	"github.com/Proton-105/citrine-bot/pkg/logger"
)

// NewHandler serves /livez, /healthz and /metrics.
func NewHandler(checker *Checker, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(statusOK))
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		report := checker.Check(r.Context())

		status := http.StatusOK
		if !report.Healthy {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(report); err != nil {
			logger.FromContext(r.Context(), log).Error("failed to encode health report", slog.Any("error", err))
		}
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return logger.Middleware(middleware.Logging(log)(mux))
}
