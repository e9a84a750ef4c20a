// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/podium/internal/domain/features"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/podium"
)

// maxBodyBytes bounds uploaded tables.
const maxBodyBytes = 32 << 20

// FeatureRunner computes feature rows for a raw results table.
type FeatureRunner interface {
	Features(ctx context.Context, rows []model.Result, raw features.RawDurations) ([]model.FeatureRecord, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	featuresHandler *FeaturesHandler
	selectHandler   *SelectHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(runner FeatureRunner, statsProvider StatsProvider, policy podium.Policy) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		featuresHandler: NewFeaturesHandler(runner),
		selectHandler:   NewSelectHandler(policy),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/features", MetricsMiddleware(s.featuresHandler.HandleFeatures, "features"))
	mux.HandleFunc("/select", MetricsMiddleware(s.selectHandler.HandleSelect, "select"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
