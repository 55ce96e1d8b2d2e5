// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/quickdraw/internal/domain/types"
)

// Dependencies required by HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the app service.
type Dependencies interface {
	// Submit runs the full gateway flow for one score submission.
	Submit(ctx context.Context, sub types.Submission) types.Outcome

	// TopN exposes leaderboard reads.
	TopN(ctx context.Context, channelID string, n int) ([]types.Entry, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	submitHandler  *SubmitHandler
	boardHandler   *BoardHandler
	healthHandler  *HealthHandler
	metricsHandler *MetricsHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := serverConfig{
		defaultLimit: 20,
		maxLimit:     100,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Server{
		submitHandler:  NewSubmitHandler(deps),
		boardHandler:   NewBoardHandler(deps, cfg.defaultLimit, cfg.maxLimit),
		healthHandler:  NewHealthHandler(),
		metricsHandler: NewMetricsHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", WithRequestMetrics(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.metricsHandler.HandleMetrics)
	mux.HandleFunc("/submit", WithRequestMetrics(s.submitHandler.HandleSubmit, "submit"))
	mux.HandleFunc("/board", WithRequestMetrics(s.boardHandler.HandleGetBoard, "board"))
}

type serverConfig struct {
	defaultLimit int
	maxLimit     int
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

// WithDefaultLimit sets the board size used when no limit is supplied.
func WithDefaultLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.defaultLimit = n
		}
	}
}

// WithMaxLimit caps GET /board?limit.
func WithMaxLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxLimit = n
		}
	}
}

type statusResponse struct {
	Status string `json:"status"`
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
