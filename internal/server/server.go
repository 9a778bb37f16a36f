// Package server exposes the dashboard over a local HTTP API with
// WebSocket push.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"crypto_dash/internal/chart"
	"crypto_dash/internal/dashboard"
	"crypto_dash/internal/domain"
	"crypto_dash/internal/filter"
	"crypto_dash/internal/format"
	"crypto_dash/internal/infra"
	"crypto_dash/internal/service"
)

// Refresher triggers an on-demand market fetch
type Refresher interface {
	Refetch(ctx context.Context) error
}

// DetailLoader loads a single coin
type DetailLoader interface {
	Load(ctx context.Context, id string) service.DetailState
}

// Options wires the server's collaborators.
type Options struct {
	Dashboard   *dashboard.Dashboard
	Market      Refresher
	Details     DetailLoader
	Metrics     *infra.Metrics
	CORSOrigins []string
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	dash    *dashboard.Dashboard
	market  Refresher
	details DetailLoader
	metrics *infra.Metrics
	hub     *Hub
	origins []string
}

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// New creates a configured API server with all routes and middleware.
func New(opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = infra.GlobalMetrics
	}
	s := &Server{
		dash:    opts.Dashboard,
		market:  opts.Market,
		details: opts.Details,
		metrics: opts.Metrics,
		hub:     NewHub(opts.Metrics),
		origins: opts.CORSOrigins,
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// NotifyChange pushes the current view to WebSocket clients. It matches the
// market service's change callback.
func (s *Server) NotifyChange(domain.MarketState) {
	s.hub.Broadcast(Message{Type: "dashboard", Data: s.dash.View()})
}

// ListenAndServe runs the HTTP server and hub until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", slog.String("addr", addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.origins) > 0 {
		origins = s.origins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/coins", s.handleCoins)
		r.Get("/coins/{id}", s.handleCoinDetail)
		r.Get("/summary", s.handleSummary)

		r.Get("/filters", s.handleGetFilters)
		r.Patch("/filters", s.handlePatchFilters)

		r.Post("/refresh", s.handleRefresh)
		r.Get("/metrics", s.handleMetrics)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	v := s.dash.View()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":       "ok",
			"coins":        len(v.Coins),
			"last_updated": v.LastUpdated,
			"ws_clients":   s.hub.ClientCount(),
			"time":         time.Now().UTC(),
		},
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.dash.View()})
}

func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.dash.View().Filtered})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.dash.View().Summary})
}

func (s *Server) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.dash.Criteria()})
}

func (s *Server) handlePatchFilters(w http.ResponseWriter, r *http.Request) {
	var patch filter.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if patch.Bucket != nil {
		b, err := filter.ParseBucket(string(*patch.Bucket))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		patch.Bucket = &b
	}

	criteria := s.dash.UpdateFilters(patch)
	s.NotifyChange(domain.MarketState{})

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: criteria})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.market.Refetch(r.Context()); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrStopped) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.dash.View()})
}

// coinDetailResponse adds display fields to a loaded coin.
type coinDetailResponse struct {
	service.DetailState
	Description  string        `json:"description"`
	Homepage     string        `json:"homepage,omitempty"`
	PriceHistory []chart.Point `json:"price_history"`
	HistoryRange *chart.Range  `json:"history_range,omitempty"`
}

func (s *Server) handleCoinDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state := s.details.Load(r.Context(), id)
	if !state.Found() {
		writeError(w, http.StatusNotFound, state.Error)
		return
	}

	resp := coinDetailResponse{
		DetailState:  state,
		Description:  format.Description(state.Coin.Description.En, format.DefaultSentences),
		Homepage:     state.Coin.Homepage(),
		PriceHistory: chart.PriceHistory(state.History),
	}
	if rng, ok := chart.HistoryRange(resp.PriceHistory); ok {
		resp.HistoryRange = &rng
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.metrics.Snapshot()})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.serveWS(w, r, Message{Type: "dashboard", Data: s.dash.View()})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("HTTP request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write JSON response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
