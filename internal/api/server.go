package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/weiihann/ecoquest-analytics/internal/dashboard"
	"github.com/weiihann/ecoquest-analytics/internal/logger"
	"github.com/weiihann/ecoquest-analytics/internal/poller"
	"github.com/weiihann/ecoquest-analytics/pkg/analytics"
)

// StateSource provides the current poller state
type StateSource interface {
	State() poller.State
}

type Server struct {
	source  StateSource
	opts    dashboard.Options
	impacts *ImpactCache
	log     *slog.Logger
	server  *http.Server
}

func NewServer(source StateSource, opts dashboard.Options, impactCacheSize int) (*Server, error) {
	impacts, err := NewImpactCache(impactCacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not create impact cache: %w", err)
	}

	return &Server{
		source:  source,
		opts:    opts,
		impacts: impacts,
		log:     logger.GetLogger("api-server"),
	}, nil
}

// Handler returns the full HTTP handler including response compression.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.routes())
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("EcoQuest Analytics API"))
	})
	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dashboard", s.handleGetDashboard)
		r.Get("/status", s.handleGetStatus)
		r.Get("/materials", s.handleGetMaterials)
		r.Get("/impact", s.handleGetImpact)
	})

	return r
}

func (s *Server) Run(ctx context.Context, host string, port int) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("Starting API server", "host", host, "port", port, "address", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("API server listen error", "error", err)
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	s.log.Info("Shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.log.Error("API server shutdown error", "error", err)
		return err
	}

	s.log.Info("API server stopped gracefully")
	return nil
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetDashboard serves the derived view; ?format=text renders the tables.
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	view := dashboard.Build(s.source.State(), s.opts)

	if r.URL.Query().Get("format") == "text" {
		var buf bytes.Buffer
		if err := dashboard.RenderText(&buf, view); err != nil {
			s.log.Error("Failed to render dashboard", "error", err, "remote_addr", r.RemoteAddr)
			respondWithError(w, http.StatusInternalServerError, "Could not render dashboard")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return
	}

	s.log.Debug("Served dashboard",
		"state", view.State,
		"collected_total", view.CollectedTotal,
		"remote_addr", r.RemoteAddr)
	respondWithJSON(w, http.StatusOK, view)
}

// StatusResponse describes the poller without the derived view
type StatusResponse struct {
	State       dashboard.ViewState `json:"state"`
	LastUpdated *time.Time          `json:"last_updated,omitempty"`
	SecondsAgo  int64               `json:"seconds_ago"`
	LastError   string              `json:"last_error,omitempty"`
	Polls       int64               `json:"polls"`
	Failures    int64               `json:"failures"`
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	st := s.source.State()

	resp := StatusResponse{
		State:      dashboard.StateOf(st),
		SecondsAgo: st.SecondsAgo,
		LastError:  st.LastError,
		Polls:      st.Polls,
		Failures:   st.Failures,
	}
	if !st.LastUpdated.IsZero() {
		updated := st.LastUpdated
		resp.LastUpdated = &updated
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMaterials(w http.ResponseWriter, r *http.Request) {
	st := s.source.State()
	if st.Snapshot == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Analytics not available yet")
		return
	}

	sorted := analytics.SortMaterials(analytics.NormalizeMaterials(st.Snapshot))

	if topStr := r.URL.Query().Get("top"); topStr != "" {
		top, err := strconv.Atoi(topStr)
		if err != nil || top <= 0 {
			s.log.Warn("Invalid top parameter", "value", topStr, "remote_addr", r.RemoteAddr)
			respondWithError(w, http.StatusBadRequest, "Invalid 'top' query parameter")
			return
		}
		sorted = analytics.TopN(sorted, top)
	}

	respondWithJSON(w, http.StatusOK, sorted)
}

// ImpactResponse is the result of evaluating the impact table for one material
type ImpactResponse struct {
	Material  string                    `json:"material"`
	Collected int64                     `json:"collected"`
	Impact    *analytics.ImpactEstimate `json:"impact"`
}

func (s *Server) handleGetImpact(w http.ResponseWriter, r *http.Request) {
	material := r.URL.Query().Get("material")
	if material == "" {
		respondWithError(w, http.StatusBadRequest, "missing query parameter: material")
		return
	}

	collected, err := strconv.ParseInt(r.URL.Query().Get("collected"), 10, 64)
	if err != nil {
		s.log.Warn("Invalid collected parameter", "error", err, "remote_addr", r.RemoteAddr)
		respondWithError(w, http.StatusBadRequest, "Invalid 'collected' query parameter")
		return
	}

	est, cached := s.impacts.Get(material, collected)
	s.log.Debug("Served impact estimate",
		"material", material,
		"collected", collected,
		"cached", cached,
		"cache_entries", s.impacts.Len(),
		"remote_addr", r.RemoteAddr)
	respondWithJSON(w, http.StatusOK, ImpactResponse{Material: material, Collected: collected, Impact: est})
}
