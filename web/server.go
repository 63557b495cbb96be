// ABOUTME: HTTP server exposing the pipeline report as a JSON API
// ABOUTME: Adds request ids and zap access logs, serves a text dashboard at / and shuts down with its context
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/logging"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/store"
	"github.com/harperreed/dealflow/viz"
)

const (
	requestIDHeader = "X-Request-ID"
	shutdownTimeout = 5 * time.Second
)

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Dealflow</title></head>
<body>
<pre>{{.}}</pre>
</body>
</html>
`))

type Server struct {
	source store.Source
	mover  store.Mover
	engine *pipeline.Engine
	logger *zap.Logger
	mux    *http.ServeMux
}

// NewServer builds the API. Deal moves are enabled when source also implements store.Mover.
func NewServer(source store.Source, engine *pipeline.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Server{
		source: source,
		engine: engine,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	if m, ok := source.(store.Mover); ok {
		s.mover = m
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	s.mux.HandleFunc("GET /api/board", s.handleBoard)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/funnel", s.handleFunnel)
	s.mux.HandleFunc("GET /api/forecast", s.handleForecast)
	s.mux.HandleFunc("GET /api/contacts/status", s.handleContactStatus)
	s.mux.HandleFunc("POST /api/deals/{id}/move", s.handleMoveDeal)

	return s
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.mux)
}

// Start listens on port until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is cancelled, then drains in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("web server starting", zap.String("addr", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down web server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		logging.WithRequestID(ctx, s.logger).Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) report(r *http.Request, engine *pipeline.Engine) (*pipeline.Report, error) {
	snap, err := s.source.Snapshot(r.Context())
	if err != nil {
		logging.WithRequestID(r.Context(), s.logger).Error("failed to load snapshot", zap.Error(err))
		return nil, fmt.Errorf("failed to load pipeline")
	}
	return engine.Analyze(snap), nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	report, err := s.report(r, s.engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, viz.RenderDashboard(report)); err != nil {
		logging.WithRequestID(r.Context(), s.logger).Error("template error", zap.Error(err))
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	report, err := s.report(r, s.engine)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type boardResponse struct {
	Stages     []pipeline.StageSummary `json:"stages"`
	Board      pipeline.StageBuckets   `json:"board"`
	TotalValue int64                   `json:"total_value"`
	OpenValue  int64                   `json:"open_value"`
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	report, err := s.report(r, s.engine)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, boardResponse{
		Stages:     report.Stages,
		Board:      report.Board,
		TotalValue: report.TotalValue,
		OpenValue:  report.OpenValue,
	})
}

type healthResponse struct {
	Deals   []pipeline.ClassifiedDeal                 `json:"deals"`
	Summary map[pipeline.Health]pipeline.HealthTotals `json:"summary"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var stage models.Stage
	if v := r.URL.Query().Get("stage"); v != "" {
		parsed, err := models.ParseStage(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		stage = parsed
	}

	var status pipeline.Health
	if v := r.URL.Query().Get("status"); v != "" {
		parsed, err := pipeline.ParseHealth(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = parsed
	}

	report, err := s.report(r, s.engine)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	inStage := pipeline.FilterByStage(report.Health, stage)
	writeJSON(w, http.StatusOK, healthResponse{
		Deals:   pipeline.FilterByHealth(inStage, status),
		Summary: pipeline.SummarizeHealth(inStage),
	})
}

type conversionView struct {
	pipeline.Conversion
	Name string            `json:"name"`
	Band pipeline.RateBand `json:"band"`
}

func (s *Server) handleFunnel(w http.ResponseWriter, r *http.Request) {
	report, err := s.report(r, s.engine)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]conversionView, 0, len(report.Funnel))
	for _, c := range report.Funnel {
		out = append(out, conversionView{Conversion: c, Name: c.Name(), Band: c.Band()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversions": out})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	engine := s.engine
	if v := r.URL.Query().Get("horizon"); v != "" {
		horizon, err := pipeline.ParseHorizon(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		engine = engine.WithHorizon(horizon)
	}

	report, err := s.report(r, engine)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"horizon": report.Horizon,
		"points":  report.Forecast,
	})
}

func (s *Server) handleContactStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.report(r, s.engine)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":    report.TotalContacts,
		"counts":   report.ContactsByStatus,
		"statuses": report.StatusShares,
	})
}

type moveRequest struct {
	Stage string `json:"stage"`
}

func (s *Server) handleMoveDeal(w http.ResponseWriter, r *http.Request) {
	if s.mover == nil {
		writeError(w, http.StatusNotImplemented, "this store does not support moving deals")
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	stage, err := models.ParseStage(req.Stage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	if err := s.mover.MoveDeal(r.Context(), id, stage, s.engine.Now()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "deal not found: "+id)
			return
		}
		logging.WithRequestID(r.Context(), s.logger).Error("failed to move deal", zap.String("deal_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to move deal")
		return
	}

	logging.WithRequestID(r.Context(), s.logger).Info("deal moved", zap.String("deal_id", id), zap.String("stage", string(stage)))
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
