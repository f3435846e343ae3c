// Package httpapi exposes the simulation engine over HTTP: a single
// POST /v1/run endpoint dispatching to single/suite mode, a live
// per-tick websocket stream, and a health endpoint, in the pack's
// gorilla/mux + gorilla/handlers idiom. Prometheus metrics are served
// on their own listener (see Metrics.Handler and cmd/distilltwin) so
// scraping never shares the app router's access log or admission
// semaphore.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"nrgchamp/distilltwin/internal/config"
	"nrgchamp/distilltwin/internal/metrics"
	"nrgchamp/distilltwin/internal/scheduler"
	"nrgchamp/distilltwin/internal/suite"
	"nrgchamp/distilltwin/internal/telemetry"
)

// Server bundles the router and its dependencies.
type Server struct {
	log       *slog.Logger
	metrics   *Metrics
	summaries *telemetry.SummaryPublisher
	events    *telemetry.EventBridge
	streams   *streamRegistry
	router    *mux.Router

	runSem chan struct{}
}

// New builds a Server with routes registered. maxConcurrentRuns bounds
// how many simulation runs (single or suite) may execute at once;
// requests beyond that block until a slot frees or their context is
// cancelled.
func New(log *slog.Logger, m *Metrics, summaries *telemetry.SummaryPublisher, events *telemetry.EventBridge, maxConcurrentRuns int) *Server {
	if maxConcurrentRuns <= 0 {
		maxConcurrentRuns = 8
	}
	s := &Server{
		log: log, metrics: m, summaries: summaries, events: events,
		streams: newStreamRegistry(),
		runSem:  make(chan struct{}, maxConcurrentRuns),
	}
	r := mux.NewRouter()
	r.Handle("/health", m.Wrap("health", http.HandlerFunc(s.handleHealth))).Methods(http.MethodGet)
	r.Handle("/v1/run", m.Wrap("run", http.HandlerFunc(s.handleRun))).Methods(http.MethodPost)
	r.Handle("/v1/run/{id}/stream", http.HandlerFunc(s.handleStream)).Methods(http.MethodGet)
	s.router = r
	return s
}

// Handler wraps the router with access logging (the pack's
// ledger/aggregator idiom) and a recover() that converts any handler
// panic into the same 500 {error} JSON shape a returned error would
// produce, logged at slog.LevelError with the stack trace.
func (s *Server) Handler() http.Handler {
	return handlers.LoggingHandler(logWriter{s.log}, s.recoverJSON(s.router))
}

func (s *Server) recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic in handler", "panic", rec, "stack", string(debug.Stack()))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type logWriter struct{ log *slog.Logger }

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Info("access", "line", string(p))
	return len(p), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req config.EngineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.StreamID == "" {
		req.StreamID = uuid.NewString()
	}

	select {
	case s.runSem <- struct{}{}:
		defer func() { <-s.runSem }()
	case <-r.Context().Done():
		writeError(w, http.StatusServiceUnavailable, "server at max concurrent runs, try again later")
		return
	}

	sc := config.BuildScenario(req)
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	switch req.Mode {
	case "suite":
		s.runSuite(ctx, w, sc, req.StreamID)
	default:
		s.runSingle(ctx, w, sc, req.StreamID)
	}
}

func (s *Server) runSingle(ctx context.Context, w http.ResponseWriter, sc scheduler.Scenario, streamID string) {
	started := time.Now()
	runID := uuid.New()
	sink := &sinkAdapter{events: s.events, streams: s.streams, streamID: streamID, runID: runID, ctx: ctx}
	sched := scheduler.New(sc, sink)
	tr, err := sched.Run(ctx)
	if err != nil {
		s.metrics.ObserveRun("single", "error", 0)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := BuildSingleResponse(tr, sc.MetricOpt, sc.GateThresholds.Rho15Low, sc.GateThresholds.Rho15High, sc.GateThresholds.DTsubMin)
	total := 0.0
	for _, m := range resp.Metrics {
		total += m.IAE
	}
	s.metrics.ObserveRun("single", "ok", total)

	if s.summaries != nil {
		s.summaries.Publish(ctx, telemetry.RunSummaryEvent{
			RunID: runID, Mode: "single",
			StartedAt: started, FinishedAt: time.Now(),
			Gate:     metrics.GateStats{ProductPct: resp.Gate.ProductPct, Switches: resp.Gate.Switches},
			TotalIAE: total,
		})
	}

	if lc := s.streams.get(streamID); lc != nil {
		_ = lc.writeJSON(map[string]any{"type": "done", "data": resp})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) runSuite(ctx context.Context, w http.ResponseWriter, sc scheduler.Scenario, streamID string) {
	started := time.Now()
	results, err := suite.Run(ctx, sc)
	if err != nil {
		s.metrics.ObserveRun("suite", "error", 0)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rows := BuildSuiteResponse(results)
	finished := time.Now()
	for _, row := range rows {
		s.metrics.ObserveRun("suite", "ok", row.TotalIAE)
		if s.summaries != nil {
			s.summaries.Publish(ctx, telemetry.RunSummaryEvent{
				RunID: uuid.New(), Mode: "suite:" + row.Name,
				StartedAt: started, FinishedAt: finished,
				Gate:     metrics.GateStats{ProductPct: row.Gate.ProductPct, Switches: row.Gate.Switches},
				TotalIAE: row.TotalIAE,
			})
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// sinkAdapter bridges scheduler.EventSink onto the optional MQTT event
// bridge and, when a client has already subscribed to this run's
// streamID via GET /v1/run/{id}/stream, onto that live websocket
// connection as well.
type sinkAdapter struct {
	events   *telemetry.EventBridge
	streams  *streamRegistry
	streamID string
	runID    uuid.UUID
	ctx      context.Context
}

func (a *sinkAdapter) OnEvent(t float64, kind, msg string) {
	if a.events != nil {
		a.events.Publish(a.ctx, telemetry.GateTransitionEvent{RunID: a.runID, T: t, Kind: kind, Message: msg})
	}
	if lc := a.streams.get(a.streamID); lc != nil {
		_ = lc.writeJSON(map[string]any{"type": "event", "t": t, "kind": kind, "msg": msg})
	}
}

func (a *sinkAdapter) OnTick(t float64, route int, analyzerOK bool, tt106, rho15, lv201 float64) {
	lc := a.streams.get(a.streamID)
	if lc == nil {
		return
	}
	tick := tickPayload{T: t, Route: route, AnalyzerOK: boolToInt(analyzerOK), TT106: tt106, Rho15: rho15, Lv201: lv201}
	_ = lc.writeJSON(map[string]any{"type": "tick", "data": tick})
}
