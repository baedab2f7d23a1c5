// internal/cogserver/server.go
package cogserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"pardotcog/internal/cache"
	"pardotcog/internal/pardot"
	"pardotcog/internal/steps"
	"pardotcog/pkg/cog"
	"pardotcog/pkg/config"
	"pardotcog/pkg/manifest"
	"pardotcog/pkg/middleware"
	"pardotcog/pkg/problems"
)

const Version = "1.0.0"

// Server exposes the step surface over HTTP: a manifest for discovery and
// one execute endpoint the orchestrator posts invocations to.
type Server struct {
	cfg      config.Config
	log      *zap.SugaredLogger
	rdb      *redis.Client
	httpc    *http.Client
	retry    pardot.RetryPolicy
	sessions *sessionRegistry
	doc      manifest.Document
	stepIDs  map[string]struct{}
}

func New(cfg config.Config, log *zap.SugaredLogger, rdb *redis.Client) *Server {
	httpc := &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	retry := pardot.RetryPolicy{
		MaxAttempts:    cfg.RetryAttempts,
		AttemptTimeout: cfg.RetryAttemptTimeout,
		Delay:          cfg.RetryDelay,
	}
	// Definitions are static; a registry with no backing client serves them.
	defs := steps.NewRegistry(nil, nil).Definitions()
	stepIDs := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		stepIDs[d.ID] = struct{}{}
	}
	return &Server{
		cfg:      cfg,
		log:      log,
		rdb:      rdb,
		httpc:    httpc,
		retry:    retry,
		sessions: newSessionRegistry(httpc, log),
		doc:      manifest.Build("pardot", "Pardot", Version, defs),
		stepIDs:  stepIDs,
	}
}

// Router assembles the chi router with the shared middleware chain.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(s.log))
	r.Use(middleware.Tracing())
	r.Use(middleware.JWTAuth(s.cfg))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/.well-known/cog.json", manifest.ServeHandler(s.doc))
	r.Post("/v1/steps/{stepID}/execute", s.handleExecute)
	return r
}

// executeRequest is the wire form of one step invocation.
type executeRequest struct {
	Auth         map[string]any `json:"auth"`
	Data         map[string]any `json:"data"`
	StepOrder    int            `json:"step_order"`
	SuppressPII  bool           `json:"suppress_pii"`
	ScenarioID   string         `json:"scenario_id"`
	RequestorID  string         `json:"requestor_id"`
	ConnectionID string         `json:"connection_id"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	stepID := chi.URLParam(r, "stepID")

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problems.Write(w, http.StatusBadRequest, "malformed-request", err.Error())
		return
	}

	// Validate the step id before spending a platform login on it.
	if _, ok := s.stepIDs[stepID]; !ok {
		problems.Write(w, http.StatusNotFound, "unknown-step", "no step registered with id "+stepID)
		return
	}

	creds := pardot.CredentialsFromMap(req.Auth)
	session, err := s.sessions.acquire(creds)
	if err != nil {
		problems.Write(w, http.StatusUnauthorized, "invalid-credentials", err.Error())
		return
	}

	reg := s.registryFor(session, cache.Scope{
		ScenarioID:   req.ScenarioID,
		RequestorID:  req.RequestorID,
		ConnectionID: req.ConnectionID,
	})
	step, _ := reg.Get(stepID)

	start := time.Now()
	resp := step.Execute(r.Context(), cog.Request{
		Data:        req.Data,
		StepOrder:   req.StepOrder,
		SuppressPII: req.SuppressPII,
	})
	stepDuration.WithLabelValues(stepID).Observe(time.Since(start).Seconds())
	stepOutcomes.WithLabelValues(stepID, string(resp.Outcome)).Inc()

	s.log.Infow("step executed",
		"step", stepID,
		"outcome", resp.Outcome,
		"strategy", session.Strategy(),
		"reqid", middleware.RequestIDFrom(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// registryFor builds the per-invocation step registry: the plain client,
// wrapped by the redis read-through cache when one is configured, scoped to
// the invocation's scenario run.
func (s *Server) registryFor(session *pardot.Session, scope cache.Scope) *steps.Registry {
	var ops pardot.Operations = pardot.NewClient(session, s.retry, s.httpc, s.log)
	if s.rdb != nil {
		ops = cache.New(ops, cache.NewRedisKV(s.rdb), scope, s.log)
	}
	return steps.NewRegistry(ops, session)
}
