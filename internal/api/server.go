// Package api is the HTTP surface: agent registration and actions, state
// and event reads, the guide, world status, health, metrics, and the admin
// control plane. Agent identity is a bearer key; only its SHA-256 hash is
// stored.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/clawcity/clawcity/internal/actions"
	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/catalog"
	"github.com/clawcity/clawcity/internal/config"
	"github.com/clawcity/clawcity/internal/engine"
	"github.com/clawcity/clawcity/internal/metrics"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// Server wires the HTTP routes to the engine and dispatcher.
type Server struct {
	Store      *store.Store
	Catalog    *catalog.Catalog
	Rules      config.Rules
	Engine     *engine.Engine
	Clock      *engine.Clock
	Dispatcher *actions.Dispatcher
	Presence   *world.PresenceField

	AdminKey string // empty disables the admin routes

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler

	limits *agentLimiters
	guide  string
}

// Router builds the mux. Call once at startup.
func (s *Server) Router(ratePerSec float64, burst int) *mux.Router {
	s.limits = newAgentLimiters(ratePerSec, burst)
	s.guide = buildGuide(s.Catalog, s.Rules)

	r := mux.NewRouter()
	r.Use(s.observe)

	r.HandleFunc("/agent/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/agent/state", s.withAgent(s.handleState)).Methods(http.MethodGet)
	r.HandleFunc("/agent/act", s.withAgent(s.handleAct)).Methods(http.MethodPost)
	r.HandleFunc("/agent/events", s.withAgent(s.handleEvents)).Methods(http.MethodGet)
	r.HandleFunc("/agent/guide", s.handleGuide).Methods(http.MethodGet)

	r.HandleFunc("/world/status", s.handleWorldStatus).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	if s.MetricsHandler != nil {
		r.Handle("/metrics", s.MetricsHandler).Methods(http.MethodGet)
	}

	if s.AdminKey != "" {
		r.HandleFunc("/admin/pause", s.adminOnly(s.handlePause)).Methods(http.MethodPost)
		r.HandleFunc("/admin/resume", s.adminOnly(s.handleResume)).Methods(http.MethodPost)
		r.HandleFunc("/admin/tick", s.adminOnly(s.handleForceTick)).Methods(http.MethodPost)
	}
	return r
}

// observe records one counter per served request.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.Metrics.ObserveHTTP(route, strconv.Itoa(rec.status))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withAgent resolves the bearer key to an agent and passes it through.
func (s *Server) withAgent(fn func(http.ResponseWriter, *http.Request, *agents.Agent)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, actions.CodeAuthRequired, "bearer token required")
			return
		}
		var a *agents.Agent
		err := s.Store.View(func(tx *store.Tx) error {
			var err error
			a, err = tx.AgentByKeyHash(engine.HashKey(key))
			return err
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, actions.CodeAuthInvalid, "unknown api key")
				return
			}
			slog.Error("auth lookup failed", "error", err)
			writeError(w, http.StatusInternalServerError, actions.CodeInternal, "internal error")
			return
		}
		fn(w, r, a)
	}
}

func (s *Server) adminOnly(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := bearerToken(r)
		if !ok || key != s.AdminKey {
			writeError(w, http.StatusUnauthorized, actions.CodeAuthInvalid, "admin token required")
			return
		}
		fn(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) || len(h) == len(prefix) {
		return "", false
	}
	return h[len(prefix):], true
}

type registerRequest struct {
	Name    string `json:"name"`
	LLMInfo string `json:"llmInfo,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, actions.CodeBadArgs, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, actions.CodeBadArgs, "name is required")
		return
	}
	reg, err := s.Engine.Register(strings.TrimSpace(req.Name), req.LLMInfo)
	if err != nil {
		slog.Error("registration failed", "name", req.Name, "error", err)
		writeError(w, http.StatusInternalServerError, actions.CodeInternal, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"agentId": reg.Agent.ID,
		"apiKey":  reg.APIKey,
		"name":    reg.Agent.Name,
		"zone":    reg.Agent.ZoneID,
		"cash":    reg.Agent.Cash,
	})
}

type actRequest struct {
	RequestID string          `json:"requestId"`
	Action    string          `json:"action"`
	Args      json.RawMessage `json:"args,omitempty"`
}

func (s *Server) handleAct(w http.ResponseWriter, r *http.Request, a *agents.Agent) {
	if !s.limits.allow(a.ID) {
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "slow down")
		return
	}
	var req actRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, actions.CodeBadArgs, "invalid JSON body")
		return
	}
	res := s.Dispatcher.Act(a.ID, req.RequestID, actions.Verb(req.Action), req.Args)
	writeJSON(w, statusFor(res), res)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, a *agents.Agent) {
	sinceTick := queryUint(r, "sinceTick", 0)
	limit := int(queryUint(r, "limit", 50))
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	var events []*world.Event
	err := s.Store.View(func(tx *store.Tx) error {
		var err error
		events, err = tx.EventsForAgent(a.ID, sinceTick, limit)
		return err
	})
	if err != nil {
		slog.Error("event read failed", "agent", a.ID, "error", err)
		writeError(w, http.StatusInternalServerError, actions.CodeInternal, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.guide))
}

func (s *Server) handleWorldStatus(w http.ResponseWriter, r *http.Request) {
	var (
		wld   *world.World
		total int
		npcs  int
		city  engine.CitySummary
	)
	err := s.Store.View(func(tx *store.Tx) error {
		var err error
		wld, err = tx.World()
		if err != nil {
			return err
		}
		total, npcs, err = tx.CountAgents()
		if err != nil {
			return err
		}
		if _, err := tx.Summary(engine.ScopeCity, &city); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		slog.Error("world status read failed", "error", err)
		writeError(w, http.StatusInternalServerError, actions.CodeInternal, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tick":       wld.Tick,
		"status":     wld.Status,
		"tickMs":     wld.TickMs,
		"lastTickAt": wld.LastTickAt,
		"agents":     total,
		"npcs":       npcs,
		"city":       city,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.setRunState(w, world.StatusPaused)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.setRunState(w, world.StatusRunning)
}

func (s *Server) setRunState(w http.ResponseWriter, status world.Status) {
	var tick uint64
	err := s.Store.Update(func(tx *store.Tx) error {
		wld, err := tx.World()
		if err != nil {
			return err
		}
		wld.Status = status
		tick = wld.Tick
		return tx.SaveWorld(wld)
	})
	if err != nil {
		slog.Error("run state change failed", "status", status, "error", err)
		writeError(w, http.StatusInternalServerError, actions.CodeInternal, "internal error")
		return
	}
	slog.Info("run state changed", "status", status, "tick", tick)
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "tick": tick})
}

// handleForceTick runs one pipeline immediately. Shares the clock's
// in-flight guard so it cannot race a scheduled fire.
func (s *Server) handleForceTick(w http.ResponseWriter, r *http.Request) {
	if s.Clock != nil {
		s.Clock.Fire()
	} else if err := s.Engine.RunTick(); err != nil {
		writeError(w, http.StatusInternalServerError, actions.CodeInternal, err.Error())
		return
	}
	var tick uint64
	_ = s.Store.View(func(tx *store.Tx) error {
		if wld, err := tx.World(); err == nil {
			tick = wld.Tick
		}
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]any{"tick": tick})
}

// statusFor maps a dispatcher result to an HTTP status.
func statusFor(res actions.Result) int {
	if res.OK {
		return http.StatusOK
	}
	switch res.Error {
	case actions.CodeMissingRequestID, actions.CodeUnknownAction, actions.CodeBadArgs:
		return http.StatusBadRequest
	case actions.CodeAuthRequired, actions.CodeAuthInvalid:
		return http.StatusUnauthorized
	case actions.CodeDuplicateInProgress:
		return http.StatusConflict
	case actions.CodeAgentNotFound, actions.CodeAgentBanned, actions.CodeInvalidStatus,
		actions.CodeAgentBusy, actions.CodePreconditionFailed,
		actions.CodeInsufficientFunds, actions.CodeInsufficientInventory:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code actions.Code, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": code, "message": msg})
}

func queryUint(r *http.Request, key string, def uint64) uint64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// Serve runs the HTTP server until the listener fails.
func (s *Server) Serve(addr string, router http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("http listening", "addr", addr)
	return srv.ListenAndServe()
}
