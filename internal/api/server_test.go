package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawcity/clawcity/internal/actions"
	"github.com/clawcity/clawcity/internal/catalog"
	"github.com/clawcity/clawcity/internal/config"
	"github.com/clawcity/clawcity/internal/engine"
	"github.com/clawcity/clawcity/internal/entropy"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

func newTestServer(t *testing.T, ratePerSec float64, burst int) *httptest.Server {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cat := catalog.Default()
	rules := config.DefaultRules()
	src := entropy.NewSource("api-test")
	pres := world.NewPresenceField(cat.Zones, 3)

	eng := &engine.Engine{Store: s, Catalog: cat, Rules: rules, Rand: src, Presence: pres}
	disp := &actions.Dispatcher{Store: s, Catalog: cat, Rules: rules, Rand: src, Presence: pres}
	eng.Dispatcher = disp
	require.NoError(t, eng.Bootstrap(config.Config{TickMs: 1000, Seed: "api-test", NPCCount: 0}))

	srv := &Server{
		Store:      s,
		Catalog:    cat,
		Rules:      rules,
		Engine:     eng,
		Dispatcher: disp,
		Presence:   pres,
		AdminKey:   "admin-secret",
	}
	ts := httptest.NewServer(srv.Router(ratePerSec, burst))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, bearer string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func register(t *testing.T, ts *httptest.Server, name string) (agentID, key string) {
	t.Helper()
	resp, out := doJSON(t, http.MethodPost, ts.URL+"/agent/register", "", map[string]any{"name": name})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return out["agentId"].(string), out["apiKey"].(string)
}

func TestRegisterStateActEventsFlow(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	agentID, key := register(t, ts, "Wire Tester")
	require.Len(t, key, 64)

	// State: the observation names the starting zone and its exits.
	resp, state := doJSON(t, http.MethodGet, ts.URL+"/agent/state", key, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	agent := state["agent"].(map[string]any)
	assert.Equal(t, agentID, agent["id"])
	assert.Equal(t, "residential", agent["zoneId"])
	assert.NotEmpty(t, state["routes"])
	zone := state["zone"].(map[string]any)
	assert.NotEmpty(t, zone["police"])

	// Act: start a move.
	resp, act := doJSON(t, http.MethodPost, ts.URL+"/agent/act", key, map[string]any{
		"requestId": "req-1",
		"action":    "MOVE",
		"args":      map[string]any{"toZone": "market"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, act["ok"])

	// Events: the move start is on the feed.
	resp, evs := doJSON(t, http.MethodGet, ts.URL+"/agent/events", key, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	events := evs["events"].([]any)
	require.NotEmpty(t, events)
	first := events[0].(map[string]any)
	assert.Equal(t, world.EvMoveStarted, first["type"])
}

func TestAuthFailures(t *testing.T) {
	ts := newTestServer(t, 100, 100)

	resp, out := doJSON(t, http.MethodGet, ts.URL+"/agent/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, string(actions.CodeAuthRequired), out["error"])

	resp, out = doJSON(t, http.MethodGet, ts.URL+"/agent/state", "not-a-real-key", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, string(actions.CodeAuthInvalid), out["error"])
}

func TestActStatusMapping(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	_, key := register(t, ts, "Status Tester")

	// Precondition failures are 422.
	resp, out := doJSON(t, http.MethodPost, ts.URL+"/agent/act", key, map[string]any{
		"requestId": "req-1",
		"action":    "TAKE_JOB",
		"args":      map[string]any{"jobId": "astronaut"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, string(actions.CodePreconditionFailed), out["error"])

	// Malformed input is 400.
	resp, out = doJSON(t, http.MethodPost, ts.URL+"/agent/act", key, map[string]any{
		"requestId": "req-2",
		"action":    "DANCE",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(actions.CodeUnknownAction), out["error"])

	resp, out = doJSON(t, http.MethodPost, ts.URL+"/agent/act", key, map[string]any{
		"action": "MOVE",
		"args":   map[string]any{"toZone": "market"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(actions.CodeMissingRequestID), out["error"])
}

func TestStatusForConflict(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(actions.Result{
		Error: actions.CodeDuplicateInProgress,
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(actions.Result{
		Error: actions.CodeAgentBusy,
	}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(actions.Result{
		Error: actions.CodeInternal,
	}))
	assert.Equal(t, http.StatusOK, statusFor(actions.Result{OK: true}))
}

func TestActRateLimit(t *testing.T) {
	ts := newTestServer(t, 0.01, 1)
	_, key := register(t, ts, "Spammer")

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/agent/act", key, map[string]any{
		"requestId": "req-1",
		"action":    "MOVE",
		"args":      map[string]any{"toZone": "market"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, out := doJSON(t, http.MethodPost, ts.URL+"/agent/act", key, map[string]any{
		"requestId": "req-2",
		"action":    "MOVE",
		"args":      map[string]any{"toZone": "market"},
	})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", out["error"])
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
}

func TestAdminPauseResumeAndTick(t *testing.T) {
	ts := newTestServer(t, 100, 100)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/admin/pause", "wrong-key", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, out := doJSON(t, http.MethodPost, ts.URL+"/admin/pause", "admin-secret", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(world.StatusPaused), out["status"])

	// A paused world ignores forced ticks.
	resp, out = doJSON(t, http.MethodPost, ts.URL+"/admin/tick", "admin-secret", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, out["tick"])

	resp, out = doJSON(t, http.MethodPost, ts.URL+"/admin/resume", "admin-secret", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(world.StatusRunning), out["status"])

	resp, out = doJSON(t, http.MethodPost, ts.URL+"/admin/tick", "admin-secret", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, out["tick"])
}

func TestWorldStatusAndHealth(t *testing.T) {
	ts := newTestServer(t, 100, 100)

	resp, out := doJSON(t, http.MethodGet, ts.URL+"/world/status", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, out["tick"])
	assert.Equal(t, string(world.StatusRunning), out["status"])

	resp, out = doJSON(t, http.MethodGet, ts.URL+"/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["ok"])
}

func TestGuideIsServedWithoutAuth(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	resp, err := http.Get(ts.URL + "/agent/guide")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}
