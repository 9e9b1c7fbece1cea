package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calldraft/calldraft/internal/config"
	"github.com/calldraft/calldraft/internal/service"
	"github.com/calldraft/calldraft/pkg/engine"
	"github.com/calldraft/calldraft/pkg/model"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint/builtin"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T, health HealthFunc) http.Handler {
	t.Helper()
	reg := constraint.NewRegistry()
	builtin.RegisterDefaultConstraints(reg, nil)
	svc := service.New(service.Options{Draft: "test", Registry: reg})
	require.NoError(t, svc.Bootstrap(context.Background(), []engine.Action{
		engine.IngestShiftRequirements{Rows: []model.ShiftRequirement{
			{Date: "2024-07-01", Flags: map[string]string{"day": "1", "night": "1"}},
			{Date: "2024-07-02", Flags: map[string]string{"day": "1", "night": "0"}},
		}},
		engine.IngestPreferences{Rows: []model.PreferenceRecord{
			{Name: "Ada", Values: model.Preferences{}},
			{Name: "Bo", Values: model.Preferences{builtin.PrefPreferredShifts: "night"}},
		}},
	}))

	cfg := config.FromEnv()
	cfg.API.RateLimit = 0
	return New(cfg, svc, BuildInfo{Version: "test"}, health).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))

	var env envelope
	if strings.HasPrefix(path, "/api/") && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealthAndVersion(t *testing.T) {
	h := newTestServer(t, nil)

	rec, _ := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, _ = do(t, h, http.MethodGet, "/version", nil)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)
}

func TestHealth_Degraded(t *testing.T) {
	h := newTestServer(t, func(context.Context) error { return errors.New("db down") })

	rec, _ := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}

func TestAssignFlow(t *testing.T) {
	h := newTestServer(t, nil)

	rec, env := do(t, h, http.MethodPost, "/api/v1/shifts/assign",
		map[string]string{"name": "Bo", "date": "2024-07-01", "shift": "night"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.Success)

	rec, env = do(t, h, http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st struct {
		Assignments []model.LedgerEntry `json:"assignments"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &st))
	require.Len(t, st.Assignments, 1)
	assert.Equal(t, "Bo", st.Assignments[0].Name)

	rec, env = do(t, h, http.MethodGet, "/api/v1/demand", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var demand []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &demand))
	assert.Len(t, demand, 2)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/shifts/clear",
		map[string]string{"date": "2024-07-01", "shift": "night"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/shifts/reset", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAssign_Errors(t *testing.T) {
	h := newTestServer(t, nil)

	rec, env := do(t, h, http.MethodPost, "/api/v1/shifts/assign",
		map[string]string{"name": "Ada", "date": "2024-07-02", "shift": "night"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SHIFT_NOT_REQUIRED", env.Error.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/shifts/assign", map[string]string{"bogus": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/shifts/assign", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecommendations(t *testing.T) {
	h := newTestServer(t, nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/recommendations?date=2024-07-01&shift=night", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var b struct {
		PreferredToWork []struct{ Name string } `json:"preferredToWork"`
		Neutral         []struct{ Name string } `json:"neutral"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &b))
	require.Len(t, b.PreferredToWork, 1)
	assert.Equal(t, "Bo", b.PreferredToWork[0].Name)
	assert.Len(t, b.Neutral, 1)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/recommendations?date=nope&shift=night", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConstraintsFocusAndExport(t *testing.T) {
	h := newTestServer(t, nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/constraints", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cs []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &cs))
	assert.NotEmpty(t, cs)

	rec, env = do(t, h, http.MethodGet, "/api/v1/constraints?category=hard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hard []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &hard))
	assert.Len(t, hard, 4)
	assert.Less(t, len(hard), len(cs))

	rec, _ = do(t, h, http.MethodGet, "/api/v1/constraints?category=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/focus", map[string]string{"name": "Ada"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/export.xlsx", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PK", rec.Body.String()[:2])

	rec, _ = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "calldraft_http_requests_total")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil)
	rec, _ := do(t, h, http.MethodOptions, "/api/v1/state", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
