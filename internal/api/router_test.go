package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"argos-engine/internal/api/handlers"
	"argos-engine/internal/chart"
	"argos-engine/internal/classifier"
	"argos-engine/internal/dto"
	"argos-engine/internal/ledger"
	"argos-engine/internal/llm"
	"argos-engine/internal/models"
	"argos-engine/internal/planner"
	"argos-engine/internal/service"
	"argos-engine/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSource struct {
	rows []models.RawTransaction
	err  error
}

func (s *staticSource) FetchRecent(_ context.Context, limit int) ([]models.RawTransaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.rows) > limit {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

type testEnv struct {
	app      *fiber.App
	backend  *llm.Scripted
	chartDir string
}

func newTestEnv(t *testing.T, backend *llm.Scripted, chartsEnabled bool) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	src := &staticSource{rows: []models.RawTransaction{
		{ID: "1", Date: "2024-01-10", Merchant: "Swiggy", Category: "Food", Amount: "100", Currency: "inr"},
		{ID: "2", Date: "2024-02-05", Merchant: "Zomato", Category: "Food", Amount: 50.0, Currency: "INR"},
	}}
	store := ledger.NewStore(src, ledger.NewNormalizer(logger), 100, logger)
	_, err := store.Refresh(context.Background())
	require.NoError(t, err)

	chartDir := filepath.Join(t.TempDir(), "charts")
	var renderer planner.ChartRenderer
	if chartsEnabled {
		renderer = chart.NewRenderer(chartDir, logger)
	}
	p := planner.New(backend, planner.NewExecutor(renderer, chartsEnabled, logger), 3, logger)

	askSvc := service.NewAskService(p, store, classifier.New(chartsEnabled, logger), logger)
	trendSvc := service.NewTrendService(store)
	ledgerSvc := service.NewLedgerService(store, "static", logger)

	cfg := &config.Config{}
	app := SetupRouter(Handlers{
		Ask:    handlers.NewAskHandler(askSvc, logger),
		Ledger: handlers.NewLedgerHandler(trendSvc, ledgerSvc, logger),
		Chart:  handlers.NewChartHandler(chartDir, logger),
	}, cfg, logger)

	return &testEnv{app: app, backend: backend, chartDir: chartDir}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := e.app.Test(req, 10000)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestAskRejectsMissingQuestion(t *testing.T) {
	env := newTestEnv(t, llm.ScriptedText(`{"operation":"value"}`), false)

	for _, body := range []string{"", `{}`, `{"question":"   "}`, `{"question":`} {
		resp, raw := env.do(t, http.MethodPost, "/api/ask", body)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, body)
		assert.JSONEq(t, `{"error":"No question provided"}`, string(raw), body)
	}
	assert.Equal(t, 0, env.backend.Calls())
}

func TestAskReturnsTextAnswer(t *testing.T) {
	env := newTestEnv(t, llm.ScriptedText(`{"operation":"value","filters":[{"column":"category","op":"eq","value":"Food"}]}`), false)

	resp, raw := env.do(t, http.MethodPost, "/api/ask", `{"question":"How much did I spend on food?"}`)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got dto.AskResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "Total spent: 150.00 INR across 2 transactions", got.Data)
}

func TestAskBackendFailureIsErrorEnvelope(t *testing.T) {
	backend := llm.NewScripted(llm.Reply{Err: errors.New("dial tcp: connection refused")})
	env := newTestEnv(t, backend, false)

	resp, raw := env.do(t, http.MethodPost, "/api/ask", `{"question":"How much?"}`)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got dto.AskResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "error", got.Type)
	assert.NotEmpty(t, got.Data)
	assert.NotContains(t, got.Data, "dial tcp")
}

func TestAskChartRoundTrip(t *testing.T) {
	env := newTestEnv(t, llm.ScriptedText(`{"operation":"chart","group_by":["month"],"chart":{"type":"bar","title":"Spend by month"}}`), true)

	resp, raw := env.do(t, http.MethodPost, "/api/ask", `{"question":"Plot my spending by month"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got dto.AskResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, "image", got.Type)
	require.True(t, strings.HasPrefix(got.Data, "/charts/"), got.Data)
	assert.NotContains(t, got.Data, env.chartDir)

	_, err := os.Stat(filepath.Join(env.chartDir, strings.TrimPrefix(got.Data, "/charts/")))
	require.NoError(t, err)

	resp, img := env.do(t, http.MethodGet, got.Data, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.True(t, len(img) > 8 && string(img[1:4]) == "PNG")
}

func TestChartEndpointRejectsUnsafeNames(t *testing.T) {
	env := newTestEnv(t, llm.ScriptedText(), true)
	require.NoError(t, os.MkdirAll(env.chartDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(env.chartDir), "secret.png"), []byte("x"), 0o644))

	for _, path := range []string{
		"/charts/..%2Fsecret.png",
		"/charts/%2E%2E%2Fsecret.png",
		"/charts/..%5Csecret.png",
		"/charts/../secret.png",
	} {
		resp, _ := env.do(t, http.MethodGet, path, "")
		assert.NotEqual(t, fiber.StatusOK, resp.StatusCode, path)
	}

	resp, _ := env.do(t, http.MethodGet, "/charts/notes.txt", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/charts/chart_missing.png", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestTrendsEndpoint(t *testing.T) {
	env := newTestEnv(t, llm.ScriptedText(), false)

	resp, raw := env.do(t, http.MethodGet, "/api/trends", "")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t,
		`{"monthly_trend":[{"month":"January","total":100},{"month":"February","total":50}],"category_split":[{"name":"Food","value":150}]}`,
		string(raw))
}

func TestRefreshAndHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, llm.ScriptedText(), false)

	resp, raw := env.do(t, http.MethodPost, "/api/refresh", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var refreshed dto.RefreshResponse
	require.NoError(t, json.Unmarshal(raw, &refreshed))
	assert.Equal(t, 2, refreshed.Rows)
	assert.False(t, refreshed.Degraded)
	_, err := time.Parse(time.RFC3339, refreshed.LoadedAt)
	assert.NoError(t, err)

	resp, raw = env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(raw, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "static", health.Source)
	assert.Equal(t, 2, health.Rows)
	assert.InDelta(t, 150.0, health.TotalSpent, 1e-9)
}

func TestUnknownRouteUsesJSONErrors(t *testing.T) {
	env := newTestEnv(t, llm.ScriptedText(), false)

	resp, raw := env.do(t, http.MethodGet, "/api/nope", "")

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), `"error"`)
}
