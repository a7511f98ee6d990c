package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/genai"

	"github.com/spec-kit/ticket-retriage/internal/api/http/handlers"
	"github.com/spec-kit/ticket-retriage/internal/auth"
	"github.com/spec-kit/ticket-retriage/internal/domain"
	"github.com/spec-kit/ticket-retriage/internal/events"
	"github.com/spec-kit/ticket-retriage/internal/observability"
	"github.com/spec-kit/ticket-retriage/internal/persistence"
	"github.com/spec-kit/ticket-retriage/internal/service"
)

type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) Generate(context.Context, string, string, *genai.Schema) (string, error) {
	return s.response, s.err
}

func (s *stubGenerator) Model() string { return "stub-model" }

type memoryAudit struct {
	entries []domain.AuditEntry
}

func (m *memoryAudit) Create(_ context.Context, entry *domain.AuditEntry) error {
	entry.ID = "audit-" + entry.RequestID
	entry.CreatedAt = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryAudit) ListRecent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit < len(m.entries) {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

type testServer struct {
	app     *fiber.App
	gen     *stubGenerator
	audit   *memoryAudit
	tokens  *auth.TokenManager
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, withModel bool) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	ts := &testServer{
		gen: &stubGenerator{
			response: `{"results":[{"id":1,"Priority":"01-Emergency","Service_Category":"Plumbing","Suggested_Actions":"Please shut off the water if it is safe."}]}`,
		},
		audit:   &memoryAudit{},
		tokens:  auth.NewTokenManager("test-secret", 5),
		metrics: metrics,
	}

	auditService := service.NewAuditService(dispatcher, ts.audit, metrics, logger)
	auditService.RegisterHandlers()

	labels := domain.NewLabelSet(
		[]string{"01-Emergency", "02-Urgent", "03-Routine"},
		[]string{"Appliance", "Plumbing"},
	)
	catalog := service.NewStaticCatalog(labels, []domain.DemoExample{{
		ID: 42, ResidentPriority: "03-Routine", ResidentCategory: "Appliance", Comment: "Fridge is warm",
		AIPriority: "02-Urgent", AICategory: "Appliance", SuggestedActions: "Please keep the door closed while you wait.",
	}})

	deps := service.RetriageDependencies{Catalog: catalog, Dispatcher: dispatcher, Logger: logger}
	if withModel {
		deps.Generator = ts.gen
	}
	retriageService := service.NewRetriageService(deps)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	app.Get("/boom", func(*fiber.Ctx) error { panic("kaboom") })
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("ticket-retriage", "test", &persistence.Postgres{}, &persistence.Redis{}, retriageService.ModelEnabled),
		Portal:         handlers.NewPortalHandler(retriageService),
		Retriage:       handlers.NewRetriageHandler(retriageService),
		Admin:          handlers.NewAdminHandler(catalog, auditService, metrics, logger),
		AuthMiddleware: auth.NewAuthMiddleware(ts.tokens),
	})
	ts.app = app
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers map[string]string) (int, map[string]any, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded, string(raw)
}

func (ts *testServer) bearer(t *testing.T, role string) map[string]string {
	t.Helper()
	token, _, err := ts.tokens.GenerateToken("ops", role)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func TestLabelsEndpoint(t *testing.T) {
	ts := newTestServer(t, true)

	status, body, _ := ts.do(t, "GET", "/api/v1/labels", "", nil)
	require.Equal(t, 200, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, []any{"01-Emergency", "02-Urgent", "03-Routine"}, data["priorities"])
	assert.Equal(t, "03-Routine", data["default_priority"])
	assert.Equal(t, float64(100), data["max_comment_words"])
	assert.Equal(t, true, data["model_enabled"])
}

func TestRetriageEndpoint(t *testing.T) {
	ts := newTestServer(t, true)

	status, body, _ := ts.do(t, "POST", "/api/v1/retriage",
		`{"priority":"03-Routine","category":"Plumbing","comment":"  Water pouring from the ceiling  "}`,
		map[string]string{"X-Request-ID": "req-123"})
	require.Equal(t, 200, status)

	data := body["data"].(map[string]any)
	assert.Equal(t, "req-123", data["request_id"])
	assert.Equal(t, "stub-model", data["model"])
	resident := data["resident"].(map[string]any)
	assert.Equal(t, "Water pouring from the ceiling", resident["comment"])
	assert.Equal(t, float64(5), resident["word_count"])
	result := data["result"].(map[string]any)
	assert.Equal(t, "01-Emergency", result["ai_priority"])
	assert.Equal(t, "model", result["source"])
	changed := data["changed"].(map[string]any)
	assert.Equal(t, true, changed["priority"])
	assert.Equal(t, false, changed["category"])

	require.Len(t, ts.audit.entries, 1)
	assert.Equal(t, "req-123", ts.audit.entries[0].RequestID)
}

func TestRetriageEndpointErrors(t *testing.T) {
	ts := newTestServer(t, true)

	status, body, _ := ts.do(t, "POST", "/api/v1/retriage", `{"priority":"03-Routine","category":"Roofing","comment":""}`, nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Contains(t, details, "comment")
	assert.Contains(t, details, "category")

	status, body, _ = ts.do(t, "POST", "/api/v1/retriage", `{not json`, nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	ts.gen.err = errors.New("upstream timeout")
	status, body, _ = ts.do(t, "POST", "/api/v1/retriage", `{"priority":"03-Routine","category":"Plumbing","comment":"leak"}`, nil)
	assert.Equal(t, 503, status)
	assert.Equal(t, "MODEL_UNAVAILABLE", errorCode(body))

	ts.gen.err = nil
	ts.gen.response = "no json here"
	status, body, _ = ts.do(t, "POST", "/api/v1/retriage", `{"priority":"03-Routine","category":"Plumbing","comment":"leak"}`, nil)
	assert.Equal(t, 502, status)
	assert.Equal(t, "MODEL_OUTPUT_INVALID", errorCode(body))
}

func TestRetriageWithoutModelKeepsExamplesWorking(t *testing.T) {
	ts := newTestServer(t, false)

	status, body, _ := ts.do(t, "POST", "/api/v1/retriage", `{"priority":"03-Routine","category":"Plumbing","comment":"leak"}`, nil)
	assert.Equal(t, 503, status)
	assert.Equal(t, "MODEL_UNAVAILABLE", errorCode(body))

	status, body, _ = ts.do(t, "POST", "/api/v1/examples/42/retriage", "", nil)
	require.Equal(t, 200, status)
	result := body["data"].(map[string]any)["result"].(map[string]any)
	assert.Equal(t, "02-Urgent", result["ai_priority"])
	assert.Equal(t, "example", result["source"])
}

func TestExamplesEndpoints(t *testing.T) {
	ts := newTestServer(t, true)

	status, body, _ := ts.do(t, "GET", "/api/v1/examples", "", nil)
	require.Equal(t, 200, status)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, float64(42), first["id"])
	assert.NotContains(t, first, "ai_priority")

	status, body, _ = ts.do(t, "POST", "/api/v1/examples/abc/retriage", "", nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body, _ = ts.do(t, "POST", "/api/v1/examples/7/retriage", "", nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestPortalPage(t *testing.T) {
	ts := newTestServer(t, false)

	status, _, html := ts.do(t, "GET", "/", "", nil)
	require.Equal(t, 200, status)
	assert.Contains(t, html, "AI Maintenance Ticket Assistant Demo")
	assert.Contains(t, html, `<option value="03-Routine" selected>`)
	assert.Contains(t, html, "#42 | 03-Routine | Appliance | Fridge is warm")
	assert.Contains(t, html, "Set GEMINI_API_KEY to submit typed requests.")
}

func TestUnknownRouteAndPanic(t *testing.T) {
	ts := newTestServer(t, true)

	status, body, _ := ts.do(t, "GET", "/nope", "", nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body, _ = ts.do(t, "GET", "/boom", "", nil)
	assert.Equal(t, 500, status)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(body))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, true)

	status, body, _ := ts.do(t, "GET", "/api/v1/admin/audit", "", nil)
	assert.Equal(t, 401, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _, _ = ts.do(t, "GET", "/api/v1/admin/audit", "", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, 401, status)

	status, body, _ = ts.do(t, "GET", "/api/v1/admin/audit", "", ts.bearer(t, "viewer"))
	assert.Equal(t, 403, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))
}

func TestAdminAuditAndStats(t *testing.T) {
	ts := newTestServer(t, true)
	headers := ts.bearer(t, auth.RoleAdmin)

	status, _, _ := ts.do(t, "POST", "/api/v1/examples/42/retriage", "", map[string]string{"X-Request-ID": "ex-1"})
	require.Equal(t, 200, status)

	status, body, _ := ts.do(t, "GET", "/api/v1/admin/audit?limit=10", "", headers)
	require.Equal(t, 200, status)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	entry := items[0].(map[string]any)
	assert.Equal(t, "ex-1", entry["request_id"])
	assert.Equal(t, "example", entry["source"])
	assert.NotContains(t, entry, "comment")

	for _, limit := range []string{"0", "501", "abc", "10x"} {
		status, body, _ = ts.do(t, "GET", "/api/v1/admin/audit?limit="+limit, "", headers)
		assert.Equal(t, 400, status, limit)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body), limit)
	}

	status, body, _ = ts.do(t, "GET", "/api/v1/admin/audit", "", headers)
	require.Equal(t, 200, status)
	assert.Len(t, body["data"].([]any), 1)

	status, body, _ = ts.do(t, "GET", "/api/v1/admin/stats", "", headers)
	require.Equal(t, 200, status)
	stats := body["data"].(map[string]any)["metrics"].(map[string]any)
	assert.Equal(t, float64(1), stats["example_replays"])
	assert.NotContains(t, stats["model_calls"], "example")
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, false)

	status, body, _ := ts.do(t, "GET", "/health/live", "", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "alive", body["status"])

	status, body, _ = ts.do(t, "GET", "/health/ready", "", nil)
	require.Equal(t, 200, status)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "disabled", deps["postgres"])
	assert.Equal(t, "disabled", deps["redis"])
	assert.Equal(t, "disabled", deps["model"])
}
