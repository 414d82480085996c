package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"

	"github.com/snapgen/snapgen/internal/config"
	"github.com/snapgen/snapgen/internal/generator"
)

func TestRenderReturnsFiles(t *testing.T) {
	app, metrics, _ := newTestApp(t, nil)

	resp := postRender(t, app, `{"kind":"function","namespace":"core","name":"dedupe"}`)
	if resp.StatusCode != fiber.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d (%s)", resp.StatusCode, body)
	}
	if reqID := resp.Header.Get("X-Request-ID"); reqID == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}

	var payload renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Kind != "function" || len(payload.Files) != 1 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	file := payload.Files[0]
	if file.Path != "functions/dedupe/dedupe.py" || file.Mode != "0644" {
		t.Fatalf("unexpected file %+v", file)
	}
	if !strings.Contains(file.Content, `namespace="core"`) || !strings.Contains(file.Content, "def dedupe(") {
		t.Fatalf("content not rendered:\n%s", file.Content)
	}

	if got := testutil.ToFloat64(metrics.renders.WithLabelValues("function", resultOK)); got != 1 {
		t.Fatalf("expected render counter 1, got %v", got)
	}
}

func TestRenderKeepsRequestID(t *testing.T) {
	app, _, logBuf := newTestApp(t, nil)

	req := httptest.NewRequest("POST", "/api/render", strings.NewReader(`{"kind":"graph","name":"daily"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if got := resp.Header.Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("expected propagated request id, got %s", got)
	}
	if !strings.Contains(logBuf.String(), "req-42") {
		t.Fatalf("log should include request id, got %s", logBuf.String())
	}
}

func TestRenderErrorEnvelope(t *testing.T) {
	cfg := &config.Config{Kinds: []config.KindConfig{{Name: "graph", Disabled: true}}}
	app, metrics, _ := newTestApp(t, cfg)

	cases := []struct {
		body   string
		status int
		code   string
	}{
		{`{"kind":"nope","name":"x"}`, fiber.StatusNotFound, "kind_not_found"},
		{`{"kind":"function","name":"class"}`, fiber.StatusBadRequest, "invalid_name"},
		{`{"kind":"function","namespace":"1x","name":"ok"}`, fiber.StatusBadRequest, "invalid_namespace"},
		{`{"kind":"function","name":"ok","directory":"../up"}`, fiber.StatusBadRequest, "invalid_directory"},
		{`{"kind":"graph","name":"daily"}`, fiber.StatusForbidden, "kind_disabled"},
		{`{not json`, fiber.StatusBadRequest, "invalid_body"},
	}
	for _, tc := range cases {
		resp := postRender(t, app, tc.body)
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.body, tc.status, resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if !bytes.Contains(body, []byte(`"error":"`+tc.code+`"`)) {
			t.Fatalf("%s: expected error %s, got %s", tc.body, tc.code, body)
		}
	}

	counts := map[string]float64{"function": 3, "graph": 1, unknownKindLabel: 2}
	for kind, want := range counts {
		if got := testutil.ToFloat64(metrics.renders.WithLabelValues(kind, resultError)); got != want {
			t.Fatalf("expected %v failed renders for %s, got %v", want, kind, got)
		}
	}
}

func TestDiagnosticsEndpoints(t *testing.T) {
	app, _, _ := newTestApp(t, nil)
	postRender(t, app, `{"kind":"function","name":"dedupe"}`)

	resp, err := app.Test(httptest.NewRequest("GET", "/-/healthz", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected healthz 200, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/-/metrics", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte(`snapgen_renders_total{kind="function",result="ok"} 1`)) {
		t.Fatalf("metrics output missing render counter:\n%s", body)
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app, _, _ := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte(`"route_not_found"`)) {
		t.Fatalf("expected route_not_found, got %s", body)
	}
}

func TestNewAppRequiresDependencies(t *testing.T) {
	if _, err := NewApp(AppOptions{}); err == nil {
		t.Fatalf("expected error without logger")
	}
	if _, err := NewApp(AppOptions{Logger: logrus.New()}); err == nil {
		t.Fatalf("expected error without planner")
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*fiber.App, *Metrics, *bytes.Buffer) {
	t.Helper()

	logger := logrus.New()
	logBuf := &bytes.Buffer{}
	logger.SetOutput(logBuf)

	metrics := NewMetrics()
	app, err := NewApp(AppOptions{
		Logger:  logger,
		Config:  cfg,
		Planner: generator.New(cfg, nil, logger),
		Metrics: metrics,
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	return app, metrics, logBuf
}

func postRender(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/render", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	return resp
}
