package web

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mtzanidakis/gse/internal/config"
	"github.com/mtzanidakis/gse/internal/crew"
	"github.com/mtzanidakis/gse/internal/metrics"
	"github.com/mtzanidakis/gse/internal/natsbus"
)

type recorder struct {
	mu     sync.Mutex
	topics []string
}

func (r *recorder) PublishJSON(topic string, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	return nil
}

func (r *recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.topics)
}

func testConfig() *config.Config {
	return &config.Config{
		Project: config.ProjectConfig{Name: config.Set("Test Project")},
	}
}

func withOrchestrator() (crew.Orchestrator, bool) { return crew.Local{}, true }
func withoutOrchestrator() (crew.Orchestrator, bool) { return nil, false }

func newTestServer(t *testing.T, probe crew.Probe) (*Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := NewServer(testConfig(), crew.NewBuilder(probe), nil, rec, metrics.New())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s, rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected json content type, got %q", ct)
	}
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, withoutOrchestrator)
	rec := get(t, s.Handler(), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["status"] != "ok" || body["project"] != "Test Project" {
		t.Errorf("unexpected health payload %v", body)
	}
}

func TestListPlatforms(t *testing.T) {
	s, _ := newTestServer(t, withoutOrchestrator)
	rec := get(t, s.Handler(), "/agents")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Platforms []string `json:"platforms"`
	}
	decode(t, rec, &body)
	if len(body.Platforms) != 5 || body.Platforms[0] != "OpenManus" {
		t.Errorf("unexpected platforms %v", body.Platforms)
	}
}

func TestCrewTemplateNotInstalled(t *testing.T) {
	s, events := newTestServer(t, withoutOrchestrator)
	rec := get(t, s.Handler(), "/crew/template")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["installed"] != false {
		t.Fatalf("expected installed=false, got %v", body["installed"])
	}
	if msg, _ := body["message"].(string); msg == "" {
		t.Error("expected non-empty message")
	}
	if !slices.Contains(events.Topics(), natsbus.TopicEventsCrewTemplate) {
		t.Error("expected crew template event")
	}
}

func TestCrewTemplateInstalled(t *testing.T) {
	s, _ := newTestServer(t, withOrchestrator)
	rec := get(t, s.Handler(), "/crew/template")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Installed        bool     `json:"installed"`
		AgentRoles       []string `json:"agent_roles"`
		TaskDescriptions []string `json:"task_descriptions"`
	}
	decode(t, rec, &body)
	if !body.Installed {
		t.Fatal("expected installed=true")
	}
	if want := []string{"Topic Researcher", "Launch Planner"}; !slices.Equal(body.AgentRoles, want) {
		t.Errorf("expected roles %v, got %v", want, body.AgentRoles)
	}
	if len(body.TaskDescriptions) != 2 {
		t.Errorf("expected 2 task descriptions, got %d", len(body.TaskDescriptions))
	}
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, withoutOrchestrator)
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" && got != "https://anywhere.example" {
		t.Errorf("expected origin to be allowed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/crew/template", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "X-Custom")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code >= 300 {
		t.Fatalf("expected successful preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected allow-methods header on preflight")
	}
}

func TestFrontend(t *testing.T) {
	s, _ := newTestServer(t, withoutOrchestrator)
	h := s.Handler()

	for _, path := range []string{"/", "/web/"} {
		rec := get(t, h, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "<title>") {
			t.Errorf("%s: expected index document", path)
		}
	}

	rec := get(t, h, "/web/app.js")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for asset, got %d", rec.Code)
	}

	if rec := get(t, h, "/web/missing.js"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing asset, got %d", rec.Code)
	}
	if rec := get(t, h, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", rec.Code)
	}
}

func TestFrontendDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<title>custom</title>"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.Web.FrontendDir = dir

	s, err := NewServer(cfg, crew.NewBuilder(withoutOrchestrator), nil, nil, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	rec := get(t, s.Handler(), "/")
	if !strings.Contains(rec.Body.String(), "custom") {
		t.Errorf("expected custom frontend, got %q", rec.Body.String())
	}

	cfg.Web.FrontendDir = filepath.Join(dir, "missing")
	if _, err := NewServer(cfg, crew.NewBuilder(withoutOrchestrator), nil, nil, nil); err == nil {
		t.Error("expected error for missing frontend dir")
	}
}

func TestRequestIDAndEvents(t *testing.T) {
	s, events := newTestServer(t, withoutOrchestrator)
	h := s.Handler()

	rec := get(t, h, "/health")
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("expected propagated request id, got %q", got)
	}

	get(t, h, "/metrics")

	count := 0
	for _, topic := range events.Topics() {
		if topic == natsbus.TopicEventsHTTPRequest {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 request events (metrics excluded), got %d", count)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, withoutOrchestrator)
	h := s.Handler()
	get(t, h, "/crew/template")

	rec := get(t, h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `gse_crew_template_builds_total{installed="false"} 1`) {
		t.Error("expected template build counter")
	}
	if !strings.Contains(body, `route="GET /crew/template"`) {
		t.Error("expected request counter labelled with route pattern")
	}
}

func TestGzip(t *testing.T) {
	s, _ := newTestServer(t, withoutOrchestrator)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/web/app.js", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", resp.Header.Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(zr)
	if !strings.Contains(string(body), "WebSocket") {
		t.Error("expected decompressed app.js")
	}
}

func dialFeed(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEvent waits for the feed connection to register, calls send once and
// returns the first event of typ.
func readEvent(t *testing.T, s *Server, conn *websocket.Conn, typ string, send func()) natsbus.Event {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for s.hub.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("websocket client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	send()
	conn.SetReadDeadline(deadline)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s event: %v", typ, err)
		}
		var ev natsbus.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("invalid event: %v", err)
		}
		if ev.Type == typ {
			return ev
		}
	}
}

func TestWebSocketFeed(t *testing.T) {
	s, _ := newTestServer(t, withoutOrchestrator)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.Run(ctx)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	conn := dialFeed(t, srv)

	ev := readEvent(t, s, conn, "test.event", func() {
		s.hub.Broadcast(natsbus.NewEvent("test.event", "hello"))
	})
	if ev.Payload != "hello" {
		t.Errorf("unexpected payload %v", ev.Payload)
	}
}

func TestBusEventsReachWebSocket(t *testing.T) {
	bus, err := natsbus.New(config.NATSConfig{Enabled: true, Port: -1})
	if err != nil {
		t.Fatalf("bus: %v", err)
	}
	defer bus.Close()

	client, err := natsbus.NewClient(bus)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer client.Close()

	s, err := NewServer(testConfig(), crew.NewBuilder(withOrchestrator), bus, client, metrics.New())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.Run(ctx)
	s.subscribeEvents()

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	conn := dialFeed(t, srv)

	ev := readEvent(t, s, conn, "crew.template", func() {
		resp, err := http.Get(srv.URL + "/crew/template")
		if err == nil {
			resp.Body.Close()
		}
		client.Flush()
	})
	payload, ok := ev.Payload.(map[string]any)
	if !ok || payload["installed"] != true {
		t.Errorf("unexpected payload %v", ev.Payload)
	}
}
