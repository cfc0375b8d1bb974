package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/agents", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "/agents", 200, 5*time.Millisecond)

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/agents", "200")); got != 2 {
		t.Errorf("expected 2 requests, got %v", got)
	}
}

func TestTemplateBuiltAndSpaceChecked(t *testing.T) {
	m := New()
	m.TemplateBuilt(false)
	m.SpaceChecked(nil)
	m.SpaceChecked(errors.New("down"))

	if got := testutil.ToFloat64(m.templateBuilds.WithLabelValues("false")); got != 1 {
		t.Errorf("expected 1 not-installed build, got %v", got)
	}
	if got := testutil.ToFloat64(m.spaceChecks.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed check, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.TemplateBuilt(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `gse_crew_template_builds_total{installed="true"} 1`) {
		t.Errorf("expected template build counter in output")
	}
}
