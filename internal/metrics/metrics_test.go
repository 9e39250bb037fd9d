package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetRiskLevel(t *testing.T) {
	SetRiskLevel("medium")

	if got := testutil.ToFloat64(RiskLevel.WithLabelValues("medium")); got != 1 {
		t.Errorf("expected medium gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(RiskLevel.WithLabelValues("high")); got != 0 {
		t.Errorf("expected high gauge 0, got %v", got)
	}

	SetRiskLevel("high")
	if got := testutil.ToFloat64(RiskLevel.WithLabelValues("medium")); got != 0 {
		t.Errorf("expected medium gauge reset to 0, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	SessionsRecorded.WithLabelValues("scroll").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "screentime_sessions_recorded_total") {
		t.Error("expected sessions counter in metrics output")
	}

	rec = httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("unexpected health response: %d %q", rec.Code, rec.Body.String())
	}
}
