package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_CountsAndExposes(t *testing.T) {
	r := NewRegistry()
	r.Turn(OutcomeOK)
	r.Turn(OutcomeOK)
	r.Turn(OutcomeMalformed)
	r.SubtotalRepairs.Inc()

	if got := testutil.ToFloat64(r.Turns.WithLabelValues(OutcomeOK)); got != 2 {
		t.Errorf("ok turns: got %v", got)
	}
	if got := testutil.ToFloat64(r.SubtotalRepairs); got != 1 {
		t.Errorf("repairs: got %v", got)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, name := range []string{
		`orderbot_turns_total{outcome="malformed"} 1`,
		"orderbot_subtotal_repairs_total 1",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("exposition missing %q", name)
		}
	}
}
