package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"yonledger/core/events"
)

func TestModuleMetricsObserve(t *testing.T) {
	m := ModuleMetrics()
	okBefore := testutil.ToFloat64(m.requests.WithLabelValues("vesting", "release", "success"))
	m.Observe("vesting", "release", "", false, time.Millisecond)
	if got := testutil.ToFloat64(m.requests.WithLabelValues("vesting", "release", "success")); got != okBefore+1 {
		t.Fatalf("expected success counter to increase, got %v", got)
	}
	m.Observe("vesting", "release", "no tokens to release", true, time.Millisecond)
	if got := testutil.ToFloat64(m.errors.WithLabelValues("vesting", "release", "no tokens to release")); got < 1 {
		t.Fatalf("expected error counter, got %v", got)
	}
	m.Observe("", "", "", true, 0)
	if got := testutil.ToFloat64(m.errors.WithLabelValues("unknown", "unknown", "internal")); got < 1 {
		t.Fatalf("expected unknown labels, got %v", got)
	}
}

func TestEventsEmitter(t *testing.T) {
	var emitter events.Emitter = Events()
	before := testutil.ToFloat64(Events().emitted.WithLabelValues("vesting.released"))
	emitter.Emit(events.Wrap(&events.Record{Type: "vesting.released"}))
	if got := testutil.ToFloat64(Events().emitted.WithLabelValues("vesting.released")); got != before+1 {
		t.Fatalf("expected event counter to increase, got %v", got)
	}
}
