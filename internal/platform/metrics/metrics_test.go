package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Transition("approve", "under_review", "pending_authorization")
	r.Transition("approve", "under_review", "pending_authorization")
	r.GateDenied("confirm", "role_lacks_capability")
	r.Submitted()
	r.EscalationCycle(150*time.Millisecond, 2, 1, 0, 0)
	r.Notification("dropped")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.transitions.WithLabelValues("approve", "under_review", "pending_authorization")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.gateDenials.WithLabelValues("confirm", "role_lacks_capability")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.submissions))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.escalationCycles))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.escalationResults.WithLabelValues("escalated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.notifications.WithLabelValues("dropped")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Transition("approve", "a", "b")
		r.GateDenied("approve", "x")
		r.Submitted()
		r.EscalationCycle(time.Second, 1, 1, 1, 1)
		r.StoreRetry()
		r.Notification("published")
	})
}
