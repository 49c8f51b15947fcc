// Package metrics records engine counters on a Prometheus registry.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "withdrawal_approvals"

// Recorder holds the engine's collectors.
type Recorder struct {
	transitions       *prometheus.CounterVec
	gateDenials       *prometheus.CounterVec
	submissions       prometheus.Counter
	escalationCycles  prometheus.Counter
	escalationResults *prometheus.CounterVec
	cycleDuration     prometheus.Histogram
	storeRetries      prometheus.Counter
	notifications     *prometheus.CounterVec
}

// NewRecorder registers the collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_transitions_total",
			Help:      "Committed workflow decisions by action and resulting state.",
		}, []string{"action", "from", "to"}),
		gateDenials: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_denials_total",
			Help:      "Authorization gate denials by action and reason.",
		}, []string{"action", "reason"}),
		submissions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "withdrawal_submissions_total",
			Help:      "Withdrawal requests accepted.",
		}),
		escalationCycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalation_cycles_total",
			Help:      "Completed escalation scheduler cycles.",
		}),
		escalationResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalation_results_total",
			Help:      "Per-workflow outcomes of escalation cycles.",
		}, []string{"outcome"}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "escalation_cycle_duration_seconds",
			Help:      "Wall time of one escalation cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
		storeRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_retries_total",
			Help:      "Transaction retries after a transient storage failure.",
		}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Outbound notifications by outcome.",
		}, []string{"outcome"}),
	}
}

func (r *Recorder) Transition(action, from, to string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(action, from, to).Inc()
}

func (r *Recorder) GateDenied(action, reason string) {
	if r == nil {
		return
	}
	r.gateDenials.WithLabelValues(action, reason).Inc()
}

func (r *Recorder) Submitted() {
	if r == nil {
		return
	}
	r.submissions.Inc()
}

// EscalationCycle records one finished cycle and its per-workflow outcomes.
func (r *Recorder) EscalationCycle(d time.Duration, escalated, flagged, conflicts, failures int) {
	if r == nil {
		return
	}
	r.escalationCycles.Inc()
	r.cycleDuration.Observe(d.Seconds())
	r.escalationResults.WithLabelValues("escalated").Add(float64(escalated))
	r.escalationResults.WithLabelValues("flagged").Add(float64(flagged))
	r.escalationResults.WithLabelValues("conflict").Add(float64(conflicts))
	r.escalationResults.WithLabelValues("failure").Add(float64(failures))
}

func (r *Recorder) StoreRetry() {
	if r == nil {
		return
	}
	r.storeRetries.Inc()
}

// Notification counts an outbound event; outcome is published, failed or dropped.
func (r *Recorder) Notification(outcome string) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(outcome).Inc()
}
