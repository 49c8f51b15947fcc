package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portssvc "github.com/SscSPs/withdrawal_approvals/internal/core/ports/services"
	"github.com/SscSPs/withdrawal_approvals/internal/middleware"
	"github.com/SscSPs/withdrawal_approvals/internal/platform/metrics"
	"golang.org/x/sync/errgroup"
)

// SubjectPrefix is prepended to every event type.
const SubjectPrefix = "notifications.withdrawals."

// Delivery outcomes recorded in metrics.
const (
	OutcomePublished = "published"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
)

// Subject returns the NATS subject for an event type.
func Subject(t domain.EventType) string {
	return SubjectPrefix + string(t)
}

// Dispatcher queues committed events and publishes them from a fixed worker pool.
// Emit never blocks; when the buffer is full the event is dropped and logged.
type Dispatcher struct {
	events         chan domain.WorkflowEvent
	publisher      Publisher
	workers        int
	publishTimeout time.Duration
	metrics        *metrics.Recorder
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBuffer sets the queue length.
func WithBuffer(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.events = make(chan domain.WorkflowEvent, n)
		}
	}
}

// WithWorkers sets how many goroutines publish concurrently.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithPublishTimeout bounds a single publish call.
func WithPublishTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		d.publishTimeout = t
	}
}

// WithMetrics records delivery outcomes.
func WithMetrics(m *metrics.Recorder) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func NewDispatcher(publisher Publisher, options ...Option) *Dispatcher {
	if publisher == nil {
		publisher = LogPublisher{}
	}
	d := &Dispatcher{
		events:         make(chan domain.WorkflowEvent, 256),
		publisher:      publisher,
		workers:        2,
		publishTimeout: 5 * time.Second,
	}
	for _, option := range options {
		option(d)
	}
	return d
}

var _ portssvc.EventEmitter = (*Dispatcher)(nil)

// Emit queues event for delivery.
func (d *Dispatcher) Emit(ctx context.Context, event domain.WorkflowEvent) {
	select {
	case d.events <- event:
	default:
		d.metrics.Notification(OutcomeDropped)
		middleware.GetLoggerFromCtx(ctx).Warn("Notification buffer full, dropping event",
			slog.String("event_type", string(event.Type)),
			slog.String("workflow_id", event.WorkflowID))
	}
}

// Run publishes queued events until ctx is cancelled, then flushes what is
// already buffered and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case event := <-d.events:
					d.deliver(gctx, event)
				}
			}
		})
	}
	err := g.Wait()

	flushCtx := context.WithoutCancel(ctx)
	for {
		select {
		case event := <-d.events:
			d.deliver(flushCtx, event)
		default:
			return err
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event domain.WorkflowEvent) {
	logger := middleware.GetLoggerFromCtx(ctx)
	subject := Subject(event.Type)

	data, err := json.Marshal(event)
	if err != nil {
		d.metrics.Notification(OutcomeFailed)
		logger.Error("Failed to encode notification", slog.String("subject", subject), slog.String("error", err.Error()))
		return
	}

	pctx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()
	if err := d.publisher.Publish(pctx, subject, data); err != nil {
		d.metrics.Notification(OutcomeFailed)
		logger.Warn("Failed to publish notification (non-fatal)",
			slog.String("subject", subject),
			slog.String("workflow_id", event.WorkflowID),
			slog.String("error", err.Error()))
		return
	}
	d.metrics.Notification(OutcomePublished)
	logger.Debug("Notification published", slog.String("subject", subject), slog.String("workflow_id", event.WorkflowID))
}
