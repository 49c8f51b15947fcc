package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/middleware"
	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker"
)

// Publisher delivers one encoded event to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("publisher closed")

// NATSPublisher publishes events to core NATS behind a circuit breaker.
type NATSPublisher struct {
	conn    *nats.Conn
	publish func(subject string, data []byte) error
	breaker *gobreaker.CircuitBreaker
}

// BreakerSettings returns the circuit breaker configuration used for NATS.
func BreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Notification circuit breaker changed state",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
}

// ConnectNATS dials url and returns a publisher. The connection reconnects on its own.
func ConnectNATS(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("withdrawal-approvals"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("NATS reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	p := newBreakerPublisher(conn.Publish, BreakerSettings("nats-notifications"))
	p.conn = conn
	return p, nil
}

func newBreakerPublisher(publish func(subject string, data []byte) error, settings gobreaker.Settings) *NATSPublisher {
	return &NATSPublisher{
		publish: publish,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

var _ Publisher = (*NATSPublisher)(nil)

func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.conn != nil && p.conn.IsClosed() {
		return ErrPublisherClosed
	}
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.publish(subject, data)
	})
	return err
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// LogPublisher writes events to the structured log. It is used when NATS is not configured.
type LogPublisher struct{}

var _ Publisher = LogPublisher{}

func (LogPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	middleware.GetLoggerFromCtx(ctx).Info("Notification",
		slog.String("subject", subject),
		slog.String("payload", string(data)))
	return nil
}
