package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestNATSPublisher_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	p := newBreakerPublisher(func(subject string, data []byte) error {
		calls++
		return errors.New("nats: no servers available")
	}, BreakerSettings("test"))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		assert.Error(t, p.Publish(ctx, "notifications.withdrawals.x", nil))
	}
	assert.Equal(t, 5, calls)

	err := p.Publish(ctx, "notifications.withdrawals.x", nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, calls, "open breaker short-circuits the call")
}

func TestNATSPublisher_PassesSubjectAndPayload(t *testing.T) {
	var gotSubject string
	var gotData []byte
	p := newBreakerPublisher(func(subject string, data []byte) error {
		gotSubject, gotData = subject, data
		return nil
	}, BreakerSettings("test"))

	assert.NoError(t, p.Publish(context.Background(), "notifications.withdrawals.workflow.transitioned", []byte(`{"a":1}`)))
	assert.Equal(t, "notifications.withdrawals.workflow.transitioned", gotSubject)
	assert.Equal(t, []byte(`{"a":1}`), gotData)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, "s", nil), context.Canceled)
}
