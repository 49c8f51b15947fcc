package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	"github.com/SscSPs/withdrawal_approvals/internal/core/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmationVerifier(t *testing.T) {
	ctx := context.Background()

	claims := func(clock *fakeClock, ttl time.Duration) domain.ConfirmationClaims {
		now := clock.Now()
		return domain.ConfirmationClaims{TokenID: "jti-1", WorkflowID: "wf-1", ActorID: "admin-a", IssuedAt: now, ExpiresAt: now.Add(ttl)}
	}

	t.Run("valid token", func(t *testing.T) {
		clock := newFakeClock()
		v := services.NewJWTConfirmationVerifier(confirmationSecret, 5*time.Minute, clock.Now)
		raw, err := services.IssueConfirmationToken(confirmationSecret, claims(clock, 10*time.Minute))
		require.NoError(t, err)

		got, err := v.Verify(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, "jti-1", got.TokenID)
		assert.Equal(t, "wf-1", got.WorkflowID)
		assert.Equal(t, "admin-a", got.ActorID)
		assert.True(t, got.IssuedAt.Equal(t0))
	})

	tests := []struct {
		name   string
		token  func(clock *fakeClock) string
		after  time.Duration
		reason string
	}{
		{
			name:   "empty",
			token:  func(*fakeClock) string { return "" },
			reason: services.TokenReasonMissing,
		},
		{
			name:   "garbage",
			token:  func(*fakeClock) string { return "abc.def.ghi" },
			reason: services.TokenReasonMalformed,
		},
		{
			name: "wrong secret",
			token: func(c *fakeClock) string {
				raw, _ := services.IssueConfirmationToken("another-secret", claims(c, time.Hour))
				return raw
			},
			reason: services.TokenReasonMalformed,
		},
		{
			name: "expired",
			token: func(c *fakeClock) string {
				raw, _ := services.IssueConfirmationToken(confirmationSecret, claims(c, time.Minute))
				return raw
			},
			after:  2 * time.Minute,
			reason: services.TokenReasonExpired,
		},
		{
			name: "older than max age",
			token: func(c *fakeClock) string {
				raw, _ := services.IssueConfirmationToken(confirmationSecret, claims(c, time.Hour))
				return raw
			},
			after:  6 * time.Minute,
			reason: services.TokenReasonStale,
		},
		{
			name: "missing token id",
			token: func(c *fakeClock) string {
				cl := claims(c, time.Hour)
				cl.TokenID = ""
				raw, _ := services.IssueConfirmationToken(confirmationSecret, cl)
				return raw
			},
			reason: services.TokenReasonMalformed,
		},
		{
			name: "unexpected algorithm",
			token: func(c *fakeClock) string {
				now := c.Now()
				raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
					"jti": "jti-1", "sub": "admin-a", "wf": "wf-1",
					"iat": now.Unix(), "exp": now.Add(time.Hour).Unix(),
				}).SignedString([]byte(confirmationSecret))
				return raw
			},
			reason: services.TokenReasonMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			v := services.NewJWTConfirmationVerifier(confirmationSecret, 5*time.Minute, clock.Now)
			raw := tt.token(clock)
			clock.Advance(tt.after)

			_, err := v.Verify(ctx, raw)
			assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
			assert.Equal(t, tt.reason, apperrors.ReasonOf(err))
		})
	}
}

func TestTokenFingerprint(t *testing.T) {
	a := services.TokenFingerprint("wf-1", "jti-1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, services.TokenFingerprint("wf-1", "jti-1"))
	assert.NotEqual(t, a, services.TokenFingerprint("wf-1", "jti-2"))
	assert.NotEqual(t, a, services.TokenFingerprint("wf-2", "jti-1"))
}

func TestConfirmationVerifier_FingerprintIdentifiesSignedClaims(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	v := services.NewJWTConfirmationVerifier(confirmationSecret, 5*time.Minute, clock.Now)
	raw, err := services.IssueConfirmationToken(confirmationSecret, domain.ConfirmationClaims{
		TokenID: "jti-1", WorkflowID: "wf-1", ActorID: "admin-a", IssuedAt: clock.Now(), ExpiresAt: clock.Now().Add(10 * time.Minute),
	})
	require.NoError(t, err)

	fp, err := v.Fingerprint(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, services.TokenFingerprint("wf-1", "jti-1"), fp)

	// A different encoding of the same signature is the same token.
	reencoded := flipPaddingBit(raw)
	require.NotEqual(t, raw, reencoded)
	again, err := v.Fingerprint(ctx, reencoded)
	require.NoError(t, err)
	assert.Equal(t, fp, again)

	// Verify only accepts the canonical encoding.
	_, err = v.Verify(ctx, reencoded)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	assert.Equal(t, services.TokenReasonMalformed, apperrors.ReasonOf(err))

	// Expiry does not hide a token's identity.
	clock.Advance(time.Hour)
	expired, err := v.Fingerprint(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, fp, expired)

	_, err = v.Fingerprint(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	forged, err := services.IssueConfirmationToken("another-secret", domain.ConfirmationClaims{
		TokenID: "jti-1", WorkflowID: "wf-1", ActorID: "admin-a", IssuedAt: clock.Now(), ExpiresAt: clock.Now().Add(time.Minute),
	})
	require.NoError(t, err)
	_, err = v.Fingerprint(ctx, forged)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	assert.Equal(t, services.TokenReasonMalformed, apperrors.ReasonOf(err))
}

// flipPaddingBit changes the last character of a JWT so that a lenient base64
// decoder still yields the same signature bytes.
func flipPaddingBit(token string) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	last := strings.IndexByte(alphabet, token[len(token)-1])
	return token[:len(token)-1] + string(alphabet[last^1])
}
