package services

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portssvc "github.com/SscSPs/withdrawal_approvals/internal/core/ports/services"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
)

// Token invalidity reasons returned with TokenInvalid errors.
const (
	TokenReasonMissing          = "token_missing"
	TokenReasonMalformed        = "token_malformed"
	TokenReasonExpired          = "token_expired"
	TokenReasonStale            = "token_stale"
	TokenReasonWorkflowMismatch = "workflow_mismatch"
	TokenReasonActorMismatch    = "actor_mismatch"
	TokenReasonNoVerifier       = "verifier_not_configured"
)

// confirmationClaims is the wire form of a step-up confirmation token.
type confirmationClaims struct {
	WorkflowID string `json:"wf"`
	jwt.RegisteredClaims
}

type jwtConfirmationVerifier struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewJWTConfirmationVerifier verifies HS256 confirmation tokens carrying sub,
// wf, jti, iat and exp. Tokens older than maxAge are rejected even if exp is later.
func NewJWTConfirmationVerifier(secret string, maxAge time.Duration, now func() time.Time) portssvc.ConfirmationVerifier {
	if now == nil {
		now = time.Now
	}
	return &jwtConfirmationVerifier{secret: []byte(secret), maxAge: maxAge, now: now}
}

var _ portssvc.ConfirmationVerifier = (*jwtConfirmationVerifier)(nil)

func (v *jwtConfirmationVerifier) Verify(ctx context.Context, rawToken string) (*domain.ConfirmationClaims, error) {
	if rawToken == "" {
		return nil, apperrors.NewTokenInvalidError(TokenReasonMissing, nil)
	}

	claims := &confirmationClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		reason := TokenReasonMalformed
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = TokenReasonExpired
		}
		return nil, apperrors.NewTokenInvalidError(reason, err)
	}

	if claims.ID == "" || claims.Subject == "" || claims.WorkflowID == "" || claims.IssuedAt == nil {
		return nil, apperrors.NewTokenInvalidError(TokenReasonMalformed, nil)
	}
	if v.maxAge > 0 && v.now().Sub(claims.IssuedAt.Time) > v.maxAge {
		return nil, apperrors.NewTokenInvalidError(TokenReasonStale, nil)
	}

	return &domain.ConfirmationClaims{
		TokenID:    claims.ID,
		WorkflowID: claims.WorkflowID,
		ActorID:    claims.Subject,
		IssuedAt:   claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

func (v *jwtConfirmationVerifier) keyFunc(*jwt.Token) (interface{}, error) {
	return v.secret, nil
}

// Fingerprint checks only the signature, so a used token is still recognised
// after it expires. Any encoding of the same signed claims yields the same value.
func (v *jwtConfirmationVerifier) Fingerprint(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		return "", apperrors.NewTokenInvalidError(TokenReasonMissing, nil)
	}
	claims := &confirmationClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", apperrors.NewTokenInvalidError(TokenReasonMalformed, err)
	}
	if claims.ID == "" || claims.WorkflowID == "" {
		return "", apperrors.NewTokenInvalidError(TokenReasonMalformed, nil)
	}
	return TokenFingerprint(claims.WorkflowID, claims.ID), nil
}

// TokenFingerprint is the blake2b-256 digest of a token's workflow and jti,
// stored in place of the raw token.
func TokenFingerprint(workflowID, tokenID string) string {
	sum := blake2b.Sum256([]byte(workflowID + "\x00" + tokenID))
	return hex.EncodeToString(sum[:])
}

// IssueConfirmationToken signs a confirmation token. The engine never issues
// tokens in production; the step-up service and tests do.
func IssueConfirmationToken(secret string, c domain.ConfirmationClaims) (string, error) {
	claims := confirmationClaims{
		WorkflowID: c.WorkflowID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.TokenID,
			Subject:   c.ActorID,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
