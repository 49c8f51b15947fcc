package domain

import "time"

// ConfirmationClaims is what a verified confirmation token asserts.
type ConfirmationClaims struct {
	TokenID    string
	WorkflowID string
	ActorID    string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// ConfirmationTokenUse is a row of the single-use ledger.
type ConfirmationTokenUse struct {
	Fingerprint string    `json:"fingerprint"`
	CompanyID   string    `json:"companyID"`
	WorkflowID  string    `json:"workflowID"`
	ActorID     string    `json:"actorID"`
	UsedAt      time.Time `json:"usedAt"`
}
