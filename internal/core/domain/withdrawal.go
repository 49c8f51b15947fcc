package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalRequest is submitted by a field agent on behalf of a customer.
// It is immutable once created.
type WithdrawalRequest struct {
	RequestID  string          `json:"requestID"`  // Primary Key
	CompanyID  string          `json:"companyID"`  // FK -> companies.company_id
	CustomerID string          `json:"customerID"` // Customer the funds belong to
	AgentID    string          `json:"agentID"`    // Field agent that submitted
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"` // ISO 4217
	CreatedAt  time.Time       `json:"createdAt"`
}
