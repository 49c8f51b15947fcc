package models

import (
	"github.com/shopspring/decimal"
)

// Company is the companies row. Deadlines are stored in seconds; zero means
// "use the service default".
type Company struct {
	CompanyID                    string              `db:"company_id"`
	Name                         string              `db:"name"`
	Status                       string              `db:"status"`
	DeadlinePendingReviewSecs    int64               `db:"deadline_pending_review_secs"`
	DeadlineUnderReviewSecs      int64               `db:"deadline_under_review_secs"`
	DeadlinePendingAuthorizeSecs int64               `db:"deadline_pending_authorization_secs"`
	HighValueThreshold           decimal.NullDecimal `db:"high_value_threshold"`
	AuditFields
}

// User is the users row. Only the fields the engine reads are mapped.
type User struct {
	UserID        string `db:"user_id"`
	CompanyID     string `db:"company_id"`
	Name          string `db:"name"`
	Role          string `db:"role"`
	EmailVerified bool   `db:"email_verified"`
	AuditFields
}
