package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portsrepo "github.com/SscSPs/withdrawal_approvals/internal/core/ports/repositories"
	"github.com/SscSPs/withdrawal_approvals/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxCompanyRepository struct {
	BaseRepository
}

func newPgxCompanyRepository(base BaseRepository) portsrepo.CompanyRepositoryFacade {
	return &PgxCompanyRepository{BaseRepository: base}
}

var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

const companyColumns = `company_id, name, status, deadline_pending_review_secs, deadline_under_review_secs,
	deadline_pending_authorization_secs, high_value_threshold, created_at, created_by, last_updated_at, last_updated_by`

func toModelCompany(d domain.Company) models.Company {
	m := models.Company{
		CompanyID:                    d.CompanyID,
		Name:                         d.Name,
		Status:                       string(d.Status),
		DeadlinePendingReviewSecs:    int64(d.EscalationPolicy.PendingReview / time.Second),
		DeadlineUnderReviewSecs:      int64(d.EscalationPolicy.UnderReview / time.Second),
		DeadlinePendingAuthorizeSecs: int64(d.EscalationPolicy.PendingAuthorization / time.Second),
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
	if d.HighValueThreshold != nil {
		m.HighValueThreshold = decimal.NewNullDecimal(*d.HighValueThreshold)
	}
	return m
}

func toDomainCompany(m models.Company) domain.Company {
	d := domain.Company{
		CompanyID: m.CompanyID,
		Name:      m.Name,
		Status:    domain.CompanyStatus(m.Status),
		EscalationPolicy: domain.EscalationPolicy{
			PendingReview:        time.Duration(m.DeadlinePendingReviewSecs) * time.Second,
			UnderReview:          time.Duration(m.DeadlineUnderReviewSecs) * time.Second,
			PendingAuthorization: time.Duration(m.DeadlinePendingAuthorizeSecs) * time.Second,
		},
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.HighValueThreshold.Valid {
		threshold := m.HighValueThreshold.Decimal
		d.HighValueThreshold = &threshold
	}
	return d
}

func scanCompany(row pgx.Row) (models.Company, error) {
	var m models.Company
	err := row.Scan(
		&m.CompanyID,
		&m.Name,
		&m.Status,
		&m.DeadlinePendingReviewSecs,
		&m.DeadlineUnderReviewSecs,
		&m.DeadlinePendingAuthorizeSecs,
		&m.HighValueThreshold,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxCompanyRepository) FindCompany(ctx context.Context, scope domain.CompanyScope) (*domain.Company, error) {
	if !scope.Valid() {
		return nil, apperrors.NewNotFoundError("company not found")
	}
	query := `SELECT ` + companyColumns + ` FROM companies WHERE company_id = $1;`
	m, err := scanCompany(r.Pool.QueryRow(ctx, query, scope.CompanyID()))
	if err != nil {
		return nil, mapError(err, "failed to find company "+scope.CompanyID())
	}
	company := toDomainCompany(m)
	return &company, nil
}

func (r *PgxCompanyRepository) ListCompaniesByStatus(ctx context.Context, status domain.CompanyStatus) ([]domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE status = $1 ORDER BY company_id;`
	rows, err := r.Pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, mapError(err, "failed to list companies")
	}
	defer rows.Close()

	companies := []domain.Company{}
	for rows.Next() {
		m, err := scanCompany(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan company row")
		}
		companies = append(companies, toDomainCompany(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating company rows")
	}
	return companies, nil
}

func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	if _, err := domain.ScopeFor(company.CompanyID); err != nil {
		return apperrors.NewValidationFailedError("company id is required")
	}
	m := toModelCompany(company)
	query := `
        INSERT INTO companies (` + companyColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (company_id) DO UPDATE SET
            name = EXCLUDED.name,
            status = EXCLUDED.status,
            deadline_pending_review_secs = EXCLUDED.deadline_pending_review_secs,
            deadline_under_review_secs = EXCLUDED.deadline_under_review_secs,
            deadline_pending_authorization_secs = EXCLUDED.deadline_pending_authorization_secs,
            high_value_threshold = EXCLUDED.high_value_threshold,
            last_updated_at = EXCLUDED.last_updated_at,
            last_updated_by = EXCLUDED.last_updated_by;
    `
	_, err := r.Pool.Exec(ctx, query,
		m.CompanyID,
		m.Name,
		m.Status,
		m.DeadlinePendingReviewSecs,
		m.DeadlineUnderReviewSecs,
		m.DeadlinePendingAuthorizeSecs,
		m.HighValueThreshold,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "failed to save company")
	}
	return nil
}
