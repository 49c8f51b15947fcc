package repositories

import (
	"context"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
)

// CompanyReader defines read operations for tenants.
type CompanyReader interface {
	// FindCompany retrieves the company the scope is bound to.
	FindCompany(ctx context.Context, scope domain.CompanyScope) (*domain.Company, error)

	// ListCompaniesByStatus enumerates tenant roots. It is the only unscoped read
	// and is used by the escalation scheduler to find companies to scan.
	ListCompaniesByStatus(ctx context.Context, status domain.CompanyStatus) ([]domain.Company, error)
}

// CompanyWriter defines write operations for tenants.
type CompanyWriter interface {
	// SaveCompany creates or updates a tenant root.
	SaveCompany(ctx context.Context, company domain.Company) error
}

// CompanyRepositoryFacade combines all company-related repository interfaces
type CompanyRepositoryFacade interface {
	CompanyReader
	CompanyWriter
}
