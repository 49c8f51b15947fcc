package pgsql

import (
	"time"

	portsrepo "github.com/SscSPs/withdrawal_approvals/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool, writeTimeout time.Duration) portsrepo.RepositoryProvider {
	base := BaseRepository{Pool: dbPool, WriteTimeout: writeTimeout}
	auditRepo := newPgxAuditRepository(base)

	return portsrepo.RepositoryProvider{
		CompanyRepo:  newPgxCompanyRepository(base),
		UserRepo:     newPgxUserRepository(base),
		WorkflowRepo: newPgxWorkflowRepository(base),
		AuditRepo:    auditRepo,
		TokenLedger:  auditRepo,
		Health:       &base,
	}
}
