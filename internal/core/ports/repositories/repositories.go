package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Both the PostgreSQL and the in-memory store satisfy every field.
type RepositoryProvider struct {
	CompanyRepo  CompanyRepositoryFacade
	UserRepo     UserRepositoryFacade
	WorkflowRepo WorkflowRepositoryFacade
	AuditRepo    AuditReader
	TokenLedger  TokenLedgerReader
	Health       HealthChecker
}
