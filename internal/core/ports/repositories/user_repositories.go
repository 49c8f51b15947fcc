package repositories

import (
	"context"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a user of the scoped company.
	FindUserByID(ctx context.Context, scope domain.CompanyScope, userID string) (*domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a user. The user's CompanyID must match the scope.
	SaveUser(ctx context.Context, scope domain.CompanyScope, user domain.User) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
