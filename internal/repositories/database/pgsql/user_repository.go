package pgsql

import (
	"context"

	"github.com/SscSPs/withdrawal_approvals/internal/core/domain"
	portsrepo "github.com/SscSPs/withdrawal_approvals/internal/core/ports/repositories"
	"github.com/SscSPs/withdrawal_approvals/internal/models"
)

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(base BaseRepository) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: base}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

// Helper to convert domain.User to models.User
func toModelUser(d domain.User) models.User {
	return models.User{
		UserID:        d.UserID,
		CompanyID:     d.CompanyID,
		Name:          d.Name,
		Role:          string(d.Role),
		EmailVerified: d.EmailVerified,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// Helper to convert models.User to domain.User
func toDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:        m.UserID,
		CompanyID:     m.CompanyID,
		Name:          m.Name,
		Role:          domain.Role(m.Role),
		EmailVerified: m.EmailVerified,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, scope domain.CompanyScope, user domain.User) error {
	if !scope.Owns(user.CompanyID) {
		return scopeMismatch("user")
	}
	modelUser := toModelUser(user)
	query := `
        INSERT INTO users (user_id, company_id, name, role, email_verified, created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (company_id, user_id) DO UPDATE SET
            name = EXCLUDED.name,
            role = EXCLUDED.role,
            email_verified = EXCLUDED.email_verified,
            last_updated_at = EXCLUDED.last_updated_at,
            last_updated_by = EXCLUDED.last_updated_by;
    `
	_, err := r.Pool.Exec(ctx, query,
		modelUser.UserID,
		modelUser.CompanyID,
		modelUser.Name,
		modelUser.Role,
		modelUser.EmailVerified,
		modelUser.CreatedAt,
		modelUser.CreatedBy,
		modelUser.LastUpdatedAt,
		modelUser.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "failed to save user")
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, scope domain.CompanyScope, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, company_id, name, role, email_verified, created_at, created_by, last_updated_at, last_updated_by
		FROM users
		WHERE company_id = $1 AND user_id = $2;
	`
	var modelUser models.User
	err := r.Pool.QueryRow(ctx, query, scope.CompanyID(), userID).Scan(
		&modelUser.UserID,
		&modelUser.CompanyID,
		&modelUser.Name,
		&modelUser.Role,
		&modelUser.EmailVerified,
		&modelUser.CreatedAt,
		&modelUser.CreatedBy,
		&modelUser.LastUpdatedAt,
		&modelUser.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapError(err, "failed to find user by ID "+userID)
	}

	domainUser := toDomainUser(modelUser)
	return &domainUser, nil
}
