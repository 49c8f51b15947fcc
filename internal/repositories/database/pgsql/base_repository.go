package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/SscSPs/withdrawal_approvals/internal/apperrors"
	portsrepo "github.com/SscSPs/withdrawal_approvals/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgSerializationFailed = "40001"
	pgDeadlockDetected    = "40P01"
	pgAdminShutdown       = "57P01"
	pgCannotConnectNow    = "57P03"
)

// txStarter is the part of *pgxpool.Pool that opens transactions.
type txStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
	// WriteTimeout bounds the commit phase of a write. Writes run on a context
	// detached from the caller's cancellation so a started transition completes.
	WriteTimeout time.Duration

	starter txStarter // replaces Pool.Begin when set
}

var _ portsrepo.TransactionManager = (*BaseRepository)(nil)
var _ portsrepo.HealthChecker = (*BaseRepository)(nil)

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	var starter txStarter = r.Pool
	if r.starter != nil {
		starter = r.starter
	}
	tx, err := starter.Begin(ctx)
	if err != nil {
		return nil, mapError(err, "failed to begin transaction")
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return mapError(err, "failed to commit transaction")
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return mapError(err, "failed to rollback transaction")
	}
	return nil
}

// Ping checks the pool can reach the database.
func (r *BaseRepository) Ping(ctx context.Context) error {
	if err := r.Pool.Ping(ctx); err != nil {
		return mapError(err, "database unreachable")
	}
	return nil
}

// writeContext returns a context for the write phase that ignores the caller's
// cancellation but keeps its values.
func (r *BaseRepository) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := r.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// inTx runs fn in a transaction on a detached write context.
func (r *BaseRepository) inTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	wctx, cancel := r.writeContext(ctx)
	defer cancel()

	tx, err := r.Begin(wctx)
	if err != nil {
		return err
	}
	defer r.Rollback(wctx, tx) // Will be ignored if transaction is committed successfully

	if err := fn(wctx, tx); err != nil {
		return err
	}
	return r.Commit(wctx, tx)
}

// mapError converts a driver error into an application error. Transient
// failures become StorageUnavailable so the service layer can retry them.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError("resource not found")
	}
	if isTransient(err) {
		return apperrors.NewStorageUnavailableError(msg, err)
	}
	return apperrors.NewAppError(500, msg, err)
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailed, pgDeadlockDetected, pgAdminShutdown, pgCannotConnectNow:
			return true
		}
		// Class 08: connection exceptions.
		return len(pgErr.Code) == 5 && pgErr.Code[:2] == "08"
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func scopeMismatch(kind string) error {
	return apperrors.NewValidationFailedError(fmt.Sprintf("%s company does not match scope", kind))
}
