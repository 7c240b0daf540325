package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx, so every repository
// method can run either on the pool or inside a caller's transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
)

var (
	ErrPlayerNotFound       = errors.New("player not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationConflict = errors.New("player is already registered for this tournament")
	ErrMatchInvalid         = errors.New("match violates a table constraint")
)

func executor(db *sql.DB, exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return db
}

// translatePqError maps constraint violations to repository sentinels.
// Unknown errors are returned unchanged.
func translatePqError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqForeignKeyViolation:
		switch pqErr.Constraint {
		case "registrations_tournament_id_fkey", "matches_tournament_id_fkey":
			return ErrTournamentNotFound
		case "registrations_player_id_fkey", "matches_winner_id_fkey", "matches_loser_id_fkey":
			return ErrPlayerNotFound
		}
	case pqUniqueViolation:
		if pqErr.Constraint == "registrations_pkey" {
			return ErrRegistrationConflict
		}
	case pqCheckViolation:
		return fmt.Errorf("%w: %s", ErrMatchInvalid, pqErr.Constraint)
	}
	return err
}
