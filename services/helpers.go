package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/repositories"
)

// Publisher pushes live updates to websocket rooms. *brackets.Hub satisfies it.
type Publisher interface {
	Publish(tournamentID *int, messageType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(*int, string, interface{}) {}

// TxRunner runs fn inside one database transaction. The executor handed to
// fn is only valid until fn returns.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

type sqlTxRunner struct {
	conn *sql.DB
}

func NewTxRunner(conn *sql.DB) TxRunner {
	return &sqlTxRunner{conn: conn}
}

func (r *sqlTxRunner) WithTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return db.WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		return fn(tx)
	})
}

// handleRepositoryError converts repository sentinels into service errors.
// Anything unknown is a storage failure and is wrapped with op.
func handleRepositoryError(err error, op string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrRegistrationConflict):
		return ErrRegistrationConflict
	case errors.Is(err, repositories.ErrMatchInvalid):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if len(name) > 255 {
		return "", fmt.Errorf("%w: name is longer than 255 characters", ErrValidationFailed)
	}
	return name, nil
}

func scopeAttr(tournamentID *int) string {
	if tournamentID == nil {
		return "global"
	}
	return fmt.Sprintf("%d", *tournamentID)
}
