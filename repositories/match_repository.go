package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

// globalLockKey is the advisory lock key for the global pool. Tournament ids
// are SERIAL and start at 1, so 0 never collides with a tournament.
const globalLockKey = 0

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	// ListByTournament returns the match log of a tournament, or every match when tournamentID is nil.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID *int) ([]*models.Match, error)
	DeleteAll(ctx context.Context, exec SQLExecutor) (int64, error)
	// LockScope takes a transaction-scoped advisory lock for a tournament (or the
	// global pool). exec must be a transaction, the lock is released on commit or rollback.
	LockScope(ctx context.Context, exec SQLExecutor, tournamentID *int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, winner_id, loser_id, draw, bye)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		m.TournamentID,
		m.WinnerID,
		m.LoserID,
		m.Draw,
		m.Bye,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if translated := translatePqError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID *int) ([]*models.Match, error) {
	query := `
		SELECT id, tournament_id, winner_id, loser_id, draw, bye, created_at
		FROM matches`
	args := []interface{}{}
	if tournamentID != nil {
		query += " WHERE tournament_id = $1"
		args = append(args, *tournamentID)
	}
	query += " ORDER BY id ASC"

	rows, err := executor(r.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var (
			m          models.Match
			tournament sql.NullInt64
			loser      sql.NullInt64
		)
		if scanErr := rows.Scan(&m.ID, &tournament, &m.WinnerID, &loser, &m.Draw, &m.Bye, &m.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		m.TournamentID = nullableInt(tournament)
		m.LoserID = nullableInt(loser)
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) DeleteAll(ctx context.Context, exec SQLExecutor) (int64, error) {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM matches`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresMatchRepository) LockScope(ctx context.Context, exec SQLExecutor, tournamentID *int) error {
	if exec == nil {
		return fmt.Errorf("LockScope requires a transaction")
	}
	key := int64(globalLockKey)
	if tournamentID != nil {
		key = int64(*tournamentID)
	}
	if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, key); err != nil {
		return fmt.Errorf("failed to lock pairing scope %d: %w", key, err)
	}
	return nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
