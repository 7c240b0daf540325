package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

type StandingRepository interface {
	// List returns the standings of a tournament, or of the global pool when
	// tournamentID is nil, ordered by score descending then player id ascending.
	List(ctx context.Context, exec SQLExecutor, tournamentID *int) ([]*models.Standing, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) List(ctx context.Context, exec SQLExecutor, tournamentID *int) ([]*models.Standing, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if tournamentID != nil {
		rows, err = executor(r.db, exec).QueryContext(ctx, `
			SELECT tournament_id, player_id, name, wins, draws, losses, score, oms, matches, bye
			FROM v_standings
			WHERE tournament_id = $1
			ORDER BY score DESC, player_id ASC`, *tournamentID)
	} else {
		rows, err = executor(r.db, exec).QueryContext(ctx, `
			SELECT tournament_id, player_id, name, wins, draws, losses, score, oms, matches, bye
			FROM v_global_standings
			ORDER BY score DESC, player_id ASC`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer rows.Close()

	standings := make([]*models.Standing, 0)
	for rows.Next() {
		s, scanErr := scanStanding(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during standing rows iteration: %w", err)
	}
	return standings, nil
}

func scanStanding(rowScanner interface{ Scan(...interface{}) error }) (*models.Standing, error) {
	var (
		s          models.Standing
		tournament sql.NullInt64
	)
	err := rowScanner.Scan(
		&tournament, &s.PlayerID, &s.Name, &s.Wins, &s.Draws, &s.Losses,
		&s.Score, &s.OMS, &s.Matches, &s.Bye,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan standing row: %w", err)
	}
	s.TournamentID = nullableInt(tournament)
	return &s, nil
}
