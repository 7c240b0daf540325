package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	ListPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Player, error)
	DeleteAll(ctx context.Context, exec SQLExecutor) (int64, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (tournament_id, player_id)
		VALUES ($1, $2)
		RETURNING created_at`
	err := executor(r.db, exec).QueryRowContext(ctx, query, reg.TournamentID, reg.PlayerID).Scan(&reg.CreatedAt)
	if err != nil {
		if translated := translatePqError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to register player %d for tournament %d: %w", reg.PlayerID, reg.TournamentID, err)
	}
	return nil
}

func (r *postgresRegistrationRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM registrations WHERE tournament_id = $1`
	if err := executor(r.db, exec).QueryRowContext(ctx, query, tournamentID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count players of tournament %d: %w", tournamentID, err)
	}
	return n, nil
}

func (r *postgresRegistrationRepository) ListPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Player, error) {
	query := `
		SELECT p.id, p.name, p.created_at
		FROM registrations r
		JOIN players p ON p.id = r.player_id
		WHERE r.tournament_id = $1
		ORDER BY p.id ASC`
	rows, err := executor(r.db, exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan registered player row: %w", scanErr)
		}
		players = append(players, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during registered player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresRegistrationRepository) DeleteAll(ctx context.Context, exec SQLExecutor) (int64, error) {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM registrations`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete registrations: %w", err)
	}
	return result.RowsAffected()
}
