package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
)

type StandingService interface {
	// GetStandings returns the standings of a tournament, or of every player
	// when tournamentID is nil, ordered by score then player id.
	GetStandings(ctx context.Context, tournamentID *int) ([]*models.Standing, error)
	HasBye(ctx context.Context, tournamentID *int, playerID int) (bool, error)
}

type standingService struct {
	standingRepo   repositories.StandingRepository
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewStandingService(
	standingRepo repositories.StandingRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
) StandingService {
	return &standingService{
		standingRepo:   standingRepo,
		tournamentRepo: tournamentRepo,
		logger:         logger,
	}
}

func (s *standingService) GetStandings(ctx context.Context, tournamentID *int) ([]*models.Standing, error) {
	return loadStandings(ctx, nil, s.standingRepo, s.tournamentRepo, tournamentID)
}

func (s *standingService) HasBye(ctx context.Context, tournamentID *int, playerID int) (bool, error) {
	standings, err := s.GetStandings(ctx, tournamentID)
	if err != nil {
		return false, err
	}
	for _, st := range standings {
		if st.PlayerID == playerID {
			return st.Bye, nil
		}
	}
	return false, ErrPlayerNotFound
}

// loadStandings reads standings on exec. An empty tournament is told apart
// from a missing one by looking the tournament up.
func loadStandings(
	ctx context.Context,
	exec repositories.SQLExecutor,
	standingRepo repositories.StandingRepository,
	tournamentRepo repositories.TournamentRepository,
	tournamentID *int,
) ([]*models.Standing, error) {
	standings, err := standingRepo.List(ctx, exec, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to load standings")
	}
	if len(standings) > 0 {
		return standings, nil
	}
	if tournamentID != nil {
		if _, err := tournamentRepo.GetByID(ctx, exec, *tournamentID); err != nil {
			return nil, handleRepositoryError(err, "failed to check tournament")
		}
	}
	return []*models.Standing{}, nil
}
