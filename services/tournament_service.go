package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTournamentLimit = 50
	maxTournamentLimit     = 200
)

type TournamentService interface {
	CreateTournament(ctx context.Context, name string) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
	EnterTournament(ctx context.Context, tournamentID, playerID int) (*models.Registration, error)
	CountTournamentPlayers(ctx context.Context, tournamentID int) (int, error)
	ListTournamentPlayers(ctx context.Context, tournamentID int) ([]*models.Player, error)
	// GetOverview returns the tournament with its standings and match log.
	GetOverview(ctx context.Context, id int) (*models.Tournament, error)
	DeleteTournaments(ctx context.Context) (int64, error)
	DeleteRegistrations(ctx context.Context) (int64, error)
}

type tournamentService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	standingRepo     repositories.StandingRepository
	matchRepo        repositories.MatchRepository
	logger           *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	standingRepo repositories.StandingRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		standingRepo:     standingRepo,
		matchRepo:        matchRepo,
		logger:           logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, name string) (*models.Tournament, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	tournament := &models.Tournament{Name: name}
	if err := s.tournamentRepo.Create(ctx, nil, tournament); err != nil {
		return nil, handleRepositoryError(err, "failed to create tournament")
	}

	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", tournament.ID), slog.String("name", tournament.Name))
	return tournament, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get tournament")
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	if limit <= 0 {
		limit = defaultTournamentLimit
	}
	if limit > maxTournamentLimit {
		limit = maxTournamentLimit
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrValidationFailed)
	}

	tournaments, err := s.tournamentRepo.List(ctx, nil, repositories.ListTournamentsFilter{Limit: limit, Offset: offset})
	if err != nil {
		return nil, handleRepositoryError(err, "failed to list tournaments")
	}
	if tournaments == nil {
		return []*models.Tournament{}, nil
	}
	return tournaments, nil
}

func (s *tournamentService) EnterTournament(ctx context.Context, tournamentID, playerID int) (*models.Registration, error) {
	if tournamentID <= 0 || playerID <= 0 {
		return nil, fmt.Errorf("%w: tournament and player ids must be positive", ErrValidationFailed)
	}
	reg := &models.Registration{TournamentID: tournamentID, PlayerID: playerID}
	if err := s.registrationRepo.Create(ctx, nil, reg); err != nil {
		return nil, handleRepositoryError(err, "failed to enter tournament")
	}

	s.logger.InfoContext(ctx, "player entered tournament", slog.Int("tournament_id", tournamentID), slog.Int("player_id", playerID))
	return reg, nil
}

func (s *tournamentService) CountTournamentPlayers(ctx context.Context, tournamentID int) (int, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return 0, handleRepositoryError(err, "failed to count tournament players")
	}
	return tournament.PlayerCount, nil
}

func (s *tournamentService) ListTournamentPlayers(ctx context.Context, tournamentID int) ([]*models.Player, error) {
	players, err := s.registrationRepo.ListPlayers(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to list tournament players")
	}
	if len(players) == 0 {
		if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
			return nil, handleRepositoryError(err, "failed to check tournament")
		}
		return []*models.Player{}, nil
	}
	return players, nil
}

func (s *tournamentService) GetOverview(ctx context.Context, id int) (*models.Tournament, error) {
	var (
		tournament *models.Tournament
		standings  []*models.Standing
		matches    []*models.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gctx, nil, id)
		if err != nil {
			return handleRepositoryError(err, "failed to get tournament")
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		st, err := s.standingRepo.List(gctx, nil, &id)
		if err != nil {
			return handleRepositoryError(err, "failed to load standings")
		}
		standings = st
		return nil
	})
	g.Go(func() error {
		m, err := s.matchRepo.ListByTournament(gctx, nil, &id)
		if err != nil {
			return handleRepositoryError(err, "failed to list matches")
		}
		matches = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tournament.Standings = standings
	tournament.Matches = matches
	if tournament.Standings == nil {
		tournament.Standings = []*models.Standing{}
	}
	if tournament.Matches == nil {
		tournament.Matches = []*models.Match{}
	}
	return tournament, nil
}

func (s *tournamentService) DeleteTournaments(ctx context.Context) (int64, error) {
	n, err := s.tournamentRepo.DeleteAll(ctx, nil)
	if err != nil {
		return 0, handleRepositoryError(err, "failed to delete tournaments")
	}
	s.logger.WarnContext(ctx, "all tournaments deleted", slog.Int64("count", n))
	return n, nil
}

func (s *tournamentService) DeleteRegistrations(ctx context.Context) (int64, error) {
	n, err := s.registrationRepo.DeleteAll(ctx, nil)
	if err != nil {
		return 0, handleRepositoryError(err, "failed to delete registrations")
	}
	s.logger.WarnContext(ctx, "all registrations deleted", slog.Int64("count", n))
	return n, nil
}
