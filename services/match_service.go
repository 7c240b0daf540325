package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/metrics"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
)

type ReportMatchInput struct {
	TournamentID *int `json:"-"`
	WinnerID     int  `json:"winner_id"`
	LoserID      *int `json:"loser_id,omitempty"`
	Draw         bool `json:"draw"`
	Bye          bool `json:"bye"`
}

type MatchService interface {
	// ReportMatch appends one result to the match log. A missing loser makes it a bye.
	ReportMatch(ctx context.Context, input ReportMatchInput) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID *int) ([]*models.Match, error)
	DeleteMatches(ctx context.Context) (int64, error)
}

type matchService struct {
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	publisher      Publisher
	metrics        metrics.Recorder
	logger         *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	publisher Publisher,
	recorder metrics.Recorder,
	logger *slog.Logger,
) MatchService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if recorder == nil {
		recorder = metrics.Noop()
	}
	return &matchService{
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		publisher:      publisher,
		metrics:        recorder,
		logger:         logger,
	}
}

func (s *matchService) ReportMatch(ctx context.Context, input ReportMatchInput) (*models.Match, error) {
	match, err := buildMatch(input)
	if err != nil {
		return nil, err
	}

	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		return nil, handleRepositoryError(err, "failed to record match")
	}
	s.recorded(ctx, match)
	return match, nil
}

// recorded runs the side effects of a committed match.
func (s *matchService) recorded(ctx context.Context, match *models.Match) {
	s.metrics.MatchRecorded(match.Kind())
	s.publisher.Publish(match.TournamentID, brackets.MessageMatchRecorded, match)
	s.logger.InfoContext(ctx, "match recorded",
		slog.Int("match_id", match.ID),
		slog.String("scope", scopeAttr(match.TournamentID)),
		slog.String("kind", match.Kind()),
		slog.Int("winner_id", match.WinnerID),
	)
}

// buildMatch validates input. Beyond forcing byes for a missing loser it
// rejects results that cannot describe a real game.
func buildMatch(input ReportMatchInput) (*models.Match, error) {
	if input.WinnerID <= 0 {
		return nil, fmt.Errorf("%w: winner_id must be positive", ErrValidationFailed)
	}
	if input.TournamentID != nil && *input.TournamentID <= 0 {
		return nil, fmt.Errorf("%w: tournament id must be positive", ErrValidationFailed)
	}

	match := &models.Match{
		TournamentID: input.TournamentID,
		WinnerID:     input.WinnerID,
		LoserID:      input.LoserID,
		Draw:         input.Draw,
		Bye:          input.Bye,
	}
	if match.LoserID == nil {
		match.Bye = true
	}

	switch {
	case match.LoserID != nil && *match.LoserID <= 0:
		return nil, fmt.Errorf("%w: loser_id must be positive", ErrValidationFailed)
	case match.LoserID != nil && *match.LoserID == match.WinnerID:
		return nil, fmt.Errorf("%w: a player cannot play against themselves", ErrValidationFailed)
	case match.Bye && match.LoserID != nil:
		return nil, fmt.Errorf("%w: a bye has no opponent", ErrValidationFailed)
	case match.Bye && match.Draw:
		return nil, fmt.Errorf("%w: a draw needs an opponent", ErrValidationFailed)
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID *int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to list matches")
	}
	if len(matches) == 0 && tournamentID != nil {
		if _, err := s.tournamentRepo.GetByID(ctx, nil, *tournamentID); err != nil {
			return nil, handleRepositoryError(err, "failed to check tournament")
		}
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}

func (s *matchService) DeleteMatches(ctx context.Context) (int64, error) {
	n, err := s.matchRepo.DeleteAll(ctx, nil)
	if err != nil {
		return 0, handleRepositoryError(err, "failed to delete matches")
	}
	s.logger.WarnContext(ctx, "match log cleared", slog.Int64("count", n))
	return n, nil
}
