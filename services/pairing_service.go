package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/metrics"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
)

type GenerateRoundOptions struct {
	// AvoidRematches overrides the service default when set.
	AvoidRematches *bool `json:"avoid_rematches,omitempty"`
}

type PairingService interface {
	// GenerateNextRound pairs the next round of a tournament, or of the global
	// pool when tournamentID is nil. For an odd field it records the bye
	// before pairing, so the call writes to the match log.
	GenerateNextRound(ctx context.Context, tournamentID *int, opts GenerateRoundOptions) (*models.Round, error)
}

type PairingServiceDeps struct {
	Tx               TxRunner
	PlayerRepo       repositories.PlayerRepository
	TournamentRepo   repositories.TournamentRepository
	RegistrationRepo repositories.RegistrationRepository
	MatchRepo        repositories.MatchRepository
	StandingRepo     repositories.StandingRepository
	Archive          ArchiveService
	Publisher        Publisher
	Metrics          metrics.Recorder
	Logger           *slog.Logger
	AvoidRematches   bool
}

type pairingService struct {
	tx               TxRunner
	playerRepo       repositories.PlayerRepository
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	matchRepo        repositories.MatchRepository
	standingRepo     repositories.StandingRepository
	archive          ArchiveService
	publisher        Publisher
	metrics          metrics.Recorder
	logger           *slog.Logger
	avoidRematches   bool
}

func NewPairingService(deps PairingServiceDeps) PairingService {
	s := &pairingService{
		tx:               deps.Tx,
		playerRepo:       deps.PlayerRepo,
		tournamentRepo:   deps.TournamentRepo,
		registrationRepo: deps.RegistrationRepo,
		matchRepo:        deps.MatchRepo,
		standingRepo:     deps.StandingRepo,
		archive:          deps.Archive,
		publisher:        deps.Publisher,
		metrics:          deps.Metrics,
		logger:           deps.Logger,
		avoidRematches:   deps.AvoidRematches,
	}
	if s.archive == nil {
		s.archive = NewArchiveService(nil, deps.Logger)
	}
	if s.publisher == nil {
		s.publisher = noopPublisher{}
	}
	if s.metrics == nil {
		s.metrics = metrics.Noop()
	}
	return s
}

func (s *pairingService) GenerateNextRound(ctx context.Context, tournamentID *int, opts GenerateRoundOptions) (*models.Round, error) {
	avoid := s.avoidRematches
	if opts.AvoidRematches != nil {
		avoid = *opts.AvoidRematches
	}
	generator := brackets.NewSwissGenerator(avoid)

	var round *models.Round
	err := s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		round, err = s.pairInTx(ctx, exec, tournamentID, generator, avoid)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "round generation failed",
			slog.String("scope", scopeAttr(tournamentID)),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.afterCommit(ctx, round, generator.GetName())
	return round, nil
}

// pairInTx holds the scope lock for the whole round so that two callers
// cannot both record a bye for the same odd round.
func (s *pairingService) pairInTx(
	ctx context.Context,
	exec repositories.SQLExecutor,
	tournamentID *int,
	generator brackets.RoundGenerator,
	avoidRematches bool,
) (*models.Round, error) {
	if err := s.matchRepo.LockScope(ctx, exec, tournamentID); err != nil {
		return nil, handleRepositoryError(err, "failed to lock pairing scope")
	}

	standings, err := loadStandings(ctx, exec, s.standingRepo, s.tournamentRepo, tournamentID)
	if err != nil {
		return nil, err
	}
	n, err := s.countPlayers(ctx, exec, tournamentID)
	if err != nil {
		return nil, err
	}
	if n != len(standings) {
		return nil, fmt.Errorf("%w: %d players counted but %d standings rows", ErrInvalidState, n, len(standings))
	}

	round := &models.Round{TournamentID: tournamentID}
	working := standings

	if n%2 == 1 {
		idx := brackets.SelectBye(standings)
		if idx < 0 {
			return nil, ErrNoByeCandidate
		}
		recipient := standings[idx].PlayerID

		byeMatch := &models.Match{TournamentID: tournamentID, WinnerID: recipient, Bye: true}
		if err := s.matchRepo.Create(ctx, exec, byeMatch); err != nil {
			return nil, handleRepositoryError(err, "failed to record bye")
		}
		round.ByeMatch = byeMatch

		standings, err = loadStandings(ctx, exec, s.standingRepo, s.tournamentRepo, tournamentID)
		if err != nil {
			return nil, err
		}
		for _, st := range standings {
			if st.PlayerID == recipient {
				round.Bye = st
				break
			}
		}
		if round.Bye == nil {
			return nil, fmt.Errorf("%w: bye recipient %d missing from refreshed standings", ErrInvalidState, recipient)
		}
		working = brackets.WithoutPlayer(standings, recipient)
	}

	var history brackets.PairHistory
	if avoidRematches {
		matches, err := s.matchRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return nil, handleRepositoryError(err, "failed to load match history")
		}
		history = brackets.NewPairHistory(matches)
	}

	pairings, err := generator.GenerateRound(ctx, brackets.GenerateRoundParams{Standings: working, History: history})
	if err != nil {
		if errors.Is(err, brackets.ErrOddPlayerCount) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		return nil, err
	}

	round.Pairings = pairings
	round.Standings = standings
	return round, nil
}

// countPlayers returns N: registrations in a tournament, every player in global mode.
func (s *pairingService) countPlayers(ctx context.Context, exec repositories.SQLExecutor, tournamentID *int) (int, error) {
	var (
		n   int
		err error
	)
	if tournamentID == nil {
		n, err = s.playerRepo.Count(ctx, exec)
	} else {
		n, err = s.registrationRepo.CountByTournament(ctx, exec, *tournamentID)
	}
	if err != nil {
		return 0, handleRepositoryError(err, "failed to count players")
	}
	return n, nil
}

// afterCommit runs the side effects of a committed round. None of them can
// fail the round.
func (s *pairingService) afterCommit(ctx context.Context, round *models.Round, generatorName string) {
	scope := metrics.Scope(round.TournamentID)
	s.metrics.RoundGenerated(scope)

	attrs := []any{
		slog.String("scope", scopeAttr(round.TournamentID)),
		slog.String("generator", generatorName),
		slog.Int("pairings", len(round.Pairings)),
	}
	if round.ByeMatch != nil {
		s.metrics.ByeAssigned(scope)
		s.metrics.MatchRecorded(round.ByeMatch.Kind())
		s.publisher.Publish(round.TournamentID, brackets.MessageMatchRecorded, round.ByeMatch)
		attrs = append(attrs, slog.Int("bye_player_id", round.ByeMatch.WinnerID))
	}
	s.publisher.Publish(round.TournamentID, brackets.MessageRoundGenerated, round)
	s.logger.InfoContext(ctx, "round generated", attrs...)

	if _, err := s.archive.ArchiveRound(ctx, round); err != nil {
		s.logger.ErrorContext(ctx, "failed to archive round",
			slog.String("scope", scopeAttr(round.TournamentID)),
			slog.Any("error", err),
		)
	}
}
