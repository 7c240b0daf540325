package handlers

import (
	"context"
	"time"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/services"
)

type fakeStandingService struct {
	GetStandingsFunc func(ctx context.Context, tournamentID *int) ([]*models.Standing, error)
	HasByeFunc       func(ctx context.Context, tournamentID *int, playerID int) (bool, error)
}

func (f *fakeStandingService) GetStandings(ctx context.Context, tournamentID *int) ([]*models.Standing, error) {
	return f.GetStandingsFunc(ctx, tournamentID)
}

func (f *fakeStandingService) HasBye(ctx context.Context, tournamentID *int, playerID int) (bool, error) {
	return f.HasByeFunc(ctx, tournamentID, playerID)
}

type fakeMatchService struct {
	ReportMatchFunc func(ctx context.Context, input services.ReportMatchInput) (*models.Match, error)
	ListMatchesFunc func(ctx context.Context, tournamentID *int) ([]*models.Match, error)
}

func (f *fakeMatchService) ReportMatch(ctx context.Context, input services.ReportMatchInput) (*models.Match, error) {
	return f.ReportMatchFunc(ctx, input)
}

func (f *fakeMatchService) ListMatches(ctx context.Context, tournamentID *int) ([]*models.Match, error) {
	return f.ListMatchesFunc(ctx, tournamentID)
}

func (f *fakeMatchService) DeleteMatches(ctx context.Context) (int64, error) { return 0, nil }

type fakePairingService struct {
	GenerateNextRoundFunc func(ctx context.Context, tournamentID *int, opts services.GenerateRoundOptions) (*models.Round, error)
}

func (f *fakePairingService) GenerateNextRound(ctx context.Context, tournamentID *int, opts services.GenerateRoundOptions) (*models.Round, error) {
	return f.GenerateNextRoundFunc(ctx, tournamentID, opts)
}

type fakePlayerService struct {
	RegisterPlayerFunc func(ctx context.Context, name string) (*models.Player, error)
	GetPlayerFunc      func(ctx context.Context, id int) (*models.Player, error)
	ListPlayersFunc    func(ctx context.Context) ([]*models.Player, error)
}

func (f *fakePlayerService) RegisterPlayer(ctx context.Context, name string) (*models.Player, error) {
	return f.RegisterPlayerFunc(ctx, name)
}

func (f *fakePlayerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	return f.GetPlayerFunc(ctx, id)
}

func (f *fakePlayerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	return f.ListPlayersFunc(ctx)
}

func (f *fakePlayerService) CountPlayers(ctx context.Context) (int, error)    { return 0, nil }
func (f *fakePlayerService) DeletePlayers(ctx context.Context) (int64, error) { return 0, nil }

type fakeTournamentService struct {
	GetTournamentFunc   func(ctx context.Context, id int) (*models.Tournament, error)
	GetOverviewFunc     func(ctx context.Context, id int) (*models.Tournament, error)
	EnterTournamentFunc func(ctx context.Context, tournamentID, playerID int) (*models.Registration, error)
}

func (f *fakeTournamentService) CreateTournament(ctx context.Context, name string) (*models.Tournament, error) {
	return &models.Tournament{ID: 1, Name: name}, nil
}

func (f *fakeTournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	return f.GetTournamentFunc(ctx, id)
}

func (f *fakeTournamentService) ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	return []*models.Tournament{}, nil
}

func (f *fakeTournamentService) EnterTournament(ctx context.Context, tournamentID, playerID int) (*models.Registration, error) {
	return f.EnterTournamentFunc(ctx, tournamentID, playerID)
}

func (f *fakeTournamentService) CountTournamentPlayers(ctx context.Context, tournamentID int) (int, error) {
	return 0, nil
}

func (f *fakeTournamentService) ListTournamentPlayers(ctx context.Context, tournamentID int) ([]*models.Player, error) {
	return []*models.Player{}, nil
}

func (f *fakeTournamentService) GetOverview(ctx context.Context, id int) (*models.Tournament, error) {
	return f.GetOverviewFunc(ctx, id)
}

func (f *fakeTournamentService) DeleteTournaments(ctx context.Context) (int64, error)   { return 0, nil }
func (f *fakeTournamentService) DeleteRegistrations(ctx context.Context) (int64, error) { return 0, nil }

type fakeAuthService struct {
	LoginFunc func(ctx context.Context, password string) (string, time.Time, error)
}

func (f *fakeAuthService) Login(ctx context.Context, password string) (string, time.Time, error) {
	return f.LoginFunc(ctx, password)
}

func intPtr(v int) *int { return &v }
