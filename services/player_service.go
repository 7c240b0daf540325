package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
)

type PlayerService interface {
	RegisterPlayer(ctx context.Context, name string) (*models.Player, error)
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	CountPlayers(ctx context.Context) (int, error)
	// DeletePlayers removes every player together with their registrations and matches.
	DeletePlayers(ctx context.Context) (int64, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, logger *slog.Logger) PlayerService {
	return &playerService{playerRepo: playerRepo, logger: logger}
}

func (s *playerService) RegisterPlayer(ctx context.Context, name string) (*models.Player, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	player := &models.Player{Name: name}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		return nil, handleRepositoryError(err, "failed to register player")
	}

	s.logger.InfoContext(ctx, "player registered", slog.Int("player_id", player.ID), slog.String("name", player.Name))
	return player, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get player")
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx, nil)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to list players")
	}
	if players == nil {
		return []*models.Player{}, nil
	}
	return players, nil
}

func (s *playerService) CountPlayers(ctx context.Context) (int, error) {
	n, err := s.playerRepo.Count(ctx, nil)
	if err != nil {
		return 0, handleRepositoryError(err, "failed to count players")
	}
	return n, nil
}

func (s *playerService) DeletePlayers(ctx context.Context) (int64, error) {
	n, err := s.playerRepo.DeleteAll(ctx, nil)
	if err != nil {
		return 0, handleRepositoryError(err, "failed to delete players")
	}
	s.logger.WarnContext(ctx, "all players deleted", slog.Int64("count", n))
	return n, nil
}
