package brackets

import (
	"context"

	"github.com/Dosada05/swiss-tournament/models"
)

type GenerateRoundParams struct {
	// Standings must already exclude the player sitting out on a bye and be
	// sorted by score descending.
	Standings []*models.Standing
	History   PairHistory
}

type RoundGenerator interface {
	GenerateRound(ctx context.Context, params GenerateRoundParams) ([]models.Pairing, error)

	GetName() string
}
