package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

var ErrOddPlayerCount = errors.New("cannot pair an odd number of players")

// PairHistory records which players have already met.
type PairHistory map[[2]int]struct{}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// NewPairHistory builds the history from a match log. Byes are skipped.
func NewPairHistory(matches []*models.Match) PairHistory {
	h := make(PairHistory, len(matches))
	for _, m := range matches {
		if m == nil || m.LoserID == nil {
			continue
		}
		h[pairKey(m.WinnerID, *m.LoserID)] = struct{}{}
	}
	return h
}

func (h PairHistory) Played(a, b int) bool {
	if h == nil {
		return false
	}
	_, ok := h[pairKey(a, b)]
	return ok
}

// MaxMatches returns the highest match count in the standings.
func MaxMatches(standings []*models.Standing) int {
	m := 0
	for _, s := range standings {
		if s.Matches > m {
			m = s.Matches
		}
	}
	return m
}

// SelectBye picks the player who sits out this round, scanning from the bottom
// of the standings. The first player without a bye who has played fewer than
// the maximum number of matches wins. When nobody is behind on matches (the
// first round, or after an even round) the lowest ranked player without a bye
// is taken instead. It returns -1 when every player has already had a bye.
func SelectBye(standings []*models.Standing) int {
	maxMatches := MaxMatches(standings)
	for i := len(standings) - 1; i >= 0; i-- {
		if !standings[i].Bye && standings[i].Matches < maxMatches {
			return i
		}
	}
	for i := len(standings) - 1; i >= 0; i-- {
		if !standings[i].Bye {
			return i
		}
	}
	return -1
}

// WithoutPlayer returns a copy of standings minus the given player.
func WithoutPlayer(standings []*models.Standing, playerID int) []*models.Standing {
	out := make([]*models.Standing, 0, len(standings))
	for _, s := range standings {
		if s.PlayerID != playerID {
			out = append(out, s)
		}
	}
	return out
}

type SwissGenerator struct {
	avoidRematches bool
}

func NewSwissGenerator(avoidRematches bool) RoundGenerator {
	return &SwissGenerator{avoidRematches: avoidRematches}
}

func (g *SwissGenerator) GetName() string {
	if g.avoidRematches {
		return "SwissNoRematch"
	}
	return "Swiss"
}

// GenerateRound pairs neighbours in the standings: 1st with 2nd, 3rd with 4th
// and so on. With rematch avoidance on, it searches for a pairing in which
// nobody meets a previous opponent, preferring opponents close in the
// standings. When no such pairing exists it falls back to a greedy pass.
func (g *SwissGenerator) GenerateRound(ctx context.Context, params GenerateRoundParams) ([]models.Pairing, error) {
	standings := params.Standings
	if len(standings)%2 != 0 {
		return nil, fmt.Errorf("%w: %d players", ErrOddPlayerCount, len(standings))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !g.avoidRematches {
		return pairAdjacent(standings), nil
	}
	return pairAvoidingRematches(standings, params.History), nil
}

func pairAdjacent(standings []*models.Standing) []models.Pairing {
	pairings := make([]models.Pairing, 0, len(standings)/2)
	for i := 0; i+1 < len(standings); i += 2 {
		pairings = append(pairings, newPairing(standings[i], standings[i+1]))
	}
	return pairings
}

// maxSearchSteps bounds the backtracking search. Fields that exhaust it are
// paired greedily.
const maxSearchSteps = 100_000

func pairAvoidingRematches(standings []*models.Standing, history PairHistory) []models.Pairing {
	s := &rematchSearch{
		standings: standings,
		history:   history,
		used:      make([]bool, len(standings)),
		pairings:  make([]models.Pairing, 0, len(standings)/2),
	}
	if s.search(len(standings)) {
		return s.pairings
	}
	return pairGreedy(standings, history)
}

type rematchSearch struct {
	standings []*models.Standing
	history   PairHistory
	used      []bool
	pairings  []models.Pairing
	steps     int
}

// search takes the highest ranked unpaired player, tries each opponent they
// have not met in standings order and recurses on the rest.
func (s *rematchSearch) search(remaining int) bool {
	if remaining == 0 {
		return true
	}
	s.steps++
	if s.steps > maxSearchSteps {
		return false
	}

	top := 0
	for s.used[top] {
		top++
	}
	s.used[top] = true
	for k := top + 1; k < len(s.standings); k++ {
		if s.used[k] || s.history.Played(s.standings[top].PlayerID, s.standings[k].PlayerID) {
			continue
		}
		s.used[k] = true
		s.pairings = append(s.pairings, newPairing(s.standings[top], s.standings[k]))
		if s.search(remaining - 2) {
			return true
		}
		s.pairings = s.pairings[:len(s.pairings)-1]
		s.used[k] = false
		if s.steps > maxSearchSteps {
			break
		}
	}
	s.used[top] = false
	return false
}

// pairGreedy gives each top unpaired player the next player down they have
// not met, or the adjacent one when they have met everybody left.
func pairGreedy(standings []*models.Standing, history PairHistory) []models.Pairing {
	remaining := make([]*models.Standing, len(standings))
	copy(remaining, standings)

	pairings := make([]models.Pairing, 0, len(standings)/2)
	for len(remaining) > 1 {
		top := remaining[0]
		opponent := 1
		for k := 1; k < len(remaining); k++ {
			if !history.Played(top.PlayerID, remaining[k].PlayerID) {
				opponent = k
				break
			}
		}
		pairings = append(pairings, newPairing(top, remaining[opponent]))

		next := make([]*models.Standing, 0, len(remaining)-2)
		next = append(next, remaining[1:opponent]...)
		next = append(next, remaining[opponent+1:]...)
		remaining = next
	}
	return pairings
}

func newPairing(a, b *models.Standing) models.Pairing {
	return models.Pairing{
		Player1ID:   a.PlayerID,
		Player1Name: a.Name,
		Player2ID:   b.PlayerID,
		Player2Name: b.Name,
	}
}
