package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairedIDs(pairings []models.Pairing) map[int]int {
	seen := map[int]int{}
	for _, p := range pairings {
		seen[p.Player1ID]++
		seen[p.Player2ID]++
	}
	return seen
}

func TestGenerateNextRoundEvenFieldNoMatches(t *testing.T) {
	f := newFixture()
	tid, ids := f.tournamentWith(8)

	round, err := f.pairingService(false).GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{})
	require.NoError(t, err)

	require.Len(t, round.Pairings, 4)
	assert.Nil(t, round.Bye)
	assert.Nil(t, round.ByeMatch)
	seen := pairedIDs(round.Pairings)
	assert.Len(t, seen, len(ids))
	for _, id := range ids {
		assert.Equal(t, 1, seen[id], "player %d", id)
	}
	assert.Equal(t, 0, f.store.matchCount(), "an even round writes nothing")
	assert.Equal(t, 1, f.tx.commits)
}

func TestGenerateNextRoundFivePlayerScenario(t *testing.T) {
	f := newFixture()
	tid, ids := f.tournamentWith(5)
	p1, p2, p3, p4, p5 := ids[0], ids[1], ids[2], ids[3], ids[4]
	f.store.record(&tid, p1, &p2, false)
	f.store.record(&tid, p3, &p4, false)

	round, err := f.pairingService(false).GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{})
	require.NoError(t, err)

	require.NotNil(t, round.Bye)
	assert.Equal(t, p5, round.Bye.PlayerID)
	assert.True(t, round.Bye.Bye)
	assert.Equal(t, 1, round.Bye.Matches)
	assert.Equal(t, 0, round.Bye.Score)

	require.Len(t, round.Pairings, 2)
	assert.Equal(t, [2]int{p1, p3}, [2]int{round.Pairings[0].Player1ID, round.Pairings[0].Player2ID})
	assert.Equal(t, [2]int{p2, p4}, [2]int{round.Pairings[1].Player1ID, round.Pairings[1].Player2ID})

	matches, err := f.matches.ListByTournament(context.Background(), nil, &tid)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	bye := matches[2]
	assert.True(t, bye.Bye)
	assert.Nil(t, bye.LoserID)
	assert.Equal(t, p5, bye.WinnerID)
}

func TestGenerateNextRoundOddFieldRecordsExactlyOneBye(t *testing.T) {
	for _, n := range []int{1, 3, 7} {
		f := newFixture()
		tid, _ := f.tournamentWith(n)

		round, err := f.pairingService(false).GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{})
		require.NoError(t, err, "n=%d", n)

		assert.Len(t, round.Pairings, (n-1)/2, "n=%d", n)
		assert.Equal(t, 1, f.store.matchCount(), "n=%d", n)
		require.NotNil(t, round.Bye)
		assert.NotContains(t, pairedIDs(round.Pairings), round.Bye.PlayerID)
	}
}

func TestGenerateNextRoundFirstRoundByeGoesToLowestRanked(t *testing.T) {
	f := newFixture()
	tid, ids := f.tournamentWith(3)

	round, err := f.pairingService(false).GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{})
	require.NoError(t, err)

	require.NotNil(t, round.Bye)
	assert.Equal(t, ids[2], round.Bye.PlayerID)
	require.Len(t, round.Pairings, 1)
	assert.Equal(t, ids[0], round.Pairings[0].Player1ID)
	assert.Equal(t, ids[1], round.Pairings[0].Player2ID)
}

func TestGenerateNextRoundNoByeCandidate(t *testing.T) {
	f := newFixture()
	tid, ids := f.tournamentWith(3)
	for _, id := range ids {
		f.store.record(&tid, id, nil, false)
	}
	before := f.store.matchCount()

	_, err := f.pairingService(false).GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{})
	assert.ErrorIs(t, err, ErrNoByeCandidate)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, before, f.store.matchCount(), "nothing may be written")
	assert.Equal(t, 1, f.tx.rollbacks)
	assert.Empty(t, f.publisher.messages)
}

func TestGenerateNextRoundEmptyTournament(t *testing.T) {
	f := newFixture()
	tid := f.store.addTournament("empty")

	round, err := f.pairingService(false).GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{})
	require.NoError(t, err)
	assert.Empty(t, round.Pairings)
	assert.Nil(t, round.Bye)
}

func TestGenerateNextRoundUnknownTournament(t *testing.T) {
	f := newFixture()

	_, err := f.pairingService(false).GenerateNextRound(context.Background(), intPtr(404), GenerateRoundOptions{})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestGenerateNextRoundCountMismatch(t *testing.T) {
	f := newFixture()
	tid, _ := f.tournamentWith(4)
	f.regs.CountByTournamentFunc = func(ctx context.Context, tournamentID int) (int, error) {
		return 5, nil
	}

	_, err := f.pairingService(false).GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 0, f.store.matchCount())
}

func TestGenerateNextRoundStorageFailureRollsBack(t *testing.T) {
	f := newFixture()
	tid, _ := f.tournamentWith(3)
	boom := errors.New("connection reset")
	f.matches.CreateFunc = func(ctx context.Context, match *models.Match) error {
		return boom
	}

	_, err := f.pairingService(false).GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, f.tx.rollbacks)
	assert.Equal(t, 0, f.tx.commits)
	assert.Zero(t, f.recorder.rounds["tournament"])
}

func TestGenerateNextRoundLocksScope(t *testing.T) {
	f := newFixture()
	tid, _ := f.tournamentWith(2)
	svc := f.pairingService(false)

	_, err := svc.GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{})
	require.NoError(t, err)
	_, err = svc.GenerateNextRound(context.Background(), nil, GenerateRoundOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{scopeAttr(&tid), "global"}, f.store.locks)
}

func TestGenerateNextRoundGlobalMode(t *testing.T) {
	f := newFixture()
	tid, ids := f.tournamentWith(2)
	extra := f.store.addPlayer("walk-in")
	f.store.record(&tid, ids[0], &ids[1], false)

	round, err := f.pairingService(false).GenerateNextRound(context.Background(), nil, GenerateRoundOptions{})
	require.NoError(t, err)

	assert.Nil(t, round.TournamentID)
	require.NotNil(t, round.Bye)
	assert.Equal(t, extra, round.Bye.PlayerID)
	require.NotNil(t, round.ByeMatch)
	assert.Nil(t, round.ByeMatch.TournamentID)
	require.Len(t, round.Pairings, 1)
	assert.Equal(t, ids[0], round.Pairings[0].Player1ID)
}

func TestGenerateNextRoundAvoidRematches(t *testing.T) {
	f := newFixture()
	tid, ids := f.tournamentWith(4)
	f.store.record(&tid, ids[0], &ids[1], false)
	f.store.record(&tid, ids[2], &ids[3], false)
	f.store.record(&tid, ids[0], &ids[2], false)
	f.store.record(&tid, ids[1], &ids[3], false)

	svc := f.pairingService(false)
	plain, err := svc.GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{})
	require.NoError(t, err)
	// ids[0] 6, ids[1] 3, ids[2] 3, ids[3] 0: the adjacent pairing repeats round one.
	assert.Equal(t, ids[1], plain.Pairings[0].Player2ID)

	avoid := true
	round, err := svc.GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{AvoidRematches: &avoid})
	require.NoError(t, err)
	history := brackets.NewPairHistory(f.store.matches)
	for _, p := range round.Pairings {
		assert.False(t, history.Played(p.Player1ID, p.Player2ID), "rematch %d vs %d", p.Player1ID, p.Player2ID)
	}
}

func TestGenerateNextRoundSideEffects(t *testing.T) {
	f := newFixture()
	tid, _ := f.tournamentWith(3)

	round, err := f.pairingService(false).GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, f.recorder.rounds["tournament"])
	assert.Equal(t, 1, f.recorder.byes["tournament"])
	assert.Equal(t, 1, f.recorder.matches["bye"])
	assert.Equal(t, []string{brackets.MessageMatchRecorded, brackets.MessageRoundGenerated}, f.publisher.types())

	require.Len(t, f.uploader.keys, 1)
	assert.Contains(t, f.uploader.keys[0], "tournaments/"+scopeAttr(&tid)+"/rounds/")
	var sheet RoundSheet
	require.NoError(t, json.Unmarshal(f.uploader.bodies[0], &sheet))
	assert.Equal(t, round.Bye.PlayerID, sheet.Bye.PlayerID)
	assert.Len(t, sheet.Pairings, 1)
}

func TestGenerateNextRoundArchiveFailureDoesNotFailRound(t *testing.T) {
	f := newFixture()
	tid, _ := f.tournamentWith(2)
	f.uploader.UploadFunc = func(ctx context.Context, key string, contentType string, body []byte) (*storage.UploadResult, error) {
		return nil, errors.New("bucket unavailable")
	}

	round, err := f.pairingService(false).GenerateNextRound(context.Background(), &tid, GenerateRoundOptions{})
	require.NoError(t, err)
	assert.Len(t, round.Pairings, 1)
	assert.Equal(t, 1, f.tx.commits)
}
