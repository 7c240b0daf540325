package models

import "time"

// Points awarded per result. A bye is worth nothing; it only counts as a match played.
const (
	PointsWin  = 3
	PointsDraw = 1
	PointsLoss = 0
)

// Match is one immutable entry of the match log.
type Match struct {
	ID           int       `json:"id" db:"id"`
	TournamentID *int      `json:"tournament_id,omitempty" db:"tournament_id"`
	WinnerID     int       `json:"winner_id" db:"winner_id"`
	LoserID      *int      `json:"loser_id,omitempty" db:"loser_id"`
	Draw         bool      `json:"draw" db:"draw"`
	Bye          bool      `json:"bye" db:"bye"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Kind is used as a metrics label and in live update payloads.
func (m *Match) Kind() string {
	switch {
	case m.Bye:
		return "bye"
	case m.Draw:
		return "draw"
	default:
		return "win"
	}
}
