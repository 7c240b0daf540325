package models

import "time"

// Tournament scopes registrations and matches. A nil tournament id elsewhere
// in the code means the global pool of all players.
type Tournament struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Populated by TournamentService.GetOverview, not stored.
	PlayerCount int         `json:"player_count" db:"-"`
	Standings   []*Standing `json:"standings,omitempty" db:"-"`
	Matches     []*Match    `json:"matches,omitempty" db:"-"`
}

type Registration struct {
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PlayerID     int       `json:"player_id" db:"player_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
