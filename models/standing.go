package models

// Standing is derived from the match log on every read and never stored.
type Standing struct {
	TournamentID *int   `json:"tournament_id,omitempty" db:"tournament_id"`
	PlayerID     int    `json:"player_id" db:"player_id"`
	Name         string `json:"name" db:"name"`
	Wins         int    `json:"wins" db:"wins"`
	Draws        int    `json:"draws" db:"draws"`
	Losses       int    `json:"losses" db:"losses"`
	Score        int    `json:"score" db:"score"`
	OMS          int    `json:"oms" db:"oms"` // opponent match score
	Matches      int    `json:"matches" db:"matches"`
	Bye          bool   `json:"bye" db:"bye"`
}
