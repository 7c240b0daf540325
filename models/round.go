package models

// Pairing is one head-to-head matchup of the next round.
type Pairing struct {
	Player1ID   int    `json:"player1_id"`
	Player1Name string `json:"player1_name"`
	Player2ID   int    `json:"player2_id"`
	Player2Name string `json:"player2_name"`
}

// Round is the result of generating the next round for a tournament.
type Round struct {
	TournamentID *int        `json:"tournament_id,omitempty"`
	Bye          *Standing   `json:"bye,omitempty"`
	ByeMatch     *Match      `json:"bye_match,omitempty"`
	Pairings     []Pairing   `json:"pairings"`
	Standings    []*Standing `json:"standings"`
}
