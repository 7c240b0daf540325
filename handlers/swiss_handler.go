package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/swiss-tournament/middleware"
	"github.com/Dosada05/swiss-tournament/services"
)

// SwissHandler serves standings, the match log and round generation. Every
// route exists twice: under /tournaments/{tournamentID} and at the root for
// the global pool of players.
type SwissHandler struct {
	standingService services.StandingService
	matchService    services.MatchService
	pairingService  services.PairingService
}

func NewSwissHandler(
	standingService services.StandingService,
	matchService services.MatchService,
	pairingService services.PairingService,
) *SwissHandler {
	return &SwissHandler{
		standingService: standingService,
		matchService:    matchService,
		pairingService:  pairingService,
	}
}

// Standings handles GET /standings and GET /tournaments/{tournamentID}/standings.
func (h *SwissHandler) Standings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := scopeFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.standingService.GetStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ByeStatus handles GET /tournaments/{tournamentID}/players/{playerID}/bye.
func (h *SwissHandler) ByeStatus(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := scopeFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	hasBye, err := h.standingService.HasBye(r.Context(), tournamentID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player_id": playerID, "bye": hasBye}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatches handles GET /matches and GET /tournaments/{tournamentID}/matches.
func (h *SwissHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := scopeFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReportMatch handles POST /matches and POST /tournaments/{tournamentID}/matches.
func (h *SwissHandler) ReportMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := scopeFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ReportMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TournamentID = tournamentID

	match, err := h.matchService.ReportMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "match reported",
		slog.Int("match_id", match.ID),
		slog.String("by", middleware.GetSubjectFromContext(r.Context())),
	)
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateRound handles POST /rounds and POST /tournaments/{tournamentID}/rounds.
// The body is optional.
func (h *SwissHandler) GenerateRound(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := scopeFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var opts services.GenerateRoundOptions
	if err := readOptionalJSON(w, r, &opts); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.pairingService.GenerateNextRound(r.Context(), tournamentID, opts)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
