package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/storage"
)

const roundSheetContentType = "application/json"

// RoundSheet is the document stored for every generated round.
type RoundSheet struct {
	TournamentID *int               `json:"tournament_id,omitempty"`
	GeneratedAt  time.Time          `json:"generated_at"`
	Bye          *models.Standing   `json:"bye,omitempty"`
	Pairings     []models.Pairing   `json:"pairings"`
	Standings    []*models.Standing `json:"standings"`
}

type ArchiveService interface {
	// ArchiveRound uploads the round sheet and returns its public URL.
	// It returns an empty URL and no error when object storage is not configured.
	ArchiveRound(ctx context.Context, round *models.Round) (string, error)
}

type archiveService struct {
	uploader storage.FileUploader
	logger   *slog.Logger
	now      func() time.Time
}

// NewArchiveService accepts a nil uploader, in which case archiving is disabled.
func NewArchiveService(uploader storage.FileUploader, logger *slog.Logger) ArchiveService {
	return &archiveService{uploader: uploader, logger: logger, now: time.Now}
}

func (s *archiveService) ArchiveRound(ctx context.Context, round *models.Round) (string, error) {
	if s.uploader == nil || round == nil {
		return "", nil
	}

	generatedAt := s.now().UTC()
	sheet := RoundSheet{
		TournamentID: round.TournamentID,
		GeneratedAt:  generatedAt,
		Bye:          round.Bye,
		Pairings:     round.Pairings,
		Standings:    round.Standings,
	}
	body, err := json.Marshal(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to encode round sheet: %w", err)
	}

	key := roundSheetKey(round.TournamentID, generatedAt)
	result, err := s.uploader.Upload(ctx, key, roundSheetContentType, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to archive round: %w", err)
	}

	s.logger.InfoContext(ctx, "round archived", slog.String("key", result.Key), slog.String("location", result.Location))
	return result.Location, nil
}

func roundSheetKey(tournamentID *int, at time.Time) string {
	return fmt.Sprintf("tournaments/%s/rounds/%s.json", scopeAttr(tournamentID), at.Format("20060102T150405.000000000Z"))
}
