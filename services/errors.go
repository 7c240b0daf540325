package services

import (
	"errors"
	"fmt"
)

// Errors shared by the services and mapped to HTTP statuses by the handlers.
var (
	ErrNotFound = errors.New("not found")

	ErrValidationFailed = errors.New("validation failed")

	ErrRegistrationConflict = errors.New("player is already registered for this tournament")

	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidCredentials   = errors.New("invalid organizer password")

	ErrPlayerNotFound     = fmt.Errorf("player %w", ErrNotFound)
	ErrTournamentNotFound = fmt.Errorf("tournament %w", ErrNotFound)

	// ErrInvalidState means the stored data does not allow the operation.
	ErrInvalidState = errors.New("invalid state")
	// ErrNoByeCandidate is returned for an odd field in which every player has already had a bye.
	ErrNoByeCandidate = fmt.Errorf("%w: no player is eligible for a bye", ErrInvalidState)
)
