package repository

import (
	"context"

	"tripledger/internal/domain"
)

// ParticipantRepository defines the persistence operations for trip participants.
type ParticipantRepository interface {
	// Create adds a new participant.
	Create(ctx context.Context, participant *domain.Participant) error

	// GetByID retrieves a participant by ID.
	GetByID(ctx context.Context, id string) (*domain.Participant, error)

	// ListByTrip retrieves all participants of a trip.
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Participant, error)
}
