package postgres

import (
	"context"
	"database/sql"

	"tripledger/internal/domain"
	"tripledger/internal/repository"
)

// ParticipantRepository implements repository.ParticipantRepository using PostgreSQL.
type ParticipantRepository struct {
	db *sql.DB
}

// NewParticipantRepository creates a new ParticipantRepository.
func NewParticipantRepository(db *sql.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Create adds a new participant.
func (r *ParticipantRepository) Create(ctx context.Context, participant *domain.Participant) error {
	query := `INSERT INTO participants (id, trip_id, display_name, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, participant.ID, participant.TripID, participant.DisplayName, participant.CreatedAt)
	return err
}

// GetByID retrieves a participant by ID.
func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	query := `SELECT id, trip_id, display_name, created_at FROM participants WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var participant domain.Participant
	err := row.Scan(&participant.ID, &participant.TripID, &participant.DisplayName, &participant.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// ListByTrip retrieves all participants of a trip.
func (r *ParticipantRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Participant, error) {
	query := `SELECT id, trip_id, display_name, created_at FROM participants WHERE trip_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*domain.Participant
	for rows.Next() {
		var participant domain.Participant
		if err := rows.Scan(&participant.ID, &participant.TripID, &participant.DisplayName, &participant.CreatedAt); err != nil {
			return nil, err
		}
		participants = append(participants, &participant)
	}
	return participants, rows.Err()
}

// Ensure interface is satisfied.
var _ repository.ParticipantRepository = (*ParticipantRepository)(nil)
