package domain

import "time"

// Participant represents a member of a trip.
type Participant struct {
	ID          string
	TripID      string
	DisplayName string
	CreatedAt   time.Time
}
