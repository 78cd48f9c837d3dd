package repository

import (
	"context"
	"time"

	"tripledger/internal/domain"
)

// ExpenseRepository defines the persistence operations for expenses and
// their payment shares.
type ExpenseRepository interface {
	// ListByTrip retrieves all expenses for a trip, newest first, each with
	// its payment shares populated.
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Expense, error)

	// Create persists a new expense together with its payment shares.
	// The expense and its shares are written atomically.
	Create(ctx context.Context, expense *domain.Expense) error

	// UpdateShareStatus updates a payment share's status and settlement time
	// in a single write.
	UpdateShareStatus(ctx context.Context, shareID string, status domain.PaymentStatus, settledAt *time.Time) error

	// Delete removes an expense and its payment shares.
	Delete(ctx context.Context, expenseID string) error
}
