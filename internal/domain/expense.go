package domain

import "time"

// ExpenseType distinguishes personal spending from expenses split
// across trip participants.
type ExpenseType string

const (
	ExpenseTypePersonal ExpenseType = "personal"
	ExpenseTypeShared   ExpenseType = "shared"
)

// PaymentStatus represents the settlement state of a payment share.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSettled PaymentStatus = "settled"
)

// Valid reports whether s is one of the known payment statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPending, PaymentStatusSettled:
		return true
	}
	return false
}

// Expense represents a single spending event on a trip.
// A shared expense carries one PaymentShare per participant covered by it;
// a personal expense carries none and is attributed entirely to PaidBy.
type Expense struct {
	ID          string
	TripID      string
	Description string
	Category    string
	Amount      float64
	Currency    string
	ExpenseType ExpenseType
	PaidBy      string
	Shares      []PaymentShare
	CreatedAt   time.Time
}

// PaymentShare is one participant's portion of a shared expense.
// The amount is denominated in the parent expense's currency.
type PaymentShare struct {
	ID        string
	ExpenseID string
	PayerID   string
	Amount    float64
	Status    PaymentStatus
	SettledAt *time.Time
}
