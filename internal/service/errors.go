package service

import "errors"

var (
	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidExpenseID is returned when expense ID is empty.
	ErrInvalidExpenseID = errors.New("invalid expense id")

	// ErrInvalidShareID is returned when payment share ID is empty.
	ErrInvalidShareID = errors.New("invalid payment share id")

	// ErrInvalidAmount is returned when an expense or share amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidCurrency is returned when a currency code is empty.
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrInvalidExpenseType is returned when expense type is neither personal nor shared.
	ErrInvalidExpenseType = errors.New("invalid expense type")

	// ErrInvalidPaidBy is returned when the paying participant ID is empty.
	ErrInvalidPaidBy = errors.New("invalid paid-by participant id")

	// ErrInvalidPaymentStatus is returned when a payment status value is unknown.
	ErrInvalidPaymentStatus = errors.New("invalid payment status")

	// ErrSharesOnPersonalExpense is returned when a personal expense carries payment shares.
	ErrSharesOnPersonalExpense = errors.New("personal expense cannot have payment shares")

	// ErrNoShares is returned when a shared expense carries no payment shares.
	ErrNoShares = errors.New("shared expense requires at least one payment share")

	// ErrNotAuthenticated is returned when no acting participant identity is present.
	ErrNotAuthenticated = errors.New("not authenticated")
)
