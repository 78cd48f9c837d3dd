package service

import (
	"context"
	"time"

	"tripledger/internal/domain"
	"tripledger/internal/repository"
)

// PaymentService owns the payment-share status workflow:
// unpaid -> pending -> settled, with any transition between the three states
// allowed by the same operation. No other component mutates share status.
type PaymentService struct {
	expenseRepo repository.ExpenseRepository
	ledger      *LedgerService
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(expenseRepo repository.ExpenseRepository, ledger *LedgerService) *PaymentService {
	return &PaymentService{
		expenseRepo: expenseRepo,
		ledger:      ledger,
	}
}

// UpdateShareStatus sets a share's status. Transitioning to settled stamps
// the settlement time; transitioning away clears it. The store is written
// first; the loaded expense view is only patched once the write succeeds.
func (s *PaymentService) UpdateShareStatus(ctx context.Context, shareID string, status domain.PaymentStatus) error {
	if shareID == "" {
		return ErrInvalidShareID
	}
	if !status.Valid() {
		return ErrInvalidPaymentStatus
	}

	var settledAt *time.Time
	if status == domain.PaymentStatusSettled {
		now := time.Now()
		settledAt = &now
	}

	if err := s.expenseRepo.UpdateShareStatus(ctx, shareID, status, settledAt); err != nil {
		return err
	}

	s.ledger.applyShareStatus(shareID, status, settledAt)
	return nil
}
