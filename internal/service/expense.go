package service

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"tripledger/internal/domain"
	"tripledger/internal/repository"
)

// shareSumTolerance is how far the sum of payment shares may drift from the
// parent expense's amount before the mismatch is logged. Shares are recorded
// independently, so a mismatch is a data-quality concern, not a rejection.
const shareSumTolerance = 0.01

// ExpenseService handles expense creation and deletion.
type ExpenseService struct {
	expenseRepo repository.ExpenseRepository
	ledger      *LedgerService
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo repository.ExpenseRepository, ledger *LedgerService) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		ledger:      ledger,
	}
}

// CreateExpenseRequest contains the parameters for recording an expense.
type CreateExpenseRequest struct {
	TripID      string
	Description string
	Category    string
	Amount      float64
	Currency    string
	ExpenseType domain.ExpenseType
	PaidBy      string
	Shares      []CreateShareRequest
}

// CreateShareRequest is one participant's portion of a shared expense.
type CreateShareRequest struct {
	PayerID string
	Amount  float64
}

// CreateExpense validates and persists an expense with its payment shares,
// then refreshes the ledger's loaded view of the trip.
func (s *ExpenseService) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*domain.Expense, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Currency == "" {
		return nil, ErrInvalidCurrency
	}
	if req.PaidBy == "" {
		return nil, ErrInvalidPaidBy
	}

	switch req.ExpenseType {
	case domain.ExpenseTypePersonal:
		if len(req.Shares) > 0 {
			return nil, ErrSharesOnPersonalExpense
		}
	case domain.ExpenseTypeShared:
		if len(req.Shares) == 0 {
			return nil, ErrNoShares
		}
	default:
		return nil, ErrInvalidExpenseType
	}

	expense := &domain.Expense{
		ID:          uuid.New().String(),
		TripID:      req.TripID,
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		Currency:    req.Currency,
		ExpenseType: req.ExpenseType,
		PaidBy:      req.PaidBy,
		CreatedAt:   time.Now(),
	}

	var shareSum float64
	for _, share := range req.Shares {
		if share.PayerID == "" {
			return nil, ErrInvalidPaidBy
		}
		if share.Amount <= 0 {
			return nil, ErrInvalidAmount
		}
		shareSum += share.Amount
		expense.Shares = append(expense.Shares, domain.PaymentShare{
			ID:        uuid.New().String(),
			ExpenseID: expense.ID,
			PayerID:   share.PayerID,
			Amount:    share.Amount,
			Status:    domain.PaymentStatusUnpaid,
		})
	}

	if req.ExpenseType == domain.ExpenseTypeShared && math.Abs(shareSum-req.Amount) > shareSumTolerance {
		log.Printf("expense %s: share sum %.2f does not match amount %.2f %s", expense.ID, shareSum, req.Amount, req.Currency)
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}

	// Refetch so the loaded view picks up store-assigned ordering.
	if _, err := s.ledger.Load(ctx, req.TripID); err != nil {
		log.Printf("refreshing trip %s after expense create: %v", req.TripID, err)
	}

	return expense, nil
}

// DeleteExpense removes an expense and its shares.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	if expenseID == "" {
		return ErrInvalidExpenseID
	}

	if err := s.expenseRepo.Delete(ctx, expenseID); err != nil {
		return err
	}

	s.ledger.removeExpense(expenseID)
	return nil
}
