package service

import (
	"context"
	"sync"
	"time"

	"tripledger/internal/domain"
	"tripledger/internal/rates"
	"tripledger/internal/repository"
)

// FilterMode selects which expenses a list view shows. It affects display
// only; balance computations always run over the full expense set.
type FilterMode string

const (
	FilterAll  FilterMode = "all"
	FilterMine FilterMode = "mine"
)

// BalanceSummary holds one participant's derived balances for a trip,
// all expressed in the reference currency.
type BalanceSummary struct {
	ParticipantID     string
	ReferenceCurrency string

	// Paid is the total the participant fronted, across all expense types.
	Paid float64

	// Owed is the participant's outstanding shares of expenses someone else paid.
	Owed float64

	// Lent is what the participant fronted on others' behalf, still outstanding.
	Lent float64

	// ActualCost is the participant's true share of the trip's spending,
	// independent of who fronted cash or what has settled.
	ActualCost float64

	// TotalSpend is the trip's total spending, every expense counted once.
	TotalSpend float64
}

// LedgerService loads a trip's expenses and derives per-participant balances.
// Balances are recomputed from the loaded snapshot on every call rather than
// maintained incrementally; trip expense counts are small enough that this
// costs nothing and avoids incremental-update bugs.
type LedgerService struct {
	expenseRepo repository.ExpenseRepository
	converter   *rates.Converter
	cache       *rates.Cache

	mu    sync.RWMutex
	trips map[string][]*domain.Expense
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(expenseRepo repository.ExpenseRepository, converter *rates.Converter, cache *rates.Cache) *LedgerService {
	return &LedgerService{
		expenseRepo: expenseRepo,
		converter:   converter,
		cache:       cache,
		trips:       make(map[string][]*domain.Expense),
	}
}

// Load fetches all expenses for a trip and pre-warms the rate cache once per
// distinct currency found in them, so no balance is computed against a
// partially warmed cache.
func (s *LedgerService) Load(ctx context.Context, tripID string) ([]*domain.Expense, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	expenses, err := s.expenseRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, expense := range expenses {
		if !seen[expense.Currency] {
			seen[expense.Currency] = true
			s.cache.Get(ctx, expense.Currency)
		}
	}

	s.mu.Lock()
	s.trips[tripID] = expenses
	view := copyExpenses(expenses)
	s.mu.Unlock()

	return view, nil
}

// Expenses returns the trip's expense list for display, loading it first if
// needed. FilterMine narrows the list to expenses the acting participant paid.
func (s *LedgerService) Expenses(ctx context.Context, tripID, participantID string, filter FilterMode) ([]*domain.Expense, error) {
	expenses, err := s.snapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if filter != FilterMine {
		return expenses, nil
	}

	var mine []*domain.Expense
	for _, expense := range expenses {
		if expense.PaidBy == participantID {
			mine = append(mine, expense)
		}
	}
	return mine, nil
}

// Summary computes the acting participant's balances in the reference
// currency. A missing exchange rate contributes zero rather than failing,
// so one bad currency pair never blocks the rest of the view.
func (s *LedgerService) Summary(ctx context.Context, tripID, participantID, referenceCurrency string) (*BalanceSummary, error) {
	if participantID == "" {
		return nil, ErrNotAuthenticated
	}
	if referenceCurrency == "" {
		return nil, ErrInvalidCurrency
	}

	expenses, err := s.snapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}

	summary := &BalanceSummary{
		ParticipantID:     participantID,
		ReferenceCurrency: referenceCurrency,
	}

	for _, expense := range expenses {
		converted := s.convertOrZero(ctx, expense.Amount, expense.Currency, referenceCurrency)
		summary.TotalSpend += converted

		if expense.PaidBy == participantID {
			summary.Paid += converted
		}

		if expense.ExpenseType == domain.ExpenseTypePersonal {
			if expense.PaidBy == participantID {
				summary.ActualCost += converted
			}
			continue
		}

		for _, share := range expense.Shares {
			shareConverted := s.convertOrZero(ctx, share.Amount, expense.Currency, referenceCurrency)

			if share.PayerID == participantID {
				// The participant's own slice of a shared expense is part of
				// their actual cost whatever its settlement state.
				summary.ActualCost += shareConverted

				if expense.PaidBy != participantID && share.Status != domain.PaymentStatusSettled {
					summary.Owed += shareConverted
				}
			} else if expense.PaidBy == participantID && share.Status != domain.PaymentStatusSettled {
				summary.Lent += shareConverted
			}
		}
	}

	return summary, nil
}

// ClearRates empties the exchange-rate cache, both tiers.
func (s *LedgerService) ClearRates(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// snapshot returns the loaded expense list for a trip, loading it on first
// use. Callers get a deep copy: the loaded list is patched in place by the
// payment workflow, so the shared structs must never leave the lock.
func (s *LedgerService) snapshot(ctx context.Context, tripID string) ([]*domain.Expense, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	s.mu.RLock()
	expenses, ok := s.trips[tripID]
	if ok {
		view := copyExpenses(expenses)
		s.mu.RUnlock()
		return view, nil
	}
	s.mu.RUnlock()

	return s.Load(ctx, tripID)
}

// copyExpenses deep-copies a loaded expense list, shares included.
// Must be called with at least a read lock held.
func copyExpenses(expenses []*domain.Expense) []*domain.Expense {
	view := make([]*domain.Expense, len(expenses))
	for i, expense := range expenses {
		copied := *expense
		copied.Shares = make([]domain.PaymentShare, len(expense.Shares))
		copy(copied.Shares, expense.Shares)
		view[i] = &copied
	}
	return view
}

func (s *LedgerService) convertOrZero(ctx context.Context, amount float64, from, to string) float64 {
	converted, err := s.converter.Convert(ctx, amount, from, to)
	if err != nil {
		return 0
	}
	return converted
}

// applyShareStatus patches a share inside the loaded snapshots so the next
// recompute reflects a status transition without a full refetch. Only the
// payment workflow calls this.
func (s *LedgerService) applyShareStatus(shareID string, status domain.PaymentStatus, settledAt *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, expenses := range s.trips {
		for _, expense := range expenses {
			for i := range expense.Shares {
				if expense.Shares[i].ID == shareID {
					expense.Shares[i].Status = status
					expense.Shares[i].SettledAt = settledAt
					return
				}
			}
		}
	}
}

// removeExpense drops a deleted expense from the loaded snapshot.
func (s *LedgerService) removeExpense(expenseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tripID, expenses := range s.trips {
		for i, expense := range expenses {
			if expense.ID == expenseID {
				s.trips[tripID] = append(expenses[:i], expenses[i+1:]...)
				return
			}
		}
	}
}
