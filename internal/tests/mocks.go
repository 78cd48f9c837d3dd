package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tripledger/internal/domain"
	"tripledger/internal/rates"
	"tripledger/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK EXPENSE REPOSITORY
// ──────────────────────────────────────────────

// MockExpenseRepository is a mock implementation of ExpenseRepository.
type MockExpenseRepository struct {
	mu       sync.RWMutex
	expenses []*domain.Expense

	// Counters for verification
	CreateCallCount            int32
	UpdateShareStatusCallCount int32

	// Error injection
	CreateError            error
	UpdateShareStatusError error
	DeleteError            error
}

// NewMockExpenseRepository creates a new mock expense repository.
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{}
}

// AddExpense seeds an expense without counting as a Create call.
func (m *MockExpenseRepository) AddExpense(expense *domain.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses = append(m.expenses, expense)
}

func (m *MockExpenseRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Expense
	for _, e := range m.expenses {
		if e.TripID == tripID {
			result = append(result, copyExpense(e))
		}
	}
	return result, nil
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses = append(m.expenses, copyExpense(expense))
	return nil
}

func (m *MockExpenseRepository) UpdateShareStatus(ctx context.Context, shareID string, status domain.PaymentStatus, settledAt *time.Time) error {
	atomic.AddInt32(&m.UpdateShareStatusCallCount, 1)
	if m.UpdateShareStatusError != nil {
		return m.UpdateShareStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.expenses {
		for i := range e.Shares {
			if e.Shares[i].ID == shareID {
				e.Shares[i].Status = status
				e.Shares[i].SettledAt = settledAt
				return nil
			}
		}
	}
	return repository.ErrNotFound
}

func (m *MockExpenseRepository) Delete(ctx context.Context, expenseID string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.expenses {
		if e.ID == expenseID {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// GetShare returns a stored share for test assertions.
func (m *MockExpenseRepository) GetShare(shareID string) *domain.PaymentShare {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.expenses {
		for i := range e.Shares {
			if e.Shares[i].ID == shareID {
				share := e.Shares[i]
				return &share
			}
		}
	}
	return nil
}

// CountExpenses returns the number of stored expenses.
func (m *MockExpenseRepository) CountExpenses() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.expenses)
}

func copyExpense(e *domain.Expense) *domain.Expense {
	copied := *e
	copied.Shares = make([]domain.PaymentShare, len(e.Shares))
	copy(copied.Shares, e.Shares)
	return &copied
}

// ──────────────────────────────────────────────
// MOCK RATE CLIENT AND STORE
// ──────────────────────────────────────────────

// MockRateClient serves fixed rate tables and counts external lookups.
type MockRateClient struct {
	Tables map[string]map[string]float64

	FetchCallCount int32

	// Error injection
	FetchError error
}

// NewMockRateClient creates a client serving the given base->rates tables.
func NewMockRateClient(tables map[string]map[string]float64) *MockRateClient {
	return &MockRateClient{Tables: tables}
}

func (m *MockRateClient) FetchRates(ctx context.Context, baseCurrency string) (domain.RateSnapshot, error) {
	atomic.AddInt32(&m.FetchCallCount, 1)
	if m.FetchError != nil {
		return domain.RateSnapshot{}, m.FetchError
	}
	return domain.RateSnapshot{
		BaseCurrency:     baseCurrency,
		Rates:            m.Tables[baseCurrency],
		FetchedAtEpochMs: time.Now().UnixMilli(),
	}, nil
}

// MemorySnapshotStore is an in-memory stand-in for the durable rate store.
type MemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.RateSnapshot
}

// NewMemorySnapshotStore creates an empty store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snapshots: make(map[string]domain.RateSnapshot)}
}

func (s *MemorySnapshotStore) Get(ctx context.Context, baseCurrency string) (*domain.RateSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[baseCurrency]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (s *MemorySnapshotStore) Set(ctx context.Context, snapshot domain.RateSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.BaseCurrency] = snapshot
	return nil
}

func (s *MemorySnapshotStore) Delete(ctx context.Context, baseCurrency string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, baseCurrency)
	return nil
}

func (s *MemorySnapshotStore) List(ctx context.Context) ([]domain.RateSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.RateSnapshot, 0, len(s.snapshots))
	for _, snapshot := range s.snapshots {
		result = append(result, snapshot)
	}
	return result, nil
}

func (s *MemorySnapshotStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = make(map[string]domain.RateSnapshot)
	return nil
}

// Ensure interfaces are satisfied.
var (
	_ repository.ExpenseRepository = (*MockExpenseRepository)(nil)
	_ rates.Client                 = (*MockRateClient)(nil)
	_ rates.SnapshotStore          = (*MemorySnapshotStore)(nil)
)

// newTestConverter builds the rate stack over fixed tables for ledger tests.
func newTestConverter(tables map[string]map[string]float64) (*rates.Cache, *rates.Converter) {
	cache := rates.NewCache(NewMockRateClient(tables), NewMemorySnapshotStore())
	return cache, rates.NewConverter(cache)
}
