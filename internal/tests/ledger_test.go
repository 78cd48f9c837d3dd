package tests

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"tripledger/internal/domain"
	"tripledger/internal/rates"
	"tripledger/internal/service"
)

// ──────────────────────────────────────────────
// LEDGER AGGREGATION
// ──────────────────────────────────────────────

const balanceTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < balanceTolerance
}

// sharedJPYExpense is the canonical two-participant shared expense:
// 300 JPY paid by A, split evenly between A and B.
func sharedJPYExpense() *domain.Expense {
	return &domain.Expense{
		ID:          "exp-1",
		TripID:      "trip-1",
		Amount:      300,
		Currency:    "JPY",
		ExpenseType: domain.ExpenseTypeShared,
		PaidBy:      "A",
		Shares: []domain.PaymentShare{
			{ID: "share-a", ExpenseID: "exp-1", PayerID: "A", Amount: 150, Status: domain.PaymentStatusUnpaid},
			{ID: "share-b", ExpenseID: "exp-1", PayerID: "B", Amount: 150, Status: domain.PaymentStatusUnpaid},
		},
	}
}

func jpyToTWD() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"JPY": {"TWD": 0.21},
	}
}

func TestLedger_SharedExpenseBalances(t *testing.T) {
	t.Parallel()

	expenseRepo := NewMockExpenseRepository()
	expenseRepo.AddExpense(sharedJPYExpense())
	cache, converter := newTestConverter(jpyToTWD())
	ledger := service.NewLedgerService(expenseRepo, converter, cache)

	ctx := context.Background()

	summaryA, err := ledger.Summary(ctx, "trip-1", "A", "TWD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summaryB, err := ledger.Summary(ctx, "trip-1", "B", "TWD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(summaryA.Paid, 63) {
		t.Errorf("expected paid(A) = 63, got %v", summaryA.Paid)
	}
	if !almostEqual(summaryA.Lent, 31.5) {
		t.Errorf("expected lent(A) = 31.5, got %v", summaryA.Lent)
	}
	if !almostEqual(summaryA.Owed, 0) {
		t.Errorf("expected owed(A) = 0 (own share of own expense is not a debt), got %v", summaryA.Owed)
	}
	if !almostEqual(summaryB.Owed, 31.5) {
		t.Errorf("expected owed(B) = 31.5, got %v", summaryB.Owed)
	}
	if !almostEqual(summaryB.Paid, 0) {
		t.Errorf("expected paid(B) = 0, got %v", summaryB.Paid)
	}
	if !almostEqual(summaryA.ActualCost, 31.5) || !almostEqual(summaryB.ActualCost, 31.5) {
		t.Errorf("expected actualCost = 31.5 for both, got A=%v B=%v", summaryA.ActualCost, summaryB.ActualCost)
	}
	if !almostEqual(summaryA.TotalSpend, 63) {
		t.Errorf("expected total = 63, got %v", summaryA.TotalSpend)
	}
}

func TestLedger_SettlementRemovesOutstandingOnly(t *testing.T) {
	t.Parallel()

	expenseRepo := NewMockExpenseRepository()
	expenseRepo.AddExpense(sharedJPYExpense())
	cache, converter := newTestConverter(jpyToTWD())
	ledger := service.NewLedgerService(expenseRepo, converter, cache)
	payments := service.NewPaymentService(expenseRepo, ledger)

	ctx := context.Background()

	// Load so the workflow patches the in-memory view.
	if _, err := ledger.Load(ctx, "trip-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := payments.UpdateShareStatus(ctx, "share-b", domain.PaymentStatusSettled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summaryA, err := ledger.Summary(ctx, "trip-1", "A", "TWD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summaryB, err := ledger.Summary(ctx, "trip-1", "B", "TWD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(summaryB.Owed, 0) {
		t.Errorf("expected owed(B) = 0 after settlement, got %v", summaryB.Owed)
	}
	if !almostEqual(summaryA.Lent, 0) {
		t.Errorf("expected lent(A) = 0 after settlement, got %v", summaryA.Lent)
	}

	// Settlement rewrites nothing historical.
	if !almostEqual(summaryB.ActualCost, 31.5) {
		t.Errorf("expected actualCost(B) unchanged at 31.5, got %v", summaryB.ActualCost)
	}
	if !almostEqual(summaryA.TotalSpend, 63) {
		t.Errorf("expected total unchanged at 63, got %v", summaryA.TotalSpend)
	}
}

func TestLedger_ActualCostsSumToTotal(t *testing.T) {
	t.Parallel()

	expenseRepo := NewMockExpenseRepository()
	expenseRepo.AddExpense(sharedJPYExpense())
	expenseRepo.AddExpense(&domain.Expense{
		ID:          "exp-2",
		TripID:      "trip-1",
		Amount:      40,
		Currency:    "USD",
		ExpenseType: domain.ExpenseTypePersonal,
		PaidBy:      "B",
	})
	expenseRepo.AddExpense(&domain.Expense{
		ID:          "exp-3",
		TripID:      "trip-1",
		Amount:      900,
		Currency:    "TWD",
		ExpenseType: domain.ExpenseTypeShared,
		PaidBy:      "B",
		Shares: []domain.PaymentShare{
			{ID: "share-3a", ExpenseID: "exp-3", PayerID: "A", Amount: 450, Status: domain.PaymentStatusSettled},
			{ID: "share-3b", ExpenseID: "exp-3", PayerID: "B", Amount: 450, Status: domain.PaymentStatusUnpaid},
		},
	})

	tables := jpyToTWD()
	tables["USD"] = map[string]float64{"TWD": 32.25}
	cache, converter := newTestConverter(tables)
	ledger := service.NewLedgerService(expenseRepo, converter, cache)

	ctx := context.Background()

	var actualCostSum, total float64
	for _, participant := range []string{"A", "B"} {
		summary, err := ledger.Summary(ctx, "trip-1", participant, "TWD")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		actualCostSum += summary.ActualCost
		total = summary.TotalSpend
	}

	if !almostEqual(actualCostSum, total) {
		t.Errorf("expected sum of actual costs %v to equal total %v", actualCostSum, total)
	}
}

func TestLedger_LoadPrewarmsOncePerCurrency(t *testing.T) {
	t.Parallel()

	expenseRepo := NewMockExpenseRepository()
	expenseRepo.AddExpense(sharedJPYExpense())
	expenseRepo.AddExpense(&domain.Expense{
		ID: "exp-2", TripID: "trip-1", Amount: 500, Currency: "JPY",
		ExpenseType: domain.ExpenseTypePersonal, PaidBy: "B",
	})
	expenseRepo.AddExpense(&domain.Expense{
		ID: "exp-3", TripID: "trip-1", Amount: 10, Currency: "USD",
		ExpenseType: domain.ExpenseTypePersonal, PaidBy: "A",
	})

	tables := jpyToTWD()
	tables["USD"] = map[string]float64{"TWD": 32.25}
	client := NewMockRateClient(tables)
	cache := rates.NewCache(client, NewMemorySnapshotStore())
	converter := rates.NewConverter(cache)
	ledger := service.NewLedgerService(expenseRepo, converter, cache)

	ctx := context.Background()

	if _, err := ledger.Load(ctx, "trip-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := atomic.LoadInt32(&client.FetchCallCount); got != 2 {
		t.Errorf("expected 2 external lookups (JPY, USD), got %d", got)
	}

	// Balance computation runs entirely off the warmed cache.
	if _, err := ledger.Summary(ctx, "trip-1", "A", "TWD"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&client.FetchCallCount); got != 2 {
		t.Errorf("expected no further lookups after pre-warm, got %d", got)
	}
}

func TestLedger_MissingRateContributesZero(t *testing.T) {
	t.Parallel()

	expenseRepo := NewMockExpenseRepository()
	expenseRepo.AddExpense(sharedJPYExpense())
	expenseRepo.AddExpense(&domain.Expense{
		ID: "exp-2", TripID: "trip-1", Amount: 100, Currency: "XXX",
		ExpenseType: domain.ExpenseTypePersonal, PaidBy: "A",
	})

	cache, converter := newTestConverter(jpyToTWD())
	ledger := service.NewLedgerService(expenseRepo, converter, cache)

	summary, err := ledger.Summary(context.Background(), "trip-1", "A", "TWD")
	if err != nil {
		t.Fatalf("a missing rate must degrade, not fail: %v", err)
	}

	// The XXX expense counts as zero; the JPY expense still converts.
	if !almostEqual(summary.TotalSpend, 63) {
		t.Errorf("expected total = 63 with unknown-currency expense at zero, got %v", summary.TotalSpend)
	}
	if !almostEqual(summary.Paid, 63) {
		t.Errorf("expected paid(A) = 63, got %v", summary.Paid)
	}
}

func TestLedger_FilterAffectsListOnly(t *testing.T) {
	t.Parallel()

	expenseRepo := NewMockExpenseRepository()
	expenseRepo.AddExpense(sharedJPYExpense())
	expenseRepo.AddExpense(&domain.Expense{
		ID: "exp-2", TripID: "trip-1", Amount: 1000, Currency: "JPY",
		ExpenseType: domain.ExpenseTypePersonal, PaidBy: "B",
	})

	cache, converter := newTestConverter(jpyToTWD())
	ledger := service.NewLedgerService(expenseRepo, converter, cache)

	ctx := context.Background()

	mine, err := ledger.Expenses(ctx, "trip-1", "A", service.FilterMine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 || mine[0].PaidBy != "A" {
		t.Fatalf("expected only A's expense in filtered list, got %d entries", len(mine))
	}

	all, err := ledger.Expenses(ctx, "trip-1", "A", service.FilterAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 expenses unfiltered, got %d", len(all))
	}

	// The display filter never narrows the balance formulas.
	summary, err := ledger.Summary(ctx, "trip-1", "A", "TWD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(summary.TotalSpend, 63+210) {
		t.Errorf("expected total over full set = 273, got %v", summary.TotalSpend)
	}
}

func TestLedger_EmptyTripID(t *testing.T) {
	t.Parallel()

	expenseRepo := NewMockExpenseRepository()
	cache, converter := newTestConverter(nil)
	ledger := service.NewLedgerService(expenseRepo, converter, cache)

	if _, err := ledger.Load(context.Background(), ""); err != service.ErrInvalidTripID {
		t.Errorf("expected ErrInvalidTripID, got %v", err)
	}
}
