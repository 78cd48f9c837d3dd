package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tripledger/internal/domain"
	"tripledger/internal/repository"
)

// ExpenseRepository is a PostgreSQL implementation of repository.ExpenseRepository.
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new PostgreSQL expense repository.
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// ListByTrip retrieves all expenses for a trip, newest first, with shares populated.
func (r *ExpenseRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Expense, error) {
	query := `
		SELECT id, trip_id, description, category, amount, currency, expense_type, paid_by, created_at
		FROM expenses WHERE trip_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*domain.Expense
	byID := make(map[string]*domain.Expense)
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.TripID, &e.Description, &e.Category, &e.Amount, &e.Currency, &e.ExpenseType, &e.PaidBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, &e)
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	shareQuery := `
		SELECT s.id, s.expense_id, s.payer_id, s.amount, s.status, s.settled_at
		FROM payment_shares s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.trip_id = $1
		ORDER BY s.id
	`

	shareRows, err := r.db.QueryContext(ctx, shareQuery, tripID)
	if err != nil {
		return nil, err
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var s domain.PaymentShare
		var settledAt sql.NullTime
		if err := shareRows.Scan(&s.ID, &s.ExpenseID, &s.PayerID, &s.Amount, &s.Status, &settledAt); err != nil {
			return nil, err
		}
		if settledAt.Valid {
			t := settledAt.Time
			s.SettledAt = &t
		}
		if expense, ok := byID[s.ExpenseID]; ok {
			expense.Shares = append(expense.Shares, s)
		}
	}
	return expenses, shareRows.Err()
}

// Create persists a new expense and its payment shares in one transaction.
func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (id, trip_id, description, category, amount, currency, expense_type, paid_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.ExecContext(ctx, query,
		expense.ID,
		expense.TripID,
		expense.Description,
		expense.Category,
		expense.Amount,
		expense.Currency,
		expense.ExpenseType,
		expense.PaidBy,
		expense.CreatedAt,
	)
	if err != nil {
		return err
	}

	shareQuery := `
		INSERT INTO payment_shares (id, expense_id, payer_id, amount, status, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, share := range expense.Shares {
		var settledAt sql.NullTime
		if share.SettledAt != nil {
			settledAt = sql.NullTime{Time: *share.SettledAt, Valid: true}
		}
		_, err = tx.ExecContext(ctx, shareQuery,
			share.ID,
			share.ExpenseID,
			share.PayerID,
			share.Amount,
			share.Status,
			settledAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpdateShareStatus updates a payment share's status and settlement time.
func (r *ExpenseRepository) UpdateShareStatus(ctx context.Context, shareID string, status domain.PaymentStatus, settledAt *time.Time) error {
	query := `UPDATE payment_shares SET status = $1, settled_at = $2 WHERE id = $3`

	var settled sql.NullTime
	if settledAt != nil {
		settled = sql.NullTime{Time: *settledAt, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query, status, settled, shareID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes an expense and its payment shares in one transaction.
func (r *ExpenseRepository) Delete(ctx context.Context, expenseID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payment_shares WHERE expense_id = $1`, expenseID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, expenseID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return tx.Commit()
}

// Ensure interface is satisfied.
var _ repository.ExpenseRepository = (*ExpenseRepository)(nil)
