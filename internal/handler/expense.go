package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripledger/internal/domain"
	"tripledger/internal/service"
)

// ExpenseHandler handles HTTP requests for expenses.
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	ledgerService  *service.LedgerService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService *service.ExpenseService, ledgerService *service.LedgerService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		ledgerService:  ledgerService,
	}
}

// CreateExpenseRequest is the HTTP request body for recording an expense.
type CreateExpenseRequest struct {
	TripID      string               `json:"trip_id"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Amount      float64              `json:"amount"`
	Currency    string               `json:"currency"`
	ExpenseType string               `json:"expense_type"`
	PaidBy      string               `json:"paid_by"`
	Shares      []CreateShareRequest `json:"shares"`
}

// CreateShareRequest is one participant's portion in the request body.
type CreateShareRequest struct {
	PayerID string  `json:"payer_id"`
	Amount  float64 `json:"amount"`
}

// ExpenseResponse is the HTTP response for a single expense.
type ExpenseResponse struct {
	ID          string          `json:"id"`
	TripID      string          `json:"trip_id"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Amount      float64         `json:"amount"`
	Currency    string          `json:"currency"`
	ExpenseType string          `json:"expense_type"`
	PaidBy      string          `json:"paid_by"`
	Shares      []ShareResponse `json:"shares,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ShareResponse is the HTTP representation of a payment share.
type ShareResponse struct {
	ID        string     `json:"id"`
	ExpenseID string     `json:"expense_id"`
	PayerID   string     `json:"payer_id"`
	Amount    float64    `json:"amount"`
	Status    string     `json:"status"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
}

// CreateExpense handles POST /v1/expenses
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if participantID(c) == "" {
		respondError(c, service.ErrNotAuthenticated)
		return
	}

	shares := make([]service.CreateShareRequest, 0, len(req.Shares))
	for _, share := range req.Shares {
		shares = append(shares, service.CreateShareRequest{
			PayerID: share.PayerID,
			Amount:  share.Amount,
		})
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), service.CreateExpenseRequest{
		TripID:      req.TripID,
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		Currency:    req.Currency,
		ExpenseType: domain.ExpenseType(req.ExpenseType),
		PaidBy:      req.PaidBy,
		Shares:      shares,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toExpenseResponse(expense))
}

// ListExpenses handles GET /v1/trips/:tripId/expenses
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	tripID := c.Param("tripId")
	filter := service.FilterMode(c.DefaultQuery("filter", string(service.FilterAll)))

	expenses, err := h.ledgerService.Expenses(c.Request.Context(), tripID, participantID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		response = append(response, toExpenseResponse(expense))
	}
	respondJSON(c, http.StatusOK, response)
}

// DeleteExpense handles DELETE /v1/expenses/:id
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if participantID(c) == "" {
		respondError(c, service.ErrNotAuthenticated)
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func toExpenseResponse(expense *domain.Expense) ExpenseResponse {
	shares := make([]ShareResponse, 0, len(expense.Shares))
	for _, share := range expense.Shares {
		shares = append(shares, ShareResponse{
			ID:        share.ID,
			ExpenseID: share.ExpenseID,
			PayerID:   share.PayerID,
			Amount:    share.Amount,
			Status:    string(share.Status),
			SettledAt: share.SettledAt,
		})
	}

	return ExpenseResponse{
		ID:          expense.ID,
		TripID:      expense.TripID,
		Description: expense.Description,
		Category:    expense.Category,
		Amount:      expense.Amount,
		Currency:    expense.Currency,
		ExpenseType: string(expense.ExpenseType),
		PaidBy:      expense.PaidBy,
		Shares:      shares,
		CreatedAt:   expense.CreatedAt,
	}
}
