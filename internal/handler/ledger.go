package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripledger/internal/service"
)

// defaultReferenceCurrency is used when a summary request names no currency.
const defaultReferenceCurrency = "TWD"

// LedgerHandler handles HTTP requests for balance summaries.
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// SummaryResponse is the HTTP response for a participant's trip balances.
type SummaryResponse struct {
	ParticipantID     string  `json:"participant_id"`
	ReferenceCurrency string  `json:"reference_currency"`
	Paid              float64 `json:"paid"`
	Owed              float64 `json:"owed"`
	Lent              float64 `json:"lent"`
	ActualCost        float64 `json:"actual_cost"`
	TotalSpend        float64 `json:"total_spend"`
}

// GetSummary handles GET /v1/trips/:tripId/summary
func (h *LedgerHandler) GetSummary(c *gin.Context) {
	acting := participantID(c)
	if acting == "" {
		respondError(c, service.ErrNotAuthenticated)
		return
	}

	currency := c.DefaultQuery("currency", defaultReferenceCurrency)

	summary, err := h.ledgerService.Summary(c.Request.Context(), c.Param("tripId"), acting, currency)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SummaryResponse{
		ParticipantID:     summary.ParticipantID,
		ReferenceCurrency: summary.ReferenceCurrency,
		Paid:              summary.Paid,
		Owed:              summary.Owed,
		Lent:              summary.Lent,
		ActualCost:        summary.ActualCost,
		TotalSpend:        summary.TotalSpend,
	})
}

// RefreshTrip handles POST /v1/trips/:tripId/refresh
func (h *LedgerHandler) RefreshTrip(c *gin.Context) {
	if _, err := h.ledgerService.Load(c.Request.Context(), c.Param("tripId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearRates handles DELETE /v1/rates
func (h *LedgerHandler) ClearRates(c *gin.Context) {
	if err := h.ledgerService.ClearRates(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
