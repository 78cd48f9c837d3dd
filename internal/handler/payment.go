package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripledger/internal/domain"
	"tripledger/internal/service"
)

// PaymentHandler handles HTTP requests for payment-share status transitions.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// UpdateShareStatusRequest is the HTTP request body for a status transition.
type UpdateShareStatusRequest struct {
	Status string `json:"status"`
}

// UpdateShareStatus handles POST /v1/shares/:id/status
func (h *PaymentHandler) UpdateShareStatus(c *gin.Context) {
	var req UpdateShareStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if participantID(c) == "" {
		respondError(c, service.ErrNotAuthenticated)
		return
	}

	err := h.paymentService.UpdateShareStatus(c.Request.Context(), c.Param("id"), domain.PaymentStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
