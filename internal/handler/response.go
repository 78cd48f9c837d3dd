package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripledger/internal/repository"
	"tripledger/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Identity errors
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidExpenseID),
		errors.Is(err, service.ErrInvalidShareID),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidCurrency),
		errors.Is(err, service.ErrInvalidExpenseType),
		errors.Is(err, service.ErrInvalidPaidBy),
		errors.Is(err, service.ErrInvalidPaymentStatus),
		errors.Is(err, service.ErrSharesOnPersonalExpense),
		errors.Is(err, service.ErrNoShares):
		return http.StatusBadRequest

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// participantID returns the acting participant's identity set by the
// identity middleware, or an empty string when the request carried none.
func participantID(c *gin.Context) string {
	return c.GetString("participantID")
}
