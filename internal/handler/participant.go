package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripledger/internal/domain"
	"tripledger/internal/repository"
)

// ParticipantHandler handles HTTP requests for trip participants.
type ParticipantHandler struct {
	participantRepo repository.ParticipantRepository
}

// NewParticipantHandler creates a new ParticipantHandler.
func NewParticipantHandler(participantRepo repository.ParticipantRepository) *ParticipantHandler {
	return &ParticipantHandler{participantRepo: participantRepo}
}

// RegisterParticipantRequest is the HTTP request body for joining a trip.
type RegisterParticipantRequest struct {
	DisplayName string `json:"display_name"`
}

// ParticipantResponse is the HTTP response for participant data.
type ParticipantResponse struct {
	ID          string `json:"id"`
	TripID      string `json:"trip_id"`
	DisplayName string `json:"display_name"`
}

// Register handles POST /v1/trips/:tripId/participants
func (h *ParticipantHandler) Register(c *gin.Context) {
	var req RegisterParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	tripID := c.Param("tripId")
	if tripID == "" || req.DisplayName == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "trip id and display_name are required"})
		return
	}

	participant := &domain.Participant{
		ID:          uuid.New().String(),
		TripID:      tripID,
		DisplayName: req.DisplayName,
		CreatedAt:   time.Now(),
	}

	if err := h.participantRepo.Create(c.Request.Context(), participant); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ParticipantResponse{
		ID:          participant.ID,
		TripID:      participant.TripID,
		DisplayName: participant.DisplayName,
	})
}

// GetAll handles GET /v1/trips/:tripId/participants
func (h *ParticipantHandler) GetAll(c *gin.Context) {
	participants, err := h.participantRepo.ListByTrip(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ParticipantResponse, 0, len(participants))
	for _, participant := range participants {
		response = append(response, ParticipantResponse{
			ID:          participant.ID,
			TripID:      participant.TripID,
			DisplayName: participant.DisplayName,
		})
	}

	c.JSON(http.StatusOK, response)
}
