package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/farellandr/museum-tickets/internal/helpers"
	"github.com/farellandr/museum-tickets/internal/services"
	"github.com/gin-gonic/gin"
)

type PreferenceRequest struct {
	TicketID   string `json:"ticketId" binding:"required"`
	SuccessURL string `json:"successUrl" binding:"omitempty,url"`
	FailureURL string `json:"failureUrl" binding:"omitempty,url"`
	PendingURL string `json:"pendingUrl" binding:"omitempty,url"`
}

func (h *Handler) CreatePreference(c *gin.Context) {
	var req PreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	preference, err := h.payments.CreatePreference(c.Request.Context(), services.PreferenceInput{
		TicketID:   req.TicketID,
		SuccessURL: req.SuccessURL,
		FailureURL: req.FailureURL,
		PendingURL: req.PendingURL,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, preference)
}

// PaymentWebhook accepts any JSON body, including an empty one.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid webhook payload.")
		return
	}

	payload := map[string]any{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid webhook payload.")
			return
		}
	}
	c.JSON(http.StatusOK, h.payments.HandleWebhook(c.Request.Context(), payload))
}

func (h *Handler) PaymentStatus(c *gin.Context) {
	payment, err := h.payments.GetStatus(c.Request.Context(), c.Param("ticketId"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
