package handlers

import (
	"net/http"
	"strings"

	"github.com/farellandr/museum-tickets/internal/helpers"
	"github.com/farellandr/museum-tickets/internal/services"
	"github.com/gin-gonic/gin"
)

type CreateTicketRequest struct {
	EventID       string `json:"eventId" binding:"required"`
	CustomerName  string `json:"customerName" binding:"required"`
	CustomerEmail string `json:"customerEmail" binding:"required,email"`
	CustomerDni   string `json:"customerDni" binding:"required"`
	CustomerPhone string `json:"customerPhone"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	SelectedDate  string `json:"selectedDate" binding:"omitempty,datetime=2006-01-02"`
	SelectedTime  string `json:"selectedTime"`
}

type ValidateQRRequest struct {
	QRCode string `json:"qrCode"`
	Code   string `json:"code"`
}

func (req ValidateQRRequest) value() string {
	if code := strings.TrimSpace(req.QRCode); code != "" {
		return code
	}
	return strings.TrimSpace(req.Code)
}

func (h *Handler) CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	ticket, err := h.tickets.Create(c.Request.Context(), services.CreateTicketInput{
		EventID:       req.EventID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerDni:   req.CustomerDni,
		CustomerPhone: req.CustomerPhone,
		Quantity:      req.Quantity,
		SelectedDate:  req.SelectedDate,
		SelectedTime:  req.SelectedTime,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *Handler) ListTickets(c *gin.Context) {
	tickets, err := h.tickets.FindAll(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *Handler) GetTicket(c *gin.Context) {
	ticket, err := h.tickets.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *Handler) GetTicketQR(c *gin.Context) {
	png, err := h.tickets.QRImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) SearchByEmail(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Email is required.")
		return
	}

	tickets, err := h.tickets.FindByEmail(c.Request.Context(), email)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *Handler) SearchByDni(c *gin.Context) {
	dni := strings.TrimSpace(c.Query("dni"))
	if dni == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "DNI is required.")
		return
	}

	tickets, err := h.tickets.FindByDni(c.Request.Context(), dni)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// ValidateQR answers 200 for both outcomes; the body's success flag tells
// the scanner whether to admit the visitor.
func (h *Handler) ValidateQR(c *gin.Context) {
	var req ValidateQRRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.value() == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "QR code is required.")
		return
	}

	result, err := h.tickets.ValidateCode(c.Request.Context(), req.value())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CancelTicket(c *gin.Context) {
	ticket, err := h.tickets.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.tickets.GetStats(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) RecentValidations(c *gin.Context) {
	limit, err := helpers.QueryInt(c, "limit", 0)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Limit must be a number.")
		return
	}

	tickets, err := h.tickets.GetRecentValidations(c.Request.Context(), limit)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *Handler) SlotOccupancy(c *gin.Context) {
	days, err := helpers.QueryInt(c, "days", 0)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Days must be a number.")
		return
	}

	slots, err := h.tickets.SlotOccupancy(c.Request.Context(), days)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}
