package handlers

import (
	"net/http"
	"time"

	"github.com/farellandr/museum-tickets/internal/helpers"
	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/farellandr/museum-tickets/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type EventRequest struct {
	Title            string          `json:"title" binding:"required"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"shortDescription"`
	ImageURL         string          `json:"imageUrl" binding:"omitempty,url"`
	Location         string          `json:"location"`
	StartDate        time.Time       `json:"startDate" binding:"required"`
	EndDate          time.Time       `json:"endDate" binding:"required"`
	Capacity         int             `json:"capacity" binding:"min=0"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency" binding:"omitempty,len=3"`
	IsActive         *bool           `json:"isActive"`
}

func (req EventRequest) input() services.EventInput {
	return services.EventInput{
		Title:            req.Title,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		ImageURL:         req.ImageURL,
		Location:         req.Location,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Capacity:         req.Capacity,
		Price:            req.Price,
		Currency:         req.Currency,
		IsActive:         req.IsActive,
	}
}

type eventView struct {
	models.Event
	IsAvailable   bool    `json:"isAvailable"`
	SoldTickets   int     `json:"soldTickets"`
	OccupancyRate float64 `json:"occupancyRate"`
}

func newEventView(event *models.Event) eventView {
	return eventView{
		Event:         *event,
		IsAvailable:   event.IsAvailable(time.Now()),
		SoldTickets:   event.SoldTickets(),
		OccupancyRate: event.OccupancyRate(),
	}
}

func newEventViews(events []models.Event) []eventView {
	views := make([]eventView, 0, len(events))
	for i := range events {
		views = append(views, newEventView(&events[i]))
	}
	return views
}

func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.events.ListActive(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventViews(events))
}

func (h *Handler) ListAvailableEvents(c *gin.Context) {
	events, err := h.events.ListAvailable(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventViews(events))
}

func (h *Handler) GetEvent(c *gin.Context) {
	event, err := h.events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventView(event))
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	event, err := h.events.Create(c.Request.Context(), req.input())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newEventView(event))
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	event, err := h.events.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventView(event))
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted successfully.",
	})
}
