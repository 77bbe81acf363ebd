package server

import (
	"net/http"

	"github.com/farellandr/museum-tickets/internal/handlers"
	"github.com/farellandr/museum-tickets/internal/middleware"
	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type routeDeps struct {
	handler   *handlers.Handler
	jwtSecret string
	limiter   gin.HandlerFunc
}

func setupRoutes(r *gin.Engine, deps routeDeps) {
	h := deps.handler
	admin := []gin.HandlerFunc{
		middleware.JWTAuthMiddleware(deps.jwtSecret),
		middleware.RequireRole(models.RoleAdmin),
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	events := r.Group("/events")
	{
		events.GET("", h.ListEvents)
		events.GET("/available", h.ListAvailableEvents)
		events.GET("/:id", h.GetEvent)

		eventAdmin := events.Group("", admin...)
		eventAdmin.POST("", h.CreateEvent)
		eventAdmin.PUT("/:id", h.UpdateEvent)
		eventAdmin.DELETE("/:id", h.DeleteEvent)
	}

	tickets := r.Group("/tickets")
	{
		tickets.POST("", deps.limiter, h.CreateTicket)
		tickets.GET("/:id", h.GetTicket)
		tickets.GET("/:id/qr", h.GetTicketQR)

		ticketAdmin := tickets.Group("", admin...)
		ticketAdmin.GET("", h.ListTickets)
		ticketAdmin.GET("/stats", h.GetStats)
		ticketAdmin.GET("/recent-validations", h.RecentValidations)
		ticketAdmin.GET("/search", h.SearchByEmail)
		ticketAdmin.GET("/search-dni", h.SearchByDni)
		ticketAdmin.GET("/slots", h.SlotOccupancy)
		ticketAdmin.POST("/validate-qr", h.ValidateQR)
		ticketAdmin.POST("/:id/cancel", h.CancelTicket)
	}

	payments := r.Group("/payments")
	{
		payments.POST("/create-preference", h.CreatePreference)
		payments.POST("/webhook", h.PaymentWebhook)
		payments.GET("/status/:ticketId", h.PaymentStatus)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/login", deps.limiter, h.Login)
		auth.GET("/profile", append(admin, h.Profile)...)
	}
}
