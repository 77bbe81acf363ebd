package handlers

import (
	"context"
	"net/http"

	"github.com/farellandr/museum-tickets/internal/helpers"
	"github.com/farellandr/museum-tickets/internal/logging"
	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/farellandr/museum-tickets/internal/services"
	"github.com/gin-gonic/gin"
)

type EventCatalog interface {
	ListActive(ctx context.Context) ([]models.Event, error)
	ListAvailable(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, input services.EventInput) (*models.Event, error)
	Update(ctx context.Context, id string, input services.EventInput) (*models.Event, error)
	Delete(ctx context.Context, id string) error
}

type TicketDesk interface {
	Create(ctx context.Context, input services.CreateTicketInput) (*models.Ticket, error)
	FindAll(ctx context.Context) ([]models.Ticket, error)
	FindOne(ctx context.Context, id string) (*models.Ticket, error)
	FindByEmail(ctx context.Context, email string) ([]models.Ticket, error)
	FindByDni(ctx context.Context, dni string) ([]models.Ticket, error)
	ValidateCode(ctx context.Context, code string) (*services.ValidationResult, error)
	Cancel(ctx context.Context, id string) (*models.Ticket, error)
	GetStats(ctx context.Context) (models.DashboardStats, error)
	GetRecentValidations(ctx context.Context, limit int) ([]models.Ticket, error)
	SlotOccupancy(ctx context.Context, days int) ([]models.SlotOccupancy, error)
	QRImage(ctx context.Context, id string) ([]byte, error)
}

type PaymentDesk interface {
	CreatePreference(ctx context.Context, input services.PreferenceInput) (*services.Preference, error)
	HandleWebhook(ctx context.Context, payload map[string]any) services.WebhookAck
	GetStatus(ctx context.Context, ticketID string) (*models.Payment, error)
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	GetProfile(ctx context.Context, userID string) (*services.Profile, error)
}

type Handler struct {
	events   EventCatalog
	tickets  TicketDesk
	payments PaymentDesk
	auth     Authenticator
}

func New(events EventCatalog, tickets TicketDesk, payments PaymentDesk, auth Authenticator) *Handler {
	return &Handler{
		events:   events,
		tickets:  tickets,
		payments: payments,
		auth:     auth,
	}
}

// respondWithServiceError maps a service failure onto the error envelope.
// Unclassified errors are logged and reported as a generic 500.
func respondWithServiceError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindNotFound:
		helpers.RespondWithError(c, http.StatusNotFound, err.Error())
	case services.KindBadRequest:
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
	case services.KindUnauthorized:
		helpers.RespondWithError(c, http.StatusUnauthorized, err.Error())
	default:
		logging.FromContext(c.Request.Context()).WithError(err).
			WithField("route", c.FullPath()).
			Error("Request failed")
		helpers.RespondWithError(c, http.StatusInternalServerError, "Something went wrong.")
	}
}
