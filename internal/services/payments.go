package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/farellandr/museum-tickets/internal/helpers"
	"github.com/farellandr/museum-tickets/internal/logging"
	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/farellandr/museum-tickets/internal/store"
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Approve(ctx context.Context, payment *models.Payment, paidAt time.Time) error
	LatestForTicket(ctx context.Context, ticketID uuid.UUID) (*models.Payment, error)
}

type PreferenceInput struct {
	TicketID   string
	SuccessURL string
	FailureURL string
	PendingURL string
}

type Preference struct {
	PreferenceID string          `json:"preferenceId"`
	InitPoint    string          `json:"initPoint"`
	TicketID     uuid.UUID       `json:"ticketId"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Message      string          `json:"message"`
}

type WebhookAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PaymentService simulates a checkout gateway: every preference is approved
// immediately.
type PaymentService struct {
	payments   PaymentRepository
	tickets    TicketRepository
	successURL string
	qrCode     func(uuid.UUID) (string, error)
	now        func() time.Time
}

func NewPaymentService(payments PaymentRepository, tickets TicketRepository, successURL string) *PaymentService {
	return &PaymentService{
		payments:   payments,
		tickets:    tickets,
		successURL: successURL,
		qrCode:     helpers.GenerateQRCode,
		now:        time.Now,
	}
}

func (s *PaymentService) CreatePreference(ctx context.Context, input PreferenceInput) (*Preference, error) {
	ticketID, err := uuid.Parse(input.TicketID)
	if err != nil {
		return nil, NotFound("Ticket not found")
	}

	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("Ticket not found")
	}
	if err != nil {
		return nil, fmt.Errorf("finding ticket: %w", err)
	}
	if ticket.Status != models.TicketPending {
		return nil, BadRequest("Ticket is not pending payment")
	}

	now := s.now()
	payment := &models.Payment{
		TicketID:                  ticket.ID,
		GatewayPreferenceID:       "pref_" + shortuuid.New(),
		Amount:                    ticket.TotalPrice,
		Currency:                  ticket.Currency,
		Status:                    models.PaymentApproved,
		PayerEmail:                ticket.CustomerEmail,
		PayerIdentificationType:   "DNI",
		PayerIdentificationNumber: ticket.CustomerDni,
		PaymentDate:               &now,
	}

	err = s.payments.Approve(ctx, payment, now)
	if errors.Is(err, store.ErrStatusConflict) {
		return nil, BadRequest("Ticket is not pending payment")
	}
	if err != nil {
		return nil, fmt.Errorf("approving payment: %w", err)
	}

	if ticket.QRCode == nil {
		if qrCode, err := s.qrCode(ticket.ID); err != nil {
			logging.FromContext(ctx).WithError(err).WithField("ticket_id", ticket.ID).Warn("Could not generate QR code")
		} else if err := s.tickets.SetQRCode(ctx, ticket.ID, qrCode); err != nil {
			logging.FromContext(ctx).WithError(err).WithField("ticket_id", ticket.ID).Warn("Could not store QR code")
		}
	}

	return &Preference{
		PreferenceID: payment.GatewayPreferenceID,
		InitPoint:    s.initPoint(input.SuccessURL, ticket.ID),
		TicketID:     ticket.ID,
		Amount:       payment.Amount,
		Currency:     payment.Currency,
		Message:      "Payment approved",
	}, nil
}

func (s *PaymentService) initPoint(successURL string, ticketID uuid.UUID) string {
	if successURL == "" {
		successURL = s.successURL
	}
	return successURL + "?ticket=" + url.QueryEscape(ticketID.String())
}

// HandleWebhook acknowledges gateway notifications; they are only logged.
// Payer details stay out of the logs.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload map[string]any) WebhookAck {
	logging.FromContext(ctx).WithFields(webhookFields(payload)).Info("Payment webhook received")
	return WebhookAck{Success: true, Message: "Webhook received"}
}

func webhookFields(payload map[string]any) logrus.Fields {
	fields := logrus.Fields{}
	for _, key := range []string{"type", "action"} {
		if value, ok := payload[key].(string); ok {
			fields[key] = value
		}
	}
	if data, ok := payload["data"].(map[string]any); ok {
		if id, ok := data["id"]; ok {
			fields["data_id"] = id
		}
	}
	return fields
}

func (s *PaymentService) GetStatus(ctx context.Context, ticketID string) (*models.Payment, error) {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return nil, NotFound("Payment not found")
	}

	payment, err := s.payments.LatestForTicket(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("Payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("finding payment: %w", err)
	}
	return payment, nil
}
