package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farellandr/museum-tickets/internal/helpers"
	"github.com/farellandr/museum-tickets/internal/logging"
	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/farellandr/museum-tickets/internal/monitoring"
	"github.com/farellandr/museum-tickets/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultEventID selects the general admission event when creating tickets.
const DefaultEventID = "default-event"

const (
	defaultValidationsLimit = 10
	maxValidationsLimit     = 100

	msgNotRedeemable = "Ticket not found, expired, or already used"
	msgEventEnded    = "Event has already ended"
)

type TicketRepository interface {
	CreateWithInventory(ctx context.Context, ticket *models.Ticket) error
	SetQRCode(ctx context.Context, id uuid.UUID, qrCode string) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	List(ctx context.Context) ([]models.Ticket, error)
	ListByEmail(ctx context.Context, email string) ([]models.Ticket, error)
	ListByDni(ctx context.Context, dni string) ([]models.Ticket, error)
	ListRecentlyUsed(ctx context.Context, limit int) ([]models.Ticket, error)
	FindRedeemableByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	FindRedeemableByQR(ctx context.Context, qrCode string) (*models.Ticket, error)
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	Cancel(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, since time.Time) (models.DashboardStats, error)
	SlotCounts(ctx context.Context, from, to string) ([]models.SlotCount, error)
}

// Notifier receives ticket lifecycle events. Implementations must not block
// on delivery; returned errors are logged only.
type Notifier interface {
	TicketIssued(ctx context.Context, ticket models.Ticket, event models.Event) error
	TicketValidated(ctx context.Context, ticket models.Ticket) error
	TicketCancelled(ctx context.Context, ticket models.Ticket) error
}

type EventResolver interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
	DefaultEvent(ctx context.Context) (*models.Event, error)
}

type CreateTicketInput struct {
	EventID       string
	CustomerName  string
	CustomerEmail string
	CustomerDni   string
	CustomerPhone string
	Quantity      int
	SelectedDate  string
	SelectedTime  string
}

type ValidatedTicket struct {
	ID           uuid.UUID `json:"id"`
	CustomerName string    `json:"customerName"`
	EventTitle   string    `json:"eventTitle"`
	Quantity     int       `json:"quantity"`
}

type ValidationResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Ticket  *ValidatedTicket `json:"ticket,omitempty"`
}

type TicketService struct {
	tickets  TicketRepository
	events   EventResolver
	notifier Notifier
	qrCode   func(uuid.UUID) (string, error)
	now      func() time.Time
}

func NewTicketService(tickets TicketRepository, events EventResolver, notifier Notifier) *TicketService {
	return &TicketService{
		tickets:  tickets,
		events:   events,
		notifier: notifier,
		qrCode:   helpers.GenerateQRCode,
		now:      time.Now,
	}
}

// Create sells input.Quantity admissions. The ticket is paid on creation; the
// QR code and the confirmation email are best effort.
func (s *TicketService) Create(ctx context.Context, input CreateTicketInput) (*models.Ticket, error) {
	if input.Quantity < 1 {
		return nil, BadRequest("Quantity must be at least 1")
	}

	event, err := s.resolveEvent(ctx, input.EventID)
	if err != nil {
		return nil, err
	}
	if event.AvailableTickets < input.Quantity {
		return nil, BadRequest("Not enough tickets available")
	}

	now := s.now()
	ticket := &models.Ticket{
		EventID:       event.ID,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerDni:   input.CustomerDni,
		CustomerPhone: input.CustomerPhone,
		Quantity:      input.Quantity,
		TotalPrice:    event.Price.Mul(decimal.NewFromInt(int64(input.Quantity))),
		Currency:      event.Currency,
		Status:        models.TicketPaid,
		PurchaseDate:  &now,
		SelectedDate:  optional(input.SelectedDate),
		SelectedTime:  optional(input.SelectedTime),
	}

	err = s.tickets.CreateWithInventory(ctx, ticket)
	if errors.Is(err, store.ErrSoldOut) {
		return nil, BadRequest("Not enough tickets available")
	}
	if err != nil {
		return nil, fmt.Errorf("creating ticket: %w", err)
	}
	event.AvailableTickets -= input.Quantity
	monitoring.TicketsIssued(ticket.Quantity)

	s.assignQRCode(ctx, ticket)

	if err := s.notifier.TicketIssued(ctx, *ticket, *event); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("ticket_id", ticket.ID).Warn("Could not dispatch ticket confirmation")
	}

	ticket.Event = event
	return ticket, nil
}

func (s *TicketService) resolveEvent(ctx context.Context, eventID string) (*models.Event, error) {
	if eventID == DefaultEventID {
		return s.events.DefaultEvent(ctx)
	}
	return s.events.GetByID(ctx, eventID)
}

func (s *TicketService) assignQRCode(ctx context.Context, ticket *models.Ticket) {
	log := logging.FromContext(ctx).WithField("ticket_id", ticket.ID)

	qrCode, err := s.qrCode(ticket.ID)
	if err != nil {
		log.WithError(err).Warn("Could not generate QR code")
		return
	}
	if err := s.tickets.SetQRCode(ctx, ticket.ID, qrCode); err != nil {
		log.WithError(err).Warn("Could not store QR code")
		return
	}
	ticket.QRCode = &qrCode
}

func (s *TicketService) FindAll(ctx context.Context) ([]models.Ticket, error) {
	return s.tickets.List(ctx)
}

func (s *TicketService) FindOne(ctx context.Context, id string) (*models.Ticket, error) {
	ticketID, err := uuid.Parse(id)
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
	return ticket, nil
}

func (s *TicketService) FindByEmail(ctx context.Context, email string) ([]models.Ticket, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, BadRequest("Email is required")
	}
	return s.tickets.ListByEmail(ctx, email)
}

func (s *TicketService) FindByDni(ctx context.Context, dni string) ([]models.Ticket, error) {
	dni = strings.TrimSpace(dni)
	if dni == "" {
		return nil, BadRequest("DNI is required")
	}
	return s.tickets.ListByDni(ctx, dni)
}

// ValidateCode redeems a ticket by id or QR payload. Each paid ticket can be
// redeemed exactly once; every other outcome is reported in the result.
func (s *TicketService) ValidateCode(ctx context.Context, code string) (*ValidationResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, BadRequest("QR code is required")
	}

	var (
		ticket *models.Ticket
		err    error
	)
	if id, parseErr := uuid.Parse(code); parseErr == nil {
		ticket, err = s.tickets.FindRedeemableByID(ctx, id)
	} else {
		ticket, err = s.tickets.FindRedeemableByQR(ctx, code)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		monitoring.TicketValidated("rejected")
		return &ValidationResult{Success: false, Message: msgNotRedeemable}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding ticket: %w", err)
	}

	now := s.now()
	if ticket.Event != nil && !now.Before(ticket.Event.EndDate) {
		monitoring.TicketValidated("event_ended")
		return &ValidationResult{Success: false, Message: msgEventEnded}, nil
	}

	err = s.tickets.MarkUsed(ctx, ticket.ID, now)
	if errors.Is(err, store.ErrStatusConflict) {
		monitoring.TicketValidated("rejected")
		return &ValidationResult{Success: false, Message: msgNotRedeemable}, nil
	}
	if err != nil {
		return nil, err
	}
	monitoring.TicketValidated("valid")

	ticket.Status = models.TicketUsed
	ticket.QRValidated = true
	ticket.UsedDate = &now
	if err := s.notifier.TicketValidated(ctx, *ticket); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("ticket_id", ticket.ID).Warn("Could not publish ticket validation")
	}

	validated := &ValidatedTicket{
		ID:           ticket.ID,
		CustomerName: ticket.CustomerName,
		Quantity:     ticket.Quantity,
	}
	if ticket.Event != nil {
		validated.EventTitle = ticket.Event.Title
	}
	return &ValidationResult{Success: true, Message: "Ticket validated successfully", Ticket: validated}, nil
}

// Cancel voids a paid ticket and returns its admissions to the event.
func (s *TicketService) Cancel(ctx context.Context, id string) (*models.Ticket, error) {
	ticketID, err := uuid.Parse(id)
	if err != nil {
		return nil, NotFound("Ticket not found")
	}

	err = s.tickets.Cancel(ctx, ticketID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, NotFound("Ticket not found")
	case errors.Is(err, store.ErrStatusConflict):
		return nil, BadRequest("Only paid tickets can be cancelled")
	case err != nil:
		return nil, fmt.Errorf("cancelling ticket: %w", err)
	}
	monitoring.TicketCancelled()

	ticket, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.notifier.TicketCancelled(ctx, *ticket); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("ticket_id", ticket.ID).Warn("Could not publish ticket cancellation")
	}
	return ticket, nil
}

func (s *TicketService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	return s.tickets.Stats(ctx, startOfDay(s.now()))
}

func (s *TicketService) GetRecentValidations(ctx context.Context, limit int) ([]models.Ticket, error) {
	if limit <= 0 {
		limit = defaultValidationsLimit
	}
	if limit > maxValidationsLimit {
		limit = maxValidationsLimit
	}
	return s.tickets.ListRecentlyUsed(ctx, limit)
}

// QRImage renders the PNG QR image of an existing ticket.
func (s *TicketService) QRImage(ctx context.Context, id string) ([]byte, error) {
	ticket, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := helpers.QRCodePNG(ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("rendering qr code: %w", err)
	}
	return png, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
