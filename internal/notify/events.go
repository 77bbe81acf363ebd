package notify

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TopicTicketIssued    = "ticket.issued"
	TopicTicketValidated = "ticket.validated"
	TopicTicketCancelled = "ticket.cancelled"
)

var lifecycleTopics = []string{TopicTicketIssued, TopicTicketValidated, TopicTicketCancelled}

type TicketIssued struct {
	TicketID      uuid.UUID       `json:"ticketId"`
	EventID       uuid.UUID       `json:"eventId"`
	EventTitle    string          `json:"eventTitle"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerDni   string          `json:"customerDni"`
	Quantity      int             `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Currency      string          `json:"currency"`
	SelectedDate  string          `json:"selectedDate,omitempty"`
	SelectedTime  string          `json:"selectedTime,omitempty"`
	IssuedAt      time.Time       `json:"issuedAt"`
}

type TicketValidated struct {
	TicketID    uuid.UUID `json:"ticketId"`
	EventID     uuid.UUID `json:"eventId"`
	Quantity    int       `json:"quantity"`
	ValidatedAt time.Time `json:"validatedAt"`
}

type TicketCancelled struct {
	TicketID    uuid.UUID `json:"ticketId"`
	EventID     uuid.UUID `json:"eventId"`
	Quantity    int       `json:"quantity"`
	CancelledAt time.Time `json:"cancelledAt"`
}
