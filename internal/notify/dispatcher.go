package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/farellandr/museum-tickets/internal/logging"
	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/lithammer/shortuuid/v3"
)

// Dispatcher publishes ticket lifecycle events for out of band processing.
type Dispatcher struct {
	publisher message.Publisher
	now       func() time.Time
}

func NewDispatcher(publisher message.Publisher) *Dispatcher {
	return &Dispatcher{publisher: publisher, now: time.Now}
}

func (d *Dispatcher) TicketIssued(ctx context.Context, ticket models.Ticket, event models.Event) error {
	return d.publish(ctx, TopicTicketIssued, TicketIssued{
		TicketID:      ticket.ID,
		EventID:       event.ID,
		EventTitle:    event.Title,
		CustomerName:  ticket.CustomerName,
		CustomerEmail: ticket.CustomerEmail,
		CustomerDni:   ticket.CustomerDni,
		Quantity:      ticket.Quantity,
		TotalPrice:    ticket.TotalPrice,
		Currency:      ticket.Currency,
		SelectedDate:  deref(ticket.SelectedDate),
		SelectedTime:  deref(ticket.SelectedTime),
		IssuedAt:      d.now(),
	})
}

func (d *Dispatcher) TicketValidated(ctx context.Context, ticket models.Ticket) error {
	validatedAt := d.now()
	if ticket.UsedDate != nil {
		validatedAt = *ticket.UsedDate
	}
	return d.publish(ctx, TopicTicketValidated, TicketValidated{
		TicketID:    ticket.ID,
		EventID:     ticket.EventID,
		Quantity:    ticket.Quantity,
		ValidatedAt: validatedAt,
	})
}

func (d *Dispatcher) TicketCancelled(ctx context.Context, ticket models.Ticket) error {
	return d.publish(ctx, TopicTicketCancelled, TicketCancelled{
		TicketID:    ticket.ID,
		EventID:     ticket.EventID,
		Quantity:    ticket.Quantity,
		CancelledAt: d.now(),
	})
}

func (d *Dispatcher) publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", topic, err)
	}

	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = "gen_" + shortuuid.New()
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID(correlationID, msg)
	msg.Metadata.Set("type", topic)

	if err := d.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
