package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/farellandr/museum-tickets/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EventRepository interface {
	ListActive(ctx context.Context) ([]models.Event, error)
	ListAvailable(ctx context.Context, now time.Time) ([]models.Event, error)
	FindActive(ctx context.Context, id uuid.UUID) (*models.Event, error)
	FindOrCreateBySlug(ctx context.Context, event *models.Event) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, id uuid.UUID, fn func(event *models.Event) error) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DefaultEventSettings describe the general admission event created on demand.
type DefaultEventSettings struct {
	Title            string
	Description      string
	ShortDescription string
	Location         string
	Capacity         int
	Price            decimal.Decimal
	Currency         string
}

type EventInput struct {
	Title            string
	Description      string
	ShortDescription string
	ImageURL         string
	Location         string
	StartDate        time.Time
	EndDate          time.Time
	Capacity         int
	Price            decimal.Decimal
	Currency         string
	IsActive         *bool
}

type EventService struct {
	events   EventRepository
	defaults DefaultEventSettings
	now      func() time.Time
}

func NewEventService(events EventRepository, defaults DefaultEventSettings) *EventService {
	return &EventService{
		events:   events,
		defaults: defaults,
		now:      time.Now,
	}
}

func (s *EventService) ListActive(ctx context.Context) ([]models.Event, error) {
	return s.events.ListActive(ctx)
}

func (s *EventService) GetByID(ctx context.Context, id string) (*models.Event, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, NotFound("Event not found")
	}

	event, err := s.events.FindActive(ctx, eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("Event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("finding event: %w", err)
	}
	return event, nil
}

// ListAvailable returns events open for sale. With none open it falls back
// to the general admission event.
func (s *EventService) ListAvailable(ctx context.Context) ([]models.Event, error) {
	events, err := s.events.ListAvailable(ctx, s.now())
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		return events, nil
	}

	event, err := s.DefaultEvent(ctx)
	if KindOf(err) == KindNotFound {
		return []models.Event{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []models.Event{*event}, nil
}

// DefaultEvent returns the general admission event, creating it on first use.
func (s *EventService) DefaultEvent(ctx context.Context) (*models.Event, error) {
	now := s.now()
	slug := models.DefaultEventSlug

	event, err := s.events.FindOrCreateBySlug(ctx, &models.Event{
		Slug:             &slug,
		Title:            s.defaults.Title,
		Description:      s.defaults.Description,
		ShortDescription: s.defaults.ShortDescription,
		Location:         s.defaults.Location,
		StartDate:        now,
		EndDate:          time.Date(now.Year()+1, time.December, 31, 23, 59, 59, 0, now.Location()),
		Capacity:         s.defaults.Capacity,
		AvailableTickets: s.defaults.Capacity,
		Price:            s.defaults.Price,
		Currency:         s.defaults.Currency,
		IsActive:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving default event: %w", err)
	}
	if !event.IsActive {
		return nil, NotFound("Event not found")
	}
	return event, nil
}

func (s *EventService) Create(ctx context.Context, input EventInput) (*models.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event := &models.Event{
		IsActive:         true,
		AvailableTickets: input.Capacity,
	}
	applyEventInput(event, input)

	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Update(ctx context.Context, id string, input EventInput) (*models.Event, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, NotFound("Event not found")
	}
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event, err := s.events.Update(ctx, eventID, func(event *models.Event) error {
		applyEventInput(event, input)
		return nil
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, NotFound("Event not found")
	case errors.Is(err, store.ErrCapacityBelowSold):
		return nil, BadRequest("Capacity cannot be lower than tickets already sold")
	case err != nil:
		return nil, fmt.Errorf("updating event: %w", err)
	}
	return event, nil
}

// Delete removes the event together with its tickets and payments.
func (s *EventService) Delete(ctx context.Context, id string) error {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return NotFound("Event not found")
	}

	err = s.events.Delete(ctx, eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Event not found")
	}
	return err
}

func validateEventInput(input EventInput) error {
	if !input.EndDate.After(input.StartDate) {
		return BadRequest("End date must be after start date")
	}
	if input.Capacity < 0 {
		return BadRequest("Capacity cannot be negative")
	}
	if input.Price.IsNegative() {
		return BadRequest("Price cannot be negative")
	}
	return nil
}

func applyEventInput(event *models.Event, input EventInput) {
	event.Title = input.Title
	event.Description = input.Description
	event.ShortDescription = input.ShortDescription
	event.ImageURL = input.ImageURL
	event.Location = input.Location
	event.StartDate = input.StartDate
	event.EndDate = input.EndDate
	event.Capacity = input.Capacity
	event.Price = input.Price
	event.Currency = input.Currency
	if event.Currency == "" {
		event.Currency = "ARS"
	}
	if input.IsActive != nil {
		event.IsActive = *input.IsActive
	}
}
