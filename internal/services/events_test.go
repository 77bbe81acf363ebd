package services

import (
	"context"
	"testing"
	"time"

	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

var testDefaults = DefaultEventSettings{
	Title:    "General Admission",
	Location: "Museo de la Carcel",
	Capacity: 10000,
	Price:    decimal.NewFromInt(2000),
	Currency: "ARS",
}

func newTestEventService(events *fakeEvents) *EventService {
	s := NewEventService(events, testDefaults)
	s.now = func() time.Time { return testNow }
	return s
}

func openEvent(title string, available int) models.Event {
	return models.Event{
		ID:               uuid.New(),
		Title:            title,
		StartDate:        testNow.Add(-time.Hour),
		EndDate:          testNow.Add(30 * 24 * time.Hour),
		Capacity:         available,
		AvailableTickets: available,
		Price:            decimal.NewFromInt(1500),
		Currency:         "ARS",
		IsActive:         true,
	}
}

func TestEventService_ListAvailable_FallsBackToDefaultEvent(t *testing.T) {
	ctx := context.Background()
	events := newFakeEvents()
	s := newTestEventService(events)

	first, err := s.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	event := first[0]
	assert.Equal(t, "General Admission", event.Title)
	assert.Equal(t, 10000, event.Capacity)
	assert.Equal(t, 10000, event.AvailableTickets)
	assert.True(t, event.Price.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, time.Date(2027, time.December, 31, 23, 59, 59, 0, time.UTC), event.EndDate)
	require.NotNil(t, event.Slug)
	assert.Equal(t, models.DefaultEventSlug, *event.Slug)

	second, err := s.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, event.ID, second[0].ID)
	assert.Len(t, events.events, 1)
}

func TestEventService_ListAvailable_SkipsClosedEvents(t *testing.T) {
	soldOut := openEvent("Sold out", 0)
	ended := openEvent("Ended", 10)
	ended.EndDate = testNow.Add(-time.Minute)
	inactive := openEvent("Inactive", 10)
	inactive.IsActive = false
	open := openEvent("Night tour", 20)

	s := newTestEventService(newFakeEvents(soldOut, ended, inactive, open))

	events, err := s.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Night tour", events[0].Title)
}

func TestEventService_ListAvailable_DisabledDefaultEvent(t *testing.T) {
	slug := models.DefaultEventSlug
	disabled := openEvent("General Admission", 100)
	disabled.Slug = &slug
	disabled.IsActive = false

	s := newTestEventService(newFakeEvents(disabled))

	events, err := s.ListAvailable(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventService_GetByID(t *testing.T) {
	ctx := context.Background()
	active := openEvent("Night tour", 20)
	inactive := openEvent("Closed wing", 20)
	inactive.IsActive = false
	s := newTestEventService(newFakeEvents(active, inactive))

	event, err := s.GetByID(ctx, active.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Night tour", event.Title)

	for _, id := range []string{"not-a-uuid", uuid.NewString(), inactive.ID.String()} {
		_, err := s.GetByID(ctx, id)
		assert.Equal(t, KindNotFound, KindOf(err), id)
	}
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()
	events := newFakeEvents()
	s := newTestEventService(events)

	event, err := s.Create(ctx, EventInput{
		Title:     "Night tour",
		StartDate: testNow,
		EndDate:   testNow.Add(24 * time.Hour),
		Capacity:  50,
		Price:     decimal.NewFromInt(3000),
	})
	require.NoError(t, err)
	assert.Equal(t, 50, event.AvailableTickets)
	assert.Equal(t, "ARS", event.Currency)
	assert.True(t, event.IsActive)
	assert.Contains(t, events.events, event.ID)

	_, err = s.Create(ctx, EventInput{Title: "Backwards", StartDate: testNow, EndDate: testNow.Add(-time.Hour)})
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()
	event := openEvent("Night tour", 100)
	event.AvailableTickets = 60
	s := newTestEventService(newFakeEvents(event))

	input := EventInput{
		Title:     "Night tour",
		StartDate: event.StartDate,
		EndDate:   event.EndDate,
		Capacity:  120,
		Price:     decimal.NewFromInt(1500),
	}
	updated, err := s.Update(ctx, event.ID.String(), input)
	require.NoError(t, err)
	assert.Equal(t, 120, updated.Capacity)
	assert.Equal(t, 80, updated.AvailableTickets)

	input.Capacity = 30
	_, err = s.Update(ctx, event.ID.String(), input)
	assert.Equal(t, KindBadRequest, KindOf(err))

	_, err = s.Update(ctx, uuid.NewString(), input)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestEventService_Delete(t *testing.T) {
	ctx := context.Background()
	event := openEvent("Night tour", 10)
	events := newFakeEvents(event)
	s := newTestEventService(events)

	require.NoError(t, s.Delete(ctx, event.ID.String()))
	assert.Empty(t, events.events)

	err := s.Delete(ctx, event.ID.String())
	assert.Equal(t, KindNotFound, KindOf(err))
}
