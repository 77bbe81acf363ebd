package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) ListActive(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("start_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("listing active events: %w", err)
	}
	return events, nil
}

func (s *EventStore) ListAvailable(ctx context.Context, now time.Time) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND available_tickets > 0 AND end_date > ?", true, now).
		Order("start_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("listing available events: %w", err)
	}
	return events, nil
}

func (s *EventStore) FindActive(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindOrCreateBySlug inserts event unless a row with the same slug exists and
// returns the stored row. Concurrent callers converge on one row.
func (s *EventStore) FindOrCreateBySlug(ctx context.Context, event *models.Event) (*models.Event, error) {
	if event.Slug == nil {
		return nil, errors.New("event slug is required")
	}

	db := s.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(event).Error
	if err != nil {
		return nil, fmt.Errorf("upserting event %q: %w", *event.Slug, err)
	}

	var stored models.Event
	if err := db.Where("slug = ?", *event.Slug).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("loading event %q: %w", *event.Slug, err)
	}
	return &stored, nil
}

func (s *EventStore) Create(ctx context.Context, event *models.Event) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error; err != nil {
		return fmt.Errorf("creating event: %w", err)
	}
	return nil
}

// Update locks the event row, applies fn and saves the result. A capacity
// change keeps the number of sold tickets and recomputes availability.
func (s *EventStore) Update(ctx context.Context, id uuid.UUID, fn func(event *models.Event) error) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&event).Error; err != nil {
			return err
		}

		sold := event.SoldTickets()
		if err := fn(&event); err != nil {
			return err
		}
		if event.Capacity < sold {
			return ErrCapacityBelowSold
		}
		event.AvailableTickets = event.Capacity - sold

		return tx.Omit(clause.Associations).Save(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Event{})
	if result.Error != nil {
		return fmt.Errorf("deleting event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
