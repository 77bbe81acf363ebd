package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultEventSlug marks the general admission event created on demand.
const DefaultEventSlug = "general-admission"

type Event struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Slug             *string         `gorm:"uniqueIndex" json:"slug,omitempty"`
	Title            string          `gorm:"not null" json:"title"`
	Description      string          `gorm:"type:text" json:"description"`
	ShortDescription string          `json:"shortDescription"`
	ImageURL         string          `json:"imageUrl"`
	Location         string          `json:"location"`
	StartDate        time.Time       `gorm:"not null;index" json:"startDate"`
	EndDate          time.Time       `gorm:"not null" json:"endDate"`
	Capacity         int             `gorm:"not null;check:chk_events_capacity,capacity >= 0" json:"capacity"`
	AvailableTickets int             `gorm:"not null;check:chk_events_available,available_tickets >= 0 AND available_tickets <= capacity" json:"availableTickets"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	IsActive         bool            `gorm:"not null;index" json:"isActive"`
	Tickets          []Ticket        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}

func (event *Event) IsAvailable(now time.Time) bool {
	return event.IsActive && event.AvailableTickets > 0 && now.Before(event.EndDate)
}

func (event *Event) SoldTickets() int {
	return event.Capacity - event.AvailableTickets
}

// OccupancyRate is the sold share of capacity as a percentage.
func (event *Event) OccupancyRate() float64 {
	if event.Capacity == 0 {
		return 0
	}
	return float64(event.SoldTickets()) / float64(event.Capacity) * 100
}
