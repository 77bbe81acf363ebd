package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketPaid      TicketStatus = "paid"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
	TicketRefunded  TicketStatus = "refunded"
)

// SoldStatuses are the states counted as sales.
var SoldStatuses = []TicketStatus{TicketPaid, TicketUsed}

type Ticket struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	EventID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"eventId"`
	Event         *Event          `json:"event,omitempty"`
	CustomerName  string          `gorm:"not null" json:"customerName"`
	CustomerEmail string          `gorm:"not null;index" json:"customerEmail"`
	CustomerDni   string          `gorm:"not null;index" json:"customerDni"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Quantity      int             `gorm:"not null;check:chk_tickets_quantity,quantity >= 1" json:"quantity"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	Status        TicketStatus    `gorm:"type:varchar(16);not null;index" json:"status"`
	QRCode        *string         `gorm:"type:text;uniqueIndex" json:"qrCode,omitempty"`
	QRValidated   bool            `gorm:"not null;default:false" json:"qrValidated"`
	SelectedDate  *string         `gorm:"size:10;index" json:"selectedDate,omitempty"`
	SelectedTime  *string         `gorm:"size:32" json:"selectedTime,omitempty"`
	PurchaseDate  *time.Time      `json:"purchaseDate,omitempty"`
	UsedDate      *time.Time      `json:"usedDate,omitempty"`
	Payments      []Payment       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}
