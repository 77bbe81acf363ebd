package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentApproved  PaymentStatus = "approved"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID                        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TicketID                  uuid.UUID       `gorm:"type:uuid;not null;index" json:"ticketId"`
	GatewayPaymentID          *string         `gorm:"uniqueIndex" json:"gatewayPaymentId,omitempty"`
	GatewayPreferenceID       string          `json:"gatewayPreferenceId"`
	GatewayMerchantOrderID    string          `json:"gatewayMerchantOrderId,omitempty"`
	Amount                    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency                  string          `gorm:"size:3;not null" json:"currency"`
	Status                    PaymentStatus   `gorm:"type:varchar(16);not null" json:"status"`
	PaymentMethod             string          `json:"paymentMethod,omitempty"`
	PaymentMethodID           string          `json:"paymentMethodId,omitempty"`
	PayerEmail                string          `json:"payerEmail"`
	PayerIdentificationType   string          `json:"payerIdentificationType"`
	PayerIdentificationNumber string          `json:"payerIdentificationNumber"`
	PaymentDate               *time.Time      `json:"paymentDate,omitempty"`
	CreatedAt                 time.Time       `json:"createdAt"`
	UpdatedAt                 time.Time       `json:"updatedAt"`
}

func (payment *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return
}
