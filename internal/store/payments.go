package store

import (
	"context"
	"fmt"
	"time"

	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStore struct {
	db *gorm.DB
}

func NewPaymentStore(db *gorm.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

// Approve records payment and moves its pending ticket to paid in one
// transaction. It returns ErrStatusConflict when the ticket is no longer pending.
func (s *PaymentStore) Approve(ctx context.Context, payment *models.Payment, paidAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Ticket{}).
			Where("id = ? AND status = ?", payment.TicketID, models.TicketPending).
			Updates(map[string]any{
				"status":        models.TicketPaid,
				"purchase_date": paidAt,
			})
		if result.Error != nil {
			return fmt.Errorf("marking ticket paid: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrStatusConflict
		}

		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("inserting payment: %w", err)
		}
		return nil
	})
}

func (s *PaymentStore) LatestForTicket(ctx context.Context, ticketID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
