package store

import (
	"context"
	"fmt"
	"time"

	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketStore struct {
	db *gorm.DB
}

func NewTicketStore(db *gorm.DB) *TicketStore {
	return &TicketStore{db: db}
}

// CreateWithInventory reserves ticket.Quantity from the event and inserts the
// ticket in one transaction. It returns ErrSoldOut without side effects when
// the event is inactive or cannot cover the quantity.
func (s *TicketStore) CreateWithInventory(ctx context.Context, ticket *models.Ticket) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Event{}).
			Where("id = ? AND is_active = ? AND available_tickets >= ?", ticket.EventID, true, ticket.Quantity).
			Update("available_tickets", gorm.Expr("available_tickets - ?", ticket.Quantity))
		if result.Error != nil {
			return fmt.Errorf("reserving inventory: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrSoldOut
		}

		if err := tx.Omit(clause.Associations).Create(ticket).Error; err != nil {
			return fmt.Errorf("inserting ticket: %w", err)
		}
		return nil
	})
}

func (s *TicketStore) SetQRCode(ctx context.Context, id uuid.UUID, qrCode string) error {
	err := s.db.WithContext(ctx).Model(&models.Ticket{}).Where("id = ?", id).Update("qr_code", qrCode).Error
	if err != nil {
		return fmt.Errorf("storing qr code: %w", err)
	}
	return nil
}

func (s *TicketStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.WithContext(ctx).Preload("Event").Where("id = ?", id).First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *TicketStore) List(ctx context.Context) ([]models.Ticket, error) {
	return s.find(ctx, s.db)
}

func (s *TicketStore) ListByEmail(ctx context.Context, email string) ([]models.Ticket, error) {
	return s.find(ctx, s.db.Where("customer_email = ?", email))
}

func (s *TicketStore) ListByDni(ctx context.Context, dni string) ([]models.Ticket, error) {
	return s.find(ctx, s.db.Where("customer_dni = ?", dni))
}

func (s *TicketStore) ListRecentlyUsed(ctx context.Context, limit int) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Preload("Event").
		Where("status = ?", models.TicketUsed).
		Order("used_date DESC").
		Limit(limit).
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("listing validations: %w", err)
	}
	return tickets, nil
}

func (s *TicketStore) find(ctx context.Context, query *gorm.DB) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := query.WithContext(ctx).
		Preload("Event").
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	return tickets, nil
}

// FindRedeemableByID returns a paid, not yet validated ticket.
func (s *TicketStore) FindRedeemableByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	return s.findRedeemable(ctx, s.db.Where("id = ?", id))
}

func (s *TicketStore) FindRedeemableByQR(ctx context.Context, qrCode string) (*models.Ticket, error) {
	return s.findRedeemable(ctx, s.db.Where("qr_code = ?", qrCode))
}

func (s *TicketStore) findRedeemable(ctx context.Context, query *gorm.DB) (*models.Ticket, error) {
	var ticket models.Ticket
	err := query.WithContext(ctx).
		Preload("Event").
		Where("status = ? AND qr_validated = ?", models.TicketPaid, false).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// MarkUsed flips a paid, unvalidated ticket to used. Exactly one concurrent
// caller wins; the others get ErrStatusConflict.
func (s *TicketStore) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("id = ? AND status = ? AND qr_validated = ?", id, models.TicketPaid, false).
		Updates(map[string]any{
			"status":       models.TicketUsed,
			"qr_validated": true,
			"used_date":    at,
		})
	if result.Error != nil {
		return fmt.Errorf("marking ticket used: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// Cancel moves a paid ticket to cancelled and returns its quantity to the event.
func (s *TicketStore) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&ticket).Error; err != nil {
			return err
		}
		if ticket.Status != models.TicketPaid {
			return ErrStatusConflict
		}

		if err := tx.Model(&ticket).Update("status", models.TicketCancelled).Error; err != nil {
			return fmt.Errorf("cancelling ticket: %w", err)
		}

		err := tx.Model(&models.Event{}).
			Where("id = ?", ticket.EventID).
			Update("available_tickets", gorm.Expr("LEAST(capacity, available_tickets + ?)", ticket.Quantity)).Error
		if err != nil {
			return fmt.Errorf("restoring inventory: %w", err)
		}
		return nil
	})
}

// Stats aggregates dashboard figures; since is the start of the current day.
func (s *TicketStore) Stats(ctx context.Context, since time.Time) (models.DashboardStats, error) {
	var stats models.DashboardStats
	tickets := func() *gorm.DB { return s.db.WithContext(ctx).Model(&models.Ticket{}) }

	if err := tickets().Where("status IN ? AND purchase_date >= ?", models.SoldStatuses, since).Count(&stats.TicketsSoldToday).Error; err != nil {
		return stats, fmt.Errorf("counting tickets sold today: %w", err)
	}
	if err := tickets().Where("status IN ?", models.SoldStatuses).Count(&stats.TotalTicketsSold).Error; err != nil {
		return stats, fmt.Errorf("counting tickets sold: %w", err)
	}
	if err := tickets().Where("status = ? AND used_date >= ?", models.TicketUsed, since).Count(&stats.VisitorsToday).Error; err != nil {
		return stats, fmt.Errorf("counting visitors: %w", err)
	}
	if err := tickets().Where("status = ? AND qr_validated = ?", models.TicketPaid, false).Count(&stats.PendingValidation).Error; err != nil {
		return stats, fmt.Errorf("counting pending validations: %w", err)
	}

	row := tickets().Select("COALESCE(SUM(total_price), 0)").Where("status IN ?", models.SoldStatuses).Row()
	if err := row.Scan(&stats.TotalRevenue); err != nil {
		return stats, fmt.Errorf("summing revenue: %w", err)
	}

	return stats, nil
}

// SlotCounts sums sold quantities per selected date and time within [from, to].
func (s *TicketStore) SlotCounts(ctx context.Context, from, to string) ([]models.SlotCount, error) {
	var counts []models.SlotCount
	err := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Select("selected_date, selected_time, SUM(quantity) AS tickets").
		Where("status IN ? AND selected_date >= ? AND selected_date <= ? AND selected_time IS NOT NULL", models.SoldStatuses, from, to).
		Group("selected_date, selected_time").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("counting slot tickets: %w", err)
	}
	return counts, nil
}
