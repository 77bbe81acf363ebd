package services

import (
	"context"
	"slices"

	"github.com/farellandr/museum-tickets/internal/models"
)

const (
	defaultSlotDays = 7
	maxSlotDays     = 31
	slotCapacity    = 100
)

// VisitSlot is a visiting window and the entry times that belong to it.
type VisitSlot struct {
	Label string
	Times []string
}

var visitSlots = []VisitSlot{
	{Label: "10:00 - 14:00", Times: []string{"10:00", "11:30", "14:00"}},
	{Label: "16:00 - 20:00", Times: []string{"16:00", "18:00"}},
}

func (slot VisitSlot) includes(selectedTime string) bool {
	return selectedTime == slot.Label || slices.Contains(slot.Times, selectedTime)
}

// SlotOccupancy reports sold admissions per visiting window for the next days.
func (s *TicketService) SlotOccupancy(ctx context.Context, days int) ([]models.SlotOccupancy, error) {
	if days <= 0 {
		days = defaultSlotDays
	}
	if days > maxSlotDays {
		days = maxSlotDays
	}

	today := startOfDay(s.now())
	dates := make([]string, days)
	for i := range dates {
		dates[i] = today.AddDate(0, 0, i).Format("2006-01-02")
	}

	counts, err := s.tickets.SlotCounts(ctx, dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, err
	}

	occupancy := make([]models.SlotOccupancy, 0, len(dates)*len(visitSlots))
	for i, date := range dates {
		for _, slot := range visitSlots {
			var sold int64
			for _, count := range counts {
				if count.SelectedDate == date && slot.includes(count.SelectedTime) {
					sold += count.Tickets
				}
			}
			occupancy = append(occupancy, models.SlotOccupancy{
				Date:     date,
				Slot:     slot.Label,
				Sold:     sold,
				Capacity: slotCapacity,
				IsToday:  i == 0,
			})
		}
	}
	return occupancy, nil
}
