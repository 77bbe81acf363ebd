package models

import "github.com/shopspring/decimal"

func init() {
	// Money is rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type DashboardStats struct {
	TicketsSoldToday  int64           `json:"ticketsSoldToday"`
	TotalTicketsSold  int64           `json:"totalTicketsSold"`
	VisitorsToday     int64           `json:"visitorsToday"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	PendingValidation int64           `json:"pendingValidation"`
}

// SlotCount is the ticket quantity booked for one selected date and time.
type SlotCount struct {
	SelectedDate string
	SelectedTime string
	Tickets      int64
}

type SlotOccupancy struct {
	Date     string `json:"date"`
	Slot     string `json:"slot"`
	Sold     int64  `json:"sold"`
	Capacity int64  `json:"capacity"`
	IsToday  bool   `json:"isToday"`
}
