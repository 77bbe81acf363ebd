package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/farellandr/museum-tickets/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeEvents struct {
	mu     sync.Mutex
	events map[uuid.UUID]*models.Event
}

func newFakeEvents(events ...models.Event) *fakeEvents {
	f := &fakeEvents{events: map[uuid.UUID]*models.Event{}}
	for i := range events {
		event := events[i]
		if event.ID == uuid.Nil {
			event.ID = uuid.New()
		}
		f.events[event.ID] = &event
	}
	return f
}

func (f *fakeEvents) get(id uuid.UUID) models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.events[id]
}

func (f *fakeEvents) sorted(keep func(models.Event) bool) []models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	var events []models.Event
	for _, event := range f.events {
		if keep(*event) {
			events = append(events, *event)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartDate.Before(events[j].StartDate) })
	return events
}

func (f *fakeEvents) ListActive(ctx context.Context) ([]models.Event, error) {
	return f.sorted(func(e models.Event) bool { return e.IsActive }), nil
}

func (f *fakeEvents) ListAvailable(ctx context.Context, now time.Time) ([]models.Event, error) {
	return f.sorted(func(e models.Event) bool { return e.IsAvailable(now) }), nil
}

func (f *fakeEvents) FindActive(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[id]
	if !ok || !event.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	found := *event
	return &found, nil
}

func (f *fakeEvents) FindOrCreateBySlug(ctx context.Context, event *models.Event) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.events {
		if existing.Slug != nil && *existing.Slug == *event.Slug {
			found := *existing
			return &found, nil
		}
	}

	created := *event
	created.ID = uuid.New()
	f.events[created.ID] = &created
	found := created
	return &found, nil
}

func (f *fakeEvents) Create(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	stored := *event
	f.events[event.ID] = &stored
	return nil
}

func (f *fakeEvents) Update(ctx context.Context, id uuid.UUID, fn func(event *models.Event) error) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	event := *stored
	sold := event.SoldTickets()
	if err := fn(&event); err != nil {
		return nil, err
	}
	if event.Capacity < sold {
		return nil, store.ErrCapacityBelowSold
	}
	event.AvailableTickets = event.Capacity - sold
	*stored = event
	return &event, nil
}

func (f *fakeEvents) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.events[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.events, id)
	return nil
}

type fakeTickets struct {
	mu      sync.Mutex
	events  *fakeEvents
	tickets map[uuid.UUID]*models.Ticket
	seq     int
}

func newFakeTickets(events *fakeEvents) *fakeTickets {
	return &fakeTickets{events: events, tickets: map[uuid.UUID]*models.Ticket{}}
}

func (f *fakeTickets) add(ticket models.Ticket) models.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	f.seq++
	ticket.CreatedAt = time.Unix(int64(f.seq), 0)
	f.tickets[ticket.ID] = &ticket
	return ticket
}

func (f *fakeTickets) get(id uuid.UUID) models.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.tickets[id]
}

func (f *fakeTickets) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickets)
}

func (f *fakeTickets) withEvent(ticket models.Ticket) *models.Ticket {
	f.events.mu.Lock()
	defer f.events.mu.Unlock()

	if event, ok := f.events.events[ticket.EventID]; ok {
		e := *event
		ticket.Event = &e
	}
	return &ticket
}

func (f *fakeTickets) CreateWithInventory(ctx context.Context, ticket *models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events.mu.Lock()
	defer f.events.mu.Unlock()

	event, ok := f.events.events[ticket.EventID]
	if !ok || !event.IsActive || event.AvailableTickets < ticket.Quantity {
		return store.ErrSoldOut
	}
	event.AvailableTickets -= ticket.Quantity

	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	f.seq++
	stored := *ticket
	stored.Event = nil
	stored.CreatedAt = time.Unix(int64(f.seq), 0)
	f.tickets[ticket.ID] = &stored
	return nil
}

func (f *fakeTickets) SetQRCode(ctx context.Context, id uuid.UUID, qrCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.tickets[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ticket.QRCode = &qrCode
	return nil
}

func (f *fakeTickets) FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	f.mu.Lock()
	ticket, ok := f.tickets[id]
	var found models.Ticket
	if ok {
		found = *ticket
	}
	f.mu.Unlock()

	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.withEvent(found), nil
}

func (f *fakeTickets) filter(keep func(models.Ticket) bool, less func(a, b models.Ticket) bool) []models.Ticket {
	f.mu.Lock()
	var tickets []models.Ticket
	for _, ticket := range f.tickets {
		if keep(*ticket) {
			tickets = append(tickets, *ticket)
		}
	}
	f.mu.Unlock()

	sort.Slice(tickets, func(i, j int) bool { return less(tickets[i], tickets[j]) })
	for i := range tickets {
		tickets[i] = *f.withEvent(tickets[i])
	}
	return tickets
}

func newestFirst(a, b models.Ticket) bool {
	return a.CreatedAt.After(b.CreatedAt)
}

func (f *fakeTickets) List(ctx context.Context) ([]models.Ticket, error) {
	return f.filter(func(models.Ticket) bool { return true }, newestFirst), nil
}

func (f *fakeTickets) ListByEmail(ctx context.Context, email string) ([]models.Ticket, error) {
	return f.filter(func(t models.Ticket) bool { return t.CustomerEmail == email }, newestFirst), nil
}

func (f *fakeTickets) ListByDni(ctx context.Context, dni string) ([]models.Ticket, error) {
	return f.filter(func(t models.Ticket) bool { return t.CustomerDni == dni }, newestFirst), nil
}

func (f *fakeTickets) ListRecentlyUsed(ctx context.Context, limit int) ([]models.Ticket, error) {
	tickets := f.filter(
		func(t models.Ticket) bool { return t.Status == models.TicketUsed },
		func(a, b models.Ticket) bool { return a.UsedDate.After(*b.UsedDate) },
	)
	if len(tickets) > limit {
		tickets = tickets[:limit]
	}
	return tickets, nil
}

func redeemable(t models.Ticket) bool {
	return t.Status == models.TicketPaid && !t.QRValidated
}

func (f *fakeTickets) FindRedeemableByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	tickets := f.filter(func(t models.Ticket) bool { return t.ID == id && redeemable(t) }, newestFirst)
	if len(tickets) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &tickets[0], nil
}

func (f *fakeTickets) FindRedeemableByQR(ctx context.Context, qrCode string) (*models.Ticket, error) {
	tickets := f.filter(func(t models.Ticket) bool {
		return t.QRCode != nil && *t.QRCode == qrCode && redeemable(t)
	}, newestFirst)
	if len(tickets) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &tickets[0], nil
}

func (f *fakeTickets) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.tickets[id]
	if !ok || !redeemable(*ticket) {
		return store.ErrStatusConflict
	}
	ticket.Status = models.TicketUsed
	ticket.QRValidated = true
	ticket.UsedDate = &at
	return nil
}

func (f *fakeTickets) Cancel(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events.mu.Lock()
	defer f.events.mu.Unlock()

	ticket, ok := f.tickets[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if ticket.Status != models.TicketPaid {
		return store.ErrStatusConflict
	}
	ticket.Status = models.TicketCancelled

	if event, ok := f.events.events[ticket.EventID]; ok {
		event.AvailableTickets = min(event.Capacity, event.AvailableTickets+ticket.Quantity)
	}
	return nil
}

func (f *fakeTickets) Stats(ctx context.Context, since time.Time) (models.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stats := models.DashboardStats{TotalRevenue: decimal.Zero}
	for _, t := range f.tickets {
		sold := t.Status == models.TicketPaid || t.Status == models.TicketUsed
		if sold {
			stats.TotalTicketsSold++
			stats.TotalRevenue = stats.TotalRevenue.Add(t.TotalPrice)
			if t.PurchaseDate != nil && !t.PurchaseDate.Before(since) {
				stats.TicketsSoldToday++
			}
		}
		if t.Status == models.TicketUsed && t.UsedDate != nil && !t.UsedDate.Before(since) {
			stats.VisitorsToday++
		}
		if redeemable(*t) {
			stats.PendingValidation++
		}
	}
	return stats, nil
}

func (f *fakeTickets) SlotCounts(ctx context.Context, from, to string) ([]models.SlotCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sums := map[[2]string]int64{}
	for _, t := range f.tickets {
		if t.Status != models.TicketPaid && t.Status != models.TicketUsed {
			continue
		}
		if t.SelectedDate == nil || t.SelectedTime == nil {
			continue
		}
		if *t.SelectedDate < from || *t.SelectedDate > to {
			continue
		}
		sums[[2]string{*t.SelectedDate, *t.SelectedTime}] += int64(t.Quantity)
	}

	var counts []models.SlotCount
	for key, sum := range sums {
		counts = append(counts, models.SlotCount{SelectedDate: key[0], SelectedTime: key[1], Tickets: sum})
	}
	return counts, nil
}

type fakePayments struct {
	mu       sync.Mutex
	tickets  *fakeTickets
	payments []models.Payment
}

func (f *fakePayments) Approve(ctx context.Context, payment *models.Payment, paidAt time.Time) error {
	f.tickets.mu.Lock()
	defer f.tickets.mu.Unlock()

	ticket, ok := f.tickets.tickets[payment.TicketID]
	if !ok || ticket.Status != models.TicketPending {
		return store.ErrStatusConflict
	}
	ticket.Status = models.TicketPaid
	ticket.PurchaseDate = &paidAt

	f.mu.Lock()
	defer f.mu.Unlock()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = paidAt
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakePayments) LatestForTicket(ctx context.Context, ticketID uuid.UUID) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest *models.Payment
	for i := range f.payments {
		p := f.payments[i]
		if p.TicketID != ticketID {
			continue
		}
		if latest == nil || !p.CreatedAt.Before(latest.CreatedAt) {
			latest = &p
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeUsers) FindActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email && user.IsActive {
			found := *user
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *user
	return &found, nil
}

func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User, roleName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Role = models.Role{ID: uuid.New(), Name: roleName}
	user.RoleID = user.Role.ID
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

type notification struct {
	kind     string
	ticketID uuid.UUID
	event    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (f *fakeNotifier) record(n notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return f.err
}

func (f *fakeNotifier) TicketIssued(ctx context.Context, ticket models.Ticket, event models.Event) error {
	return f.record(notification{kind: "issued", ticketID: ticket.ID, event: event.Title})
}

func (f *fakeNotifier) TicketValidated(ctx context.Context, ticket models.Ticket) error {
	return f.record(notification{kind: "validated", ticketID: ticket.ID})
}

func (f *fakeNotifier) TicketCancelled(ctx context.Context, ticket models.Ticket) error {
	return f.record(notification{kind: "cancelled", ticketID: ticket.ID})
}

func (f *fakeNotifier) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	kinds := make([]string, len(f.sent))
	for i, n := range f.sent {
		kinds[i] = n.kind
	}
	return kinds
}
