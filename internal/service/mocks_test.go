package service

import (
	"context"
	"sort"
	"sync"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
)

// MockPurchaseRepository is a mock implementation of PurchaseRepository
type MockPurchaseRepository struct {
	details    map[int64]*domain.PurchaseDetail
	processErr error
	nextID     int64
	carts      [][]domain.CartItem
}

func NewMockPurchaseRepository() *MockPurchaseRepository {
	return &MockPurchaseRepository{details: make(map[int64]*domain.PurchaseDetail), nextID: 100}
}

func (m *MockPurchaseRepository) ProcessCart(ctx context.Context, userID int64, paymentMethod string, items []domain.CartItem) (*domain.PurchaseResult, error) {
	m.carts = append(m.carts, items)
	if m.processErr != nil {
		return nil, m.processErr
	}
	res := &domain.PurchaseResult{UserID: userID}
	for _, item := range items {
		m.nextID++
		res.PurchaseIDs = append(res.PurchaseIDs, m.nextID)
		res.TicketID = m.nextID
		res.SeatID = item.SeatID
		res.ZoneID = item.ZoneID
		res.EventID = 1
		res.TotalAmount += item.Total()
	}
	return res, nil
}

func (m *MockPurchaseRepository) GetDetail(ctx context.Context, id int64) (*domain.PurchaseDetail, error) {
	d, ok := m.details[id]
	if !ok {
		return nil, domain.ErrPurchaseNotFound
	}
	return d, nil
}

func (m *MockPurchaseRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.PurchaseDetail, error) {
	var out []*domain.PurchaseDetail
	for _, d := range m.details {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// MockSeatRepository is a mock implementation of SeatRepository
type MockSeatRepository struct {
	seats map[int64]*domain.Seat
}

func NewMockSeatRepository() *MockSeatRepository {
	return &MockSeatRepository{seats: make(map[int64]*domain.Seat)}
}

func (m *MockSeatRepository) UpdateStatus(ctx context.Context, seatID int64, status domain.SeatStatus) (*domain.Seat, domain.SeatStatus, error) {
	if !status.IsValid() || status == domain.SeatStatusSold {
		return nil, "", domain.ErrInvalidSeatStatus
	}
	seat, ok := m.seats[seatID]
	if !ok {
		return nil, "", domain.ErrSeatNotFound
	}
	previous := seat.Status
	if previous == domain.SeatStatusSold {
		return nil, "", domain.ErrSeatAlreadySold
	}
	seat.Status = status
	return seat, previous, nil
}

// MockAttendanceRepository is a mock implementation of AttendanceRepository
type MockAttendanceRepository struct {
	mu        sync.Mutex
	purchases map[int64]*domain.Purchase
	records   map[int64]*domain.AttendanceRecord
	lastQuery domain.AttendanceFilter
}

func NewMockAttendanceRepository() *MockAttendanceRepository {
	return &MockAttendanceRepository{
		purchases: make(map[int64]*domain.Purchase),
		records:   make(map[int64]*domain.AttendanceRecord),
	}
}

func (m *MockAttendanceRepository) CheckIn(ctx context.Context, ticketID, eventID, userID, validatorID int64) (*domain.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.purchases[ticketID]
	if !ok || p.EventID != eventID || p.UserID != userID {
		return nil, domain.ErrInvalidTicket
	}
	if _, done := m.records[ticketID]; done {
		return nil, domain.ErrAlreadyCheckedIn
	}
	rec := &domain.AttendanceRecord{
		ID:          int64(len(m.records) + 1),
		TicketID:    ticketID,
		SeatID:      p.SeatID,
		ZoneID:      p.ZoneID,
		UserID:      userID,
		EventID:     eventID,
		ValidatedBy: validatorID,
	}
	m.records[ticketID] = rec
	return rec, nil
}

func (m *MockAttendanceRepository) List(ctx context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceReportEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastQuery = filter
	var out []*domain.AttendanceReportEntry
	for _, r := range m.records {
		if filter.EventID != nil && r.EventID != *filter.EventID {
			continue
		}
		out = append(out, &domain.AttendanceReportEntry{AttendanceRecord: *r})
	}
	return out, len(out), nil
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	events     map[int64]*domain.Event
	categories []*domain.Category
	nextZoneID int64
	createErr  error
	updateErr  error
	replaced   bool
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{events: make(map[int64]*domain.Event), nextZoneID: 10}
}

func (m *MockEventRepository) ListActive(ctx context.Context, featuredOnly bool) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range m.events {
		if e.IsActive && (!featuredOnly || e.IsFeatured) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	e, ok := m.events[id]
	if !ok || !e.IsActive {
		return nil, domain.ErrEventNotFound
	}
	return e, nil
}

func (m *MockEventRepository) zonesFor(eventID int64, layouts []domain.ZoneLayout) []*domain.Zone {
	zones := make([]*domain.Zone, 0, len(layouts))
	for _, l := range layouts {
		m.nextZoneID++
		zones = append(zones, &domain.Zone{ID: m.nextZoneID, EventID: eventID, Name: l.Name, Capacity: l.Capacity, IsActive: true})
	}
	return zones
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event, zones []domain.ZoneLayout) error {
	if m.createErr != nil {
		return m.createErr
	}
	event.ID = int64(len(m.events) + 1)
	event.IsActive = true
	event.Zones = m.zonesFor(event.ID, zones)
	m.events[event.ID] = event
	return nil
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event, zones []domain.ZoneLayout, replaceZones bool) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	current, ok := m.events[event.ID]
	if !ok || !current.IsActive {
		return domain.ErrEventNotFound
	}
	m.replaced = replaceZones
	if event.ImagePath == "" {
		event.ImagePath = current.ImagePath
	}
	if replaceZones {
		event.Zones = m.zonesFor(event.ID, zones)
	} else {
		event.Zones = current.Zones
	}
	event.IsActive = true
	m.events[event.ID] = event
	return nil
}

func (m *MockEventRepository) SoftDelete(ctx context.Context, id int64) error {
	e, ok := m.events[id]
	if !ok || !e.IsActive {
		return domain.ErrEventNotFound
	}
	e.IsActive = false
	return nil
}

func (m *MockEventRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return m.categories, nil
}

// MockZoneRepository is a mock implementation of ZoneRepository
type MockZoneRepository struct {
	zones map[int64]*domain.ZoneAvailability
	calls int
}

func NewMockZoneRepository() *MockZoneRepository {
	return &MockZoneRepository{zones: make(map[int64]*domain.ZoneAvailability)}
}

func (m *MockZoneRepository) GetAvailability(ctx context.Context, zoneID int64) (*domain.ZoneAvailability, error) {
	m.calls++
	a, ok := m.zones[zoneID]
	if !ok {
		return nil, domain.ErrZoneNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MockZoneRepository) ListActiveAvailability(ctx context.Context) ([]*domain.ZoneAvailability, error) {
	var out []*domain.ZoneAvailability
	for _, a := range m.zones {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZoneID < out[j].ZoneID })
	return out, nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	users map[int64]*domain.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[int64]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	user.ID = int64(len(m.users) + 1)
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == domain.NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) List(ctx context.Context, includeInactive bool) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range m.users {
		if u.IsActive || includeInactive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, u := range m.users {
		if u.ID != user.ID && u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) Deactivate(ctx context.Context, id int64) error {
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return domain.ErrUserNotFound
	}
	u.IsActive = false
	return nil
}

// mockAvailabilityCache records refreshes and removals
type mockAvailabilityCache struct {
	refreshed  []int64
	removed    []int64
	refreshErr error
}

func (m *mockAvailabilityCache) Get(ctx context.Context, zoneID int64) (*domain.ZoneAvailability, error) {
	return &domain.ZoneAvailability{ZoneID: zoneID}, nil
}

func (m *mockAvailabilityCache) Refresh(ctx context.Context, zoneIDs ...int64) error {
	m.refreshed = append(m.refreshed, zoneIDs...)
	return m.refreshErr
}

func (m *mockAvailabilityCache) Remove(ctx context.Context, zoneIDs ...int64) error {
	m.removed = append(m.removed, zoneIDs...)
	return nil
}

// mockListInvalidator counts invalidations
type mockListInvalidator struct {
	calls int
}

func (m *mockListInvalidator) InvalidateLists(ctx context.Context) {
	m.calls++
}
