package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/service"
	"github.com/prohmpiriya/event-ticketing/pkg/middleware"
)

// MockPurchaseService is a mock implementation of PurchaseService
type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) ProcessPurchase(ctx context.Context, req *dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PurchaseResponse), args.Error(1)
}

func (m *MockPurchaseService) GetPurchase(ctx context.Context, id int64) (*domain.PurchaseDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseDetail), args.Error(1)
}

func (m *MockPurchaseService) ListUserPurchases(ctx context.Context, userID int64) ([]*dto.PurchaseHistoryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dto.PurchaseHistoryItem), args.Error(1)
}

// MockTicketService writes a fixed body instead of a real PDF
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) RenderTicket(ctx context.Context, purchase *domain.PurchaseDetail, w io.Writer) error {
	args := m.Called(ctx, purchase)
	if err := args.Error(0); err != nil {
		return err
	}
	_, err := io.WriteString(w, "%PDF-1.3 test")
	return err
}

// MockEventService is a map-backed EventService
type MockEventService struct {
	events     map[int64]*domain.Event
	categories []*domain.Category
	nextID     int64
	lastImage  *service.ImageUpload
	imageBytes []byte
}

func NewMockEventService() *MockEventService {
	return &MockEventService{events: make(map[int64]*domain.Event), nextID: 1}
}

func (m *MockEventService) AddEvent(e *domain.Event) {
	m.events[e.ID] = e
	if e.ID >= m.nextID {
		m.nextID = e.ID + 1
	}
}

func (m *MockEventService) ListEvents(ctx context.Context, featuredOnly bool) ([]*domain.Event, error) {
	var out []*domain.Event
	for id := int64(1); id < m.nextID; id++ {
		e, ok := m.events[id]
		if !ok || (featuredOnly && !e.IsFeatured) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *MockEventService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return e, nil
}

func (m *MockEventService) CreateEvent(ctx context.Context, form *dto.EventForm, image *service.ImageUpload) (*domain.Event, error) {
	e, _, err := form.ToDomain(time.UTC)
	if err != nil {
		return nil, err
	}
	if err := m.captureImage(image, e); err != nil {
		return nil, err
	}
	e.ID = m.nextID
	m.AddEvent(e)
	return e, nil
}

func (m *MockEventService) UpdateEvent(ctx context.Context, id int64, form *dto.EventForm, image *service.ImageUpload) (*domain.Event, error) {
	if _, ok := m.events[id]; !ok {
		return nil, domain.ErrEventNotFound
	}
	e, _, err := form.ToDomain(time.UTC)
	if err != nil {
		return nil, err
	}
	if err := m.captureImage(image, e); err != nil {
		return nil, err
	}
	e.ID = id
	m.events[id] = e
	return e, nil
}

func (m *MockEventService) captureImage(image *service.ImageUpload, e *domain.Event) error {
	m.lastImage = image
	if image == nil {
		return nil
	}
	data, err := io.ReadAll(image.Content)
	if err != nil {
		return err
	}
	m.imageBytes = data
	e.ImagePath = "1-" + image.Filename
	return nil
}

func (m *MockEventService) DeleteEvent(ctx context.Context, id int64) error {
	if _, ok := m.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *MockEventService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return m.categories, nil
}

// MockSeatService records the last request and answers with err when set
type MockSeatService struct {
	last *dto.UpdateSeatStatusRequest
	err  error
}

func (m *MockSeatService) UpdateStatus(ctx context.Context, req *dto.UpdateSeatStatusRequest) (*dto.SeatStatusResponse, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SeatStatusResponse{SeatID: req.SeatID, ZoneID: 3, Status: req.Status, PreviousStatus: "available"}, nil
}

// MockAttendanceService checks tickets in against a set of valid ticket ids
type MockAttendanceService struct {
	valid      map[int64]bool
	checked    map[int64]bool
	entries    []*domain.AttendanceReportEntry
	lastFilter *dto.AttendanceHistoryFilter
}

func NewMockAttendanceService(validTickets ...int64) *MockAttendanceService {
	m := &MockAttendanceService{valid: make(map[int64]bool), checked: make(map[int64]bool)}
	for _, id := range validTickets {
		m.valid[id] = true
	}
	return m
}

func (m *MockAttendanceService) ValidateCheckIn(ctx context.Context, ticketID, eventID, userID, validatorID int64) (*domain.AttendanceRecord, error) {
	if !m.valid[ticketID] {
		return nil, domain.ErrInvalidTicket
	}
	if m.checked[ticketID] {
		return nil, domain.ErrAlreadyCheckedIn
	}
	m.checked[ticketID] = true
	return &domain.AttendanceRecord{
		ID:          int64(len(m.checked)),
		TicketID:    ticketID,
		EventID:     eventID,
		UserID:      userID,
		ValidatedBy: validatorID,
		CheckedInAt: time.Now(),
	}, nil
}

func (m *MockAttendanceService) History(ctx context.Context, filter *dto.AttendanceHistoryFilter) ([]*domain.AttendanceReportEntry, int, error) {
	m.lastFilter = filter
	return m.entries, len(m.entries), nil
}

// MockAuthService keeps users by email with plain passwords
type MockAuthService struct {
	users map[string]*domain.User
	pass  map[string]string
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{users: make(map[string]*domain.User), pass: make(map[string]string)}
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	email := domain.NormalizeEmail(req.Email)
	if _, ok := m.users[email]; ok {
		return nil, domain.ErrEmailAlreadyExists
	}
	u := &domain.User{
		ID:        int64(len(m.users) + 1),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Role:      domain.RoleStandard,
		IsActive:  true,
	}
	m.users[email] = u
	m.pass[email] = req.Password
	return u, nil
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := domain.NormalizeEmail(req.Email)
	u, ok := m.users[email]
	if !ok || m.pass[email] != req.Password {
		return nil, domain.ErrInvalidCredentials
	}
	return &dto.LoginResponse{Token: "token", Role: string(u.Role), UserID: u.ID}, nil
}

// MockUserService keeps accounts by id
type MockUserService struct {
	users map[int64]*domain.User
}

func NewMockUserService() *MockUserService {
	return &MockUserService{users: make(map[int64]*domain.User)}
}

func (m *MockUserService) ListUsers(ctx context.Context, includeInactive bool) ([]*domain.User, error) {
	var out []*domain.User
	for id := int64(1); id <= int64(len(m.users)); id++ {
		if u, ok := m.users[id]; ok && (u.IsActive || includeInactive) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MockUserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *MockUserService) UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	req.Apply(u)
	return u, nil
}

func (m *MockUserService) DeactivateUser(ctx context.Context, id, actorID int64) error {
	if id == actorID {
		return domain.ErrForbidden
	}
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return domain.ErrUserNotFound
	}
	u.IsActive = false
	return nil
}

// stubAvailability serves fixed zone snapshots
type stubAvailability struct {
	zones map[int64]*domain.ZoneAvailability
	err   error
}

func (s *stubAvailability) Get(ctx context.Context, zoneID int64) (*domain.ZoneAvailability, error) {
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.zones[zoneID]
	if !ok {
		return nil, domain.ErrZoneNotFound
	}
	return a, nil
}

func (s *stubAvailability) Refresh(ctx context.Context, zoneIDs ...int64) error { return nil }
func (s *stubAvailability) Remove(ctx context.Context, zoneIDs ...int64) error  { return nil }

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

var errStubDown = errors.New("connection refused")

var testJWT = middleware.JWTConfig{Secret: "handler-test-secret", Issuer: "event-ticketing-test", TTL: time.Hour}

// testEnv wires every handler to mocks behind the real route table
type testEnv struct {
	router     *gin.Engine
	purchases  *MockPurchaseService
	tickets    *MockTicketService
	events     *MockEventService
	seats      *MockSeatService
	attendance *MockAttendanceService
	auth       *MockAuthService
	users      *MockUserService
	zones      *stubAvailability
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		router:     gin.New(),
		purchases:  new(MockPurchaseService),
		tickets:    new(MockTicketService),
		events:     NewMockEventService(),
		seats:      &MockSeatService{},
		attendance: NewMockAttendanceService(),
		auth:       NewMockAuthService(),
		users:      NewMockUserService(),
		zones:      &stubAvailability{zones: make(map[int64]*domain.ZoneAvailability)},
	}

	routes := &Routes{
		Health:     NewHealthHandler(map[string]HealthChecker{"database": stubChecker{}, "redis": nil}),
		Events:     NewEventHandler(env.events, "/uploads"),
		Zones:      NewZoneHandler(env.zones),
		Purchases:  NewPurchaseHandler(env.purchases, env.tickets),
		Seats:      NewSeatHandler(env.seats),
		Attendance: NewAttendanceHandler(env.attendance),
		Users:      NewUserHandler(env.auth, env.users),
		JWT:        testJWT,
	}
	routes.Register(env.router)
	return env
}

func tokenFor(t *testing.T, userID int64, role domain.Role) string {
	t.Helper()
	token, _, err := middleware.IssueToken(testJWT, userID, "user@example.com", string(role))
	require.NoError(t, err)
	return token
}

func (env *testEnv) do(method, path, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) doJSON(method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return env.do(method, path, token, "application/json", r)
}

// Compile-time interface checks
var (
	_ service.PurchaseService   = (*MockPurchaseService)(nil)
	_ service.TicketService     = (*MockTicketService)(nil)
	_ service.EventService      = (*MockEventService)(nil)
	_ service.SeatService       = (*MockSeatService)(nil)
	_ service.AttendanceService = (*MockAttendanceService)(nil)
	_ service.AuthService       = (*MockAuthService)(nil)
	_ service.AvailabilityCache = (*stubAvailability)(nil)
)
