package di

import (
	"time"

	"github.com/spf13/afero"

	"github.com/prohmpiriya/event-ticketing/internal/handler"
	"github.com/prohmpiriya/event-ticketing/internal/repository"
	"github.com/prohmpiriya/event-ticketing/internal/service"
	"github.com/prohmpiriya/event-ticketing/pkg/database"
	"github.com/prohmpiriya/event-ticketing/pkg/middleware"
	"github.com/prohmpiriya/event-ticketing/pkg/redis"
)

// Container holds all dependencies of the ticketing API
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	OutboxRepo     repository.OutboxRepository
	EventRepo      repository.EventRepository
	ZoneRepo       repository.ZoneRepository
	SeatRepo       repository.SeatRepository
	PurchaseRepo   repository.PurchaseRepository
	AttendanceRepo repository.AttendanceRepository
	UserRepo       repository.UserRepository

	// Services
	Availability      service.AvailabilityCache
	ZoneSyncer        service.ZoneSyncer
	ImageStore        service.ImageStore
	EventService      service.EventService
	PurchaseService   service.PurchaseService
	SeatService       service.SeatService
	AttendanceService service.AttendanceService
	AuthService       service.AuthService
	UserService       service.UserService
	TicketService     service.TicketService

	// Handlers
	HealthHandler     *handler.HealthHandler
	EventHandler      *handler.EventHandler
	ZoneHandler       *handler.ZoneHandler
	PurchaseHandler   *handler.PurchaseHandler
	SeatHandler       *handler.SeatHandler
	AttendanceHandler *handler.AttendanceHandler
	UserHandler       *handler.UserHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB    *database.PostgresDB
	Redis *redis.Client // optional; caches are skipped when nil

	EventsTopic  string
	JWT          middleware.JWTConfig
	Location     *time.Location
	TicketIssuer string

	UploadFS      afero.Fs
	UploadDir     string
	UploadMaxSize int64
	ImageBase     string

	ZoneAvailabilityTTL time.Duration
	EventListTTL        time.Duration
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}
	pool := c.DB.Pool()

	// Initialize repositories
	outbox := repository.NewPostgresOutboxRepository(pool, cfg.EventsTopic)
	c.OutboxRepo = outbox
	c.ZoneRepo = repository.NewPostgresZoneRepository(pool)
	c.SeatRepo = repository.NewPostgresSeatRepository(pool, outbox)
	c.PurchaseRepo = repository.NewPostgresPurchaseRepository(pool, outbox)
	c.AttendanceRepo = repository.NewPostgresAttendanceRepository(pool, outbox)
	c.UserRepo = repository.NewPostgresUserRepository(pool)

	pgEventRepo := repository.NewPostgresEventRepository(pool)

	// Wrap with cache if Redis is available
	var lists service.ListInvalidator
	if c.Redis != nil {
		cached := repository.NewCachedEventRepository(pgEventRepo, c.Redis, cfg.EventListTTL)
		c.EventRepo = cached
		lists = cached

		zoneCache := service.NewZoneAvailabilityCache(c.Redis, c.ZoneRepo, cfg.ZoneAvailabilityTTL)
		c.Availability = zoneCache
		c.ZoneSyncer = service.NewZoneSyncer(c.ZoneRepo, zoneCache)
	} else {
		c.EventRepo = pgEventRepo
		c.Availability = service.NewStoreAvailability(c.ZoneRepo)
		c.ZoneSyncer = service.NewZoneSyncer(c.ZoneRepo, nil)
	}

	// Initialize services
	fs := cfg.UploadFS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	images, err := service.NewFileImageStore(fs, cfg.UploadDir, cfg.UploadMaxSize)
	if err != nil {
		return nil, err
	}
	c.ImageStore = images

	c.EventService = service.NewEventService(c.EventRepo, c.ImageStore, c.Availability, cfg.Location)
	c.PurchaseService = service.NewPurchaseService(c.PurchaseRepo, c.Availability, lists)
	c.SeatService = service.NewSeatService(c.SeatRepo, c.Availability)
	c.AttendanceService = service.NewAttendanceService(c.AttendanceRepo)
	c.AuthService = service.NewAuthService(c.UserRepo, &service.AuthServiceConfig{JWT: cfg.JWT})
	c.UserService = service.NewUserService(c.UserRepo)
	c.TicketService = service.NewTicketService(cfg.TicketIssuer)

	// Initialize handlers
	checkers := map[string]handler.HealthChecker{"database": c.DB, "redis": nil}
	if c.Redis != nil {
		checkers["redis"] = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(checkers)
	c.EventHandler = handler.NewEventHandler(c.EventService, cfg.ImageBase)
	c.ZoneHandler = handler.NewZoneHandler(c.Availability)
	c.PurchaseHandler = handler.NewPurchaseHandler(c.PurchaseService, c.TicketService)
	c.SeatHandler = handler.NewSeatHandler(c.SeatService)
	c.AttendanceHandler = handler.NewAttendanceHandler(c.AttendanceService)
	c.UserHandler = handler.NewUserHandler(c.AuthService, c.UserService)

	return c, nil
}

// Routes returns the route table of the container's handlers
func (c *Container) Routes(jwt middleware.JWTConfig) *handler.Routes {
	return &handler.Routes{
		Health:     c.HealthHandler,
		Events:     c.EventHandler,
		Zones:      c.ZoneHandler,
		Purchases:  c.PurchaseHandler,
		Seats:      c.SeatHandler,
		Attendance: c.AttendanceHandler,
		Users:      c.UserHandler,
		JWT:        jwt,
	}
}
