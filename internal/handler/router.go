package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/pkg/middleware"
)

// Routes groups the handlers mounted under /api/v1
type Routes struct {
	Health     *HealthHandler
	Events     *EventHandler
	Zones      *ZoneHandler
	Purchases  *PurchaseHandler
	Seats      *SeatHandler
	Attendance *AttendanceHandler
	Users      *UserHandler

	JWT middleware.JWTConfig
	// Idempotency guards POST /purchases when set
	Idempotency gin.HandlerFunc
}

// Register mounts health probes at the root and the API under /api/v1
func (rt *Routes) Register(router *gin.Engine) {
	router.GET("/health", rt.Health.Health)
	router.GET("/ready", rt.Health.Ready)

	auth := middleware.JWTMiddleware(rt.JWT)
	admin := middleware.RequireRole(string(domain.RoleAdmin))

	v1 := router.Group("/api/v1")

	events := v1.Group("/events")
	{
		events.GET("", rt.Events.List)
		events.GET("/featured", rt.Events.Featured)
		events.GET("/:id", rt.Events.GetByID)
		events.POST("", auth, admin, rt.Events.Create)
		events.PUT("/:id", auth, admin, rt.Events.Update)
		events.DELETE("/:id", auth, admin, rt.Events.Delete)
	}
	v1.GET("/categories", rt.Events.Categories)
	v1.GET("/zones/:id/availability", rt.Zones.Availability)

	purchases := v1.Group("/purchases", auth)
	{
		create := []gin.HandlerFunc{rt.Purchases.Create}
		if rt.Idempotency != nil {
			create = append([]gin.HandlerFunc{rt.Idempotency}, create...)
		}
		purchases.POST("", create...)
		purchases.GET("/:id/ticket", rt.Purchases.Ticket)
	}

	v1.POST("/seats/updateStatus", auth, admin, rt.Seats.UpdateStatus)
	v1.POST("/qr/validate", auth, admin, rt.Attendance.ValidateQR)
	v1.GET("/attendance/history", auth, admin, rt.Attendance.History)

	users := v1.Group("/users")
	{
		users.POST("", rt.Users.Register)
		users.POST("/login", rt.Users.Login)
		users.GET("/:id/purchases", auth, rt.Purchases.UserPurchases)

		users.GET("", auth, admin, rt.Users.List)
		users.GET("/:id", auth, admin, rt.Users.Get)
		users.PUT("/:id", auth, admin, rt.Users.Update)
		users.DELETE("/:id", auth, admin, rt.Users.Deactivate)
	}
}
