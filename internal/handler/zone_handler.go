package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/service"
	"github.com/prohmpiriya/event-ticketing/pkg/response"
)

// ZoneHandler serves zone availability
type ZoneHandler struct {
	availability service.AvailabilityCache
}

// NewZoneHandler creates a new ZoneHandler
func NewZoneHandler(availability service.AvailabilityCache) *ZoneHandler {
	return &ZoneHandler{availability: availability}
}

// Availability handles GET /zones/:id/availability
func (h *ZoneHandler) Availability(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	a, err := h.availability.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to get zone availability", err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewZoneAvailabilityResponse(a)))
}
