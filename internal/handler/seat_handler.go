package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/service"
	"github.com/prohmpiriya/event-ticketing/pkg/response"
)

// SeatHandler handles manual seat status changes
type SeatHandler struct {
	seatService service.SeatService
}

// NewSeatHandler creates a new SeatHandler
func NewSeatHandler(seatService service.SeatService) *SeatHandler {
	return &SeatHandler{seatService: seatService}
}

// UpdateStatus handles POST /seats/updateStatus (admin only)
func (h *SeatHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateSeatStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.ValidationError(msg))
		return
	}

	result, err := h.seatService.UpdateStatus(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Failed to update seat status", err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMessage(result, "Seat status updated"))
}
