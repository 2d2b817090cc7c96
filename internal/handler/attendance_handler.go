package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/service"
	"github.com/prohmpiriya/event-ticketing/pkg/middleware"
	"github.com/prohmpiriya/event-ticketing/pkg/response"
)

// AttendanceHandler handles ticket check-in and the attendance report
type AttendanceHandler struct {
	attendanceService service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler
func NewAttendanceHandler(attendanceService service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// ValidateQR handles POST /qr/validate (admin only)
func (h *AttendanceHandler) ValidateQR(c *gin.Context) {
	var req dto.ValidateQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if req.ValidatedBy == 0 {
		if callerID, ok := middleware.GetUserID(c); ok {
			req.ValidatedBy = callerID
		}
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.ValidationError(msg))
		return
	}

	rec, err := h.attendanceService.ValidateCheckIn(c.Request.Context(),
		req.QRData.TicketID, req.QRData.EventID, req.QRData.UserID, req.ValidatedBy)
	if err != nil {
		respondError(c, "Ticket validation failed", err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessWithMessage(dto.NewCheckInResponse(rec), "Check-in recorded"))
}

// History handles GET /attendance/history (admin only)
func (h *AttendanceHandler) History(c *gin.Context) {
	var filter dto.AttendanceHistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}
	filter.SetDefaults()

	entries, total, err := h.attendanceService.History(c.Request.Context(), &filter)
	if err != nil {
		respondError(c, "Failed to load attendance history", err)
		return
	}

	items := make([]*dto.AttendanceEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = dto.NewAttendanceEntryResponse(e)
	}
	c.JSON(http.StatusOK, response.List(items, total, filter.Limit, filter.Offset))
}
