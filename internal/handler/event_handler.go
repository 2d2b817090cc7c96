package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/service"
	"github.com/prohmpiriya/event-ticketing/pkg/response"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService service.EventService
	imageBase    string
}

// NewEventHandler creates a new EventHandler. imageBase prefixes stored image paths.
func NewEventHandler(eventService service.EventService, imageBase string) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		imageBase:    imageBase,
	}
}

// List handles GET /events
func (h *EventHandler) List(c *gin.Context) {
	h.list(c, false)
}

// Featured handles GET /events/featured
func (h *EventHandler) Featured(c *gin.Context) {
	h.list(c, true)
}

func (h *EventHandler) list(c *gin.Context, featuredOnly bool) {
	events, err := h.eventService.ListEvents(c.Request.Context(), featuredOnly)
	if err != nil {
		respondError(c, "Failed to list events", err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewEventListResponse(events, h.imageBase)))
}

// GetByID handles GET /events/:id - event detail with zones and seats
func (h *EventHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to get event", err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewEventResponse(event, h.imageBase)))
}

// Create handles POST /events - multipart form with optional image (admin only)
func (h *EventHandler) Create(c *gin.Context) {
	form, image, ok := h.bindForm(c)
	if !ok {
		return
	}
	defer closeUpload(image)

	event, err := h.eventService.CreateEvent(c.Request.Context(), form, image)
	if err != nil {
		respondError(c, "Failed to create event", err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessWithMessage(dto.NewEventResponse(event, h.imageBase), "Event created"))
}

// Update handles PUT /events/:id (admin only)
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	form, image, ok := h.bindForm(c)
	if !ok {
		return
	}
	defer closeUpload(image)

	event, err := h.eventService.UpdateEvent(c.Request.Context(), id, form, image)
	if err != nil {
		respondError(c, "Failed to update event", err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMessage(dto.NewEventResponse(event, h.imageBase), "Event updated"))
}

// Delete handles DELETE /events/:id (admin only)
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), id); err != nil {
		respondError(c, "Failed to delete event", err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMessage(nil, "Event deleted"))
}

// Categories handles GET /categories
func (h *EventHandler) Categories(c *gin.Context) {
	categories, err := h.eventService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list categories", err)
		return
	}

	c.JSON(http.StatusOK, response.Success(categories))
}

// bindForm binds and validates the event form. A missing image part is not an error.
func (h *EventHandler) bindForm(c *gin.Context) (*dto.EventForm, *service.ImageUpload, bool) {
	var form dto.EventForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid form data"))
		return nil, nil, false
	}
	if valid, msg := form.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.ValidationError(msg))
		return nil, nil, false
	}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return &form, nil, true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid image upload"))
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(fmt.Sprintf("Cannot read image: %v", err)))
		return nil, nil, false
	}
	return &form, &service.ImageUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}, true
}

func closeUpload(image *service.ImageUpload) {
	if image == nil {
		return
	}
	if closer, ok := image.Content.(io.Closer); ok {
		closer.Close()
	}
}
