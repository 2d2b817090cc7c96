package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/service"
	"github.com/prohmpiriya/event-ticketing/pkg/middleware"
	"github.com/prohmpiriya/event-ticketing/pkg/response"
)

// PurchaseHandler handles purchase-related HTTP requests
type PurchaseHandler struct {
	purchaseService service.PurchaseService
	ticketService   service.TicketService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService service.PurchaseService, ticketService service.TicketService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
		ticketService:   ticketService,
	}
}

// Create handles POST /purchases - buys a cart of seats atomically
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorWithDetails(
			domain.CodeOf(domain.ErrInvalidCart), purchaseFailedMessage, "Invalid request body"))
		return
	}

	// the body names the buyer; a signed-in caller may only buy for themselves
	if callerID, ok := middleware.GetUserID(c); ok {
		if req.UserID == 0 {
			req.UserID = callerID
		}
		if req.UserID != callerID && !isAdmin(c) {
			respondError(c, purchaseFailedMessage, fmt.Errorf("%w: userId does not match the token", domain.ErrForbidden))
			return
		}
	}

	result, err := h.purchaseService.ProcessPurchase(c.Request.Context(), &req)
	if err != nil {
		respondError(c, purchaseFailedMessage, err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessWithMessage(result, "Purchase completed"))
}

// Ticket handles GET /purchases/:id/ticket - renders the PDF ticket
func (h *PurchaseHandler) Ticket(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to get ticket", err)
		return
	}
	if !canAccessUser(c, purchase.UserID) {
		c.JSON(http.StatusForbidden, response.Forbidden("Ticket belongs to another user"))
		return
	}

	var buf bytes.Buffer
	if err := h.ticketService.RenderTicket(c.Request.Context(), purchase, &buf); err != nil {
		respondError(c, "Failed to render ticket", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="ticket-%d.pdf"`, purchase.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// UserPurchases handles GET /users/:id/purchases - purchase history of a user
func (h *PurchaseHandler) UserPurchases(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !canAccessUser(c, userID) {
		c.JSON(http.StatusForbidden, response.Forbidden("Cannot view another user's purchases"))
		return
	}

	items, err := h.purchaseService.ListUserPurchases(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to list purchases", err)
		return
	}

	c.JSON(http.StatusOK, response.Success(items))
}
