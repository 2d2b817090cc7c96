package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/pkg/logger"
	"github.com/prohmpiriya/event-ticketing/pkg/middleware"
	"github.com/prohmpiriya/event-ticketing/pkg/response"
)

// purchaseFailedMessage is the generic message of every rejected purchase
const purchaseFailedMessage = "Purchase could not be completed"

// statusOf maps an error kind to its HTTP status
func statusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAlreadyProcessed:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a classified error envelope. Server errors only
// expose the transaction failure text; everything else is logged.
func respondError(c *gin.Context, message string, err error) {
	kind := domain.KindOf(err)
	status := statusOf(kind)

	details := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Get().WithContext(c.Request.Context()).Error(message,
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		details = ""
		if errors.Is(err, domain.ErrTransactionFailure) {
			details = domain.ErrTransactionFailure.Error()
		}
	}

	c.JSON(status, response.ErrorWithDetails(domain.CodeOf(err), message, details))
}

// parseID reads a positive integer path parameter
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid "+name))
		return 0, false
	}
	return id, true
}

// isAdmin reports whether the caller carries the admin role
func isAdmin(c *gin.Context) bool {
	role, ok := middleware.GetRole(c)
	return ok && role == string(domain.RoleAdmin)
}

// canAccessUser allows admins and the user themselves
func canAccessUser(c *gin.Context, userID int64) bool {
	if isAdmin(c) {
		return true
	}
	callerID, ok := middleware.GetUserID(c)
	return ok && callerID == userID
}
