package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/service"
	"github.com/prohmpiriya/event-ticketing/pkg/middleware"
	"github.com/prohmpiriya/event-ticketing/pkg/response"
)

// UserHandler handles registration, login and user administration
type UserHandler struct {
	authService service.AuthService
	userService service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService service.AuthService, userService service.UserService) *UserHandler {
	return &UserHandler{authService: authService, userService: userService}
}

// Register handles POST /users
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.ValidationError(msg))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Registration failed", err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessWithMessage(dto.NewUserResponse(user), "User registered"))
}

// Login handles POST /users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Email and password are required"))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Login failed", err)
		return
	}

	c.JSON(http.StatusOK, response.Success(resp))
}

// List handles GET /users; ?all=true includes deactivated accounts
func (h *UserHandler) List(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("all"))

	users, err := h.userService.ListUsers(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, "Failed to list users", err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewUserResponses(users)))
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to get user", err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewUserResponse(user)))
}

// Update handles PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.ValidationError(msg))
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, "Failed to update user", err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMessage(dto.NewUserResponse(user), "User updated"))
}

// Deactivate handles DELETE /users/:id as a soft delete
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actorID, _ := middleware.GetUserID(c)

	if err := h.userService.DeactivateUser(c.Request.Context(), id, actorID); err != nil {
		respondError(c, "Failed to deactivate user", err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMessage(gin.H{"id": id}, "User deactivated"))
}
