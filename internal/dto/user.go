package dto

import (
	"net/mail"
	"strings"
	"time"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
)

// RegisterRequest represents the request to create an account
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Phone     string `json:"phone"`
	Password  string `json:"password" binding:"required"`
}

// Validate validates the RegisterRequest
func (r *RegisterRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return false, "First and last name are required"
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return false, "Invalid email address"
	}
	if len(r.Password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	return true, ""
}

// LoginRequest represents a credential check
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the access token
type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"rol"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"rol"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserResponse maps a user
func NewUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserResponses maps a list of users
func NewUserResponses(users []*domain.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// UpdateUserRequest is a partial profile update made by an admin; nil fields are left unchanged
type UpdateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Role      *string `json:"rol"`
}

// Validate validates the UpdateUserRequest
func (r *UpdateUserRequest) Validate() (bool, string) {
	if r.FirstName == nil && r.LastName == nil && r.Email == nil && r.Phone == nil && r.Role == nil {
		return false, "No fields to update"
	}
	if r.FirstName != nil && strings.TrimSpace(*r.FirstName) == "" {
		return false, "First name cannot be empty"
	}
	if r.LastName != nil && strings.TrimSpace(*r.LastName) == "" {
		return false, "Last name cannot be empty"
	}
	if r.Email != nil {
		if _, err := mail.ParseAddress(*r.Email); err != nil {
			return false, "Invalid email address"
		}
	}
	if r.Role != nil && !domain.Role(*r.Role).IsValid() {
		return false, "rol must be admin or standard"
	}
	return true, ""
}

// Apply copies the set fields onto u
func (r *UpdateUserRequest) Apply(u *domain.User) {
	if r.FirstName != nil {
		u.FirstName = strings.TrimSpace(*r.FirstName)
	}
	if r.LastName != nil {
		u.LastName = strings.TrimSpace(*r.LastName)
	}
	if r.Email != nil {
		u.Email = domain.NormalizeEmail(*r.Email)
	}
	if r.Phone != nil {
		u.Phone = strings.TrimSpace(*r.Phone)
	}
	if r.Role != nil {
		u.Role = domain.Role(*r.Role)
	}
}
