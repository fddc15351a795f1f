package auth

import (
	"github.com/angelmondragon/vendorkyc-backend/internal/users"
)

// VendorLoginRequest identifies a vendor by the email on their application.
type VendorLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginRequest captures the admin credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token and user produced by a successful login.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *users.UserDTO `json:"user"`
	VendorID    *string        `json:"vendor_id,omitempty"`
}

// MeResponse describes the caller behind the current token.
type MeResponse struct {
	User     *users.UserDTO `json:"user"`
	VendorID *string        `json:"vendor_id,omitempty"`
}
