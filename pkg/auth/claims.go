package auth

import (
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.UserRole
	VendorID *string
	// JTI binds the token to a server-side session. Generated when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	Role     enums.UserRole `json:"role"`
	VendorID *string        `json:"vendor_id,omitempty"`
	jwt.RegisteredClaims
}
