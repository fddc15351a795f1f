package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
)

// User is an authenticated identity. Vendors are created on first login without a
// password; admins authenticate with an argon2id hash.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name         string         `gorm:"column:name;not null"`
	PasswordHash *string        `gorm:"column:password_hash"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
