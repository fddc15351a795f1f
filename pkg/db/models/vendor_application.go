package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	"github.com/angelmondragon/vendorkyc-backend/pkg/types"
)

// VendorApplication is the root KYC record of a vendor. Version guards every
// mutation with a compare-and-swap update.
type VendorApplication struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	VendorID         string                 `gorm:"column:vendor_id;not null;uniqueIndex"`
	OwnerUserID      *uuid.UUID             `gorm:"column:owner_user_id;type:uuid"`
	BusinessName     string                 `gorm:"column:business_name;not null"`
	BusinessCategory enums.BusinessCategory `gorm:"column:business_category;type:text;not null"`
	ContactPerson    string                 `gorm:"column:contact_person;not null"`
	Email            string                 `gorm:"column:email;not null;uniqueIndex"`
	Phone            string                 `gorm:"column:phone;not null"`
	Address          types.Address          `gorm:"embedded;embeddedPrefix:address_"`
	Status           enums.VendorStatus     `gorm:"column:status;type:text;not null"`
	RejectionReason  *string                `gorm:"column:rejection_reason"`
	SubmittedAt      time.Time              `gorm:"column:submitted_at;not null"`
	ReviewedAt       *time.Time             `gorm:"column:reviewed_at"`
	ReviewedBy       *uuid.UUID             `gorm:"column:reviewed_by;type:uuid"`
	Version          int64                  `gorm:"column:version;not null;default:1"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`

	Documents     []VendorDocument      `gorm:"foreignKey:ApplicationID"`
	StatusHistory []VendorStatusHistory `gorm:"foreignKey:ApplicationID"`
}

func (VendorApplication) TableName() string {
	return "vendor_applications"
}
