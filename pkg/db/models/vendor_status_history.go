package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
)

// VendorStatusHistory is one append-only ledger row. Seq is unique per application
// and starts at 1 with the registration entry.
type VendorStatusHistory struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ApplicationID uuid.UUID          `gorm:"column:application_id;type:uuid;not null;uniqueIndex:idx_vendor_history_seq"`
	Seq           int                `gorm:"column:seq;not null;uniqueIndex:idx_vendor_history_seq"`
	Status        enums.VendorStatus `gorm:"column:status;type:text;not null"`
	ChangedBy     *uuid.UUID         `gorm:"column:changed_by;type:uuid"`
	ChangedAt     time.Time          `gorm:"column:changed_at;not null"`
	Comment       *string            `gorm:"column:comment"`
	System        bool               `gorm:"column:is_system;not null;default:false"`
}

func (VendorStatusHistory) TableName() string {
	return "vendor_status_history"
}
