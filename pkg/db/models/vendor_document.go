package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
)

// VendorDocument references an uploaded KYC file held by the storage backend.
type VendorDocument struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ApplicationID uuid.UUID          `gorm:"column:application_id;type:uuid;not null;index"`
	DocumentType  enums.DocumentType `gorm:"column:document_type;type:text;not null"`
	FileName      string             `gorm:"column:file_name;not null"`
	StorageKey    string             `gorm:"column:storage_key;not null"`
	ContentType   string             `gorm:"column:content_type;not null"`
	SizeBytes     int64              `gorm:"column:size_bytes;not null"`
	UploadedBy    uuid.UUID          `gorm:"column:uploaded_by;type:uuid;not null"`
	UploadedAt    time.Time          `gorm:"column:uploaded_at;not null"`
}

func (VendorDocument) TableName() string {
	return "vendor_documents"
}
