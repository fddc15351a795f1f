package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
)

// VendorRegisteredEvent is emitted once per application, alongside the first history row.
type VendorRegisteredEvent struct {
	ApplicationID    uuid.UUID              `json:"application_id"`
	VendorID         string                 `json:"vendor_id"`
	BusinessName     string                 `json:"business_name"`
	BusinessCategory enums.BusinessCategory `json:"business_category"`
	Email            string                 `json:"email"`
	SubmittedAt      time.Time              `json:"submitted_at"`
}

// VendorStatusChangedEvent covers admin decisions and the automatic resubmission.
type VendorStatusChangedEvent struct {
	ApplicationID   uuid.UUID          `json:"application_id"`
	VendorID        string             `json:"vendor_id"`
	FromStatus      enums.VendorStatus `json:"from_status"`
	ToStatus        enums.VendorStatus `json:"to_status"`
	RejectionReason *string            `json:"rejection_reason,omitempty"`
	Comment         string             `json:"comment"`
	System          bool               `json:"system"`
	ChangedAt       time.Time          `json:"changed_at"`
}

type VendorDocumentAddedEvent struct {
	ApplicationID uuid.UUID          `json:"application_id"`
	VendorID      string             `json:"vendor_id"`
	DocumentID    uuid.UUID          `json:"document_id"`
	DocumentType  enums.DocumentType `json:"document_type"`
	FileName      string             `json:"file_name"`
	SizeBytes     int64              `json:"size_bytes"`
}

type VendorDocumentRemovedEvent struct {
	ApplicationID uuid.UUID `json:"application_id"`
	VendorID      string    `json:"vendor_id"`
	DocumentID    uuid.UUID `json:"document_id"`
}
