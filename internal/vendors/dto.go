package vendors

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorkyc-backend/pkg/db/models"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	"github.com/angelmondragon/vendorkyc-backend/pkg/types"
)

// RegisterInput is the public registration payload.
type RegisterInput struct {
	BusinessName     string
	BusinessCategory string
	ContactPerson    string
	Email            string
	Phone            string
	Address          types.Address
}

// UpdateProfileInput lists the only fields an owner may change. Nil means unchanged.
type UpdateProfileInput struct {
	BusinessName     *string
	BusinessCategory *string
	ContactPerson    *string
	Phone            *string
	Address          *types.Address
}

// AddDocumentInput describes a file that has already been written to storage.
type AddDocumentInput struct {
	DocumentID   uuid.UUID
	DocumentType enums.DocumentType
	FileName     string
	StorageKey   string
	ContentType  string
	SizeBytes    int64
}

// SetStatusInput is a reviewer decision. Status is matched case-insensitively.
type SetStatusInput struct {
	Status string
	Reason string
}

type ApplicationDTO struct {
	ID               uuid.UUID              `json:"id"`
	VendorID         string                 `json:"vendor_id"`
	OwnerUserID      *uuid.UUID             `json:"owner_user_id,omitempty"`
	BusinessName     string                 `json:"business_name"`
	BusinessCategory enums.BusinessCategory `json:"business_category"`
	ContactPerson    string                 `json:"contact_person"`
	Email            string                 `json:"email"`
	Phone            string                 `json:"phone"`
	Address          types.Address          `json:"address"`
	Status           enums.VendorStatus     `json:"status"`
	RejectionReason  *string                `json:"rejection_reason"`
	SubmittedAt      time.Time              `json:"submitted_at"`
	ReviewedAt       *time.Time             `json:"reviewed_at"`
	ReviewedBy       *uuid.UUID             `json:"reviewed_by"`
	Documents        []DocumentDTO          `json:"documents"`
	StatusHistory    []HistoryEntryDTO      `json:"status_history"`
	Version          int64                  `json:"version"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type DocumentDTO struct {
	ID           uuid.UUID          `json:"id"`
	DocumentType enums.DocumentType `json:"document_type"`
	FileName     string             `json:"file_name"`
	ContentType  string             `json:"content_type"`
	SizeBytes    int64              `json:"size_bytes"`
	UploadedBy   uuid.UUID          `json:"uploaded_by"`
	UploadedAt   time.Time          `json:"uploaded_at"`
}

type HistoryEntryDTO struct {
	Seq       int                `json:"seq"`
	Status    enums.VendorStatus `json:"status"`
	ChangedBy *uuid.UUID         `json:"changed_by"`
	ChangedAt time.Time          `json:"changed_at"`
	Comment   *string            `json:"comment"`
	System    bool               `json:"system"`
}

// ToApplicationDTO maps a fully loaded application, documents and history included.
func ToApplicationDTO(m *models.VendorApplication) *ApplicationDTO {
	if m == nil {
		return nil
	}
	dto := &ApplicationDTO{
		ID:               m.ID,
		VendorID:         m.VendorID,
		OwnerUserID:      m.OwnerUserID,
		BusinessName:     m.BusinessName,
		BusinessCategory: m.BusinessCategory,
		ContactPerson:    m.ContactPerson,
		Email:            m.Email,
		Phone:            m.Phone,
		Address:          m.Address,
		Status:           m.Status,
		RejectionReason:  m.RejectionReason,
		SubmittedAt:      m.SubmittedAt,
		ReviewedAt:       m.ReviewedAt,
		ReviewedBy:       m.ReviewedBy,
		Documents:        make([]DocumentDTO, 0, len(m.Documents)),
		StatusHistory:    make([]HistoryEntryDTO, 0, len(m.StatusHistory)),
		Version:          m.Version,
		UpdatedAt:        m.UpdatedAt,
	}
	for _, d := range m.Documents {
		dto.Documents = append(dto.Documents, DocumentDTO{
			ID:           d.ID,
			DocumentType: d.DocumentType,
			FileName:     d.FileName,
			ContentType:  d.ContentType,
			SizeBytes:    d.SizeBytes,
			UploadedBy:   d.UploadedBy,
			UploadedAt:   d.UploadedAt,
		})
	}
	for _, h := range m.StatusHistory {
		dto.StatusHistory = append(dto.StatusHistory, HistoryEntryDTO{
			Seq:       h.Seq,
			Status:    h.Status,
			ChangedBy: h.ChangedBy,
			ChangedAt: h.ChangedAt,
			Comment:   h.Comment,
			System:    h.System,
		})
	}
	return dto
}
