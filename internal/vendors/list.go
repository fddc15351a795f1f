package vendors

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorkyc-backend/pkg/db/models"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/vendorkyc-backend/pkg/pagination"
)

const recentApplicationsLimit = 5

type ListParams struct {
	Status string
	Search string
	pkgpagination.Params
}

type ListResult struct {
	Items  []ListItem `json:"items"`
	Cursor string     `json:"cursor"`
}

type ListItem struct {
	ID               uuid.UUID              `json:"id"`
	VendorID         string                 `json:"vendor_id"`
	BusinessName     string                 `json:"business_name"`
	BusinessCategory enums.BusinessCategory `json:"business_category"`
	ContactPerson    string                 `json:"contact_person"`
	Email            string                 `json:"email"`
	Status           enums.VendorStatus     `json:"status"`
	SubmittedAt      time.Time              `json:"submitted_at"`
	ReviewedAt       *time.Time             `json:"reviewed_at"`
}

type Stats struct {
	Total    int64      `json:"total"`
	Pending  int64      `json:"pending"`
	Approved int64      `json:"approved"`
	Rejected int64      `json:"rejected"`
	Recent   []ListItem `json:"recent"`
}

type listQuery struct {
	status enums.VendorStatus
	search string
	limit  int
	cursor *pkgpagination.Cursor
}

func toListItem(m models.VendorApplication) ListItem {
	return ListItem{
		ID:               m.ID,
		VendorID:         m.VendorID,
		BusinessName:     m.BusinessName,
		BusinessCategory: m.BusinessCategory,
		ContactPerson:    m.ContactPerson,
		Email:            m.Email,
		Status:           m.Status,
		SubmittedAt:      m.SubmittedAt,
		ReviewedAt:       m.ReviewedAt,
	}
}
