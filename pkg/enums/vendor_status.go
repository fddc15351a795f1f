package enums

// VendorStatus is the review state of a vendor application.
type VendorStatus string

const (
	VendorStatusPending  VendorStatus = "Pending"
	VendorStatusApproved VendorStatus = "Approved"
	VendorStatusRejected VendorStatus = "Rejected"
)

var vendorStatuses = []VendorStatus{VendorStatusPending, VendorStatusApproved, VendorStatusRejected}

func (s VendorStatus) String() string { return string(s) }

func (s VendorStatus) IsValid() bool { return member(vendorStatuses, s) }

// ParseVendorStatus is case-insensitive: "approved" resolves to Approved.
func ParseVendorStatus(value string) (VendorStatus, error) {
	return parse(vendorStatuses, "vendor status", value, true)
}
