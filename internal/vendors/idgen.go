package vendors

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// VendorIDPrefix precedes the zero-padded sequence number.
	VendorIDPrefix = "VEN-"
	// VendorIDMaxAttempts bounds retries after a vendor_id unique violation.
	VendorIDMaxAttempts = 5

	vendorIDSequence = "vendor_id"
	vendorIDWidth    = 5
)

// FormatVendorID renders n as VEN-NNNNN. Numbers wider than five digits are kept whole.
func FormatVendorID(n int64) string {
	return fmt.Sprintf("%s%0*d", VendorIDPrefix, vendorIDWidth, n)
}

// ParseVendorID returns the numeric part of a VEN- identifier.
func ParseVendorID(value string) (int64, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(value), VendorIDPrefix)
	if !ok || len(raw) < vendorIDWidth {
		return 0, fmt.Errorf("invalid vendor id %q", value)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid vendor id %q", value)
	}
	return n, nil
}
