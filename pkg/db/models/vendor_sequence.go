package models

// VendorSequence is a named counter row incremented atomically inside the
// transaction that creates a vendor application.
type VendorSequence struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value int64  `gorm:"column:value;not null;default:0"`
}

func (VendorSequence) TableName() string {
	return "vendor_sequences"
}
