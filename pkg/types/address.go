package types

import "strings"

// DefaultCountry is applied when a vendor leaves the country blank.
const DefaultCountry = "India"

// Address is stored as flat address_* columns on the owning row.
type Address struct {
	Street     string `json:"street" gorm:"column:street"`
	City       string `json:"city" gorm:"column:city"`
	State      string `json:"state" gorm:"column:state"`
	PostalCode string `json:"postal_code" gorm:"column:postal_code"`
	Country    string `json:"country" gorm:"column:country"`
}

// Normalized trims every field and fills in the default country.
func (a Address) Normalized() Address {
	out := Address{
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	return out
}
