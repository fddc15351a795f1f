package types

import "testing"

func TestAddressNormalizedDefaultsCountry(t *testing.T) {
	got := Address{Street: " 12 MG Road ", City: "Pune", Country: "  "}.Normalized()
	if got.Street != "12 MG Road" {
		t.Fatalf("expected trimmed street, got %q", got.Street)
	}
	if got.Country != DefaultCountry {
		t.Fatalf("expected default country %q, got %q", DefaultCountry, got.Country)
	}

	kept := Address{Country: "Nepal"}.Normalized()
	if kept.Country != "Nepal" {
		t.Fatalf("expected explicit country to be kept, got %q", kept.Country)
	}
}
