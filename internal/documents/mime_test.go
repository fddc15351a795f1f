package documents

import "testing"

func TestDetectContentType(t *testing.T) {
	cases := []struct {
		name    string
		data    []byte
		want    string
		allowed bool
	}{
		{"pdf", samplePDF, "application/pdf", true},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), "image/png", true},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), "image/jpeg", true},
		{"text", []byte("hello"), "", false},
	}
	for _, tc := range cases {
		got, ok := detectContentType(tc.data)
		if ok != tc.allowed {
			t.Fatalf("%s: expected allowed=%v, got %v (%s)", tc.name, tc.allowed, ok, got)
		}
		if tc.allowed && got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}
