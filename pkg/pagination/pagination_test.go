package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{10, 10},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("expected buffered limit 11, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 10, 1, 9, 30, 0, 123, time.UTC)
	id := uuid.New()

	parsed, err := ParseCursor(EncodeCursor(Cursor{At: at, ID: id}))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !parsed.At.Equal(at) || parsed.ID != id {
		t.Fatalf("cursor mismatch: %+v", parsed)
	}
}

func TestParseCursorErrors(t *testing.T) {
	if c, err := ParseCursor(""); err != nil || c != nil {
		t.Fatalf("expected nil cursor for empty input, got %+v %v", c, err)
	}
	bad := []string{
		"not base64!!",
		base64.RawURLEncoding.EncodeToString([]byte("missing-separator")),
		base64.RawURLEncoding.EncodeToString([]byte("yesterday|" + uuid.NewString())),
		base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano) + "|nope")),
	}
	for _, value := range bad {
		if _, err := ParseCursor(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}
