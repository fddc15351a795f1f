package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
)

type loginBody struct {
	Email string `json:"email" validate:"required,email"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["email"] != "must be a valid email" {
		t.Fatalf("unexpected details %v", typed.Details())
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","status":"approved"}`))
	var body loginBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestDecodeJSONBodyRequiresBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var body loginBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestDecodeJSONBodyAccepts(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
	var body loginBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if body.Email != "a@b.co" {
		t.Fatalf("unexpected email %s", body.Email)
	}
}

func TestQueryInt(t *testing.T) {
	for _, raw := range []string{"/?limit=500", "/?limit=ten", "/?limit=0"} {
		q := QueryFrom(httptest.NewRequest(http.MethodGet, raw, nil))
		if _, err := q.Int("limit", 20, 1, 100); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error got %v", raw, err)
		}
	}
	q := QueryFrom(httptest.NewRequest(http.MethodGet, "/?limit=%2035%20", nil))
	if got, err := q.Int("limit", 20, 1, 100); err != nil || got != 35 {
		t.Fatalf("expected 35 got %d %v", got, err)
	}
	q = QueryFrom(httptest.NewRequest(http.MethodGet, "/", nil))
	if got, err := q.Int("limit", 20, 1, 100); err != nil || got != 20 {
		t.Fatalf("expected default 20 got %d %v", got, err)
	}
}

func TestQueryStringSanitizes(t *testing.T) {
	q := QueryFrom(httptest.NewRequest(http.MethodGet, "/?search=%20%20acme%20supply%20%20", nil))
	if got := q.String("search", 4); got != "acme" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSanitizeStringTruncatesRunes(t *testing.T) {
	if got := SanitizeString("  Ünïcode  ", 3); got != "Ünï" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestValidateStructRejectsBlankName(t *testing.T) {
	body := struct {
		BusinessName string `json:"business_name" validate:"required,notblank"`
	}{BusinessName: "   "}
	typed := pkgerrors.As(ValidateStruct(&body))
	if typed == nil {
		t.Fatal("expected validation error")
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["business_name"] != "must not be blank" {
		t.Fatalf("unexpected details %v", typed.Details())
	}
}
