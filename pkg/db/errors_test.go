package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		hint string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "pgx match", err: &pgconn.PgError{Code: "23505", ConstraintName: "idx_vendor_applications_email"}, hint: "email", want: true},
		{name: "pgx other constraint", err: &pgconn.PgError{Code: "23505", ConstraintName: "idx_vendor_applications_vendor_id"}, hint: "email", want: false},
		{name: "pgx other code", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "pq wrapped", err: fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "vendor_applications_vendor_id_key"}), hint: "vendor_id", want: true},
		{name: "sqlite", err: errors.New("UNIQUE constraint failed: vendor_applications.email"), hint: "email", want: true},
		{name: "sqlite other column", err: errors.New("UNIQUE constraint failed: vendor_applications.vendor_id"), hint: "email", want: false},
		{name: "gorm translated", err: gorm.ErrDuplicatedKey, want: true},
		{name: "unrelated", err: errors.New("connection refused"), want: false},
	}

	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err, tc.hint); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("find: %w", gorm.ErrRecordNotFound)) {
		t.Fatal("expected wrapped not found to match")
	}
	if IsNotFound(errors.New("boom")) {
		t.Fatal("unexpected match")
	}
}
