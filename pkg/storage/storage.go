// Package storage defines where uploaded KYC documents live.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned by Open and Delete when the key does not exist.
var ErrObjectNotFound = errors.New("storage object not found")

// ObjectStore is implemented by the local disk and GCS backends.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// ObjectKey builds the object path for a document: vendors/<vendorId>/<documentId>/<file>.
func ObjectKey(vendorID string, documentID uuid.UUID, fileName string) string {
	return path.Join("vendors", vendorID, documentID.String(), SanitizeFileName(fileName))
}

// SanitizeFileName strips directories and characters that do not belong in an object name.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "document"
	}
	return out
}

// ValidateKey rejects empty keys and keys that try to escape the store root.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage key is required")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
