package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base holds the connection (or transaction) a domain repository runs against.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// WithTx returns a Base bound to tx.
func (b Base) WithTx(tx *gorm.DB) Base {
	return Base{db: tx}
}

// DB returns the handle bound to ctx when one is supplied.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
