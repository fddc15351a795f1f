package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type note struct {
	ID   uint
	Body string
}

func openNotes(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:repo_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&note{}))
	return conn
}

func TestBaseWritesThroughBoundTransaction(t *testing.T) {
	conn := openNotes(t)
	base := NewBase(conn)
	ctx := context.Background()

	tx := conn.Begin()
	require.NoError(t, base.WithTx(tx).DB(ctx).Create(&note{Body: "draft"}).Error)
	require.NoError(t, tx.Rollback().Error)

	var count int64
	require.NoError(t, base.DB(ctx).Model(&note{}).Count(&count).Error)
	require.Zero(t, count, "rolled back write must not be visible through the root handle")
}

func TestBaseDBCarriesContext(t *testing.T) {
	base := NewBase(openNotes(t))
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "req-1")

	require.Equal(t, ctx, base.DB(ctx).Statement.Context)
	require.Same(t, base.db, base.DB(nil))
}

func TestBaseHonoursCancelledContext(t *testing.T) {
	base := NewBase(openNotes(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := base.DB(ctx).Create(&note{Body: "late"}).Error
	require.ErrorIs(t, err, context.Canceled)
}
