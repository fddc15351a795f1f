package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db/models"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
)

// MaybeRunDev migrates the schema on start-up in dev when the auto-migrate flag
// is set. Postgres runs the goose files; SQLite falls back to gorm AutoMigrate
// of the models since the SQL files use Postgres syntax.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir, "db_driver": cfg.DB.Driver})

	if cfg.DB.IsSQLite() {
		logg.Info(ctx, "auto-migrating sqlite schema (dev auto-run)")
		if err := client.DB().WithContext(ctx).AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("sqlite automigrate: %w", err)
		}
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "running goose migrations (dev auto-run)")
	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.VendorSequence{},
		&models.VendorApplication{},
		&models.VendorDocument{},
		&models.VendorStatusHistory{},
		&models.OutboxEvent{},
		&models.OutboxDLQ{},
	}
}
