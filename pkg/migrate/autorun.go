package migrate

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/db"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

// MaybeRunDev brings the reference-data schema up to date before the ledger
// is seeded. It only acts in dev and only with BACKOFFICE_DB_AUTO_MIGRATE on;
// every other environment runs cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil || !cfg.DB.AutoMigrate || !cfg.App.IsDev() {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	if err := Run(ctx, sqlDB, cfg.DB.Driver, "up"); err != nil {
		return err
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"driver":         cfg.DB.Driver,
			"schema_version": version,
		}), "reference schema migrated")
	}
	return nil
}
