package seed

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/backoffice/internal/ledger"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Result counts what was loaded into the ledger.
type Result struct {
	Investors        int
	FinancialRecords int
	InventoryItems   int
}

// Loader copies reference data and starting stock from the database into the
// ledger before the service starts taking traffic.
type Loader struct {
	db   txRunner
	repo *Repository
	logg *logger.Logger
}

func NewLoader(db txRunner, repo *Repository, logg *logger.Logger) (*Loader, error) {
	if db == nil {
		return nil, fmt.Errorf("db tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("seed repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Loader{db: db, repo: repo, logg: logg}, nil
}

// Load reads every table in one database transaction, then seeds the ledger.
// Investors and financial records are validated as a whole before any of
// them replace what the ledger holds.
func (l *Loader) Load(ctx context.Context, store *ledger.Store) (*Result, error) {
	var (
		data  ledger.ReferenceData
		items []models.InventoryItem
	)
	err := l.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := l.repo.WithTx(tx)
		var err error
		if data.Investors, err = repo.ListInvestors(ctx); err != nil {
			return err
		}
		if data.FinancialRecords, err = repo.ListFinancialRecords(ctx); err != nil {
			return err
		}
		items, err = repo.ListInventory(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := store.SeedReferenceData(data); err != nil {
		return nil, err
	}
	for _, item := range items {
		if _, err := store.UpsertInventoryItem(item); err != nil {
			return nil, fmt.Errorf("seed inventory item %q: %w", item.ID, err)
		}
	}

	result := &Result{
		Investors:        len(data.Investors),
		FinancialRecords: len(data.FinancialRecords),
		InventoryItems:   len(items),
	}
	logCtx := l.logg.WithFields(ctx, map[string]any{
		"investors":         result.Investors,
		"financial_records": result.FinancialRecords,
		"inventory_items":   result.InventoryItems,
	})
	l.logg.Info(logCtx, "ledger seeded from reference data")
	return result, nil
}
