package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/angelmondragon/backoffice/internal/ledger"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

// Fixture is the JSON document accepted by the seed command.
type Fixture struct {
	Investors        []models.Investor        `json:"investors"`
	FinancialRecords []models.FinancialRecord `json:"financial_records"`
	Inventory        []models.InventoryItem   `json:"inventory"`
}

// ReadFixture decodes a fixture, rejecting unknown fields.
func ReadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode seed fixture")
	}
	return &f, nil
}

// Importer writes a fixture into the reference tables.
type Importer struct {
	db   txRunner
	repo *Repository
	logg *logger.Logger
}

func NewImporter(db txRunner, repo *Repository, logg *logger.Logger) (*Importer, error) {
	if db == nil {
		return nil, fmt.Errorf("db tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("seed repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Importer{db: db, repo: repo, logg: logg}, nil
}

// Import validates the fixture against the same rules the ledger enforces at
// startup, then inserts it in one transaction. Financial records are upserted
// by period; investors and items must be new.
func (i *Importer) Import(ctx context.Context, fixture Fixture) (*Result, error) {
	scratch := ledger.New(ledger.Options{})
	if err := scratch.SeedReferenceData(ledger.ReferenceData{
		Investors:        fixture.Investors,
		FinancialRecords: fixture.FinancialRecords,
	}); err != nil {
		return nil, err
	}
	for _, item := range fixture.Inventory {
		if _, err := scratch.UpsertInventoryItem(item); err != nil {
			return nil, err
		}
	}

	err := i.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := i.repo.WithTx(tx)
		for idx := range fixture.Investors {
			if err := repo.CreateInvestor(ctx, &fixture.Investors[idx]); err != nil {
				return err
			}
		}
		for idx := range fixture.FinancialRecords {
			if err := repo.UpsertFinancialRecord(ctx, &fixture.FinancialRecords[idx]); err != nil {
				return err
			}
		}
		for idx := range fixture.Inventory {
			if err := repo.CreateInventoryItem(ctx, &fixture.Inventory[idx]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Investors:        len(fixture.Investors),
		FinancialRecords: len(fixture.FinancialRecords),
		InventoryItems:   len(fixture.Inventory),
	}
	i.logg.Info(i.logg.WithFields(ctx, map[string]any{
		"investors":         result.Investors,
		"financial_records": result.FinancialRecords,
		"inventory_items":   result.InventoryItems,
	}), "reference data imported")
	return result, nil
}
