package seed

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/backoffice/internal/repo"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

// Repository reads and writes the reference tables the ledger is seeded from.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.WithConn(tx)}
}

// Migrate creates the reference tables when they are missing. Deployed
// databases are migrated by cmd/migrate instead.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.DB(ctx).AutoMigrate(&models.Investor{}, &models.FinancialRecord{}, &models.InventoryItem{})
}

func (r *Repository) ListInvestors(ctx context.Context) ([]models.Investor, error) {
	var out []models.Investor
	if err := r.DB(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list investors")
	}
	return out, nil
}

func (r *Repository) ListFinancialRecords(ctx context.Context) ([]models.FinancialRecord, error) {
	var out []models.FinancialRecord
	if err := r.DB(ctx).Order("period ASC").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list financial records")
	}
	return out, nil
}

func (r *Repository) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	if err := r.DB(ctx).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}
	return out, nil
}

func (r *Repository) CreateInvestor(ctx context.Context, investor *models.Investor) error {
	return r.Create(ctx, investor, "investor", investor.ID)
}

// UpsertFinancialRecord writes a period's profit, replacing an earlier figure.
func (r *Repository) UpsertFinancialRecord(ctx context.Context, record *models.FinancialRecord) error {
	err := r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "period"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_profit"}),
	}).Create(record).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert financial record")
	}
	return nil
}

func (r *Repository) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	return r.Create(ctx, item, "inventory item", item.ID)
}
