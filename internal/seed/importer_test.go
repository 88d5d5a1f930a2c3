package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

const fixtureJSON = `{
	"investors": [
		{"id": "inv-1", "name": "Ana", "investment_amount": "500000", "percentage_ownership": "0.25", "status": "active"},
		{"id": "inv-2", "name": "Luis", "investment_amount": "250000", "percentage_ownership": "0.10", "status": "active"}
	],
	"financial_records": [
		{"period": "2026-01", "total_profit": "100000"}
	],
	"inventory": [
		{"id": "tote", "name": "Canvas tote", "category": "bags", "wholesale_price": "400", "selling_price": "1000", "quantity": 12}
	]
}`

func TestImporter_ImportsFixtureAndLoaderReadsIt(t *testing.T) {
	client, repo := openTestDB(t)
	ctx := context.Background()

	fixture, err := ReadFixture(strings.NewReader(fixtureJSON))
	require.NoError(t, err)

	importer, err := NewImporter(client, repo, nil)
	require.NoError(t, err)
	result, err := importer.Import(ctx, *fixture)
	require.NoError(t, err)
	assert.Equal(t, Result{Investors: 2, FinancialRecords: 1, InventoryItems: 1}, *result)

	loader, err := NewLoader(client, repo, nil)
	require.NoError(t, err)
	store := newStore()
	loaded, err := loader.Load(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, *result, *loaded)

	item, err := store.Item("tote")
	require.NoError(t, err)
	assert.Equal(t, 12, item.Quantity)

	_, err = importer.Import(ctx, *fixture)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "re-import must not duplicate investors")
	investors, err := repo.ListInvestors(ctx)
	require.NoError(t, err)
	assert.Len(t, investors, 2)
}

func TestImporter_ValidatesBeforeWriting(t *testing.T) {
	client, repo := openTestDB(t)
	ctx := context.Background()

	fixture, err := ReadFixture(strings.NewReader(fixtureJSON))
	require.NoError(t, err)
	fixture.Investors[1].PercentageOwnership = decimal.RequireFromString("0.9")

	importer, err := NewImporter(client, repo, nil)
	require.NoError(t, err)
	_, err = importer.Import(ctx, *fixture)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	investors, err := repo.ListInvestors(ctx)
	require.NoError(t, err)
	assert.Empty(t, investors)
}

func TestReadFixture_RejectsUnknownFields(t *testing.T) {
	_, err := ReadFixture(strings.NewReader(`{"investors": [], "partners": []}`))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
