package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIgnoresCaseAndSpace(t *testing.T) {
	method, err := ParsePaymentMethod("  Card ")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCard, method)

	status, err := ParseSaleStatus("PENDING")
	require.NoError(t, err)
	assert.Equal(t, SaleStatusPending, status)

	_, err = ParseAdjustmentReason("theft")
	require.EqualError(t, err, `invalid adjustment reason "theft"`)
}

func TestIsValidRejectsUnknownValues(t *testing.T) {
	assert.True(t, AdjustmentReasonDamage.IsValid())
	assert.False(t, PaymentMethod("barter").IsValid())
	assert.False(t, WithdrawalStatus("").IsValid())
	assert.True(t, EventStockAlertDigest.IsValid())
	assert.True(t, AggregateInventory.IsValid())
}
