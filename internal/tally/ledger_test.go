package tally_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	money "github.com/rezonia/tally-connector/internal/decimal"
	"github.com/rezonia/tally-connector/internal/model"
	"github.com/rezonia/tally-connector/internal/tally"
)

func TestLedgerEntries_NetToZero(t *testing.T) {
	rec := &model.InvoiceRecord{
		TotalAmount: money.FromInt(1000),
		IGSTAmount:  money.FromInt(100),
		Items:       []model.LineItem{{Amount: money.FromInt(900)}},
	}

	entries := tally.LedgerEntries(rec)
	require.Len(t, entries, 3)

	sum := money.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	assert.True(t, sum.IsZero())
	assert.True(t, entries[0].DeemedPositive)
	assert.False(t, entries[1].DeemedPositive)
	assert.False(t, entries[2].DeemedPositive)
	assert.Nil(t, tally.CheckBalance(rec))
}

func TestLedgerEntries_SkipsZeroAndNegativeTax(t *testing.T) {
	rec := &model.InvoiceRecord{
		TotalAmount: money.FromInt(100),
		CGSTAmount:  money.FromInt(-5),
		Items:       []model.LineItem{{Amount: money.FromInt(100)}},
	}
	assert.Len(t, tally.LedgerEntries(rec), 2)
}

func TestCheckBalance_Unbalanced(t *testing.T) {
	rec := &model.InvoiceRecord{
		TotalAmount: money.FromInt(1000),
		Items:       []model.LineItem{{Amount: money.FromInt(900)}},
	}

	err := tally.CheckBalance(rec)
	require.NotNil(t, err)
	assert.Equal(t, "total_amount", err.Field)
	assert.Contains(t, err.Error(), "-100.00")
}

func TestLedgerEntries_NilRecord(t *testing.T) {
	entries := tally.LedgerEntries(nil)
	require.Len(t, entries, 2)
	assert.Equal(t, model.DefaultCustomerName, entries[0].Name)
	assert.Nil(t, tally.CheckBalance(nil))
}
