package persistence

import (
	"testing"
	"time"

	"github.com/devstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
}

func TestCompileSaleFilters_Range(t *testing.T) {
	t.Run("min amount", func(t *testing.T) {
		conds, err := compileSaleFilters(map[string]string{"_minTotalAmount": "100"})
		require.NoError(t, err)
		require.Len(t, conds, 1)
		assert.Equal(t, "total_amount >= ?", conds[0].clause)
		assert.True(t, decimal.NewFromInt(100).Equal(conds[0].args[0].(decimal.Decimal)))
	})

	t.Run("max amount", func(t *testing.T) {
		conds, err := compileSaleFilters(map[string]string{"_maxTotalAmount": "200.50"})
		require.NoError(t, err)
		require.Len(t, conds, 1)
		assert.Equal(t, "total_amount <= ?", conds[0].clause)
	})

	t.Run("date range accepts plain dates", func(t *testing.T) {
		conds, err := compileSaleFilters(map[string]string{"_minDate": "2026-01-15"})
		require.NoError(t, err)
		require.Len(t, conds, 1)
		assert.Equal(t, "sale_date >= ?", conds[0].clause)
		assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), conds[0].args[0])
	})

	t.Run("date range accepts RFC 3339", func(t *testing.T) {
		conds, err := compileSaleFilters(map[string]string{"_maxDate": "2026-01-15T10:30:00Z"})
		require.NoError(t, err)
		require.Len(t, conds, 1)
		assert.Equal(t, "sale_date <= ?", conds[0].clause)
	})

	t.Run("saleDate is an alias for date", func(t *testing.T) {
		conds, err := compileSaleFilters(map[string]string{"_minSaleDate": "2026-01-15"})
		require.NoError(t, err)
		require.Len(t, conds, 1)
		assert.Equal(t, "sale_date >= ?", conds[0].clause)
	})

	t.Run("unparsable amount fails hard", func(t *testing.T) {
		_, err := compileSaleFilters(map[string]string{"_minTotalAmount": "not-a-number"})
		assertValidationError(t, err)
	})

	t.Run("unparsable date fails hard", func(t *testing.T) {
		_, err := compileSaleFilters(map[string]string{"_maxDate": "yesterday"})
		assertValidationError(t, err)
	})

	t.Run("unknown range field fails hard", func(t *testing.T) {
		_, err := compileSaleFilters(map[string]string{"_minQuantity": "5"})
		assertValidationError(t, err)
	})
}

func TestCompileSaleFilters_Wildcard(t *testing.T) {
	t.Run("trailing star means starts-with", func(t *testing.T) {
		conds, err := compileSaleFilters(map[string]string{"customerName": "John*"})
		require.NoError(t, err)
		require.Len(t, conds, 1)
		assert.Equal(t, "customer_name LIKE ?", conds[0].clause)
		assert.Equal(t, "John%", conds[0].args[0])
	})

	t.Run("leading star means ends-with", func(t *testing.T) {
		conds, err := compileSaleFilters(map[string]string{"branchName": "*Branch"})
		require.NoError(t, err)
		require.Len(t, conds, 1)
		assert.Equal(t, "branch_name LIKE ?", conds[0].clause)
		assert.Equal(t, "%Branch", conds[0].args[0])
	})

	t.Run("leading star wins when both present", func(t *testing.T) {
		conds, err := compileSaleFilters(map[string]string{"customerName": "*John*"})
		require.NoError(t, err)
		require.Len(t, conds, 1)
		assert.Equal(t, "%John", conds[0].args[0])
	})

	t.Run("wildcard on unsupported field fails hard", func(t *testing.T) {
		_, err := compileSaleFilters(map[string]string{"saleNumber": "SALE-*"})
		assertValidationError(t, err)
	})

	t.Run("star in the middle fails hard", func(t *testing.T) {
		_, err := compileSaleFilters(map[string]string{"customerName": "Jo*hn"})
		assertValidationError(t, err)
	})
}

func TestCompileSaleFilters_Exact(t *testing.T) {
	t.Run("customer name equality", func(t *testing.T) {
		conds, err := compileSaleFilters(map[string]string{"customerName": "John Doe"})
		require.NoError(t, err)
		require.Len(t, conds, 1)
		assert.Equal(t, "customer_name = ?", conds[0].clause)
		assert.Equal(t, "John Doe", conds[0].args[0])
	})

	t.Run("branch name equality", func(t *testing.T) {
		conds, err := compileSaleFilters(map[string]string{"branchName": "Main Branch"})
		require.NoError(t, err)
		require.Len(t, conds, 1)
		assert.Equal(t, "branch_name = ?", conds[0].clause)
	})

	t.Run("cancelled flag parses booleans", func(t *testing.T) {
		conds, err := compileSaleFilters(map[string]string{"isCancelled": "true"})
		require.NoError(t, err)
		require.Len(t, conds, 1)
		assert.Equal(t, "is_cancelled = ?", conds[0].clause)
		assert.Equal(t, true, conds[0].args[0])
	})

	t.Run("cancelled flag rejects non-booleans", func(t *testing.T) {
		_, err := compileSaleFilters(map[string]string{"isCancelled": "maybe"})
		assertValidationError(t, err)
	})

	t.Run("unknown field fails hard", func(t *testing.T) {
		_, err := compileSaleFilters(map[string]string{"invalidField": "value"})
		assertValidationError(t, err)
	})

	t.Run("empty value fails hard", func(t *testing.T) {
		_, err := compileSaleFilters(map[string]string{"customerName": ""})
		assertValidationError(t, err)
	})

	t.Run("no filters compile to no conditions", func(t *testing.T) {
		conds, err := compileSaleFilters(nil)
		require.NoError(t, err)
		assert.Empty(t, conds)
	})
}

func TestCompileSaleOrder(t *testing.T) {
	tests := []struct {
		name    string
		orderBy string
		want    []string
	}{
		{"empty input falls back to default", "", []string{"sale_date DESC"}},
		{"single field default ascending", "customer", []string{"customer_name ASC"}},
		{"explicit desc", "amount desc", []string{"total_amount DESC"}},
		{"explicit asc", "saleDate asc", []string{"sale_date ASC"}},
		{"multiple clauses keep order", "totalAmount desc,saleDate asc", []string{"total_amount DESC", "sale_date ASC"}},
		{"aliases resolve to columns", "number desc,branch", []string{"sale_number DESC", "branch_name ASC"}},
		{"field names are case-insensitive", "CUSTOMERNAME DESC", []string{"customer_name DESC"}},
		{"unknown field is skipped", "unknownField desc,amount asc", []string{"total_amount ASC"}},
		{"all-unknown input falls back to default", "foo,bar desc", []string{"sale_date DESC"}},
		{"whitespace tolerated", " date desc , customer ", []string{"sale_date DESC", "customer_name ASC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compileSaleOrder(tt.orderBy))
		})
	}
}
