package sales

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSale(t *testing.T) *Sale {
	sale, err := NewSale(uuid.New(), "Test Customer", uuid.New(), "Main Branch", time.Now().UTC())
	require.NoError(t, err)
	return sale
}

func addTestSaleItem(t *testing.T, sale *Sale, price float64, quantity int) *SaleItem {
	item, err := sale.AddItem(uuid.New(), "Test Product", decimal.NewFromFloat(price), quantity)
	require.NoError(t, err)
	return item
}

// ============================================
// NewSale Tests
// ============================================

func TestNewSale(t *testing.T) {
	customerID := uuid.New()
	branchID := uuid.New()
	saleDate := time.Now().UTC()

	t.Run("creates sale with valid inputs", func(t *testing.T) {
		sale, err := NewSale(customerID, "Test Customer", branchID, "Main Branch", saleDate)
		require.NoError(t, err)
		require.NotNil(t, sale)

		assert.Equal(t, customerID, sale.CustomerID)
		assert.Equal(t, "Test Customer", sale.CustomerName)
		assert.Equal(t, branchID, sale.BranchID)
		assert.Equal(t, "Main Branch", sale.BranchName)
		assert.Equal(t, saleDate, sale.SaleDate)
		assert.Empty(t, sale.Items)
		assert.True(t, sale.TotalAmount.IsZero())
		assert.False(t, sale.IsCancelled)
		assert.NotEmpty(t, sale.ID)
	})

	t.Run("generates a well-formed sale number", func(t *testing.T) {
		sale := createTestSale(t)
		assert.Regexp(t, regexp.MustCompile(`^SALE-\d{8}-[A-F0-9]{8}$`), sale.SaleNumber)
		assert.True(t, IsValidSaleNumber(sale.SaleNumber))
	})

	t.Run("publishes SaleCreated event", func(t *testing.T) {
		sale := createTestSale(t)

		events := sale.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSaleCreated, events[0].EventType())
		assert.Equal(t, sale.ID, events[0].AggregateID())
	})

	t.Run("rejects empty customer id", func(t *testing.T) {
		_, err := NewSale(uuid.Nil, "Test Customer", branchID, "Main Branch", saleDate)
		require.Error(t, err)
		assert.Equal(t, "INVALID_CUSTOMER", domainCode(t, err))
	})

	t.Run("rejects empty customer name", func(t *testing.T) {
		_, err := NewSale(customerID, "", branchID, "Main Branch", saleDate)
		require.Error(t, err)
		assert.Equal(t, "INVALID_CUSTOMER_NAME", domainCode(t, err))
	})

	t.Run("rejects empty branch id", func(t *testing.T) {
		_, err := NewSale(customerID, "Test Customer", uuid.Nil, "Main Branch", saleDate)
		require.Error(t, err)
		assert.Equal(t, "INVALID_BRANCH", domainCode(t, err))
	})

	t.Run("rejects empty branch name", func(t *testing.T) {
		_, err := NewSale(customerID, "Test Customer", branchID, "", saleDate)
		require.Error(t, err)
		assert.Equal(t, "INVALID_BRANCH_NAME", domainCode(t, err))
	})
}

// ============================================
// AddItem Tests
// ============================================

func TestSale_AddItem(t *testing.T) {
	t.Run("appends item and recomputes total", func(t *testing.T) {
		sale := createTestSale(t)

		addTestSaleItem(t, sale, 100, 2)
		addTestSaleItem(t, sale, 100, 10)

		assert.Equal(t, 2, sale.ItemCount())
		// 200 + 800 (20% off)
		assert.True(t, decimal.NewFromInt(1000).Equal(sale.TotalAmount))
	})

	t.Run("publishes SaleModified event per addition", func(t *testing.T) {
		sale := createTestSale(t)
		sale.ClearDomainEvents()

		addTestSaleItem(t, sale, 100, 2)

		events := sale.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSaleModified, events[0].EventType())
	})

	t.Run("rejects quantity above twenty before item construction", func(t *testing.T) {
		sale := createTestSale(t)

		_, err := sale.AddItem(uuid.New(), "Test Product", decimal.NewFromInt(100), 21)
		require.Error(t, err)
		assert.Equal(t, "INVALID_QUANTITY", domainCode(t, err))
		assert.Equal(t, 0, sale.ItemCount())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		sale := createTestSale(t)

		_, err := sale.AddItem(uuid.New(), "Test Product", decimal.NewFromInt(100), 0)
		require.Error(t, err)
		assert.Equal(t, "INVALID_QUANTITY", domainCode(t, err))
	})

	t.Run("rejects addition to a cancelled sale", func(t *testing.T) {
		sale := createTestSale(t)
		require.NoError(t, sale.Cancel())

		_, err := sale.AddItem(uuid.New(), "Test Product", decimal.NewFromInt(100), 1)
		require.Error(t, err)
		assert.Equal(t, "SALE_CANCELLED", domainCode(t, err))
	})
}

// ============================================
// Cancel Tests
// ============================================

func TestSale_Cancel(t *testing.T) {
	t.Run("zeroes the total and sets the flag", func(t *testing.T) {
		sale := createTestSale(t)
		addTestSaleItem(t, sale, 100, 10)

		require.NoError(t, sale.Cancel())

		assert.True(t, sale.IsCancelled)
		assert.True(t, sale.TotalAmount.IsZero())
		assert.NotNil(t, sale.CancelledAt)
	})

	t.Run("does not cascade to item flags", func(t *testing.T) {
		sale := createTestSale(t)
		item := addTestSaleItem(t, sale, 100, 2)

		require.NoError(t, sale.Cancel())

		assert.False(t, sale.GetItem(item.ID).IsCancelled)
	})

	t.Run("fails on second cancel", func(t *testing.T) {
		sale := createTestSale(t)
		require.NoError(t, sale.Cancel())

		err := sale.Cancel()
		require.Error(t, err)
		assert.Equal(t, "ALREADY_CANCELLED", domainCode(t, err))
	})

	t.Run("publishes SaleCancelled event", func(t *testing.T) {
		sale := createTestSale(t)
		sale.ClearDomainEvents()

		require.NoError(t, sale.Cancel())

		events := sale.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSaleCancelled, events[0].EventType())
	})
}

// ============================================
// CancelItem Tests
// ============================================

func TestSale_CancelItem(t *testing.T) {
	t.Run("cancels the item and recomputes total", func(t *testing.T) {
		sale := createTestSale(t)
		keep := addTestSaleItem(t, sale, 100, 2)
		drop := addTestSaleItem(t, sale, 100, 10)

		require.NoError(t, sale.CancelItem(drop.ID))

		assert.True(t, sale.GetItem(drop.ID).IsCancelled)
		assert.False(t, sale.GetItem(keep.ID).IsCancelled)
		assert.True(t, decimal.NewFromInt(200).Equal(sale.TotalAmount))
	})

	t.Run("fails for an unknown item id", func(t *testing.T) {
		sale := createTestSale(t)

		err := sale.CancelItem(uuid.New())
		require.Error(t, err)
		assert.Equal(t, "ITEM_NOT_FOUND", domainCode(t, err))
	})

	t.Run("fails for an already cancelled item", func(t *testing.T) {
		sale := createTestSale(t)
		item := addTestSaleItem(t, sale, 100, 2)
		require.NoError(t, sale.CancelItem(item.ID))

		err := sale.CancelItem(item.ID)
		require.Error(t, err)
		assert.Equal(t, "ALREADY_CANCELLED", domainCode(t, err))
	})

	t.Run("fails on a cancelled sale", func(t *testing.T) {
		sale := createTestSale(t)
		item := addTestSaleItem(t, sale, 100, 2)
		require.NoError(t, sale.Cancel())

		err := sale.CancelItem(item.ID)
		require.Error(t, err)
		assert.Equal(t, "SALE_CANCELLED", domainCode(t, err))
	})

	t.Run("publishes SaleItemCancelled event", func(t *testing.T) {
		sale := createTestSale(t)
		item := addTestSaleItem(t, sale, 100, 2)
		sale.ClearDomainEvents()

		require.NoError(t, sale.CancelItem(item.ID))

		events := sale.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSaleItemCancelled, events[0].EventType())
	})
}

// ============================================
// UpdateSaleDetails Tests
// ============================================

func TestSale_UpdateSaleDetails(t *testing.T) {
	t.Run("overwrites customer and branch snapshot fields", func(t *testing.T) {
		sale := createTestSale(t)
		newCustomerID := uuid.New()
		newBranchID := uuid.New()

		err := sale.UpdateSaleDetails(newCustomerID, "New Customer", newBranchID, "New Branch", nil)
		require.NoError(t, err)

		assert.Equal(t, newCustomerID, sale.CustomerID)
		assert.Equal(t, "New Customer", sale.CustomerName)
		assert.Equal(t, newBranchID, sale.BranchID)
		assert.Equal(t, "New Branch", sale.BranchName)
	})

	t.Run("keeps the sale number stable", func(t *testing.T) {
		sale := createTestSale(t)
		number := sale.SaleNumber

		err := sale.UpdateSaleDetails(uuid.New(), "New Customer", uuid.New(), "New Branch", nil)
		require.NoError(t, err)

		assert.Equal(t, number, sale.SaleNumber)
	})

	t.Run("cancels items whose product is absent from the new set", func(t *testing.T) {
		sale := createTestSale(t)
		old := addTestSaleItem(t, sale, 100, 2)

		err := sale.UpdateSaleDetails(sale.CustomerID, sale.CustomerName, sale.BranchID, sale.BranchName, nil)
		require.NoError(t, err)

		assert.True(t, sale.GetItem(old.ID).IsCancelled)
		assert.True(t, sale.TotalAmount.IsZero())
	})

	t.Run("re-adds present products as fresh item rows", func(t *testing.T) {
		sale := createTestSale(t)
		productID := uuid.New()
		_, err := sale.AddItem(productID, "Widget", decimal.NewFromInt(100), 2)
		require.NoError(t, err)

		input := []SaleItemInput{{ProductID: productID, ProductName: "Widget", UnitPrice: decimal.NewFromInt(100), Quantity: 2}}
		require.NoError(t, sale.UpdateSaleDetails(sale.CustomerID, sale.CustomerName, sale.BranchID, sale.BranchName, input))

		// one cancelled history row plus one active row for the product
		assert.Equal(t, 2, sale.ItemCount())
		assert.Equal(t, 1, sale.ActiveItemCount())
		assert.True(t, decimal.NewFromInt(200).Equal(sale.TotalAmount))
	})

	t.Run("grows one history row per product per update", func(t *testing.T) {
		sale := createTestSale(t)
		productID := uuid.New()
		input := []SaleItemInput{{ProductID: productID, ProductName: "Widget", UnitPrice: decimal.NewFromInt(100), Quantity: 5}}

		require.NoError(t, sale.UpdateSaleDetails(sale.CustomerID, sale.CustomerName, sale.BranchID, sale.BranchName, input))
		require.NoError(t, sale.UpdateSaleDetails(sale.CustomerID, sale.CustomerName, sale.BranchID, sale.BranchName, input))

		assert.Equal(t, 2, sale.ItemCount())
		assert.Equal(t, 1, sale.ActiveItemCount())
		// 100 * 5 with 10% discount
		assert.True(t, decimal.NewFromInt(450).Equal(sale.TotalAmount))
	})

	t.Run("emits one aggregate modified event plus per-item events", func(t *testing.T) {
		sale := createTestSale(t)
		sale.ClearDomainEvents()

		input := []SaleItemInput{{ProductID: uuid.New(), ProductName: "Widget", UnitPrice: decimal.NewFromInt(100), Quantity: 1}}
		require.NoError(t, sale.UpdateSaleDetails(sale.CustomerID, sale.CustomerName, sale.BranchID, sale.BranchName, input))

		// AddItem emits one event, the operation itself another
		events := sale.GetDomainEvents()
		require.Len(t, events, 2)
		for _, evt := range events {
			assert.Equal(t, EventTypeSaleModified, evt.EventType())
		}
	})

	t.Run("rejects items with invalid quantity", func(t *testing.T) {
		sale := createTestSale(t)

		input := []SaleItemInput{{ProductID: uuid.New(), ProductName: "Widget", UnitPrice: decimal.NewFromInt(100), Quantity: 25}}
		err := sale.UpdateSaleDetails(sale.CustomerID, sale.CustomerName, sale.BranchID, sale.BranchName, input)
		require.Error(t, err)
		assert.Equal(t, "INVALID_QUANTITY", domainCode(t, err))
	})

	t.Run("fails on a cancelled sale", func(t *testing.T) {
		sale := createTestSale(t)
		require.NoError(t, sale.Cancel())

		err := sale.UpdateSaleDetails(uuid.New(), "New Customer", uuid.New(), "New Branch", nil)
		require.Error(t, err)
		assert.Equal(t, "SALE_CANCELLED", domainCode(t, err))
	})
}

// ============================================
// Total invariant tests
// ============================================

func TestSale_TotalInvariant(t *testing.T) {
	t.Run("total equals sum of non-cancelled item totals", func(t *testing.T) {
		sale := createTestSale(t)
		a := addTestSaleItem(t, sale, 50, 1)   // 50
		addTestSaleItem(t, sale, 100, 4)       // 360
		b := addTestSaleItem(t, sale, 100, 20) // 1600

		require.NoError(t, sale.CancelItem(a.ID))
		assert.True(t, decimal.NewFromInt(1960).Equal(sale.TotalAmount))

		require.NoError(t, sale.CancelItem(b.ID))
		assert.True(t, decimal.NewFromInt(360).Equal(sale.TotalAmount))
	})

	t.Run("drained events can be cleared", func(t *testing.T) {
		sale := createTestSale(t)
		addTestSaleItem(t, sale, 100, 1)

		assert.NotEmpty(t, sale.GetDomainEvents())
		sale.ClearDomainEvents()
		assert.Empty(t, sale.GetDomainEvents())
	})
}
