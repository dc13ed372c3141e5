package sales

import (
	"time"

	"github.com/devstore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quantity bounds for a single line item
const (
	MinItemQuantity = 1
	MaxItemQuantity = 20
)

// Discount tiers applied by quantity
var (
	discountNone  = decimal.Zero
	discountTier1 = decimal.NewFromFloat(0.10) // 4-9 units
	discountTier2 = decimal.NewFromFloat(0.20) // 10-20 units
	decimalOne    = decimal.NewFromInt(1)
)

// SaleItem represents a priced line item in a sale.
// Discount and TotalAmount are derived from quantity and unit price;
// cancelled items are kept for history and excluded from the sale total.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity    int             `gorm:"not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IsCancelled bool            `gorm:"not null;default:false"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// DiscountForQuantity returns the discount rate for a quantity.
// Quantities outside [MinItemQuantity, MaxItemQuantity] carry no discount;
// they are rejected before this is consulted.
func DiscountForQuantity(quantity int) decimal.Decimal {
	switch {
	case quantity >= 10:
		return discountTier2
	case quantity >= 4:
		return discountTier1
	default:
		return discountNone
	}
}

// NewSaleItem creates a new sale item with discount and total computed
func NewSaleItem(saleID, productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int) (*SaleItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}
	if quantity < MinItemQuantity || quantity > MaxItemQuantity {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 1 and 20")
	}

	now := time.Now()
	item := &SaleItem{
		ID:          uuid.New(),
		SaleID:      saleID,
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.recalculate()

	return item, nil
}

// Cancel marks the item as cancelled.
// The owning sale recomputes its total; this item's own amounts are kept.
func (i *SaleItem) Cancel() error {
	if i.IsCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "Item is already cancelled")
	}

	i.IsCancelled = true
	i.UpdatedAt = time.Now()

	return nil
}

// UpdateDetails overwrites the item snapshot fields and recomputes discount and total
func (i *SaleItem) UpdateDetails(productName string, unitPrice decimal.Decimal, quantity int) error {
	if i.IsCancelled {
		return shared.NewDomainError("ITEM_CANCELLED", "Cannot update a cancelled item")
	}
	if productName == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}
	if quantity < MinItemQuantity || quantity > MaxItemQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 1 and 20")
	}

	i.ProductName = productName
	i.UnitPrice = unitPrice
	i.Quantity = quantity
	i.recalculate()
	i.UpdatedAt = time.Now()

	return nil
}

// recalculate derives discount and total from the current quantity and price.
// Full decimal precision is kept in memory; rounding happens at the boundary.
func (i *SaleItem) recalculate() {
	i.Discount = DiscountForQuantity(i.Quantity)
	i.TotalAmount = i.UnitPrice.
		Mul(decimal.NewFromInt(int64(i.Quantity))).
		Mul(decimalOne.Sub(i.Discount))
}
