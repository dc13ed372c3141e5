package sales

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/devstore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// saleNumberRegex matches the generated business key format
var saleNumberRegex = regexp.MustCompile(`^SALE-\d{8}-[A-F0-9]{8}$`)

// IsValidSaleNumber reports whether a string is a well-formed sale number
func IsValidSaleNumber(number string) bool {
	return saleNumberRegex.MatchString(number)
}

// SaleItemInput carries the fields needed to build one line item
type SaleItemInput struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Sale represents a retail sale aggregate root.
// It owns its line items and keeps TotalAmount equal to the sum of
// non-cancelled item totals, except after Cancel where the total is zero.
type Sale struct {
	shared.BaseAggregateRoot
	SaleNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	SaleDate     time.Time       `gorm:"not null;index"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName string          `gorm:"type:varchar(200);not null"`
	BranchID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchName   string          `gorm:"type:varchar(200);not null"`
	Items        []SaleItem      `gorm:"foreignKey:SaleID;references:ID"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IsCancelled  bool            `gorm:"not null;default:false;index"`
	CancelledAt  *time.Time
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a new sale with a generated sale number and no items
func NewSale(customerID uuid.UUID, customerName string, branchID uuid.UUID, branchName string, saleDate time.Time) (*Sale, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if branchName == "" {
		return nil, shared.NewDomainError("INVALID_BRANCH_NAME", "Branch name cannot be empty")
	}

	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleNumber:        generateSaleNumber(),
		SaleDate:          saleDate,
		CustomerID:        customerID,
		CustomerName:      customerName,
		BranchID:          branchID,
		BranchName:        branchName,
		Items:             make([]SaleItem, 0),
		TotalAmount:       decimal.Zero,
	}

	sale.AddDomainEvent(NewSaleCreatedEvent(sale))

	return sale, nil
}

// generateSaleNumber builds the business key from the current UTC date
// plus eight random uppercase hex characters.
func generateSaleNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("SALE-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

// AddItem constructs a line item owned by this sale, appends it and
// recomputes the total. The quantity bounds are checked here as well as
// inside NewSaleItem; both layers enforce the invariant independently.
func (s *Sale) AddItem(productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int) (*SaleItem, error) {
	if s.IsCancelled {
		return nil, shared.NewDomainError("SALE_CANCELLED", "Cannot add items to a cancelled sale")
	}
	if quantity <= 0 || quantity > MaxItemQuantity {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 1 and 20")
	}

	item, err := NewSaleItem(s.ID, productID, productName, unitPrice, quantity)
	if err != nil {
		return nil, err
	}

	s.Items = append(s.Items, *item)
	s.recalculateTotal()
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewSaleModifiedEvent(s))

	return item, nil
}

// Cancel cancels the whole sale and forces the total to zero.
// Item-level flags are left untouched.
func (s *Sale) Cancel() error {
	if s.IsCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "Sale is already cancelled")
	}

	now := time.Now()
	s.IsCancelled = true
	s.TotalAmount = decimal.Zero
	s.CancelledAt = &now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleCancelledEvent(s))

	return nil
}

// CancelItem cancels a single line item and recomputes the total
func (s *Sale) CancelItem(itemID uuid.UUID) error {
	if s.IsCancelled {
		return shared.NewDomainError("SALE_CANCELLED", "Cannot cancel items of a cancelled sale")
	}

	item := s.GetItem(itemID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Sale item not found")
	}

	if err := item.Cancel(); err != nil {
		return err
	}

	s.recalculateTotal()
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewSaleItemCancelledEvent(s, item))

	return nil
}

// UpdateSaleDetails overwrites the customer/branch snapshot fields and
// reconciles the item set against newItems, keyed by product id:
//   - existing non-cancelled items whose product is absent from newItems
//     are cancelled
//   - every entry in newItems cancels any existing non-cancelled item for
//     the same product and then appends a fresh item, so each update call
//     leaves a new row per product in the item history
//
// One modified event is emitted for the whole operation, in addition to
// the per-item events emitted by AddItem.
func (s *Sale) UpdateSaleDetails(customerID uuid.UUID, customerName string, branchID uuid.UUID, branchName string, newItems []SaleItemInput) error {
	if s.IsCancelled {
		return shared.NewDomainError("SALE_CANCELLED", "Cannot update a cancelled sale")
	}
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if branchID == uuid.Nil {
		return shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if branchName == "" {
		return shared.NewDomainError("INVALID_BRANCH_NAME", "Branch name cannot be empty")
	}

	s.CustomerID = customerID
	s.CustomerName = customerName
	s.BranchID = branchID
	s.BranchName = branchName

	incoming := make(map[uuid.UUID]struct{}, len(newItems))
	for _, input := range newItems {
		incoming[input.ProductID] = struct{}{}
	}

	// Cancel items whose product is no longer present
	for idx := range s.Items {
		if s.Items[idx].IsCancelled {
			continue
		}
		if _, ok := incoming[s.Items[idx].ProductID]; !ok {
			if err := s.Items[idx].Cancel(); err != nil {
				return err
			}
		}
	}

	// Cancel-and-re-add every incoming product as a fresh item
	for _, input := range newItems {
		if existing := s.GetActiveItemByProduct(input.ProductID); existing != nil {
			if err := existing.Cancel(); err != nil {
				return err
			}
		}
		if _, err := s.AddItem(input.ProductID, input.ProductName, input.UnitPrice, input.Quantity); err != nil {
			return err
		}
	}

	s.recalculateTotal()
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewSaleModifiedEvent(s))

	return nil
}

// recalculateTotal sums the totals of all non-cancelled items
func (s *Sale) recalculateTotal() {
	total := decimal.Zero
	for _, item := range s.Items {
		if item.IsCancelled {
			continue
		}
		total = total.Add(item.TotalAmount)
	}
	s.TotalAmount = total
}

// GetItem returns an item by its ID, or nil if absent
func (s *Sale) GetItem(itemID uuid.UUID) *SaleItem {
	for idx := range s.Items {
		if s.Items[idx].ID == itemID {
			return &s.Items[idx]
		}
	}
	return nil
}

// GetActiveItemByProduct returns the non-cancelled item for a product, or nil
func (s *Sale) GetActiveItemByProduct(productID uuid.UUID) *SaleItem {
	for idx := range s.Items {
		if !s.Items[idx].IsCancelled && s.Items[idx].ProductID == productID {
			return &s.Items[idx]
		}
	}
	return nil
}

// ActiveItemCount returns the number of non-cancelled items
func (s *Sale) ActiveItemCount() int {
	count := 0
	for _, item := range s.Items {
		if !item.IsCancelled {
			count++
		}
	}
	return count
}

// ItemCount returns the number of item rows, cancelled ones included
func (s *Sale) ItemCount() int {
	return len(s.Items)
}

// IsActive returns true if the sale has not been cancelled
func (s *Sale) IsActive() bool {
	return !s.IsCancelled
}
