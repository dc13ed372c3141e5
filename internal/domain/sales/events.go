package sales

import (
	"time"

	"github.com/devstore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeSale = "Sale"

// Event type constants
const (
	EventTypeSaleCreated       = "SaleCreated"
	EventTypeSaleModified      = "SaleModified"
	EventTypeSaleCancelled     = "SaleCancelled"
	EventTypeSaleItemCancelled = "SaleItemCancelled"
)

// SaleItemInfo represents line item information carried in events
type SaleItemInfo struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Discount    decimal.Decimal `json:"discount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	IsCancelled bool            `json:"is_cancelled"`
}

func itemInfos(sale *Sale) []SaleItemInfo {
	infos := make([]SaleItemInfo, len(sale.Items))
	for i, item := range sale.Items {
		infos[i] = SaleItemInfo{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Discount:    item.Discount,
			TotalAmount: item.TotalAmount,
			IsCancelled: item.IsCancelled,
		}
	}
	return infos
}

// SaleCreatedEvent is raised when a new sale is created
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID       uuid.UUID       `json:"sale_id"`
	SaleNumber   string          `json:"sale_number"`
	SaleDate     time.Time       `json:"sale_date"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	BranchID     uuid.UUID       `json:"branch_id"`
	BranchName   string          `json:"branch_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(sale *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, sale.ID),
		SaleID:          sale.ID,
		SaleNumber:      sale.SaleNumber,
		SaleDate:        sale.SaleDate,
		CustomerID:      sale.CustomerID,
		CustomerName:    sale.CustomerName,
		BranchID:        sale.BranchID,
		BranchName:      sale.BranchName,
		TotalAmount:     sale.TotalAmount,
	}
}

// EventType returns the event type name
func (e *SaleCreatedEvent) EventType() string {
	return EventTypeSaleCreated
}

// SaleModifiedEvent is raised when items are added or the sale details
// are replaced. One update call can emit several of these; consumers
// must tolerate duplicates.
type SaleModifiedEvent struct {
	shared.BaseDomainEvent
	SaleID       uuid.UUID       `json:"sale_id"`
	SaleNumber   string          `json:"sale_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Items        []SaleItemInfo  `json:"items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// NewSaleModifiedEvent creates a new SaleModifiedEvent
func NewSaleModifiedEvent(sale *Sale) *SaleModifiedEvent {
	return &SaleModifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleModified, AggregateTypeSale, sale.ID),
		SaleID:          sale.ID,
		SaleNumber:      sale.SaleNumber,
		CustomerID:      sale.CustomerID,
		CustomerName:    sale.CustomerName,
		Items:           itemInfos(sale),
		TotalAmount:     sale.TotalAmount,
	}
}

// EventType returns the event type name
func (e *SaleModifiedEvent) EventType() string {
	return EventTypeSaleModified
}

// SaleCancelledEvent is raised when the whole sale is cancelled
type SaleCancelledEvent struct {
	shared.BaseDomainEvent
	SaleID       uuid.UUID      `json:"sale_id"`
	SaleNumber   string         `json:"sale_number"`
	CustomerID   uuid.UUID      `json:"customer_id"`
	CustomerName string         `json:"customer_name"`
	Items        []SaleItemInfo `json:"items"`
	CancelledAt  time.Time      `json:"cancelled_at"`
}

// NewSaleCancelledEvent creates a new SaleCancelledEvent
func NewSaleCancelledEvent(sale *Sale) *SaleCancelledEvent {
	cancelledAt := time.Now()
	if sale.CancelledAt != nil {
		cancelledAt = *sale.CancelledAt
	}
	return &SaleCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCancelled, AggregateTypeSale, sale.ID),
		SaleID:          sale.ID,
		SaleNumber:      sale.SaleNumber,
		CustomerID:      sale.CustomerID,
		CustomerName:    sale.CustomerName,
		Items:           itemInfos(sale),
		CancelledAt:     cancelledAt,
	}
}

// EventType returns the event type name
func (e *SaleCancelledEvent) EventType() string {
	return EventTypeSaleCancelled
}

// SaleItemCancelledEvent is raised when a single line item is cancelled
type SaleItemCancelledEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	SaleNumber  string          `json:"sale_number"`
	Item        SaleItemInfo    `json:"item"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewSaleItemCancelledEvent creates a new SaleItemCancelledEvent
func NewSaleItemCancelledEvent(sale *Sale, item *SaleItem) *SaleItemCancelledEvent {
	return &SaleItemCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleItemCancelled, AggregateTypeSale, sale.ID),
		SaleID:          sale.ID,
		SaleNumber:      sale.SaleNumber,
		Item: SaleItemInfo{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Discount:    item.Discount,
			TotalAmount: item.TotalAmount,
			IsCancelled: item.IsCancelled,
		},
		TotalAmount: sale.TotalAmount,
	}
}

// EventType returns the event type name
func (e *SaleItemCancelledEvent) EventType() string {
	return EventTypeSaleItemCancelled
}
