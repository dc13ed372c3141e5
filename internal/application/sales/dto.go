package sales

import (
	"time"

	"github.com/devstore/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Sale DTOs ====================

// SaleItemInput represents one line item in a create or update request
type SaleItemInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"required,min=1,max=200"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,min=1,max=20"`
}

// CreateSaleRequest represents a request to create a sale
type CreateSaleRequest struct {
	SaleDate     time.Time       `json:"sale_date" binding:"required"`
	CustomerID   uuid.UUID       `json:"customer_id" binding:"required"`
	CustomerName string          `json:"customer_name" binding:"required,min=1,max=200"`
	BranchID     uuid.UUID       `json:"branch_id" binding:"required"`
	BranchName   string          `json:"branch_name" binding:"required,min=1,max=200"`
	Items        []SaleItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateSaleRequest represents a request to replace the sale details.
// The item list is a full replacement keyed by product id.
type UpdateSaleRequest struct {
	CustomerID   uuid.UUID       `json:"customer_id" binding:"required"`
	CustomerName string          `json:"customer_name" binding:"required,min=1,max=200"`
	BranchID     uuid.UUID       `json:"branch_id" binding:"required"`
	BranchName   string          `json:"branch_name" binding:"required,min=1,max=200"`
	Items        []SaleItemInput `json:"items" binding:"required,min=1,dive"`
}

// SaleItemResponse represents a line item in API responses
type SaleItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Discount    decimal.Decimal `json:"discount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	IsCancelled bool            `json:"is_cancelled"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID           uuid.UUID          `json:"id"`
	SaleNumber   string             `json:"sale_number"`
	SaleDate     time.Time          `json:"sale_date"`
	CustomerID   uuid.UUID          `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	BranchID     uuid.UUID          `json:"branch_id"`
	BranchName   string             `json:"branch_name"`
	Items        []SaleItemResponse `json:"items"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	IsCancelled  bool               `json:"is_cancelled"`
	CancelledAt  *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ToSaleResponse maps a sale aggregate to its API representation.
// Money fields are rounded to two decimal places at this boundary.
func ToSaleResponse(sale *sales.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(sale.Items))
	for i, item := range sale.Items {
		items[i] = SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice.Round(2),
			Quantity:    item.Quantity,
			Discount:    item.Discount,
			TotalAmount: item.TotalAmount.Round(2),
			IsCancelled: item.IsCancelled,
		}
	}

	return SaleResponse{
		ID:           sale.ID,
		SaleNumber:   sale.SaleNumber,
		SaleDate:     sale.SaleDate,
		CustomerID:   sale.CustomerID,
		CustomerName: sale.CustomerName,
		BranchID:     sale.BranchID,
		BranchName:   sale.BranchName,
		Items:        items,
		TotalAmount:  sale.TotalAmount.Round(2),
		IsCancelled:  sale.IsCancelled,
		CancelledAt:  sale.CancelledAt,
		CreatedAt:    sale.CreatedAt,
		UpdatedAt:    sale.UpdatedAt,
	}
}

// ToSaleResponses maps a page of sales to their API representation
func ToSaleResponses(items []sales.Sale) []SaleResponse {
	responses := make([]SaleResponse, len(items))
	for i := range items {
		responses[i] = ToSaleResponse(&items[i])
	}
	return responses
}
