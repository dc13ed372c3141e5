package sales

import (
	"context"
	"time"

	"github.com/devstore/backend/internal/domain/sales"
	"github.com/devstore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleService handles sale business operations
type SaleService struct {
	saleRepo       sales.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(saleRepo sales.Repository, logger *zap.Logger) *SaleService {
	return &SaleService{
		saleRepo: saleRepo,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for sale lifecycle events
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new sale with its items
func (s *SaleService) Create(ctx context.Context, req CreateSaleRequest) (*SaleResponse, error) {
	if req.SaleDate.After(time.Now()) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Sale date cannot be in the future")
	}

	// Reject out-of-range quantities before touching the aggregate;
	// the aggregate and the item repeat this check independently.
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.Quantity > sales.MaxItemQuantity {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Item quantity must be between 1 and 20")
		}
	}

	sale, err := sales.NewSale(req.CustomerID, req.CustomerName, req.BranchID, req.BranchName, req.SaleDate)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if _, err := sale.AddItem(item.ProductID, item.ProductName, item.UnitPrice, item.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.saleRepo.Add(ctx, sale); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sale)

	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a sale by ID
func (s *SaleService) GetByID(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetBySaleNumber retrieves a sale by its business key
func (s *SaleService) GetBySaleNumber(ctx context.Context, number string) (*SaleResponse, error) {
	if !sales.IsValidSaleNumber(number) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Sale number must match SALE-YYYYMMDD-XXXXXXXX")
	}

	sale, err := s.saleRepo.FindBySaleNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves a filtered, ordered page of sales plus the total count
func (s *SaleService) List(ctx context.Context, query sales.ListQuery) ([]SaleResponse, int64, error) {
	if err := query.Validate(); err != nil {
		return nil, 0, err
	}

	result, err := s.saleRepo.FindAll(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.saleRepo.Count(ctx, query.Filters)
	if err != nil {
		return nil, 0, err
	}

	return ToSaleResponses(result), total, nil
}

// Update replaces the sale details and the item set
func (s *SaleService) Update(ctx context.Context, saleID uuid.UUID, req UpdateSaleRequest) (*SaleResponse, error) {
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.Quantity > sales.MaxItemQuantity {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Item quantity must be between 1 and 20")
		}
	}

	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	newItems := make([]sales.SaleItemInput, len(req.Items))
	for i, item := range req.Items {
		newItems[i] = sales.SaleItemInput{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		}
	}

	if err := sale.UpdateSaleDetails(req.CustomerID, req.CustomerName, req.BranchID, req.BranchName, newItems); err != nil {
		return nil, err
	}

	if err := s.saleRepo.Update(ctx, sale); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sale)

	response := ToSaleResponse(sale)
	return &response, nil
}

// Cancel cancels a sale
func (s *SaleService) Cancel(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if err := sale.Cancel(); err != nil {
		return nil, err
	}

	if err := s.saleRepo.Update(ctx, sale); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sale)

	response := ToSaleResponse(sale)
	return &response, nil
}

// CancelItem cancels a single line item of a sale
func (s *SaleService) CancelItem(ctx context.Context, saleID, itemID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if err := sale.CancelItem(itemID); err != nil {
		return nil, err
	}

	if err := s.saleRepo.Update(ctx, sale); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sale)

	response := ToSaleResponse(sale)
	return &response, nil
}

// publishEvents drains the aggregate's buffered events to the publisher.
// Publishing runs after the state is committed; a publish failure is
// logged and does not roll anything back.
func (s *SaleService) publishEvents(ctx context.Context, sale *sales.Sale) {
	events := sale.GetDomainEvents()
	if s.eventPublisher != nil {
		for _, event := range events {
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Warn("failed to publish domain event",
					zap.String("event_type", event.EventType()),
					zap.String("aggregate_id", event.AggregateID().String()),
					zap.Error(err),
				)
			}
		}
	}
	sale.ClearDomainEvents()
}
