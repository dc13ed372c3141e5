package sales

import (
	"context"
	"fmt"

	"github.com/devstore/backend/internal/domain/sales"
	"github.com/devstore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SaleAuditHandler writes a structured audit log entry for every sale
// lifecycle event flowing through the bus
type SaleAuditHandler struct {
	logger *zap.Logger
}

// NewSaleAuditHandler creates a new audit handler for sale events
func NewSaleAuditHandler(logger *zap.Logger) *SaleAuditHandler {
	return &SaleAuditHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *SaleAuditHandler) EventTypes() []string {
	return []string{
		sales.EventTypeSaleCreated,
		sales.EventTypeSaleModified,
		sales.EventTypeSaleCancelled,
		sales.EventTypeSaleItemCancelled,
	}
}

// Handle records the event with its sale identity and amounts
func (h *SaleAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch evt := event.(type) {
	case *sales.SaleCreatedEvent:
		fields = append(fields,
			zap.String("sale_number", evt.SaleNumber),
			zap.String("customer_name", evt.CustomerName),
			zap.String("branch_name", evt.BranchName),
		)
	case *sales.SaleModifiedEvent:
		fields = append(fields,
			zap.String("sale_number", evt.SaleNumber),
			zap.String("total_amount", evt.TotalAmount.String()),
			zap.Int("item_count", len(evt.Items)),
		)
	case *sales.SaleCancelledEvent:
		fields = append(fields,
			zap.String("sale_number", evt.SaleNumber),
			zap.Time("cancelled_at", evt.CancelledAt),
		)
	case *sales.SaleItemCancelledEvent:
		fields = append(fields,
			zap.String("sale_number", evt.SaleNumber),
			zap.String("product_name", evt.Item.ProductName),
			zap.String("total_amount", evt.TotalAmount.String()),
		)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	h.logger.Info("sale event", append(fields, zap.String("event_type", event.EventType()))...)
	return nil
}

// Ensure SaleAuditHandler implements shared.EventHandler
var _ shared.EventHandler = (*SaleAuditHandler)(nil)
