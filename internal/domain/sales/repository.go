package sales

import (
	"context"

	"github.com/devstore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Pagination bounds for list queries
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery describes a filtered, ordered, paginated listing request.
// Filters hold the raw query keys minus the reserved pagination and
// ordering keys; the persistence layer compiles them against its field
// whitelists.
type ListQuery struct {
	Page     int
	PageSize int
	OrderBy  string
	Filters  map[string]string
}

// DefaultListQuery returns a query with default pagination and no filters
func DefaultListQuery() ListQuery {
	return ListQuery{
		Page:     1,
		PageSize: DefaultPageSize,
		Filters:  make(map[string]string),
	}
}

// Validate checks the pagination bounds.
// Out-of-range values are rejected rather than clamped.
func (q ListQuery) Validate() error {
	if q.Page < 1 {
		return shared.NewDomainError("VALIDATION_ERROR", "Page number must be at least 1")
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return shared.NewDomainError("VALIDATION_ERROR", "Page size must be between 1 and 100")
	}
	return nil
}

// Offset returns the number of rows to skip for the current page
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Repository defines the persistence contract for the sales context
type Repository interface {
	// FindByID retrieves a sale with its items, or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	// FindBySaleNumber retrieves a sale by its business key, or shared.ErrNotFound
	FindBySaleNumber(ctx context.Context, number string) (*Sale, error)
	// FindAll retrieves a filtered, ordered page of sales with items loaded
	FindAll(ctx context.Context, query ListQuery) ([]Sale, error)
	// Add persists a new sale with its items
	Add(ctx context.Context, sale *Sale) error
	// Update persists changes to an existing sale; shared.ErrNotFound if absent
	Update(ctx context.Context, sale *Sale) error
	// Count returns the number of sales matching the filters, ignoring pagination
	Count(ctx context.Context, filters map[string]string) (int64, error)
}
