package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/devstore/backend/internal/domain/sales"
	"github.com/devstore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements sales.Repository using GORM.
// Item rows are append-only: updates upsert item rows and never delete
// them, preserving the per-product history the aggregate builds up.
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by its ID with items loaded
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindBySaleNumber finds a sale by its business key with items loaded
func (r *GormSaleRepository) FindBySaleNumber(ctx context.Context, number string) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("sale_number = ?", number).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindAll finds sales matching the query with filtering, ordering and pagination
func (r *GormSaleRepository) FindAll(ctx context.Context, query sales.ListQuery) ([]sales.Sale, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	conditions, err := compileSaleFilters(query.Filters)
	if err != nil {
		return nil, err
	}

	tx := applySaleConditions(r.db.WithContext(ctx).Model(&sales.Sale{}), conditions)
	for _, order := range compileSaleOrder(query.OrderBy) {
		tx = tx.Order(order)
	}
	tx = tx.Offset(query.Offset()).Limit(query.PageSize).Preload("Items")

	var result []sales.Sale
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Add persists a new sale with its items
func (r *GormSaleRepository) Add(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(sale).Error; err != nil {
			return err
		}

		for i := range sale.Items {
			sale.Items[i].SaleID = sale.ID
			if err := tx.Create(&sale.Items[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Update persists changes to an existing sale.
// The sale row is updated in place; item rows are upserted and never
// deleted, so cancelled history rows survive every update cycle.
func (r *GormSaleRepository) Update(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale.UpdatedAt = time.Now()

		result := tx.Model(&sales.Sale{}).
			Where("id = ?", sale.ID).
			Updates(map[string]interface{}{
				"sale_date":     sale.SaleDate,
				"customer_id":   sale.CustomerID,
				"customer_name": sale.CustomerName,
				"branch_id":     sale.BranchID,
				"branch_name":   sale.BranchName,
				"total_amount":  sale.TotalAmount,
				"is_cancelled":  sale.IsCancelled,
				"cancelled_at":  sale.CancelledAt,
				"updated_at":    sale.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		for i := range sale.Items {
			sale.Items[i].SaleID = sale.ID
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).
				Create(&sale.Items[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Count counts sales matching the filters, ignoring pagination
func (r *GormSaleRepository) Count(ctx context.Context, filters map[string]string) (int64, error) {
	conditions, err := compileSaleFilters(filters)
	if err != nil {
		return 0, err
	}

	var count int64
	query := applySaleConditions(r.db.WithContext(ctx).Model(&sales.Sale{}), conditions)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormSaleRepository implements sales.Repository
var _ sales.Repository = (*GormSaleRepository)(nil)
