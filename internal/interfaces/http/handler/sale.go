package handler

import (
	"fmt"
	"strconv"

	salesapp "github.com/devstore/backend/internal/application/sales"
	"github.com/devstore/backend/internal/domain/sales"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Reserved list query parameters; everything else is treated as a filter
const (
	pageParam  = "_page"
	sizeParam  = "_size"
	orderParam = "_order"
)

// SaleHandler handles sale-related API endpoints
type SaleHandler struct {
	BaseHandler
	saleService *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// Create godoc
// @Summary      Create a new sale
// @Description  Create a new sale with its line items
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body sales.CreateSaleRequest true "Sale creation request"
// @Success      201 {object} dto.Response{data=sales.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	var req salesapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.saleService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, sale)
}

// GetByID godoc
// @Summary      Get sale by ID
// @Description  Retrieve a sale by its ID
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=sales.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sale)
}

// GetBySaleNumber godoc
// @Summary      Get sale by sale number
// @Description  Retrieve a sale by its business key
// @Tags         sales
// @Produce      json
// @Param        sale_number path string true "Sale Number" example:"SALE-20260115-4F2A9C1B"
// @Success      200 {object} dto.Response{data=sales.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/number/{sale_number} [get]
func (h *SaleHandler) GetBySaleNumber(c *gin.Context) {
	saleNumber := c.Param("sale_number")
	if saleNumber == "" {
		h.BadRequest(c, "Sale number is required")
		return
	}

	sale, err := h.saleService.GetBySaleNumber(c.Request.Context(), saleNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sale)
}

// List godoc
// @Summary      List sales
// @Description  Retrieve a paginated list of sales. Query parameters other than _page, _size and _order are treated as filters: exact matches (customerName, branchName, isCancelled), wildcard matches with * (customerName=John*), and ranges with _min/_max prefixes (_minTotalAmount, _maxDate).
// @Tags         sales
// @Produce      json
// @Param        _page query int false "Page number" default(1)
// @Param        _size query int false "Page size" default(10) maximum(100)
// @Param        _order query string false "Order clauses, e.g. saleDate desc, amount"
// @Param        customerName query string false "Customer name (exact or wildcard)"
// @Param        branchName query string false "Branch name (exact or wildcard)"
// @Param        isCancelled query bool false "Cancellation flag"
// @Param        _minTotalAmount query number false "Minimum total amount"
// @Param        _maxTotalAmount query number false "Maximum total amount"
// @Param        _minDate query string false "Earliest sale date" format(date)
// @Param        _maxDate query string false "Latest sale date" format(date)
// @Success      200 {object} dto.Response{data=[]sales.SaleResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	query, err := parseListQuery(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, total, err := h.saleService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result, total, query.Page, query.PageSize)
}

// Update godoc
// @Summary      Update a sale
// @Description  Replace the sale header and item set. Items absent from the request are cancelled; items present are replaced with fresh rows.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body sales.UpdateSaleRequest true "Sale update request"
// @Success      200 {object} dto.Response{data=sales.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id} [put]
func (h *SaleHandler) Update(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	var req salesapp.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.saleService.Update(c.Request.Context(), saleID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sale)
}

// Cancel godoc
// @Summary      Cancel a sale
// @Description  Cancel a sale, zeroing its total. Cancellation is a soft delete; the record stays queryable.
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=sales.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id} [delete]
func (h *SaleHandler) Cancel(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.Cancel(c.Request.Context(), saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sale)
}

// CancelItem godoc
// @Summary      Cancel a sale item
// @Description  Cancel a single line item and recompute the sale total
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        item_id path string true "Sale Item ID" format(uuid)
// @Success      200 {object} dto.Response{data=sales.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/items/{item_id} [delete]
func (h *SaleHandler) CancelItem(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	sale, err := h.saleService.CancelItem(c.Request.Context(), saleID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sale)
}

// parseListQuery builds a domain list query from the request query string.
// _page, _size and _order are reserved; every other parameter is a filter.
func parseListQuery(c *gin.Context) (sales.ListQuery, error) {
	query := sales.DefaultListQuery()

	if raw := c.Query(pageParam); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return query, fmt.Errorf("invalid %s value %q", pageParam, raw)
		}
		query.Page = page
	}

	if raw := c.Query(sizeParam); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return query, fmt.Errorf("invalid %s value %q", sizeParam, raw)
		}
		query.PageSize = size
	}

	query.OrderBy = c.Query(orderParam)

	for key, values := range c.Request.URL.Query() {
		if key == pageParam || key == sizeParam || key == orderParam {
			continue
		}
		if len(values) == 0 {
			continue
		}
		if query.Filters == nil {
			query.Filters = make(map[string]string)
		}
		query.Filters[key] = values[0]
	}

	return query, nil
}
