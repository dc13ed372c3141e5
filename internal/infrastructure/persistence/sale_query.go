package persistence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/devstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Filter key prefixes for range queries
const (
	rangeMinPrefix = "_min"
	rangeMaxPrefix = "_max"
)

// rangeValueKind selects the parser for a range filter value
type rangeValueKind int

const (
	rangeKindDecimal rangeValueKind = iota
	rangeKindDate
)

// rangeField maps a canonical range filter field to its column and parser
type rangeField struct {
	column string
	kind   rangeValueKind
}

// Whitelist tables for the sale list query. Lookups are case-insensitive;
// anything outside these tables is rejected before reaching SQL.
var (
	saleRangeFields = map[string]rangeField{
		"totalamount": {column: "total_amount", kind: rangeKindDecimal},
		"date":        {column: "sale_date", kind: rangeKindDate},
		"saledate":    {column: "sale_date", kind: rangeKindDate},
	}

	saleWildcardFields = map[string]string{
		"customername": "customer_name",
		"branchname":   "branch_name",
	}

	saleExactFields = map[string]string{
		"customername": "customer_name",
		"branchname":   "branch_name",
	}

	saleOrderFields = map[string]string{
		"date":         "sale_date",
		"saledate":     "sale_date",
		"amount":       "total_amount",
		"totalamount":  "total_amount",
		"customer":     "customer_name",
		"customername": "customer_name",
		"branch":       "branch_name",
		"branchname":   "branch_name",
		"number":       "sale_number",
		"salenumber":   "sale_number",
	}
)

// defaultSaleOrder is applied when no valid ordering clause is given
const defaultSaleOrder = "sale_date DESC"

// saleCondition is one compiled WHERE fragment with its arguments
type saleCondition struct {
	clause string
	args   []interface{}
}

// compileSaleFilters turns the raw filter map into WHERE conditions.
// Every key must fall into one of three classes, checked in order:
// range (_min/_max prefix), wildcard (value contains *), exact.
// Unknown keys, unknown range fields and unparsable values all fail hard
// with a validation error; filters are never silently skipped.
func compileSaleFilters(filters map[string]string) ([]saleCondition, error) {
	conditions := make([]saleCondition, 0, len(filters))

	for key, value := range filters {
		if value == "" {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Filter %q has an empty value", key))
		}

		cond, err := compileSaleFilter(key, value)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)
	}

	return conditions, nil
}

func compileSaleFilter(key, value string) (saleCondition, error) {
	lowered := strings.ToLower(key)

	// 1. Range keys
	if strings.HasPrefix(lowered, rangeMinPrefix) || strings.HasPrefix(lowered, rangeMaxPrefix) {
		return compileRangeFilter(key, lowered, value)
	}

	// 2. Wildcard keys
	if strings.Contains(value, "*") {
		return compileWildcardFilter(key, lowered, value)
	}

	// 3. Exact keys
	if lowered == "iscancelled" {
		cancelled, err := strconv.ParseBool(value)
		if err != nil {
			return saleCondition{}, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Filter %q requires a boolean value", key))
		}
		return saleCondition{clause: "is_cancelled = ?", args: []interface{}{cancelled}}, nil
	}
	if column, ok := saleExactFields[lowered]; ok {
		return saleCondition{clause: column + " = ?", args: []interface{}{value}}, nil
	}

	return saleCondition{}, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown filter field %q", key))
}

func compileRangeFilter(key, lowered, value string) (saleCondition, error) {
	operator := ">="
	field := strings.TrimPrefix(lowered, rangeMinPrefix)
	if strings.HasPrefix(lowered, rangeMaxPrefix) {
		operator = "<="
		field = strings.TrimPrefix(lowered, rangeMaxPrefix)
	}

	rf, ok := saleRangeFields[field]
	if !ok {
		return saleCondition{}, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown range filter field %q", key))
	}

	switch rf.kind {
	case rangeKindDecimal:
		amount, err := decimal.NewFromString(value)
		if err != nil {
			return saleCondition{}, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Filter %q requires a decimal value", key))
		}
		return saleCondition{clause: rf.column + " " + operator + " ?", args: []interface{}{amount}}, nil
	case rangeKindDate:
		parsed, err := parseFilterDate(value)
		if err != nil {
			return saleCondition{}, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Filter %q requires a date value", key))
		}
		return saleCondition{clause: rf.column + " " + operator + " ?", args: []interface{}{parsed}}, nil
	}

	return saleCondition{}, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown range filter field %q", key))
}

func compileWildcardFilter(key, lowered, value string) (saleCondition, error) {
	column, ok := saleWildcardFields[lowered]
	if !ok {
		return saleCondition{}, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Filter field %q does not support wildcards", key))
	}

	// Leading star means "ends with", trailing star means "starts with".
	// A leading star wins when both are present; any remaining stars are
	// stripped so they never reach the LIKE pattern as literals.
	term := strings.ReplaceAll(value, "*", "")
	switch {
	case strings.HasPrefix(value, "*"):
		return saleCondition{clause: column + " LIKE ?", args: []interface{}{"%" + term}}, nil
	case strings.HasSuffix(value, "*"):
		return saleCondition{clause: column + " LIKE ?", args: []interface{}{term + "%"}}, nil
	default:
		return saleCondition{}, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Filter %q wildcard must be leading or trailing", key))
	}
}

// parseFilterDate accepts RFC 3339 timestamps and plain dates
func parseFilterDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// compileSaleOrder parses the comma-separated ordering expression into
// ORDER BY clauses. Field names are matched case-insensitively against
// the alias table; clauses naming an unknown field are skipped rather
// than rejected, keeping the prior ordering. The result always contains
// at least the default ordering.
func compileSaleOrder(orderBy string) []string {
	clauses := make([]string, 0, 2)

	for _, raw := range strings.Split(orderBy, ",") {
		part := strings.TrimSpace(raw)
		if part == "" {
			continue
		}

		fields := strings.Fields(part)
		column, ok := saleOrderFields[strings.ToLower(fields[0])]
		if !ok {
			continue
		}

		direction := "ASC"
		if len(fields) > 1 && strings.EqualFold(fields[1], "desc") {
			direction = "DESC"
		}
		clauses = append(clauses, column+" "+direction)
	}

	if len(clauses) == 0 {
		return []string{defaultSaleOrder}
	}
	return clauses
}

// applySaleConditions adds the compiled WHERE fragments to a query
func applySaleConditions(query *gorm.DB, conditions []saleCondition) *gorm.DB {
	for _, cond := range conditions {
		query = query.Where(cond.clause, cond.args...)
	}
	return query
}
