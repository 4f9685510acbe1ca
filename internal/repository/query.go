package repository

import (
	"net/url"
	"strconv"
	"strings"
)

// Operator is a list filter comparison
type Operator string

const (
	OperatorEq         Operator = "eq"
	OperatorNe         Operator = "ne"
	OperatorLt         Operator = "lt"
	OperatorLte        Operator = "lte"
	OperatorGt         Operator = "gt"
	OperatorGte        Operator = "gte"
	OperatorContains   Operator = "contains"
	OperatorStartsWith Operator = "startswith"
	OperatorIn         Operator = "in"
)

// crudOperators maps filter operators to their query-string form
var crudOperators = map[Operator]string{
	OperatorEq:         "$eq",
	OperatorNe:         "$ne",
	OperatorLt:         "$lt",
	OperatorLte:        "$lte",
	OperatorGt:         "$gt",
	OperatorGte:        "$gte",
	OperatorContains:   "$cont",
	OperatorStartsWith: "$starts",
	OperatorIn:         "$in",
}

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// Filter restricts a list to records whose field matches value
type Filter struct {
	Field    string
	Operator Operator
	Value    string
}

// Sorter orders a list by field
type Sorter struct {
	Field string
	Order SortOrder
}

// ListParams holds pagination, filter and sort parameters for a list call.
// A zero PageSize requests every record without pagination.
type ListParams struct {
	Page     int
	PageSize int
	Filters  []Filter
	Sorters  []Sorter
}

// Encode renders the parameters as a query string
func (p ListParams) Encode() string {
	values := url.Values{}

	if p.PageSize > 0 {
		page := p.Page
		if page < 1 {
			page = 1
		}
		values.Set("limit", strconv.Itoa(p.PageSize))
		values.Set("page", strconv.Itoa(page))
	}

	for _, f := range p.Filters {
		if f.Field == "" || strings.TrimSpace(f.Value) == "" {
			continue
		}
		op, ok := crudOperators[f.Operator]
		if !ok {
			op = crudOperators[OperatorEq]
		}
		values.Add("filter", f.Field+"||"+op+"||"+f.Value)
	}

	for _, s := range p.Sorters {
		if s.Field == "" {
			continue
		}
		order := s.Order
		if order != SortOrderAsc && order != SortOrderDesc {
			order = SortOrderAsc
		}
		values.Add("sort", s.Field+","+string(order))
	}

	return values.Encode()
}
