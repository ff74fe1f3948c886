// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/reportkit/internal/models"
)

// eventColumns are properties stored as real columns rather than inside
// the properties JSON.
var eventColumns = map[string]string{
	"name":       "name",
	"profile_id": "profile_id",
	"session_id": "session_id",
}

var propertyNameRe = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.\-]*$`)

// PropertyExpr returns the SQL expression reading property name and its
// bind arguments. JSON properties are read as strings.
func PropertyExpr(name string) (string, []interface{}, error) {
	name = strings.TrimPrefix(name, "properties.")
	if col, ok := eventColumns[name]; ok {
		return col, nil, nil
	}
	if !propertyNameRe.MatchString(name) {
		return "", nil, fmt.Errorf("%w: property name %q", ErrInvalidPayload, name)
	}
	return "json_extract_string(properties, ?)", []interface{}{"$." + name}, nil
}

// needsJSON reports whether reading name requires the json extension.
func needsJSON(name string) bool {
	_, ok := eventColumns[strings.TrimPrefix(name, "properties.")]
	return !ok
}

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := NewWhereBuilder()
//	wb.AddTimeRange(start, end)
//	wb.AddClause("name = ?", "signup")
//	whereClause, args := wb.Build()
//	// created_at >= ? AND created_at < ? AND name = ?
type WhereBuilder struct {
	clauses []string
	args    []interface{}
	err     error
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddTimeRange restricts created_at to [start, end).
func (wb *WhereBuilder) AddTimeRange(start, end time.Time) *WhereBuilder {
	return wb.AddClause("created_at >= ? AND created_at < ?", start.UTC(), end.UTC())
}

// AddIn adds "expr IN (?, ...)". An empty list is skipped.
func (wb *WhereBuilder) AddIn(expr string, exprArgs []interface{}, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", expr, placeholders(len(values))))
	wb.args = append(wb.args, exprArgs...)
	for _, v := range values {
		wb.args = append(wb.args, v)
	}
	return wb
}

// AddNotIn adds "expr NOT IN (?, ...)". An empty list is skipped.
func (wb *WhereBuilder) AddNotIn(expr string, exprArgs []interface{}, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s NOT IN (%s)", expr, placeholders(len(values))))
	wb.args = append(wb.args, exprArgs...)
	for _, v := range values {
		wb.args = append(wb.args, v)
	}
	return wb
}

// AddFilter adds a property filter. Filters without a value are skipped,
// except for the null checks. The first error sticks and is returned by Build.
func (wb *WhereBuilder) AddFilter(f models.Filter) *WhereBuilder {
	if wb.err != nil || f.Name == "" {
		return wb
	}
	expr, exprArgs, err := PropertyExpr(f.Name)
	if err != nil {
		wb.err = err
		return wb
	}

	anyOf := func(tmpl string, negate bool) {
		if len(f.Value) == 0 {
			return
		}
		parts := make([]string, len(f.Value))
		args := make([]interface{}, 0, len(f.Value)*(len(exprArgs)+1))
		for i, v := range f.Value {
			parts[i] = fmt.Sprintf(tmpl, expr)
			args = append(args, exprArgs...)
			args = append(args, v)
		}
		clause := "(" + strings.Join(parts, " OR ") + ")"
		if negate {
			clause = fmt.Sprintf("(%s IS NULL OR NOT %s)", expr, clause)
			args = append(append([]interface{}{}, exprArgs...), args...)
		}
		wb.AddClause(clause, args...)
	}

	switch f.Operator {
	case models.OperatorIs, "":
		wb.AddIn(expr, exprArgs, f.Value)
	case models.OperatorIsNot:
		if len(f.Value) > 0 {
			wb.clauses = append(wb.clauses, fmt.Sprintf("(%s IS NULL OR %s NOT IN (%s))", expr, expr, placeholders(len(f.Value))))
			wb.args = append(wb.args, exprArgs...)
			wb.args = append(wb.args, exprArgs...)
			for _, v := range f.Value {
				wb.args = append(wb.args, v)
			}
		}
	case models.OperatorContains:
		anyOf("contains(lower(%s), lower(?))", false)
	case models.OperatorDoesNotContain:
		anyOf("contains(lower(%s), lower(?))", true)
	case models.OperatorStartsWith:
		anyOf("starts_with(%s, ?)", false)
	case models.OperatorEndsWith:
		anyOf("suffix(%s, ?)", false)
	case models.OperatorRegex:
		anyOf("regexp_matches(%s, ?)", false)
	case models.OperatorIsNull:
		wb.AddClause(expr+" IS NULL", exprArgs...)
	case models.OperatorIsNotNull:
		wb.AddClause(expr+" IS NOT NULL", exprArgs...)
	case models.OperatorGT, models.OperatorLT, models.OperatorGTE, models.OperatorLTE:
		if len(f.Value) == 0 {
			return wb
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(f.Value[0]), 64)
		if err != nil {
			wb.err = fmt.Errorf("%w: filter %s needs a number, got %q", ErrInvalidPayload, f.Name, f.Value[0])
			return wb
		}
		op := map[models.Operator]string{
			models.OperatorGT: ">", models.OperatorLT: "<",
			models.OperatorGTE: ">=", models.OperatorLTE: "<=",
		}[f.Operator]
		wb.AddClause(fmt.Sprintf("TRY_CAST(%s AS DOUBLE) %s ?", expr, op), append(append([]interface{}{}, exprArgs...), n)...)
	default:
		wb.err = fmt.Errorf("%w: unknown filter operator %q", ErrInvalidPayload, f.Operator)
	}
	return wb
}

// AddFilters adds every filter in order.
func (wb *WhereBuilder) AddFilters(filters []models.Filter) *WhereBuilder {
	for _, f := range filters {
		wb.AddFilter(f)
	}
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}, error) {
	if wb.err != nil {
		return "", nil, wb.err
	}
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}, nil
	}
	return strings.Join(wb.clauses, " AND "), wb.args, nil
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "?"
	}
	return strings.Join(ph, ", ")
}

// breakdownSelect returns one "COALESCE(expr, '') AS bdN" column per
// breakdown with its arguments.
func breakdownSelect(breakdowns []models.Breakdown) ([]string, []interface{}, error) {
	cols := make([]string, 0, len(breakdowns))
	var args []interface{}
	for i, b := range breakdowns {
		expr, exprArgs, err := PropertyExpr(b.Name)
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, fmt.Sprintf("COALESCE(%s, '') AS bd%d", expr, i))
		args = append(args, exprArgs...)
	}
	return cols, args, nil
}
