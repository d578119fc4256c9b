package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// rangeExpr is a parsed range expression like price:[10 TO 20}.
// Square brackets include the bound, curly braces exclude it, and *
// leaves the side unbounded.
type rangeExpr struct {
	field    string
	min, max int64
	minIncl  bool
	maxIncl  bool
}

// parseRangeExpr parses field:[min TO max] syntax. Examples:
//
//	price:[10 TO 20]    10 <= price <= 20
//	price:[10 TO 20}    10 <= price < 20
//	price:{10 TO 20]    10 < price <= 20
//	price:[* TO 100]    price <= 100
//	price:[0 TO *]      price >= 0
//	price               unbounded (bare field name)
func parseRangeExpr(expr string) (rangeExpr, error) {
	out := rangeExpr{
		min:     math.MinInt64,
		minIncl: true,
		max:     math.MaxInt64,
		maxIncl: true,
	}

	field, bounds, found := strings.Cut(expr, ":")
	if field == "" {
		return out, fmt.Errorf("invalid range expression %q: missing field name", expr)
	}
	out.field = field
	if !found {
		return out, nil
	}

	if len(bounds) < 2 {
		return out, fmt.Errorf("invalid range expression %q: missing bounds", expr)
	}

	switch bounds[0] {
	case '[':
	case '{':
		out.minIncl = false
	default:
		return out, fmt.Errorf("invalid range expression %q: bounds must open with [ or {", expr)
	}
	switch bounds[len(bounds)-1] {
	case ']':
	case '}':
		out.maxIncl = false
	default:
		return out, fmt.Errorf("invalid range expression %q: bounds must close with ] or }", expr)
	}

	lo, hi, found := strings.Cut(bounds[1:len(bounds)-1], " TO ")
	if !found {
		return out, fmt.Errorf("invalid range expression %q: bounds must be separated by TO", expr)
	}

	var err error
	if lo = strings.TrimSpace(lo); lo != "*" {
		if out.min, err = strconv.ParseInt(lo, 10, 64); err != nil {
			return out, fmt.Errorf("invalid range expression %q: lower bound: %w", expr, err)
		}
	} else {
		out.minIncl = true
	}
	if hi = strings.TrimSpace(hi); hi != "*" {
		if out.max, err = strconv.ParseInt(hi, 10, 64); err != nil {
			return out, fmt.Errorf("invalid range expression %q: upper bound: %w", expr, err)
		}
	} else {
		out.maxIncl = true
	}

	return out, nil
}
