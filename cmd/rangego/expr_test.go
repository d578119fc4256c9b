package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeExpr(t *testing.T) {
	tests := []struct {
		expr string
		want rangeExpr
	}{
		{
			expr: "price:[10 TO 20]",
			want: rangeExpr{field: "price", min: 10, minIncl: true, max: 20, maxIncl: true},
		},
		{
			expr: "price:[10 TO 20}",
			want: rangeExpr{field: "price", min: 10, minIncl: true, max: 20, maxIncl: false},
		},
		{
			expr: "price:{10 TO 20]",
			want: rangeExpr{field: "price", min: 10, minIncl: false, max: 20, maxIncl: true},
		},
		{
			expr: "price:{-5 TO 5}",
			want: rangeExpr{field: "price", min: -5, minIncl: false, max: 5, maxIncl: false},
		},
		{
			expr: "price:[* TO 100]",
			want: rangeExpr{field: "price", min: math.MinInt64, minIncl: true, max: 100, maxIncl: true},
		},
		{
			expr: "price:[0 TO *]",
			want: rangeExpr{field: "price", min: 0, minIncl: true, max: math.MaxInt64, maxIncl: true},
		},
		{
			// Exclusive braces around * collapse to unbounded inclusive.
			expr: "price:{* TO *}",
			want: rangeExpr{field: "price", min: math.MinInt64, minIncl: true, max: math.MaxInt64, maxIncl: true},
		},
		{
			expr: "price",
			want: rangeExpr{field: "price", min: math.MinInt64, minIncl: true, max: math.MaxInt64, maxIncl: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := parseRangeExpr(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRangeExprErrors(t *testing.T) {
	exprs := []string{
		"",
		":[10 TO 20]",
		"price:",
		"price:10 TO 20",
		"price:[10 TO 20",
		"price:[10 20]",
		"price:[ten TO 20]",
		"price:[10 TO twenty]",
		"price:[10 to 20]",
	}

	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			_, err := parseRangeExpr(expr)
			assert.Error(t, err)
		})
	}
}
