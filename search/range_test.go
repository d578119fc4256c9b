package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRange_Normalization(t *testing.T) {
	tests := []struct {
		name         string
		min          int64
		minInclusive bool
		max          int64
		maxInclusive bool
		wantMin      int64
		wantMax      int64
		wantErr      bool
	}{
		{
			name: "both inclusive",
			min:  10, minInclusive: true, max: 20, maxInclusive: true,
			wantMin: 10, wantMax: 20,
		},
		{
			name: "exclusive max",
			min:  10, minInclusive: true, max: 20, maxInclusive: false,
			wantMin: 10, wantMax: 19,
		},
		{
			name: "exclusive min",
			min:  10, minInclusive: false, max: 20, maxInclusive: true,
			wantMin: 11, wantMax: 20,
		},
		{
			name: "both exclusive",
			min:  10, minInclusive: false, max: 20, maxInclusive: false,
			wantMin: 11, wantMax: 19,
		},
		{
			name: "single point",
			min:  5, minInclusive: true, max: 5, maxInclusive: true,
			wantMin: 5, wantMax: 5,
		},
		{
			name: "exclusive bounds collapse to single point",
			min:  4, minInclusive: false, max: 6, maxInclusive: false,
			wantMin: 5, wantMax: 5,
		},
		{
			name: "full domain",
			min:  math.MinInt64, minInclusive: true, max: math.MaxInt64, maxInclusive: true,
			wantMin: math.MinInt64, wantMax: math.MaxInt64,
		},
		{
			name: "exclusive min at upper domain edge",
			min:  math.MaxInt64, minInclusive: false, max: math.MaxInt64, maxInclusive: true,
			wantErr: true,
		},
		{
			name: "exclusive max at lower domain edge",
			min:  math.MinInt64, minInclusive: true, max: math.MinInt64, maxInclusive: false,
			wantErr: true,
		},
		{
			name: "inverted bounds",
			min:  20, minInclusive: true, max: 10, maxInclusive: true,
			wantErr: true,
		},
		{
			name: "adjacent exclusive bounds leave nothing",
			min:  5, minInclusive: false, max: 6, maxInclusive: false,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRange("test", tt.min, tt.minInclusive, tt.max, tt.maxInclusive)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrEmptyRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, r.Min)
			assert.Equal(t, tt.wantMax, r.Max)
			assert.Equal(t, "test", r.Label)
		})
	}
}

func TestRange_Contains(t *testing.T) {
	r, err := NewRange("price", 10, true, 20, false)
	require.NoError(t, err)

	assert.False(t, r.Contains(9))
	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(15))
	assert.True(t, r.Contains(19))
	assert.False(t, r.Contains(20))
}

func TestRange_Contains_DomainEdges(t *testing.T) {
	r, err := NewRange("all", math.MinInt64, true, math.MaxInt64, true)
	require.NoError(t, err)

	assert.True(t, r.Contains(math.MinInt64))
	assert.True(t, r.Contains(0))
	assert.True(t, r.Contains(math.MaxInt64))
}

func TestRange_String(t *testing.T) {
	r, err := NewRange("price", 10, true, 20, false)
	require.NoError(t, err)
	assert.Equal(t, "price:[10 TO 19]", r.String())

	r2, err := NewRange("", 0, true, 5, true)
	require.NoError(t, err)
	assert.Equal(t, "[0 TO 5]", r2.String())
}

func TestRange_KeyIdentity(t *testing.T) {
	a, err := NewRange("price", 10, true, 20, false)
	require.NoError(t, err)
	b, err := NewRange("price", 10, true, 19, true)
	require.NoError(t, err)

	// Normalization makes the two constructions the same range.
	assert.Equal(t, a, b)
	assert.Equal(t, a.Key(), b.Key())

	c, err := NewRange("cost", 10, true, 19, true)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestRangeQuery_KeyIdentity(t *testing.T) {
	rng, err := NewRange("price", 10, true, 20, false)
	require.NoError(t, err)

	build := func(r Range, field string, fast Query) string {
		return NewRangeQuery(r, NewFieldSource(field), fast).Key()
	}

	// Equal components yield interchangeable identities.
	assert.Equal(t,
		build(rng, "price", nil),
		build(rng, "price", nil))
	assert.Equal(t,
		build(rng, "price", NewTermQuery("color", "red")),
		build(rng, "price", NewTermQuery("color", "red")))

	// Any differing component breaks the identity.
	other, err := NewRange("price", 10, true, 21, false)
	require.NoError(t, err)
	relabeled, err := NewRange("cost", 10, true, 20, false)
	require.NoError(t, err)

	base := build(rng, "price", nil)
	assert.NotEqual(t, base, build(other, "price", nil))
	assert.NotEqual(t, base, build(relabeled, "price", nil))
	assert.NotEqual(t, base, build(rng, "cost", nil))
	assert.NotEqual(t, base, build(rng, "price", NewTermQuery("color", "red")))
	assert.NotEqual(t,
		build(rng, "price", NewTermQuery("color", "red")),
		build(rng, "price", NewTermQuery("color", "blue")))
}
