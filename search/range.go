package search

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyRange is returned when a range cannot match any value, either
// because an exclusive bound falls off the int64 domain or because the
// normalized minimum exceeds the normalized maximum.
var ErrEmptyRange = errors.New("range matches no values")

// Range is a closed interval over int64 values. Both bounds are inclusive
// after construction; exclusive bounds are normalized away by NewRange.
// The zero value is the single-point range [0, 0].
type Range struct {
	// Label identifies the range in results and query strings.
	Label string

	// Min is the inclusive lower bound.
	Min int64

	// Max is the inclusive upper bound.
	Max int64
}

// NewRange builds a range from possibly exclusive bounds. An exclusive
// minimum is tightened to min+1 and an exclusive maximum to max-1. The
// range must keep at least one matching value, otherwise ErrEmptyRange
// is returned.
func NewRange(label string, min int64, minInclusive bool, max int64, maxInclusive bool) (Range, error) {
	if !minInclusive {
		if min == math.MaxInt64 {
			return Range{}, fmt.Errorf("range %q: %w", label, ErrEmptyRange)
		}
		min++
	}

	if !maxInclusive {
		if max == math.MinInt64 {
			return Range{}, fmt.Errorf("range %q: %w", label, ErrEmptyRange)
		}
		max--
	}

	if min > max {
		return Range{}, fmt.Errorf("range %q: %w", label, ErrEmptyRange)
	}

	return Range{Label: label, Min: min, Max: max}, nil
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v int64) bool {
	return r.Min <= v && v <= r.Max
}

// Key returns a stable identity over label and bounds. Ranges are plain
// comparable values, so == works too; Key exists for string-keyed maps
// and caches.
func (r Range) Key() string {
	return fmt.Sprintf("%q:[%d TO %d]", r.Label, r.Min, r.Max)
}

func (r Range) String() string {
	if r.Label == "" {
		return fmt.Sprintf("[%d TO %d]", r.Min, r.Max)
	}
	return fmt.Sprintf("%s:[%d TO %d]", r.Label, r.Min, r.Max)
}
