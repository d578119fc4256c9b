package search

import (
	"errors"

	"github.com/hupe1980/rangego/docvalues"
	"github.com/hupe1980/rangego/segment"
)

// ValuesSource resolves a per-segment stream of single-valued numerics.
// Implementations must be immutable; two sources with equal keys must
// produce equal streams.
type ValuesSource interface {
	// Key returns a stable identity for caching and query planning.
	Key() string

	// Values returns the stream for one segment. A segment that does not
	// carry the underlying data yields an empty stream, not an error.
	Values(seg *segment.Reader) (docvalues.Values, error)

	// Cacheable reports whether per-segment results derived from this
	// source may be cached.
	Cacheable(seg *segment.Reader) bool
}

// MultiValuesSource resolves a per-segment stream of multi-valued
// numerics.
type MultiValuesSource interface {
	Key() string
	Values(seg *segment.Reader) (docvalues.MultiValues, error)
	Cacheable(seg *segment.Reader) bool

	// Singleton returns the single-valued source this one wraps when the
	// stream is known to hold at most one value per doc, else nil.
	// Callers use it to route to the cheaper single-valued code path.
	Singleton() ValuesSource
}

// FieldSource reads a single-valued numeric column.
type FieldSource struct {
	field string
}

// NewFieldSource returns a source over the single-valued column named
// field. Resolving it against a segment whose column is multi-valued
// fails with ErrFieldShape.
func NewFieldSource(field string) *FieldSource {
	return &FieldSource{field: field}
}

func (s *FieldSource) Key() string { return "field(" + s.field + ")" }

func (s *FieldSource) Values(seg *segment.Reader) (docvalues.Values, error) {
	vals, err := seg.NumericValues(s.field)
	if err != nil {
		var unknown *segment.ErrUnknownField
		if errors.As(err, &unknown) {
			return docvalues.Empty(), nil
		}
		return nil, err
	}
	return vals, nil
}

func (s *FieldSource) Cacheable(*segment.Reader) bool { return true }

// FieldMultiSource reads a numeric column that may hold several values
// per doc. Single-valued columns are served through a one-value cursor.
type FieldMultiSource struct {
	field string
}

// NewFieldMultiSource returns a source over the column named field.
func NewFieldMultiSource(field string) *FieldMultiSource {
	return &FieldMultiSource{field: field}
}

func (s *FieldMultiSource) Key() string { return "multifield(" + s.field + ")" }

func (s *FieldMultiSource) Values(seg *segment.Reader) (docvalues.MultiValues, error) {
	vals, err := seg.SortedNumericValues(s.field)
	if err != nil {
		var unknown *segment.ErrUnknownField
		if errors.As(err, &unknown) {
			return docvalues.EmptyMulti(), nil
		}
		return nil, err
	}
	return vals, nil
}

func (s *FieldMultiSource) Cacheable(*segment.Reader) bool { return true }

// Singleton returns nil: whether the column is single-valued is only known
// per segment, so the multi-valued path has to stand.
func (s *FieldMultiSource) Singleton() ValuesSource { return nil }

// singletonSource adapts a single-valued source to the multi-valued
// interface.
type singletonSource struct {
	single ValuesSource
}

// FromSingleValued views a single-valued source as multi-valued. The
// result reports its origin through Singleton, so range queries built on
// it fall back to the single-valued matcher.
func FromSingleValued(src ValuesSource) MultiValuesSource {
	return &singletonSource{single: src}
}

func (s *singletonSource) Key() string { return "singleton(" + s.single.Key() + ")" }

func (s *singletonSource) Values(seg *segment.Reader) (docvalues.MultiValues, error) {
	vals, err := s.single.Values(seg)
	if err != nil {
		return nil, err
	}
	return docvalues.Singleton(vals), nil
}

func (s *singletonSource) Cacheable(seg *segment.Reader) bool { return s.single.Cacheable(seg) }

func (s *singletonSource) Singleton() ValuesSource { return s.single }
