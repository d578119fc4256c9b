package docvalues

// Empty returns a Values cursor that reports no document as having a value.
// It is used when a field has no single-valued column in a segment.
func Empty() Values { return emptyColumn{} }

// EmptyMulti returns a MultiValues cursor that reports no document as having
// values.
func EmptyMulti() MultiValues { return emptyColumn{} }

type emptyColumn struct{}

func (emptyColumn) AdvanceExact(uint32) (bool, error) { return false, nil }
func (emptyColumn) Value() (int64, error)             { return 0, ErrNoValue }
func (emptyColumn) Count() int                        { return 0 }
func (emptyColumn) Next() (int64, error)              { return 0, ErrNoValue }
