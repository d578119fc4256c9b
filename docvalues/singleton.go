package docvalues

// Singleton adapts a single-valued cursor to the multi-valued interface.
// Matched documents report a count of exactly one.
func Singleton(v Values) MultiValues { return &singletonCursor{v: v} }

type singletonCursor struct {
	v     Values
	read  bool
	valid bool
}

func (c *singletonCursor) AdvanceExact(docID uint32) (bool, error) {
	ok, err := c.v.AdvanceExact(docID)
	c.valid = ok && err == nil
	c.read = false
	return ok, err
}

func (c *singletonCursor) Count() int {
	if !c.valid {
		return 0
	}
	return 1
}

func (c *singletonCursor) Next() (int64, error) {
	if !c.valid || c.read {
		return 0, ErrNoValue
	}
	c.read = true
	return c.v.Value()
}
