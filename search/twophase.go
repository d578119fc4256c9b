package search

// TwoPhase splits matching into a cheap candidate phase and an expensive
// confirmation phase. The approximation is a superset of the true matches;
// Matches decides whether the doc the approximation is currently positioned
// on really matches.
type TwoPhase interface {
	// Approximation returns the candidate iterator. Callers advance it and
	// call Matches on each candidate; a doc matches only when Matches
	// returns true.
	Approximation() DocIDIterator

	// Matches confirms the approximation's current doc. It must only be
	// called when the approximation is positioned on a real doc.
	Matches() (bool, error)

	// MatchCost estimates the per-doc cost of Matches. Higher values make
	// conjunctions verify this phase later.
	MatchCost() float64
}

type twoPhaseIterator struct {
	tp     TwoPhase
	approx DocIDIterator
}

// AsDocIDIterator folds a two-phase into a plain iterator that only stops
// on confirmed docs. The returned iterator is positioned on the first
// confirmed doc, so confirmation work for it happens here.
func AsDocIDIterator(tp TwoPhase) (DocIDIterator, error) {
	it := &twoPhaseIterator{tp: tp, approx: tp.Approximation()}
	if err := it.settle(); err != nil {
		return nil, err
	}
	return it, nil
}

// settle advances the approximation until it sits on a confirmed doc or
// runs out.
func (it *twoPhaseIterator) settle() error {
	for it.approx.Doc() != NoMoreDocs {
		ok, err := it.tp.Matches()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if _, err := it.approx.Next(); err != nil {
			return err
		}
	}
	return nil
}

func (it *twoPhaseIterator) Doc() uint32 { return it.approx.Doc() }

func (it *twoPhaseIterator) Next() (uint32, error) {
	if _, err := it.approx.Next(); err != nil {
		return NoMoreDocs, err
	}
	if err := it.settle(); err != nil {
		return NoMoreDocs, err
	}
	return it.approx.Doc(), nil
}

func (it *twoPhaseIterator) Advance(target uint32) (uint32, error) {
	if it.approx.Doc() == NoMoreDocs || target <= it.approx.Doc() {
		return it.approx.Doc(), nil
	}
	if _, err := it.approx.Advance(target); err != nil {
		return NoMoreDocs, err
	}
	if err := it.settle(); err != nil {
		return NoMoreDocs, err
	}
	return it.approx.Doc(), nil
}

func (it *twoPhaseIterator) Cost() int64 { return it.approx.Cost() }
