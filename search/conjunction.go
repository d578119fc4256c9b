package search

import (
	"errors"
	"sort"
)

// NewConjunction intersects several iterators, confirming candidates
// through the given two-phases. Iterators drive document-at-a-time:
// the cheapest one leads, the others follow by advancing. Two-phases are
// checked cheapest first and must belong to approximations included in
// its, so they are positioned on the candidate when Matches runs.
func NewConjunction(its []DocIDIterator, twoPhases []TwoPhase) (DocIDIterator, error) {
	if len(its) == 0 {
		return nil, errors.New("conjunction needs at least one iterator")
	}
	if len(its) == 1 && len(twoPhases) == 0 {
		return its[0], nil
	}

	sorted := make([]DocIDIterator, len(its))
	copy(sorted, its)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Cost() < sorted[j].Cost() })

	tps := make([]TwoPhase, len(twoPhases))
	copy(tps, twoPhases)
	sort.SliceStable(tps, func(i, j int) bool { return tps[i].MatchCost() < tps[j].MatchCost() })

	c := &conjunctionIterator{lead: sorted[0], others: sorted[1:], twoPhases: tps}
	if err := c.align(); err != nil {
		return nil, err
	}
	return c, nil
}

type conjunctionIterator struct {
	lead      DocIDIterator
	others    []DocIDIterator
	twoPhases []TwoPhase
}

// align walks the lead forward until all iterators agree on a doc that
// every two-phase confirms.
func (c *conjunctionIterator) align() error {
	doc := c.lead.Doc()

next:
	for doc != NoMoreDocs {
		for _, it := range c.others {
			d, err := it.Advance(doc)
			if err != nil {
				return err
			}
			if d != doc {
				// Overshoot: restart the round from the follower's doc.
				doc, err = c.lead.Advance(d)
				if err != nil {
					return err
				}
				continue next
			}
		}

		for _, tp := range c.twoPhases {
			ok, err := tp.Matches()
			if err != nil {
				return err
			}
			if !ok {
				var err error
				doc, err = c.lead.Next()
				if err != nil {
					return err
				}
				continue next
			}
		}

		return nil
	}
	return nil
}

func (c *conjunctionIterator) Doc() uint32 { return c.lead.Doc() }

func (c *conjunctionIterator) Next() (uint32, error) {
	if _, err := c.lead.Next(); err != nil {
		return NoMoreDocs, err
	}
	if err := c.align(); err != nil {
		return NoMoreDocs, err
	}
	return c.lead.Doc(), nil
}

func (c *conjunctionIterator) Advance(target uint32) (uint32, error) {
	if c.lead.Doc() == NoMoreDocs || target <= c.lead.Doc() {
		return c.lead.Doc(), nil
	}
	if _, err := c.lead.Advance(target); err != nil {
		return NoMoreDocs, err
	}
	if err := c.align(); err != nil {
		return NoMoreDocs, err
	}
	return c.lead.Doc(), nil
}

func (c *conjunctionIterator) Cost() int64 { return c.lead.Cost() }
