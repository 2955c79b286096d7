package mcraptor

// Bag is a Pareto-minimal set of labels at one (round, stop) pair: no label
// in a bag dominates another.
type Bag []Label

// StopBags holds one bag per stop, indexed by stop arena index. A round's
// bags start as a shallow copy of the previous round's; merge never mutates
// a shared backing array, so labels behave as values across rounds.
type StopBags []Bag

// merge returns the Pareto-minimal union of bag and incoming, and whether
// any incoming label survived into the result. A label identical on all
// criteria to an existing one does not count as a change.
func merge(bag Bag, incoming []Label) (Bag, bool) {
	result := bag
	changed := false
	for _, l := range incoming {
		beaten := false
		for _, e := range result {
			if e.dominates(l) || e.sameCriteria(l) {
				beaten = true
				break
			}
		}
		if beaten {
			continue
		}
		next := make(Bag, 0, len(result)+1)
		for _, e := range result {
			if !l.dominates(e) {
				next = append(next, e)
			}
		}
		result = append(next, l)
		changed = true
	}
	return result, changed
}

// shallowCopy clones the per-stop bag headers without cloning labels,
// matching the value semantics the round loop relies on.
func (b StopBags) shallowCopy() StopBags {
	next := make(StopBags, len(b))
	copy(next, b)
	return next
}
