// Package mcraptor implements the multi-criteria round-based journey search
// over an immutable timetable: the label and bag algebra, the per-round
// route scan and transfer relaxation, backward journey reconstruction, and
// the range-query driver that reuses one search's results to seed the next.
package mcraptor

import "math"

// fareEpsilon bounds the float drift between a fare accumulated stop by
// stop during the scan and the same fare recomputed as a segment sum during
// reconstruction.
const fareEpsilon = 1e-6

// RefKind discriminates the variants of a label's backpointer.
type RefKind int

const (
	// RefOrigin marks a label planted at an origin stop at departure time.
	RefOrigin RefKind = iota
	// RefTrip marks a label produced by riding a trip segment.
	RefTrip
	// RefTransfer marks a label produced by an intra-station transfer.
	RefTransfer
)

// Ref is the tagged backpointer recording how a label's stop was reached.
// Exactly the fields of the active variant are meaningful.
type Ref struct {
	Kind RefKind

	// RefTrip: trip arena index, boarding and alighting stop arena indexes.
	Trip   int
	Board  int
	Alight int

	// RefTransfer: stop arena indexes of the transfer endpoints.
	From int
	To   int

	// RefOrigin: the origin stop.
	Origin int
}

func originRef(stop int) Ref {
	return Ref{Kind: RefOrigin, Origin: stop}
}

func tripRef(trip, board, alight int) Ref {
	return Ref{Kind: RefTrip, Trip: trip, Board: board, Alight: alight}
}

func transferRef(from, to int) Ref {
	return Ref{Kind: RefTransfer, From: from, To: to}
}

// Label records one non-dominated way to be at a stop: arrival time, fare
// paid, vehicles boarded, and the backpointer for reconstruction.
type Label struct {
	Arrival int
	Fare    float64
	Trips   int
	Ref     Ref
}

// dominates reports componentwise dominance: no criterion worse and at
// least one strictly better. The backpointer is not a criterion.
func (l Label) dominates(o Label) bool {
	if l.Arrival > o.Arrival || l.Fare > o.Fare+fareEpsilon || l.Trips > o.Trips {
		return false
	}
	return l.Arrival < o.Arrival || l.Fare < o.Fare-fareEpsilon || l.Trips < o.Trips
}

// sameCriteria reports equality on all three criteria.
func (l Label) sameCriteria(o Label) bool {
	return l.Arrival == o.Arrival && l.Trips == o.Trips && math.Abs(l.Fare-o.Fare) <= fareEpsilon
}
