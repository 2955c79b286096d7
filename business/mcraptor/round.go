package mcraptor

import (
	"sort"

	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
)

// onboardLabel is a label riding a trip during a route scan. The fare
// accumulates segment by segment as the scan advances; trips was bumped
// once at boarding.
type onboardLabel struct {
	trip     int // trip arena index
	tripPos  int // position of the trip within the route's trip order
	board    int // boarding stop arena index
	boardSeq int // pattern position of the boarding stop
	fare     float64
	trips    int
}

// routeBoarding pairs a route with the earliest marked position along its
// pattern.
type routeBoarding struct {
	route    int
	boardSeq int
}

// round executes one complete round: route collection, route scans and
// one-hop transfer relaxation. prev is the previous round's bags, cur the
// current round's (already a copy of prev). It returns the stops whose bags
// improved.
func (m *McRaptor) round(prev, cur StopBags, marked map[int]struct{}) map[int]struct{} {
	newMarked := map[int]struct{}{}

	for _, rb := range m.collectRoutes(marked) {
		m.scanRoute(rb.route, rb.boardSeq, prev, cur, newMarked)
	}

	m.relaxTransfers(cur, newMarked)
	return newMarked
}

// collectRoutes forms the set of (route, boarding position) pairs for the
// scan phase: every route serving a marked stop, boarded at the earliest
// marked position along its pattern. Routes are returned in index order so
// rounds are deterministic.
func (m *McRaptor) collectRoutes(marked map[int]struct{}) []routeBoarding {
	best := map[int]int{}
	for stop := range marked {
		for _, ri := range m.tt.RoutesServing(stop) {
			seq := m.tt.Routes[ri].StopIndex(stop)
			if cur, present := best[ri]; !present || seq < cur {
				best[ri] = seq
			}
		}
	}
	result := make([]routeBoarding, 0, len(best))
	for ri, seq := range best {
		result = append(result, routeBoarding{route: ri, boardSeq: seq})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].route < result[j].route })
	return result
}

// scanRoute walks a route's pattern from the boarding position to the
// terminus, dropping off the on-board bag at each stop and picking up every
// previous-round label that can board a trip there.
func (m *McRaptor) scanRoute(ri, boardSeq int, prev, cur StopBags, newMarked map[int]struct{}) {
	route := &m.tt.Routes[ri]
	var onboard []onboardLabel

	for seq := boardSeq; seq < len(route.Pattern); seq++ {
		stop := route.Pattern[seq]

		// drop off: land every on-board label at this stop
		if len(onboard) > 0 {
			arrivals := make([]Label, 0, len(onboard))
			for i := range onboard {
				o := &onboard[i]
				st := m.tt.Trips[o.trip].StopTimeAt(seq)
				o.fare += st.Fare
				arrivals = append(arrivals, Label{
					Arrival: st.Arrival,
					Fare:    o.fare,
					Trips:   o.trips,
					Ref:     tripRef(o.trip, o.board, stop),
				})
			}
			var changed bool
			cur[stop], changed = merge(cur[stop], arrivals)
			if changed {
				newMarked[stop] = struct{}{}
			}
		}

		// pick up: board the earliest catchable trip for each label that
		// reached this stop by the previous round
		for _, l := range prev[stop] {
			pos, trip := m.earliestTrip(route, seq, l.Arrival)
			if trip < 0 {
				continue
			}
			onboard = mergeOnboard(onboard, onboardLabel{
				trip:     trip,
				tripPos:  pos,
				board:    stop,
				boardSeq: seq,
				fare:     l.Fare,
				trips:    l.Trips + 1,
			})
		}
	}
}

// earliestTrip finds the first trip of the route departing the pattern
// position seq at or after arrival. The FIFO property makes the departures
// at any position non-decreasing across the route's trip order, so a binary
// search suffices and the earliest catchable trip is optimal for every
// later stop.
func (m *McRaptor) earliestTrip(route *timetable.Route, seq, arrival int) (pos, trip int) {
	trips := route.Trips
	i := sort.Search(len(trips), func(i int) bool {
		return m.tt.Trips[trips[i]].DepartureAt(seq) >= arrival
	})
	if i == len(trips) {
		return -1, -1
	}
	return i, trips[i]
}

// mergeOnboard inserts a candidate into the on-board bag keeping it
// Pareto-minimal. Within one route the trip position orders arrivals at
// every later stop (FIFO), so (tripPos, fare, trips) are the on-board
// criteria.
func mergeOnboard(onboard []onboardLabel, candidate onboardLabel) []onboardLabel {
	for _, o := range onboard {
		if o.tripPos <= candidate.tripPos && o.fare <= candidate.fare+fareEpsilon && o.trips <= candidate.trips {
			return onboard
		}
	}
	kept := onboard[:0]
	for _, o := range onboard {
		if !(candidate.tripPos <= o.tripPos && candidate.fare <= o.fare+fareEpsilon && candidate.trips <= o.trips) {
			kept = append(kept, o)
		}
	}
	return append(kept, candidate)
}

// relaxTransfers runs the transfer phase over a snapshot of the stops the
// scan phase improved. Transfers move labels without boarding: arrival
// shifts by the layover, the trip count is unchanged. One hop only; a
// transferred label can be boarded in the next round, which is what the
// trip-count criterion must observe.
func (m *McRaptor) relaxTransfers(cur StopBags, newMarked map[int]struct{}) {
	snapshot := make([]int, 0, len(newMarked))
	for stop := range newMarked {
		snapshot = append(snapshot, stop)
	}
	sort.Ints(snapshot)

	// bag headers captured before any relaxation: labels arriving by
	// transfer during this phase must not transfer again
	sourceBags := make(map[int]Bag, len(snapshot))
	for _, stop := range snapshot {
		sourceBags[stop] = cur[stop]
	}

	for _, stop := range snapshot {
		for _, ti := range m.tt.TransfersFrom(stop) {
			transfer := m.tt.Transfers[ti]
			moved := make([]Label, 0, len(sourceBags[stop]))
			for _, l := range sourceBags[stop] {
				moved = append(moved, Label{
					Arrival: l.Arrival + transfer.Layover,
					Fare:    l.Fare,
					Trips:   l.Trips,
					Ref:     transferRef(stop, transfer.To),
				})
			}
			var changed bool
			cur[transfer.To], changed = merge(cur[transfer.To], moved)
			if changed {
				newMarked[transfer.To] = struct{}{}
			}
		}
	}
}
