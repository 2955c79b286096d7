// Package timetable provides the immutable transit timetable the journey
// planner searches over, and the builder that assembles and validates it.
package timetable

import (
	"errors"
	"fmt"
)

// ErrCorrupt indicates the timetable violates a structural invariant and is
// unusable. Fatal at load time.
var ErrCorrupt = errors.New("timetable corrupt")

// ErrNotFound indicates a persisted timetable is absent.
var ErrNotFound = errors.New("timetable not found")

// StopTimeRef locates one TripStopTime inside the timetable's trip arena.
type StopTimeRef struct {
	Trip int
	Seq  int
}

// Timetable owns flat arrays of stations, stops, trips, routes and transfers.
// All cross-references between entities are integer indexes into these
// arrays, so the structure has no pointer cycles and is safe to share
// read-only across goroutines.
type Timetable struct {
	Stations  []Station
	Stops     []Stop
	Trips     []Trip
	Routes    []Route
	Transfers []Transfer

	// TransferCost is the intra-station layover in seconds used when the
	// transfers were generated.
	TransferCost int

	stationIndex    map[string]int
	stopIndex       map[string]int
	routesByStop    [][]int
	transfersByStop [][]int
	stopTimesByStop [][]StopTimeRef
}

// buildIndexes populates the derived lookup structures. Called by the
// builder and after reading a persisted timetable.
func (t *Timetable) buildIndexes() {
	t.stationIndex = make(map[string]int, len(t.Stations))
	for i, station := range t.Stations {
		t.stationIndex[station.ID] = i
	}
	t.stopIndex = make(map[string]int, len(t.Stops))
	for i, stop := range t.Stops {
		t.stopIndex[stop.ID] = i
	}

	t.routesByStop = make([][]int, len(t.Stops))
	for ri := range t.Routes {
		route := &t.Routes[ri]
		route.patternIndex = make(map[int]int, len(route.Pattern))
		for pi, stop := range route.Pattern {
			route.patternIndex[stop] = pi
			t.routesByStop[stop] = append(t.routesByStop[stop], ri)
		}
	}

	t.transfersByStop = make([][]int, len(t.Stops))
	for i, transfer := range t.Transfers {
		t.transfersByStop[transfer.From] = append(t.transfersByStop[transfer.From], i)
	}

	t.stopTimesByStop = make([][]StopTimeRef, len(t.Stops))
	for ti := range t.Trips {
		for seq, st := range t.Trips[ti].StopTimes {
			t.stopTimesByStop[st.Stop] = append(t.stopTimesByStop[st.Stop], StopTimeRef{Trip: ti, Seq: seq})
		}
	}
}

// StationIndex resolves a station id to its arena index.
func (t *Timetable) StationIndex(id string) (int, bool) {
	i, ok := t.stationIndex[id]
	return i, ok
}

// StopIndex resolves a stop id to its arena index.
func (t *Timetable) StopIndex(id string) (int, bool) {
	i, ok := t.stopIndex[id]
	return i, ok
}

// StopsOf returns the arena indexes of a station's stops.
func (t *Timetable) StopsOf(station int) []int {
	return t.Stations[station].Stops
}

// RoutesServing returns the indexes of every route whose pattern contains stop.
func (t *Timetable) RoutesServing(stop int) []int {
	return t.routesByStop[stop]
}

// TransfersFrom returns the indexes of every transfer departing stop.
func (t *Timetable) TransfersFrom(stop int) []int {
	return t.transfersByStop[stop]
}

// DeparturesInRange returns every trip stop time at one of stops whose
// departure lies in the closed window [lo, hi].
func (t *Timetable) DeparturesInRange(stops []int, lo, hi int) []StopTimeRef {
	var result []StopTimeRef
	for _, stop := range stops {
		for _, ref := range t.stopTimesByStop[stop] {
			dep := t.Trips[ref.Trip].StopTimes[ref.Seq].Departure
			if lo <= dep && dep <= hi {
				result = append(result, ref)
			}
		}
	}
	return result
}

// Counts summarizes the timetable's size, for logging after a load.
func (t *Timetable) Counts() string {
	stopTimes := 0
	for i := range t.Trips {
		stopTimes += len(t.Trips[i].StopTimes)
	}
	return fmt.Sprintf("stations:%d stops:%d trips:%d stop times:%d routes:%d transfers:%d",
		len(t.Stations), len(t.Stops), len(t.Trips), stopTimes, len(t.Routes), len(t.Transfers))
}
