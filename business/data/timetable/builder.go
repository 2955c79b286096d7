package timetable

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StopTimeSeed is one scheduled call supplied to the builder, with times in
// seconds of the schedule day.
type StopTimeSeed struct {
	StopID    string
	Arrival   int
	Departure int
}

// TripSeed is one trip supplied to the builder before route grouping.
type TripSeed struct {
	ID        string
	Headsign  string
	Hint      int
	StopTimes []StopTimeSeed
}

// Builder assembles a Timetable from stations, stops and trips. The result
// is immutable; all search state lives outside it.
type Builder struct {
	transferCost int
	fareRule     FareRule

	stations     []Station
	stops        []Stop
	stationIndex map[string]int
	stopIndex    map[string]int
	seeds        []TripSeed
}

// NewBuilder creates a Builder. transferCost is the intra-station layover in
// seconds applied to every generated transfer; it is a construction
// parameter rather than a package constant so callers can tune it per feed.
func NewBuilder(transferCost int) *Builder {
	return &Builder{
		transferCost: transferCost,
		fareRule:     ZeroFare,
		stationIndex: map[string]int{},
		stopIndex:    map[string]int{},
	}
}

// SetFareRule registers the fare supplement rule applied to every stop time
// during Build. The default is ZeroFare.
func (b *Builder) SetFareRule(rule FareRule) {
	b.fareRule = rule
}

// AddStation registers a station. Re-adding an id is an error.
func (b *Builder) AddStation(id, name string) error {
	if _, present := b.stationIndex[id]; present {
		return fmt.Errorf("station %s added twice", id)
	}
	b.stationIndex[id] = len(b.stations)
	b.stations = append(b.stations, Station{ID: id, Name: name})
	return nil
}

// AddStop registers a platform under an existing station.
func (b *Builder) AddStop(id, name, stationID string) error {
	if _, present := b.stopIndex[id]; present {
		return fmt.Errorf("stop %s added twice", id)
	}
	si, present := b.stationIndex[stationID]
	if !present {
		return fmt.Errorf("stop %s references unknown station %s", id, stationID)
	}
	b.stopIndex[id] = len(b.stops)
	b.stations[si].Stops = append(b.stations[si].Stops, len(b.stops))
	b.stops = append(b.stops, Stop{ID: id, Name: name, Station: si})
	return nil
}

// AddTrip queues a trip for route grouping during Build.
func (b *Builder) AddTrip(seed TripSeed) error {
	if len(seed.StopTimes) < 2 {
		return fmt.Errorf("trip %s has fewer than two stop times", seed.ID)
	}
	b.seeds = append(b.seeds, seed)
	return nil
}

// Build groups trips into routes, validates the structural invariants and
// generates intra-station transfers. A validation failure wraps ErrCorrupt.
func (b *Builder) Build() (*Timetable, error) {
	tt := &Timetable{
		Stations:     b.stations,
		Stops:        b.stops,
		TransferCost: b.transferCost,
	}

	trips, err := b.resolveTrips()
	if err != nil {
		return nil, err
	}
	tt.Trips = trips

	tt.Routes = groupRoutes(tt.Trips)
	sortRouteTrips(tt)
	if err := validateFIFO(tt); err != nil {
		return nil, err
	}

	tt.Transfers = stationTransfers(tt.Stations, b.transferCost)
	tt.buildIndexes()
	return tt, nil
}

// Restore reassembles a Timetable from previously persisted arenas. Fares
// on the stop times are kept as stored; routes are regrouped, the FIFO
// property is validated and transfer endpoints are checked. Stop references
// and time monotonicity within trips are not rechecked. Trip order must
// match the order at build time for the route grouping to round-trip.
func Restore(stations []Station, stops []Stop, trips []Trip, transfers []Transfer, transferCost int) (*Timetable, error) {
	tt := &Timetable{
		Stations:     stations,
		Stops:        stops,
		Trips:        trips,
		Transfers:    transfers,
		TransferCost: transferCost,
	}
	tt.Routes = groupRoutes(tt.Trips)
	sortRouteTrips(tt)
	if err := validateFIFO(tt); err != nil {
		return nil, err
	}
	for _, transfer := range transfers {
		if transfer.From < 0 || transfer.From >= len(stops) || transfer.To < 0 || transfer.To >= len(stops) {
			return nil, fmt.Errorf("transfer references unknown stop %d: %w", transfer.From, ErrCorrupt)
		}
	}
	tt.buildIndexes()
	return tt, nil
}

// resolveTrips turns trip seeds into arena trips, applying the fare rule and
// checking time monotonicity.
func (b *Builder) resolveTrips() ([]Trip, error) {
	trips := make([]Trip, 0, len(b.seeds))
	for _, seed := range b.seeds {
		trip := Trip{
			ID:        seed.ID,
			Headsign:  seed.Headsign,
			Hint:      seed.Hint,
			StopTimes: make([]TripStopTime, 0, len(seed.StopTimes)),
		}
		prevDeparture := 0
		for seq, sts := range seed.StopTimes {
			stop, present := b.stopIndex[sts.StopID]
			if !present {
				return nil, fmt.Errorf("trip %s references unknown stop %s: %w", seed.ID, sts.StopID, ErrCorrupt)
			}
			if sts.Arrival > sts.Departure {
				return nil, fmt.Errorf("trip %s departs stop %s before arriving: %w", seed.ID, sts.StopID, ErrCorrupt)
			}
			if seq > 0 && sts.Arrival < prevDeparture {
				return nil, fmt.Errorf("trip %s times decrease at stop %s: %w", seed.ID, sts.StopID, ErrCorrupt)
			}
			prevDeparture = sts.Departure
			trip.StopTimes = append(trip.StopTimes, TripStopTime{
				Stop:      stop,
				Arrival:   sts.Arrival,
				Departure: sts.Departure,
				Fare:      b.fareRule(seed, b.stations[b.stops[stop].Station].Name),
			})
		}
		trips = append(trips, trip)
	}
	return trips, nil
}

// groupRoutes partitions trips into routes: two trips share a route iff
// their stop sequences are identical. Service patterns are deliberately not
// part of the key.
func groupRoutes(trips []Trip) []Route {
	var routes []Route
	byPattern := map[string]int{}
	for ti := range trips {
		key := patternKey(trips[ti].StopTimes)
		ri, present := byPattern[key]
		if !present {
			ri = len(routes)
			byPattern[key] = ri
			pattern := make([]int, len(trips[ti].StopTimes))
			for i, st := range trips[ti].StopTimes {
				pattern[i] = st.Stop
			}
			routes = append(routes, Route{Pattern: pattern})
		}
		trips[ti].Route = ri
		routes[ri].Trips = append(routes[ri].Trips, ti)
	}
	return routes
}

func patternKey(stopTimes []TripStopTime) string {
	var sb strings.Builder
	for _, st := range stopTimes {
		sb.WriteString(strconv.Itoa(st.Stop))
		sb.WriteByte('|')
	}
	return sb.String()
}

// sortRouteTrips orders every route's trips by departure time at the first
// stop, breaking ties by trip id for determinism.
func sortRouteTrips(tt *Timetable) {
	for ri := range tt.Routes {
		route := &tt.Routes[ri]
		sort.SliceStable(route.Trips, func(i, j int) bool {
			ti, tj := &tt.Trips[route.Trips[i]], &tt.Trips[route.Trips[j]]
			di, dj := ti.DepartureAt(0), tj.DepartureAt(0)
			if di != dj {
				return di < dj
			}
			return ti.ID < tj.ID
		})
	}
}

// validateFIFO enforces the non-overtaking property inside every route: a
// trip departing a stop no later than its successor must arrive at every
// later stop no later. The route scan's earliest-trip selection depends on
// this.
func validateFIFO(tt *Timetable) error {
	for ri := range tt.Routes {
		route := &tt.Routes[ri]
		for i := 1; i < len(route.Trips); i++ {
			earlier := &tt.Trips[route.Trips[i-1]]
			later := &tt.Trips[route.Trips[i]]
			for seq := range route.Pattern {
				if earlier.DepartureAt(seq) > later.DepartureAt(seq) ||
					earlier.ArrivalAt(seq) > later.ArrivalAt(seq) {
					return fmt.Errorf("trips %s and %s overtake at stop %s: %w",
						earlier.ID, later.ID, tt.Stops[route.Pattern[seq]].ID, ErrCorrupt)
				}
			}
		}
	}
	return nil
}

// stationTransfers generates the directed transfer pairs between every two
// distinct stops of each station.
func stationTransfers(stations []Station, layover int) []Transfer {
	var transfers []Transfer
	for _, station := range stations {
		for _, from := range station.Stops {
			for _, to := range station.Stops {
				if from != to {
					transfers = append(transfers, Transfer{From: from, To: to, Layover: layover})
				}
			}
		}
	}
	return transfers
}
