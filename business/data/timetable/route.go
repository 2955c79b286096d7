package timetable

// Route is an equivalence class of trips that serve the identical ordered
// stop sequence. This is distinct from a GTFS route_id: two GTFS routes with
// the same stop pattern collapse into one Route, and one GTFS route with
// short-turn variants splits into several.
type Route struct {
	// Pattern is the shared ordered stop sequence, as stop arena indexes.
	Pattern []int
	// Trips are trip arena indexes ordered by departure time at Pattern[0].
	Trips []int

	patternIndex map[int]int
}

// StopIndex returns the position of stop within the route's pattern, or -1
// if the route does not serve it.
func (r *Route) StopIndex(stop int) int {
	if i, ok := r.patternIndex[stop]; ok {
		return i
	}
	return -1
}
