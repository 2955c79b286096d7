package timetable

// Trip is one scheduled vehicle run: an ordered sequence of stop times.
type Trip struct {
	ID       string
	Headsign string
	// Hint is the numeric train identifier derived at ingestion, consumed
	// by fare supplement rules.
	Hint int
	// Route is the arena index of the route this trip was grouped into.
	Route     int
	StopTimes []TripStopTime
}

// TripStopTime is a scheduled call at a stop. The stop sequence is the
// position within Trip.StopTimes.
type TripStopTime struct {
	// Stop is the arena index of the platform served.
	Stop      int
	Arrival   int
	Departure int
	// Fare is the supplement charged when a journey rides through this
	// stop time, zero unless a fare rule set it at ingestion.
	Fare float64
}

// StopTimeAt returns the stop time at sequence position seq.
func (t *Trip) StopTimeAt(seq int) TripStopTime {
	return t.StopTimes[seq]
}

// DepartureAt returns the departure seconds at sequence position seq.
func (t *Trip) DepartureAt(seq int) int {
	return t.StopTimes[seq].Departure
}

// ArrivalAt returns the arrival seconds at sequence position seq.
func (t *Trip) ArrivalAt(seq int) int {
	return t.StopTimes[seq].Arrival
}
