package timetable

// Transfer is a directed zero-boarding movement between two stops of the
// same station with a fixed layover cost in seconds.
type Transfer struct {
	From    int
	To      int
	Layover int
}
