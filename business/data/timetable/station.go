package timetable

// Station is a named location holding one or more platforms (stops).
type Station struct {
	ID   string
	Name string
	// Stops are arena indexes of this station's platforms, in the order
	// they were added.
	Stops []int
}
