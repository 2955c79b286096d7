package timetable

// Stop is a single platform. Every stop belongs to exactly one station.
type Stop struct {
	ID   string
	Name string
	// Station is the arena index of the owning station.
	Station int
}
