package mcraptor

import "errors"

// ErrInvalidInput indicates a malformed query: bad time window, a round
// budget below one, or a window with no departures. Reported to the caller,
// nothing is retried.
var ErrInvalidInput = errors.New("invalid input")

// ErrUnknownStation indicates the requested origin station is not in the
// timetable.
var ErrUnknownStation = errors.New("unknown origin station")

// ErrInconsistent indicates journey reconstruction failed to find a
// precursor label. The search is deterministic, so this surfaces a bug
// rather than a recoverable condition.
var ErrInconsistent = errors.New("journey reconstruction inconsistency")
