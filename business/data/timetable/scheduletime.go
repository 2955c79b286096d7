package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseScheduleTime parses seconds of the schedule day from a clock string as
// defined in gtfs: Time in the HH:MM:SS format (H:MM:SS is also accepted).
// For times occurring after midnight the hours exceed 24, e.g. 25:35:00 for
// 1:35AM on the next day.
func ParseScheduleTime(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("expected three parts in time format: %s", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("unable to parse hours in %s: %v", clock, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("unable to parse minutes in %s: %v", clock, err)
	}
	seconds, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("unable to parse seconds in %s: %v", clock, err)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("clock value out of range: %s", clock)
	}
	return hours*3600 + minutes*60 + seconds, nil
}

// FormatScheduleTime renders seconds of the schedule day as HH:MM:SS. Hours
// are not wrapped at 24, the inverse of ParseScheduleTime.
func FormatScheduleTime(secs int) string {
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
