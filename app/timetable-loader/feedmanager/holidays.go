package feedmanager

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/nl"
)

// newHolidayCalendar builds the calendar of Dutch national holidays. The
// feeds this loader targets encode holiday service through calendar
// exceptions rather than the weekday flags, so a date that passes the
// weekday filter may still run a reduced schedule.
// TODO: honor calendar_dates.txt exceptions instead of only warning.
func newHolidayCalendar() *cal.BusinessCalendar {
	calendar := cal.NewBusinessCalendar()
	calendar.AddHoliday(nl.Holidays...)
	return calendar
}

// holidayName returns the name of the holiday observed on the service
// date, empty when the date is not a holiday.
func holidayName(calendar *cal.BusinessCalendar, at time.Time) string {
	actual, observed, holiday := calendar.IsHoliday(at)
	if (actual || observed) && holiday != nil {
		return holiday.Name
	}
	return ""
}
