package feedmanager

// calendarRow is one service definition from calendar.txt. Dates are kept
// in gtfs YYYYMMDD integer form; weekdays follow time.Weekday numbering
// with Sunday first.
type calendarRow struct {
	serviceId string
	startDate int
	endDate   int
	weekdays  [7]bool
}

// activeOn reports whether the service runs on date (YYYYMMDD as int) given
// the date's weekday.
func (c *calendarRow) activeOn(date int, weekday int) bool {
	return c.startDate <= date && date <= c.endDate && c.weekdays[weekday]
}

// calendarRowReader implements feedRowReader for calendar.txt.
type calendarRowReader struct {
	services map[string]*calendarRow
}

func newCalendarRowReader() *calendarRowReader {
	return &calendarRowReader{services: map[string]*calendarRow{}}
}

func (r *calendarRowReader) addRow(parser *feedFileParser) error {
	row := calendarRow{
		serviceId: parser.getString("service_id", false),
		startDate: parser.getInt("start_date", false),
		endDate:   parser.getInt("end_date", false),
	}
	// gtfs columns are monday..sunday, time.Weekday counts from Sunday
	row.weekdays[0] = parser.getInt("sunday", false) == 1
	row.weekdays[1] = parser.getInt("monday", false) == 1
	row.weekdays[2] = parser.getInt("tuesday", false) == 1
	row.weekdays[3] = parser.getInt("wednesday", false) == 1
	row.weekdays[4] = parser.getInt("thursday", false) == 1
	row.weekdays[5] = parser.getInt("friday", false) == 1
	row.weekdays[6] = parser.getInt("saturday", false) == 1
	r.services[row.serviceId] = &row
	return nil
}
