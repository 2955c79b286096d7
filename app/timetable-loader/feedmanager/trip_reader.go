package feedmanager

import (
	"strconv"
	"unicode"
)

// tripRow is one trip definition from trips.txt before stop times are
// attached.
type tripRow struct {
	tripId    string
	routeId   string
	serviceId string
	headsign  string
	shortName string
}

// hint derives the numeric train identifier fare rules key on: the trip
// short name when it is numeric, else the first digit run in the headsign,
// else zero.
func (t *tripRow) hint() int {
	if n, err := strconv.Atoi(t.shortName); err == nil {
		return n
	}
	digits := ""
	for _, r := range t.headsign {
		if unicode.IsDigit(r) {
			digits += string(r)
		} else if digits != "" {
			break
		}
	}
	if n, err := strconv.Atoi(digits); err == nil {
		return n
	}
	return 0
}

// tripRowReader implements feedRowReader for trips.txt, keeping trips on an
// allowed route.
type tripRowReader struct {
	routeIds map[string]struct{}
	trips    []tripRow
}

func newTripRowReader(routeIds map[string]struct{}) *tripRowReader {
	return &tripRowReader{routeIds: routeIds}
}

func (r *tripRowReader) addRow(parser *feedFileParser) error {
	row := tripRow{
		tripId:    parser.getString("trip_id", false),
		routeId:   parser.getString("route_id", false),
		serviceId: parser.getString("service_id", false),
		headsign:  parser.getString("trip_headsign", true),
		shortName: parser.getString("trip_short_name", true),
	}
	if _, ok := r.routeIds[row.routeId]; ok {
		r.trips = append(r.trips, row)
	}
	return nil
}
