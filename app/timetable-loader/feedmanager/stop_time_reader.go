package feedmanager

import "sort"

// stopTimeRow is one scheduled call from stop_times.txt.
type stopTimeRow struct {
	tripId       string
	stopSequence int
	stopId       string
	arrival      int
	departure    int
}

// stopTimeRowReader implements feedRowReader for stop_times.txt, keeping
// rows belonging to a kept trip and remembering which stops they touch.
type stopTimeRowReader struct {
	tripIds     map[string]struct{}
	byTrip      map[string][]stopTimeRow
	stopsServed map[string]struct{}
}

func newStopTimeRowReader(tripIds map[string]struct{}) *stopTimeRowReader {
	return &stopTimeRowReader{
		tripIds:     tripIds,
		byTrip:      map[string][]stopTimeRow{},
		stopsServed: map[string]struct{}{},
	}
}

func (r *stopTimeRowReader) addRow(parser *feedFileParser) error {
	tripId := parser.getString("trip_id", false)
	if _, ok := r.tripIds[tripId]; !ok {
		return nil
	}
	row := stopTimeRow{
		tripId:       tripId,
		stopSequence: parser.getInt("stop_sequence", false),
		stopId:       parser.getString("stop_id", false),
		arrival:      parser.getScheduleTime("arrival_time"),
		departure:    parser.getScheduleTime("departure_time"),
	}
	r.byTrip[tripId] = append(r.byTrip[tripId], row)
	r.stopsServed[row.stopId] = struct{}{}
	return nil
}

// sortedStopTimes returns a trip's rows ordered by stop sequence.
func (r *stopTimeRowReader) sortedStopTimes(tripId string) []stopTimeRow {
	rows := r.byTrip[tripId]
	sort.Slice(rows, func(i, j int) bool { return rows[i].stopSequence < rows[j].stopSequence })
	return rows
}
