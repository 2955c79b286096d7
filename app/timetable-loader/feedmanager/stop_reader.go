package feedmanager

// stopRow is one location from stops.txt. A row with a parent station is a
// platform; a row referenced as a parent is a station.
type stopRow struct {
	stopId        string
	stopName      string
	parentStation string
}

// stopRowReader implements feedRowReader for stops.txt, keeping every row;
// servedStops narrows them to the stops actually served and parentOf looks
// up their parent stations.
type stopRowReader struct {
	stopsServed map[string]struct{}
	rows        []stopRow
	byId        map[string]stopRow
}

func newStopRowReader(stopsServed map[string]struct{}) *stopRowReader {
	return &stopRowReader{
		stopsServed: stopsServed,
		byId:        map[string]stopRow{},
	}
}

func (r *stopRowReader) addRow(parser *feedFileParser) error {
	row := stopRow{
		stopId:        parser.getString("stop_id", false),
		stopName:      parser.getString("stop_name", false),
		parentStation: parser.getString("parent_station", true),
	}
	r.rows = append(r.rows, row)
	r.byId[row.stopId] = row
	return nil
}

// servedStops returns the rows for stops the kept trips call at.
func (r *stopRowReader) servedStops() []stopRow {
	var result []stopRow
	for _, row := range r.rows {
		if _, ok := r.stopsServed[row.stopId]; ok {
			result = append(result, row)
		}
	}
	return result
}

// parentOf resolves a parent station row, second result false when the feed
// does not define it.
func (r *stopRowReader) parentOf(row stopRow) (stopRow, bool) {
	parent, ok := r.byId[row.parentStation]
	return parent, ok
}
