package feedmanager

import (
	"fmt"
	logger "log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
)

// Options configures a feed load.
type Options struct {
	// TransferCost is the intra-station layover in seconds.
	TransferCost int
	// Agencies is the agency name allow-list; empty keeps every agency.
	Agencies []string
	// ICDFares applies the intercity-direct fare supplement rule.
	ICDFares bool
}

// feedData is everything read from one feed directory after filtering.
type feedData struct {
	trips     []tripRow
	stopTimes *stopTimeRowReader
	stops     *stopRowReader
}

// LoadFeed reads the GTFS feed at inputDir, or every feed in its immediate
// subdirectories when inputDir holds several, filters trips to serviceDate
// (YYYYMMDD) and the agency allow-list, and builds the timetable.
func LoadFeed(log *logger.Logger, inputDir, serviceDate string, opts Options) (*timetable.Timetable, error) {
	date, err := time.Parse("20060102", serviceDate)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service date %s: %w", serviceDate, err)
	}
	dateInt, _ := strconv.Atoi(serviceDate)
	weekday := int(date.Weekday())

	if name := holidayName(newHolidayCalendar(), date); name != "" {
		log.Printf("service date %s falls on %s, weekday service flags may not reflect actual service", serviceDate, name)
	}

	dirs, err := feedDirs(inputDir)
	if err != nil {
		return nil, err
	}

	builder := timetable.NewBuilder(opts.TransferCost)
	if opts.ICDFares {
		builder.SetFareRule(timetable.ICDSupplement)
	}
	asm := newAssembler(log, builder)
	for _, dir := range dirs {
		log.Printf("reading feed %s", dir)
		data, err := readFeed(dir, dateInt, weekday, opts.Agencies)
		if err != nil {
			return nil, fmt.Errorf("reading feed %s: %w", dir, err)
		}
		if err = asm.add(data); err != nil {
			return nil, fmt.Errorf("assembling feed %s: %w", dir, err)
		}
	}

	tt, err := builder.Build()
	if err != nil {
		return nil, err
	}
	log.Printf("built timetable: %s", tt.Counts())
	return tt, nil
}

// feedDirs locates the feed directories under inputDir: its subdirectories
// containing an agency.txt, or inputDir itself.
func feedDirs(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("reading feed directory %s: %w", inputDir, err)
	}
	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(inputDir, entry.Name())
		if _, err := os.Stat(filepath.Join(sub, "agency.txt")); err == nil {
			dirs = append(dirs, sub)
		}
	}
	if len(dirs) == 0 {
		dirs = []string{inputDir}
	}
	return dirs, nil
}

// readFeed runs the row readers over one feed directory in dependency
// order: agencies narrow routes, routes narrow trips, the calendar narrows
// trips to the service date, and stop times narrow the stops kept.
func readFeed(dir string, date, weekday int, agencies []string) (*feedData, error) {
	agencyRR := newAgencyRowReader(agencies)
	if err := loadFeedFile(dir, "agency.txt", agencyRR, false); err != nil {
		return nil, err
	}
	routeRR := newRouteRowReader(agencyRR.agencyIds)
	if err := loadFeedFile(dir, "routes.txt", routeRR, false); err != nil {
		return nil, err
	}
	tripRR := newTripRowReader(routeRR.routeIds)
	if err := loadFeedFile(dir, "trips.txt", tripRR, false); err != nil {
		return nil, err
	}
	calendarRR := newCalendarRowReader()
	if err := loadFeedFile(dir, "calendar.txt", calendarRR, false); err != nil {
		return nil, err
	}

	var active []tripRow
	tripIds := map[string]struct{}{}
	for _, trip := range tripRR.trips {
		service, present := calendarRR.services[trip.serviceId]
		if present && service.activeOn(date, weekday) {
			active = append(active, trip)
			tripIds[trip.tripId] = struct{}{}
		}
	}

	stopTimeRR := newStopTimeRowReader(tripIds)
	if err := loadFeedFile(dir, "stop_times.txt", stopTimeRR, false); err != nil {
		return nil, err
	}
	stopRR := newStopRowReader(stopTimeRR.stopsServed)
	if err := loadFeedFile(dir, "stops.txt", stopRR, false); err != nil {
		return nil, err
	}
	return &feedData{trips: active, stopTimes: stopTimeRR, stops: stopRR}, nil
}

// assembler feeds filtered rows into the timetable builder, deduplicating
// entities that repeat across merged feeds.
type assembler struct {
	log     *logger.Logger
	builder *timetable.Builder

	stations map[string]struct{}
	stops    map[string]struct{}
	trips    map[string]struct{}
}

func newAssembler(log *logger.Logger, builder *timetable.Builder) *assembler {
	return &assembler{
		log:      log,
		builder:  builder,
		stations: map[string]struct{}{},
		stops:    map[string]struct{}{},
		trips:    map[string]struct{}{},
	}
}

func (a *assembler) add(data *feedData) error {
	for _, row := range data.stops.servedStops() {
		if err := a.addStop(data, row); err != nil {
			return err
		}
	}
	for _, trip := range data.trips {
		if err := a.addTrip(data, trip); err != nil {
			return err
		}
	}
	return nil
}

// addStop registers a served platform and its station. A stop without a
// parent station stands as its own single-platform station.
func (a *assembler) addStop(data *feedData, row stopRow) error {
	if _, seen := a.stops[row.stopId]; seen {
		return nil
	}

	stationId := row.stopId
	stationName := row.stopName
	if row.parentStation != "" {
		stationId = row.parentStation
		stationName = row.parentStation
		if parent, present := data.stops.parentOf(row); present {
			stationName = parent.stopName
		}
	}
	if _, seen := a.stations[stationId]; !seen {
		if err := a.builder.AddStation(stationId, stationName); err != nil {
			return err
		}
		a.stations[stationId] = struct{}{}
	}
	if err := a.builder.AddStop(row.stopId, row.stopName, stationId); err != nil {
		return err
	}
	a.stops[row.stopId] = struct{}{}
	return nil
}

func (a *assembler) addTrip(data *feedData, trip tripRow) error {
	if _, seen := a.trips[trip.tripId]; seen {
		return nil
	}
	a.trips[trip.tripId] = struct{}{}

	rows := data.stopTimes.sortedStopTimes(trip.tripId)
	if len(rows) < 2 {
		a.log.Printf("skipping trip %s with %d stop times", trip.tripId, len(rows))
		return nil
	}
	seed := timetable.TripSeed{
		ID:       trip.tripId,
		Headsign: trip.headsign,
		Hint:     trip.hint(),
	}
	for _, row := range rows {
		seed.StopTimes = append(seed.StopTimes, timetable.StopTimeSeed{
			StopID:    row.stopId,
			Arrival:   row.arrival,
			Departure: row.departure,
		})
	}
	return a.builder.AddTrip(seed)
}
