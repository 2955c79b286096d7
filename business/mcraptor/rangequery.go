package mcraptor

import (
	"context"
	"fmt"
	logger "log"
	"sort"
	"sync"
	"time"

	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
)

// destinationSet maps every station except the origin to its platforms.
type destinationSet struct {
	names []string
	stops map[string][]int
}

func (m *McRaptor) destinations(origin int) destinationSet {
	set := destinationSet{stops: map[string][]int{}}
	for i, station := range m.tt.Stations {
		if i == origin {
			continue
		}
		set.names = append(set.names, station.Name)
		set.stops[station.Name] = station.Stops
	}
	sort.Strings(set.names)
	return set
}

// departureTimes returns the distinct departure seconds of every trip stop
// time at one of stops inside the closed window, in descending order.
func (m *McRaptor) departureTimes(stops []int, startSecs, endSecs int) []int {
	seen := map[int]struct{}{}
	for _, ref := range m.tt.DeparturesInRange(stops, startSecs, endSecs) {
		seen[m.tt.Trips[ref.Trip].StopTimes[ref.Seq].Departure] = struct{}{}
	}
	result := make([]int, 0, len(seen))
	for dep := range seen {
		result = append(result, dep)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(result)))
	return result
}

// RunRangeMcRaptor finds, for every destination station, the unique
// Pareto-optimal journeys departing the origin station within the closed
// window [startSecs, endSecs]. Departure times run latest first and each
// search is seeded with the previous one's final bags, so facts already
// proven by a later departure prune the earlier searches.
func RunRangeMcRaptor(ctx context.Context, log *logger.Logger, tt *timetable.Timetable,
	originStationID string, startSecs, endSecs, maxRounds int) (map[string][]Journey, error) {

	if startSecs > endSecs {
		return nil, fmt.Errorf("departure window [%d, %d] is empty: %w", startSecs, endSecs, ErrInvalidInput)
	}
	origin, present := tt.StationIndex(originStationID)
	if !present {
		return nil, fmt.Errorf("station %s: %w", originStationID, ErrUnknownStation)
	}
	m := NewMcRaptor(log, tt)
	fromStops := tt.StopsOf(origin)
	departures := m.departureTimes(fromStops, startSecs, endSecs)
	if len(departures) == 0 {
		return nil, fmt.Errorf("no departures from station %s in window: %w", originStationID, ErrInvalidInput)
	}
	log.Printf("range query: %d departure times from station %s", len(departures), originStationID)

	dests := m.destinations(origin)
	journeys := map[string][]Journey{}
	for _, name := range dests.names {
		journeys[name] = []Journey{}
	}

	start := time.Now()
	var seed StopBags
	for i, depSecs := range departures {
		log.Printf("processing %d/%d: departure %s", i+1, len(departures), timetable.FormatScheduleTime(depSecs))
		bags, actualRounds, err := m.Run(ctx, fromStops, depSecs, maxRounds, seed)
		if err != nil {
			return nil, fmt.Errorf("search %d/%d departing %s: %w",
				i+1, len(departures), timetable.FormatScheduleTime(depSecs), err)
		}
		final := bags[actualRounds]
		seed = final.shallowCopy()

		for _, name := range dests.names {
			legs := bestLegsToDestination(dests.stops[name], final)
			if len(legs) == 0 {
				continue
			}
			found, err := m.reconstructJourneys(legs, bags, actualRounds)
			if err != nil {
				return nil, err
			}
			journeys[name] = append(journeys[name], found...)
		}
	}

	log.Printf("journey calculation time: %v", time.Since(start))

	for name, list := range journeys {
		journeys[name] = dedupeJourneys(list)
	}
	return journeys, nil
}

// RunRangeMcRaptorParallel evaluates the window's departure times on
// workers goroutines. Seed reuse is dropped in exchange for independence;
// the per-destination Pareto journeys are identical to the sequential
// driver's because seeding is only a pruning optimization.
func RunRangeMcRaptorParallel(ctx context.Context, log *logger.Logger, tt *timetable.Timetable,
	originStationID string, startSecs, endSecs, maxRounds, workers int) (map[string][]Journey, error) {

	if workers < 1 {
		return nil, fmt.Errorf("worker count %d below one: %w", workers, ErrInvalidInput)
	}
	if startSecs > endSecs {
		return nil, fmt.Errorf("departure window [%d, %d] is empty: %w", startSecs, endSecs, ErrInvalidInput)
	}
	origin, present := tt.StationIndex(originStationID)
	if !present {
		return nil, fmt.Errorf("station %s: %w", originStationID, ErrUnknownStation)
	}
	m := NewMcRaptor(log, tt)
	fromStops := tt.StopsOf(origin)
	departures := m.departureTimes(fromStops, startSecs, endSecs)
	if len(departures) == 0 {
		return nil, fmt.Errorf("no departures from station %s in window: %w", originStationID, ErrInvalidInput)
	}
	dests := m.destinations(origin)

	type departureResult struct {
		journeys map[string][]Journey
		err      error
	}

	depChan := make(chan int)
	results := make(chan departureResult)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for depSecs := range depChan {
				found, err := m.runOneDeparture(ctx, fromStops, depSecs, maxRounds, dests)
				results <- departureResult{journeys: found, err: err}
			}
		}()
	}
	go func() {
		defer close(depChan)
		for _, depSecs := range departures {
			select {
			case depChan <- depSecs:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	journeys := map[string][]Journey{}
	for _, name := range dests.names {
		journeys[name] = []Journey{}
	}
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		for name, list := range r.journeys {
			journeys[name] = append(journeys[name], list...)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for name, list := range journeys {
		sortJourneys(list)
		journeys[name] = dedupeJourneys(list)
	}
	return journeys, nil
}

// runOneDeparture runs a single unseeded search and reconstructs journeys
// for every destination.
func (m *McRaptor) runOneDeparture(ctx context.Context, fromStops []int, depSecs, maxRounds int,
	dests destinationSet) (map[string][]Journey, error) {

	bags, actualRounds, err := m.Run(ctx, fromStops, depSecs, maxRounds, nil)
	if err != nil {
		return nil, err
	}
	final := bags[actualRounds]
	found := map[string][]Journey{}
	for _, name := range dests.names {
		legs := bestLegsToDestination(dests.stops[name], final)
		if len(legs) == 0 {
			continue
		}
		journeys, err := m.reconstructJourneys(legs, bags, actualRounds)
		if err != nil {
			return nil, err
		}
		found[name] = journeys
	}
	return found, nil
}

// sortJourneys orders journeys latest departure first, then by arrival and
// fingerprint, so the parallel driver's output is deterministic.
func sortJourneys(journeys []Journey) {
	sort.Slice(journeys, func(i, j int) bool {
		if journeys[i].Departure != journeys[j].Departure {
			return journeys[i].Departure > journeys[j].Departure
		}
		if journeys[i].Arrival != journeys[j].Arrival {
			return journeys[i].Arrival < journeys[j].Arrival
		}
		return journeys[i].key() < journeys[j].key()
	})
}

// dedupeJourneys keeps the first of every structurally equal journey,
// preserving order.
func dedupeJourneys(journeys []Journey) []Journey {
	seen := map[string]struct{}{}
	result := make([]Journey, 0, len(journeys))
	for _, j := range journeys {
		k := j.key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, j)
	}
	return result
}
