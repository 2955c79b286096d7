package mcraptor

import (
	logger "log"
	"os"
	"testing"

	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
)

// test clock values in seconds of the schedule day
const (
	at0800 = 8 * 3600
	at0805 = 8*3600 + 5*60
	at0810 = 8*3600 + 10*60
	at0811 = 8*3600 + 11*60
	at0812 = 8*3600 + 12*60
	at0815 = 8*3600 + 15*60
	at0818 = 8*3600 + 18*60
	at0820 = 8*3600 + 20*60
	at0825 = 8*3600 + 25*60
	at0826 = 8*3600 + 26*60
	at0835 = 8*3600 + 35*60
)

func testLogger() *logger.Logger {
	return logger.New(os.Stdout, "TEST : ", logger.LstdFlags)
}

type fixtureOptions struct {
	withConnector bool   // add route R2: B1 -> C1 with trip T3
	tripOneHint   int    // hint for trip T1
	stationCName  string // display name of station C, defaults to Gamma
	fareRule      timetable.FareRule
}

// buildFixture assembles the three-station line used across the package
// tests: station A with platforms A1 and A2, station B with B1, station C
// with C1. Route R1 runs A1-B1-C1 with trip T1 (08:00, 08:10/08:11, 08:20)
// and trip T2 (08:15, 08:25/08:26, 08:35). A1 and A2 transfer both ways
// with a 180 second layover. Options add the B1-C1 connector trip T3
// (dep 08:12, arr 08:18) and fare configuration.
func buildFixture(t *testing.T, opts fixtureOptions) *timetable.Timetable {
	t.Helper()
	cName := opts.stationCName
	if cName == "" {
		cName = "Gamma"
	}

	b := timetable.NewBuilder(180)
	if opts.fareRule != nil {
		b.SetFareRule(opts.fareRule)
	}
	for _, station := range [][2]string{{"A", "Alpha"}, {"B", "Beta"}, {"C", cName}} {
		if err := b.AddStation(station[0], station[1]); err != nil {
			t.Fatalf("adding station %s: %v", station[0], err)
		}
	}
	for _, stop := range [][3]string{
		{"A1", "Alpha platform 1", "A"},
		{"A2", "Alpha platform 2", "A"},
		{"B1", "Beta platform 1", "B"},
		{"C1", "C platform 1", "C"},
	} {
		if err := b.AddStop(stop[0], stop[1], stop[2]); err != nil {
			t.Fatalf("adding stop %s: %v", stop[0], err)
		}
	}

	err := b.AddTrip(timetable.TripSeed{
		ID:       "T1",
		Headsign: cName,
		Hint:     opts.tripOneHint,
		StopTimes: []timetable.StopTimeSeed{
			{StopID: "A1", Arrival: at0800, Departure: at0800},
			{StopID: "B1", Arrival: at0810, Departure: at0811},
			{StopID: "C1", Arrival: at0820, Departure: at0820},
		},
	})
	if err != nil {
		t.Fatalf("adding trip T1: %v", err)
	}
	err = b.AddTrip(timetable.TripSeed{
		ID:       "T2",
		Headsign: cName,
		StopTimes: []timetable.StopTimeSeed{
			{StopID: "A1", Arrival: at0815, Departure: at0815},
			{StopID: "B1", Arrival: at0825, Departure: at0826},
			{StopID: "C1", Arrival: at0835, Departure: at0835},
		},
	})
	if err != nil {
		t.Fatalf("adding trip T2: %v", err)
	}
	if opts.withConnector {
		err = b.AddTrip(timetable.TripSeed{
			ID:       "T3",
			Headsign: cName,
			StopTimes: []timetable.StopTimeSeed{
				{StopID: "B1", Arrival: at0812, Departure: at0812},
				{StopID: "C1", Arrival: at0818, Departure: at0818},
			},
		})
		if err != nil {
			t.Fatalf("adding trip T3: %v", err)
		}
	}

	tt, err := b.Build()
	if err != nil {
		t.Fatalf("building fixture timetable: %v", err)
	}
	return tt
}

// stopIdx resolves a stop id, failing the test when absent.
func stopIdx(t *testing.T, tt *timetable.Timetable, id string) int {
	t.Helper()
	i, ok := tt.StopIndex(id)
	if !ok {
		t.Fatalf("fixture stop %s missing", id)
	}
	return i
}

// labelsAt flattens the final bag at a stop id for assertions.
func labelsAt(t *testing.T, tt *timetable.Timetable, bags []StopBags, k int, id string) Bag {
	t.Helper()
	return bags[k][stopIdx(t, tt, id)]
}
