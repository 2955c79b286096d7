package mcraptor

import (
	"context"
	"errors"
	"testing"

	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
	"github.com/matryer/is"
)

func TestDirectJourney(t *testing.T) {
	is := is.New(t)
	tt := buildFixture(t, fixtureOptions{})

	journeys, err := RunRangeMcRaptor(context.Background(), testLogger(), tt, "A", at0800, at0800, 3)
	is.NoErr(err)

	toC := journeys["Gamma"]
	is.Equal(len(toC), 1)
	j := toC[0]
	is.Equal(j.Arrival, at0820)
	is.Equal(j.Trips, 1)
	is.Equal(len(j.Legs), 1)

	leg := j.Legs[0]
	is.Equal(tt.Stops[leg.From].ID, "A1")
	is.Equal(tt.Stops[leg.To].ID, "C1")
	is.Equal(leg.Departure, at0800)
	is.Equal(leg.Arrival, at0820)
	is.Equal(leg.Route, tt.Trips[0].Route)
}

func TestMissThenCatch(t *testing.T) {
	is := is.New(t)
	tt := buildFixture(t, fixtureOptions{})

	// 08:05 misses the 08:00 trip; the single departure at or after it in
	// the window is the 08:15 one
	journeys, err := RunRangeMcRaptor(context.Background(), testLogger(), tt, "A", at0805, at0815, 3)
	is.NoErr(err)

	toC := journeys["Gamma"]
	is.Equal(len(toC), 1)
	is.Equal(toC[0].Arrival, at0835)
	is.Equal(toC[0].Trips, 1)
	is.Equal(toC[0].Departure, at0815)
}

func TestTransferProducesTwoParetoLabels(t *testing.T) {
	is := is.New(t)
	tt := buildFixture(t, fixtureOptions{withConnector: true})

	bags, actualRounds, err := RunMcRaptor(context.Background(), testLogger(), tt, "A", at0800, 3)
	is.NoErr(err)

	atC := labelsAt(t, tt, bags, actualRounds, "C1")
	is.Equal(len(atC), 2)
	assertParetoMinimal(t, atC)

	byTrips := map[int]int{}
	for _, l := range atC {
		byTrips[l.Trips] = l.Arrival
	}
	is.Equal(byTrips[1], at0820) // stay on T1
	is.Equal(byTrips[2], at0818) // change to T3 at station B
}

func TestRoundBudgetForbidsConnection(t *testing.T) {
	is := is.New(t)
	tt := buildFixture(t, fixtureOptions{withConnector: true})

	bags, actualRounds, err := RunMcRaptor(context.Background(), testLogger(), tt, "A", at0800, 1)
	is.NoErr(err)
	is.Equal(actualRounds, 1)

	atC := labelsAt(t, tt, bags, actualRounds, "C1")
	is.Equal(len(atC), 1)
	is.Equal(atC[0].Arrival, at0820)
	is.Equal(atC[0].Trips, 1)
}

func TestFareSupplementOnLegAndTotal(t *testing.T) {
	is := is.New(t)
	tt := buildFixture(t, fixtureOptions{
		tripOneHint:  950,
		stationCName: "Schiphol Airport",
		fareRule:     timetable.ICDSupplement,
	})

	journeys, err := RunRangeMcRaptor(context.Background(), testLogger(), tt, "A", at0800, at0800, 3)
	is.NoErr(err)

	toC := journeys["Schiphol Airport"]
	is.Equal(len(toC), 1)
	j := toC[0]
	is.Equal(j.Fare, 1.67)
	is.Equal(len(j.Legs), 1)
	is.Equal(j.Legs[0].Fare, 1.67)

	serialized := j.Serialize(tt)
	is.Equal(serialized.TotalFare, 1.67)
	is.Equal(serialized.Legs[0].Fare, 1.67)

	// the intermediate station stays free
	toB := journeys["Beta"]
	is.Equal(len(toB), 1)
	is.Equal(toB[0].Fare, 0.0)
}

func TestSerializedContract(t *testing.T) {
	is := is.New(t)
	tt := buildFixture(t, fixtureOptions{})

	journeys, err := RunRangeMcRaptor(context.Background(), testLogger(), tt, "A", at0800, at0800, 3)
	is.NoErr(err)

	serialized := journeys["Gamma"][0].Serialize(tt)
	is.Equal(serialized.DepartureTime, "08:00:00")
	is.Equal(serialized.ArrivalTime, "08:20:00")
	is.Equal(serialized.TotalDuration, 20*60)
	is.Equal(serialized.NumTransfers, 0)
	is.Equal(len(serialized.Legs), 1)
	is.Equal(serialized.Legs[0].FromStop, "A1")
	is.Equal(serialized.Legs[0].ToStop, "C1")
	is.Equal(serialized.Legs[0].DepartureTime, "08:00:00")
	is.Equal(serialized.Legs[0].ArrivalTime, "08:20:00")
}

func TestBagInvariantsAcrossRounds(t *testing.T) {
	tt := buildFixture(t, fixtureOptions{withConnector: true})

	bags, actualRounds, err := RunMcRaptor(context.Background(), testLogger(), tt, "A", at0800, 5)
	if err != nil {
		t.Fatal(err)
	}

	for k := 0; k <= actualRounds; k++ {
		for stop := range tt.Stops {
			bag := bags[k][stop]
			assertParetoMinimal(t, bag)
			for _, l := range bag {
				// a label using more boardings than the round allows is a bug
				if l.Trips > k {
					t.Errorf("round %d stop %s label uses %d trips", k, tt.Stops[stop].ID, l.Trips)
				}
			}
			if k == 0 {
				continue
			}
			// monotone refinement: everything reachable by round k-1 stays
			// reachable (or dominated) in round k
			for _, prev := range bags[k-1][stop] {
				covered := false
				for _, cur := range bag {
					if cur.sameCriteria(prev) || cur.dominates(prev) {
						covered = true
						break
					}
				}
				if !covered {
					t.Errorf("round %d stop %s lost label %+v", k, tt.Stops[stop].ID, prev)
				}
			}
		}
	}
}

func TestReconstructionMatchesLabels(t *testing.T) {
	is := is.New(t)
	tt := buildFixture(t, fixtureOptions{withConnector: true})
	m := NewMcRaptor(testLogger(), tt)

	origin, _ := tt.StationIndex("A")
	bags, actualRounds, err := m.Run(context.Background(), tt.StopsOf(origin), at0800, 3, nil)
	is.NoErr(err)

	c, _ := tt.StationIndex("C")
	legs := bestLegsToDestination(tt.StopsOf(c), bags[actualRounds])
	is.True(len(legs) > 0)

	journeys, err := m.reconstructJourneys(legs, bags, actualRounds)
	is.NoErr(err)
	is.Equal(len(journeys), len(legs))

	for i, j := range journeys {
		label := legs[i].label
		is.Equal(j.Arrival, label.Arrival)
		is.Equal(j.Trips, label.Trips)
		is.Equal(j.Fare, label.Fare)
		// legs are contiguous and ordered
		for li := 1; li < len(j.Legs); li++ {
			is.Equal(j.Legs[li].From, j.Legs[li-1].To)
			is.True(j.Legs[li].Departure >= j.Legs[li-1].Arrival)
		}
	}
}

func TestEarliestTripRule(t *testing.T) {
	is := is.New(t)
	tt := buildFixture(t, fixtureOptions{})
	m := NewMcRaptor(testLogger(), tt)

	route := &tt.Routes[0]
	a1 := stopIdx(t, tt, "A1")
	seq := route.StopIndex(a1)

	// arriving at 08:00 boards T1, not T2
	pos, trip := m.earliestTrip(route, seq, at0800)
	is.Equal(pos, 0)
	is.Equal(tt.Trips[trip].ID, "T1")

	// arriving just after 08:00 boards T2
	_, trip = m.earliestTrip(route, seq, at0800+1)
	is.Equal(tt.Trips[trip].ID, "T2")

	// arriving after the last departure boards nothing
	pos, trip = m.earliestTrip(route, seq, at0815+1)
	is.Equal(pos, -1)
	is.Equal(trip, -1)
}

func TestRunValidatesInput(t *testing.T) {
	tt := buildFixture(t, fixtureOptions{})

	_, _, err := RunMcRaptor(context.Background(), testLogger(), tt, "A", at0800, 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero round budget error = %v, want ErrInvalidInput", err)
	}

	_, _, err = RunMcRaptor(context.Background(), testLogger(), tt, "ZZ", at0800, 3)
	if !errors.Is(err, ErrUnknownStation) {
		t.Errorf("unknown station error = %v, want ErrUnknownStation", err)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	tt := buildFixture(t, fixtureOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := RunMcRaptor(ctx, testLogger(), tt, "A", at0800, 3)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("canceled search error = %v, want context.Canceled", err)
	}
}
