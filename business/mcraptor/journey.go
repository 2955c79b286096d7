package mcraptor

import (
	"fmt"
	"math"
	"strings"

	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
)

// TransferRouteID is the route id recorded on transfer legs in serialized
// journeys; real routes have non-negative ids.
const TransferRouteID = -1

// Leg is one segment of a journey: a trip segment when Route >= 0, an
// intra-station transfer when Route is TransferRouteID.
type Leg struct {
	Route     int
	From      int
	To        int
	Departure int
	Arrival   int
	Fare      float64
}

// Journey is a reconstructed door-to-door itinerary.
type Journey struct {
	Origin      int
	Destination int
	Departure   int
	Arrival     int
	Legs        []Leg
	Fare        float64
	Trips       int
}

// destinationLabel pairs a surviving label with the platform it lives at.
type destinationLabel struct {
	stop  int
	label Label
}

// bestLegsToDestination collects the labels at every platform of a
// destination station from the final bags and keeps the Pareto-minimal
// subset: a label at one platform can dominate a label at another platform
// of the same station.
func bestLegsToDestination(toStops []int, final StopBags) []destinationLabel {
	var candidates []destinationLabel
	for _, stop := range toStops {
		for _, l := range final[stop] {
			candidates = append(candidates, destinationLabel{stop: stop, label: l})
		}
	}
	var result []destinationLabel
	for i, c := range candidates {
		beaten := false
		for j, other := range candidates {
			if i != j && other.label.dominates(c.label) {
				beaten = true
				break
			}
		}
		if !beaten {
			result = append(result, c)
		}
	}
	return result
}

// reconstructJourneys rebuilds a journey for every surviving destination
// label by walking its backpointers through the per-round bags, k being the
// last populated round.
func (m *McRaptor) reconstructJourneys(dest []destinationLabel, bags []StopBags, k int) ([]Journey, error) {
	journeys := make([]Journey, 0, len(dest))
	for _, d := range dest {
		legs, err := m.walkBack(d.label, bags, k)
		if err != nil {
			return nil, err
		}
		if len(legs) == 0 {
			continue
		}
		journeys = append(journeys, Journey{
			Origin:      legs[0].From,
			Destination: d.stop,
			Departure:   legs[0].Departure,
			Arrival:     d.label.Arrival,
			Legs:        legs,
			Fare:        d.label.Fare,
			Trips:       d.label.Trips,
		})
	}
	return journeys, nil
}

// walkBack follows a label's backpointers to the origin marker, emitting
// legs in depart-to-arrive order.
func (m *McRaptor) walkBack(l Label, bags []StopBags, k int) ([]Leg, error) {
	switch l.Ref.Kind {
	case RefOrigin:
		return nil, nil

	case RefTrip:
		trip := &m.tt.Trips[l.Ref.Trip]
		route := &m.tt.Routes[trip.Route]
		boardSeq := route.StopIndex(l.Ref.Board)
		alightSeq := route.StopIndex(l.Ref.Alight)
		segmentFare := 0.0
		for seq := boardSeq + 1; seq <= alightSeq; seq++ {
			segmentFare += trip.StopTimeAt(seq).Fare
		}
		leg := Leg{
			Route:     trip.Route,
			From:      l.Ref.Board,
			To:        l.Ref.Alight,
			Departure: trip.DepartureAt(boardSeq),
			Arrival:   trip.ArrivalAt(alightSeq),
			Fare:      segmentFare,
		}
		if k < 1 {
			return nil, fmt.Errorf("trip label in round zero at stop %d: %w", l.Ref.Board, ErrInconsistent)
		}
		precursor, err := findPrecursor(bags[k-1][l.Ref.Board], leg.Departure, l.Fare-segmentFare, l.Trips-1)
		if err != nil {
			return nil, fmt.Errorf("boarding %s at stop %s: %w", trip.ID, m.tt.Stops[l.Ref.Board].ID, err)
		}
		rest, err := m.walkBack(precursor, bags, k-1)
		if err != nil {
			return nil, err
		}
		return append(rest, leg), nil

	case RefTransfer:
		layover := m.tt.TransferCost
		// transfers happen within a round: the source label lives in the
		// same round's bag
		precursor, err := findPrecursor(bags[k][l.Ref.From], l.Arrival-layover, l.Fare, l.Trips)
		if err != nil {
			return nil, fmt.Errorf("transfer from stop %s: %w", m.tt.Stops[l.Ref.From].ID, err)
		}
		leg := Leg{
			Route:     TransferRouteID,
			From:      l.Ref.From,
			To:        l.Ref.To,
			Departure: precursor.Arrival,
			Arrival:   precursor.Arrival + layover,
			Fare:      0,
		}
		rest, err := m.walkBack(precursor, bags, k)
		if err != nil {
			return nil, err
		}
		return append(rest, leg), nil
	}
	return nil, fmt.Errorf("label with unknown ref kind %d: %w", l.Ref.Kind, ErrInconsistent)
}

// findPrecursor locates the label the walk came from: arrival no later than
// latestArrival with the remaining criteria consistent. Among several
// matches the earliest-departing one wins, mirroring the earliest-trip rule
// of the scan.
func findPrecursor(bag Bag, latestArrival int, wantFare float64, wantTrips int) (Label, error) {
	found := false
	var best Label
	for _, l := range bag {
		if l.Arrival > latestArrival || l.Trips != wantTrips || math.Abs(l.Fare-wantFare) > fareEpsilon {
			continue
		}
		if !found || l.Arrival < best.Arrival {
			best = l
			found = true
		}
	}
	if !found {
		return Label{}, ErrInconsistent
	}
	return best, nil
}

// SerializedLeg is the external wire form of one leg.
type SerializedLeg struct {
	RouteID       int     `json:"route_id"`
	FromStop      string  `json:"from_stop"`
	ToStop        string  `json:"to_stop"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	Fare          float64 `json:"fare"`
}

// SerializedJourney is the external wire form of a journey. The field names
// are the contract consumed by the comparison tooling.
type SerializedJourney struct {
	DepartureTime string          `json:"departure_time"`
	ArrivalTime   string          `json:"arrival_time"`
	TotalDuration int             `json:"total_duration"`
	NumTransfers  int             `json:"num_transfers"`
	TotalFare     float64         `json:"total_fare"`
	Legs          []SerializedLeg `json:"legs"`
}

// Serialize renders the journey on the external contract: clock strings for
// times, duration in seconds, transfers as boardings minus one.
func (j Journey) Serialize(tt *timetable.Timetable) SerializedJourney {
	legs := make([]SerializedLeg, 0, len(j.Legs))
	for _, leg := range j.Legs {
		legs = append(legs, SerializedLeg{
			RouteID:       leg.Route,
			FromStop:      tt.Stops[leg.From].ID,
			ToStop:        tt.Stops[leg.To].ID,
			DepartureTime: timetable.FormatScheduleTime(leg.Departure),
			ArrivalTime:   timetable.FormatScheduleTime(leg.Arrival),
			Fare:          leg.Fare,
		})
	}
	transfers := j.Trips - 1
	if transfers < 0 {
		transfers = 0
	}
	return SerializedJourney{
		DepartureTime: timetable.FormatScheduleTime(j.Departure),
		ArrivalTime:   timetable.FormatScheduleTime(j.Arrival),
		TotalDuration: j.Arrival - j.Departure,
		NumTransfers:  transfers,
		TotalFare:     j.Fare,
		Legs:          legs,
	}
}

// key fingerprints a journey for structural deduplication: same legs in the
// same order, same times, same fare.
func (j Journey) key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d|%d|%.4f|%d", j.Departure, j.Arrival, j.Fare, j.Trips)
	for _, leg := range j.Legs {
		fmt.Fprintf(&sb, ";%d|%d|%d|%d|%d", leg.Route, leg.From, leg.To, leg.Departure, leg.Arrival)
	}
	return sb.String()
}
