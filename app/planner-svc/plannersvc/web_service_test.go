package plannersvc

import (
	"encoding/json"
	logger "log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/matryer/is"

	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
)

// capturingDestination records published batches for assertions.
type capturingDestination struct {
	batches []*JourneyBatch
}

func (c *capturingDestination) Publish(batch *JourneyBatch) error {
	c.batches = append(c.batches, batch)
	return nil
}

func testServiceLogger() *logger.Logger {
	return logger.New(os.Stdout, "PLANNER_SVC_TEST : ", logger.LstdFlags)
}

// buildServiceTimetable assembles a two-station timetable with one 08:00
// departure.
func buildServiceTimetable(t *testing.T) *timetable.Timetable {
	t.Helper()
	b := timetable.NewBuilder(180)
	if err := b.AddStation("A", "Alpha"); err != nil {
		t.Fatal(err)
	}
	if err := b.AddStation("B", "Beta"); err != nil {
		t.Fatal(err)
	}
	if err := b.AddStop("A1", "Alpha 1", "A"); err != nil {
		t.Fatal(err)
	}
	if err := b.AddStop("B1", "Beta 1", "B"); err != nil {
		t.Fatal(err)
	}
	if err := b.AddTrip(timetable.TripSeed{ID: "T1", StopTimes: []timetable.StopTimeSeed{
		{StopID: "A1", Arrival: 8 * 3600, Departure: 8 * 3600},
		{StopID: "B1", Arrival: 8*3600 + 20*60, Departure: 8*3600 + 20*60},
	}}); err != nil {
		t.Fatal(err)
	}
	tt, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return tt
}

func TestJourneyHandlerServesAndPublishes(t *testing.T) {
	is := is.New(t)
	tt := buildServiceTimetable(t)
	destination := &capturingDestination{}
	handler := makeJourneyHandler(testServiceLogger(), tt, 5,
		makeJourneyPublisher(testServiceLogger(), destination))

	req := httptest.NewRequest(http.MethodGet, "/journeys?origin=A&start=08:00:00&end=08:30:00", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	is.Equal(rec.Code, http.StatusOK)
	is.Equal(rec.Header().Get("Content-Type"), "application/json")

	var batch JourneyBatch
	is.NoErr(json.Unmarshal(rec.Body.Bytes(), &batch))
	is.Equal(batch.Origin, "A")
	is.Equal(len(batch.Journeys["Beta"]), 1)
	is.Equal(batch.Journeys["Beta"][0].DepartureTime, "08:00:00")
	is.Equal(batch.Journeys["Beta"][0].ArrivalTime, "08:20:00")

	is.Equal(len(destination.batches), 1)
	is.Equal(destination.batches[0].Origin, "A")
}

func TestJourneyHandlerUnknownOrigin(t *testing.T) {
	is := is.New(t)
	handler := makeJourneyHandler(testServiceLogger(), buildServiceTimetable(t), 5, nil)

	req := httptest.NewRequest(http.MethodGet, "/journeys?origin=ZZ&start=08:00:00&end=08:30:00", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	is.Equal(rec.Code, http.StatusNotFound)
}

func TestJourneyHandlerBadTimes(t *testing.T) {
	is := is.New(t)
	handler := makeJourneyHandler(testServiceLogger(), buildServiceTimetable(t), 5, nil)

	req := httptest.NewRequest(http.MethodGet, "/journeys?origin=A&start=8am&end=08:30:00", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	is.Equal(rec.Code, http.StatusBadRequest)

	req = httptest.NewRequest(http.MethodGet, "/journeys?origin=A&start=08:00:00&end=08:30:00&rounds=x", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	is.Equal(rec.Code, http.StatusBadRequest)
}

func TestDefaultHandlerHealthHeader(t *testing.T) {
	is := is.New(t)
	rec := httptest.NewRecorder()
	(&defaultHttpHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	is.Equal(rec.Header().Get("Application-Status"), "OK")
}
