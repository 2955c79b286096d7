package feedmanager

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestFeedFileParserTypedGetters(t *testing.T) {
	is := is.New(t)
	csv := "trip_id,stop_sequence,departure_time,note\n" +
		"T1,3,08:15:30,hello\n"
	parser, err := makeFeedFileParser(strings.NewReader(csv), "stop_times.txt")
	is.NoErr(err)
	is.NoErr(parser.nextLine())

	is.Equal(parser.getString("trip_id", false), "T1")
	is.Equal(parser.getInt("stop_sequence", false), 3)
	is.Equal(parser.getScheduleTime("departure_time"), 8*3600+15*60+30)
	is.NoErr(parser.getError())

	// optional missing column is quiet, required one is not
	is.Equal(parser.getString("shape_id", true), "")
	is.NoErr(parser.getError())
	is.Equal(parser.getString("route_id", false), "")
	if parser.getError() == nil {
		t.Error("expected error for missing required header")
	}
}

func TestFeedFileParserStripsBOM(t *testing.T) {
	is := is.New(t)
	csv := "\uFEFFagency_id,agency_name\nNS,NS Trains\n"
	parser, err := makeFeedFileParser(strings.NewReader(csv), "agency.txt")
	is.NoErr(err)
	is.NoErr(parser.nextLine())
	is.Equal(parser.getString("agency_id", false), "NS")
}

func TestFeedFileParserBadClock(t *testing.T) {
	is := is.New(t)
	csv := "departure_time\nnot-a-time\n"
	parser, err := makeFeedFileParser(strings.NewReader(csv), "stop_times.txt")
	is.NoErr(err)
	is.NoErr(parser.nextLine())
	parser.getScheduleTime("departure_time")
	if parser.getError() == nil {
		t.Error("expected error for malformed clock value")
	}
}

func TestCalendarActiveOn(t *testing.T) {
	row := calendarRow{
		serviceId: "WK",
		startDate: 20250401,
		endDate:   20250430,
	}
	row.weekdays[1] = true // monday

	tests := []struct {
		name    string
		date    int
		weekday int
		want    bool
	}{
		{name: "monday inside range", date: 20250407, weekday: 1, want: true},
		{name: "tuesday inside range", date: 20250408, weekday: 2, want: false},
		{name: "monday before range", date: 20250331, weekday: 1, want: false},
		{name: "monday after range", date: 20250505, weekday: 1, want: false},
		{name: "boundary start date", date: 20250401, weekday: 1, want: true},
		{name: "boundary end date", date: 20250430, weekday: 1, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := row.activeOn(tt.date, tt.weekday); got != tt.want {
				t.Errorf("activeOn(%d, %d) = %v, want %v", tt.date, tt.weekday, got, tt.want)
			}
		})
	}
}

func TestTripHint(t *testing.T) {
	tests := []struct {
		name      string
		shortName string
		headsign  string
		want      int
	}{
		{name: "numeric short name", shortName: "950", headsign: "Intercity Direct", want: 950},
		{name: "digits in headsign", shortName: "", headsign: "Sprinter 4312 Uitgeest", want: 4312},
		{name: "short name wins", shortName: "951", headsign: "Sprinter 4312", want: 951},
		{name: "nothing numeric", shortName: "", headsign: "Sprinter", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := tripRow{shortName: tt.shortName, headsign: tt.headsign}
			if got := trip.hint(); got != tt.want {
				t.Errorf("hint() = %d, want %d", got, tt.want)
			}
		})
	}
}
