// Package timetabledb records built timetables in a database and loads them
// back, so query services can share one ingested timetable without reading
// feed files.
package timetabledb

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
)

// stationRecord is the station table row form of a timetable.Station.
type stationRecord struct {
	Pos       int    `db:"pos"`
	StationId string `db:"station_id"`
	Name      string `db:"name"`
}

// stopRecord is the stop table row form of a timetable.Stop.
type stopRecord struct {
	Pos        int    `db:"pos"`
	StopId     string `db:"stop_id"`
	Name       string `db:"name"`
	StationPos int    `db:"station_pos"`
}

// tripRecord is the trip table row form of a timetable.Trip.
type tripRecord struct {
	Pos      int    `db:"pos"`
	TripId   string `db:"trip_id"`
	Headsign string `db:"headsign"`
	Hint     int    `db:"hint"`
}

// tripStopTimeRecord is the trip_stop_time table row form of one
// timetable.TripStopTime.
type tripStopTimeRecord struct {
	TripPos       int     `db:"trip_pos"`
	StopSequence  int     `db:"stop_sequence"`
	StopPos       int     `db:"stop_pos"`
	ArrivalTime   int     `db:"arrival_time"`
	DepartureTime int     `db:"departure_time"`
	Fare          float64 `db:"fare"`
}

// transferRecord is the transfer table row form of a timetable.Transfer.
type transferRecord struct {
	FromStopPos int `db:"from_stop_pos"`
	ToStopPos   int `db:"to_stop_pos"`
	Layover     int `db:"layover"`
}

// Record replaces any stored timetable with tt inside one transaction.
func Record(tx *sqlx.Tx, tt *timetable.Timetable) error {
	for _, table := range []string{"transfer", "trip_stop_time", "trip", "stop", "station", "timetable_meta"} {
		if _, err := tx.Exec("delete from " + table); err != nil {
			return fmt.Errorf("clearing table %s: %w", table, err)
		}
	}

	statementString := tx.Rebind("insert into timetable_meta (transfer_cost) values (?)")
	if _, err := tx.Exec(statementString, tt.TransferCost); err != nil {
		return fmt.Errorf("recording timetable meta: %w", err)
	}
	if err := recordStations(tx, tt); err != nil {
		return err
	}
	if err := recordStops(tx, tt); err != nil {
		return err
	}
	if err := recordTrips(tx, tt); err != nil {
		return err
	}
	return recordTransfers(tx, tt)
}

func recordStations(tx *sqlx.Tx, tt *timetable.Timetable) error {
	records := make([]stationRecord, 0, len(tt.Stations))
	for pos, station := range tt.Stations {
		records = append(records, stationRecord{Pos: pos, StationId: station.ID, Name: station.Name})
	}
	statementString := "insert into station ( " +
		"pos, " +
		"station_id, " +
		"name) " +
		"values (" +
		":pos, " +
		":station_id, " +
		":name)"
	statementString = tx.Rebind(statementString)
	_, err := tx.NamedExec(statementString, records)
	return err
}

func recordStops(tx *sqlx.Tx, tt *timetable.Timetable) error {
	records := make([]stopRecord, 0, len(tt.Stops))
	for pos, stop := range tt.Stops {
		records = append(records, stopRecord{Pos: pos, StopId: stop.ID, Name: stop.Name, StationPos: stop.Station})
	}
	statementString := "insert into stop ( " +
		"pos, " +
		"stop_id, " +
		"name, " +
		"station_pos) " +
		"values (" +
		":pos, " +
		":stop_id, " +
		":name, " +
		":station_pos)"
	statementString = tx.Rebind(statementString)
	_, err := tx.NamedExec(statementString, records)
	return err
}

func recordTrips(tx *sqlx.Tx, tt *timetable.Timetable) error {
	trips := make([]tripRecord, 0, len(tt.Trips))
	var stopTimes []tripStopTimeRecord
	for pos, trip := range tt.Trips {
		trips = append(trips, tripRecord{Pos: pos, TripId: trip.ID, Headsign: trip.Headsign, Hint: trip.Hint})
		for seq, st := range trip.StopTimes {
			stopTimes = append(stopTimes, tripStopTimeRecord{
				TripPos:       pos,
				StopSequence:  seq,
				StopPos:       st.Stop,
				ArrivalTime:   st.Arrival,
				DepartureTime: st.Departure,
				Fare:          st.Fare,
			})
		}
	}
	statementString := "insert into trip ( " +
		"pos, " +
		"trip_id, " +
		"headsign, " +
		"hint) " +
		"values (" +
		":pos, " +
		":trip_id, " +
		":headsign, " +
		":hint)"
	statementString = tx.Rebind(statementString)
	if _, err := tx.NamedExec(statementString, trips); err != nil {
		return fmt.Errorf("recording trips: %w", err)
	}

	statementString = "insert into trip_stop_time ( " +
		"trip_pos, " +
		"stop_sequence, " +
		"stop_pos, " +
		"arrival_time, " +
		"departure_time, " +
		"fare) " +
		"values (" +
		":trip_pos, " +
		":stop_sequence, " +
		":stop_pos, " +
		":arrival_time, " +
		":departure_time, " +
		":fare)"
	statementString = tx.Rebind(statementString)
	_, err := tx.NamedExec(statementString, stopTimes)
	return err
}

func recordTransfers(tx *sqlx.Tx, tt *timetable.Timetable) error {
	if len(tt.Transfers) == 0 {
		return nil
	}
	records := make([]transferRecord, 0, len(tt.Transfers))
	for _, transfer := range tt.Transfers {
		records = append(records, transferRecord{FromStopPos: transfer.From, ToStopPos: transfer.To, Layover: transfer.Layover})
	}
	statementString := "insert into transfer ( " +
		"from_stop_pos, " +
		"to_stop_pos, " +
		"layover) " +
		"values (" +
		":from_stop_pos, " +
		":to_stop_pos, " +
		":layover)"
	statementString = tx.Rebind(statementString)
	_, err := tx.NamedExec(statementString, records)
	return err
}

// Load retrieves the stored timetable and reassembles it, regrouping routes
// and revalidating the structural invariants.
func Load(db *sqlx.DB) (*timetable.Timetable, error) {
	var transferCost int
	if err := db.Get(&transferCost, "select transfer_cost from timetable_meta limit 1"); err != nil {
		return nil, fmt.Errorf("no stored timetable: %w", err)
	}

	var stationRecords []stationRecord
	if err := db.Select(&stationRecords, "select * from station order by pos"); err != nil {
		return nil, fmt.Errorf("loading stations: %w", err)
	}
	var stopRecords []stopRecord
	if err := db.Select(&stopRecords, "select * from stop order by pos"); err != nil {
		return nil, fmt.Errorf("loading stops: %w", err)
	}
	var tripRecords []tripRecord
	if err := db.Select(&tripRecords, "select * from trip order by pos"); err != nil {
		return nil, fmt.Errorf("loading trips: %w", err)
	}
	var stopTimeRecords []tripStopTimeRecord
	if err := db.Select(&stopTimeRecords, "select * from trip_stop_time order by trip_pos, stop_sequence"); err != nil {
		return nil, fmt.Errorf("loading trip stop times: %w", err)
	}
	var transferRecords []transferRecord
	if err := db.Select(&transferRecords, "select * from transfer"); err != nil {
		return nil, fmt.Errorf("loading transfers: %w", err)
	}

	stations := make([]timetable.Station, len(stationRecords))
	for i, r := range stationRecords {
		stations[i] = timetable.Station{ID: r.StationId, Name: r.Name}
	}
	stops := make([]timetable.Stop, len(stopRecords))
	for i, r := range stopRecords {
		stops[i] = timetable.Stop{ID: r.StopId, Name: r.Name, Station: r.StationPos}
		stations[r.StationPos].Stops = append(stations[r.StationPos].Stops, i)
	}
	trips := make([]timetable.Trip, len(tripRecords))
	for i, r := range tripRecords {
		trips[i] = timetable.Trip{ID: r.TripId, Headsign: r.Headsign, Hint: r.Hint}
	}
	for _, r := range stopTimeRecords {
		trips[r.TripPos].StopTimes = append(trips[r.TripPos].StopTimes, timetable.TripStopTime{
			Stop:      r.StopPos,
			Arrival:   r.ArrivalTime,
			Departure: r.DepartureTime,
			Fare:      r.Fare,
		})
	}
	transfers := make([]timetable.Transfer, len(transferRecords))
	for i, r := range transferRecords {
		transfers[i] = timetable.Transfer{From: r.FromStopPos, To: r.ToStopPos, Layover: r.Layover}
	}

	return timetable.Restore(stations, stops, trips, transfers, transferCost)
}
