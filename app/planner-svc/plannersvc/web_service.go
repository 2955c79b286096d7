// Package plannersvc serves range journey queries over http and publishes
// completed results for downstream consumers.
package plannersvc

import (
	"context"
	"encoding/json"
	"errors"
	logger "log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
	"github.com/OpenTransitTools/journeyplanner/business/mcraptor"
)

//defaultHttpHandler simple default http handler for default route
type defaultHttpHandler struct {
}

//ServeHTTP implements defaultHttpHandler http.Handler interface
func (h *defaultHttpHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Application-Status", "OK")
}

// journeyHandler holds the data needed to respond to journey queries.
type journeyHandler struct {
	log           *logger.Logger
	tt            *timetable.Timetable
	defaultRounds int
	publisher     *JourneyPublisher
}

// makeJourneyHandler builds journeyHandler. publisher may be nil when
// result publication is disabled.
func makeJourneyHandler(log *logger.Logger, tt *timetable.Timetable,
	defaultRounds int, publisher *JourneyPublisher) *journeyHandler {
	return &journeyHandler{
		log:           log,
		tt:            tt,
		defaultRounds: defaultRounds,
		publisher:     publisher,
	}
}

// ServeHTTP implements journeyHandler's http.Handler interface: it runs a
// range query for origin, start and end parameters and writes the
// serialized per-destination journeys as json.
func (h *journeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.FormValue("origin")
	start := r.FormValue("start")
	end := r.FormValue("end")
	rounds := h.defaultRounds
	if roundsParam := r.FormValue("rounds"); roundsParam != "" {
		parsed, err := strconv.Atoi(roundsParam)
		if err != nil {
			http.Error(w, "rounds must be an integer", http.StatusBadRequest)
			return
		}
		rounds = parsed
	}

	startSecs, err := timetable.ParseScheduleTime(start)
	if err != nil {
		http.Error(w, "start must be hh:mm:ss", http.StatusBadRequest)
		return
	}
	endSecs, err := timetable.ParseScheduleTime(end)
	if err != nil {
		http.Error(w, "end must be hh:mm:ss", http.StatusBadRequest)
		return
	}

	journeys, err := mcraptor.RunRangeMcRaptor(r.Context(), h.log, h.tt, origin, startSecs, endSecs, rounds)
	switch {
	case errors.Is(err, mcraptor.ErrUnknownStation):
		http.Error(w, "unknown origin station", http.StatusNotFound)
		return
	case errors.Is(err, mcraptor.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.log.Printf("Error running range query: error:%v", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}

	batch := &JourneyBatch{
		Origin:    origin,
		StartTime: start,
		EndTime:   end,
		Journeys:  serializeJourneys(h.tt, journeys),
	}

	jsonData, err := json.Marshal(batch)
	if err != nil {
		h.log.Printf("Error marshaling journeys to json: error:%v", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	byteCount, err := w.Write(jsonData)
	if err != nil {
		h.log.Printf("Error writing json response: %s", err)
		return
	}
	h.log.Printf("wrote %d bytes in json response.", byteCount)

	if h.publisher != nil {
		h.publisher.publishBatch(batch)
	}
}

// serializeJourneys renders every destination's journeys on the external
// contract.
func serializeJourneys(tt *timetable.Timetable, journeys map[string][]mcraptor.Journey) map[string][]mcraptor.SerializedJourney {
	result := make(map[string][]mcraptor.SerializedJourney, len(journeys))
	for destination, list := range journeys {
		serialized := make([]mcraptor.SerializedJourney, 0, len(list))
		for _, j := range list {
			serialized = append(serialized, j.Serialize(tt))
		}
		result[destination] = serialized
	}
	return result
}

//createServer creates configured http.Server for responding to journey requests
func createServer(log *logger.Logger,
	tt *timetable.Timetable,
	defaultRounds int,
	publisher *JourneyPublisher,
	httpPort int) *http.Server {

	journeyService := makeJourneyHandler(log, tt, defaultRounds, publisher)

	r := mux.NewRouter()
	r.Handle("/", &defaultHttpHandler{})
	r.Handle("/journeys", journeyService)
	srv := &http.Server{
		Addr: strings.Join([]string{"0.0.0.0", strconv.Itoa(httpPort)}, ":"),
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      r,
	}
	return srv
}

//RunWebService starts up the journey web service, and terminates on shutdown signal
func RunWebService(log *logger.Logger,
	wg *sync.WaitGroup,
	tt *timetable.Timetable,
	defaultRounds int,
	publisher *JourneyPublisher,
	httpPort int,
	shutdownSignal chan bool,
) {
	wg.Add(1)
	defer wg.Done()
	srv := createServer(log, tt, defaultRounds, publisher, httpPort)
	log.Printf("Starting server on port %d", httpPort)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Printf("server ListenAndServe ended. %s", err)
		}
	}()

	<-shutdownSignal
	log.Printf("ending webservice on shutdown signal")
	shutdownCtx, serverCancelFunc := context.WithTimeout(context.Background(), time.Duration(5)*time.Second)
	defer serverCancelFunc()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("error shutting down webservice, error:%s", err)
	}
}
