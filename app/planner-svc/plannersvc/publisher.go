package plannersvc

import (
	"encoding/json"
	"fmt"
	logger "log"

	"github.com/nats-io/nats.go"

	"github.com/OpenTransitTools/journeyplanner/business/mcraptor"
)

// JourneyBatch is one completed range query published for downstream
// consumers: the query parameters and every destination's serialized
// journeys.
type JourneyBatch struct {
	Origin    string                                    `json:"origin"`
	StartTime string                                    `json:"start_time"`
	EndTime   string                                    `json:"end_time"`
	Journeys  map[string][]mcraptor.SerializedJourney   `json:"journeys"`
}

// journeyPublicationDestination is where completed query results should be
// sent.
type journeyPublicationDestination interface {
	Publish(batch *JourneyBatch) error
}

// natsJourneyPublicationDestination sends journey batches over nats
type natsJourneyPublicationDestination struct {
	natsConn       *nats.Conn
	journeySubject string
}

func (n *natsJourneyPublicationDestination) Publish(batch *JourneyBatch) error {
	jsonData, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("error marshaling journey batch to json: error:%v", err)
	}
	return n.natsConn.Publish(n.journeySubject, jsonData)
}

// JourneyPublisher takes completed range queries and publishes them on a
// NATS connection as JourneyBatches
type JourneyPublisher struct {
	log         *logger.Logger
	destination journeyPublicationDestination
}

// makeJourneyPublisher builds JourneyPublisher
func makeJourneyPublisher(log *logger.Logger, destination journeyPublicationDestination) *JourneyPublisher {
	return &JourneyPublisher{log: log, destination: destination}
}

// MakeNatsJourneyPublisher builds a JourneyPublisher backed by a NATS
// connection.
func MakeNatsJourneyPublisher(log *logger.Logger, natsConn *nats.Conn, subject string) *JourneyPublisher {
	return makeJourneyPublisher(log, &natsJourneyPublicationDestination{
		natsConn:       natsConn,
		journeySubject: subject,
	})
}

// publishBatch sends one batch, logging rather than failing the request
// when the destination is down.
func (p *JourneyPublisher) publishBatch(batch *JourneyBatch) {
	if err := p.destination.Publish(batch); err != nil {
		p.log.Printf("Error publishing journey batch: error:%v", err)
	}
}
