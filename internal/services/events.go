package services

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// EventsExchange is the exchange group buy events are published to.
const EventsExchange = "groupbuy"

// Routing keys of published events.
const (
	EventGroupBuyCreated     = "groupbuy.created"
	EventParticipationJoined = "participation.joined"
	EventParticipationLeft   = "participation.left"
)

// EventPublisher delivers domain events to a message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// publishEvent sends a JSON event. Failures are logged and never returned:
// the state change has already been committed.
func publishEvent(publisher EventPublisher, log *logrus.Logger, routingKey string, fields map[string]interface{}) {
	if publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"event":       routingKey,
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		payload[k] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := publisher.Publish(EventsExchange, routingKey, body); err != nil {
		log.Warnf("Failed to publish %s event: %v", routingKey, err)
		return
	}
	log.Debugf("Published %s event", routingKey)
}
