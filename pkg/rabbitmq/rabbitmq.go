package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// Exchange and queue carrying group buy events.
const (
	EventsExchange = "groupbuy"
	EventsQueue    = "groupbuy_events"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// amqp channels are not safe for concurrent publishing.
	mu  sync.Mutex
	log *logrus.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ, declares the events topic exchange and binds the
// events queue to every routing key.
func NewClient(cfg Config, log *logrus.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Infof("RabbitMQ client connected, exchange %s and queue %s declared", EventsExchange, EventsQueue)

	return &Client{
		conn:    conn,
		channel: ch,
		log:     log,
	}, nil
}

func declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		EventsExchange, // name
		"topic",        // kind
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", EventsExchange, err)
	}

	_, err = ch.QueueDeclare(
		EventsQueue, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", EventsQueue, err)
	}

	if err := ch.QueueBind(EventsQueue, "#", EventsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", EventsQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to exchange with routingKey.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.channel.Publish(
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.Debugf(" [x] Sent %s event: %s", routingKey, body)
	return nil
}

// ConsumeEvents starts a goroutine that passes every message on the events
// queue to messageHandler. Handled messages are acked; failed ones are
// rejected without requeueing.
func (c *Client) ConsumeEvents(messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		EventsQueue, // queue
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Infof(" [*] Waiting for events on %s", EventsQueue)

	go func() {
		for msg := range msgs {
			if err := messageHandler(msg); err != nil {
				c.log.Errorf("Error processing message %d: %v", msg.DeliveryTag, err)
				// Malformed events would fail forever; drop them.
				if nackErr := msg.Nack(false, false); nackErr != nil {
					c.log.Errorf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.log.Errorf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
			}
		}
		c.log.Info("Event consumer stopped")
	}()

	return nil
}

// LogEvents returns a handler that logs each event with its fields.
func LogEvents(log *logrus.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event map[string]interface{}
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("malformed event %q: %w", msg.RoutingKey, err)
		}
		log.WithFields(logrus.Fields(event)).Infof("Received %s event", msg.RoutingKey)
		return nil
	}
}
