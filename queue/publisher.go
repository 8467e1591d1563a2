package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/demeter/utils"
)

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends request events to a durable queue as persistent JSON messages.
// Failures are logged and never reach the caller.
type Publisher struct {
	queue string
	conn  *amqp.Connection
	now   func() time.Time

	mu sync.Mutex
	ch channel
}

// NewPublisher dials url and declares queueName (durable).
func NewPublisher(url, queueName string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	p := newPublisher(ch, queueName)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, queueName string) *Publisher {
	return &Publisher{queue: queueName, ch: ch, now: time.Now}
}

// Notify publishes request.* events and ignores the rest.
func (p *Publisher) Notify(event string, data interface{}) {
	if !forKitchen(event) {
		return
	}
	if err := p.Publish(context.Background(), event, data); err != nil {
		utils.ErrorLogger.WithError(err).WithField("event", event).Error("kitchen publish failed")
	}
}

func (p *Publisher) Publish(ctx context.Context, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	now := p.now().UTC()
	body, err := json.Marshal(KitchenEvent{
		Event:       event,
		Payload:     payload,
		PublishedAt: now.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    now,
			Type:         event,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{"event": event, "queue": p.queue}).Debug("kitchen event published")
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
