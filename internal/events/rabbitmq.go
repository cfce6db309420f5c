package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"logistock/internal/domain"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// channel is the subset of *amqp.Channel the publisher needs
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes stock events as persistent JSON messages on a durable queue
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel channel
	queue   string
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewRabbitMQPublisher connects to the broker and declares the queue
func NewRabbitMQPublisher(url, queue string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	logger.Info("RabbitMQ publisher connected", zap.String("queue", queue))

	return &RabbitMQPublisher{
		conn:    conn,
		channel: ch,
		queue:   queue,
		logger:  logger,
	}, nil
}

func newRabbitMQPublisherWithChannel(ch channel, queue string, logger *zap.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{channel: ch, queue: queue, logger: logger}
}

// Publish sends the event through the default exchange, routed by queue name
func (p *RabbitMQPublisher) Publish(ctx context.Context, event domain.StockEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal stock event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Type:         string(event.Type),
			MessageId:    uuid.NewString(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish stock event: %w", err)
	}

	p.logger.Debug("Stock event published",
		zap.String("type", string(event.Type)),
		zap.String("product_id", event.ProductID.String()),
	)
	return nil
}

// Close closes the channel and then the connection
func (p *RabbitMQPublisher) Close() error {
	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
