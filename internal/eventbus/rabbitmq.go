package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"inventory-backoffice/internal/domain"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	// SaleSubmittedRoutingKey is the topic submitted sales are published under
	SaleSubmittedRoutingKey = "sale.submitted"

	publishTimeout = 5 * time.Second
	confirmBuffer  = 16
)

var ErrPublisherClosed = errors.New("event publisher is closed")

// SaleSubmittedEvent is published once the backend has accepted a sale
type SaleSubmittedEvent struct {
	SaleID      int64     `json:"saleId"`
	SaleNumber  string    `json:"saleNumber"`
	Total       string    `json:"total"`
	Status      string    `json:"status"`
	ItemCount   int       `json:"itemCount"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// NewSaleSubmittedEvent builds the event for a created sale
func NewSaleSubmittedEvent(sale *domain.Sale, at time.Time) SaleSubmittedEvent {
	return SaleSubmittedEvent{
		SaleID:      sale.ID,
		SaleNumber:  sale.SaleNumber,
		Total:       sale.Total.StringFixed(2),
		Status:      sale.Status,
		ItemCount:   len(sale.SaleItems),
		SubmittedAt: at.UTC(),
	}
}

// Publisher publishes domain events
type Publisher interface {
	PublishSaleSubmitted(ctx context.Context, event SaleSubmittedEvent) error
	Close() error
}

// RabbitMQPublisher publishes events to a durable topic exchange with publisher confirms
type RabbitMQPublisher struct {
	mu            sync.Mutex
	exchange      string
	connection    *amqp.Connection
	channel       *amqp.Channel
	notifyConfirm chan amqp.Confirmation
	// deliveryTag is the tag of the last publish; the broker numbers them from 1 per channel
	deliveryTag uint64
	closed      bool
	logger      *zap.Logger
}

// NewRabbitMQPublisher dials url and declares exchange
func NewRabbitMQPublisher(url, exchange string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	logger.Info("Connecting to RabbitMQ", zap.String("exchange", exchange))

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("channel could not be put into confirm mode: %w", err)
	}
	notifyConfirm := ch.NotifyPublish(make(chan amqp.Confirmation, confirmBuffer))

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &RabbitMQPublisher{
		exchange:      exchange,
		connection:    conn,
		channel:       ch,
		notifyConfirm: notifyConfirm,
		logger:        logger,
	}, nil
}

// PublishSaleSubmitted publishes the event and waits for the broker confirm
func (p *RabbitMQPublisher) PublishSaleSubmitted(ctx context.Context, event SaleSubmittedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}

	err = p.channel.Publish(
		p.exchange,
		SaleSubmittedRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    event.SubmittedAt,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	p.deliveryTag++

	return p.awaitConfirmLocked(ctx, p.deliveryTag, publishTimeout)
}

// awaitConfirmLocked waits for the confirm of tag. Confirms of earlier publishes
// that gave up waiting arrive first and are skipped.
func (p *RabbitMQPublisher) awaitConfirmLocked(ctx context.Context, tag uint64, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case confirm, ok := <-p.notifyConfirm:
			if !ok {
				return ErrPublisherClosed
			}
			if confirm.DeliveryTag < tag {
				p.logger.Debug("Skipping late confirm",
					zap.Uint64("tag", confirm.DeliveryTag),
					zap.Bool("ack", confirm.Ack),
				)
				continue
			}
			if confirm.DeliveryTag > tag {
				return fmt.Errorf("confirm for tag %d missed, broker is at %d", tag, confirm.DeliveryTag)
			}
			if !confirm.Ack {
				return errors.New("event was not confirmed by broker")
			}
			p.logger.Debug("Event published",
				zap.String("routing_key", SaleSubmittedRoutingKey),
				zap.Uint64("tag", confirm.DeliveryTag),
			)
			return nil
		case <-timer.C:
			return errors.New("publish confirmation timeout")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close closes the channel and the connection
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.channel.Close(); err != nil {
		p.logger.Warn("Failed to close RabbitMQ channel", zap.Error(err))
	}
	return p.connection.Close()
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct {
	logger *zap.Logger
}

// NewNopPublisher creates a NopPublisher
func NewNopPublisher(logger *zap.Logger) *NopPublisher {
	return &NopPublisher{logger: logger}
}

func (p *NopPublisher) PublishSaleSubmitted(ctx context.Context, event SaleSubmittedEvent) error {
	p.logger.Debug("No event broker configured, dropping event",
		zap.Int64("sale_id", event.SaleID),
	)
	return nil
}

func (p *NopPublisher) Close() error {
	return nil
}
