// Package queue implements the payout re-dispatch queue over RabbitMQ.
// Messages carry just the campaign ID; the worker re-derives everything else
// from the ledger so redelivered messages are harmless.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	portsqueue "github.com/promopay/promopay_backend/internal/core/ports/queue"
)

// retryMessage is the wire format on the payout retry queue.
type retryMessage struct {
	CampaignID string `json:"campaignID"`
}

type RabbitMQRetryQueue struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
}

// NewRabbitMQRetryQueue connects, declares the durable retry queue and
// returns a publisher/consumer over it.
func NewRabbitMQRetryQueue(url, queueName string) (*RabbitMQRetryQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	return &RabbitMQRetryQueue{
		conn:      conn,
		channel:   channel,
		queueName: queueName,
	}, nil
}

var _ portsqueue.PayoutRetryQueue = (*RabbitMQRetryQueue)(nil)

// PublishRetry enqueues a campaign whose payout dispatch failed.
func (q *RabbitMQRetryQueue) PublishRetry(ctx context.Context, campaignID string) error {
	body, err := json.Marshal(retryMessage{CampaignID: campaignID})
	if err != nil {
		return fmt.Errorf("failed to encode retry message: %w", err)
	}

	err = q.channel.PublishWithContext(ctx,
		"",          // default exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish retry for campaign %s: %w", campaignID, err)
	}
	return nil
}

// Consume delivers queued campaign IDs to handle until ctx is cancelled.
// Handler errors leave the message unacknowledged so the broker redelivers.
func (q *RabbitMQRetryQueue) Consume(ctx context.Context, logger *slog.Logger, handle func(ctx context.Context, campaignID string) error) error {
	deliveries, err := q.channel.Consume(
		q.queueName,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming %s: %w", q.queueName, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", q.queueName)
			}

			var msg retryMessage
			if err := json.Unmarshal(delivery.Body, &msg); err != nil {
				logger.Error("Dropping malformed retry message", slog.String("error", err.Error()))
				_ = delivery.Reject(false)
				continue
			}

			if err := handle(ctx, msg.CampaignID); err != nil {
				logger.Error("Payout retry failed, requeueing",
					slog.String("campaign_id", msg.CampaignID),
					slog.String("error", err.Error()),
				)
				_ = delivery.Nack(false, true)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

// Close releases the channel and connection.
func (q *RabbitMQRetryQueue) Close() error {
	if err := q.channel.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}
