package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// errDeliveryClosed signals that the broker closed the delivery
// stream mid-consume, which happens on broker restarts.
var errDeliveryClosed = errors.New("message channel closed")

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,    // queue name
		c.queueName,    // routing key (same as queue name for direct exchange)
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishAnalysisJob publishes an analysis job for the worker.
func (c *Client) PublishAnalysisJob(ctx context.Context, msg *AnalysisJobMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.InfoContext(ctx, "Published analysis job",
		"job_id", msg.JobID,
		"kind", msg.Kind,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// ConsumeAnalysisJobs delivers queued jobs to the handler until the
// context ends. Messages are acked on success, requeued on handler
// failure and dropped when they cannot be decoded.
func (c *Client) ConsumeAnalysisJobs(ctx context.Context, handler func(context.Context, *AnalysisJobMessage) error) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming analysis jobs", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping job consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errDeliveryClosed
			}

			msg, err := AnalysisJobMessageFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal job", "error", err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := handler(ctx, msg); err != nil {
				slog.ErrorContext(ctx, "Failed to handle job",
					"error", err,
					"job_id", msg.JobID,
					"kind", msg.Kind)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
			slog.InfoContext(ctx, "Analysis job processed", "job_id", msg.JobID, "kind", msg.Kind)
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// exponentialBackoff returns the wait before reconnect attempt n,
// doubling from one second and capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	d := time.Second << attempt
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// isConnectionError reports whether err looks like a broken broker
// connection worth a reconnect, as opposed to a protocol error.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{"connection refused", "connection closed", "EOF", "broken pipe", "connection reset"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// isReconnectable reports whether a consume failure should be
// answered by re-dialing rather than by giving up. A closed delivery
// stream counts: the broker drops it when it goes away.
func isReconnectable(err error) bool {
	return errors.Is(err, errDeliveryClosed) || isConnectionError(err)
}

// ConsumeWithReconnect consumes analysis jobs and survives broker
// restarts: when the stream breaks on a connection failure it
// re-dials with backoff and resumes consuming. It returns when the
// context ends or on a non-connection failure.
func (c *Client) ConsumeWithReconnect(ctx context.Context, url string, handler func(context.Context, *AnalysisJobMessage) error) error {
	for {
		err := c.ConsumeAnalysisJobs(ctx, handler)
		if ctx.Err() != nil {
			return err
		}
		if !isReconnectable(err) {
			return err
		}

		slog.WarnContext(ctx, "Job stream broken, reconnecting", "error", err)
		if err := c.Reconnect(ctx, url); err != nil {
			return err
		}
	}
}

// Reconnect re-dials the broker with exponential backoff until the
// context ends or the connection is restored.
func (c *Client) Reconnect(ctx context.Context, url string) error {
	for attempt := 0; ; attempt++ {
		conn, err := amqp091.Dial(url)
		if err == nil {
			channel, chErr := conn.Channel()
			if chErr == nil {
				c.conn, c.channel = conn, channel
				if err := c.setup(); err != nil {
					return fmt.Errorf("setup after reconnect: %w", err)
				}
				slog.InfoContext(ctx, "AMQP connection restored", "attempts", attempt+1)
				return nil
			}
			conn.Close()
			err = chErr
		}

		if !isConnectionError(err) {
			return fmt.Errorf("reconnect: %w", err)
		}

		wait := exponentialBackoff(attempt)
		slog.WarnContext(ctx, "AMQP reconnect failed, backing off",
			"attempt", attempt+1, "wait", wait, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
