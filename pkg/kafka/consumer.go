// Package kafka provides the ingest topic producer and consumer over
// segmentio/kafka-go. Events travel as JSON; the consumer hands each raw
// message to a MessageHandler and commits it only when the handler succeeds.
// A message that keeps failing stops the consumer instead of being skipped,
// so the group resumes from it once the cause is fixed.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/resilience"
)

// MessageHandler processes one message. A non-nil error leaves the message
// uncommitted.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Retrying wraps h so a failing message is handled again with backoff, up to
// cfg.MaxAttempts times, before its error is returned.
func Retrying(h MessageHandler, cfg resilience.RetryConfig) MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		_, err := resilience.Do(ctx, "handle message", cfg, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, h(ctx, key, value)
		})
		return err
	}
}

// fetchRetry paces refetching while the brokers are unreachable.
var fetchRetry = resilience.RetryConfig{
	InitialDelay:   250 * time.Millisecond,
	MaxDelay:       30 * time.Second,
	JitterFraction: 0.2,
}

type Consumer struct {
	reader  *kafka.Reader
	logger  *slog.Logger
	handler MessageHandler
}

// NewConsumer reads cfg.IngestTopic as member of cfg.ConsumerGroup. handler
// is retried up to cfg.HandlerAttempts times per message.
func NewConsumer(cfg config.KafkaConfig, handler MessageHandler) *Consumer {
	return &Consumer{
		reader:  kafka.NewReader(readerConfig(cfg)),
		logger:  logger.WithComponent("kafka-consumer").With("topic", cfg.IngestTopic),
		handler: Retrying(handler, resilience.RetryConfig{MaxAttempts: cfg.HandlerAttempts, JitterFraction: 0.1}),
	}
}

func readerConfig(cfg config.KafkaConfig) kafka.ReaderConfig {
	start := kafka.LastOffset
	if cfg.FromBeginning {
		start = kafka.FirstOffset
	}
	return kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.IngestTopic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1e3,
		MaxBytes:    10e6,
		StartOffset: start,
	}
}

// Start fetches and dispatches messages until ctx is cancelled, then closes
// the reader. Fetch errors are retried with backoff for as long as ctx
// lives. A message whose handler still fails is left uncommitted and ends
// Start with that error.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.reader.Close()
	failures := 0
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return nil
			}
			failures++
			delay := resilience.Backoff(failures, fetchRetry)
			c.logger.Error("failed to fetch message", "error", err, "failures", failures, "retry_in", delay)
			if err := resilience.Sleep(ctx, delay); err != nil {
				c.logger.Info("consumer stopping", "reason", err)
				return nil
			}
			continue
		}
		failures = 0
		c.logger.Debug("message received",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"value_size", len(msg.Value),
		)
		if err := c.handler(ctx, msg.Key, msg.Value); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return nil
			}
			c.logger.Error("failed to process message, leaving it uncommitted",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			return fmt.Errorf("processing partition %d offset %d: %w", msg.Partition, msg.Offset, err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
