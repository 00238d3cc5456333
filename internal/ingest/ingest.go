// Package ingest feeds ingest topic events into an engine.
package ingest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/engine"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/memindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/metrics"
)

// Event is the JSON payload of one ingest message.
type Event struct {
	DocID  uint64         `json:"doc_id"`
	Tokens []string       `json:"tokens,omitempty"`
	Text   string         `json:"text,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

func (ev Event) Validate() error {
	if len(ev.Tokens) == 0 && ev.Text == "" {
		return apperrors.Newf(apperrors.ErrInvalidInput, "event for doc %d has neither tokens nor text", ev.DocID)
	}
	return nil
}

func (ev Event) Document() engine.Document {
	return engine.Document{
		ID:     index.DocID(ev.DocID),
		Tokens: ev.Tokens,
		Text:   ev.Text,
		Fields: docstore.Fields(ev.Fields),
	}
}

// EventFor is the inverse of Event.Document, used by publishers.
func EventFor(doc engine.Document) kafka.Event {
	return kafka.Event{
		Key: strconv.FormatUint(uint64(doc.ID), 10),
		Value: Event{
			DocID:  uint64(doc.ID),
			Tokens: doc.Tokens,
			Text:   doc.Text,
			Fields: doc.Fields,
		},
	}
}

// Indexer is the part of engine.Engine the handler needs.
type Indexer interface {
	IndexDocument(ctx context.Context, doc engine.Document) error
}

// Handler returns a MessageHandler that indexes every event. Undecodable
// or invalid events are logged and dropped so they get committed; indexing
// failures are returned so the consumer retries the message and never
// commits past it.
func Handler(ix Indexer, m *metrics.Metrics) kafka.MessageHandler {
	if m == nil {
		m = metrics.New(nil)
	}
	log := logger.WithComponent("ingest")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[Event](value)
		if err == nil {
			err = event.Validate()
		}
		if err != nil {
			m.IngestEventsTotal.WithLabelValues(metrics.StatusSkip).Inc()
			log.Error("dropping ingest event", "error", err, "key", string(key))
			return nil
		}

		start := time.Now()
		if err := ix.IndexDocument(ctx, event.Document()); err != nil {
			m.IngestEventsTotal.WithLabelValues(metrics.StatusError).Inc()
			return fmt.Errorf("indexing document %d: %w", event.DocID, err)
		}
		m.IngestLatency.Observe(time.Since(start).Seconds())
		m.IngestEventsTotal.WithLabelValues(metrics.StatusOK).Inc()
		log.Debug("document ingested", "doc_id", event.DocID)
		return nil
	}
}
