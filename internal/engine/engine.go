// Package engine combines an Index with an optional document store. It owns
// the mapping from caller document IDs to store-assigned IDs, since the two
// identifier spaces are unrelated.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/index"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/memindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/metrics"
)

// FieldText is the stored field that receives Document.Text when the caller
// did not set it in Fields.
const FieldText = "text"

// Document is one unit of ingestion. When Tokens is empty, Text is run
// through the tokenizer instead.
type Document struct {
	ID     index.DocID     `json:"doc_id"`
	Tokens []string        `json:"tokens,omitempty"`
	Text   string          `json:"text,omitempty"`
	Fields docstore.Fields `json:"fields,omitempty"`
}

type Stats struct {
	Terms           int `json:"terms"`
	Documents       int `json:"documents"`
	StoredDocuments int `json:"stored_documents"`
}

type Option func(*Engine)

// WithDocStore retains document content in s. The engine closes s on Close.
func WithDocStore(s docstore.Store) Option {
	return func(e *Engine) { e.store = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

type Engine struct {
	index     *index.Index
	store     docstore.Store
	tokenizer *analysis.Tokenizer
	policy    string
	workers   int
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu       sync.RWMutex
	docs     map[index.DocID]struct{}
	storeIDs map[index.DocID]docstore.ID
}

func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		index: index.New(
			index.WithShards(cfg.Index.Shards),
			index.WithCapacity(cfg.Index.TermCapacity),
		),
		tokenizer: analysis.New(cfg.Analysis),
		policy:    cfg.Index.PayloadPolicy,
		workers:   cfg.Index.BatchWorkers,
		logger:    logger.WithComponent("engine"),
		docs:      make(map[index.DocID]struct{}),
		storeIDs:  make(map[index.DocID]docstore.ID),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.New(nil)
	}
	if e.workers <= 0 {
		e.workers = 1
	}
	return e
}

// IndexDocument stores the document content when a store is configured and
// then records its terms. A store failure leaves the index untouched.
// Indexing the same ID again overwrites its postings for the terms it
// carries and points the ID at the newly stored content.
func (e *Engine) IndexDocument(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.store != nil {
		if err := e.storeContent(ctx, doc); err != nil {
			return err
		}
	}

	var analyzed []analysis.Token
	terms := doc.Tokens
	if len(terms) == 0 && doc.Text != "" {
		analyzed = e.tokenizer.Tokenize(doc.Text)
		terms = analysis.Terms(analyzed)
	}

	var updated int
	switch e.policy {
	case config.PayloadFrequency:
		payloads := make(map[string]index.Payload)
		for term, n := range analysis.Frequencies(terms) {
			payloads[term] = index.Payload{index.MetricFrequency: n}
		}
		updated = e.index.AddDocPayloads(doc.ID, payloads)
	case config.PayloadPositions:
		if analyzed == nil {
			analyzed = make([]analysis.Token, len(terms))
			for i, term := range terms {
				analyzed[i] = analysis.Token{Term: term, Position: i}
			}
			payloads := analysis.TermStats(analyzed)
			for _, p := range payloads {
				delete(p, index.MetricOffsets)
			}
			updated = e.index.AddDocPayloads(doc.ID, payloads)
		} else {
			updated = e.index.AddDocPayloads(doc.ID, analysis.TermStats(analyzed))
		}
	default:
		updated = e.index.AddDoc(doc.ID, terms)
	}

	e.mu.Lock()
	e.docs[doc.ID] = struct{}{}
	e.mu.Unlock()

	e.metrics.DocsIndexedTotal.Inc()
	e.metrics.PostingsUpdatedTotal.Add(float64(updated))
	e.metrics.Terms.Set(float64(e.index.TermCount()))
	e.logger.Debug("document indexed", "doc_id", doc.ID, "terms", updated, "policy", e.policy)
	return nil
}

func (e *Engine) storeContent(ctx context.Context, doc Document) error {
	fields := doc.Fields.Clone()
	if _, ok := fields[FieldText]; !ok && doc.Text != "" {
		fields[FieldText] = doc.Text
	}
	id, err := e.store.AddDoc(ctx, fields)
	if err != nil {
		e.metrics.DocStoreOpsTotal.WithLabelValues("add", metrics.StatusError).Inc()
		return fmt.Errorf("storing document %d: %w", doc.ID, err)
	}
	e.metrics.DocStoreOpsTotal.WithLabelValues("add", metrics.StatusOK).Inc()

	e.mu.Lock()
	prev, replaced := e.storeIDs[doc.ID]
	e.storeIDs[doc.ID] = id
	e.mu.Unlock()
	if replaced {
		e.logger.Debug("document content replaced", "doc_id", doc.ID, "old_store_id", prev, "store_id", id)
	}
	return nil
}

// IndexDocuments indexes docs concurrently and returns the first failure.
func (e *Engine) IndexDocuments(ctx context.Context, docs []Document) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, doc := range docs {
		doc := doc
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return e.IndexDocument(gctx, doc)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("indexing batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("indexing batch: %w", err)
	}
	e.logger.Info("batch indexed", "documents", len(docs), "terms", e.index.TermCount())
	return nil
}

// Lookup returns the documents containing term; empty for an unknown term.
func (e *Engine) Lookup(term string) index.DocIDSet {
	set := e.index.DocIDSet(term)
	if set.Len() == 0 {
		e.metrics.LookupsTotal.WithLabelValues(metrics.ResultMiss).Inc()
	} else {
		e.metrics.LookupsTotal.WithLabelValues(metrics.ResultHit).Inc()
	}
	return set
}

// Postings returns the posting list of term or an error wrapping
// errors.ErrTermNotFound.
func (e *Engine) Postings(term string) (*index.PostingList, error) {
	return e.index.PostingList(term)
}

// Document returns the stored content of docID. It fails with
// errors.ErrDocumentNotFound when no content was retained for docID.
func (e *Engine) Document(ctx context.Context, docID index.DocID) (docstore.Fields, error) {
	e.mu.RLock()
	id, ok := e.storeIDs[docID]
	e.mu.RUnlock()
	if !ok || e.store == nil {
		return nil, apperrors.Newf(apperrors.ErrDocumentNotFound, "doc id %d", docID)
	}
	fields, err := e.store.GetDoc(ctx, id)
	if err != nil {
		e.metrics.DocStoreOpsTotal.WithLabelValues("get", metrics.StatusError).Inc()
		return nil, fmt.Errorf("loading document %d: %w", docID, err)
	}
	e.metrics.DocStoreOpsTotal.WithLabelValues("get", metrics.StatusOK).Inc()
	return fields, nil
}

// Index exposes the underlying index for read access.
func (e *Engine) Index() *index.Index {
	return e.index
}

func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	e.mu.RLock()
	s := Stats{
		Terms:     e.index.TermCount(),
		Documents: len(e.docs),
	}
	e.mu.RUnlock()
	if e.store != nil {
		n, err := e.store.Len(ctx)
		if err != nil {
			return s, fmt.Errorf("counting stored documents: %w", err)
		}
		s.StoredDocuments = n
	}
	return s, nil
}

func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}
