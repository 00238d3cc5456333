// Package index implements the in-memory inverted index: a term-keyed
// collection of posting lists fed one document at a time.
//
// Terms are expected to be normalized by the caller; the index never
// tokenizes, lower-cases or stems.
package index

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Adithya-Monish-Kumar-K/memindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/shardmap"
)

// Doc is a caller-supplied document for batch ingestion.
type Doc struct {
	ID     DocID
	Tokens []string
}

// TermEntry is one term with its postings, as returned by Snapshot.
type TermEntry struct {
	Term     string    `json:"term"`
	Postings []Posting `json:"postings"`
}

type options struct {
	shards   int
	capacity int
}

type Option func(*options)

// WithShards sets the number of independently locked term segments.
func WithShards(n int) Option {
	return func(o *options) { o.shards = n }
}

// WithCapacity pre-sizes the term table for roughly n distinct terms.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// Index maps terms to posting lists. Every Index is independent; there is no
// package level state.
type Index struct {
	postinglists *shardmap.Map[*PostingList]
	logger       *slog.Logger
}

func New(opts ...Option) *Index {
	o := options{shards: shardmap.DefaultShards}
	for _, opt := range opts {
		opt(&o)
	}
	return &Index{
		postinglists: shardmap.New[*PostingList](o.shards, o.capacity),
		logger:       logger.WithComponent("index"),
	}
}

// AddDoc records docID as a member of the posting list of every distinct
// term in tokens, with an empty payload. Posting lists are created on first
// sight of a term. Adding the same docID again overwrites its postings for
// the terms it touches. It returns the number of distinct terms.
func (ix *Index) AddDoc(docID DocID, tokens []string) int {
	seen := make(map[string]struct{}, len(tokens))
	for _, term := range tokens {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		ix.postingListFor(term).UpdatePosting(docID, nil)
	}
	return len(seen)
}

// AddDocPayloads records docID under every term of payloads with the given
// payload. It is the entry point for enrichment passes that compute
// per-term statistics before ingestion.
func (ix *Index) AddDocPayloads(docID DocID, payloads map[string]Payload) int {
	for term, payload := range payloads {
		ix.postingListFor(term).UpdatePosting(docID, payload)
	}
	return len(payloads)
}

// AddDocs ingests docs concurrently with at most workers goroutines.
// Documents touching disjoint terms proceed without coordination.
func (ix *Index) AddDocs(ctx context.Context, docs []Doc, workers int) error {
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, doc := range docs {
		doc := doc
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ix.AddDoc(doc.ID, doc.Tokens)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}
	return nil
}

// PostingList returns the posting list of term, or ErrTermNotFound when no
// document has ever contained it.
func (ix *Index) PostingList(term string) (*PostingList, error) {
	pl, ok := ix.postinglists.Get(term)
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrTermNotFound, "term %q", term)
	}
	return pl, nil
}

// DocIDSet returns the documents containing term. An unknown term yields an
// empty set, never an error.
func (ix *Index) DocIDSet(term string) DocIDSet {
	pl, ok := ix.postinglists.Get(term)
	if !ok {
		return DocIDSet{}
	}
	return pl.DocIDs()
}

// Terms returns every indexed term in ascending order.
func (ix *Index) Terms() []string {
	return ix.postinglists.Keys()
}

func (ix *Index) TermCount() int {
	return ix.postinglists.Len()
}

// Snapshot returns a sorted, deep copy of the whole index.
func (ix *Index) Snapshot() []TermEntry {
	terms := ix.Terms()
	entries := make([]TermEntry, 0, len(terms))
	for _, term := range terms {
		pl, ok := ix.postinglists.Get(term)
		if !ok {
			continue
		}
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: pl.Postings(),
		})
	}
	return entries
}

func (ix *Index) postingListFor(term string) *PostingList {
	pl, created := ix.postinglists.GetOrCreate(term, NewPostingList)
	if created {
		ix.logger.Debug("posting list created", "term", term)
	}
	return pl
}
