// Package docstore keeps the canonical copy of ingested document content,
// addressed by identifiers the store assigns itself.
//
// Identifiers start at 0 and grow by one per AddDoc; callers never choose
// them. They live in their own space (ID) and are unrelated to the
// caller-supplied index.DocID. MemoryStore is the in-process store; the
// sub-packages provide the same contract over embedded and remote
// key-value backends.
package docstore

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/clone"
)

// ID is a store-assigned document identifier.
type ID uint64

// Fields is the content of one document: an arbitrary field name to value
// mapping.
type Fields map[string]any

// Store is the contract shared by every backend.
type Store interface {
	// AddDoc stores a copy of fields and returns its newly assigned ID.
	AddDoc(ctx context.Context, fields Fields) (ID, error)
	// GetDoc returns the fields stored under id, or an error wrapping
	// errors.ErrDocumentNotFound when id was never assigned.
	GetDoc(ctx context.Context, id ID) (Fields, error)
	// Len returns the number of stored documents.
	Len(ctx context.Context) (int, error)
	Close() error
}

// Clone returns a deep copy of f. Cloning a nil Fields yields an empty one.
func (f Fields) Clone() Fields {
	return Fields(clone.Map(f))
}
