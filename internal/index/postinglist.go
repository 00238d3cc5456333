package index

import (
	"sync"

	"github.com/huandu/skiplist"
)

// Posting is one document's entry in a posting list.
type Posting struct {
	DocID   DocID   `json:"doc_id"`
	Payload Payload `json:"payload"`
}

// PostingList tracks which documents contain one term, together with a
// payload per document. Postings are kept ordered by DocID. It is safe for
// concurrent use; writes to the same list are serialized.
type PostingList struct {
	mu       sync.RWMutex
	postings *skiplist.SkipList // uint64(DocID) -> Payload
}

func NewPostingList() *PostingList {
	return &PostingList{
		postings: skiplist.New(skiplist.Uint64),
	}
}

// UpdatePosting makes docID a member of the list with exactly payload,
// replacing any payload stored earlier. Payloads are never merged.
func (pl *PostingList) UpdatePosting(docID DocID, payload Payload) {
	p := payload.Clone()
	pl.mu.Lock()
	pl.postings.Set(uint64(docID), p)
	pl.mu.Unlock()
}

// Payload returns a copy of the payload stored for docID. A document that
// was never added, or was added without metrics, yields an empty Payload.
func (pl *PostingList) Payload(docID DocID) Payload {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	elem := pl.postings.Get(uint64(docID))
	if elem == nil {
		return Payload{}
	}
	return elem.Value.(Payload).Clone()
}

// DocIDs returns the set of documents that received at least one
// UpdatePosting call.
func (pl *PostingList) DocIDs() DocIDSet {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	set := make(DocIDSet, pl.postings.Len())
	for elem := pl.postings.Front(); elem != nil; elem = elem.Next() {
		set[DocID(elem.Key().(uint64))] = struct{}{}
	}
	return set
}

// SortedDocIDs returns the member documents in ascending order.
func (pl *PostingList) SortedDocIDs() []DocID {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	ids := make([]DocID, 0, pl.postings.Len())
	for elem := pl.postings.Front(); elem != nil; elem = elem.Next() {
		ids = append(ids, DocID(elem.Key().(uint64)))
	}
	return ids
}

func (pl *PostingList) Contains(docID DocID) bool {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return pl.postings.Get(uint64(docID)) != nil
}

func (pl *PostingList) Len() int {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return pl.postings.Len()
}

// Range visits postings in ascending DocID order until fn returns false. The
// list is read-locked for the whole walk, so fn must not update it.
func (pl *PostingList) Range(fn func(docID DocID, payload Payload) bool) {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	for elem := pl.postings.Front(); elem != nil; elem = elem.Next() {
		if !fn(DocID(elem.Key().(uint64)), elem.Value.(Payload).Clone()) {
			return
		}
	}
}

// Postings returns a copy of every posting in ascending DocID order.
func (pl *PostingList) Postings() []Posting {
	out := make([]Posting, 0, pl.Len())
	pl.Range(func(docID DocID, payload Payload) bool {
		out = append(out, Posting{DocID: docID, Payload: payload})
		return true
	})
	return out
}
