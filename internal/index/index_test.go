package index

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/memindex/pkg/errors"
)

func TestAddDocEstablishesMembership(t *testing.T) {
	ix := New()
	n := ix.AddDoc(7, []string{"hello", "world", "good", "bad"})
	assert.Equal(t, 4, n)

	pl, err := ix.PostingList("hello")
	require.NoError(t, err)
	assert.Equal(t, Payload{}, pl.Payload(7))
	assert.Equal(t, NewDocIDSet(7), ix.DocIDSet("hello"))
}

func TestAddDocDuplicateTokens(t *testing.T) {
	ix := New()
	n := ix.AddDoc(1, []string{"a", "b", "a", "a"})
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, ix.TermCount())
	assert.Equal(t, NewDocIDSet(1), ix.DocIDSet("a"))
}

func TestSharedTerm(t *testing.T) {
	ix := New()
	ix.AddDoc(1, []string{"hello"})
	ix.AddDoc(2, []string{"hello"})

	assert.Equal(t, NewDocIDSet(1, 2), ix.DocIDSet("hello"))
}

func TestUnknownTerm(t *testing.T) {
	ix := New()
	ix.AddDoc(1, []string{"known"})

	set := ix.DocIDSet("nonexistent")
	require.NotNil(t, set)
	assert.Empty(t, set)

	pl, err := ix.PostingList("nonexistent")
	assert.Nil(t, pl)
	assert.ErrorIs(t, err, apperrors.ErrTermNotFound)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReAddOverwrites(t *testing.T) {
	ix := New()
	ix.AddDocPayloads(5, map[string]Payload{"go": {"frequency": 3}})
	ix.AddDoc(5, []string{"go"})

	pl, err := ix.PostingList("go")
	require.NoError(t, err)
	assert.Equal(t, Payload{}, pl.Payload(5))
	assert.Equal(t, 1, pl.Len())
}

func TestMembershipCompleteness(t *testing.T) {
	docs := map[DocID][]string{
		1: {"alpha", "beta", "gamma"},
		2: {"beta", "delta"},
		3: {"gamma", "gamma", "epsilon"},
		4: {},
	}
	ix := New(WithShards(3))
	for id, tokens := range docs {
		ix.AddDoc(id, tokens)
	}
	for id, tokens := range docs {
		for _, term := range tokens {
			assert.True(t, ix.DocIDSet(term).Contains(id), "doc %d missing from %q", id, term)
		}
	}
	assert.Equal(t, []string{"alpha", "beta", "delta", "epsilon", "gamma"}, ix.Terms())
}

func TestTermExistsOnlyAfterDocument(t *testing.T) {
	ix := New()
	assert.Equal(t, 0, ix.TermCount())
	assert.Empty(t, ix.Terms())

	ix.AddDoc(1, nil)
	assert.Equal(t, 0, ix.TermCount())
}

func TestSnapshot(t *testing.T) {
	ix := New()
	ix.AddDocPayloads(2, map[string]Payload{"b": {"frequency": 1}})
	ix.AddDoc(1, []string{"b", "a"})

	snap := ix.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].Term)
	assert.Equal(t, "b", snap[1].Term)
	assert.Equal(t, []Posting{
		{DocID: 1, Payload: Payload{}},
		{DocID: 2, Payload: Payload{"frequency": 1}},
	}, snap[1].Postings)
}

func TestConcurrentAddDoc(t *testing.T) {
	ix := New(WithShards(4))
	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := DocID(w*50 + i)
				ix.AddDoc(id, []string{"shared", fmt.Sprintf("own-%d", id)})
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 800, ix.DocIDSet("shared").Len())
	assert.Equal(t, 801, ix.TermCount())
}

func TestAddDocs(t *testing.T) {
	ix := New()
	docs := make([]Doc, 0, 200)
	for i := 0; i < 200; i++ {
		docs = append(docs, Doc{ID: DocID(i), Tokens: []string{"all", fmt.Sprintf("mod%d", i%5)}})
	}
	require.NoError(t, ix.AddDocs(context.Background(), docs, 8))

	assert.Equal(t, 200, ix.DocIDSet("all").Len())
	assert.Equal(t, 40, ix.DocIDSet("mod3").Len())
}

func TestAddDocsCancelled(t *testing.T) {
	ix := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ix.AddDocs(ctx, []Doc{{ID: 1, Tokens: []string{"x"}}}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkAddDoc(b *testing.B) {
	ix := New()
	tokens := []string{"this", "is", "a", "benchmark", "document", "with", "several", "terms"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.AddDoc(DocID(i), tokens)
	}
}

func BenchmarkDocIDSetParallel(b *testing.B) {
	ix := New()
	for i := 0; i < 10000; i++ {
		ix.AddDoc(DocID(i), []string{"search", "engine", fmt.Sprintf("t%d", i%100)})
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = ix.DocIDSet("t42")
		}
	})
}
