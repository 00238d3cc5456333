package docstore

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/memindex/pkg/errors"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	doc0 := Fields{"title": "Hello Doc", "text": "My text"}
	id, err := store.AddDoc(ctx, doc0)
	require.NoError(t, err)
	assert.Equal(t, ID(0), id)

	got, err := store.GetDoc(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, doc0, got)
}

func TestMemoryStoreMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for want := ID(0); want < 10; want++ {
		id, err := store.AddDoc(ctx, Fields{"n": int(want)})
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.GetDoc(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryStoreOwnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	tags := []string{"go", "index"}
	in := Fields{"tags": tags, "meta": map[string]any{"lang": "en"}}
	id, err := store.AddDoc(ctx, in)
	require.NoError(t, err)

	tags[0] = "mutated"
	in["meta"].(map[string]any)["lang"] = "fr"
	in["new"] = 1

	got, err := store.GetDoc(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Fields{"tags": []string{"go", "index"}, "meta": map[string]any{"lang": "en"}}, got)

	got["tags"].([]string)[1] = "changed"
	again, err := store.GetDoc(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "index"}, again["tags"])
}

func TestMemoryStoreNilFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id, err := store.AddDoc(ctx, nil)
	require.NoError(t, err)

	got, err := store.GetDoc(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Fields{}, got)
}

func TestMemoryStoreConcurrentIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const workers, perWorker = 8, 250
	ids := make(chan ID, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, err := store.AddDoc(ctx, Fields{"i": i})
				if err != nil {
					t.Error(err)
					return
				}
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	all := make([]int, 0, workers*perWorker)
	for id := range ids {
		all = append(all, int(id))
	}
	sort.Ints(all)
	for i, id := range all {
		require.Equal(t, i, id)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
	}{
		{"strings", Fields{"title": "Hello Doc", "text": "My text"}},
		{"scalars", Fields{"n": 7, "ratio": 0.25, "ok": true, "big": int64(1 << 40)}},
		{"slices", Fields{"tags": []string{"a", "b"}, "pos": []int{1, 2, 3}}},
		{"nested", Fields{"meta": map[string]any{"author": "x", "year": 2017}}},
		{"empty", Fields{}},
		{"typed maps", Fields{"counts": map[string]int{"a": 1}, "scores": map[string]float64{"bm25": 1.5}}},
		{"slice of maps", Fields{"items": []map[string]any{{"id": 1, "tags": []string{"x"}}}}},
		{"struct", Fields{"span": span{Start: 3, End: 8}, "spans": []span{{0, 1}}}},
		{"empty slices", Fields{"tags": []string{}, "any": []any{}, "raw": []byte{}, "refs": []*span{}}},
		{"nested empty slice", Fields{"meta": map[string]any{"tags": []string{}}, "list": []any{[]int{}}}},
		{"nil slice", Fields{"tags": []string(nil)}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeFields(tt.fields)
			require.NoError(t, err)
			got, err := DecodeFields(data)
			require.NoError(t, err)
			assert.Equal(t, tt.fields, got)
		})
	}
}

type span struct {
	Start, End int
}

func TestCodecKeepsEmptyAndNilApart(t *testing.T) {
	data, err := EncodeFields(Fields{"empty": []string{}, "nil": []string(nil)})
	require.NoError(t, err)
	got, err := DecodeFields(data)
	require.NoError(t, err)

	assert.NotNil(t, got["empty"])
	assert.Equal(t, []string{}, got["empty"])
	assert.Nil(t, got["nil"])
	assert.IsType(t, []string(nil), got["nil"])
}

func TestCodecDoesNotMutateInput(t *testing.T) {
	in := Fields{"meta": map[string]any{"tags": []string{}}}
	_, err := EncodeFields(in)
	require.NoError(t, err)
	assert.Equal(t, Fields{"meta": map[string]any{"tags": []string{}}}, in)
}

func TestCodecRejectsUnencodable(t *testing.T) {
	_, err := EncodeFields(Fields{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestKeyOrdering(t *testing.T) {
	assert.Less(t, string(Key(1)), string(Key(2)))
	assert.Less(t, string(Key(255)), string(Key(256)))
	assert.Len(t, Key(0), 8)
}
