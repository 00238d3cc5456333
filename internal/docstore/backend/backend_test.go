package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore/badgerstore"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore/boltstore"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/config"
)

func TestOpenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.DocStore.Enabled = false

	store, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestOpenEmbedded(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		path    func(t *testing.T) string
		check   func(t *testing.T, s docstore.Store)
	}{
		{
			name:    "memory",
			backend: config.BackendMemory,
			path:    func(*testing.T) string { return "" },
			check: func(t *testing.T, s docstore.Store) {
				assert.IsType(t, &docstore.MemoryStore{}, s)
			},
		},
		{
			name:    "badger",
			backend: config.BackendBadger,
			path:    func(t *testing.T) string { return t.TempDir() },
			check: func(t *testing.T, s docstore.Store) {
				assert.IsType(t, &badgerstore.Store{}, s)
			},
		},
		{
			name:    "bolt",
			backend: config.BackendBolt,
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "docs.db") },
			check: func(t *testing.T, s docstore.Store) {
				assert.IsType(t, &boltstore.Store{}, s)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := config.Default()
			cfg.DocStore.Backend = tt.backend
			cfg.DocStore.Path = tt.path(t)

			store, err := Open(ctx, cfg, nil)
			require.NoError(t, err)
			defer store.Close()
			tt.check(t, store)

			id, err := store.AddDoc(ctx, docstore.Fields{"title": "Hello Doc"})
			require.NoError(t, err)
			assert.Equal(t, docstore.ID(0), id)

			got, err := store.GetDoc(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "Hello Doc", got["title"])
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.DocStore.Backend = "cassandra"

	_, err := Open(context.Background(), cfg, nil)
	assert.Error(t, err)
}
