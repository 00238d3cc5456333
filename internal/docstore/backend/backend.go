// Package backend opens the document store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore/badgerstore"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore/boltstore"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore/pgstore"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore/redisstore"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/memindex/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/resilience"
)

// Pinger is implemented by stores that sit behind a network connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Open returns the store named by cfg.DocStore.Backend. A nil store and nil
// error mean the document store is disabled. Closing the returned store also
// closes any client connection Open created for it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (docstore.Store, error) {
	if !cfg.DocStore.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "docstore", "backend", cfg.DocStore.Backend)
	retry := resilience.RetryConfig{MaxAttempts: cfg.DocStore.ConnectAttempts, JitterFraction: 0.1}

	switch cfg.DocStore.Backend {
	case config.BackendMemory:
		return docstore.NewMemoryStore(), nil

	case config.BackendBadger:
		store, err := badgerstore.Open(badgerstore.Options{
			Path:       cfg.DocStore.Path,
			InMemory:   cfg.DocStore.InMemory,
			SyncWrites: cfg.DocStore.SyncWrites,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendBolt:
		store, err := boltstore.Open(cfg.DocStore.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("docstore opened", "path", cfg.DocStore.Path)
		return store, nil

	case config.BackendRedis:
		client, err := resilience.Do(ctx, "redis connect", retry, func(context.Context) (*pkgredis.Client, error) {
			return pkgredis.NewClient(cfg.Redis)
		})
		if err != nil {
			return nil, fmt.Errorf("connecting docstore redis: %w", err)
		}
		logger.Info("docstore connected", "addr", cfg.Redis.Addr)
		return &owned{Store: redisstore.New(client, cfg.DocStore.KeyPrefix), conn: client}, nil

	case config.BackendPostgres:
		client, err := resilience.Do(ctx, "postgres connect", retry, func(ctx context.Context) (*postgres.Client, error) {
			return postgres.New(ctx, cfg.Postgres)
		})
		if err != nil {
			return nil, fmt.Errorf("connecting docstore postgres: %w", err)
		}
		store, err := pgstore.New(ctx, client, cfg.DocStore.Table)
		if err != nil {
			client.Close()
			return nil, err
		}
		logger.Info("docstore connected", "host", cfg.Postgres.Host, "table", cfg.DocStore.Table)
		return &owned{Store: store, conn: client}, nil
	}
	return nil, fmt.Errorf("unknown docstore backend %q", cfg.DocStore.Backend)
}

// owned ties a store to the connection it was opened over.
type owned struct {
	docstore.Store
	conn io.Closer
}

func (o *owned) Ping(ctx context.Context) error {
	if p, ok := o.Store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (o *owned) Close() error {
	err := o.Store.Close()
	if cerr := o.conn.Close(); err == nil {
		err = cerr
	}
	return err
}
