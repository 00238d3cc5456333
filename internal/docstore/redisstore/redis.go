// Package redisstore implements docstore.Store on Redis. Documents live in a
// single hash; identifiers come from INCR on a counter key, which is the one
// atomic increment point shared by every writer.
package redisstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore"
	apperrors "github.com/Adithya-Monish-Kumar-K/memindex/pkg/errors"
	pkgredis "github.com/Adithya-Monish-Kumar-K/memindex/pkg/redis"
)

type Store struct {
	client  *pkgredis.Client
	seqKey  string
	docsKey string
}

var _ docstore.Store = (*Store)(nil)

// New returns a Store keeping its keys under prefix.
func New(client *pkgredis.Client, prefix string) *Store {
	return &Store{
		client:  client,
		seqKey:  prefix + "docs:seq",
		docsKey: prefix + "docs",
	}
}

func (s *Store) AddDoc(ctx context.Context, fields docstore.Fields) (docstore.ID, error) {
	data, err := docstore.EncodeFields(fields)
	if err != nil {
		return 0, err
	}
	n, err := s.client.Incr(ctx, s.seqKey)
	if err != nil {
		return 0, fmt.Errorf("%w: assigning redis id: %v", apperrors.ErrBackend, err)
	}
	id := docstore.ID(n - 1)
	if err := s.client.HSet(ctx, s.docsKey, field(id), data); err != nil {
		return 0, fmt.Errorf("%w: writing document %d: %v", apperrors.ErrBackend, id, err)
	}
	return id, nil
}

func (s *Store) GetDoc(ctx context.Context, id docstore.ID) (docstore.Fields, error) {
	data, err := s.client.HGet(ctx, s.docsKey, field(id))
	if pkgredis.IsNilError(err) {
		return nil, apperrors.Newf(apperrors.ErrDocumentNotFound, "store id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading document %d: %v", apperrors.ErrBackend, id, err)
	}
	return docstore.DecodeFields(data)
}

func (s *Store) Len(ctx context.Context) (int, error) {
	n, err := s.client.HLen(ctx, s.docsKey)
	if err != nil {
		return 0, fmt.Errorf("%w: counting documents: %v", apperrors.ErrBackend, err)
	}
	return int(n), nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close leaves the shared client open; its owner closes it.
func (s *Store) Close() error {
	return nil
}

// Drop removes every key owned by the store.
func (s *Store) Drop(ctx context.Context) error {
	return s.client.Del(ctx, s.seqKey, s.docsKey)
}

func field(id docstore.ID) string {
	return strconv.FormatUint(uint64(id), 10)
}
