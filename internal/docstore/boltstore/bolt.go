// Package boltstore implements docstore.Store on a single bbolt file. IDs
// come from the bucket sequence, which bbolt persists in the same
// transaction as the document.
package boltstore

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore"
	apperrors "github.com/Adithya-Monish-Kumar-K/memindex/pkg/errors"
)

var bucketDocs = []byte("documents")

type Store struct {
	db *bbolt.DB
}

var _ docstore.Store = (*Store)(nil)

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketDocs); err != nil {
			return fmt.Errorf("creating bucket %s: %w", bucketDocs, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// AddDoc stores fields under NextSequence()-1, so the first document gets 0.
func (s *Store) AddDoc(_ context.Context, fields docstore.Fields) (docstore.ID, error) {
	data, err := docstore.EncodeFields(fields)
	if err != nil {
		return 0, err
	}
	var id docstore.ID
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocs)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id = docstore.ID(seq - 1)
		return b.Put(docstore.Key(id), data)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: writing document: %v", apperrors.ErrBackend, err)
	}
	return id, nil
}

func (s *Store) GetDoc(_ context.Context, id docstore.ID) (docstore.Fields, error) {
	var fields docstore.Fields
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get(docstore.Key(id))
		if data == nil {
			return apperrors.Newf(apperrors.ErrDocumentNotFound, "store id %d", id)
		}
		var err error
		fields, err = docstore.DecodeFields(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func (s *Store) Len(context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketDocs).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
