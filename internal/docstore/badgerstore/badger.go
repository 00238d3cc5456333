// Package badgerstore implements docstore.Store on an embedded BadgerDB.
//
// Identifiers come from a badger Sequence, which hands out 0, 1, 2, ... and
// never repeats a value, including across restarts. IDs can have gaps: a
// restart skips the unused part of the last leased range, and an AddDoc
// whose write fails still consumes the ID it drew.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore"
	apperrors "github.com/Adithya-Monish-Kumar-K/memindex/pkg/errors"
)

var (
	sequenceKey = []byte("!seq/docs")
	docPrefix   = []byte("doc/")
)

const sequenceBandwidth = 128

// Options configures the underlying database.
type Options struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in RAM; used by tests and throwaway runs.
	InMemory   bool
	SyncWrites bool
	Logger     *slog.Logger
}

type Store struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger *slog.Logger
}

var _ docstore.Store = (*Store)(nil)

func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "badger-docstore")

	bopts := badger.DefaultOptions(opts.Path).
		WithNumVersionsToKeep(1).
		WithSyncWrites(opts.SyncWrites).
		WithLogger(&badgerLogger{logger: logger})
	if opts.InMemory {
		bopts = bopts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", opts.Path, err)
	}
	seq, err := db.GetSequence(sequenceKey, sequenceBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening badger id sequence: %w", err)
	}
	logger.Info("badger docstore opened", "path", opts.Path, "in_memory", opts.InMemory)
	return &Store{db: db, seq: seq, logger: logger}, nil
}

// AddDoc draws the next ID before writing. A failed write leaves that ID
// unused for good; it is never handed out again.
func (s *Store) AddDoc(_ context.Context, fields docstore.Fields) (docstore.ID, error) {
	data, err := docstore.EncodeFields(fields)
	if err != nil {
		return 0, err
	}
	next, err := s.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("%w: assigning badger id: %v", apperrors.ErrBackend, err)
	}
	id := docstore.ID(next)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docKey(id), data)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: writing document %d: %v", apperrors.ErrBackend, id, err)
	}
	return id, nil
}

func (s *Store) GetDoc(_ context.Context, id docstore.ID) (docstore.Fields, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperrors.Newf(apperrors.ErrDocumentNotFound, "store id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading document %d: %v", apperrors.ErrBackend, id, err)
	}
	return docstore.DecodeFields(data)
}

func (s *Store) Len(context.Context) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = docPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: counting documents: %v", apperrors.ErrBackend, err)
	}
	return n, nil
}

// Close releases the unused part of the id lease and closes the database.
func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		s.logger.Error("releasing id sequence", "error", err)
	}
	return s.db.Close()
}

func docKey(id docstore.ID) []byte {
	return append(append([]byte(nil), docPrefix...), docstore.Key(id)...)
}

// badgerLogger routes badger's internal logging through slog. Info and
// debug chatter is demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
