// Package pgstore implements docstore.Store on a PostgreSQL table. A
// sequence starting at 0 hands out identifiers, so concurrent writers from
// several processes never collide.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore"
	apperrors "github.com/Adithya-Monish-Kumar-K/memindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/postgres"
)

var validTable = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

type Store struct {
	client *postgres.Client
	table  string

	insertSQL string
	selectSQL string
	countSQL  string
}

var _ docstore.Store = (*Store)(nil)

// New creates the table and its sequence when missing.
func New(ctx context.Context, client *postgres.Client, table string) (*Store, error) {
	if !validTable.MatchString(table) {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "table name %q", table)
	}
	seq := table + "_id_seq"
	err := client.Migrate(ctx,
		fmt.Sprintf(`CREATE SEQUENCE IF NOT EXISTS %s MINVALUE 0 START WITH 0`, seq),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id         BIGINT PRIMARY KEY,
			fields     BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, table),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: preparing table %s: %v", apperrors.ErrBackend, table, err)
	}
	return &Store{
		client:    client,
		table:     table,
		insertSQL: fmt.Sprintf(`INSERT INTO %s (id, fields) VALUES (nextval('%s'), $1) RETURNING id`, table, seq),
		selectSQL: fmt.Sprintf(`SELECT fields FROM %s WHERE id = $1`, table),
		countSQL:  fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table),
	}, nil
}

func (s *Store) AddDoc(ctx context.Context, fields docstore.Fields) (docstore.ID, error) {
	data, err := docstore.EncodeFields(fields)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := s.client.DB.QueryRowContext(ctx, s.insertSQL, data).Scan(&id); err != nil {
		return 0, fmt.Errorf("%w: inserting document: %v", apperrors.ErrBackend, err)
	}
	return docstore.ID(id), nil
}

func (s *Store) GetDoc(ctx context.Context, id docstore.ID) (docstore.Fields, error) {
	var data []byte
	err := s.client.DB.QueryRowContext(ctx, s.selectSQL, int64(id)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.ErrDocumentNotFound, "store id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading document %d: %v", apperrors.ErrBackend, id, err)
	}
	return docstore.DecodeFields(data)
}

func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.client.DB.QueryRowContext(ctx, s.countSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting documents: %v", apperrors.ErrBackend, err)
	}
	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close leaves the shared pool open; its owner closes it.
func (s *Store) Close() error {
	return nil
}

// Drop removes the table and its sequence.
func (s *Store) Drop(ctx context.Context) error {
	return s.client.Migrate(ctx,
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.table),
		fmt.Sprintf(`DROP SEQUENCE IF EXISTS %s_id_seq`, s.table),
	)
}
