// Copyright 2026 Pontoon Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package builtin

import (
	"context"
	"database/sql"
	"encoding/json"
	"reflect"

	_ "modernc.org/sqlite"

	"github.com/pontoon-io/pontoon/internal/adapter"
	"github.com/pontoon-io/pontoon/internal/manifest"
	"github.com/pontoon-io/pontoon/pkg/errors"
)

// ErrDocumentNotFound is returned by Get for an unknown collection/id pair.
var ErrDocumentNotFound = &NotFoundError{}

// NotFoundError carries the ERR_NOT_FOUND code across the RPC boundary.
type NotFoundError struct{}

// Error implements the error interface.
func (e *NotFoundError) Error() string { return "document not found" }

// Code returns the machine-readable error code.
func (e *NotFoundError) Code() string { return "ERR_NOT_FOUND" }

const docstoreSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	doc        TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (collection, id)
);
`

func sqliteDocStoreProvider() adapter.Provider {
	return adapter.Provider{
		Manifest: &manifest.Manifest{
			ManifestVersion: manifest.ManifestVersion,
			ID:              "pontoon.docstore.sqlite",
			Name:            "SQLite Document Store",
			Version:         "1.0.0",
			Type:            manifest.TypeCore,
			Implements:      "docstore",
			Capabilities:    []string{manifest.CapabilityRPC},
		},
		New: func(ctx context.Context, settings adapter.Settings, _ adapter.Deps) (adapter.Instance, error) {
			return NewSQLiteDocStore(ctx, settings.String("path", "pontoon.db"))
		},
	}
}

// SQLiteDocStore persists JSON documents in a single sqlite table keyed by
// (collection, id).
type SQLiteDocStore struct {
	db *sql.DB
}

var (
	_ adapter.DocStore = (*SQLiteDocStore)(nil)
	_ adapter.Closer   = (*SQLiteDocStore)(nil)
)

// NewSQLiteDocStore opens (creating if needed) the database at path.
func NewSQLiteDocStore(ctx context.Context, path string) (*SQLiteDocStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "opening sqlite database %s", path)
	}
	if _, err := db.ExecContext(ctx, docstoreSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating documents table")
	}
	return &SQLiteDocStore{db: db}, nil
}

// Put implements adapter.DocStore. An existing document is replaced.
func (s *SQLiteDocStore) Put(ctx context.Context, collection, id string, doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrapf(err, "encoding document %s/%s", collection, id)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, doc, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (collection, id) DO UPDATE SET doc = excluded.doc, updated_at = CURRENT_TIMESTAMP`,
		collection, id, string(data))
	if err != nil {
		return errors.Wrapf(err, "storing document %s/%s", collection, id)
	}
	return nil
}

// Get implements adapter.DocStore.
func (s *SQLiteDocStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading document %s/%s", collection, id)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, errors.Wrapf(err, "decoding document %s/%s", collection, id)
	}
	return doc, nil
}

// Delete implements adapter.DocStore. Deleting an absent document is not
// an error.
func (s *SQLiteDocStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return errors.Wrapf(err, "deleting document %s/%s", collection, id)
	}
	return nil
}

// Query implements adapter.DocStore. Filter matches on top-level field
// equality; a nil filter matches everything. Results are ordered by id.
func (s *SQLiteDocStore) Query(ctx context.Context, collection string, filter map[string]any, limit int) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, errors.Wrapf(err, "querying collection %s", collection)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		if limit > 0 && len(out) >= limit {
			break
		}
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "scanning document row")
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return nil, errors.Wrap(err, "decoding document row")
		}
		if matchesFilter(doc, filter) {
			out = append(out, doc)
		}
	}
	return out, rows.Err()
}

// Close implements adapter.Closer.
func (s *SQLiteDocStore) Close(context.Context) error {
	return s.db.Close()
}

func matchesFilter(doc, filter map[string]any) bool {
	for field, want := range filter {
		got, ok := doc[field]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
