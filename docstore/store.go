// Package docstore - sqlite-backed document store.
// File: docstore/store.go
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"athproof/apperrors"
	"athproof/logger"
)

// ErrNotFound is reported by Get when no document exists at the given key.
var ErrNotFound = errors.New("docstore: document not found")

// ErrDenied is the conventional rejection returned by an Authorizer.
var ErrDenied = errors.New("docstore: write denied by access rules")

// Store persists documents in a single sqlite table and fans writes out to
// open watches. Writes are serialized so every subscription channel observes
// pushes in commit order.
type Store struct {
	db        *sql.DB
	registry  *registry
	authorize Authorizer

	// writeMu orders commit+publish pairs; without it two concurrent writes
	// could publish snapshots out of commit order.
	writeMu sync.Mutex
}

// Open initializes the database connection, creating directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, registry: newRegistry()}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// SetAuthorizer installs the write rules. Must be called before the store is
// shared; the hook is not guarded for concurrent replacement.
func (s *Store) SetAuthorizer(fn Authorizer) {
	s.authorize = fn
}

// Close releases the underlying database handle. Open subscriptions are not
// closed here; their owners close them.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
		PRIMARY KEY (collection, id)
	);`
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// ------------------- reads -------------------

// Get performs a point read.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, error) {
	var data string
	row := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return decodeDocument(id, data)
}

// List returns every document in a collection in insertion order.
func (s *Store) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? ORDER BY created_at, id`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		doc, err := decodeDocument(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ------------------- writes -------------------

// Set writes a document at a fixed key. With merge set, fields absent from
// the payload are preserved from the existing document; without it the
// document is replaced wholesale.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	if err := s.checkWrite(ctx, OpWrite, collection); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	payload := resolveTimestamps(fields)
	if merge {
		existing, err := s.Get(ctx, collection, id)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if err == nil {
			merged := make(map[string]any, len(existing.Fields)+len(payload))
			for k, v := range existing.Fields {
				merged[k] = v
			}
			for k, v := range payload {
				merged[k] = v
			}
			payload = merged
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		collection, id, string(data))
	if err != nil {
		return apperrors.Unavailable("document write failed", err)
	}

	s.publishLocked(ctx, collection, id)
	return nil
}

// Add writes a new document with a generated id and returns the id.
func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := s.checkWrite(ctx, OpWrite, collection); err != nil {
		return "", err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id := uuid.NewString()
	data, err := json.Marshal(resolveTimestamps(fields))
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", collection, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)`,
		collection, id, string(data))
	if err != nil {
		return "", apperrors.Unavailable("document write failed", err)
	}

	s.publishLocked(ctx, collection, id)
	return id, nil
}

// Update merges fields into an existing document. Updating a missing
// document reports ErrNotFound.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := s.checkWrite(ctx, OpWrite, collection); err != nil {
		return err
	}
	if _, err := s.Get(ctx, collection, id); err != nil {
		return err
	}
	return s.setUnchecked(ctx, collection, id, fields)
}

// setUnchecked is Set without re-running authorization, for internal reuse.
func (s *Store) setUnchecked(ctx context.Context, collection, id string, fields map[string]any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	merged := make(map[string]any, len(existing.Fields)+len(fields))
	for k, v := range existing.Fields {
		merged[k] = v
	}
	for k, v := range resolveTimestamps(fields) {
		merged[k] = v
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE documents SET data = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE collection = ? AND id = ?`,
		string(data), collection, id)
	if err != nil {
		return apperrors.Unavailable("document write failed", err)
	}

	s.publishLocked(ctx, collection, id)
	return nil
}

// Delete removes a document. Deleting a missing document is a no-op.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.checkWrite(ctx, OpDelete, collection); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return apperrors.Unavailable("document delete failed", err)
	}

	s.publishLocked(ctx, collection, id)
	return nil
}

func (s *Store) checkWrite(ctx context.Context, op Op, collection string) error {
	if s.authorize == nil {
		return nil
	}
	if err := s.authorize(ActorRole(ctx), op, collection); err != nil {
		logger.Warn.Printf("[checkWrite] Rejected %v on %s for role=%q: %v",
			op, collection, ActorRole(ctx), err)
		return apperrors.Permission("write to "+collection+" was rejected", err)
	}
	return nil
}

// ------------------- watches -------------------

// WatchCollection opens a collection watch. The current contents are pushed
// immediately, then a fresh snapshot follows every committed write. writeMu
// is held so the initial snapshot cannot land after a newer one.
func (s *Store) WatchCollection(collection string) *Subscription {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sub := s.registry.attachCollection(collection)
	docs, err := s.List(context.Background(), collection)
	if err != nil {
		logger.Error.Printf("[WatchCollection] Initial snapshot failed for %s: %v", collection, err)
	}
	sub.deliver(Snapshot{Docs: docs})
	return sub
}

// WatchDocument opens a single-document watch with the same initial-snapshot
// behaviour; Exists is false while the document is absent.
func (s *Store) WatchDocument(collection, id string) *Subscription {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sub := s.registry.attachDocument(collection, id)
	snap := Snapshot{}
	doc, err := s.Get(context.Background(), collection, id)
	if err == nil {
		snap.Doc = doc
		snap.Exists = true
	} else if !errors.Is(err, ErrNotFound) {
		logger.Error.Printf("[WatchDocument] Initial snapshot failed for %s/%s: %v", collection, id, err)
	}
	sub.deliver(snap)
	return sub
}

// publishLocked pushes fresh snapshots after a committed write. Callers hold
// writeMu, which is what keeps per-channel push order equal to commit order.
func (s *Store) publishLocked(ctx context.Context, collection, id string) {
	docs, err := s.List(ctx, collection)
	if err != nil {
		logger.Error.Printf("[publishLocked] Snapshot read failed for %s: %v", collection, err)
		return
	}
	s.registry.publishCollection(collection, Snapshot{Docs: docs})

	snap := Snapshot{}
	if doc, err := s.Get(ctx, collection, id); err == nil {
		snap.Doc = doc
		snap.Exists = true
	}
	s.registry.publishDocument(collection, id, snap)
}

// ------------------- helpers -------------------

func decodeDocument(id, data string) (Document, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return Document{ID: id, Fields: fields}, nil
}

// resolveTimestamps copies the field map, replacing the ServerTimestamp
// sentinel with the store's clock.
func resolveTimestamps(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for k, v := range fields {
		if _, ok := v.(serverTimestampSentinel); ok {
			out[k] = now
			continue
		}
		out[k] = v
	}
	return out
}
