package gallery

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"clearout/internal/identify/neighbors"
	"clearout/internal/services"
)

// Store manages gallery persistence backed by SQLite. Reads are served from
// an in-process cache filled on first Load; writes invalidate it.
type Store struct {
	db   *sql.DB
	path string

	mu     sync.Mutex
	cache  []neighbors.Entry
	cached bool
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Open initializes or connects to the gallery database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure gallery directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS gallery (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    vec BLOB NOT NULL,
    imported_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gallery_position ON gallery(position);
`
	return s.execWithRetry(ctx, schema)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Put inserts or replaces one gallery entry at the given position.
func (s *Store) Put(ctx context.Context, id string, position int, vec []float32) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("gallery id must not be empty")
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO gallery (id, position, vec, imported_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET position = excluded.position, vec = excluded.vec, imported_at = excluded.imported_at`,
		id, position, encodeVector(vec), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Store) invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.cached = false
	s.mu.Unlock()
}

// Load returns every gallery entry ordered by import position. The first
// call reads the database; later calls reuse the cached entries until a
// write invalidates them, so per-analysis lookups stay cheap.
func (s *Store) Load(ctx context.Context) ([]neighbors.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached {
		return s.cache, nil
	}
	entries, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cache = entries
	s.cached = true
	return entries, nil
}

func (s *Store) loadAll(ctx context.Context) ([]neighbors.Entry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT id, vec FROM gallery ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query gallery: %w", err)
	}
	defer rows.Close()

	var entries []neighbors.Entry
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scan gallery row: %w", err)
		}
		entries = append(entries, neighbors.Entry{ID: id, Vec: decodeVector(blob)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gallery rows: %w", err)
	}
	return entries, nil
}

// Count returns the number of gallery entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gallery`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count gallery: %w", err)
	}
	return count, nil
}

// ImportDir embeds every regular file in dir and stores the results in
// filename order, replacing any previous import. A file lock next to the
// database serializes concurrent imports.
func (s *Store) ImportDir(ctx context.Context, dir string, embedder neighbors.Embedder) (int, error) {
	ctx = ensureContext(ctx)
	if embedder == nil {
		embedder = neighbors.HashEmbedder{}
	}

	lock := flock.New(s.path + ".lock")
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return 0, fmt.Errorf("acquire gallery lock: %w", err)
	}
	if !locked {
		return 0, errors.New("gallery import already in progress")
	}
	defer func() { _ = lock.Unlock() }()

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, services.Wrap(services.ErrNotFound, "gallery", "import", "source directory", err)
		}
		return 0, fmt.Errorf("read gallery dir: %w", err)
	}
	names := make([]string, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if err := s.execWithRetry(ctx, `DELETE FROM gallery`); err != nil {
		return 0, fmt.Errorf("clear gallery: %w", err)
	}
	s.invalidate()

	imported := 0
	for position, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return imported, fmt.Errorf("read gallery file %q: %w", name, err)
		}
		vec, err := embedder.Embed(ctx, data)
		if err != nil {
			return imported, fmt.Errorf("embed gallery file %q: %w", name, err)
		}
		if err := s.Put(ctx, name, position, vec); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, x := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec
}
