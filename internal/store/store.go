// Package store is the transaction kernel: SQLite-backed serializable
// mutations over the world's entities. Entities are stored as JSON
// documents with extracted index columns (the secondary indexes the engine
// queries by); every mutation happens inside one Update transaction, and a
// process-wide write gate keeps writers strictly serial on top of SQLite's
// own single-writer rule, so admission order is commit order.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/clawcity/clawcity/internal/world"
)

// Sentinel errors surfaced by typed accessors.
var (
	ErrNotFound          = errors.New("store: not found")
	ErrInsufficientFunds = errors.New("store: insufficient funds")
	ErrDuplicate         = errors.New("store: duplicate")
)

// Store wraps the SQLite connection and the write gate.
type Store struct {
	db *sqlx.DB

	// writeMu serializes Update calls. sync.Mutex wakes waiters in FIFO
	// order once a waiter has blocked, which is the per-agent fairness the
	// dispatcher relies on.
	writeMu sync.Mutex
}

// Open opens or creates the database at path. ":memory:" works for tests.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps :memory: databases coherent and makes the
	// write gate the only concurrency control that matters.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks liveness for the health endpoint.
func (s *Store) Ping() error { return s.db.Ping() }

// Tx is one open transaction. Typed accessors hang off it; the world row is
// cached per transaction so Emit and ledger posts agree on the tick.
type Tx struct {
	tx    *sqlx.Tx
	now   func() time.Time
	world *world.World
}

// Update runs fn inside a serializable write transaction. fn returning an
// error rolls everything back.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.run(fn)
}

// View runs fn inside a read-only snapshot. Writes made through a View
// transaction are a bug; it shares Tx purely for accessor reuse.
func (s *Store) View(fn func(tx *Tx) error) error {
	return s.run(fn)
}

func (s *Store) run(fn func(tx *Tx) error) error {
	raw, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	tx := &Tx{tx: raw, now: time.Now}
	if err := fn(tx); err != nil {
		raw.Rollback()
		return err
	}
	if err := raw.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Now returns the transaction's wall clock in unix milliseconds.
func (tx *Tx) Now() int64 { return tx.now().UnixMilli() }

// NewID mints an entity identifier.
func NewID() string { return uuid.NewString() }

// docRow is the shape every document table scans into.
type docRow struct {
	Doc string `db:"doc"`
}

func getDoc[T any](tx *Tx, query string, args ...any) (*T, error) {
	var row docRow
	if err := tx.tx.Get(&row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var v T
	if err := json.Unmarshal([]byte(row.Doc), &v); err != nil {
		return nil, fmt.Errorf("store: decode doc: %w", err)
	}
	return &v, nil
}

func listDocs[T any](tx *Tx, query string, args ...any) ([]*T, error) {
	var rows []docRow
	if err := tx.tx.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		var v T
		if err := json.Unmarshal([]byte(row.Doc), &v); err != nil {
			return nil, fmt.Errorf("store: decode doc: %w", err)
		}
		out = append(out, &v)
	}
	return out, nil
}

func jsonInto(doc string, out any) error {
	if err := json.Unmarshal([]byte(doc), out); err != nil {
		return fmt.Errorf("store: decode doc: %w", err)
	}
	return nil
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("store: marshal doc: %v", err))
	}
	return string(b)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullUint(p *uint64) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}
