package store

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"

	"github.com/clawcity/clawcity/internal/world"
)

// World returns the singleton row, cached for the transaction's lifetime so
// Emit and ledger posts stamp one consistent tick.
func (tx *Tx) World() (*world.World, error) {
	if tx.world != nil {
		return tx.world, nil
	}
	w, err := getDoc[world.World](tx, `SELECT doc FROM worlds WHERE id = 1`)
	if err != nil {
		return nil, err
	}
	tx.world = w
	return w, nil
}

// SaveWorld persists the singleton. The caller is the tick pipeline or the
// admin pause/resume path; nothing else writes this row.
func (tx *Tx) SaveWorld(w *world.World) error {
	_, err := tx.tx.Exec(`UPDATE worlds SET tick = ?, doc = ? WHERE id = 1`,
		int64(w.Tick), mustJSON(w))
	if err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	tx.world = w
	return nil
}

// InitWorld inserts the singleton if missing. Returns true when this call
// created it (first boot).
func (tx *Tx) InitWorld(w *world.World) (bool, error) {
	res, err := tx.tx.Exec(
		`INSERT INTO worlds (id, tick, doc) VALUES (1, ?, ?) ON CONFLICT (id) DO NOTHING`,
		int64(w.Tick), mustJSON(w))
	if err != nil {
		return false, fmt.Errorf("init world: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// WriteSnapshot stores an lz4-compressed world snapshot keyed by tick, with
// a blake3 hash of the raw bytes for integrity checks.
func (tx *Tx) WriteSnapshot(tick uint64, raw []byte) error {
	buf := make([]byte, lz4.CompressBlockBound(len(raw)))
	n, err := lz4.CompressBlock(raw, buf, nil)
	if err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if n == 0 {
		// Incompressible; store as-is with raw_len marking it.
		buf = raw
		n = len(raw)
	}
	sum := blake3.Sum256(raw)
	_, err = tx.tx.Exec(
		`INSERT OR REPLACE INTO snapshots (tick, created_at, hash, raw_len, blob) VALUES (?, ?, ?, ?, ?)`,
		int64(tick), tx.Now(), hex.EncodeToString(sum[:]), len(raw), buf[:n])
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Snapshot decompresses and verifies the snapshot at tick.
func (tx *Tx) Snapshot(tick uint64) ([]byte, error) {
	var row struct {
		Hash   string `db:"hash"`
		RawLen int    `db:"raw_len"`
		Blob   []byte `db:"blob"`
	}
	if err := tx.tx.Get(&row, `SELECT hash, raw_len, blob FROM snapshots WHERE tick = ?`, int64(tick)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	raw := row.Blob
	if len(row.Blob) != row.RawLen {
		raw = make([]byte, row.RawLen)
		if _, err := lz4.UncompressBlock(row.Blob, raw); err != nil {
			return nil, fmt.Errorf("decompress snapshot: %w", err)
		}
	}
	sum := blake3.Sum256(raw)
	if hex.EncodeToString(sum[:]) != row.Hash {
		return nil, fmt.Errorf("snapshot %d: hash mismatch", tick)
	}
	return raw, nil
}

// PruneSnapshots keeps only the newest keep snapshots.
func (tx *Tx) PruneSnapshots(keep int) error {
	_, err := tx.tx.Exec(
		`DELETE FROM snapshots WHERE tick NOT IN (SELECT tick FROM snapshots ORDER BY tick DESC LIMIT ?)`,
		keep)
	return err
}

// SaveSummary upserts a denormalized aggregate document for a scope.
func (tx *Tx) SaveSummary(scope string, tick uint64, doc any) error {
	_, err := tx.tx.Exec(
		`INSERT OR REPLACE INTO summaries (scope, updated_tick, doc) VALUES (?, ?, ?)`,
		scope, int64(tick), mustJSON(doc))
	return err
}

// Summary reads an aggregate document into out. ErrNotFound when the scope
// has never been refreshed.
func (tx *Tx) Summary(scope string, out any) (uint64, error) {
	var row struct {
		UpdatedTick int64  `db:"updated_tick"`
		Doc         string `db:"doc"`
	}
	if err := tx.tx.Get(&row, `SELECT updated_tick, doc FROM summaries WHERE scope = ?`, scope); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return uint64(row.UpdatedTick), jsonInto(row.Doc, out)
}
