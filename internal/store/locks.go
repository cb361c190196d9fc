package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LockState is the outcome of a reservation attempt.
type LockState int

const (
	// LockAcquired means this call inserted the reservation; the caller
	// must execute the action and finalize or release.
	LockAcquired LockState = iota
	// LockReplayed means a finalized result exists; return it verbatim.
	LockReplayed
	// LockInFlight means another dispatch holds an unfinalized, unexpired
	// reservation for the same (agent, requestId).
	LockInFlight
)

// ReserveLock implements the idempotency check. An expired in-flight
// reservation is reaped and re-acquired; a finalized one replays forever
// until the GC sweep removes it after TTL.
func (tx *Tx) ReserveLock(agentID, requestID string, ttl time.Duration) (LockState, []byte, error) {
	var row struct {
		ExpiresAt int64          `db:"expires_at"`
		Result    sql.NullString `db:"result"`
	}
	err := tx.tx.Get(&row,
		`SELECT expires_at, result FROM action_locks WHERE agent_id = ? AND request_id = ?`,
		agentID, requestID)
	now := tx.Now()
	switch {
	case err == nil:
		if row.Result.Valid {
			return LockReplayed, []byte(row.Result.String), nil
		}
		if row.ExpiresAt > now {
			return LockInFlight, nil, nil
		}
		// Stale in-flight reservation: the original dispatch died. Reap it.
		if _, err := tx.tx.Exec(
			`UPDATE action_locks SET created_at = ?, expires_at = ? WHERE agent_id = ? AND request_id = ?`,
			now, now+ttl.Milliseconds(), agentID, requestID); err != nil {
			return 0, nil, fmt.Errorf("reclaim lock: %w", err)
		}
		return LockAcquired, nil, nil
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.tx.Exec(
			`INSERT INTO action_locks (agent_id, request_id, created_at, expires_at, result) VALUES (?, ?, ?, ?, NULL)`,
			agentID, requestID, now, now+ttl.Milliseconds()); err != nil {
			return 0, nil, fmt.Errorf("insert lock: %w", err)
		}
		return LockAcquired, nil, nil
	default:
		return 0, nil, err
	}
}

// FinalizeLock stores the response bytes for replay.
func (tx *Tx) FinalizeLock(agentID, requestID string, result []byte) error {
	_, err := tx.tx.Exec(
		`UPDATE action_locks SET result = ? WHERE agent_id = ? AND request_id = ?`,
		string(result), agentID, requestID)
	if err != nil {
		return fmt.Errorf("finalize lock: %w", err)
	}
	return nil
}

// ReleaseLock drops a reservation after a transient failure so the client
// may retry with the same requestId.
func (tx *Tx) ReleaseLock(agentID, requestID string) error {
	_, err := tx.tx.Exec(
		`DELETE FROM action_locks WHERE agent_id = ? AND request_id = ?`, agentID, requestID)
	return err
}

// ReapExpiredLocks garbage-collects locks past their TTL. Runs on the
// summary-refresh budget.
func (tx *Tx) ReapExpiredLocks() (int64, error) {
	res, err := tx.tx.Exec(`DELETE FROM action_locks WHERE expires_at <= ?`, tx.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
