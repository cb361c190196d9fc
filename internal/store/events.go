package store

import (
	"encoding/json"
	"fmt"

	"github.com/clawcity/clawcity/internal/world"
)

// EventRefs names the entities an event points at. All fields optional.
type EventRefs struct {
	AgentID  string
	ZoneID   string
	EntityID string
}

// Emit appends one event stamped with the current tick and wall time.
// Events are never updated after insert.
func (tx *Tx) Emit(typ string, refs EventRefs, payload map[string]any, requestID *string) (*world.Event, error) {
	w, err := tx.World()
	if err != nil {
		return nil, fmt.Errorf("emit %s: %w", typ, err)
	}
	ev := &world.Event{
		ID:        NewID(),
		Tick:      w.Tick,
		TS:        tx.Now(),
		Type:      typ,
		Payload:   payload,
		RequestID: requestID,
	}
	if refs.AgentID != "" {
		ev.AgentID = &refs.AgentID
	}
	if refs.ZoneID != "" {
		ev.ZoneID = &refs.ZoneID
	}
	if refs.EntityID != "" {
		ev.EntityID = &refs.EntityID
	}
	payloadJSON := "{}"
	if payload != nil {
		payloadJSON = mustJSON(payload)
	}
	res, err := tx.tx.Exec(
		`INSERT INTO events (id, tick, ts, type, agent_id, zone_id, entity_id, request_id, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, int64(ev.Tick), ev.TS, ev.Type,
		nullStr(ev.AgentID), nullStr(ev.ZoneID), nullStr(ev.EntityID),
		nullStr(ev.RequestID), payloadJSON)
	if err != nil {
		return nil, fmt.Errorf("emit %s: %w", typ, err)
	}
	ev.Seq, _ = res.LastInsertId()
	return ev, nil
}

type eventRow struct {
	Seq       int64   `db:"seq"`
	ID        string  `db:"id"`
	Tick      int64   `db:"tick"`
	TS        int64   `db:"ts"`
	Type      string  `db:"type"`
	AgentID   *string `db:"agent_id"`
	ZoneID    *string `db:"zone_id"`
	EntityID  *string `db:"entity_id"`
	RequestID *string `db:"request_id"`
	Payload   string  `db:"payload"`
}

func (r *eventRow) event() (*world.Event, error) {
	ev := &world.Event{
		Seq: r.Seq, ID: r.ID, Tick: uint64(r.Tick), TS: r.TS, Type: r.Type,
		AgentID: r.AgentID, ZoneID: r.ZoneID, EntityID: r.EntityID, RequestID: r.RequestID,
	}
	if r.Payload != "" && r.Payload != "{}" {
		if err := json.Unmarshal([]byte(r.Payload), &ev.Payload); err != nil {
			return nil, fmt.Errorf("decode event payload: %w", err)
		}
	}
	return ev, nil
}

func eventsOf(rows []eventRow) ([]*world.Event, error) {
	out := make([]*world.Event, 0, len(rows))
	for i := range rows {
		ev, err := rows[i].event()
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// EventsForAgent returns an agent's events in descending (tick, ts, seq)
// order, optionally windowed by sinceTick.
func (tx *Tx) EventsForAgent(agentID string, sinceTick uint64, limit int) ([]*world.Event, error) {
	var rows []eventRow
	err := tx.tx.Select(&rows,
		`SELECT * FROM events WHERE agent_id = ? AND tick >= ?
		 ORDER BY tick DESC, ts DESC, seq DESC LIMIT ?`,
		agentID, int64(sinceTick), limit)
	if err != nil {
		return nil, err
	}
	return eventsOf(rows)
}

// EventsByType returns events of one type since a tick, ascending.
func (tx *Tx) EventsByType(typ string, sinceTick uint64, limit int) ([]*world.Event, error) {
	var rows []eventRow
	err := tx.tx.Select(&rows,
		`SELECT * FROM events WHERE type = ? AND tick >= ? ORDER BY seq LIMIT ?`,
		typ, int64(sinceTick), limit)
	if err != nil {
		return nil, err
	}
	return eventsOf(rows)
}

// KillEventExists checks whether killer killed victim at or after sinceTick.
// CLAIM_BOUNTY validates claims against the event log itself.
func (tx *Tx) KillEventExists(killerID, victimID string, sinceTick uint64) (bool, error) {
	var n int
	err := tx.tx.Get(&n,
		`SELECT COUNT(*) FROM events
		 WHERE type = ? AND agent_id = ? AND entity_id = ? AND tick >= ?`,
		world.EvAgentKilled, killerID, victimID, int64(sinceTick))
	return n > 0, err
}

// CountEventsSince counts events per type at or after a tick, for the
// summary refresh.
func (tx *Tx) CountEventsSince(tick uint64) (map[string]int, error) {
	var rows []struct {
		Type string `db:"type"`
		N    int    `db:"n"`
	}
	err := tx.tx.Select(&rows,
		`SELECT type, COUNT(*) AS n FROM events WHERE tick >= ? GROUP BY type`, int64(tick))
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Type] = r.N
	}
	return out, nil
}
