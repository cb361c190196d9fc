package store

import (
	"fmt"

	"github.com/clawcity/clawcity/internal/agents"
)

const agentUpsert = `
INSERT INTO agents (id, key_hash, zone_id, gang_id, status, busy_until, release_tick, heat, is_npc, banned, doc)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	key_hash = excluded.key_hash,
	zone_id = excluded.zone_id,
	gang_id = excluded.gang_id,
	status = excluded.status,
	busy_until = excluded.busy_until,
	release_tick = excluded.release_tick,
	heat = excluded.heat,
	is_npc = excluded.is_npc,
	banned = excluded.banned,
	doc = excluded.doc`

// SaveAgent upserts an agent, rewriting all index columns from the doc.
func (tx *Tx) SaveAgent(a *agents.Agent) error {
	doc := struct {
		*agents.Agent
		KeyHash string `json:"keyHash"`
	}{a, a.KeyHash} // KeyHash is json:"-" on the model; persist it explicitly
	_, err := tx.tx.Exec(agentUpsert,
		a.ID, a.KeyHash, a.ZoneID, nullStr(a.GangID), string(a.Status),
		nullUint(a.BusyUntil), nullUint(a.ReleaseTick), a.Heat,
		boolInt(a.IsNPC), boolInt(a.Banned()), mustJSON(doc))
	if err != nil {
		return fmt.Errorf("save agent %s: %w", a.ID, err)
	}
	return nil
}

// agentDoc restores the key hash the wire model hides.
type agentDoc struct {
	agents.Agent
	KeyHash string `json:"keyHash"`
}

func (d *agentDoc) agent() *agents.Agent {
	a := d.Agent
	a.KeyHash = d.KeyHash
	return &a
}

func agentsOf(docs []*agentDoc) []*agents.Agent {
	out := make([]*agents.Agent, len(docs))
	for i, d := range docs {
		out[i] = d.agent()
	}
	return out
}

// Agent fetches by id.
func (tx *Tx) Agent(id string) (*agents.Agent, error) {
	d, err := getDoc[agentDoc](tx, `SELECT doc FROM agents WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return d.agent(), nil
}

// AgentByKeyHash resolves a bearer key hash to its agent. Keyless agents
// (NPCs) are never resolvable this way.
func (tx *Tx) AgentByKeyHash(hash string) (*agents.Agent, error) {
	d, err := getDoc[agentDoc](tx, `SELECT doc FROM agents WHERE key_hash = ? AND key_hash != ''`, hash)
	if err != nil {
		return nil, err
	}
	return d.agent(), nil
}

// AgentsInZone lists agents currently located in a zone.
func (tx *Tx) AgentsInZone(zoneID string) ([]*agents.Agent, error) {
	docs, err := listDocs[agentDoc](tx, `SELECT doc FROM agents WHERE zone_id = ? ORDER BY id`, zoneID)
	if err != nil {
		return nil, err
	}
	return agentsOf(docs), nil
}

// AgentsInGang lists members of a gang.
func (tx *Tx) AgentsInGang(gangID string) ([]*agents.Agent, error) {
	docs, err := listDocs[agentDoc](tx, `SELECT doc FROM agents WHERE gang_id = ? ORDER BY id`, gangID)
	if err != nil {
		return nil, err
	}
	return agentsOf(docs), nil
}

// BusyAgentsDue lists busy agents whose completion tick has arrived.
func (tx *Tx) BusyAgentsDue(tick uint64) ([]*agents.Agent, error) {
	docs, err := listDocs[agentDoc](tx,
		`SELECT doc FROM agents WHERE status = 'busy' AND busy_until <= ? ORDER BY id`, int64(tick))
	if err != nil {
		return nil, err
	}
	return agentsOf(docs), nil
}

// ReleaseDueAgents lists jailed or hospitalized agents whose release tick
// has arrived.
func (tx *Tx) ReleaseDueAgents(tick uint64) ([]*agents.Agent, error) {
	docs, err := listDocs[agentDoc](tx,
		`SELECT doc FROM agents WHERE status IN ('jailed', 'hospitalized') AND release_tick <= ? ORDER BY id`,
		int64(tick))
	if err != nil {
		return nil, err
	}
	return agentsOf(docs), nil
}

// UnbannedAgents lists every agent not frozen by a takedown, for the heat
// decay and arrest phases.
func (tx *Tx) UnbannedAgents() ([]*agents.Agent, error) {
	docs, err := listDocs[agentDoc](tx, `SELECT doc FROM agents WHERE banned = 0 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return agentsOf(docs), nil
}

// HotAgents lists non-banned agents at or above the arrest threshold.
func (tx *Tx) HotAgents(threshold float64) ([]*agents.Agent, error) {
	docs, err := listDocs[agentDoc](tx,
		`SELECT doc FROM agents WHERE banned = 0 AND heat >= ? ORDER BY id`, threshold)
	if err != nil {
		return nil, err
	}
	return agentsOf(docs), nil
}

// NPCs lists all non-banned NPC agents.
func (tx *Tx) NPCs() ([]*agents.Agent, error) {
	docs, err := listDocs[agentDoc](tx, `SELECT doc FROM agents WHERE is_npc = 1 AND banned = 0 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return agentsOf(docs), nil
}

// AgentsPage reads a page of agents ordered by id, starting strictly after
// afterID. The summary refresh walks the table with this cursor.
func (tx *Tx) AgentsPage(afterID string, limit int) ([]*agents.Agent, error) {
	docs, err := listDocs[agentDoc](tx,
		`SELECT doc FROM agents WHERE id > ? ORDER BY id LIMIT ?`, afterID, limit)
	if err != nil {
		return nil, err
	}
	return agentsOf(docs), nil
}

// CountAgents returns total and NPC counts.
func (tx *Tx) CountAgents() (total, npcs int, err error) {
	if err = tx.tx.Get(&total, `SELECT COUNT(*) FROM agents`); err != nil {
		return 0, 0, err
	}
	if err = tx.tx.Get(&npcs, `SELECT COUNT(*) FROM agents WHERE is_npc = 1`); err != nil {
		return 0, 0, err
	}
	return total, npcs, nil
}
