package store

import (
	"github.com/clawcity/clawcity/internal/crime"
)

// --- Coop actions ---

// SaveCoop upserts a cooperative action. Joins run inside one Update
// transaction, so a concurrent join that filled the roster is observed
// before this write lands.
func (tx *Tx) SaveCoop(c *crime.CoopAction) error {
	_, err := tx.tx.Exec(
		`INSERT INTO coop_actions (id, zone_id, status, expires_at, execute_at, doc)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			zone_id = excluded.zone_id,
			status = excluded.status,
			expires_at = excluded.expires_at,
			execute_at = excluded.execute_at,
			doc = excluded.doc`,
		c.ID, c.ZoneID, string(c.Status), int64(c.ExpiresAt), nullUint(c.ExecuteAt), mustJSON(c))
	return err
}

// Coop fetches by id.
func (tx *Tx) Coop(id string) (*crime.CoopAction, error) {
	return getDoc[crime.CoopAction](tx, `SELECT doc FROM coop_actions WHERE id = ?`, id)
}

// RecruitingCoopsInZone lists joinable actions in a zone.
func (tx *Tx) RecruitingCoopsInZone(zoneID string) ([]*crime.CoopAction, error) {
	return listDocs[crime.CoopAction](tx,
		`SELECT doc FROM coop_actions WHERE zone_id = ? AND status = 'recruiting' ORDER BY id`, zoneID)
}

// ActiveCoopOf returns the recruiting or ready action an agent belongs to,
// ErrNotFound when free. Participant sets are small; scan and test.
func (tx *Tx) ActiveCoopOf(agentID string) (*crime.CoopAction, error) {
	coops, err := listDocs[crime.CoopAction](tx,
		`SELECT doc FROM coop_actions WHERE status IN ('recruiting', 'ready') ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for _, c := range coops {
		if c.HasParticipant(agentID) {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

// ExpiredRecruitingCoops lists recruiting actions past their deadline.
func (tx *Tx) ExpiredRecruitingCoops(tick uint64) ([]*crime.CoopAction, error) {
	return listDocs[crime.CoopAction](tx,
		`SELECT doc FROM coop_actions WHERE status = 'recruiting' AND expires_at <= ? ORDER BY id`,
		int64(tick))
}

// DueReadyCoops lists armed actions whose execute tick has arrived.
func (tx *Tx) DueReadyCoops(tick uint64) ([]*crime.CoopAction, error) {
	return listDocs[crime.CoopAction](tx,
		`SELECT doc FROM coop_actions WHERE status = 'ready' AND execute_at <= ? ORDER BY id`,
		int64(tick))
}

// --- Disguises ---

// SaveDisguise upserts the one disguise an agent may wear.
func (tx *Tx) SaveDisguise(d *crime.Disguise) error {
	_, err := tx.tx.Exec(
		`INSERT INTO disguises (agent_id, expires_at, doc) VALUES (?, ?, ?)
		 ON CONFLICT (agent_id) DO UPDATE SET expires_at = excluded.expires_at, doc = excluded.doc`,
		d.AgentID, int64(d.ExpiresAt), mustJSON(d))
	return err
}

// Disguise fetches an agent's active disguise, ErrNotFound when bare-faced.
func (tx *Tx) Disguise(agentID string) (*crime.Disguise, error) {
	return getDoc[crime.Disguise](tx, `SELECT doc FROM disguises WHERE agent_id = ?`, agentID)
}

// ExpiredDisguises lists disguises past their tick.
func (tx *Tx) ExpiredDisguises(tick uint64) ([]*crime.Disguise, error) {
	return listDocs[crime.Disguise](tx,
		`SELECT doc FROM disguises WHERE expires_at <= ? ORDER BY agent_id`, int64(tick))
}

// DeleteDisguise removes a worn-out disguise.
func (tx *Tx) DeleteDisguise(agentID string) error {
	_, err := tx.tx.Exec(`DELETE FROM disguises WHERE agent_id = ?`, agentID)
	return err
}
