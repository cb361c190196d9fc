package store

import (
	"fmt"

	"github.com/clawcity/clawcity/internal/social"
)

// --- Friendships ---

// SaveFriendship upserts an edge. Callers must pass canonical ordering
// (Agent1ID < Agent2ID).
func (tx *Tx) SaveFriendship(f *social.Friendship) error {
	_, err := tx.tx.Exec(
		`INSERT INTO friendships (agent1_id, agent2_id, status, last_interaction, doc)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (agent1_id, agent2_id) DO UPDATE SET
			status = excluded.status,
			last_interaction = excluded.last_interaction,
			doc = excluded.doc`,
		f.Agent1ID, f.Agent2ID, string(f.Status), int64(f.LastInteraction), mustJSON(f))
	if err != nil {
		return fmt.Errorf("save friendship: %w", err)
	}
	return nil
}

// Friendship fetches the edge between two agents in either order.
func (tx *Tx) Friendship(a, b string) (*social.Friendship, error) {
	a1, a2 := social.CanonicalPair(a, b)
	return getDoc[social.Friendship](tx,
		`SELECT doc FROM friendships WHERE agent1_id = ? AND agent2_id = ?`, a1, a2)
}

// DeleteFriendship removes the edge between two agents.
func (tx *Tx) DeleteFriendship(a, b string) error {
	a1, a2 := social.CanonicalPair(a, b)
	_, err := tx.tx.Exec(
		`DELETE FROM friendships WHERE agent1_id = ? AND agent2_id = ?`, a1, a2)
	return err
}

// FriendshipsOf lists every edge touching an agent.
func (tx *Tx) FriendshipsOf(agentID string) ([]*social.Friendship, error) {
	return listDocs[social.Friendship](tx,
		`SELECT doc FROM friendships WHERE agent1_id = ? OR agent2_id = ? ORDER BY agent1_id, agent2_id`,
		agentID, agentID)
}

// StaleFriendships lists accepted edges with no interaction since
// beforeTick, for the decay phase.
func (tx *Tx) StaleFriendships(beforeTick uint64) ([]*social.Friendship, error) {
	return listDocs[social.Friendship](tx,
		`SELECT doc FROM friendships WHERE status = 'accepted' AND last_interaction < ? ORDER BY agent1_id, agent2_id`,
		int64(beforeTick))
}

// --- Messages ---

// SaveMessage inserts mail.
func (tx *Tx) SaveMessage(m *social.Message) error {
	_, err := tx.tx.Exec(
		`INSERT INTO messages (id, to_id, tick, doc) VALUES (?, ?, ?, ?)`,
		m.ID, m.ToID, int64(m.Tick), mustJSON(m))
	return err
}

// MessagesFor returns the newest messages addressed to an agent.
func (tx *Tx) MessagesFor(agentID string, limit int) ([]*social.Message, error) {
	return listDocs[social.Message](tx,
		`SELECT doc FROM messages WHERE to_id = ? ORDER BY tick DESC, id DESC LIMIT ?`,
		agentID, limit)
}

// --- Gangs ---

// SaveGang upserts a gang.
func (tx *Tx) SaveGang(g *social.Gang) error {
	_, err := tx.tx.Exec(
		`INSERT INTO gangs (id, doc) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET doc = excluded.doc`,
		g.ID, mustJSON(g))
	return err
}

// Gang fetches by id.
func (tx *Tx) Gang(id string) (*social.Gang, error) {
	return getDoc[social.Gang](tx, `SELECT doc FROM gangs WHERE id = ?`, id)
}

// DeleteGang removes a disbanded gang.
func (tx *Tx) DeleteGang(id string) error {
	_, err := tx.tx.Exec(`DELETE FROM gangs WHERE id = ?`, id)
	return err
}

// AllGangs lists every gang, for the summary refresh.
func (tx *Tx) AllGangs() ([]*social.Gang, error) {
	return listDocs[social.Gang](tx, `SELECT doc FROM gangs ORDER BY id`)
}

// --- Gang invites ---

// SaveInvite inserts a pending invite.
func (tx *Tx) SaveInvite(inv *social.GangInvite) error {
	_, err := tx.tx.Exec(
		`INSERT INTO gang_invites (id, gang_id, agent_id, expires_at, doc) VALUES (?, ?, ?, ?, ?)`,
		inv.ID, inv.GangID, inv.AgentID, int64(inv.ExpiresAt), mustJSON(inv))
	return err
}

// Invite fetches by id.
func (tx *Tx) Invite(id string) (*social.GangInvite, error) {
	return getDoc[social.GangInvite](tx, `SELECT doc FROM gang_invites WHERE id = ?`, id)
}

// InvitesFor lists unexpired invites addressed to an agent.
func (tx *Tx) InvitesFor(agentID string, tick uint64) ([]*social.GangInvite, error) {
	return listDocs[social.GangInvite](tx,
		`SELECT doc FROM gang_invites WHERE agent_id = ? AND expires_at > ? ORDER BY id`,
		agentID, int64(tick))
}

// PendingInvite checks for an existing live invite from a gang to an agent.
func (tx *Tx) PendingInvite(gangID, agentID string, tick uint64) (*social.GangInvite, error) {
	return getDoc[social.GangInvite](tx,
		`SELECT doc FROM gang_invites WHERE gang_id = ? AND agent_id = ? AND expires_at > ? LIMIT 1`,
		gangID, agentID, int64(tick))
}

// DeleteInvite consumes an invite.
func (tx *Tx) DeleteInvite(id string) error {
	_, err := tx.tx.Exec(`DELETE FROM gang_invites WHERE id = ?`, id)
	return err
}

// DeleteInvitesForGang clears invites of a disbanded gang.
func (tx *Tx) DeleteInvitesForGang(gangID string) error {
	_, err := tx.tx.Exec(`DELETE FROM gang_invites WHERE gang_id = ?`, gangID)
	return err
}

// --- Territories ---

// SaveTerritory upserts the one record a zone may have.
func (tx *Tx) SaveTerritory(t *social.Territory) error {
	_, err := tx.tx.Exec(
		`INSERT INTO territories (zone_id, gang_id, doc) VALUES (?, ?, ?)
		 ON CONFLICT (zone_id) DO UPDATE SET gang_id = excluded.gang_id, doc = excluded.doc`,
		t.ZoneID, t.GangID, mustJSON(t))
	return err
}

// Territory fetches the record for a zone, ErrNotFound when unclaimed.
func (tx *Tx) Territory(zoneID string) (*social.Territory, error) {
	return getDoc[social.Territory](tx, `SELECT doc FROM territories WHERE zone_id = ?`, zoneID)
}

// TerritoriesOf lists a gang's holdings.
func (tx *Tx) TerritoriesOf(gangID string) ([]*social.Territory, error) {
	return listDocs[social.Territory](tx,
		`SELECT doc FROM territories WHERE gang_id = ? ORDER BY zone_id`, gangID)
}

// AllTerritories lists every claimed zone.
func (tx *Tx) AllTerritories() ([]*social.Territory, error) {
	return listDocs[social.Territory](tx, `SELECT doc FROM territories ORDER BY zone_id`)
}

// DeleteTerritory removes a collapsed or disbanded claim.
func (tx *Tx) DeleteTerritory(zoneID string) error {
	_, err := tx.tx.Exec(`DELETE FROM territories WHERE zone_id = ?`, zoneID)
	return err
}
