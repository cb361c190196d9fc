package store

import (
	"github.com/clawcity/clawcity/internal/economy"
)

// --- Businesses ---

// SaveBusiness upserts a business.
func (tx *Tx) SaveBusiness(b *economy.Business) error {
	_, err := tx.tx.Exec(
		`INSERT INTO businesses (id, zone_id, owner_id, doc) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET zone_id = excluded.zone_id, owner_id = excluded.owner_id, doc = excluded.doc`,
		b.ID, b.ZoneID, nullStr(b.OwnerAgentID), mustJSON(b))
	return err
}

// Business fetches by id.
func (tx *Tx) Business(id string) (*economy.Business, error) {
	return getDoc[economy.Business](tx, `SELECT doc FROM businesses WHERE id = ?`, id)
}

// BusinessesInZone lists the shops an agent standing in a zone can trade with.
func (tx *Tx) BusinessesInZone(zoneID string) ([]*economy.Business, error) {
	return listDocs[economy.Business](tx,
		`SELECT doc FROM businesses WHERE zone_id = ? ORDER BY id`, zoneID)
}

// BusinessesOwnedBy lists an agent's businesses.
func (tx *Tx) BusinessesOwnedBy(agentID string) ([]*economy.Business, error) {
	return listDocs[economy.Business](tx,
		`SELECT doc FROM businesses WHERE owner_id = ? ORDER BY id`, agentID)
}

// OwnedBusinesses lists all agent-owned businesses, for the profit sweep.
func (tx *Tx) OwnedBusinesses() ([]*economy.Business, error) {
	return listDocs[economy.Business](tx,
		`SELECT doc FROM businesses WHERE owner_id IS NOT NULL ORDER BY id`)
}

// --- Properties ---

// SaveProperty upserts a property.
func (tx *Tx) SaveProperty(p *economy.Property) error {
	_, err := tx.tx.Exec(
		`INSERT INTO properties (id, zone_id, owner_id, doc) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET zone_id = excluded.zone_id, owner_id = excluded.owner_id, doc = excluded.doc`,
		p.ID, p.ZoneID, nullStr(p.OwnerAgentID), mustJSON(p))
	return err
}

// Property fetches by id.
func (tx *Tx) Property(id string) (*economy.Property, error) {
	return getDoc[economy.Property](tx, `SELECT doc FROM properties WHERE id = ?`, id)
}

// PropertiesInZone lists properties in a zone.
func (tx *Tx) PropertiesInZone(zoneID string) ([]*economy.Property, error) {
	return listDocs[economy.Property](tx,
		`SELECT doc FROM properties WHERE zone_id = ? ORDER BY id`, zoneID)
}

// PropertiesOwnedBy lists an agent's holdings.
func (tx *Tx) PropertiesOwnedBy(agentID string) ([]*economy.Property, error) {
	return listDocs[economy.Property](tx,
		`SELECT doc FROM properties WHERE owner_id = ? ORDER BY id`, agentID)
}

// --- Residencies ---

// SaveResidency upserts the one residency an agent may hold.
func (tx *Tx) SaveResidency(r *economy.PropertyResident) error {
	_, err := tx.tx.Exec(
		`INSERT INTO residents (agent_id, property_id, rent_due, doc) VALUES (?, ?, ?, ?)
		 ON CONFLICT (agent_id) DO UPDATE SET property_id = excluded.property_id, rent_due = excluded.rent_due, doc = excluded.doc`,
		r.AgentID, r.PropertyID, int64(r.RentDueAt), mustJSON(r))
	return err
}

// Residency fetches an agent's residency, ErrNotFound when homeless.
func (tx *Tx) Residency(agentID string) (*economy.PropertyResident, error) {
	return getDoc[economy.PropertyResident](tx,
		`SELECT doc FROM residents WHERE agent_id = ?`, agentID)
}

// ResidenciesDue lists residencies whose rent date has arrived.
func (tx *Tx) ResidenciesDue(tick uint64) ([]*economy.PropertyResident, error) {
	return listDocs[economy.PropertyResident](tx,
		`SELECT doc FROM residents WHERE rent_due <= ? ORDER BY agent_id`, int64(tick))
}

// ResidentsOf lists the renters of a property.
func (tx *Tx) ResidentsOf(propertyID string) ([]*economy.PropertyResident, error) {
	return listDocs[economy.PropertyResident](tx,
		`SELECT doc FROM residents WHERE property_id = ? ORDER BY agent_id`, propertyID)
}

// DeleteResidency evicts or moves out a renter.
func (tx *Tx) DeleteResidency(agentID string) error {
	_, err := tx.tx.Exec(`DELETE FROM residents WHERE agent_id = ?`, agentID)
	return err
}

// --- Bounties ---

// SaveBounty upserts a bounty.
func (tx *Tx) SaveBounty(b *economy.Bounty) error {
	_, err := tx.tx.Exec(
		`INSERT INTO bounties (id, target_id, status, expires_at, doc) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET status = excluded.status, expires_at = excluded.expires_at, doc = excluded.doc`,
		b.ID, b.TargetAgentID, string(b.Status), int64(b.ExpiresAt), mustJSON(b))
	return err
}

// Bounty fetches by id.
func (tx *Tx) Bounty(id string) (*economy.Bounty, error) {
	return getDoc[economy.Bounty](tx, `SELECT doc FROM bounties WHERE id = ?`, id)
}

// ActiveBountiesOn lists live bounties against a target.
func (tx *Tx) ActiveBountiesOn(targetID string) ([]*economy.Bounty, error) {
	return listDocs[economy.Bounty](tx,
		`SELECT doc FROM bounties WHERE target_id = ? AND status = 'active' ORDER BY id`, targetID)
}

// ExpiredActiveBounties lists active bounties past their expiry tick.
func (tx *Tx) ExpiredActiveBounties(tick uint64) ([]*economy.Bounty, error) {
	return listDocs[economy.Bounty](tx,
		`SELECT doc FROM bounties WHERE status = 'active' AND expires_at <= ? ORDER BY id`, int64(tick))
}

// --- Vehicles ---

// SaveVehicle upserts a stolen vehicle instance.
func (tx *Tx) SaveVehicle(v *economy.Vehicle) error {
	_, err := tx.tx.Exec(
		`INSERT INTO vehicles (id, owner_id, doc) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET owner_id = excluded.owner_id, doc = excluded.doc`,
		v.ID, v.OwnerAgentID, mustJSON(v))
	return err
}

// Vehicle fetches by id.
func (tx *Tx) Vehicle(id string) (*economy.Vehicle, error) {
	return getDoc[economy.Vehicle](tx, `SELECT doc FROM vehicles WHERE id = ?`, id)
}

// DeleteVehicle scraps a vehicle.
func (tx *Tx) DeleteVehicle(id string) error {
	_, err := tx.tx.Exec(`DELETE FROM vehicles WHERE id = ?`, id)
	return err
}

// --- Contracts ---

// SaveContract upserts a contract.
func (tx *Tx) SaveContract(c *economy.Contract) error {
	_, err := tx.tx.Exec(
		`INSERT INTO contracts (id, zone_id, status, doc) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET zone_id = excluded.zone_id, status = excluded.status, doc = excluded.doc`,
		c.ID, c.ZoneID, string(c.Status), mustJSON(c))
	return err
}

// Contract fetches by id.
func (tx *Tx) Contract(id string) (*economy.Contract, error) {
	return getDoc[economy.Contract](tx, `SELECT doc FROM contracts WHERE id = ?`, id)
}

// OpenContractsInZone lists acceptable work in a zone.
func (tx *Tx) OpenContractsInZone(zoneID string, tick uint64) ([]*economy.Contract, error) {
	contracts, err := listDocs[economy.Contract](tx,
		`SELECT doc FROM contracts WHERE zone_id = ? AND status = 'open' ORDER BY id`, zoneID)
	if err != nil {
		return nil, err
	}
	live := contracts[:0]
	for _, c := range contracts {
		if c.ExpiresAt > tick {
			live = append(live, c)
		}
	}
	return live, nil
}

// CountOpenContracts counts live open contracts per zone, for reseeding.
func (tx *Tx) CountOpenContracts(zoneID string, tick uint64) (int, error) {
	cs, err := tx.OpenContractsInZone(zoneID, tick)
	return len(cs), err
}
