package store

// Tables follow one pattern: a JSON document column plus the columns the
// engine filters or joins by. The doc is authoritative; index columns are
// rewritten on every save.
const schema = `
CREATE TABLE IF NOT EXISTS worlds (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	tick INTEGER NOT NULL,
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS agents (
	id TEXT PRIMARY KEY,
	key_hash TEXT NOT NULL,
	zone_id TEXT NOT NULL,
	gang_id TEXT,
	status TEXT NOT NULL,
	busy_until INTEGER,
	release_tick INTEGER,
	heat REAL NOT NULL,
	is_npc INTEGER NOT NULL,
	banned INTEGER NOT NULL,
	doc TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_agents_key ON agents(key_hash) WHERE key_hash != '';
CREATE INDEX IF NOT EXISTS idx_agents_zone ON agents(zone_id);
CREATE INDEX IF NOT EXISTS idx_agents_gang ON agents(gang_id);
CREATE INDEX IF NOT EXISTS idx_agents_status ON agents(status);

CREATE TABLE IF NOT EXISTS events (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	tick INTEGER NOT NULL,
	ts INTEGER NOT NULL,
	type TEXT NOT NULL,
	agent_id TEXT,
	zone_id TEXT,
	entity_id TEXT,
	request_id TEXT,
	payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
CREATE INDEX IF NOT EXISTS idx_events_agent ON events(agent_id);
CREATE INDEX IF NOT EXISTS idx_events_request ON events(request_id);

CREATE TABLE IF NOT EXISTS ledger (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	tick INTEGER NOT NULL,
	agent_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	amount INTEGER NOT NULL,
	reason TEXT NOT NULL,
	balance INTEGER NOT NULL,
	ref_event_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_ledger_agent ON ledger(agent_id);

CREATE TABLE IF NOT EXISTS action_locks (
	agent_id TEXT NOT NULL,
	request_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL,
	result TEXT,
	PRIMARY KEY (agent_id, request_id)
);

CREATE TABLE IF NOT EXISTS friendships (
	agent1_id TEXT NOT NULL,
	agent2_id TEXT NOT NULL,
	status TEXT NOT NULL,
	last_interaction INTEGER NOT NULL,
	doc TEXT NOT NULL,
	PRIMARY KEY (agent1_id, agent2_id)
);
CREATE INDEX IF NOT EXISTS idx_friend_a1 ON friendships(agent1_id);
CREATE INDEX IF NOT EXISTS idx_friend_a2 ON friendships(agent2_id);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	to_id TEXT NOT NULL,
	tick INTEGER NOT NULL,
	doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_id);

CREATE TABLE IF NOT EXISTS gangs (
	id TEXT PRIMARY KEY,
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS gang_invites (
	id TEXT PRIMARY KEY,
	gang_id TEXT NOT NULL,
	agent_id TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invites_agent ON gang_invites(agent_id);

CREATE TABLE IF NOT EXISTS territories (
	zone_id TEXT PRIMARY KEY,
	gang_id TEXT NOT NULL,
	doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_territories_gang ON territories(gang_id);

CREATE TABLE IF NOT EXISTS properties (
	id TEXT PRIMARY KEY,
	zone_id TEXT NOT NULL,
	owner_id TEXT,
	doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_properties_zone ON properties(zone_id);
CREATE INDEX IF NOT EXISTS idx_properties_owner ON properties(owner_id);

CREATE TABLE IF NOT EXISTS residents (
	agent_id TEXT PRIMARY KEY,
	property_id TEXT NOT NULL,
	rent_due INTEGER NOT NULL,
	doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_residents_due ON residents(rent_due);

CREATE TABLE IF NOT EXISTS businesses (
	id TEXT PRIMARY KEY,
	zone_id TEXT NOT NULL,
	owner_id TEXT,
	doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_businesses_zone ON businesses(zone_id);
CREATE INDEX IF NOT EXISTS idx_businesses_owner ON businesses(owner_id);

CREATE TABLE IF NOT EXISTS bounties (
	id TEXT PRIMARY KEY,
	target_id TEXT NOT NULL,
	status TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bounties_target ON bounties(target_id);
CREATE INDEX IF NOT EXISTS idx_bounties_status ON bounties(status);

CREATE TABLE IF NOT EXISTS vehicles (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS disguises (
	agent_id TEXT PRIMARY KEY,
	expires_at INTEGER NOT NULL,
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contracts (
	id TEXT PRIMARY KEY,
	zone_id TEXT NOT NULL,
	status TEXT NOT NULL,
	doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contracts_zone ON contracts(zone_id, status);

CREATE TABLE IF NOT EXISTS coop_actions (
	id TEXT PRIMARY KEY,
	zone_id TEXT NOT NULL,
	status TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	execute_at INTEGER,
	doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_coops_zone ON coop_actions(zone_id);
CREATE INDEX IF NOT EXISTS idx_coops_status ON coop_actions(status);

CREATE TABLE IF NOT EXISTS snapshots (
	tick INTEGER PRIMARY KEY,
	created_at INTEGER NOT NULL,
	hash TEXT NOT NULL,
	raw_len INTEGER NOT NULL,
	blob BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS summaries (
	scope TEXT PRIMARY KEY,
	updated_tick INTEGER NOT NULL,
	doc TEXT NOT NULL
);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}
