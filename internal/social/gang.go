// Gangs, invites, and territory control.
package social

// Gang is a player-founded organization with a shared treasury.
// MemberCount is denormalized and updated in the same transaction as any
// membership change.
type Gang struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LeaderID      string `json:"leaderId"`
	Treasury      int64  `json:"treasury"`
	Reputation    int    `json:"reputation"`
	HomeZoneID    string `json:"homeZoneId"`
	MemberCount   int    `json:"memberCount"`
	CreatedAtTick uint64 `json:"createdAtTick"`
}

// GangInvite is a pending membership offer. Invites expire by tick or are
// consumed by RESPOND_GANG_INVITE.
type GangInvite struct {
	ID        string `json:"id"`
	GangID    string `json:"gangId"`
	AgentID   string `json:"agentId"`
	InvitedBy string `json:"invitedBy"`
	ExpiresAt uint64 `json:"expiresAtTick"`
}

// Territory assigns a zone to a gang. At most one record exists per zone.
type Territory struct {
	ZoneID          string `json:"zoneId"`
	GangID          string `json:"gangId"`
	ControlStrength int    `json:"controlStrength"` // 0..100
	IncomePerTick   int64  `json:"incomePerTick"`
	ClaimedAtTick   uint64 `json:"claimedAtTick"`
	LastDefended    uint64 `json:"lastDefendedTick"`
}
