package crime

// CoopStatus is the cooperative-action state machine:
//
//	recruiting → ready → executing → completed | failed
//	recruiting → cancelled (deadline passed below min participants)
//
// Terminal states never transition again.
type CoopStatus string

const (
	CoopRecruiting CoopStatus = "recruiting"
	CoopReady      CoopStatus = "ready"
	CoopExecuting  CoopStatus = "executing"
	CoopCompleted  CoopStatus = "completed"
	CoopFailed     CoopStatus = "failed"
	CoopCancelled  CoopStatus = "cancelled"
)

// CoopAction is a multi-agent crime. Participants join during recruiting;
// once min is met the action arms and executes at a fixed future tick, with
// loot, heat, and damage settled across all participants atomically.
type CoopAction struct {
	ID              string         `json:"id"`
	InitiatorID     string         `json:"initiatorId"`
	TypeID          string         `json:"typeId"`
	ZoneID          string         `json:"zoneId"`
	Status          CoopStatus     `json:"status"`
	ParticipantIDs  []string       `json:"participantIds"` // join order, initiator first
	MinParticipants int            `json:"minParticipants"`
	MaxParticipants int            `json:"maxParticipants"`
	CreatedAtTick   uint64         `json:"createdAtTick"`
	ExpiresAt       uint64         `json:"expiresAtTick"`
	ExecuteAt       *uint64        `json:"executeAtTick,omitempty"`
	Result          map[string]any `json:"result,omitempty"`
}

// HasParticipant reports membership.
func (c *CoopAction) HasParticipant(agentID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == agentID {
			return true
		}
	}
	return false
}

// Full reports whether another join would exceed max.
func (c *CoopAction) Full() bool {
	return len(c.ParticipantIDs) >= c.MaxParticipants
}

// Active reports whether the action still holds participants.
func (c *CoopAction) Active() bool {
	return c.Status == CoopRecruiting || c.Status == CoopReady || c.Status == CoopExecuting
}

// Arm transitions recruiting → ready once min participants are in.
func (c *CoopAction) Arm(executeAt uint64) {
	c.Status = CoopReady
	c.ExecuteAt = &executeAt
}

// SuccessChance combines the published coop coefficients: base + per-extra
// bonus (capped) + shared-gang bonus + strong-friendship pair bonus −
// presence·slope, clamped to the solo-crime band.
func (c *CoopAction) SuccessChance(base float64, strongPairs int, allOneGang bool,
	presence, perExtra, extraCap, gangBonus, friendBonus, presenceSlope, lo, hi float64) float64 {
	extra := float64(len(c.ParticipantIDs)-c.MinParticipants) * perExtra
	if extra > extraCap {
		extra = extraCap
	}
	if extra < 0 {
		extra = 0
	}
	p := base + extra + float64(strongPairs)*friendBonus - presence*presenceSlope
	if allOneGang {
		p += gangBonus
	}
	return Clamp(p, lo, hi)
}
