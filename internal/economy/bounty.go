package economy

// BountyStatus is terminal after one transition away from active.
type BountyStatus string

const (
	BountyActive  BountyStatus = "active"
	BountyClaimed BountyStatus = "claimed"
	BountyExpired BountyStatus = "expired"
)

// Bounty escrows cash against a target's life. The placer's cash is debited
// on placement and held by the bounty; a claim pays the full amount, expiry
// refunds a configured fraction.
type Bounty struct {
	ID              string       `json:"id"`
	TargetAgentID   string       `json:"targetAgentId"`
	PlacedByAgentID string       `json:"placedByAgentId"`
	Amount          int64        `json:"amount"`
	Status          BountyStatus `json:"status"`
	ClaimedBy       *string      `json:"claimedByAgentId,omitempty"`
	CreatedAtTick   uint64       `json:"createdAtTick"`
	ExpiresAt       uint64       `json:"expiresAtTick"`
}
