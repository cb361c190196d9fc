// Package social provides friendships, messaging, gangs, and territories.
package social

// FriendStatus is the lifecycle of a friendship edge.
type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
	FriendBlocked  FriendStatus = "blocked"
)

// Friendship is an undirected edge stored once with Agent1ID < Agent2ID.
type Friendship struct {
	Agent1ID        string       `json:"agent1Id"`
	Agent2ID        string       `json:"agent2Id"`
	Status          FriendStatus `json:"status"`
	InitiatorID     string       `json:"initiatorId"`
	Strength        int          `json:"strength"` // 0..100
	Loyalty         int          `json:"loyalty"`  // 0..100
	LastInteraction uint64       `json:"lastInteractionTick"`
	CreatedAtTick   uint64       `json:"createdAtTick"`
}

// CanonicalPair orders two agent ids for edge storage.
func CanonicalPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Other returns the counterpart of id on this edge.
func (f *Friendship) Other(id string) string {
	if f.Agent1ID == id {
		return f.Agent2ID
	}
	return f.Agent1ID
}

// Touch records an interaction and strengthens the bond a little.
func (f *Friendship) Touch(tick uint64, strengthGain int) {
	f.LastInteraction = tick
	f.Strength += strengthGain
	if f.Strength > 100 {
		f.Strength = 100
	}
}

// Decay weakens a stale edge by one step. Returns true when both scores hit
// zero and the edge should be removed.
func (f *Friendship) Decay(step int) bool {
	f.Strength -= step
	if f.Strength < 0 {
		f.Strength = 0
	}
	f.Loyalty -= step
	if f.Loyalty < 0 {
		f.Loyalty = 0
	}
	return f.Strength == 0 && f.Loyalty == 0
}

// Message is agent-to-agent mail, readable by the recipient in their state
// snapshot.
type Message struct {
	ID     string `json:"id"`
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
	Body   string `json:"body"`
	Tick   uint64 `json:"tick"`
	TS     int64  `json:"ts"` // unix ms
}
