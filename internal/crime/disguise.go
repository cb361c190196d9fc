package crime

// DisguiseQuality indexes the disguise catalog.
type DisguiseQuality string

const (
	DisguiseCheap    DisguiseQuality = "cheap"
	DisguiseStandard DisguiseQuality = "standard"
	DisguisePremium  DisguiseQuality = "premium"
)

// DisguiseSpec is catalog reference data.
type DisguiseSpec struct {
	Quality        DisguiseQuality `json:"quality"`
	Price          int64           `json:"price"`
	HeatDecayBonus float64         `json:"heatDecayBonus"` // extra heat shed per tick
	DurationTicks  uint64          `json:"durationTicks"`
}

// Disguise is an active purchase. One per agent; buying replaces it.
type Disguise struct {
	AgentID        string          `json:"agentId"`
	Quality        DisguiseQuality `json:"quality"`
	HeatDecayBonus float64         `json:"heatDecayBonus"`
	ExpiresAt      uint64          `json:"expiresAtTick"`
	BoughtAtTick   uint64          `json:"boughtAtTick"`
}
