// Package economy provides items, jobs, businesses, property, vehicles,
// contracts, bounties, and the append-only cash ledger.
package economy

// ItemKind groups catalog items for display and policy decisions.
type ItemKind string

const (
	ItemConsumable ItemKind = "consumable"
	ItemGear       ItemKind = "gear"
	ItemContraband ItemKind = "contraband"
	ItemValuable   ItemKind = "valuable"
)

// ItemEffects are the immediate deltas applied by USE_ITEM.
type ItemEffects struct {
	Health  int     `json:"health,omitempty"`
	Stamina int     `json:"stamina,omitempty"`
	Heat    float64 `json:"heat,omitempty"`
}

// Item is static reference data.
type Item struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Kind      ItemKind    `json:"kind"`
	BasePrice int64       `json:"basePrice"`
	Effects   ItemEffects `json:"effects"`
	Usable    bool        `json:"usable"`
}

// Job is static reference data; taking one defers the wage payout by
// DurationTicks.
type Job struct {
	ID            string `json:"id"`
	ZoneID        string `json:"zoneId"`
	Name          string `json:"name"`
	Wage          int64  `json:"wage"`
	DurationTicks uint64 `json:"durationTicks"`
	StaminaCost   int    `json:"staminaCost"`
	MinReputation int    `json:"minReputation"`
	Skill         string `json:"skill,omitempty"` // requirement, empty = none
	MinSkill      int    `json:"minSkill,omitempty"`
}
