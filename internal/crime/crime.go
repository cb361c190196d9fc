// Package crime holds the crime catalog shapes, the success formulas, and
// the cooperative-action state machine. All coefficients come from config;
// the formulas here only combine them.
package crime

// Type is catalog reference data for a solo or cooperative crime.
type Type struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	BaseChance float64 `json:"baseChance"`
	LootMin    int64   `json:"lootMin"`
	LootMax    int64   `json:"lootMax"`
	Heat       float64 `json:"heat"`
	DamageMin  int     `json:"damageMin"` // on failure
	DamageMax  int     `json:"damageMax"`
	Coop       bool    `json:"coop"` // initiable as a cooperative action
}

// Clamp bounds a probability to [lo, hi].
func Clamp(p, lo, hi float64) float64 {
	if p < lo {
		return lo
	}
	if p > hi {
		return hi
	}
	return p
}

// SuccessChance combines the published solo-crime coefficients:
// base + stealth·slope + own-territory bonus − presence·slope, clamped.
func SuccessChance(base float64, stealth int, ownTerritory bool, presence,
	stealthSlope, territoryBonus, presenceSlope, lo, hi float64) float64 {
	p := base + float64(stealth)*stealthSlope - presence*presenceSlope
	if ownTerritory {
		p += territoryBonus
	}
	return Clamp(p, lo, hi)
}

// CombatWinChance is the head-to-head formula used by ROB_AGENT and
// ATTACK_AGENT. Both sides at zero splits the coin.
func CombatWinChance(attackerCombat, targetCombat int) float64 {
	total := attackerCombat + targetCombat
	if total <= 0 {
		return 0.5
	}
	return float64(attackerCombat) / float64(total)
}
