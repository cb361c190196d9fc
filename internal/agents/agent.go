// Package agents defines the agent model and its status machine.
// Agents are driven entirely from outside: clients (or the NPC policy)
// submit actions, the tick pipeline resolves deferred effects.
package agents

// Status is the agent lifecycle state. "banned" is a pseudo-state derived
// from BannedAt rather than a Status value.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusBusy         Status = "busy"
	StatusJailed       Status = "jailed"
	StatusHospitalized Status = "hospitalized"
)

// BusyKind tags the deferred completion recorded in BusyAction.
type BusyKind string

const (
	BusyMove     BusyKind = "move"
	BusyJob      BusyKind = "job"
	BusyHeal     BusyKind = "heal"
	BusyRest     BusyKind = "rest"
	BusyCoop     BusyKind = "coop"
	BusyContract BusyKind = "contract"
)

// BusyAction is the completion effect scheduled for a busy agent. Exactly
// the fields for its Kind are set; phase 2 of the tick pipeline applies it.
type BusyAction struct {
	Kind       BusyKind `json:"kind"`
	ToZone     string   `json:"toZone,omitempty"`
	ArriveHeat float64  `json:"arriveHeat,omitempty"`
	JobID      string   `json:"jobId,omitempty"`
	CoopID     string   `json:"coopId,omitempty"`
	ContractID string   `json:"contractId,omitempty"`
	RestTicks  uint64   `json:"restTicks,omitempty"`
}

// Skills are the four trainable aptitudes, each 0..100.
type Skills struct {
	Driving     int `json:"driving"`
	Negotiation int `json:"negotiation"`
	Stealth     int `json:"stealth"`
	Combat      int `json:"combat"`
}

// Stats are lifetime counters surfaced in the state snapshot.
type Stats struct {
	JobsCompleted       int `json:"jobsCompleted"`
	CrimesAttempted     int `json:"crimesAttempted"`
	CrimesSucceeded     int `json:"crimesSucceeded"`
	RobsCompleted       int `json:"robsCompleted"`
	TimesRobbed         int `json:"timesRobbed"`
	Kills               int `json:"kills"`
	TimesArrested       int `json:"timesArrested"`
	TimesHospitalized   int `json:"timesHospitalized"`
	CoopCrimesCompleted int `json:"coopCrimesCompleted"`
	GamblesWon          int `json:"gamblesWon"`
	GamblesLost         int `json:"gamblesLost"`
	ContractsCompleted  int `json:"contractsCompleted"`
}

// Agent is the principal entity. Cash is mutated only through the ledger's
// Post; everything else is written by action handlers and the tick pipeline.
type Agent struct {
	ID        string `json:"id"`
	KeyHash   string `json:"-"` // SHA-256 hex of the bearer key
	Name      string `json:"name"`
	LLMInfo   string `json:"llmInfo,omitempty"`
	CreatedAt int64  `json:"createdAt"` // unix ms

	ZoneID     string  `json:"zoneId"`
	Cash       int64   `json:"cash"`
	Health     int     `json:"health"`  // 0..100
	Stamina    int     `json:"stamina"` // 0..100
	Reputation int     `json:"reputation"`
	Heat       float64 `json:"heat"`

	Status      Status      `json:"status"`
	BusyUntil   *uint64     `json:"busyUntilTick,omitempty"` // set iff Status=busy
	Busy        *BusyAction `json:"busyAction,omitempty"`
	ReleaseTick *uint64     `json:"releaseTick,omitempty"` // jail or hospital

	Inventory map[string]int `json:"inventory"`
	Skills    Skills         `json:"skills"`
	Stats     Stats          `json:"stats"`

	GangID         *string `json:"gangId,omitempty"`
	HomePropertyID *string `json:"homePropertyId,omitempty"`
	VehicleID      *string `json:"vehicleId,omitempty"`
	GangBanUntil   *uint64 `json:"gangBanUntilTick,omitempty"`

	TaxOwed        int64  `json:"taxOwed"`
	IsNPC          bool   `json:"isNpc"`
	BannedAt       *int64 `json:"bannedAt,omitempty"` // unix ms; freezes the agent
	LastActionTick uint64 `json:"lastActionTick"`
}

// Banned reports whether the agent has been frozen by a takedown.
func (a *Agent) Banned() bool {
	return a.BannedAt != nil
}

// SetBusy schedules a deferred completion and flips the status machine.
func (a *Agent) SetBusy(until uint64, action BusyAction) {
	a.Status = StatusBusy
	a.BusyUntil = &until
	a.Busy = &action
}

// ClearBusy drops the deferred completion without applying it. The caller
// decides the next status.
func (a *Agent) ClearBusy() {
	a.BusyUntil = nil
	a.Busy = nil
}

// ClampHeat keeps heat inside [0, maxHeat].
func (a *Agent) ClampHeat(maxHeat float64) {
	if a.Heat < 0 {
		a.Heat = 0
	}
	if a.Heat > maxHeat {
		a.Heat = maxHeat
	}
}

// AddHeat raises heat and clamps.
func (a *Agent) AddHeat(delta, maxHeat float64) {
	a.Heat += delta
	a.ClampHeat(maxHeat)
}

// ApplyDamage lowers health and hospitalizes at zero. Returns true when the
// hit put the agent in the hospital.
func (a *Agent) ApplyDamage(dmg int, untilTick uint64) bool {
	if dmg <= 0 {
		return false
	}
	a.Health -= dmg
	if a.Health > 0 {
		return false
	}
	a.Health = 0
	a.ClearBusy()
	a.Status = StatusHospitalized
	a.ReleaseTick = &untilTick
	a.Stats.TimesHospitalized++
	return true
}

// AddItem adjusts an inventory count, deleting the entry when it reaches
// zero. Callers must have validated availability for negative deltas.
func (a *Agent) AddItem(itemID string, delta int) {
	if a.Inventory == nil {
		a.Inventory = make(map[string]int)
	}
	n := a.Inventory[itemID] + delta
	if n <= 0 {
		delete(a.Inventory, itemID)
		return
	}
	a.Inventory[itemID] = n
}

// ItemCount returns how many of an item the agent carries.
func (a *Agent) ItemCount(itemID string) int {
	return a.Inventory[itemID]
}

// SkillLevel reads a skill by its wire name. Unknown names read as zero.
func (a *Agent) SkillLevel(name string) int {
	switch name {
	case "driving":
		return a.Skills.Driving
	case "negotiation":
		return a.Skills.Negotiation
	case "stealth":
		return a.Skills.Stealth
	case "combat":
		return a.Skills.Combat
	}
	return 0
}

// ClampVitals bounds health and stamina to [0, 100].
func (a *Agent) ClampVitals() {
	if a.Health < 0 {
		a.Health = 0
	}
	if a.Health > 100 {
		a.Health = 100
	}
	if a.Stamina < 0 {
		a.Stamina = 0
	}
	if a.Stamina > 100 {
		a.Stamina = 100
	}
}
