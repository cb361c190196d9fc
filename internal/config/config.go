// Package config loads server and world configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read at startup. Game-balance coefficients live in
// Rules; operational settings (addresses, paths, keys) live at the top level.
type Config struct {
	Addr     string // HTTP listen address
	DBPath   string // SQLite file path, ":memory:" for tests
	AdminKey string // Bearer token for admin endpoints. Empty = admin disabled.

	Seed   string // World seed; same seed + same inputs = same world
	TickMs int    // Tick period in milliseconds

	RatePerSec float64 // Per-agent action rate limit
	RateBurst  int

	NPCCount int // NPCs seeded on first boot

	Rules Rules
}

// Rules carries the tunable coefficients of the simulation. Values here are
// configuration, not contract: seeds and deployments may differ.
type Rules struct {
	StartingZone    string
	StartingCashMin int64
	StartingCashMax int64

	MaxHeat         float64
	HeatDecayIdle   float64
	HeatDecayBusy   float64
	ArrestThreshold float64

	// Arrest probability = ArrestBase + ArrestHeatSlope*(heat-threshold)/maxHeat
	//                      + ArrestPresenceSlope*policePresence, clamped to [0,0.95].
	ArrestBase          float64
	ArrestHeatSlope     float64
	ArrestPresenceSlope float64
	SentenceTicks       uint64
	ArrestFine          int64
	TaxArrestThreshold  int64

	SafehouseDecayBonus float64 // Extra decay fraction for safehouse owners
	GangZoneDecayBonus  float64 // Extra decay fraction inside gang-held zones

	// Crime success = base + stealth*StealthSlope + territory bonus
	//                 - presence*PresenceSlope, clamped to [MinChance, MaxChance].
	CrimeStealthSlope   float64
	CrimeTerritoryBonus float64
	CrimePresenceSlope  float64
	CrimeMinChance      float64
	CrimeMaxChance      float64

	RobHeatOnSuccess  float64
	RobHeatOnFail     float64
	RobMinSharePct    int
	RobMaxSharePct    int
	AttackHeat        float64
	KillHospitalTicks uint64
	KillCashPct       float64

	CoopRecruitTicks  uint64
	CoopExecuteDelay  uint64
	CoopLootMult      float64
	CoopBonusPerExtra float64
	CoopBonusCap      float64
	CoopGangBonus     float64
	CoopFriendBonus   float64
	CoopFriendMin     int

	BountyMin         int64
	BountyMax         int64
	BountyExpiryTicks uint64
	BountyRefundPct   float64

	GambleMinBet int64
	GambleMaxBet int64

	JailbreakBase       float64
	JailbreakCombatSlope float64
	JailbreakFailExtend uint64
	JailbreakEscapeHeat float64
	BribeJailCost       int64
	BribeHeatCostPerPt  int64
	BribeBase           float64
	BribeNegotiationSlope float64
	BribeHeatRelief     float64
	BribeFailHeat       float64
	BribeFailExtend     uint64
	BribeHeatFloor      float64 // Heat required for the street-bribe variant

	HealCostPerHP   int64
	HealTicksMin    uint64
	HealTicksMax    uint64
	RestRegenPerTick int
	RestMaxTicks    uint64

	CreateGangCost     int64
	ClaimTerritoryCost int64
	GangBanTicks       uint64
	GangInviteTicks    uint64
	TerritoryStrength  int
	TerritoryVisitWindow uint64
	TerritoryDecayStep int

	FriendDecayThreshold uint64
	FriendDecayStep      int

	StartBusinessCost  int64
	BusinessSweepTicks uint64
	BusinessBuyback    float64 // Fraction of list price a business pays on SELL
	PropertyResalePct  float64

	DisguiseTicks map[string]uint64 // quality -> duration

	LockTTL time.Duration

	NPCPeriodTicks uint64

	SummaryBudget      int
	SnapshotEveryTicks uint64
	SnapshotKeep       int
	ContractsPerZone   int

	// Zone heat bands for the state snapshot's police presence label.
	HotZoneMed  float64
	HotZoneHigh float64
}

// DefaultRules returns the tuning used by the stock world.
func DefaultRules() Rules {
	return Rules{
		StartingZone:    "residential",
		StartingCashMin: 50,
		StartingCashMax: 1000,

		MaxHeat:         100,
		HeatDecayIdle:   2,
		HeatDecayBusy:   1,
		ArrestThreshold: 60,

		ArrestBase:          0.15,
		ArrestHeatSlope:     0.5,
		ArrestPresenceSlope: 0.2,
		SentenceTicks:       30,
		ArrestFine:          500,
		TaxArrestThreshold:  2000,

		SafehouseDecayBonus: 0.5,
		GangZoneDecayBonus:  0.2,

		CrimeStealthSlope:   0.005,
		CrimeTerritoryBonus: 0.10,
		CrimePresenceSlope:  0.10,
		CrimeMinChance:      0.05,
		CrimeMaxChance:      0.95,

		RobHeatOnSuccess:  25,
		RobHeatOnFail:     15,
		RobMinSharePct:    10,
		RobMaxSharePct:    25,
		AttackHeat:        20,
		KillHospitalTicks: 100,
		KillCashPct:       0.25,

		CoopRecruitTicks:  50,
		CoopExecuteDelay:  5,
		CoopLootMult:      1.5,
		CoopBonusPerExtra: 0.10,
		CoopBonusCap:      0.30,
		CoopGangBonus:     0.15,
		CoopFriendBonus:   0.02,
		CoopFriendMin:     75,

		BountyMin:         500,
		BountyMax:         50000,
		BountyExpiryTicks: 500,
		BountyRefundPct:   0.5,

		GambleMinBet: 10,
		GambleMaxBet: 10000,

		JailbreakBase:        0.20,
		JailbreakCombatSlope: 0.03,
		JailbreakFailExtend:  25,
		JailbreakEscapeHeat:  15,
		BribeJailCost:        1000,
		BribeHeatCostPerPt:   10,
		BribeBase:            0.60,
		BribeNegotiationSlope: 0.003,
		BribeHeatRelief:      50,
		BribeFailHeat:        10,
		BribeFailExtend:      10,
		BribeHeatFloor:       40,

		HealCostPerHP:    3,
		HealTicksMin:     2,
		HealTicksMax:     5,
		RestRegenPerTick: 20,
		RestMaxTicks:     10,

		CreateGangCost:       5000,
		ClaimTerritoryCost:   2000,
		GangBanTicks:         1000,
		GangInviteTicks:      100,
		TerritoryStrength:    50,
		TerritoryVisitWindow: 100,
		TerritoryDecayStep:   5,

		FriendDecayThreshold: 200,
		FriendDecayStep:      5,

		StartBusinessCost:  3000,
		BusinessSweepTicks: 40,
		BusinessBuyback:    0.6,
		PropertyResalePct:  0.8,

		DisguiseTicks: map[string]uint64{
			"cheap":    50,
			"standard": 150,
			"premium":  400,
		},

		LockTTL: 24 * time.Hour,

		NPCPeriodTicks: 4,

		SummaryBudget:      50,
		SnapshotEveryTicks: 240,
		SnapshotKeep:       20,
		ContractsPerZone:   2,

		HotZoneMed:  0.35,
		HotZoneHigh: 0.65,
	}
}

// Load builds a Config from the environment. A .env file in the working
// directory is honored when present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:       envStr("CLAWCITY_ADDR", ":8420"),
		DBPath:     envStr("CLAWCITY_DB", "clawcity.db"),
		AdminKey:   os.Getenv("CLAWCITY_ADMIN_KEY"),
		Seed:       envStr("CLAWCITY_SEED", "clawcity-v1"),
		TickMs:     envInt("CLAWCITY_TICK_MS", 15000),
		RatePerSec: envFloat("CLAWCITY_RATE_PER_SEC", 5),
		RateBurst:  envInt("CLAWCITY_RATE_BURST", 10),
		NPCCount:   envInt("CLAWCITY_NPC_COUNT", 20),
		Rules:      DefaultRules(),
	}

	r := &cfg.Rules
	r.StartingZone = envStr("CLAWCITY_STARTING_ZONE", r.StartingZone)
	r.StartingCashMin = envInt64("CLAWCITY_STARTING_CASH_MIN", r.StartingCashMin)
	r.StartingCashMax = envInt64("CLAWCITY_STARTING_CASH_MAX", r.StartingCashMax)
	r.MaxHeat = envFloat("CLAWCITY_MAX_HEAT", r.MaxHeat)
	r.HeatDecayIdle = envFloat("CLAWCITY_HEAT_DECAY_IDLE", r.HeatDecayIdle)
	r.HeatDecayBusy = envFloat("CLAWCITY_HEAT_DECAY_BUSY", r.HeatDecayBusy)
	r.ArrestThreshold = envFloat("CLAWCITY_ARREST_THRESHOLD", r.ArrestThreshold)
	r.NPCPeriodTicks = envUint("CLAWCITY_NPC_PERIOD_TICKS", r.NPCPeriodTicks)
	r.CoopExecuteDelay = envUint("CLAWCITY_COOP_EXECUTE_DELAY", r.CoopExecuteDelay)
	r.BountyExpiryTicks = envUint("CLAWCITY_BOUNTY_EXPIRY_TICKS", r.BountyExpiryTicks)
	r.FriendDecayThreshold = envUint("CLAWCITY_FRIEND_DECAY_TICKS", r.FriendDecayThreshold)
	r.HotZoneMed = envFloat("CLAWCITY_HOT_ZONE_MED", r.HotZoneMed)
	r.HotZoneHigh = envFloat("CLAWCITY_HOT_ZONE_HIGH", r.HotZoneHigh)

	return cfg
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.TickMs <= 0 {
		return fmt.Errorf("tick period must be positive, got %dms", c.TickMs)
	}
	if c.Rules.StartingCashMin < 0 || c.Rules.StartingCashMax < c.Rules.StartingCashMin {
		return fmt.Errorf("starting cash bounds invalid: [%d, %d]",
			c.Rules.StartingCashMin, c.Rules.StartingCashMax)
	}
	if c.Rules.MaxHeat <= 0 {
		return fmt.Errorf("max heat must be positive, got %v", c.Rules.MaxHeat)
	}
	if c.Rules.ArrestThreshold > c.Rules.MaxHeat {
		return fmt.Errorf("arrest threshold %v exceeds max heat %v",
			c.Rules.ArrestThreshold, c.Rules.MaxHeat)
	}
	return nil
}

// TickPeriod returns the tick interval as a duration.
func (c Config) TickPeriod() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envUint(key string, def uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
