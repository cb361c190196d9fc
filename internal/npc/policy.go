// Package npc decides what the city's resident non-player agents do.
// Policies see a read-only view of one agent's surroundings and return a
// verb; effects go through the same dispatcher, locks, and events as real
// clients, so NPCs are indistinguishable on the wire.
package npc

import (
	"github.com/clawcity/clawcity/internal/actions"
	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/config"
	"github.com/clawcity/clawcity/internal/crime"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/entropy"
	"github.com/clawcity/clawcity/internal/world"
)

// View is the slice of the world a policy decides from. The engine builds
// it inside a read transaction; policies must not retain it.
type View struct {
	Tick      uint64
	Agent     *agents.Agent
	Zone      *world.Zone
	Neighbors []world.Zone // reachable in one move
	Jobs      []economy.Job
	Crimes    []crime.Type // solo only
	Disguises map[crime.DisguiseQuality]crime.DisguiseSpec
	Presence  float64
}

// Decision names the action an NPC submits. Args marshal to the verb's
// wire schema.
type Decision struct {
	Verb actions.Verb
	Args map[string]any
}

// Policy picks at most one action per step. nil sits the step out.
type Policy interface {
	Decide(v View) *Decision
}

// Heuristic is the stock policy: survive first, then earn, with appetite
// for crime set by a per-agent greed trait derived from the world seed.
type Heuristic struct {
	Rules config.Rules
	Rand  *entropy.Source
}

// NewHeuristic builds the stock policy.
func NewHeuristic(rules config.Rules, rand *entropy.Source) *Heuristic {
	return &Heuristic{Rules: rules, Rand: rand}
}

// greed is a stable trait in [0.15, 0.75) keyed to the agent, so the same
// world seed produces the same cast of timid clerks and career criminals.
func (h *Heuristic) greed(agentID string) float64 {
	return 0.15 + 0.6*float64(uint64(h.Rand.SubSeed("npc-greed:"+agentID))%1000)/1000
}

func (h *Heuristic) Decide(v View) *Decision {
	a := v.Agent

	if a.Status == agents.StatusJailed {
		if a.Cash >= h.Rules.BribeJailCost && h.Rand.Chance("npc", 0.5) {
			return &Decision{Verb: actions.BribeCops}
		}
		return &Decision{Verb: actions.AttemptJailbreak}
	}

	if a.Health < 40 {
		if d := h.seekHealing(v); d != nil {
			return d
		}
	}

	if a.Stamina < 25 {
		return &Decision{Verb: actions.Rest}
	}

	if a.Heat > 70 {
		if spec, ok := v.Disguises[crime.DisguiseStandard]; ok && a.Cash >= spec.Price {
			// Disguises are market-stall goods: buy here or walk to one.
			if v.Zone != nil && v.Zone.Type == world.ZoneMarket {
				return &Decision{
					Verb: actions.BuyDisguise,
					Args: map[string]any{"quality": string(crime.DisguiseStandard)},
				}
			}
			for _, z := range v.Neighbors {
				if z.Type == world.ZoneMarket {
					return &Decision{Verb: actions.Move, Args: map[string]any{"toZone": z.ID}}
				}
			}
		}
		// No disguise within reach; lie low instead of stacking more heat.
		if a.Stamina < 100 {
			return &Decision{Verb: actions.Rest}
		}
	}

	if a.Cash < 150 {
		if d := h.takeWork(v); d != nil {
			return d
		}
		return h.wander(v)
	}

	if h.Rand.Chance("npc", h.greed(a.ID)) {
		if len(v.Crimes) > 0 {
			ct := v.Crimes[h.Rand.Pick("npc_crime", len(v.Crimes))]
			return &Decision{
				Verb: actions.CommitCrime,
				Args: map[string]any{"crimeType": ct.ID},
			}
		}
	}

	if v.Zone != nil && v.Zone.Type == world.ZoneCasino && a.Cash >= h.Rules.GambleMinBet*10 {
		if h.Rand.Chance("npc", 0.4) {
			bet := a.Cash / 10
			if bet > h.Rules.GambleMaxBet {
				bet = h.Rules.GambleMaxBet
			}
			return &Decision{
				Verb: actions.Gamble,
				Args: map[string]any{"bet": bet, "risk": string(crime.RiskMed)},
			}
		}
	}

	if h.Rand.Chance("npc", 0.5) {
		if d := h.takeWork(v); d != nil {
			return d
		}
	}
	return h.wander(v)
}

// seekHealing heads for treatment: heal here if this is a hospital zone
// and the bill is payable, otherwise walk toward one.
func (h *Heuristic) seekHealing(v View) *Decision {
	cost := int64(100-v.Agent.Health) * h.Rules.HealCostPerHP
	if v.Zone != nil && v.Zone.Type == world.ZoneHospital {
		if v.Agent.Cash >= cost {
			return &Decision{Verb: actions.Heal}
		}
		return nil
	}
	for _, z := range v.Neighbors {
		if z.Type == world.ZoneHospital {
			return &Decision{Verb: actions.Move, Args: map[string]any{"toZone": z.ID}}
		}
	}
	return h.wander(v)
}

func (h *Heuristic) takeWork(v View) *Decision {
	if len(v.Jobs) == 0 {
		return nil
	}
	job := v.Jobs[h.Rand.Pick("npc_job", len(v.Jobs))]
	return &Decision{Verb: actions.TakeJob, Args: map[string]any{"jobId": job.ID}}
}

func (h *Heuristic) wander(v View) *Decision {
	if len(v.Neighbors) == 0 {
		return nil
	}
	z := v.Neighbors[h.Rand.Pick("npc_move", len(v.Neighbors))]
	return &Decision{Verb: actions.Move, Args: map[string]any{"toZone": z.ID}}
}
