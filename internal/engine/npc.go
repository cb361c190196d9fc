package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/npc"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// stepNPCs is phase 12. It runs after the tick transaction commits and
// submits NPC actions through the public dispatcher, so NPCs obey the same
// gates, locks, and ledger as any client. The request id is derived from
// (agent, tick): a crashed step replays cleanly on the next boot.
func (e *Engine) stepNPCs(tick uint64) int {
	if e.Policy == nil || e.Rules.NPCPeriodTicks == 0 || tick%e.Rules.NPCPeriodTicks != 0 {
		return 0
	}

	type planned struct {
		agentID string
		d       npc.Decision
	}
	var plans []planned

	err := e.Store.View(func(tx *store.Tx) error {
		residents, err := tx.NPCs()
		if err != nil {
			return err
		}
		for _, a := range residents {
			if a.Status != agents.StatusIdle && a.Status != agents.StatusJailed {
				continue
			}
			d := e.Policy.Decide(e.viewFor(a, tick))
			if d == nil {
				continue
			}
			plans = append(plans, planned{agentID: a.ID, d: *d})
		}
		return nil
	})
	if err != nil {
		slog.Error("npc step observation failed", "tick", tick, "error", err)
		return 0
	}

	acted := 0
	for _, p := range plans {
		raw, err := json.Marshal(p.d.Args)
		if err != nil {
			slog.Error("npc args encode failed", "agent", p.agentID, "verb", p.d.Verb, "error", err)
			continue
		}
		requestID := fmt.Sprintf("npc-%s-%d", p.agentID, tick)
		res := e.Dispatcher.Act(p.agentID, requestID, p.d.Verb, raw)
		if res.OK {
			acted++
			continue
		}
		// Rejected decisions are data, not faults; record and move on.
		if err := e.Store.Update(func(tx *store.Tx) error {
			_, emitErr := tx.Emit(world.EvNPCActionFailed, store.EventRefs{
				AgentID: p.agentID,
			}, map[string]any{
				"verb": string(p.d.Verb), "code": string(res.Error), "message": res.Message,
			}, &requestID)
			return emitErr
		}); err != nil {
			slog.Error("recording npc failure failed", "agent", p.agentID, "error", err)
		}
	}
	return acted
}

// viewFor assembles the policy's read-only view of one NPC's surroundings.
func (e *Engine) viewFor(a *agents.Agent, tick uint64) npc.View {
	v := npc.View{
		Tick:      tick,
		Agent:     a,
		Zone:      e.Catalog.Zone(a.ZoneID),
		Jobs:      e.Catalog.JobsInZone(a.ZoneID),
		Disguises: e.Catalog.Disguises,
		Presence:  e.Presence.At(a.ZoneID, tick),
	}
	for _, edge := range e.Catalog.EdgesFrom(a.ZoneID) {
		if z := e.Catalog.Zone(edge.To); z != nil && (edge.CashCost == 0 || a.Cash >= edge.CashCost) {
			v.Neighbors = append(v.Neighbors, *z)
		}
	}
	for _, ct := range e.Catalog.Crimes {
		if !ct.Coop {
			v.Crimes = append(v.Crimes, ct)
		}
	}
	return v
}
