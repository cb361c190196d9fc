package engine

import (
	"errors"
	"fmt"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/crime"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// processCoops is phase 8: recruiting deadlines collapse understaffed
// crews, armed crews execute. A crew settles as one unit so every
// participant sees the same outcome in the same tick.
func (e *Engine) processCoops(tx *store.Tx, w *world.World, rep *report) error {
	expired, err := tx.ExpiredRecruitingCoops(w.Tick)
	if err != nil {
		return err
	}
	for _, co := range expired {
		co.Status = crime.CoopCancelled
		if err := tx.SaveCoop(co); err != nil {
			return err
		}
		if err := e.releaseCrew(tx, co); err != nil {
			return err
		}
		if _, err := tx.Emit(world.EvCoopCancelled, store.EventRefs{
			ZoneID: co.ZoneID, EntityID: co.ID,
		}, map[string]any{
			"coopId": co.ID, "reason": "recruiting deadline passed",
			"participants": len(co.ParticipantIDs), "min": co.MinParticipants,
		}, nil); err != nil {
			return err
		}
	}

	due, err := tx.DueReadyCoops(w.Tick)
	if err != nil {
		return err
	}
	for _, co := range due {
		if err := e.executeCoop(tx, w, co); err != nil {
			return err
		}
		rep.CoopExecuted++
	}
	return nil
}

// executeCoop settles one armed crew. Participants arrested or
// hospitalized while waiting are no longer part of the attempt; if that
// drops the crew below min, the action collapses instead of executing.
func (e *Engine) executeCoop(tx *store.Tx, w *world.World, co *crime.CoopAction) error {
	ct := e.Catalog.Crime(co.TypeID)
	if ct == nil {
		return fmt.Errorf("coop %s references unknown crime %s", co.ID, co.TypeID)
	}

	var crew []*agents.Agent
	for _, id := range co.ParticipantIDs {
		a, err := tx.Agent(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return err
		}
		if a.Busy != nil && a.Busy.Kind == agents.BusyCoop && a.Busy.CoopID == co.ID {
			crew = append(crew, a)
		}
	}

	if len(crew) < co.MinParticipants {
		co.Status = crime.CoopCancelled
		if err := tx.SaveCoop(co); err != nil {
			return err
		}
		for _, a := range crew {
			if err := e.releaseMember(tx, a); err != nil {
				return err
			}
		}
		_, err := tx.Emit(world.EvCoopCancelled, store.EventRefs{
			ZoneID: co.ZoneID, EntityID: co.ID,
		}, map[string]any{
			"coopId": co.ID, "reason": "crew fell apart",
			"participants": len(crew), "min": co.MinParticipants,
		}, nil)
		return err
	}

	co.Status = crime.CoopExecuting
	if err := tx.SaveCoop(co); err != nil {
		return err
	}

	strongPairs, err := e.strongPairs(tx, crew)
	if err != nil {
		return err
	}
	p := co.SuccessChance(ct.BaseChance, strongPairs, sharedGang(crew),
		e.Presence.At(co.ZoneID, w.Tick),
		e.Rules.CoopBonusPerExtra, e.Rules.CoopBonusCap,
		e.Rules.CoopGangBonus, e.Rules.CoopFriendBonus,
		e.Rules.CrimePresenceSlope, e.Rules.CrimeMinChance, e.Rules.CrimeMaxChance)

	for _, a := range crew {
		a.Stats.CrimesAttempted++
	}

	if e.Rand.Chance("coop", p) {
		return e.coopSuccess(tx, w, co, ct, crew, p)
	}
	return e.coopFailure(tx, w, co, ct, crew, p)
}

func (e *Engine) coopSuccess(tx *store.Tx, w *world.World, co *crime.CoopAction,
	ct *crime.Type, crew []*agents.Agent, p float64) error {

	base := e.Rand.IntRange("coop_loot", ct.LootMin, ct.LootMax)
	total := int64(float64(base) * e.Rules.CoopLootMult)
	share := total / int64(len(crew))
	remainder := total - share*int64(len(crew))

	co.Status = crime.CoopCompleted
	co.Result = map[string]any{
		"success": true, "loot": total, "share": share, "chance": p,
	}
	if err := tx.SaveCoop(co); err != nil {
		return err
	}

	ev, err := tx.Emit(world.EvCoopSuccess, store.EventRefs{
		ZoneID: co.ZoneID, EntityID: co.ID,
	}, map[string]any{
		"coopId": co.ID, "crime": ct.ID, "loot": total,
		"share": share, "participants": len(crew),
	}, nil)
	if err != nil {
		return err
	}

	// Heat lands lighter than the solo rate; the crew shares exposure.
	heatEach := ct.Heat * 0.8
	for _, a := range crew {
		cut := share
		if a.ID == co.InitiatorID {
			cut += remainder
		}
		if _, err := tx.Post(a, economy.Credit, cut, "coop crime: "+ct.ID, &ev.ID); err != nil {
			return err
		}
		a.AddHeat(heatEach, e.Rules.MaxHeat)
		a.Stats.CrimesSucceeded++
		a.Stats.CoopCrimesCompleted++
		if a.Skills.Stealth < 100 {
			a.Skills.Stealth++
		}
		if err := e.releaseMember(tx, a); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) coopFailure(tx *store.Tx, w *world.World, co *crime.CoopAction,
	ct *crime.Type, crew []*agents.Agent, p float64) error {

	co.Status = crime.CoopFailed
	co.Result = map[string]any{"success": false, "chance": p}
	if err := tx.SaveCoop(co); err != nil {
		return err
	}

	if _, err := tx.Emit(world.EvCoopFailed, store.EventRefs{
		ZoneID: co.ZoneID, EntityID: co.ID,
	}, map[string]any{
		"coopId": co.ID, "crime": ct.ID, "participants": len(crew),
	}, nil); err != nil {
		return err
	}

	for _, a := range crew {
		a.AddHeat(ct.Heat, e.Rules.MaxHeat)
		dmg := int(e.Rand.IntRange("coop_dmg", int64(ct.DamageMin), int64(ct.DamageMax)))
		hospitalized := a.ApplyDamage(dmg, w.Tick+e.Rules.KillHospitalTicks)
		if hospitalized {
			if _, err := tx.Emit(world.EvAgentHospitalized, store.EventRefs{
				AgentID: a.ID, ZoneID: a.ZoneID,
			}, map[string]any{"cause": "coop crime", "releaseTick": *a.ReleaseTick}, nil); err != nil {
				return err
			}
			if err := tx.SaveAgent(a); err != nil {
				return err
			}
			continue
		}
		if err := e.releaseMember(tx, a); err != nil {
			return err
		}
	}
	return nil
}

// releaseCrew returns every participant still waiting on this action to
// the street.
func (e *Engine) releaseCrew(tx *store.Tx, co *crime.CoopAction) error {
	for _, id := range co.ParticipantIDs {
		a, err := tx.Agent(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return err
		}
		if a.Busy == nil || a.Busy.Kind != agents.BusyCoop || a.Busy.CoopID != co.ID {
			continue
		}
		if err := e.releaseMember(tx, a); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) releaseMember(tx *store.Tx, a *agents.Agent) error {
	a.ClearBusy()
	if a.Status == agents.StatusBusy {
		a.Status = agents.StatusIdle
	}
	return tx.SaveAgent(a)
}

// strongPairs counts crew pairs bonded above the friendship floor.
func (e *Engine) strongPairs(tx *store.Tx, crew []*agents.Agent) (int, error) {
	n := 0
	for i := 0; i < len(crew); i++ {
		for j := i + 1; j < len(crew); j++ {
			f, err := tx.Friendship(crew[i].ID, crew[j].ID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return 0, err
			}
			if f.Strength >= e.Rules.CoopFriendMin {
				n++
			}
		}
	}
	return n, nil
}

// sharedGang reports whether the whole crew flies one flag.
func sharedGang(crew []*agents.Agent) bool {
	if len(crew) == 0 || crew[0].GangID == nil {
		return false
	}
	gang := *crew[0].GangID
	for _, a := range crew[1:] {
		if a.GangID == nil || *a.GangID != gang {
			return false
		}
	}
	return true
}
