package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/clawcity/clawcity/internal/actions"
	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/catalog"
	"github.com/clawcity/clawcity/internal/config"
	"github.com/clawcity/clawcity/internal/crime"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/entropy"
	"github.com/clawcity/clawcity/internal/npc"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// errPaused aborts a pipeline run without side effects when the world is
// paused.
var errPaused = errors.New("engine: world paused")

// businessFloat is the till cash an owned business keeps through the
// profit sweep, so it can still buy from agents.
const businessFloat = 1000

// Engine owns the tick pipeline. One instance per process.
type Engine struct {
	Store      *store.Store
	Catalog    *catalog.Catalog
	Rules      config.Rules
	Rand       *entropy.Source
	Presence   *world.PresenceField
	Dispatcher *actions.Dispatcher
	Policy     npc.Policy
}

// report carries the per-tick counters emitted with TICK_COMPLETED.
type report struct {
	Resolved        int
	Arrests         int
	Released        int
	TerritoryIncome int64
	RentPayments    int
	Evictions       int
	CoopExecuted    int
	BountiesExpired int
	NPCActions      int
}

// RunTick executes the tick pipeline once. Phases 1 through 11 plus the
// summary refresh and the completion event commit in one serializable
// transaction; the NPC step runs afterwards through the public dispatcher
// and never blocks or rolls back the committed tick. A paused world is a
// no-op.
func (e *Engine) RunTick() error {
	start := time.Now()
	var (
		rep  report
		tick uint64
	)
	err := e.Store.Update(func(tx *store.Tx) error {
		w, err := tx.World()
		if err != nil {
			return err
		}
		if !w.Running() {
			return errPaused
		}

		// Phase 1: advance the tick. Saving early makes every Emit and
		// ledger post in this transaction stamp the new tick.
		w.Tick++
		w.LastTickAt = tx.Now()
		if err := tx.SaveWorld(w); err != nil {
			return err
		}
		tick = w.Tick

		if err := e.resolveBusy(tx, w, &rep); err != nil {
			return fmt.Errorf("phase 2 resolve busy: %w", err)
		}
		if err := e.decayHeat(tx, w); err != nil {
			return fmt.Errorf("phase 3 heat decay: %w", err)
		}
		if err := e.arrestChecks(tx, w, &rep); err != nil {
			return fmt.Errorf("phase 4 arrests: %w", err)
		}
		if err := e.releaseDue(tx, w, &rep); err != nil {
			return fmt.Errorf("phase 5 releases: %w", err)
		}
		if err := e.territoryIncome(tx, w, &rep); err != nil {
			return fmt.Errorf("phase 6 territories: %w", err)
		}
		if err := e.collectRent(tx, w, &rep); err != nil {
			return fmt.Errorf("phase 7 rent: %w", err)
		}
		if err := e.processCoops(tx, w, &rep); err != nil {
			return fmt.Errorf("phase 8 coops: %w", err)
		}
		if err := e.expireBounties(tx, w, &rep); err != nil {
			return fmt.Errorf("phase 9 bounties: %w", err)
		}
		if err := e.expireDisguises(tx, w); err != nil {
			return fmt.Errorf("phase 10 disguises: %w", err)
		}
		if err := e.decayFriendships(tx, w); err != nil {
			return fmt.Errorf("phase 11 friendships: %w", err)
		}
		if err := e.refreshSummaries(tx, w); err != nil {
			return fmt.Errorf("phase 13 summaries: %w", err)
		}
		if err := e.maintain(tx, w); err != nil {
			return fmt.Errorf("phase 13 maintenance: %w", err)
		}

		if _, err := tx.Emit(world.EvTickCompleted, store.EventRefs{}, map[string]any{
			"resolved":        rep.Resolved,
			"arrests":         rep.Arrests,
			"released":        rep.Released,
			"territoryIncome": rep.TerritoryIncome,
			"rentPayments":    rep.RentPayments,
			"coopExecuted":    rep.CoopExecuted,
		}, nil); err != nil {
			return err
		}
		return tx.SaveWorld(w)
	})
	if errors.Is(err, errPaused) {
		return nil
	}
	if err != nil {
		// Record the failure without advancing anything; the next fire
		// retries the same tick.
		if evErr := e.Store.Update(func(tx *store.Tx) error {
			_, emitErr := tx.Emit(world.EvTickFailed, store.EventRefs{},
				map[string]any{"error": err.Error()}, nil)
			return emitErr
		}); evErr != nil {
			slog.Error("recording tick failure failed", "error", evErr)
		}
		return err
	}

	// Phase 12, post-commit: NPCs act through the public dispatcher.
	rep.NPCActions = e.stepNPCs(tick)

	slog.Info("tick completed",
		"tick", tick,
		"resolved", rep.Resolved,
		"arrests", rep.Arrests,
		"released", rep.Released,
		"territory_income", "$"+humanize.Comma(rep.TerritoryIncome),
		"rent_payments", rep.RentPayments,
		"coops_executed", rep.CoopExecuted,
		"npc_actions", rep.NPCActions,
		"elapsed", time.Since(start))
	return nil
}

// resolveBusy is phase 2: apply the queued completion effect of every busy
// agent whose horizon has arrived. Coop participants are settled by phase 8
// so a crew resolves as one unit.
func (e *Engine) resolveBusy(tx *store.Tx, w *world.World, rep *report) error {
	due, err := tx.BusyAgentsDue(w.Tick)
	if err != nil {
		return err
	}
	for _, a := range due {
		if a.Busy == nil {
			// Inconsistent row; repair to idle rather than wedge the tick.
			a.ClearBusy()
			a.Status = agents.StatusIdle
			if err := tx.SaveAgent(a); err != nil {
				return err
			}
			continue
		}
		if a.Busy.Kind == agents.BusyCoop {
			continue
		}
		if err := e.completeBusy(tx, w, a); err != nil {
			return err
		}
		rep.Resolved++
	}
	return nil
}

func (e *Engine) completeBusy(tx *store.Tx, w *world.World, a *agents.Agent) error {
	busy := *a.Busy
	a.ClearBusy()
	a.Status = agents.StatusIdle

	switch busy.Kind {
	case agents.BusyMove:
		a.ZoneID = busy.ToZone
		if busy.ArriveHeat > 0 {
			a.AddHeat(busy.ArriveHeat, e.Rules.MaxHeat)
		}
		if _, err := tx.Emit(world.EvMoveCompleted, store.EventRefs{
			AgentID: a.ID, ZoneID: a.ZoneID,
		}, map[string]any{"zone": a.ZoneID, "heat": a.Heat}, nil); err != nil {
			return err
		}

	case agents.BusyJob:
		job := e.Catalog.Job(busy.JobID)
		if job == nil {
			return fmt.Errorf("agent %s finished unknown job %s", a.ID, busy.JobID)
		}
		ev, err := tx.Emit(world.EvJobCompleted, store.EventRefs{
			AgentID: a.ID, ZoneID: a.ZoneID, EntityID: job.ID,
		}, map[string]any{"job": job.ID, "wage": job.Wage}, nil)
		if err != nil {
			return err
		}
		if _, err := tx.Post(a, economy.Credit, job.Wage, "wage: "+job.ID, &ev.ID); err != nil {
			return err
		}
		a.Stats.JobsCompleted++
		a.Reputation++

	case agents.BusyHeal:
		a.Health = 100
		if _, err := tx.Emit(world.EvHealCompleted, store.EventRefs{
			AgentID: a.ID, ZoneID: a.ZoneID,
		}, nil, nil); err != nil {
			return err
		}

	case agents.BusyRest:
		a.Stamina += int(busy.RestTicks) * e.Rules.RestRegenPerTick
		a.ClampVitals()
		if _, err := tx.Emit(world.EvRestCompleted, store.EventRefs{
			AgentID: a.ID, ZoneID: a.ZoneID,
		}, map[string]any{"stamina": a.Stamina}, nil); err != nil {
			return err
		}

	case agents.BusyContract:
		ct, err := tx.Contract(busy.ContractID)
		if err != nil {
			return fmt.Errorf("agent %s finished missing contract %s: %w", a.ID, busy.ContractID, err)
		}
		ct.Status = economy.ContractCompleted
		if err := tx.SaveContract(ct); err != nil {
			return err
		}
		ev, err := tx.Emit(world.EvContractDone, store.EventRefs{
			AgentID: a.ID, ZoneID: a.ZoneID, EntityID: ct.ID,
		}, map[string]any{"contract": ct.ID, "reward": ct.Reward}, nil)
		if err != nil {
			return err
		}
		if _, err := tx.Post(a, economy.Credit, ct.Reward, "contract: "+ct.ID, &ev.ID); err != nil {
			return err
		}
		if ct.Heat > 0 {
			a.AddHeat(ct.Heat, e.Rules.MaxHeat)
		}
		a.Stats.ContractsCompleted++

	default:
		return fmt.Errorf("agent %s has unknown busy kind %q", a.ID, busy.Kind)
	}

	return tx.SaveAgent(a)
}

// decayHeat is phase 3. Idle agents cool faster than busy ones; a
// safehouse, a gang-held zone, and an active disguise all speed it up.
func (e *Engine) decayHeat(tx *store.Tx, w *world.World) error {
	all, err := tx.UnbannedAgents()
	if err != nil {
		return err
	}
	for _, a := range all {
		if a.Heat <= 0 {
			continue
		}
		decay := e.Rules.HeatDecayIdle
		if a.Status == agents.StatusBusy {
			decay = e.Rules.HeatDecayBusy
		}
		mult := 1.0
		if a.HomePropertyID != nil {
			if prop, err := tx.Property(*a.HomePropertyID); err == nil && prop.Safehouse {
				mult += e.Rules.SafehouseDecayBonus
			} else if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
		if a.GangID != nil {
			if t, err := tx.Territory(a.ZoneID); err == nil && t.GangID == *a.GangID {
				mult += e.Rules.GangZoneDecayBonus
			} else if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
		bonus := 0.0
		if d, err := tx.Disguise(a.ID); err == nil {
			bonus = d.HeatDecayBonus
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		a.Heat -= decay*mult + bonus
		a.ClampHeat(e.Rules.MaxHeat)
		if err := tx.SaveAgent(a); err != nil {
			return err
		}
	}
	return nil
}

// arrestChecks is phase 4: Bernoulli arrest for every hot agent, then the
// tax-arrears sweep.
func (e *Engine) arrestChecks(tx *store.Tx, w *world.World, rep *report) error {
	hot, err := tx.HotAgents(e.Rules.ArrestThreshold)
	if err != nil {
		return err
	}
	for _, a := range hot {
		if a.Status == agents.StatusJailed || a.Status == agents.StatusHospitalized {
			continue
		}
		p := e.arrestChance(a.Heat, e.Presence.At(a.ZoneID, w.Tick))
		if !e.Rand.Chance("arrest", p) {
			continue
		}
		if err := e.arrest(tx, w, a, e.Rules.ArrestFine, "arrest fine"); err != nil {
			return err
		}
		rep.Arrests++
	}

	// Tax arrears: the city takes what it can every tick; agents deep
	// enough in debt get jailed on the spot.
	all, err := tx.UnbannedAgents()
	if err != nil {
		return err
	}
	for _, a := range all {
		if a.TaxOwed <= 0 {
			continue
		}
		if a.Cash > 0 {
			taken, err := tx.DebitUpTo(a, a.TaxOwed, "tax arrears", nil)
			if err != nil {
				return err
			}
			if taken > 0 {
				a.TaxOwed -= taken
				if _, err := tx.Emit(world.EvTaxCollected, store.EventRefs{
					AgentID: a.ID, ZoneID: a.ZoneID,
				}, map[string]any{"collected": taken, "remaining": a.TaxOwed}, nil); err != nil {
					return err
				}
			}
		}
		if a.TaxOwed > e.Rules.TaxArrestThreshold && a.Status == agents.StatusIdle {
			if err := e.arrest(tx, w, a, 0, "tax evasion"); err != nil {
				return err
			}
			rep.Arrests++
			continue
		}
		if err := tx.SaveAgent(a); err != nil {
			return err
		}
	}
	return nil
}

// arrestChance is f(heat, policePresence): a base rate plus a linear term
// in how far past the threshold the agent is, plus a presence term.
func (e *Engine) arrestChance(heat, presence float64) float64 {
	r := e.Rules
	p := r.ArrestBase +
		(heat-r.ArrestThreshold)/r.MaxHeat*r.ArrestHeatSlope +
		presence*r.ArrestPresenceSlope
	return crime.Clamp(p, 0, 0.95)
}

func (e *Engine) arrest(tx *store.Tx, w *world.World, a *agents.Agent, fine int64, reason string) error {
	a.ClearBusy()
	a.Status = agents.StatusJailed
	release := w.Tick + e.Rules.SentenceTicks
	a.ReleaseTick = &release
	a.Stats.TimesArrested++

	ev, err := tx.Emit(world.EvAgentArrested, store.EventRefs{
		AgentID: a.ID, ZoneID: a.ZoneID,
	}, map[string]any{"reason": reason, "releaseTick": release, "heat": a.Heat}, nil)
	if err != nil {
		return err
	}
	if fine > 0 {
		paid, err := tx.DebitUpTo(a, fine, reason, &ev.ID)
		if err != nil {
			return err
		}
		if paid < fine {
			a.TaxOwed += fine - paid
		}
	}
	return tx.SaveAgent(a)
}

// releaseDue is phase 5: sentences served and hospital stays over.
func (e *Engine) releaseDue(tx *store.Tx, w *world.World, rep *report) error {
	due, err := tx.ReleaseDueAgents(w.Tick)
	if err != nil {
		return err
	}
	for _, a := range due {
		wasJailed := a.Status == agents.StatusJailed
		a.Status = agents.StatusIdle
		a.ReleaseTick = nil

		typ := world.EvAgentDischarged
		if wasJailed {
			typ = world.EvAgentReleased
		} else {
			// Discharged patched up, not pristine.
			if a.Health < 50 {
				a.Health = 50
			}
		}
		if _, err := tx.Emit(typ, store.EventRefs{
			AgentID: a.ID, ZoneID: a.ZoneID,
		}, nil, nil); err != nil {
			return err
		}
		if err := tx.SaveAgent(a); err != nil {
			return err
		}
		rep.Released++
	}
	return nil
}

// territoryIncome is phase 6: gang treasuries collect, unvisited holdings
// decay and eventually collapse.
func (e *Engine) territoryIncome(tx *store.Tx, w *world.World, rep *report) error {
	territories, err := tx.AllTerritories()
	if err != nil {
		return err
	}
	for _, t := range territories {
		g, err := tx.Gang(t.GangID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Orphaned by a disband mid-failure; clean it up.
				if err := tx.DeleteTerritory(t.ZoneID); err != nil {
					return err
				}
				continue
			}
			return err
		}

		g.Treasury += t.IncomePerTick
		if err := tx.SaveGang(g); err != nil {
			return err
		}
		if _, err := tx.Emit(world.EvTerritoryIncome, store.EventRefs{
			ZoneID: t.ZoneID, EntityID: g.ID,
		}, map[string]any{"gangId": g.ID, "income": t.IncomePerTick, "treasury": g.Treasury}, nil); err != nil {
			return err
		}
		rep.TerritoryIncome += t.IncomePerTick

		members, err := tx.AgentsInGang(g.ID)
		if err != nil {
			return err
		}
		defended := false
		for _, m := range members {
			if m.ZoneID == t.ZoneID {
				defended = true
				break
			}
		}
		switch {
		case defended:
			t.LastDefended = w.Tick
			if err := tx.SaveTerritory(t); err != nil {
				return err
			}
		case w.Tick-t.LastDefended > e.Rules.TerritoryVisitWindow:
			t.ControlStrength -= e.Rules.TerritoryDecayStep
			if t.ControlStrength <= 0 {
				if err := tx.DeleteTerritory(t.ZoneID); err != nil {
					return err
				}
				if _, err := tx.Emit(world.EvTerritoryLost, store.EventRefs{
					ZoneID: t.ZoneID, EntityID: g.ID,
				}, map[string]any{"gangId": g.ID, "zone": t.ZoneID, "reason": "abandoned"}, nil); err != nil {
					return err
				}
			} else if err := tx.SaveTerritory(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectRent is phase 7: due rents move to owners (or vanish into the
// city for city-owned stock); broke tenants get evicted. On the sweep
// cadence, owned businesses pay their banked profit out to their owners.
func (e *Engine) collectRent(tx *store.Tx, w *world.World, rep *report) error {
	due, err := tx.ResidenciesDue(w.Tick)
	if err != nil {
		return err
	}
	for _, r := range due {
		tenant, err := tx.Agent(r.AgentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				if err := tx.DeleteResidency(r.AgentID); err != nil {
					return err
				}
				continue
			}
			return err
		}
		prop, err := tx.Property(r.PropertyID)
		if err != nil {
			return err
		}
		if tenant.Banned() || tenant.Cash < prop.RentPerPeriod {
			if err := tx.DeleteResidency(r.AgentID); err != nil {
				return err
			}
			if tenant.HomePropertyID != nil && *tenant.HomePropertyID == prop.ID {
				tenant.HomePropertyID = nil
				if err := tx.SaveAgent(tenant); err != nil {
					return err
				}
			}
			if _, err := tx.Emit(world.EvEvicted, store.EventRefs{
				AgentID: tenant.ID, ZoneID: prop.ZoneID, EntityID: prop.ID,
			}, map[string]any{"property": prop.ID, "rent": prop.RentPerPeriod}, nil); err != nil {
				return err
			}
			rep.Evictions++
			continue
		}

		ev, err := tx.Emit(world.EvRentPaid, store.EventRefs{
			AgentID: tenant.ID, ZoneID: prop.ZoneID, EntityID: prop.ID,
		}, map[string]any{"property": prop.ID, "rent": prop.RentPerPeriod}, nil)
		if err != nil {
			return err
		}
		if _, err := tx.Post(tenant, economy.Debit, prop.RentPerPeriod, "rent: "+prop.ID, &ev.ID); err != nil {
			return err
		}
		if prop.OwnerAgentID != nil && *prop.OwnerAgentID != tenant.ID {
			owner, err := tx.Agent(*prop.OwnerAgentID)
			if err != nil {
				return err
			}
			if _, err := tx.Post(owner, economy.Credit, prop.RentPerPeriod, "rent income: "+prop.ID, &ev.ID); err != nil {
				return err
			}
		}
		r.RentDueAt = w.Tick + prop.RentPeriodTicks
		if err := tx.SaveResidency(r); err != nil {
			return err
		}
		rep.RentPayments++
	}

	if e.Rules.BusinessSweepTicks > 0 && w.Tick%e.Rules.BusinessSweepTicks == 0 {
		if err := e.sweepBusinessProfits(tx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) sweepBusinessProfits(tx *store.Tx) error {
	owned, err := tx.OwnedBusinesses()
	if err != nil {
		return err
	}
	for _, b := range owned {
		payout := b.CashOnHand - businessFloat
		if payout <= 0 {
			continue
		}
		owner, err := tx.Agent(*b.OwnerAgentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return err
		}
		if owner.Banned() {
			continue
		}
		ev, err := tx.Emit(world.EvBusinessIncome, store.EventRefs{
			AgentID: owner.ID, ZoneID: b.ZoneID, EntityID: b.ID,
		}, map[string]any{"business": b.ID, "payout": payout}, nil)
		if err != nil {
			return err
		}
		if _, err := tx.Post(owner, economy.Credit, payout, "business income: "+b.ID, &ev.ID); err != nil {
			return err
		}
		b.CashOnHand = businessFloat
		if err := tx.SaveBusiness(b); err != nil {
			return err
		}
	}
	return nil
}

// expireBounties is phase 9: unclaimed bounties lapse and partially refund
// their placer.
func (e *Engine) expireBounties(tx *store.Tx, w *world.World, rep *report) error {
	expired, err := tx.ExpiredActiveBounties(w.Tick)
	if err != nil {
		return err
	}
	for _, b := range expired {
		b.Status = economy.BountyExpired
		if err := tx.SaveBounty(b); err != nil {
			return err
		}
		refund := int64(float64(b.Amount) * e.Rules.BountyRefundPct)
		ev, err := tx.Emit(world.EvBountyExpired, store.EventRefs{
			AgentID: b.PlacedByAgentID, EntityID: b.ID,
		}, map[string]any{"bountyId": b.ID, "target": b.TargetAgentID, "refund": refund}, nil)
		if err != nil {
			return err
		}
		if refund > 0 {
			placer, err := tx.Agent(b.PlacedByAgentID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return err
			}
			if !placer.Banned() {
				if _, err := tx.Post(placer, economy.Credit, refund, "bounty refund "+b.ID, &ev.ID); err != nil {
					return err
				}
			}
		}
		rep.BountiesExpired++
	}
	return nil
}

// expireDisguises is phase 10.
func (e *Engine) expireDisguises(tx *store.Tx, w *world.World) error {
	expired, err := tx.ExpiredDisguises(w.Tick)
	if err != nil {
		return err
	}
	for _, d := range expired {
		if err := tx.DeleteDisguise(d.AgentID); err != nil {
			return err
		}
		if _, err := tx.Emit(world.EvDisguiseExpired, store.EventRefs{
			AgentID: d.AgentID,
		}, map[string]any{"quality": d.Quality}, nil); err != nil {
			return err
		}
	}
	return nil
}

// decayFriendships is phase 11: neglected bonds weaken a step at a time
// and eventually dissolve.
func (e *Engine) decayFriendships(tx *store.Tx, w *world.World) error {
	if w.Tick < e.Rules.FriendDecayThreshold {
		return nil
	}
	stale, err := tx.StaleFriendships(w.Tick - e.Rules.FriendDecayThreshold)
	if err != nil {
		return err
	}
	for _, f := range stale {
		if f.Decay(e.Rules.FriendDecayStep) {
			if err := tx.DeleteFriendship(f.Agent1ID, f.Agent2ID); err != nil {
				return err
			}
			if _, err := tx.Emit(world.EvFriendshipFaded, store.EventRefs{
				AgentID: f.Agent1ID, EntityID: f.Agent2ID,
			}, nil, nil); err != nil {
				return err
			}
			continue
		}
		if err := tx.SaveFriendship(f); err != nil {
			return err
		}
	}
	return nil
}
