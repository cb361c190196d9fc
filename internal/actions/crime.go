package actions

import (
	"errors"
	"fmt"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/crime"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// doCommitCrime attempts a solo crime in the current zone. Success pays
// loot and trains stealth; failure deals damage. Heat rises either way.
func (d *Dispatcher) doCommitCrime(c *actionCtx, args commitCrimeArgs) (*outcome, error) {
	if args.CrimeType == "" {
		return nil, badArgs("crimeType is required")
	}
	ct := d.Catalog.Crime(args.CrimeType)
	if ct == nil {
		return nil, precondition("no such crime %s", args.CrimeType)
	}
	if ct.Coop {
		return nil, precondition("%s needs a crew; use INITIATE_COOP_CRIME", ct.Name)
	}

	presence := d.presenceAt(c.agent.ZoneID, c.tick())
	p := crime.SuccessChance(ct.BaseChance, c.agent.Skills.Stealth, d.inOwnTerritory(c),
		presence, d.Rules.CrimeStealthSlope, d.Rules.CrimeTerritoryBonus,
		d.Rules.CrimePresenceSlope, d.Rules.CrimeMinChance, d.Rules.CrimeMaxChance)

	c.agent.Stats.CrimesAttempted++
	c.agent.AddHeat(ct.Heat, d.Rules.MaxHeat)

	if d.Rand.Chance("crime", p) {
		loot := d.Rand.IntRange("crime_loot", ct.LootMin, ct.LootMax)
		ev, err := c.tx.Emit(world.EvCrimeSuccess, store.EventRefs{
			AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: ct.ID,
		}, map[string]any{"crime": ct.ID, "loot": loot}, c.reqID())
		if err != nil {
			return nil, err
		}
		if _, err := c.tx.Post(c.agent, economy.Credit, loot, "crime: "+ct.ID, &ev.ID); err != nil {
			return nil, err
		}
		c.agent.Stats.CrimesSucceeded++
		if c.agent.Skills.Stealth < 100 {
			c.agent.Skills.Stealth++
		}
		return ok(fmt.Sprintf("%s paid off: $%d", ct.Name, loot)).
			with("loot", loot).
			with("heat", c.agent.Heat), nil
	}

	dmg := int(d.Rand.IntRange("crime_dmg", int64(ct.DamageMin), int64(ct.DamageMax)))
	hospitalized := c.agent.ApplyDamage(dmg, c.tick()+d.Rules.KillHospitalTicks)
	if _, err := c.tx.Emit(world.EvCrimeFailed, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: ct.ID,
	}, map[string]any{"crime": ct.ID, "damage": dmg, "hospitalized": hospitalized}, c.reqID()); err != nil {
		return nil, err
	}
	if hospitalized {
		if _, err := c.tx.Emit(world.EvAgentHospitalized, store.EventRefs{
			AgentID: c.agent.ID, ZoneID: c.agent.ZoneID,
		}, map[string]any{"cause": "crime", "releaseTick": deref(c.agent.ReleaseTick)}, c.reqID()); err != nil {
			return nil, err
		}
	}
	return ok(fmt.Sprintf("%s went wrong: took %d damage", ct.Name, dmg)).
		with("damage", dmg).
		with("heat", c.agent.Heat).
		with("hospitalized", hospitalized), nil
}

// doRobAgent mugs a co-located agent for a slice of their cash.
func (d *Dispatcher) doRobAgent(c *actionCtx, args targetArgs) (*outcome, error) {
	target, aerr := d.liveTarget(c, args.TargetAgentID)
	if aerr != nil {
		return nil, aerr
	}

	winP := crime.CombatWinChance(c.agent.Skills.Combat+c.agent.Skills.Stealth,
		target.Skills.Combat+target.Skills.Stealth)

	if d.Rand.Chance("rob", winP) {
		share := d.Rand.IntRange("rob_share",
			int64(d.Rules.RobMinSharePct), int64(d.Rules.RobMaxSharePct))
		loot := target.Cash * share / 100
		ev, err := c.tx.Emit(world.EvAgentRobbed, store.EventRefs{
			AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: target.ID,
		}, map[string]any{"target": target.ID, "loot": loot}, c.reqID())
		if err != nil {
			return nil, err
		}
		if loot > 0 {
			if _, err := c.tx.Post(target, economy.Debit, loot, "robbed by "+c.agent.ID, &ev.ID); err != nil {
				return nil, err
			}
			if _, err := c.tx.Post(c.agent, economy.Credit, loot, "robbed "+target.ID, &ev.ID); err != nil {
				return nil, err
			}
		}
		c.agent.Stats.RobsCompleted++
		c.agent.AddHeat(d.Rules.RobHeatOnSuccess, d.Rules.MaxHeat)
		target.Stats.TimesRobbed++
		if err := c.tx.SaveAgent(target); err != nil {
			return nil, err
		}
		return ok(fmt.Sprintf("robbed %s for $%d", target.Name, loot)).
			with("loot", loot).
			with("heat", c.agent.Heat), nil
	}

	dmg := int(d.Rand.IntRange("rob_dmg", 5, 15))
	hospitalized := c.agent.ApplyDamage(dmg, c.tick()+d.Rules.KillHospitalTicks)
	c.agent.AddHeat(d.Rules.RobHeatOnFail, d.Rules.MaxHeat)
	if _, err := c.tx.Emit(world.EvRobAttemptFailed, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: target.ID,
	}, map[string]any{"target": target.ID, "damage": dmg}, c.reqID()); err != nil {
		return nil, err
	}
	return ok(fmt.Sprintf("%s fought you off: took %d damage", target.Name, dmg)).
		with("damage", dmg).
		with("heat", c.agent.Heat).
		with("hospitalized", hospitalized), nil
}

// doAttackAgent fights a co-located agent. A knockout counts as a kill:
// the victim is hospitalized and drops a share of their cash.
func (d *Dispatcher) doAttackAgent(c *actionCtx, args targetArgs) (*outcome, error) {
	target, aerr := d.liveTarget(c, args.TargetAgentID)
	if aerr != nil {
		return nil, aerr
	}

	winP := crime.CombatWinChance(c.agent.Skills.Combat, target.Skills.Combat)
	c.agent.AddHeat(d.Rules.AttackHeat, d.Rules.MaxHeat)

	if !d.Rand.Chance("attack", winP) {
		dmg := int(d.Rand.IntRange("attack_dmg", 10, 25))
		hospitalized := c.agent.ApplyDamage(dmg, c.tick()+d.Rules.KillHospitalTicks)
		if _, err := c.tx.Emit(world.EvAgentAttacked, store.EventRefs{
			AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: target.ID,
		}, map[string]any{"target": target.ID, "won": false, "damage": dmg}, c.reqID()); err != nil {
			return nil, err
		}
		return ok(fmt.Sprintf("%s won the fight: took %d damage", target.Name, dmg)).
			with("won", false).
			with("damage", dmg).
			with("hospitalized", hospitalized), nil
	}

	dmg := int(d.Rand.IntRange("attack_dmg", 25, 50))
	killed := target.ApplyDamage(dmg, c.tick()+d.Rules.KillHospitalTicks)
	if c.agent.Skills.Combat < 100 {
		c.agent.Skills.Combat++
	}

	if !killed {
		if _, err := c.tx.Emit(world.EvAgentAttacked, store.EventRefs{
			AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: target.ID,
		}, map[string]any{"target": target.ID, "won": true, "damage": dmg}, c.reqID()); err != nil {
			return nil, err
		}
		if err := c.tx.SaveAgent(target); err != nil {
			return nil, err
		}
		return ok(fmt.Sprintf("beat %s for %d damage", target.Name, dmg)).
			with("won", true).
			with("damage", dmg), nil
	}

	loot := int64(float64(target.Cash) * d.Rules.KillCashPct)
	ev, err := c.tx.Emit(world.EvAgentKilled, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: target.ID,
	}, map[string]any{"target": target.ID, "loot": loot, "releaseTick": deref(target.ReleaseTick)}, c.reqID())
	if err != nil {
		return nil, err
	}
	if loot > 0 {
		if _, err := c.tx.Post(target, economy.Debit, loot, "killed by "+c.agent.ID, &ev.ID); err != nil {
			return nil, err
		}
		if _, err := c.tx.Post(c.agent, economy.Credit, loot, "killed "+target.ID, &ev.ID); err != nil {
			return nil, err
		}
	}
	c.agent.Stats.Kills++
	if err := c.tx.SaveAgent(target); err != nil {
		return nil, err
	}
	return ok(fmt.Sprintf("took down %s and grabbed $%d", target.Name, loot)).
		with("won", true).
		with("killed", true).
		with("loot", loot), nil
}

// doStealVehicle hotwires a vehicle model, replacing whatever the agent
// already drives.
func (d *Dispatcher) doStealVehicle(c *actionCtx, args stealVehicleArgs) (*outcome, error) {
	var spec *economy.VehicleSpec
	if args.VehicleType != "" {
		spec = d.Catalog.VehicleSpec(args.VehicleType)
		if spec == nil {
			return nil, precondition("no such vehicle model %s", args.VehicleType)
		}
	} else {
		spec = &d.Catalog.Vehicles[d.Rand.Pick("vehicle_model", len(d.Catalog.Vehicles))]
	}

	presence := d.presenceAt(c.agent.ZoneID, c.tick())
	p := crime.Clamp(0.5+float64(c.agent.Skills.Driving)*0.005-spec.StealDiff-presence*d.Rules.CrimePresenceSlope,
		d.Rules.CrimeMinChance, d.Rules.CrimeMaxChance)

	if !d.Rand.Chance("vehicle_theft", p) {
		c.agent.AddHeat(10, d.Rules.MaxHeat)
		if _, err := c.tx.Emit(world.EvVehicleTheftFail, store.EventRefs{
			AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: spec.ID,
		}, map[string]any{"model": spec.ID}, c.reqID()); err != nil {
			return nil, err
		}
		return ok(fmt.Sprintf("the %s's alarm went off", spec.Name)).
			with("stolen", false).
			with("heat", c.agent.Heat), nil
	}

	if c.agent.VehicleID != nil {
		if err := c.tx.DeleteVehicle(*c.agent.VehicleID); err != nil {
			return nil, err
		}
	}
	v := &economy.Vehicle{
		ID:           store.NewID(),
		SpecID:       spec.ID,
		OwnerAgentID: c.agent.ID,
		StolenAtTick: c.tick(),
	}
	if err := c.tx.SaveVehicle(v); err != nil {
		return nil, err
	}
	c.agent.VehicleID = &v.ID
	c.agent.AddHeat(10, d.Rules.MaxHeat)
	if c.agent.Skills.Driving < 100 {
		c.agent.Skills.Driving++
	}

	if _, err := c.tx.Emit(world.EvVehicleStolen, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: v.ID,
	}, map[string]any{"model": spec.ID, "vehicleId": v.ID}, c.reqID()); err != nil {
		return nil, err
	}
	return ok(fmt.Sprintf("drove off in a %s", spec.Name)).
		with("stolen", true).
		with("vehicleId", v.ID).
		with("model", spec.ID).
		with("heat", c.agent.Heat), nil
}

// doJailbreak tries to break out of jail. Failure extends the sentence.
func (d *Dispatcher) doJailbreak(c *actionCtx, _ struct{}) (*outcome, error) {
	if c.agent.Status != agents.StatusJailed {
		return nil, precondition("not in jail")
	}

	p := crime.Clamp(d.Rules.JailbreakBase+float64(c.agent.Skills.Combat)*d.Rules.JailbreakCombatSlope, 0, 0.95)
	if d.Rand.Chance("jailbreak", p) {
		c.agent.Status = agents.StatusIdle
		c.agent.ReleaseTick = nil
		c.agent.AddHeat(d.Rules.JailbreakEscapeHeat, d.Rules.MaxHeat)
		if _, err := c.tx.Emit(world.EvJailbreakSuccess, store.EventRefs{
			AgentID: c.agent.ID, ZoneID: c.agent.ZoneID,
		}, map[string]any{"heat": c.agent.Heat}, c.reqID()); err != nil {
			return nil, err
		}
		return ok("over the wall and gone").
			with("escaped", true).
			with("heat", c.agent.Heat), nil
	}

	extended := deref(c.agent.ReleaseTick) + d.Rules.JailbreakFailExtend
	c.agent.ReleaseTick = &extended
	if _, err := c.tx.Emit(world.EvJailbreakFailed, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID,
	}, map[string]any{"releaseTick": extended}, c.reqID()); err != nil {
		return nil, err
	}
	return ok(fmt.Sprintf("caught at the fence; release pushed to tick %d", extended)).
		with("escaped", false).
		with("releaseTick", extended), nil
}

// doBribeCops pays an officer off. Jailed agents buy a release; agents on
// the street buy heat relief. The cash is gone whether or not the officer
// plays along.
func (d *Dispatcher) doBribeCops(c *actionCtx, args bribeArgs) (*outcome, error) {
	jailed := c.agent.Status == agents.StatusJailed

	var cost int64
	var relief float64
	if jailed {
		cost = d.Rules.BribeJailCost
	} else {
		if c.agent.Heat < d.Rules.BribeHeatFloor {
			return nil, precondition("heat %.0f is below %.0f; nobody is looking for you",
				c.agent.Heat, d.Rules.BribeHeatFloor)
		}
		relief = d.Rules.BribeHeatRelief
		if args.Amount > 0 {
			relief = float64(args.Amount / d.Rules.BribeHeatCostPerPt)
			if relief > d.Rules.BribeHeatRelief {
				relief = d.Rules.BribeHeatRelief
			}
			if relief < 1 {
				return nil, badArgs("amount $%d buys no relief at $%d per point",
					args.Amount, d.Rules.BribeHeatCostPerPt)
			}
		}
		if relief > c.agent.Heat {
			relief = c.agent.Heat
		}
		cost = int64(relief) * d.Rules.BribeHeatCostPerPt
	}
	if c.agent.Cash < cost {
		return nil, insufficientFunds(cost, c.agent.Cash)
	}

	p := crime.Clamp(d.Rules.BribeBase+float64(c.agent.Skills.Negotiation)*d.Rules.BribeNegotiationSlope, 0, 0.95)
	accepted := d.Rand.Chance("bribe", p)

	typ := world.EvBribeRejected
	if accepted {
		typ = world.EvBribeAccepted
	}
	ev, err := c.tx.Emit(typ, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID,
	}, map[string]any{"jailed": jailed, "cost": cost}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Debit, cost, "bribe", &ev.ID); err != nil {
		return nil, err
	}
	if c.agent.Skills.Negotiation < 100 {
		c.agent.Skills.Negotiation++
	}

	if accepted {
		if jailed {
			c.agent.Status = agents.StatusIdle
			c.agent.ReleaseTick = nil
			return ok("the cell door was left unlocked").
				with("accepted", true).
				with("released", true), nil
		}
		c.agent.Heat -= relief
		c.agent.ClampHeat(d.Rules.MaxHeat)
		return ok(fmt.Sprintf("paperwork misplaced; heat down to %.0f", c.agent.Heat)).
			with("accepted", true).
			with("heat", c.agent.Heat), nil
	}

	if jailed {
		extended := deref(c.agent.ReleaseTick) + d.Rules.BribeFailExtend
		c.agent.ReleaseTick = &extended
		return ok(fmt.Sprintf("officer reported it; release pushed to tick %d", extended)).
			with("accepted", false).
			with("releaseTick", extended), nil
	}
	c.agent.AddHeat(d.Rules.BribeFailHeat, d.Rules.MaxHeat)
	return ok(fmt.Sprintf("officer took offense; heat up to %.0f", c.agent.Heat)).
		with("accepted", false).
		with("heat", c.agent.Heat), nil
}

// liveTarget validates a rob/attack victim: present, co-located, and on
// the street.
func (d *Dispatcher) liveTarget(c *actionCtx, targetID string) (*agents.Agent, error) {
	if targetID == "" {
		return nil, badArgs("targetAgentId is required")
	}
	if targetID == c.agent.ID {
		return nil, precondition("cannot target yourself")
	}
	target, err := c.tx.Agent(targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, precondition("no such agent %s", targetID)
		}
		return nil, err
	}
	if target.Banned() {
		return nil, precondition("%s is gone", target.Name)
	}
	if target.ZoneID != c.agent.ZoneID {
		return nil, precondition("%s is not in %s", target.Name, c.agent.ZoneID)
	}
	switch target.Status {
	case agents.StatusJailed:
		return nil, precondition("%s is in jail", target.Name)
	case agents.StatusHospitalized:
		return nil, precondition("%s is in the hospital", target.Name)
	case agents.StatusBusy:
		return nil, precondition("%s is occupied and cannot be targeted", target.Name)
	}
	return target, nil
}

// inOwnTerritory reports whether the agent's gang holds the current zone.
func (d *Dispatcher) inOwnTerritory(c *actionCtx) bool {
	if c.agent.GangID == nil {
		return false
	}
	t, err := c.tx.Territory(c.agent.ZoneID)
	if err != nil {
		return false
	}
	return t.GangID == *c.agent.GangID
}
