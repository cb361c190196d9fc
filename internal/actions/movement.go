package actions

import (
	"errors"
	"fmt"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// doMove starts travel along a zone edge. The agent goes busy for the
// edge's time cost; arrival is applied by phase 2 of the tick pipeline.
func (d *Dispatcher) doMove(c *actionCtx, args moveArgs) (*outcome, error) {
	if args.ToZone == "" {
		return nil, badArgs("toZone is required")
	}
	if args.ToZone == c.agent.ZoneID {
		return nil, precondition("already in zone %s", args.ToZone)
	}
	edge := d.Catalog.Edge(c.agent.ZoneID, args.ToZone)
	if edge == nil {
		return nil, precondition("no route from %s to %s", c.agent.ZoneID, args.ToZone)
	}
	if edge.CashCost > 0 && c.agent.Cash < edge.CashCost {
		return nil, insufficientFunds(edge.CashCost, c.agent.Cash)
	}

	travelTicks := edge.TimeCostTicks
	if c.agent.VehicleID != nil {
		if v, err := c.tx.Vehicle(*c.agent.VehicleID); err == nil {
			if spec := d.Catalog.VehicleSpec(v.SpecID); spec != nil {
				scaled := uint64(float64(travelTicks)*spec.SpeedFactor + 0.5)
				if scaled < 1 {
					scaled = 1
				}
				travelTicks = scaled
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	ev, err := c.tx.Emit(world.EvMoveStarted, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: args.ToZone,
	}, map[string]any{"toZone": args.ToZone, "ticks": travelTicks}, c.reqID())
	if err != nil {
		return nil, err
	}
	if edge.CashCost > 0 {
		if _, err := c.tx.Post(c.agent, economy.Debit, edge.CashCost,
			"travel "+c.agent.ZoneID+" to "+args.ToZone, &ev.ID); err != nil {
			return nil, err
		}
	}

	// Risky routes can draw attention mid-transit.
	var arriveHeat float64
	if d.Rand.Chance("travel_heat", edge.HeatRisk) {
		arriveHeat = 5
	}

	until := c.tick() + travelTicks
	c.agent.SetBusy(until, agents.BusyAction{Kind: agents.BusyMove, ToZone: args.ToZone, ArriveHeat: arriveHeat})

	return ok(fmt.Sprintf("en route to %s, arriving at tick %d", args.ToZone, until)).
		with("busyUntilTick", until).
		with("cashCost", edge.CashCost), nil
}

// doTakeJob starts catalog work; the wage pays out on completion.
func (d *Dispatcher) doTakeJob(c *actionCtx, args takeJobArgs) (*outcome, error) {
	if args.JobID == "" {
		return nil, badArgs("jobId is required")
	}
	job := d.Catalog.Job(args.JobID)
	if job == nil {
		return nil, precondition("no such job %s", args.JobID)
	}
	if job.ZoneID != c.agent.ZoneID {
		return nil, precondition("job %s is in %s, you are in %s", job.ID, job.ZoneID, c.agent.ZoneID)
	}
	if c.agent.Reputation < job.MinReputation {
		return nil, precondition("job %s needs reputation %d, you have %d",
			job.ID, job.MinReputation, c.agent.Reputation)
	}
	if job.Skill != "" && c.agent.SkillLevel(job.Skill) < job.MinSkill {
		return nil, precondition("job %s needs %s %d, you have %d",
			job.ID, job.Skill, job.MinSkill, c.agent.SkillLevel(job.Skill))
	}
	if c.agent.Stamina < job.StaminaCost {
		return nil, precondition("job %s needs %d stamina, you have %d",
			job.ID, job.StaminaCost, c.agent.Stamina)
	}

	c.agent.Stamina -= job.StaminaCost
	until := c.tick() + job.DurationTicks
	c.agent.SetBusy(until, agents.BusyAction{Kind: agents.BusyJob, JobID: job.ID})

	if _, err := c.tx.Emit(world.EvJobTaken, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: job.ID,
	}, map[string]any{"job": job.ID, "wage": job.Wage}, c.reqID()); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("working as %s until tick %d for $%d", job.Name, until, job.Wage)).
		with("busyUntilTick", until).
		with("wage", job.Wage), nil
}

// doHeal buys treatment in a hospital zone. Cost scales with damage; the
// agent is busy while patched up and wakes at full health.
func (d *Dispatcher) doHeal(c *actionCtx, _ struct{}) (*outcome, error) {
	zone := d.Catalog.Zone(c.agent.ZoneID)
	if zone == nil || zone.Type != world.ZoneHospital {
		return nil, precondition("healing requires a hospital zone")
	}
	damage := 100 - c.agent.Health
	if damage <= 0 {
		return nil, precondition("already at full health")
	}
	cost := int64(damage) * d.Rules.HealCostPerHP
	if c.agent.Cash < cost {
		return nil, insufficientFunds(cost, c.agent.Cash)
	}

	ev, err := c.tx.Emit(world.EvHealStarted, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID,
	}, map[string]any{"damage": damage, "cost": cost}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Debit, cost, "hospital treatment", &ev.ID); err != nil {
		return nil, err
	}

	// Worse shape, longer stay.
	span := d.Rules.HealTicksMax - d.Rules.HealTicksMin
	ticks := d.Rules.HealTicksMin + uint64(float64(span)*float64(damage)/100.0+0.5)
	until := c.tick() + ticks
	c.agent.SetBusy(until, agents.BusyAction{Kind: agents.BusyHeal})

	return ok(fmt.Sprintf("under treatment until tick %d", until)).
		with("busyUntilTick", until).
		with("cost", cost), nil
}

// doRest regenerates stamina over time. Free, just slow.
func (d *Dispatcher) doRest(c *actionCtx, _ struct{}) (*outcome, error) {
	if c.agent.Stamina >= 100 {
		return nil, precondition("already fully rested")
	}
	need := 100 - c.agent.Stamina
	ticks := uint64((need + d.Rules.RestRegenPerTick - 1) / d.Rules.RestRegenPerTick)
	if ticks > d.Rules.RestMaxTicks {
		ticks = d.Rules.RestMaxTicks
	}
	if ticks < 1 {
		ticks = 1
	}
	until := c.tick() + ticks
	c.agent.SetBusy(until, agents.BusyAction{Kind: agents.BusyRest, RestTicks: ticks})

	if _, err := c.tx.Emit(world.EvRestStarted, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID,
	}, map[string]any{"ticks": ticks}, c.reqID()); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("resting until tick %d", until)).
		with("busyUntilTick", until), nil
}

// doUseItem applies an item's immediate effects and consumes it.
func (d *Dispatcher) doUseItem(c *actionCtx, args useItemArgs) (*outcome, error) {
	if args.ItemID == "" {
		return nil, badArgs("itemId is required")
	}
	item := d.Catalog.Item(args.ItemID)
	if item == nil {
		return nil, precondition("no such item %s", args.ItemID)
	}
	if !item.Usable {
		return nil, precondition("%s cannot be used", item.Name)
	}
	if c.agent.ItemCount(item.ID) < 1 {
		return nil, Errf(CodeInsufficientInventory, "no %s in inventory", item.Name)
	}

	c.agent.AddItem(item.ID, -1)
	c.agent.Health += item.Effects.Health
	c.agent.Stamina += item.Effects.Stamina
	c.agent.ClampVitals()
	if item.Effects.Heat != 0 {
		c.agent.AddHeat(item.Effects.Heat, d.Rules.MaxHeat)
	}

	if _, err := c.tx.Emit(world.EvItemUsed, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: item.ID,
	}, map[string]any{"item": item.ID, "effects": item.Effects}, c.reqID()); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("used %s", item.Name)).
		with("health", c.agent.Health).
		with("stamina", c.agent.Stamina).
		with("heat", c.agent.Heat), nil
}
