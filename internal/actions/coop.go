package actions

import (
	"errors"
	"fmt"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/crime"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// doInitiateCoop opens recruiting for a cooperative crime in the current
// zone. The initiator is the first participant and goes busy until the
// action resolves or collapses.
func (d *Dispatcher) doInitiateCoop(c *actionCtx, args initiateCoopArgs) (*outcome, error) {
	if args.CrimeType == "" {
		return nil, badArgs("crimeType is required")
	}
	ct := d.Catalog.Crime(args.CrimeType)
	if ct == nil {
		return nil, precondition("no such crime %s", args.CrimeType)
	}
	if !ct.Coop {
		return nil, precondition("%s is a solo crime; use COMMIT_CRIME", ct.Name)
	}
	if args.MinParticipants < 2 {
		return nil, badArgs("minParticipants must be at least 2")
	}
	if args.MaxParticipants < args.MinParticipants {
		return nil, badArgs("maxParticipants %d is below minParticipants %d",
			args.MaxParticipants, args.MinParticipants)
	}
	if _, err := c.tx.ActiveCoopOf(c.agent.ID); err == nil {
		return nil, precondition("already part of a crew")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	recruit := args.RecruitTicks
	if recruit == 0 {
		recruit = d.Rules.CoopRecruitTicks
	}
	co := &crime.CoopAction{
		ID:              store.NewID(),
		InitiatorID:     c.agent.ID,
		TypeID:          ct.ID,
		ZoneID:          c.agent.ZoneID,
		Status:          crime.CoopRecruiting,
		ParticipantIDs:  []string{c.agent.ID},
		MinParticipants: args.MinParticipants,
		MaxParticipants: args.MaxParticipants,
		CreatedAtTick:   c.tick(),
		ExpiresAt:       c.tick() + recruit,
	}
	if err := c.tx.SaveCoop(co); err != nil {
		return nil, err
	}

	c.agent.SetBusy(co.ExpiresAt, agents.BusyAction{Kind: agents.BusyCoop, CoopID: co.ID})

	if _, err := c.tx.Emit(world.EvCoopStarted, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: co.ID,
	}, map[string]any{
		"coopId": co.ID, "crime": ct.ID,
		"min": co.MinParticipants, "max": co.MaxParticipants,
		"recruitUntil": co.ExpiresAt,
	}, c.reqID()); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("recruiting for %s until tick %d", ct.Name, co.ExpiresAt)).
		with("coopId", co.ID).
		with("recruitUntilTick", co.ExpiresAt), nil
}

// doJoinCoop joins a recruiting action in the current zone. The join that
// reaches min participants arms the action for execution.
func (d *Dispatcher) doJoinCoop(c *actionCtx, args joinCoopArgs) (*outcome, error) {
	if args.CoopID == "" {
		return nil, badArgs("coopId is required")
	}
	co, err := c.tx.Coop(args.CoopID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, precondition("no such crew %s", args.CoopID)
		}
		return nil, err
	}
	if co.Status != crime.CoopRecruiting {
		return nil, precondition("crew %s is no longer recruiting", co.ID)
	}
	if co.ZoneID != c.agent.ZoneID {
		return nil, precondition("crew %s is in %s, you are in %s", co.ID, co.ZoneID, c.agent.ZoneID)
	}
	if co.HasParticipant(c.agent.ID) {
		return nil, precondition("already in this crew")
	}
	if co.Full() {
		return nil, precondition("crew %s is full", co.ID)
	}
	if _, err := c.tx.ActiveCoopOf(c.agent.ID); err == nil {
		return nil, precondition("already part of a crew")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	co.ParticipantIDs = append(co.ParticipantIDs, c.agent.ID)

	armed := false
	if len(co.ParticipantIDs) >= co.MinParticipants {
		co.Arm(c.tick() + d.Rules.CoopExecuteDelay)
		armed = true
	}
	if err := c.tx.SaveCoop(co); err != nil {
		return nil, err
	}

	// Before arming everyone waits out the recruiting deadline; the arming
	// join moves the whole crew's busy horizon to the execute tick.
	until := co.ExpiresAt
	if armed {
		until = *co.ExecuteAt
		for _, pid := range co.ParticipantIDs {
			if pid == c.agent.ID {
				continue
			}
			p, err := c.tx.Agent(pid)
			if err != nil {
				return nil, err
			}
			p.SetBusy(until, agents.BusyAction{Kind: agents.BusyCoop, CoopID: co.ID})
			if err := c.tx.SaveAgent(p); err != nil {
				return nil, err
			}
		}
	}
	c.agent.SetBusy(until, agents.BusyAction{Kind: agents.BusyCoop, CoopID: co.ID})

	if _, err := c.tx.Emit(world.EvCoopJoined, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: co.ID,
	}, map[string]any{"coopId": co.ID, "participants": len(co.ParticipantIDs)}, c.reqID()); err != nil {
		return nil, err
	}
	if armed {
		if _, err := c.tx.Emit(world.EvCoopReady, store.EventRefs{
			ZoneID: co.ZoneID, EntityID: co.ID,
		}, map[string]any{"coopId": co.ID, "executeAt": *co.ExecuteAt}, c.reqID()); err != nil {
			return nil, err
		}
	}

	out := ok(fmt.Sprintf("joined crew %s (%d/%d)", co.ID, len(co.ParticipantIDs), co.MaxParticipants)).
		with("coopId", co.ID).
		with("participants", len(co.ParticipantIDs)).
		with("armed", armed)
	if armed {
		out = out.with("executeAtTick", *co.ExecuteAt)
	}
	return out, nil
}
