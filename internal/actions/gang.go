package actions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/social"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// doCreateGang founds a gang with the current zone as home turf.
func (d *Dispatcher) doCreateGang(c *actionCtx, args createGangArgs) (*outcome, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return nil, badArgs("name is required")
	}
	if len(name) > 40 {
		return nil, badArgs("name exceeds 40 characters")
	}
	if c.agent.GangID != nil {
		return nil, precondition("already in a gang")
	}
	if c.agent.GangBanUntil != nil && *c.agent.GangBanUntil > c.tick() {
		return nil, precondition("banned from gang life until tick %d", *c.agent.GangBanUntil)
	}
	if c.agent.Cash < d.Rules.CreateGangCost {
		return nil, insufficientFunds(d.Rules.CreateGangCost, c.agent.Cash)
	}
	existing, err := c.tx.AllGangs()
	if err != nil {
		return nil, err
	}
	for _, g := range existing {
		if strings.EqualFold(g.Name, name) {
			return nil, precondition("a gang named %q already exists", g.Name)
		}
	}

	g := &social.Gang{
		ID:            store.NewID(),
		Name:          name,
		LeaderID:      c.agent.ID,
		HomeZoneID:    c.agent.ZoneID,
		MemberCount:   1,
		CreatedAtTick: c.tick(),
	}
	ev, err := c.tx.Emit(world.EvGangCreated, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: g.ID,
	}, map[string]any{"gangId": g.ID, "name": g.Name}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Debit, d.Rules.CreateGangCost, "founded "+g.Name, &ev.ID); err != nil {
		return nil, err
	}
	if err := c.tx.SaveGang(g); err != nil {
		return nil, err
	}
	c.agent.GangID = &g.ID
	c.agent.GangBanUntil = nil

	return ok(fmt.Sprintf("founded %s out of %s", g.Name, g.HomeZoneID)).
		with("gangId", g.ID), nil
}

// doInviteToGang extends a membership offer. Any member may invite.
func (d *Dispatcher) doInviteToGang(c *actionCtx, args inviteGangArgs) (*outcome, error) {
	if c.agent.GangID == nil {
		return nil, precondition("not in a gang")
	}
	target, aerr := d.knownAgent(c, args.AgentID)
	if aerr != nil {
		return nil, aerr
	}
	if target.ID == c.agent.ID {
		return nil, precondition("cannot invite yourself")
	}
	if target.GangID != nil {
		return nil, precondition("%s is already in a gang", target.Name)
	}
	if target.GangBanUntil != nil && *target.GangBanUntil > c.tick() {
		return nil, precondition("%s is banned from gang life until tick %d", target.Name, *target.GangBanUntil)
	}
	if _, err := c.tx.PendingInvite(*c.agent.GangID, target.ID, c.tick()); err == nil {
		return nil, precondition("%s already has a pending invite", target.Name)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	inv := &social.GangInvite{
		ID:        store.NewID(),
		GangID:    *c.agent.GangID,
		AgentID:   target.ID,
		InvitedBy: c.agent.ID,
		ExpiresAt: c.tick() + d.Rules.GangInviteTicks,
	}
	if err := c.tx.SaveInvite(inv); err != nil {
		return nil, err
	}
	if _, err := c.tx.Emit(world.EvGangInviteSent, store.EventRefs{
		AgentID: c.agent.ID, EntityID: target.ID,
	}, map[string]any{"inviteId": inv.ID, "gangId": inv.GangID, "to": target.ID}, c.reqID()); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("invited %s; offer stands until tick %d", target.Name, inv.ExpiresAt)).
		with("inviteId", inv.ID).
		with("expiresAtTick", inv.ExpiresAt), nil
}

// doRespondGangInvite consumes a pending invite.
func (d *Dispatcher) doRespondGangInvite(c *actionCtx, args respondGangInviteArgs) (*outcome, error) {
	if args.InviteID == "" {
		return nil, badArgs("inviteId is required")
	}
	inv, err := c.tx.Invite(args.InviteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, precondition("no such invite %s", args.InviteID)
		}
		return nil, err
	}
	if inv.AgentID != c.agent.ID {
		return nil, precondition("invite %s is not addressed to you", inv.ID)
	}
	if inv.ExpiresAt <= c.tick() {
		return nil, precondition("invite %s has expired", inv.ID)
	}
	if err := c.tx.DeleteInvite(inv.ID); err != nil {
		return nil, err
	}

	if !args.Accept {
		if _, err := c.tx.Emit(world.EvGangInviteAnswer, store.EventRefs{
			AgentID: c.agent.ID, EntityID: inv.GangID,
		}, map[string]any{"inviteId": inv.ID, "accepted": false}, c.reqID()); err != nil {
			return nil, err
		}
		return ok("invite declined"), nil
	}

	if c.agent.GangID != nil {
		return nil, precondition("already in a gang")
	}
	if c.agent.GangBanUntil != nil && *c.agent.GangBanUntil > c.tick() {
		return nil, precondition("banned from gang life until tick %d", *c.agent.GangBanUntil)
	}
	g, err := c.tx.Gang(inv.GangID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, precondition("that gang no longer exists")
		}
		return nil, err
	}

	g.MemberCount++
	if err := c.tx.SaveGang(g); err != nil {
		return nil, err
	}
	c.agent.GangID = &g.ID
	c.agent.GangBanUntil = nil

	if _, err := c.tx.Emit(world.EvGangInviteAnswer, store.EventRefs{
		AgentID: c.agent.ID, EntityID: g.ID,
	}, map[string]any{"inviteId": inv.ID, "accepted": true, "gangId": g.ID}, c.reqID()); err != nil {
		return nil, err
	}
	return ok(fmt.Sprintf("joined %s", g.Name)).
		with("gangId", g.ID), nil
}

// doLeaveGang walks away. Leaving triggers a cooldown before joining or
// founding another gang; a departing leader hands off to the next member,
// and the last member out disbands the gang.
func (d *Dispatcher) doLeaveGang(c *actionCtx, _ struct{}) (*outcome, error) {
	if c.agent.GangID == nil {
		return nil, precondition("not in a gang")
	}
	g, err := c.tx.Gang(*c.agent.GangID)
	if err != nil {
		return nil, err
	}

	g.MemberCount--
	disbanded := g.MemberCount <= 0

	if disbanded {
		if err := d.disbandGang(c, g); err != nil {
			return nil, err
		}
	} else {
		if g.LeaderID == c.agent.ID {
			members, err := c.tx.AgentsInGang(g.ID)
			if err != nil {
				return nil, err
			}
			for _, m := range members {
				if m.ID != c.agent.ID {
					g.LeaderID = m.ID
					break
				}
			}
		}
		if err := c.tx.SaveGang(g); err != nil {
			return nil, err
		}
	}

	banUntil := c.tick() + d.Rules.GangBanTicks
	c.agent.GangID = nil
	c.agent.GangBanUntil = &banUntil

	if _, err := c.tx.Emit(world.EvGangLeft, store.EventRefs{
		AgentID: c.agent.ID, EntityID: g.ID,
	}, map[string]any{"gangId": g.ID, "disbanded": disbanded, "banUntil": banUntil}, c.reqID()); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("left %s", g.Name)
	if disbanded {
		msg = fmt.Sprintf("left %s; the gang is no more", g.Name)
	}
	return ok(msg).
		with("disbanded", disbanded).
		with("gangBanUntilTick", banUntil), nil
}

// doContribute moves personal cash into the gang treasury.
func (d *Dispatcher) doContribute(c *actionCtx, args contributeArgs) (*outcome, error) {
	if c.agent.GangID == nil {
		return nil, precondition("not in a gang")
	}
	if args.Amount < 1 {
		return nil, badArgs("amount must be at least $1")
	}
	if c.agent.Cash < args.Amount {
		return nil, insufficientFunds(args.Amount, c.agent.Cash)
	}
	g, err := c.tx.Gang(*c.agent.GangID)
	if err != nil {
		return nil, err
	}

	ev, err := c.tx.Emit(world.EvGangContribution, store.EventRefs{
		AgentID: c.agent.ID, EntityID: g.ID,
	}, map[string]any{"gangId": g.ID, "amount": args.Amount}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Debit, args.Amount, "contribution to "+g.Name, &ev.ID); err != nil {
		return nil, err
	}
	g.Treasury += args.Amount
	g.Reputation += int(args.Amount / 1000)
	if err := c.tx.SaveGang(g); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("put $%d into %s's treasury (now $%d)", args.Amount, g.Name, g.Treasury)).
		with("treasury", g.Treasury), nil
}

// doClaimTerritory stakes the gang's claim on the zone the agent stands
// in, paid from the treasury. Only unclaimed zones can be taken; holdings
// collapse through the decay phase, not by direct takeover.
func (d *Dispatcher) doClaimTerritory(c *actionCtx, args claimTerritoryArgs) (*outcome, error) {
	if c.agent.GangID == nil {
		return nil, precondition("not in a gang")
	}
	if args.ZoneID != "" && args.ZoneID != c.agent.ZoneID {
		return nil, precondition("you must be standing in %s to claim it", args.ZoneID)
	}
	zone := d.Catalog.Zone(c.agent.ZoneID)
	if zone == nil {
		return nil, precondition("no such zone %s", c.agent.ZoneID)
	}
	if _, err := c.tx.Territory(zone.ID); err == nil {
		return nil, precondition("%s is already claimed", zone.Name)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	g, err := c.tx.Gang(*c.agent.GangID)
	if err != nil {
		return nil, err
	}
	if g.Treasury < d.Rules.ClaimTerritoryCost {
		return nil, Errf(CodeInsufficientFunds, "treasury has $%d, claiming costs $%d",
			g.Treasury, d.Rules.ClaimTerritoryCost)
	}

	g.Treasury -= d.Rules.ClaimTerritoryCost
	if err := c.tx.SaveGang(g); err != nil {
		return nil, err
	}
	t := &social.Territory{
		ZoneID:          zone.ID,
		GangID:          g.ID,
		ControlStrength: d.Rules.TerritoryStrength,
		IncomePerTick:   zone.Income,
		ClaimedAtTick:   c.tick(),
		LastDefended:    c.tick(),
	}
	if err := c.tx.SaveTerritory(t); err != nil {
		return nil, err
	}
	if _, err := c.tx.Emit(world.EvTerritoryClaimed, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: zone.ID, EntityID: g.ID,
	}, map[string]any{"gangId": g.ID, "zone": zone.ID, "income": t.IncomePerTick}, c.reqID()); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("%s now runs %s", g.Name, zone.Name)).
		with("zone", zone.ID).
		with("incomePerTick", t.IncomePerTick), nil
}

// doBetrayGang empties the treasury into the betrayer's pocket and
// dissolves the gang on the spot. The other members are turned loose; the
// betrayer eats a gang ban and a lot of heat.
func (d *Dispatcher) doBetrayGang(c *actionCtx, _ struct{}) (*outcome, error) {
	if c.agent.GangID == nil {
		return nil, precondition("not in a gang")
	}
	g, err := c.tx.Gang(*c.agent.GangID)
	if err != nil {
		return nil, err
	}

	take := g.Treasury
	g.Treasury = 0

	ev, err := c.tx.Emit(world.EvGangBetrayed, store.EventRefs{
		AgentID: c.agent.ID, EntityID: g.ID,
	}, map[string]any{"gangId": g.ID, "stolen": take}, c.reqID())
	if err != nil {
		return nil, err
	}
	if take > 0 {
		if _, err := c.tx.Post(c.agent, economy.Credit, take, "emptied "+g.Name+"'s treasury", &ev.ID); err != nil {
			return nil, err
		}
	}

	members, err := c.tx.AgentsInGang(g.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.ID == c.agent.ID {
			continue
		}
		m.GangID = nil
		if err := c.tx.SaveAgent(m); err != nil {
			return nil, err
		}
	}
	if err := d.disbandGang(c, g); err != nil {
		return nil, err
	}

	banUntil := c.tick() + d.Rules.GangBanTicks
	c.agent.GangID = nil
	c.agent.GangBanUntil = &banUntil
	c.agent.Reputation -= 20
	c.agent.AddHeat(d.Rules.RobHeatOnSuccess, d.Rules.MaxHeat)

	return ok(fmt.Sprintf("walked out of %s with $%d; the gang is no more", g.Name, take)).
		with("stolen", take).
		with("gangBanUntilTick", banUntil).
		with("heat", c.agent.Heat), nil
}

// disbandGang removes a gang and everything hanging off it. Territory
// simply reverts to unclaimed.
func (d *Dispatcher) disbandGang(c *actionCtx, g *social.Gang) error {
	held, err := c.tx.TerritoriesOf(g.ID)
	if err != nil {
		return err
	}
	for _, t := range held {
		if err := c.tx.DeleteTerritory(t.ZoneID); err != nil {
			return err
		}
		if _, err := c.tx.Emit(world.EvTerritoryLost, store.EventRefs{
			ZoneID: t.ZoneID, EntityID: g.ID,
		}, map[string]any{"gangId": g.ID, "zone": t.ZoneID, "reason": "disbanded"}, c.reqID()); err != nil {
			return err
		}
	}
	if err := c.tx.DeleteInvitesForGang(g.ID); err != nil {
		return err
	}
	return c.tx.DeleteGang(g.ID)
}
