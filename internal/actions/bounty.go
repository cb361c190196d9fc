package actions

import (
	"errors"
	"fmt"

	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// doPlaceBounty escrows cash against a target's head. Unclaimed bounties
// partially refund on expiry.
func (d *Dispatcher) doPlaceBounty(c *actionCtx, args placeBountyArgs) (*outcome, error) {
	if args.TargetAgentID == "" {
		return nil, badArgs("targetAgentId is required")
	}
	if args.TargetAgentID == c.agent.ID {
		return nil, precondition("cannot place a bounty on yourself")
	}
	if args.Amount < d.Rules.BountyMin || args.Amount > d.Rules.BountyMax {
		return nil, badArgs("amount must be between $%d and $%d", d.Rules.BountyMin, d.Rules.BountyMax)
	}
	target, err := c.tx.Agent(args.TargetAgentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, precondition("no such agent %s", args.TargetAgentID)
		}
		return nil, err
	}
	if target.Banned() {
		return nil, precondition("%s is gone", target.Name)
	}
	if c.agent.Cash < args.Amount {
		return nil, insufficientFunds(args.Amount, c.agent.Cash)
	}

	b := &economy.Bounty{
		ID:              store.NewID(),
		TargetAgentID:   target.ID,
		PlacedByAgentID: c.agent.ID,
		Amount:          args.Amount,
		Status:          economy.BountyActive,
		CreatedAtTick:   c.tick(),
		ExpiresAt:       c.tick() + d.Rules.BountyExpiryTicks,
	}
	ev, err := c.tx.Emit(world.EvBountyPlaced, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: b.ID,
	}, map[string]any{"bountyId": b.ID, "target": target.ID, "amount": b.Amount}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Debit, b.Amount, "bounty on "+target.ID, &ev.ID); err != nil {
		return nil, err
	}
	if err := c.tx.SaveBounty(b); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("$%d on %s's head until tick %d", b.Amount, target.Name, b.ExpiresAt)).
		with("bountyId", b.ID).
		with("expiresAtTick", b.ExpiresAt), nil
}

// doClaimBounty pays out a bounty to an agent who took the target down
// after the bounty was placed. The kill is verified against the event log.
func (d *Dispatcher) doClaimBounty(c *actionCtx, args claimBountyArgs) (*outcome, error) {
	if args.BountyID == "" {
		return nil, badArgs("bountyId is required")
	}
	b, err := c.tx.Bounty(args.BountyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, precondition("no such bounty %s", args.BountyID)
		}
		return nil, err
	}
	if b.Status != economy.BountyActive {
		return nil, precondition("bounty %s is %s", b.ID, b.Status)
	}
	if b.TargetAgentID == c.agent.ID {
		return nil, precondition("cannot claim a bounty on yourself")
	}
	killed, err := c.tx.KillEventExists(c.agent.ID, b.TargetAgentID, b.CreatedAtTick)
	if err != nil {
		return nil, err
	}
	if !killed {
		return nil, precondition("no record of you taking down %s since the bounty was placed",
			b.TargetAgentID)
	}

	b.Status = economy.BountyClaimed
	b.ClaimedBy = &c.agent.ID
	if err := c.tx.SaveBounty(b); err != nil {
		return nil, err
	}
	ev, err := c.tx.Emit(world.EvBountyClaimed, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: b.ID,
	}, map[string]any{"bountyId": b.ID, "target": b.TargetAgentID, "amount": b.Amount}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Credit, b.Amount, "bounty claim "+b.ID, &ev.ID); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("collected the $%d bounty on %s", b.Amount, b.TargetAgentID)).
		with("amount", b.Amount), nil
}
