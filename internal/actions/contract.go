package actions

import (
	"errors"
	"fmt"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// doAcceptContract takes an open zone contract. The agent goes busy for
// the contract's duration; the reward and its heat land on completion.
func (d *Dispatcher) doAcceptContract(c *actionCtx, args acceptContractArgs) (*outcome, error) {
	if args.ContractID == "" {
		return nil, badArgs("contractId is required")
	}
	ct, err := c.tx.Contract(args.ContractID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, precondition("no such contract %s", args.ContractID)
		}
		return nil, err
	}
	if ct.Status != economy.ContractOpen {
		return nil, precondition("contract %s is %s", ct.ID, ct.Status)
	}
	if ct.ExpiresAt <= c.tick() {
		return nil, precondition("contract %s has expired", ct.ID)
	}
	if ct.ZoneID != c.agent.ZoneID {
		return nil, precondition("contract %s is in %s, you are in %s", ct.ID, ct.ZoneID, c.agent.ZoneID)
	}
	if ct.Skill != "" && c.agent.SkillLevel(ct.Skill) < ct.MinSkill {
		return nil, precondition("contract %s needs %s %d, you have %d",
			ct.ID, ct.Skill, ct.MinSkill, c.agent.SkillLevel(ct.Skill))
	}

	ct.Status = economy.ContractAccepted
	ct.AcceptedBy = &c.agent.ID
	if err := c.tx.SaveContract(ct); err != nil {
		return nil, err
	}

	until := c.tick() + ct.DurationTicks
	c.agent.SetBusy(until, agents.BusyAction{Kind: agents.BusyContract, ContractID: ct.ID})

	if _, err := c.tx.Emit(world.EvContractAccepted, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: ct.ID,
	}, map[string]any{"contract": ct.ID, "reward": ct.Reward}, c.reqID()); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("on the job %q until tick %d for $%d", ct.Name, until, ct.Reward)).
		with("busyUntilTick", until).
		with("reward", ct.Reward), nil
}
