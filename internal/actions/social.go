package actions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/social"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

const maxMessageLen = 500

// doSendMessage delivers mail to another agent's inbox. Messaging works
// across zones; a blocked edge silences the sender.
func (d *Dispatcher) doSendMessage(c *actionCtx, args sendMessageArgs) (*outcome, error) {
	body := strings.TrimSpace(args.Body)
	if body == "" {
		return nil, badArgs("body is required")
	}
	if len(body) > maxMessageLen {
		return nil, badArgs("body exceeds %d characters", maxMessageLen)
	}
	target, aerr := d.knownAgent(c, args.ToAgentID)
	if aerr != nil {
		return nil, aerr
	}

	f, err := c.tx.Friendship(c.agent.ID, target.ID)
	switch {
	case err == nil:
		if f.Status == social.FriendBlocked {
			return nil, precondition("%s is not receiving your messages", target.Name)
		}
		if f.Status == social.FriendAccepted {
			f.Touch(c.tick(), 1)
			if err := c.tx.SaveFriendship(f); err != nil {
				return nil, err
			}
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	m := &social.Message{
		ID:     store.NewID(),
		FromID: c.agent.ID,
		ToID:   target.ID,
		Body:   body,
		Tick:   c.tick(),
		TS:     c.tx.Now(),
	}
	if err := c.tx.SaveMessage(m); err != nil {
		return nil, err
	}
	if _, err := c.tx.Emit(world.EvMessageSent, store.EventRefs{
		AgentID: c.agent.ID, EntityID: target.ID,
	}, map[string]any{"to": target.ID, "messageId": m.ID}, c.reqID()); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("message sent to %s", target.Name)).
		with("messageId", m.ID), nil
}

// doSendFriendRequest opens a pending friendship edge.
func (d *Dispatcher) doSendFriendRequest(c *actionCtx, args friendRequestArgs) (*outcome, error) {
	if args.ToAgentID == c.agent.ID {
		return nil, precondition("cannot befriend yourself")
	}
	target, aerr := d.knownAgent(c, args.ToAgentID)
	if aerr != nil {
		return nil, aerr
	}

	if f, err := c.tx.Friendship(c.agent.ID, target.ID); err == nil {
		switch f.Status {
		case social.FriendPending:
			return nil, precondition("a request between you and %s is already pending", target.Name)
		case social.FriendAccepted:
			return nil, precondition("already friends with %s", target.Name)
		case social.FriendBlocked:
			return nil, precondition("%s is not accepting requests", target.Name)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	a1, a2 := social.CanonicalPair(c.agent.ID, target.ID)
	f := &social.Friendship{
		Agent1ID:        a1,
		Agent2ID:        a2,
		Status:          social.FriendPending,
		InitiatorID:     c.agent.ID,
		Strength:        10,
		Loyalty:         10,
		LastInteraction: c.tick(),
		CreatedAtTick:   c.tick(),
	}
	if err := c.tx.SaveFriendship(f); err != nil {
		return nil, err
	}
	if _, err := c.tx.Emit(world.EvFriendRequested, store.EventRefs{
		AgentID: c.agent.ID, EntityID: target.ID,
	}, map[string]any{"to": target.ID}, c.reqID()); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("friend request sent to %s", target.Name)), nil
}

// doRespondFriendRequest answers a pending request addressed to the agent.
// Declining removes the edge; blocking keeps it as a wall.
func (d *Dispatcher) doRespondFriendRequest(c *actionCtx, args respondFriendArgs) (*outcome, error) {
	if args.FromAgentID == "" {
		return nil, badArgs("fromAgentId is required")
	}
	f, err := c.tx.Friendship(c.agent.ID, args.FromAgentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, precondition("no request from %s", args.FromAgentID)
		}
		return nil, err
	}
	if f.Status != social.FriendPending {
		return nil, precondition("no pending request from %s", args.FromAgentID)
	}
	if f.InitiatorID == c.agent.ID {
		return nil, precondition("you sent this request; the other side answers it")
	}

	if args.Accept {
		f.Status = social.FriendAccepted
		f.Touch(c.tick(), 25)
		if err := c.tx.SaveFriendship(f); err != nil {
			return nil, err
		}
		if _, err := c.tx.Emit(world.EvFriendAccepted, store.EventRefs{
			AgentID: c.agent.ID, EntityID: args.FromAgentID,
		}, map[string]any{"from": args.FromAgentID}, c.reqID()); err != nil {
			return nil, err
		}
		return ok(fmt.Sprintf("now friends with %s", args.FromAgentID)), nil
	}

	if args.Block {
		f.Status = social.FriendBlocked
		if err := c.tx.SaveFriendship(f); err != nil {
			return nil, err
		}
	} else if err := c.tx.DeleteFriendship(c.agent.ID, args.FromAgentID); err != nil {
		return nil, err
	}
	if _, err := c.tx.Emit(world.EvFriendDeclined, store.EventRefs{
		AgentID: c.agent.ID, EntityID: args.FromAgentID,
	}, map[string]any{"from": args.FromAgentID, "blocked": args.Block}, c.reqID()); err != nil {
		return nil, err
	}
	return ok(fmt.Sprintf("declined %s's request", args.FromAgentID)), nil
}

// doGiftCash transfers cash to another agent, anywhere in the city.
func (d *Dispatcher) doGiftCash(c *actionCtx, args giftCashArgs) (*outcome, error) {
	if args.Amount < 1 {
		return nil, badArgs("amount must be at least $1")
	}
	if args.ToAgentID == c.agent.ID {
		return nil, precondition("cannot gift yourself")
	}
	target, aerr := d.knownAgent(c, args.ToAgentID)
	if aerr != nil {
		return nil, aerr
	}
	if c.agent.Cash < args.Amount {
		return nil, insufficientFunds(args.Amount, c.agent.Cash)
	}

	ev, err := c.tx.Emit(world.EvCashGifted, store.EventRefs{
		AgentID: c.agent.ID, EntityID: target.ID,
	}, map[string]any{"to": target.ID, "amount": args.Amount}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Debit, args.Amount, "gift to "+target.ID, &ev.ID); err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(target, economy.Credit, args.Amount, "gift from "+c.agent.ID, &ev.ID); err != nil {
		return nil, err
	}
	if err := d.touchFriendship(c, target.ID, 5); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("gifted $%d to %s", args.Amount, target.Name)).
		with("amount", args.Amount), nil
}

// doGiftItem hands inventory to another agent.
func (d *Dispatcher) doGiftItem(c *actionCtx, args giftItemArgs) (*outcome, error) {
	if args.Qty < 1 {
		return nil, badArgs("qty must be at least 1")
	}
	if args.ToAgentID == c.agent.ID {
		return nil, precondition("cannot gift yourself")
	}
	item := d.Catalog.Item(args.ItemID)
	if item == nil {
		return nil, precondition("no such item %s", args.ItemID)
	}
	target, aerr := d.knownAgent(c, args.ToAgentID)
	if aerr != nil {
		return nil, aerr
	}
	if target.ZoneID != c.agent.ZoneID {
		return nil, precondition("%s is not in %s; items change hands in person", target.Name, c.agent.ZoneID)
	}
	if c.agent.ItemCount(item.ID) < args.Qty {
		return nil, Errf(CodeInsufficientInventory, "you hold %d %s, offered %d",
			c.agent.ItemCount(item.ID), item.Name, args.Qty)
	}

	c.agent.AddItem(item.ID, -args.Qty)
	target.AddItem(item.ID, args.Qty)
	if err := c.tx.SaveAgent(target); err != nil {
		return nil, err
	}
	if err := d.touchFriendship(c, target.ID, 5); err != nil {
		return nil, err
	}
	if _, err := c.tx.Emit(world.EvItemGifted, store.EventRefs{
		AgentID: c.agent.ID, EntityID: target.ID,
	}, map[string]any{"to": target.ID, "item": item.ID, "qty": args.Qty}, c.reqID()); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("gifted %dx %s to %s", args.Qty, item.Name, target.Name)).
		with("item", item.ID).
		with("qty", args.Qty), nil
}

// knownAgent resolves an agent id for social verbs: must exist and not be
// banned, any zone and status.
func (d *Dispatcher) knownAgent(c *actionCtx, id string) (*agents.Agent, error) {
	if id == "" {
		return nil, badArgs("target agent id is required")
	}
	a, err := c.tx.Agent(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, precondition("no such agent %s", id)
		}
		return nil, err
	}
	if a.Banned() {
		return nil, precondition("%s is gone", a.Name)
	}
	return a, nil
}

// touchFriendship strengthens an accepted edge after a friendly act.
func (d *Dispatcher) touchFriendship(c *actionCtx, otherID string, gain int) error {
	f, err := c.tx.Friendship(c.agent.ID, otherID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if f.Status != social.FriendAccepted {
		return nil
	}
	f.Touch(c.tick(), gain)
	return c.tx.SaveFriendship(f)
}
