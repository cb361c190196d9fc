package actions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// openingFloat is the till cash a new business opens with, carved out of
// the startup cost. Matches the float the profit sweep leaves behind.
const openingFloat = 1000

// doStartBusiness opens a shop in the current zone. The startup cost
// covers the premises plus the opening till float; profit above the float
// is paid out by the periodic sweep.
func (d *Dispatcher) doStartBusiness(c *actionCtx, args startBusinessArgs) (*outcome, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return nil, badArgs("name is required")
	}
	if len(name) > 40 {
		return nil, badArgs("name exceeds 40 characters")
	}
	if args.ZoneID != "" && args.ZoneID != c.agent.ZoneID {
		return nil, precondition("you must be standing in %s to open there", args.ZoneID)
	}
	if c.agent.Cash < d.Rules.StartBusinessCost {
		return nil, insufficientFunds(d.Rules.StartBusinessCost, c.agent.Cash)
	}

	biz := &economy.Business{
		ID:            store.NewID(),
		ZoneID:        c.agent.ZoneID,
		Name:          name,
		OwnerAgentID:  &c.agent.ID,
		CashOnHand:    openingFloat,
		Inventory:     make(map[string]economy.Stock),
		CreatedAtTick: c.tick(),
	}
	ev, err := c.tx.Emit(world.EvBusinessStarted, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: biz.ZoneID, EntityID: biz.ID,
	}, map[string]any{"businessId": biz.ID, "name": biz.Name}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Debit, d.Rules.StartBusinessCost, "opened "+biz.Name, &ev.ID); err != nil {
		return nil, err
	}
	if err := c.tx.SaveBusiness(biz); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("%s is open for business in %s", biz.Name, biz.ZoneID)).
		with("businessId", biz.ID), nil
}

// doSetPrices reprices shelf slots. Owner-only bookkeeping; works from
// anywhere.
func (d *Dispatcher) doSetPrices(c *actionCtx, args setPricesArgs) (*outcome, error) {
	if len(args.Prices) == 0 {
		return nil, badArgs("prices is required")
	}
	biz, err := d.ownedBusiness(c, args.BusinessID)
	if err != nil {
		return nil, err
	}
	for itemID, price := range args.Prices {
		if d.Catalog.Item(itemID) == nil {
			return nil, precondition("no such item %s", itemID)
		}
		if price < 1 {
			return nil, badArgs("price for %s must be at least $1", itemID)
		}
	}

	for itemID, price := range args.Prices {
		biz.AdjustStock(itemID, 0, price)
	}
	if err := c.tx.SaveBusiness(biz); err != nil {
		return nil, err
	}
	if _, err := c.tx.Emit(world.EvPricesSet, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: biz.ZoneID, EntityID: biz.ID,
	}, map[string]any{"businessId": biz.ID, "items": len(args.Prices)}, c.reqID()); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("repriced %d items at %s", len(args.Prices), biz.Name)).
		with("businessId", biz.ID).
		with("items", len(args.Prices)), nil
}

// doStockBusiness moves items from the owner's inventory onto the shelf.
// Physical goods: the owner must be standing in the shop's zone.
func (d *Dispatcher) doStockBusiness(c *actionCtx, args stockBusinessArgs) (*outcome, error) {
	if args.Qty < 1 {
		return nil, badArgs("qty must be at least 1")
	}
	item := d.Catalog.Item(args.ItemID)
	if item == nil {
		return nil, precondition("no such item %s", args.ItemID)
	}
	biz, err := d.ownedBusiness(c, args.BusinessID)
	if err != nil {
		return nil, err
	}
	if biz.ZoneID != c.agent.ZoneID {
		return nil, precondition("%s is in %s, you are in %s", biz.Name, biz.ZoneID, c.agent.ZoneID)
	}
	if c.agent.ItemCount(item.ID) < args.Qty {
		return nil, Errf(CodeInsufficientInventory, "you hold %d %s, offered %d",
			c.agent.ItemCount(item.ID), item.Name, args.Qty)
	}

	c.agent.AddItem(item.ID, -args.Qty)
	biz.AdjustStock(item.ID, args.Qty, 0)
	if err := c.tx.SaveBusiness(biz); err != nil {
		return nil, err
	}
	if _, err := c.tx.Emit(world.EvBusinessStocked, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: biz.ZoneID, EntityID: biz.ID,
	}, map[string]any{"businessId": biz.ID, "item": item.ID, "qty": args.Qty}, c.reqID()); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("shelved %dx %s at %s", args.Qty, item.Name, biz.Name)).
		with("businessId", biz.ID).
		with("item", item.ID).
		with("qty", args.Qty), nil
}

// ownedBusiness resolves a business the acting agent owns.
func (d *Dispatcher) ownedBusiness(c *actionCtx, businessID string) (*economy.Business, error) {
	if businessID == "" {
		return nil, badArgs("businessId is required")
	}
	biz, err := c.tx.Business(businessID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, precondition("no such business %s", businessID)
		}
		return nil, err
	}
	if biz.OwnerAgentID == nil || *biz.OwnerAgentID != c.agent.ID {
		return nil, precondition("you do not own %s", biz.Name)
	}
	return biz, nil
}
