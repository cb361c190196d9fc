package actions

import (
	"errors"
	"fmt"

	"github.com/clawcity/clawcity/internal/crime"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// doBuy purchases items from a co-located business shelf.
func (d *Dispatcher) doBuy(c *actionCtx, args tradeArgs) (*outcome, error) {
	biz, item, err := d.tradeTarget(c, args)
	if err != nil {
		return nil, err
	}
	stock := biz.StockOf(item.ID)
	if stock.Qty < args.Qty {
		return nil, Errf(CodeInsufficientInventory, "%s has %d %s in stock, wanted %d",
			biz.Name, stock.Qty, item.Name, args.Qty)
	}
	price := stock.Price
	if price <= 0 {
		price = item.BasePrice
	}
	total := price * int64(args.Qty)
	if c.agent.Cash < total {
		return nil, insufficientFunds(total, c.agent.Cash)
	}

	ev, err := c.tx.Emit(world.EvBuy, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: biz.ID,
	}, map[string]any{"item": item.ID, "qty": args.Qty, "total": total}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Debit, total,
		fmt.Sprintf("bought %dx %s at %s", args.Qty, item.ID, biz.ID), &ev.ID); err != nil {
		return nil, err
	}

	biz.AdjustStock(item.ID, -args.Qty, 0)
	biz.CashOnHand += total
	biz.Metrics.Sales += args.Qty
	biz.Metrics.Revenue += total
	if err := c.tx.SaveBusiness(biz); err != nil {
		return nil, err
	}
	c.agent.AddItem(item.ID, args.Qty)

	return ok(fmt.Sprintf("bought %dx %s for $%d", args.Qty, item.Name, total)).
		with("item", item.ID).
		with("qty", args.Qty).
		with("total", total), nil
}

// doSell sells inventory to a co-located business, at a discount to its
// asking price and only up to the cash the till holds.
func (d *Dispatcher) doSell(c *actionCtx, args tradeArgs) (*outcome, error) {
	biz, item, err := d.tradeTarget(c, args)
	if err != nil {
		return nil, err
	}
	if c.agent.ItemCount(item.ID) < args.Qty {
		return nil, Errf(CodeInsufficientInventory, "you hold %d %s, offered %d",
			c.agent.ItemCount(item.ID), item.Name, args.Qty)
	}
	ask := biz.StockOf(item.ID).Price
	if ask <= 0 {
		ask = item.BasePrice
	}
	unit := int64(float64(ask) * d.Rules.BusinessBuyback)
	if unit < 1 {
		unit = 1
	}
	total := unit * int64(args.Qty)
	if biz.CashOnHand < total {
		return nil, precondition("%s only has $%d in the till", biz.Name, biz.CashOnHand)
	}

	ev, err := c.tx.Emit(world.EvSell, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID, EntityID: biz.ID,
	}, map[string]any{"item": item.ID, "qty": args.Qty, "total": total}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Credit, total,
		fmt.Sprintf("sold %dx %s at %s", args.Qty, item.ID, biz.ID), &ev.ID); err != nil {
		return nil, err
	}

	c.agent.AddItem(item.ID, -args.Qty)
	biz.AdjustStock(item.ID, args.Qty, 0)
	biz.CashOnHand -= total
	biz.Metrics.Purchases += args.Qty
	if err := c.tx.SaveBusiness(biz); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("sold %dx %s for $%d", args.Qty, item.Name, total)).
		with("item", item.ID).
		with("qty", args.Qty).
		with("total", total), nil
}

// tradeTarget validates the shared BUY/SELL preconditions.
func (d *Dispatcher) tradeTarget(c *actionCtx, args tradeArgs) (*economy.Business, *economy.Item, error) {
	if args.BusinessID == "" || args.ItemID == "" {
		return nil, nil, badArgs("businessId and itemId are required")
	}
	if args.Qty < 1 {
		return nil, nil, badArgs("qty must be at least 1")
	}
	item := d.Catalog.Item(args.ItemID)
	if item == nil {
		return nil, nil, precondition("no such item %s", args.ItemID)
	}
	biz, err := c.tx.Business(args.BusinessID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, precondition("no such business %s", args.BusinessID)
		}
		return nil, nil, err
	}
	if biz.ZoneID != c.agent.ZoneID {
		return nil, nil, precondition("%s is in %s, you are in %s", biz.Name, biz.ZoneID, c.agent.ZoneID)
	}
	return biz, item, nil
}

// doGamble places a casino bet. The stake is debited up front; a win pays
// stake times the tier multiplier.
func (d *Dispatcher) doGamble(c *actionCtx, args gambleArgs) (*outcome, error) {
	zone := d.Catalog.Zone(c.agent.ZoneID)
	if zone == nil || zone.Type != world.ZoneCasino {
		return nil, precondition("gambling requires a casino zone")
	}
	rows, okTier := d.Catalog.Gamble[args.Risk]
	if !okTier {
		return nil, badArgs("unknown risk tier %q", args.Risk)
	}
	if args.Bet < d.Rules.GambleMinBet || args.Bet > d.Rules.GambleMaxBet {
		return nil, badArgs("bet must be between $%d and $%d", d.Rules.GambleMinBet, d.Rules.GambleMaxBet)
	}
	if c.agent.Cash < args.Bet {
		return nil, insufficientFunds(args.Bet, c.agent.Cash)
	}

	mult := crime.Draw(rows, d.Rand.Float("gamble"))
	if mult > 0 {
		payout := int64(float64(args.Bet) * mult)
		ev, err := c.tx.Emit(world.EvGambleWon, store.EventRefs{
			AgentID: c.agent.ID, ZoneID: c.agent.ZoneID,
		}, map[string]any{"bet": args.Bet, "risk": args.Risk, "mult": mult, "payout": payout}, c.reqID())
		if err != nil {
			return nil, err
		}
		if _, err := c.tx.Post(c.agent, economy.Debit, args.Bet, "casino stake", &ev.ID); err != nil {
			return nil, err
		}
		if _, err := c.tx.Post(c.agent, economy.Credit, payout, "casino payout", &ev.ID); err != nil {
			return nil, err
		}
		c.agent.Stats.GamblesWon++
		return ok(fmt.Sprintf("won $%d on a $%d %s bet", payout, args.Bet, args.Risk)).
			with("won", true).
			with("payout", payout), nil
	}

	ev, err := c.tx.Emit(world.EvGambleLost, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID,
	}, map[string]any{"bet": args.Bet, "risk": args.Risk}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Debit, args.Bet, "casino stake", &ev.ID); err != nil {
		return nil, err
	}
	c.agent.Stats.GamblesLost++
	return ok(fmt.Sprintf("lost a $%d %s bet", args.Bet, args.Risk)).
		with("won", false), nil
}

// doBuyDisguise puts on a disguise that speeds heat decay. Sold in market
// zones; buying a new one replaces whatever is worn.
func (d *Dispatcher) doBuyDisguise(c *actionCtx, args buyDisguiseArgs) (*outcome, error) {
	zone := d.Catalog.Zone(c.agent.ZoneID)
	if zone == nil || zone.Type != world.ZoneMarket {
		return nil, precondition("disguises are sold in market zones")
	}
	spec, okQ := d.Catalog.Disguises[args.Quality]
	if !okQ {
		return nil, badArgs("unknown disguise quality %q", args.Quality)
	}
	if c.agent.Cash < spec.Price {
		return nil, insufficientFunds(spec.Price, c.agent.Cash)
	}

	ev, err := c.tx.Emit(world.EvDisguiseBought, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: c.agent.ZoneID,
	}, map[string]any{"quality": spec.Quality, "ticks": spec.DurationTicks}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Debit, spec.Price,
		fmt.Sprintf("%s disguise", spec.Quality), &ev.ID); err != nil {
		return nil, err
	}

	expires := c.tick() + spec.DurationTicks
	if err := c.tx.SaveDisguise(&crime.Disguise{
		AgentID:        c.agent.ID,
		Quality:        spec.Quality,
		HeatDecayBonus: spec.HeatDecayBonus,
		ExpiresAt:      expires,
		BoughtAtTick:   c.tick(),
	}); err != nil {
		return nil, err
	}

	return ok(fmt.Sprintf("wearing a %s disguise until tick %d", spec.Quality, expires)).
		with("expiresAtTick", expires), nil
}
