package actions

import (
	"errors"
	"fmt"

	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// doBuyProperty purchases a city-owned address outright. The buyer moves
// in: the address becomes their home, replacing any rental, so safehouse
// heat decay applies from the next tick.
func (d *Dispatcher) doBuyProperty(c *actionCtx, args propertyArgs) (*outcome, error) {
	prop, err := d.propertyHere(c, args.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop.OwnerAgentID != nil {
		if *prop.OwnerAgentID == c.agent.ID {
			return nil, precondition("you already own %s", prop.Name)
		}
		return nil, precondition("%s is not for sale", prop.Name)
	}
	if c.agent.Cash < prop.Price {
		return nil, insufficientFunds(prop.Price, c.agent.Cash)
	}

	ev, err := c.tx.Emit(world.EvPropertyBought, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: prop.ZoneID, EntityID: prop.ID,
	}, map[string]any{"property": prop.ID, "price": prop.Price}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Debit, prop.Price, "bought "+prop.ID, &ev.ID); err != nil {
		return nil, err
	}

	prop.OwnerAgentID = &c.agent.ID
	if err := c.tx.SaveProperty(prop); err != nil {
		return nil, err
	}
	if err := c.tx.DeleteResidency(c.agent.ID); err != nil {
		return nil, err
	}
	c.agent.HomePropertyID = &prop.ID

	return ok(fmt.Sprintf("bought %s for $%d", prop.Name, prop.Price)).
		with("propertyId", prop.ID).
		with("price", prop.Price), nil
}

// doRentProperty moves in as a tenant. The first rent period is paid up
// front; phase 7 collects every period after that.
func (d *Dispatcher) doRentProperty(c *actionCtx, args propertyArgs) (*outcome, error) {
	prop, err := d.propertyHere(c, args.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop.OwnerAgentID != nil && *prop.OwnerAgentID == c.agent.ID {
		return nil, precondition("you own %s; no need to rent it", prop.Name)
	}
	if _, err := c.tx.Residency(c.agent.ID); err == nil {
		return nil, precondition("already renting; move out by stopping payment")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if c.agent.Cash < prop.RentPerPeriod {
		return nil, insufficientFunds(prop.RentPerPeriod, c.agent.Cash)
	}

	ev, err := c.tx.Emit(world.EvPropertyRented, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: prop.ZoneID, EntityID: prop.ID,
	}, map[string]any{"property": prop.ID, "rent": prop.RentPerPeriod}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Debit, prop.RentPerPeriod, "rent: "+prop.ID, &ev.ID); err != nil {
		return nil, err
	}
	if prop.OwnerAgentID != nil {
		owner, err := c.tx.Agent(*prop.OwnerAgentID)
		if err != nil {
			return nil, err
		}
		if _, err := c.tx.Post(owner, economy.Credit, prop.RentPerPeriod, "rent income: "+prop.ID, &ev.ID); err != nil {
			return nil, err
		}
	}

	dueAt := c.tick() + prop.RentPeriodTicks
	if err := c.tx.SaveResidency(&economy.PropertyResident{
		AgentID:     c.agent.ID,
		PropertyID:  prop.ID,
		RentDueAt:   dueAt,
		MovedInTick: c.tick(),
	}); err != nil {
		return nil, err
	}
	c.agent.HomePropertyID = &prop.ID

	return ok(fmt.Sprintf("moved into %s; next rent of $%d due at tick %d",
		prop.Name, prop.RentPerPeriod, dueAt)).
		with("propertyId", prop.ID).
		with("rentDueAtTick", dueAt), nil
}

// doSellProperty sells an owned address back to the city at the resale
// fraction of list price. Tenants stay on; their rent flows to the city.
func (d *Dispatcher) doSellProperty(c *actionCtx, args propertyArgs) (*outcome, error) {
	if args.PropertyID == "" {
		return nil, badArgs("propertyId is required")
	}
	prop, err := c.tx.Property(args.PropertyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, precondition("no such property %s", args.PropertyID)
		}
		return nil, err
	}
	if prop.OwnerAgentID == nil || *prop.OwnerAgentID != c.agent.ID {
		return nil, precondition("you do not own %s", prop.Name)
	}

	proceeds := int64(float64(prop.Price) * d.Rules.PropertyResalePct)
	ev, err := c.tx.Emit(world.EvPropertySold, store.EventRefs{
		AgentID: c.agent.ID, ZoneID: prop.ZoneID, EntityID: prop.ID,
	}, map[string]any{"property": prop.ID, "proceeds": proceeds}, c.reqID())
	if err != nil {
		return nil, err
	}
	if _, err := c.tx.Post(c.agent, economy.Credit, proceeds, "sold "+prop.ID, &ev.ID); err != nil {
		return nil, err
	}

	prop.OwnerAgentID = nil
	if err := c.tx.SaveProperty(prop); err != nil {
		return nil, err
	}
	if c.agent.HomePropertyID != nil && *c.agent.HomePropertyID == prop.ID {
		c.agent.HomePropertyID = nil
	}

	return ok(fmt.Sprintf("sold %s back to the city for $%d", prop.Name, proceeds)).
		with("propertyId", prop.ID).
		with("proceeds", proceeds), nil
}

// propertyHere validates the shared BUY/RENT preconditions: the address
// exists and the agent is standing in its zone.
func (d *Dispatcher) propertyHere(c *actionCtx, propertyID string) (*economy.Property, error) {
	if propertyID == "" {
		return nil, badArgs("propertyId is required")
	}
	prop, err := c.tx.Property(propertyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, precondition("no such property %s", propertyID)
		}
		return nil, err
	}
	if prop.ZoneID != c.agent.ZoneID {
		return nil, precondition("%s is in %s, you are in %s", prop.Name, prop.ZoneID, c.agent.ZoneID)
	}
	return prop, nil
}
