// Package catalog holds the read-only reference data the core consumes at
// startup: the zone graph, items, jobs, crimes, gamble odds, vehicles,
// disguises, and the seed templates for businesses, properties, and
// contracts. The core never mutates any of it.
package catalog

import (
	"fmt"

	"github.com/clawcity/clawcity/internal/crime"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/world"
)

// Catalog is the full reference set, indexed for lookup.
type Catalog struct {
	Zones     []world.Zone
	Edges     []world.ZoneEdge
	Items     []economy.Item
	Jobs      []economy.Job
	Crimes    []crime.Type
	Vehicles  []economy.VehicleSpec
	Disguises map[crime.DisguiseQuality]crime.DisguiseSpec
	Gamble    map[crime.RiskTier][]crime.Odds

	BusinessSeeds []economy.Business
	PropertySeeds []economy.Property
	ContractSeeds []economy.Contract
	NPCNames      []string

	zoneByID  map[string]*world.Zone
	edgeByKey map[string]*world.ZoneEdge
	itemByID  map[string]*economy.Item
	jobByID   map[string]*economy.Job
	crimeByID map[string]*crime.Type
	vehByID   map[string]*economy.VehicleSpec
}

// Default returns the stock ClawCity catalog.
func Default() *Catalog {
	c := &Catalog{
		Zones:         stockZones(),
		Edges:         stockEdges(),
		Items:         stockItems(),
		Jobs:          stockJobs(),
		Crimes:        stockCrimes(),
		Vehicles:      stockVehicles(),
		Disguises:     stockDisguises(),
		Gamble:        stockGamble(),
		BusinessSeeds: stockBusinesses(),
		PropertySeeds: stockProperties(),
		ContractSeeds: stockContracts(),
		NPCNames:      stockNPCNames(),
	}
	c.index()
	return c
}

func (c *Catalog) index() {
	c.zoneByID = make(map[string]*world.Zone, len(c.Zones))
	for i := range c.Zones {
		c.zoneByID[c.Zones[i].ID] = &c.Zones[i]
	}
	c.edgeByKey = make(map[string]*world.ZoneEdge, len(c.Edges))
	for i := range c.Edges {
		e := &c.Edges[i]
		c.edgeByKey[e.From+"->"+e.To] = e
	}
	c.itemByID = make(map[string]*economy.Item, len(c.Items))
	for i := range c.Items {
		c.itemByID[c.Items[i].ID] = &c.Items[i]
	}
	c.jobByID = make(map[string]*economy.Job, len(c.Jobs))
	for i := range c.Jobs {
		c.jobByID[c.Jobs[i].ID] = &c.Jobs[i]
	}
	c.crimeByID = make(map[string]*crime.Type, len(c.Crimes))
	for i := range c.Crimes {
		c.crimeByID[c.Crimes[i].ID] = &c.Crimes[i]
	}
	c.vehByID = make(map[string]*economy.VehicleSpec, len(c.Vehicles))
	for i := range c.Vehicles {
		c.vehByID[c.Vehicles[i].ID] = &c.Vehicles[i]
	}
}

// Zone looks up a zone by slug; nil when unknown.
func (c *Catalog) Zone(id string) *world.Zone { return c.zoneByID[id] }

// Edge looks up the directed travel link from → to; nil when absent.
func (c *Catalog) Edge(from, to string) *world.ZoneEdge { return c.edgeByKey[from+"->"+to] }

// EdgesFrom lists outgoing travel links of a zone.
func (c *Catalog) EdgesFrom(from string) []world.ZoneEdge {
	var out []world.ZoneEdge
	for _, e := range c.Edges {
		if e.From == from {
			out = append(out, e)
		}
	}
	return out
}

// Item looks up an item; nil when unknown.
func (c *Catalog) Item(id string) *economy.Item { return c.itemByID[id] }

// Job looks up a job; nil when unknown.
func (c *Catalog) Job(id string) *economy.Job { return c.jobByID[id] }

// JobsInZone lists jobs offered in a zone.
func (c *Catalog) JobsInZone(zoneID string) []economy.Job {
	var out []economy.Job
	for _, j := range c.Jobs {
		if j.ZoneID == zoneID {
			out = append(out, j)
		}
	}
	return out
}

// Crime looks up a crime type; nil when unknown.
func (c *Catalog) Crime(id string) *crime.Type { return c.crimeByID[id] }

// CoopCrimes lists the crime types initiable as cooperative actions.
func (c *Catalog) CoopCrimes() []crime.Type {
	var out []crime.Type
	for _, ct := range c.Crimes {
		if ct.Coop {
			out = append(out, ct)
		}
	}
	return out
}

// VehicleSpec looks up a vehicle model; nil when unknown.
func (c *Catalog) VehicleSpec(id string) *economy.VehicleSpec { return c.vehByID[id] }

// Validate checks referential integrity of the reference data: every edge,
// job, business, property, and contract must point at a known zone, and
// every seeded shelf at a known item.
func (c *Catalog) Validate() error {
	for _, e := range c.Edges {
		if c.Zone(e.From) == nil || c.Zone(e.To) == nil {
			return fmt.Errorf("catalog: edge %s->%s references unknown zone", e.From, e.To)
		}
	}
	for _, j := range c.Jobs {
		if c.Zone(j.ZoneID) == nil {
			return fmt.Errorf("catalog: job %s in unknown zone %s", j.ID, j.ZoneID)
		}
	}
	for _, b := range c.BusinessSeeds {
		if c.Zone(b.ZoneID) == nil {
			return fmt.Errorf("catalog: business %s in unknown zone %s", b.ID, b.ZoneID)
		}
		for itemID := range b.Inventory {
			if c.Item(itemID) == nil {
				return fmt.Errorf("catalog: business %s stocks unknown item %s", b.ID, itemID)
			}
		}
	}
	for _, p := range c.PropertySeeds {
		if c.Zone(p.ZoneID) == nil {
			return fmt.Errorf("catalog: property %s in unknown zone %s", p.ID, p.ZoneID)
		}
	}
	for _, ct := range c.ContractSeeds {
		if c.Zone(ct.ZoneID) == nil {
			return fmt.Errorf("catalog: contract %s in unknown zone %s", ct.ID, ct.ZoneID)
		}
	}
	for tier, rows := range c.Gamble {
		total := 0.0
		for _, o := range rows {
			total += o.P
		}
		if total > 1 {
			return fmt.Errorf("catalog: gamble tier %s win probabilities sum to %.2f", tier, total)
		}
	}
	return nil
}
