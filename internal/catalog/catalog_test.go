package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.NotEmpty(t, c.Zones)
	assert.NotEmpty(t, c.Edges)
	assert.NotEmpty(t, c.Jobs)
	assert.NotEmpty(t, c.Crimes)
	assert.NotEmpty(t, c.NPCNames)
}

func TestLookups(t *testing.T) {
	c := Default()

	require.NotNil(t, c.Zone("market"))
	assert.Equal(t, "Grand Bazaar", c.Zone("market").Name)
	assert.Nil(t, c.Zone("atlantis"))

	require.NotNil(t, c.Edge("residential", "market"))
	assert.Nil(t, c.Edge("market", "residential2"))

	require.NotNil(t, c.Job("shop_assistant"))
	assert.Equal(t, "market", c.Job("shop_assistant").ZoneID)
	assert.Nil(t, c.Job("astronaut"))

	require.NotNil(t, c.Crime("pickpocket"))
	assert.Nil(t, c.Crime("jaywalking"))
}

func TestEdgesAreSymmetric(t *testing.T) {
	c := Default()
	for _, e := range c.Edges {
		back := c.Edge(e.To, e.From)
		require.NotNil(t, back, "edge %s->%s has no return", e.From, e.To)
		assert.Equal(t, e.TimeCostTicks, back.TimeCostTicks)
		assert.Equal(t, e.CashCost, back.CashCost)
	}
}

func TestEdgesFrom(t *testing.T) {
	c := Default()
	out := c.EdgesFrom("residential")
	require.NotEmpty(t, out)
	targets := make(map[string]bool)
	for _, e := range out {
		assert.Equal(t, "residential", e.From)
		targets[e.To] = true
	}
	assert.True(t, targets["market"])
	assert.True(t, targets["hospital"])
}

func TestCoopCrimes(t *testing.T) {
	c := Default()
	coops := c.CoopCrimes()
	require.NotEmpty(t, coops)
	for _, ct := range coops {
		assert.True(t, ct.Coop)
	}
}

func TestValidateCatchesDanglingReferences(t *testing.T) {
	c := Default()
	c.Jobs = append(c.Jobs, c.Jobs[0])
	c.Jobs[len(c.Jobs)-1].ID = "ghost_job"
	c.Jobs[len(c.Jobs)-1].ZoneID = "nowhere"
	c.index()
	assert.Error(t, c.Validate())
}

func TestGambleOddsSumBelowOne(t *testing.T) {
	c := Default()
	for tier, rows := range c.Gamble {
		total := 0.0
		for _, o := range rows {
			total += o.P
		}
		assert.LessOrEqual(t, total, 1.0, "tier %s", tier)
	}
}
