package npc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawcity/clawcity/internal/actions"
	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/config"
	"github.com/clawcity/clawcity/internal/crime"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/entropy"
	"github.com/clawcity/clawcity/internal/world"
)

func testHeuristic() *Heuristic {
	return NewHeuristic(config.DefaultRules(), entropy.NewSource("policy-test"))
}

func baseView(a *agents.Agent) View {
	return View{
		Tick:  4,
		Agent: a,
		Zone:  &world.Zone{ID: "residential", Type: world.ZoneResidential},
		Neighbors: []world.Zone{
			{ID: "market", Type: world.ZoneMarket},
		},
		Disguises: map[crime.DisguiseQuality]crime.DisguiseSpec{
			crime.DisguiseStandard: {Quality: crime.DisguiseStandard, Price: 500},
		},
	}
}

func idleAgent() *agents.Agent {
	return &agents.Agent{
		ID: "npc-1", Status: agents.StatusIdle,
		ZoneID: "residential", Health: 100, Stamina: 100, Cash: 1000,
	}
}

func TestJailedAgentTriesToGetOut(t *testing.T) {
	h := testHeuristic()
	a := idleAgent()
	a.Status = agents.StatusJailed

	a.Cash = 0
	d := h.Decide(baseView(a))
	require.NotNil(t, d)
	assert.Equal(t, actions.AttemptJailbreak, d.Verb, "no money means no bribe")

	a.Cash = 100000
	for i := 0; i < 20; i++ {
		d = h.Decide(baseView(a))
		require.NotNil(t, d)
		assert.Contains(t, []actions.Verb{actions.BribeCops, actions.AttemptJailbreak}, d.Verb)
	}
}

func TestWoundedAgentSeeksHealing(t *testing.T) {
	h := testHeuristic()

	a := idleAgent()
	a.Health = 30
	v := baseView(a)
	v.Zone = &world.Zone{ID: "hospital", Type: world.ZoneHospital}
	d := h.Decide(v)
	require.NotNil(t, d)
	assert.Equal(t, actions.Heal, d.Verb)

	// Not at a hospital but next to one: walk there.
	a = idleAgent()
	a.Health = 30
	v = baseView(a)
	v.Neighbors = []world.Zone{{ID: "hospital", Type: world.ZoneHospital}}
	d = h.Decide(v)
	require.NotNil(t, d)
	assert.Equal(t, actions.Move, d.Verb)
	assert.Equal(t, "hospital", d.Args["toZone"])
}

func TestExhaustedAgentRests(t *testing.T) {
	h := testHeuristic()
	a := idleAgent()
	a.Stamina = 10
	d := h.Decide(baseView(a))
	require.NotNil(t, d)
	assert.Equal(t, actions.Rest, d.Verb)
}

func TestHotAgentBuysDisguise(t *testing.T) {
	h := testHeuristic()
	a := idleAgent()
	a.Heat = 80
	a.Cash = 1000
	v := baseView(a)
	v.Zone = &world.Zone{ID: "market", Type: world.ZoneMarket}
	d := h.Decide(v)
	require.NotNil(t, d)
	assert.Equal(t, actions.BuyDisguise, d.Verb)
	assert.Equal(t, string(crime.DisguiseStandard), d.Args["quality"])

	// Not at a market but next to one: walk there first.
	a = idleAgent()
	a.Heat = 80
	a.Cash = 1000
	d = h.Decide(baseView(a))
	require.NotNil(t, d)
	assert.Equal(t, actions.Move, d.Verb)
	assert.Equal(t, "market", d.Args["toZone"])
}

func TestBrokeAgentWorksOrWanders(t *testing.T) {
	h := testHeuristic()
	a := idleAgent()
	a.Cash = 100

	v := baseView(a)
	v.Jobs = []economy.Job{{ID: "shop_assistant", ZoneID: "residential"}}
	d := h.Decide(v)
	require.NotNil(t, d)
	assert.Equal(t, actions.TakeJob, d.Verb)
	assert.Equal(t, "shop_assistant", d.Args["jobId"])

	// No work around: go look for some.
	v.Jobs = nil
	d = h.Decide(v)
	require.NotNil(t, d)
	assert.Equal(t, actions.Move, d.Verb)
	assert.Equal(t, "market", d.Args["toZone"])
}

func TestStrandedAgentSitsOut(t *testing.T) {
	h := testHeuristic()
	a := idleAgent()
	a.Cash = 100
	v := baseView(a)
	v.Jobs = nil
	v.Neighbors = nil
	assert.Nil(t, h.Decide(v))
}

func TestGreedIsAStableTrait(t *testing.T) {
	a := NewHeuristic(config.DefaultRules(), entropy.NewSource("seed-x"))
	b := NewHeuristic(config.DefaultRules(), entropy.NewSource("seed-x"))
	for _, id := range []string{"npc-1", "npc-2", "npc-3"} {
		assert.Equal(t, a.greed(id), b.greed(id))
		assert.GreaterOrEqual(t, a.greed(id), 0.15)
		assert.Less(t, a.greed(id), 0.75)
	}
	c := NewHeuristic(config.DefaultRules(), entropy.NewSource("seed-y"))
	assert.NotEqual(t, a.greed("npc-1"), c.greed("npc-1"))
}
