package actions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/catalog"
	"github.com/clawcity/clawcity/internal/config"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/entropy"
	"github.com/clawcity/clawcity/internal/social"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		_, err := tx.InitWorld(&world.World{Tick: 10, Status: world.StatusRunning})
		return err
	}))
	cat := catalog.Default()
	d := &Dispatcher{
		Store:    s,
		Catalog:  cat,
		Rules:    config.DefaultRules(),
		Rand:     entropy.NewSource("test"),
		Presence: world.NewPresenceField(cat.Zones, 1),
	}
	return d, s
}

func seedAgent(t *testing.T, s *store.Store, id, zone string, cash int64) *agents.Agent {
	t.Helper()
	a := &agents.Agent{
		ID:      id,
		Name:    "agent " + id,
		ZoneID:  zone,
		Cash:    cash,
		Health:  100,
		Stamina: 100,
		Status:  agents.StatusIdle,
	}
	require.NoError(t, s.Update(func(tx *store.Tx) error { return tx.SaveAgent(a) }))
	return a
}

func loadAgent(t *testing.T, s *store.Store, id string) *agents.Agent {
	t.Helper()
	var a *agents.Agent
	require.NoError(t, s.View(func(tx *store.Tx) error {
		var err error
		a, err = tx.Agent(id)
		return err
	}))
	return a
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestActRequiresRequestID(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "a1", "residential", 100)

	res := d.Act("a1", "", Move, rawJSON(t, map[string]any{"toZone": "market"}))
	assert.False(t, res.OK)
	assert.Equal(t, CodeMissingRequestID, res.Error)
	assert.Equal(t, uint64(10), res.Tick)
}

func TestActRejectsUnknownVerb(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "a1", "residential", 100)

	res := d.Act("a1", "r1", Verb("DANCE"), nil)
	assert.False(t, res.OK)
	assert.Equal(t, CodeUnknownAction, res.Error)
}

func TestActRejectsUnknownArgFields(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "a1", "residential", 100)

	res := d.Act("a1", "r1", Move, json.RawMessage(`{"toZne":"market"}`))
	assert.False(t, res.OK)
	assert.Equal(t, CodeBadArgs, res.Error)
}

func TestActUnknownAgent(t *testing.T) {
	d, _ := newTestDispatcher(t)
	res := d.Act("ghost", "r1", Move, rawJSON(t, map[string]any{"toZone": "market"}))
	assert.False(t, res.OK)
	assert.Equal(t, CodeAgentNotFound, res.Error)
}

func TestMoveDefersAndCharges(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "a1", "residential", 100)

	res := d.Act("a1", "r1", Move, rawJSON(t, map[string]any{"toZone": "market"}))
	require.True(t, res.OK, "move failed: %s", res.Message)
	assert.EqualValues(t, 11, res.Data["busyUntilTick"])
	assert.EqualValues(t, 5, res.Data["cashCost"])

	a := loadAgent(t, s, "a1")
	assert.Equal(t, agents.StatusBusy, a.Status)
	require.NotNil(t, a.Busy)
	assert.Equal(t, agents.BusyMove, a.Busy.Kind)
	assert.Equal(t, "market", a.Busy.ToZone)
	assert.Equal(t, int64(95), a.Cash)
	assert.Equal(t, "residential", a.ZoneID, "arrival is the pipeline's job, not the handler's")

	require.NoError(t, s.View(func(tx *store.Tx) error {
		entries, err := tx.LedgerFor("a1")
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		evs, err := tx.EventsForAgent("a1", 0, 50)
		require.NoError(t, err)
		require.Len(t, evs, 1)
		assert.Equal(t, world.EvMoveStarted, evs[0].Type)
		return nil
	}))
}

func TestMoveReplayIsVerbatim(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "a1", "residential", 100)

	args := rawJSON(t, map[string]any{"toZone": "market"})
	first := d.Act("a1", "r1", Move, args)
	require.True(t, first.OK)
	second := d.Act("a1", "r1", Move, args)

	// The replay is decoded from the stored body, so compare encodings.
	b1, err := json.Marshal(first)
	require.NoError(t, err)
	b2, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)

	// No double charge, no double event.
	a := loadAgent(t, s, "a1")
	assert.Equal(t, int64(95), a.Cash)
	require.NoError(t, s.View(func(tx *store.Tx) error {
		entries, err := tx.LedgerFor("a1")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		evs, err := tx.EventsForAgent("a1", 0, 50)
		require.NoError(t, err)
		assert.Len(t, evs, 1)
		return nil
	}))
}

func TestDeterministicFailureIsFinalized(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "a1", "residential", 100)

	first := d.Act("a1", "r1", TakeJob, rawJSON(t, map[string]any{"jobId": "astronaut"}))
	require.False(t, first.OK)
	assert.Equal(t, CodePreconditionFailed, first.Error)

	// Same requestId replays the stored failure instead of re-executing.
	second := d.Act("a1", "r1", TakeJob, rawJSON(t, map[string]any{"jobId": "astronaut"}))
	b1, _ := json.Marshal(first)
	b2, _ := json.Marshal(second)
	assert.Equal(t, b1, b2)
}

func TestMoveGates(t *testing.T) {
	d, s := newTestDispatcher(t)

	t.Run("busy", func(t *testing.T) {
		seedAgent(t, s, "busy", "residential", 100)
		res := d.Act("busy", "r1", Move, rawJSON(t, map[string]any{"toZone": "market"}))
		require.True(t, res.OK)
		res = d.Act("busy", "r2", Move, rawJSON(t, map[string]any{"toZone": "market"}))
		assert.Equal(t, CodeAgentBusy, res.Error)
	})

	t.Run("jailed", func(t *testing.T) {
		a := seedAgent(t, s, "jailed", "residential", 100)
		a.Status = agents.StatusJailed
		require.NoError(t, s.Update(func(tx *store.Tx) error { return tx.SaveAgent(a) }))
		res := d.Act("jailed", "r1", Move, rawJSON(t, map[string]any{"toZone": "market"}))
		assert.Equal(t, CodeInvalidStatus, res.Error)
	})

	t.Run("hospitalized", func(t *testing.T) {
		a := seedAgent(t, s, "hosp", "residential", 100)
		a.Status = agents.StatusHospitalized
		require.NoError(t, s.Update(func(tx *store.Tx) error { return tx.SaveAgent(a) }))
		res := d.Act("hosp", "r1", Move, rawJSON(t, map[string]any{"toZone": "market"}))
		assert.Equal(t, CodeInvalidStatus, res.Error)
	})

	t.Run("banned", func(t *testing.T) {
		a := seedAgent(t, s, "banned", "residential", 100)
		when := int64(1700000000000)
		a.BannedAt = &when
		require.NoError(t, s.Update(func(tx *store.Tx) error { return tx.SaveAgent(a) }))
		res := d.Act("banned", "r1", Move, rawJSON(t, map[string]any{"toZone": "market"}))
		assert.Equal(t, CodeAgentBanned, res.Error)
	})
}

func TestMovePreconditions(t *testing.T) {
	d, s := newTestDispatcher(t)

	seedAgent(t, s, "broke", "residential", 2)
	res := d.Act("broke", "r1", Move, rawJSON(t, map[string]any{"toZone": "market"}))
	assert.Equal(t, CodeInsufficientFunds, res.Error)
	assert.Equal(t, int64(2), loadAgent(t, s, "broke").Cash)

	seedAgent(t, s, "lost", "residential", 100)
	res = d.Act("lost", "r1", Move, rawJSON(t, map[string]any{"toZone": "docks"}))
	assert.Equal(t, CodePreconditionFailed, res.Error)

	res = d.Act("lost", "r2", Move, rawJSON(t, map[string]any{"toZone": "residential"}))
	assert.Equal(t, CodePreconditionFailed, res.Error, "already there")
}

func TestTakeJob(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "worker", "market", 0)

	res := d.Act("worker", "r1", TakeJob, rawJSON(t, map[string]any{"jobId": "shop_assistant"}))
	require.True(t, res.OK, "take job failed: %s", res.Message)
	assert.EqualValues(t, 13, res.Data["busyUntilTick"])
	assert.EqualValues(t, 40, res.Data["wage"])

	a := loadAgent(t, s, "worker")
	assert.Equal(t, agents.StatusBusy, a.Status)
	require.NotNil(t, a.Busy)
	assert.Equal(t, agents.BusyJob, a.Busy.Kind)
	assert.Equal(t, "shop_assistant", a.Busy.JobID)
	assert.Equal(t, 85, a.Stamina)
	assert.Equal(t, int64(0), a.Cash, "wage pays out on completion")
}

func TestTakeJobWrongZone(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "a1", "residential", 0)
	res := d.Act("a1", "r1", TakeJob, rawJSON(t, map[string]any{"jobId": "shop_assistant"}))
	assert.Equal(t, CodePreconditionFailed, res.Error)
}

func TestCoopInitiateAndJoin(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "boss", "warehouse", 100)
	seedAgent(t, s, "crew", "warehouse", 100)
	seedAgent(t, s, "late", "warehouse", 100)

	res := d.Act("boss", "r1", InitiateCoopCrime, rawJSON(t, map[string]any{
		"crimeType":       "coop_robbery",
		"minParticipants": 2,
		"maxParticipants": 2,
	}))
	require.True(t, res.OK, "initiate failed: %s", res.Message)
	coopID, okID := res.Data["coopId"].(string)
	require.True(t, okID)

	boss := loadAgent(t, s, "boss")
	assert.Equal(t, agents.StatusBusy, boss.Status)
	assert.Equal(t, agents.BusyCoop, boss.Busy.Kind)
	assert.Equal(t, coopID, boss.Busy.CoopID)

	// Second participant reaches min and arms the action.
	res = d.Act("crew", "r1", JoinCoopAction, rawJSON(t, map[string]any{"coopId": coopID}))
	require.True(t, res.OK, "join failed: %s", res.Message)
	assert.Equal(t, true, res.Data["armed"])
	assert.EqualValues(t, 15, res.Data["executeAtTick"], "arming schedules execution after the delay")

	// Max participants reached, the crew is closed.
	res = d.Act("late", "r1", JoinCoopAction, rawJSON(t, map[string]any{"coopId": coopID}))
	assert.Equal(t, CodePreconditionFailed, res.Error)
}

func TestCoopInitiateRejectsSoloCrime(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "a1", "residential", 100)
	res := d.Act("a1", "r1", InitiateCoopCrime, rawJSON(t, map[string]any{
		"crimeType":       "pickpocket",
		"minParticipants": 2,
		"maxParticipants": 3,
	}))
	assert.Equal(t, CodePreconditionFailed, res.Error)
}

func seedProperty(t *testing.T, s *store.Store, p *economy.Property) {
	t.Helper()
	require.NoError(t, s.Update(func(tx *store.Tx) error { return tx.SaveProperty(p) }))
}

func TestBuyPropertyMovesOwnerIn(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "buyer", "residential", 5000)
	seedAgent(t, s, "rival", "residential", 5000)
	seedProperty(t, s, &economy.Property{
		ID: "studio", ZoneID: "residential", Name: "Studio",
		Price: 4000, RentPerPeriod: 60, RentPeriodTicks: 50, Safehouse: true,
	})
	// The buyer is renting elsewhere; buying replaces the rental.
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		return tx.SaveResidency(&economy.PropertyResident{
			AgentID: "buyer", PropertyID: "studio", RentDueAt: 60, MovedInTick: 1,
		})
	}))

	res := d.Act("buyer", "r1", BuyProperty, rawJSON(t, map[string]any{"propertyId": "studio"}))
	require.True(t, res.OK, "buy failed: %s", res.Message)
	assert.EqualValues(t, 4000, res.Data["price"])

	a := loadAgent(t, s, "buyer")
	assert.Equal(t, int64(1000), a.Cash)
	require.NotNil(t, a.HomePropertyID)
	assert.Equal(t, "studio", *a.HomePropertyID)

	require.NoError(t, s.View(func(tx *store.Tx) error {
		prop, err := tx.Property("studio")
		require.NoError(t, err)
		require.NotNil(t, prop.OwnerAgentID)
		assert.Equal(t, "buyer", *prop.OwnerAgentID)
		_, err = tx.Residency("buyer")
		assert.ErrorIs(t, err, store.ErrNotFound, "owners do not pay rent")
		return nil
	}))

	res = d.Act("rival", "r1", BuyProperty, rawJSON(t, map[string]any{"propertyId": "studio"}))
	assert.Equal(t, CodePreconditionFailed, res.Error, "sold stock is off the market")

	res = d.Act("buyer", "r2", BuyProperty, rawJSON(t, map[string]any{"propertyId": "studio"}))
	assert.Equal(t, CodePreconditionFailed, res.Error, "cannot buy what you own")
}

func TestBuyPropertyRequiresPresence(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "afar", "market", 5000)
	seedProperty(t, s, &economy.Property{
		ID: "studio", ZoneID: "residential", Name: "Studio", Price: 4000,
	})
	res := d.Act("afar", "r1", BuyProperty, rawJSON(t, map[string]any{"propertyId": "studio"}))
	assert.Equal(t, CodePreconditionFailed, res.Error)
}

func TestRentPropertyPaysFirstPeriod(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "landlord", "residential", 0)
	seedAgent(t, s, "tenant", "residential", 100)
	owner := "landlord"
	seedProperty(t, s, &economy.Property{
		ID: "flat", ZoneID: "residential", Name: "Flat",
		Price: 9000, RentPerPeriod: 60, RentPeriodTicks: 50, OwnerAgentID: &owner,
	})

	res := d.Act("tenant", "r1", RentProperty, rawJSON(t, map[string]any{"propertyId": "flat"}))
	require.True(t, res.OK, "rent failed: %s", res.Message)
	assert.EqualValues(t, 60, res.Data["rentDueAtTick"], "next rent one period after move-in")

	tenant := loadAgent(t, s, "tenant")
	assert.Equal(t, int64(40), tenant.Cash)
	require.NotNil(t, tenant.HomePropertyID)
	assert.Equal(t, "flat", *tenant.HomePropertyID)
	assert.Equal(t, int64(60), loadAgent(t, s, "landlord").Cash, "first rent goes to the owner")

	require.NoError(t, s.View(func(tx *store.Tx) error {
		r, err := tx.Residency("tenant")
		require.NoError(t, err)
		assert.Equal(t, uint64(60), r.RentDueAt)
		return nil
	}))

	res = d.Act("tenant", "r2", RentProperty, rawJSON(t, map[string]any{"propertyId": "flat"}))
	assert.Equal(t, CodePreconditionFailed, res.Error, "one residency per agent")

	res = d.Act("landlord", "r1", RentProperty, rawJSON(t, map[string]any{"propertyId": "flat"}))
	assert.Equal(t, CodePreconditionFailed, res.Error, "owners do not rent from themselves")
}

func TestSellPropertyReturnsToCity(t *testing.T) {
	d, s := newTestDispatcher(t)
	a := seedAgent(t, s, "owner", "market", 0)
	owner := "owner"
	home := "studio"
	a.HomePropertyID = &home
	require.NoError(t, s.Update(func(tx *store.Tx) error { return tx.SaveAgent(a) }))
	seedProperty(t, s, &economy.Property{
		ID: "studio", ZoneID: "residential", Name: "Studio",
		Price: 4000, OwnerAgentID: &owner,
	})

	// Selling works from anywhere; the deed changes hands, not the agent.
	res := d.Act("owner", "r1", SellProperty, rawJSON(t, map[string]any{"propertyId": "studio"}))
	require.True(t, res.OK, "sell failed: %s", res.Message)
	assert.EqualValues(t, 3200, res.Data["proceeds"], "resale pays 80% of list")

	a = loadAgent(t, s, "owner")
	assert.Equal(t, int64(3200), a.Cash)
	assert.Nil(t, a.HomePropertyID)
	require.NoError(t, s.View(func(tx *store.Tx) error {
		prop, err := tx.Property("studio")
		require.NoError(t, err)
		assert.Nil(t, prop.OwnerAgentID, "back on the city's books")
		return nil
	}))

	res = d.Act("owner", "r2", SellProperty, rawJSON(t, map[string]any{"propertyId": "studio"}))
	assert.Equal(t, CodePreconditionFailed, res.Error, "cannot sell what you no longer own")
}

func TestStartBusinessOpensShop(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "founder", "market", 5000)

	res := d.Act("founder", "r1", StartBusiness, rawJSON(t, map[string]any{"name": "Corner Shop"}))
	require.True(t, res.OK, "start failed: %s", res.Message)
	bizID, okID := res.Data["businessId"].(string)
	require.True(t, okID)

	assert.Equal(t, int64(2000), loadAgent(t, s, "founder").Cash)
	require.NoError(t, s.View(func(tx *store.Tx) error {
		biz, err := tx.Business(bizID)
		require.NoError(t, err)
		assert.Equal(t, "Corner Shop", biz.Name)
		assert.Equal(t, "market", biz.ZoneID)
		require.NotNil(t, biz.OwnerAgentID)
		assert.Equal(t, "founder", *biz.OwnerAgentID)
		assert.Equal(t, int64(1000), biz.CashOnHand, "the till opens with its float")
		return nil
	}))

	res = d.Act("founder", "r2", StartBusiness, rawJSON(t, map[string]any{
		"name": "Branch Office", "zoneId": "docks",
	}))
	assert.Equal(t, CodePreconditionFailed, res.Error, "must stand where the shop opens")

	seedAgent(t, s, "broke", "market", 100)
	res = d.Act("broke", "r1", StartBusiness, rawJSON(t, map[string]any{"name": "Dream Shop"}))
	assert.Equal(t, CodeInsufficientFunds, res.Error)
}

func TestStockAndRepriceBusiness(t *testing.T) {
	d, s := newTestDispatcher(t)
	a := seedAgent(t, s, "owner", "market", 0)
	a.AddItem("bandage", 3)
	require.NoError(t, s.Update(func(tx *store.Tx) error { return tx.SaveAgent(a) }))
	seedAgent(t, s, "stranger", "market", 0)
	owner := "owner"
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		return tx.SaveBusiness(&economy.Business{
			ID: "shop1", ZoneID: "market", Name: "Corner Shop",
			OwnerAgentID: &owner, CashOnHand: 1000,
		})
	}))

	res := d.Act("owner", "r1", StockBusiness, rawJSON(t, map[string]any{
		"businessId": "shop1", "itemId": "bandage", "qty": 2,
	}))
	require.True(t, res.OK, "stock failed: %s", res.Message)
	assert.Equal(t, 1, loadAgent(t, s, "owner").ItemCount("bandage"))

	res = d.Act("owner", "r2", SetPrices, rawJSON(t, map[string]any{
		"businessId": "shop1", "prices": map[string]int64{"bandage": 45},
	}))
	require.True(t, res.OK, "reprice failed: %s", res.Message)

	require.NoError(t, s.View(func(tx *store.Tx) error {
		biz, err := tx.Business("shop1")
		require.NoError(t, err)
		assert.Equal(t, 2, biz.StockOf("bandage").Qty)
		assert.Equal(t, int64(45), biz.StockOf("bandage").Price)
		return nil
	}))

	res = d.Act("stranger", "r1", SetPrices, rawJSON(t, map[string]any{
		"businessId": "shop1", "prices": map[string]int64{"bandage": 1},
	}))
	assert.Equal(t, CodePreconditionFailed, res.Error, "owner-only")

	res = d.Act("owner", "r3", StockBusiness, rawJSON(t, map[string]any{
		"businessId": "shop1", "itemId": "bandage", "qty": 5,
	}))
	assert.Equal(t, CodeInsufficientInventory, res.Error)
}

func TestStockBusinessRequiresPresence(t *testing.T) {
	d, s := newTestDispatcher(t)
	a := seedAgent(t, s, "owner", "market", 0)
	a.AddItem("bandage", 3)
	require.NoError(t, s.Update(func(tx *store.Tx) error { return tx.SaveAgent(a) }))
	owner := "owner"
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		return tx.SaveBusiness(&economy.Business{
			ID: "faraway", ZoneID: "residential", Name: "Far Shop",
			OwnerAgentID: &owner, CashOnHand: 1000,
		})
	}))
	res := d.Act("owner", "r1", StockBusiness, rawJSON(t, map[string]any{
		"businessId": "faraway", "itemId": "bandage", "qty": 1,
	}))
	assert.Equal(t, CodePreconditionFailed, res.Error)
}

func TestBetrayGangTakesEverythingAndDisbands(t *testing.T) {
	d, s := newTestDispatcher(t)
	boss := seedAgent(t, s, "boss", "residential", 0)
	mate := seedAgent(t, s, "mate", "residential", 0)
	gangID := "g1"
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		return tx.SaveGang(&social.Gang{
			ID: gangID, Name: "Harbor Kings", LeaderID: "mate",
			Treasury: 900, MemberCount: 2, HomeZoneID: "residential",
		})
	}))
	boss.GangID = &gangID
	mate.GangID = &gangID
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		if err := tx.SaveAgent(boss); err != nil {
			return err
		}
		return tx.SaveAgent(mate)
	}))

	res := d.Act("boss", "r1", BetrayGang, nil)
	require.True(t, res.OK, "betray failed: %s", res.Message)
	assert.EqualValues(t, 900, res.Data["stolen"], "the whole treasury walks out")
	assert.EqualValues(t, 1010, res.Data["gangBanUntilTick"])

	boss = loadAgent(t, s, "boss")
	assert.Equal(t, int64(900), boss.Cash)
	assert.Nil(t, boss.GangID)
	require.NotNil(t, boss.GangBanUntil)
	assert.Equal(t, uint64(1010), *boss.GangBanUntil)

	mate = loadAgent(t, s, "mate")
	assert.Nil(t, mate.GangID, "the rest of the crew is turned loose")

	require.NoError(t, s.View(func(tx *store.Tx) error {
		_, err := tx.Gang(gangID)
		assert.ErrorIs(t, err, store.ErrNotFound, "betrayal always disbands")
		return nil
	}))
}

func TestRobRejectsOccupiedTarget(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "robber", "residential", 100)
	mark := seedAgent(t, s, "mark", "residential", 500)
	mark.SetBusy(20, agents.BusyAction{Kind: agents.BusyRest})
	require.NoError(t, s.Update(func(tx *store.Tx) error { return tx.SaveAgent(mark) }))

	res := d.Act("robber", "r1", RobAgent, rawJSON(t, map[string]any{"targetAgentId": "mark"}))
	assert.Equal(t, CodePreconditionFailed, res.Error)
	assert.Equal(t, int64(500), loadAgent(t, s, "mark").Cash)
}

func TestGiftItemRequiresSameZone(t *testing.T) {
	d, s := newTestDispatcher(t)
	giver := seedAgent(t, s, "giver", "residential", 0)
	giver.AddItem("bandage", 1)
	require.NoError(t, s.Update(func(tx *store.Tx) error { return tx.SaveAgent(giver) }))
	seedAgent(t, s, "afar", "market", 0)

	res := d.Act("giver", "r1", GiftItem, rawJSON(t, map[string]any{
		"toAgentId": "afar", "itemId": "bandage", "qty": 1,
	}))
	assert.Equal(t, CodePreconditionFailed, res.Error)
	assert.Equal(t, 1, loadAgent(t, s, "giver").ItemCount("bandage"))
	assert.Equal(t, 0, loadAgent(t, s, "afar").ItemCount("bandage"))
}

func TestBuyDisguiseRequiresMarket(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "home", "residential", 1000)
	res := d.Act("home", "r1", BuyDisguise, rawJSON(t, map[string]any{"quality": "standard"}))
	assert.Equal(t, CodePreconditionFailed, res.Error)

	seedAgent(t, s, "shopper", "market", 1000)
	res = d.Act("shopper", "r1", BuyDisguise, rawJSON(t, map[string]any{"quality": "standard"}))
	require.True(t, res.OK, "buy failed: %s", res.Message)
	assert.Equal(t, int64(600), loadAgent(t, s, "shopper").Cash)
}

func TestCoopArmingExtendsWholeCrew(t *testing.T) {
	d, s := newTestDispatcher(t)
	seedAgent(t, s, "boss", "warehouse", 100)
	seedAgent(t, s, "crew", "warehouse", 100)

	// Recruiting closes before the execute delay would elapse; arming must
	// still carry the early joiners through to execution.
	res := d.Act("boss", "r1", InitiateCoopCrime, rawJSON(t, map[string]any{
		"crimeType":       "coop_robbery",
		"minParticipants": 2,
		"maxParticipants": 2,
		"recruitTicks":    2,
	}))
	require.True(t, res.OK, "initiate failed: %s", res.Message)
	coopID := res.Data["coopId"].(string)

	boss := loadAgent(t, s, "boss")
	require.NotNil(t, boss.BusyUntil)
	assert.Equal(t, uint64(12), *boss.BusyUntil, "recruiting deadline while waiting")

	res = d.Act("crew", "r1", JoinCoopAction, rawJSON(t, map[string]any{"coopId": coopID}))
	require.True(t, res.OK, "join failed: %s", res.Message)
	assert.EqualValues(t, 15, res.Data["executeAtTick"])

	boss = loadAgent(t, s, "boss")
	require.NotNil(t, boss.BusyUntil)
	assert.Equal(t, uint64(15), *boss.BusyUntil, "initiator stays busy to the execute tick")
	crew := loadAgent(t, s, "crew")
	require.NotNil(t, crew.BusyUntil)
	assert.Equal(t, uint64(15), *crew.BusyUntil)
}
