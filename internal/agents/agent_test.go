package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBusyAndClearBusy(t *testing.T) {
	a := &Agent{Status: StatusIdle}

	a.SetBusy(42, BusyAction{Kind: BusyMove, ToZone: "market"})
	assert.Equal(t, StatusBusy, a.Status)
	require.NotNil(t, a.BusyUntil)
	assert.Equal(t, uint64(42), *a.BusyUntil)
	require.NotNil(t, a.Busy)
	assert.Equal(t, BusyMove, a.Busy.Kind)

	a.ClearBusy()
	assert.Nil(t, a.BusyUntil)
	assert.Nil(t, a.Busy)
	// ClearBusy does not decide the next status.
	assert.Equal(t, StatusBusy, a.Status)
}

func TestApplyDamageHospitalizes(t *testing.T) {
	a := &Agent{Status: StatusBusy, Health: 30}
	a.SetBusy(10, BusyAction{Kind: BusyJob, JobID: "factory_shift"})

	assert.False(t, a.ApplyDamage(10, 100))
	assert.Equal(t, 20, a.Health)
	assert.Equal(t, StatusBusy, a.Status)

	assert.True(t, a.ApplyDamage(50, 100))
	assert.Equal(t, 0, a.Health)
	assert.Equal(t, StatusHospitalized, a.Status)
	require.NotNil(t, a.ReleaseTick)
	assert.Equal(t, uint64(100), *a.ReleaseTick)
	assert.Nil(t, a.Busy)
	assert.Equal(t, 1, a.Stats.TimesHospitalized)

	// Zero or negative damage never does anything.
	assert.False(t, a.ApplyDamage(0, 200))
}

func TestHeatClamping(t *testing.T) {
	a := &Agent{Heat: 95}
	a.AddHeat(20, 100)
	assert.Equal(t, 100.0, a.Heat)

	a.Heat = 1
	a.AddHeat(-5, 100)
	assert.Equal(t, 0.0, a.Heat)
}

func TestInventory(t *testing.T) {
	a := &Agent{}
	a.AddItem("bandage", 3)
	assert.Equal(t, 3, a.ItemCount("bandage"))

	a.AddItem("bandage", -3)
	assert.Equal(t, 0, a.ItemCount("bandage"))
	_, held := a.Inventory["bandage"]
	assert.False(t, held, "zeroed entries are removed")
}

func TestClampVitals(t *testing.T) {
	a := &Agent{Health: 140, Stamina: -5}
	a.ClampVitals()
	assert.Equal(t, 100, a.Health)
	assert.Equal(t, 0, a.Stamina)
}

func TestSkillLevel(t *testing.T) {
	a := &Agent{Skills: Skills{Driving: 10, Stealth: 30}}
	assert.Equal(t, 10, a.SkillLevel("driving"))
	assert.Equal(t, 30, a.SkillLevel("stealth"))
	assert.Equal(t, 0, a.SkillLevel("juggling"))
}

func TestBanned(t *testing.T) {
	a := &Agent{}
	assert.False(t, a.Banned())
	ts := int64(1700000000000)
	a.BannedAt = &ts
	assert.True(t, a.Banned())
}
