package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testZones() []Zone {
	return []Zone{
		{ID: "quiet", BasePolice: 0.2},
		{ID: "plaza", BasePolice: 0.7},
	}
}

func TestPresenceStaysInBand(t *testing.T) {
	f := NewPresenceField(testZones(), 42)
	for tick := uint64(0); tick < 500; tick++ {
		p := f.At("quiet", tick)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		// Drift is bounded around the zone's base.
		assert.InDelta(t, 0.2, p, presenceDriftSpan+1e-9)
	}
}

func TestPresenceIsDeterministic(t *testing.T) {
	a := NewPresenceField(testZones(), 42)
	b := NewPresenceField(testZones(), 42)
	for tick := uint64(0); tick < 100; tick += 10 {
		assert.Equal(t, a.At("plaza", tick), b.At("plaza", tick))
	}
	c := NewPresenceField(testZones(), 43)
	assert.NotEqual(t, a.At("plaza", 50), c.At("plaza", 50))
}

func TestPresenceUnknownZoneReadsModerate(t *testing.T) {
	f := NewPresenceField(testZones(), 42)
	assert.Equal(t, 0.5, f.At("nowhere", 10))
}

func TestPresenceLabel(t *testing.T) {
	f := NewPresenceField(testZones(), 42)
	assert.Equal(t, "light", f.Label(0.1, 0.35, 0.65))
	assert.Equal(t, "moderate", f.Label(0.5, 0.35, 0.65))
	assert.Equal(t, "heavy", f.Label(0.8, 0.35, 0.65))
	assert.Equal(t, "moderate", f.Label(0.35, 0.35, 0.65))
	assert.Equal(t, "heavy", f.Label(0.65, 0.35, 0.65))
}
