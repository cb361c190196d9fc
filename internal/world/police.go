// Police presence as a smooth noise field over zones and ticks.
// Presence drifts slowly so patrol pressure shifts block by block instead of
// jumping, and is fully determined by the world seed.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// presenceDriftSpan is the amplitude of the noise component around a zone's
// base presence.
const presenceDriftSpan = 0.15

// presencePeriodTicks stretches the noise along the time axis; presence in a
// zone takes roughly this many ticks to swing across its band.
const presencePeriodTicks = 96.0

// PresenceField computes per-zone police presence for a given tick.
type PresenceField struct {
	noise opensimplex.Noise
	base  map[string]float64
	index map[string]int
}

// NewPresenceField builds a field from the zone catalog and a noise seed.
func NewPresenceField(zones []Zone, seed int64) *PresenceField {
	f := &PresenceField{
		noise: opensimplex.NewNormalized(seed),
		base:  make(map[string]float64, len(zones)),
		index: make(map[string]int, len(zones)),
	}
	for i, z := range zones {
		f.base[z.ID] = z.BasePolice
		f.index[z.ID] = i
	}
	return f
}

// At returns police presence in [0, 1] for a zone at a tick. Unknown zones
// read as moderate presence.
func (f *PresenceField) At(zoneID string, tick uint64) float64 {
	base, ok := f.base[zoneID]
	if !ok {
		return 0.5
	}

	// Each zone samples its own line through noise space.
	x := float64(f.index[zoneID]) * 7.31
	y := float64(tick) / presencePeriodTicks
	n := f.noise.Eval2(x, y) // normalized 0..1

	p := base + (n-0.5)*2*presenceDriftSpan
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Label buckets a presence value for human-readable zone summaries.
func (f *PresenceField) Label(p, medBand, highBand float64) string {
	switch {
	case p >= highBand:
		return "heavy"
	case p >= medBand:
		return "moderate"
	default:
		return "light"
	}
}
