// Package world holds the world singleton, the zone graph, and the event
// model. The tick pipeline is the only writer of World.Tick.
package world

// Status is the run state of the world clock.
type Status string

const (
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
)

// World is the singleton row driving the simulation. Exactly one exists
// after initialization.
type World struct {
	Tick          uint64 `json:"tick"`
	TickMs        int    `json:"tickMs"`
	Status        Status `json:"status"`
	Seed          string `json:"seed"`
	LastTickAt    int64  `json:"lastTickAt"` // unix ms
	SummaryCursor string `json:"summaryCursor"`
	Config        Config `json:"config"`
}

// Config is the slice of tuning frozen into the world row at first boot.
// A restarted server inherits these instead of its own environment, so a
// world keeps its economy across deploys.
type Config struct {
	StartingCashMin int64   `json:"startingCashMin"`
	StartingCashMax int64   `json:"startingCashMax"`
	StartingZone    string  `json:"startingZone"`
	HeatDecayIdle   float64 `json:"heatDecayIdle"`
	HeatDecayBusy   float64 `json:"heatDecayBusy"`
	ArrestThreshold float64 `json:"arrestThreshold"`
	MaxHeat         float64 `json:"maxHeat"`
}

// Running reports whether the clock should fire pipelines.
func (w *World) Running() bool {
	return w.Status == StatusRunning
}
