package economy

// VehicleSpec is catalog reference data for a stealable vehicle model.
type VehicleSpec struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	SpeedFactor float64 `json:"speedFactor"` // travel time multiplier, < 1 is faster
	StealDiff   float64 `json:"stealDifficulty"` // subtracted from theft chance
	Value       int64   `json:"value"`
}

// Vehicle is a stolen instance in an agent's possession.
type Vehicle struct {
	ID           string `json:"id"`
	SpecID       string `json:"specId"`
	OwnerAgentID string `json:"ownerAgentId"`
	StolenAtTick uint64 `json:"stolenAtTick"`
}
