package world

// ZoneType categorizes a zone for action gating (healing needs a hospital
// zone, gambling needs a market/casino zone, and so on).
type ZoneType string

const (
	ZoneResidential ZoneType = "residential"
	ZoneMarket      ZoneType = "market"
	ZoneDowntown    ZoneType = "downtown"
	ZoneIndustrial  ZoneType = "industrial"
	ZoneDocks       ZoneType = "docks"
	ZoneCasino      ZoneType = "casino"
	ZoneHospital    ZoneType = "hospital"
	ZoneSuburbs     ZoneType = "suburbs"
	ZoneOldTown     ZoneType = "oldtown"
	ZoneWarehouse   ZoneType = "warehouse"
)

// Zone is static reference data after seeding.
type Zone struct {
	ID          string   `json:"id"` // slug
	Name        string   `json:"name"`
	Type        ZoneType `json:"type"`
	Description string   `json:"description"`
	BasePolice  float64  `json:"basePolice"` // resting police presence, 0..1
	Income      int64    `json:"income"`     // per-tick territory income when gang-held
	X           int      `json:"x"`
	Y           int      `json:"y"`
}

// ZoneEdge is a directed travel link between two zones.
type ZoneEdge struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	TimeCostTicks uint64  `json:"timeCostTicks"`
	CashCost      int64   `json:"cashCost"`
	HeatRisk      float64 `json:"heatRisk"` // chance of picking up heat in transit, 0..1
}
