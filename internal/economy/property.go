package economy

// Property is a purchasable or rentable address. Safehouses speed up heat
// decay for their owner-occupant.
type Property struct {
	ID              string  `json:"id"`
	ZoneID          string  `json:"zoneId"`
	Name            string  `json:"name"`
	Price           int64   `json:"price"`
	RentPerPeriod   int64   `json:"rentPerPeriod"`
	RentPeriodTicks uint64  `json:"rentPeriodTicks"`
	OwnerAgentID    *string `json:"ownerAgentId,omitempty"` // nil = city-owned
	Safehouse       bool    `json:"safehouse"`
}

// PropertyResident links a renter to a property. One residency per agent.
type PropertyResident struct {
	AgentID     string `json:"agentId"`
	PropertyID  string `json:"propertyId"`
	RentDueAt   uint64 `json:"rentDueAtTick"`
	MovedInTick uint64 `json:"movedInTick"`
}
