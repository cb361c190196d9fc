package economy

// ContractStatus is the lifecycle of an offered job contract.
type ContractStatus string

const (
	ContractOpen      ContractStatus = "open"
	ContractAccepted  ContractStatus = "accepted"
	ContractCompleted ContractStatus = "completed"
	ContractExpired   ContractStatus = "expired"
)

// Contract is one-off offered work, richer than a catalog job: bigger
// reward, a skill gate, and possibly heat on completion.
type Contract struct {
	ID            string         `json:"id"`
	ZoneID        string         `json:"zoneId"`
	Name          string         `json:"name"`
	Reward        int64          `json:"reward"`
	DurationTicks uint64         `json:"durationTicks"`
	Skill         string         `json:"skill,omitempty"`
	MinSkill      int            `json:"minSkill,omitempty"`
	Heat          float64        `json:"heat,omitempty"` // applied on completion
	Status        ContractStatus `json:"status"`
	AcceptedBy    *string        `json:"acceptedBy,omitempty"`
	ExpiresAt     uint64         `json:"expiresAtTick"`
}
