package actions

import (
	"bytes"
	"encoding/json"

	"github.com/clawcity/clawcity/internal/crime"
)

// Per-verb argument schemas. Decoding is strict: unknown fields fail with
// BAD_ARGS so typos surface instead of silently dropping.

type moveArgs struct {
	ToZone string `json:"toZone"`
}

type takeJobArgs struct {
	JobID string `json:"jobId"`
}

type tradeArgs struct {
	BusinessID string `json:"businessId"`
	ItemID     string `json:"itemId"`
	Qty        int    `json:"qty"`
}

type useItemArgs struct {
	ItemID string `json:"itemId"`
}

type commitCrimeArgs struct {
	CrimeType string `json:"crimeType"`
}

type targetArgs struct {
	TargetAgentID string `json:"targetAgentId"`
}

type stealVehicleArgs struct {
	VehicleType string `json:"vehicleType,omitempty"` // empty = random model
}

type gambleArgs struct {
	Bet  int64          `json:"bet"`
	Risk crime.RiskTier `json:"risk"`
}

type buyDisguiseArgs struct {
	Quality crime.DisguiseQuality `json:"quality"`
}

type initiateCoopArgs struct {
	CrimeType       string `json:"crimeType"`
	MinParticipants int    `json:"minParticipants"`
	MaxParticipants int    `json:"maxParticipants"`
	RecruitTicks    uint64 `json:"recruitTicks,omitempty"` // 0 = config default
}

type joinCoopArgs struct {
	CoopID string `json:"coopId"`
}

type placeBountyArgs struct {
	TargetAgentID string `json:"targetAgentId"`
	Amount        int64  `json:"amount"`
}

type claimBountyArgs struct {
	BountyID string `json:"bountyId"`
}

type acceptContractArgs struct {
	ContractID string `json:"contractId"`
}

type bribeArgs struct {
	Amount int64 `json:"amount,omitempty"` // 0 = the going rate
}

type sendMessageArgs struct {
	ToAgentID string `json:"toAgentId"`
	Body      string `json:"body"`
}

type friendRequestArgs struct {
	ToAgentID string `json:"toAgentId"`
}

type respondFriendArgs struct {
	FromAgentID string `json:"fromAgentId"`
	Accept      bool   `json:"accept"`
	Block       bool   `json:"block,omitempty"`
}

type giftCashArgs struct {
	ToAgentID string `json:"toAgentId"`
	Amount    int64  `json:"amount"`
}

type giftItemArgs struct {
	ToAgentID string `json:"toAgentId"`
	ItemID    string `json:"itemId"`
	Qty       int    `json:"qty"`
}

type createGangArgs struct {
	Name string `json:"name"`
}

type inviteGangArgs struct {
	AgentID string `json:"agentId"`
}

type respondGangInviteArgs struct {
	InviteID string `json:"inviteId"`
	Accept   bool   `json:"accept"`
}

type contributeArgs struct {
	Amount int64 `json:"amount"`
}

type claimTerritoryArgs struct {
	ZoneID string `json:"zoneId,omitempty"` // empty = current zone
}

type propertyArgs struct {
	PropertyID string `json:"propertyId"`
}

type startBusinessArgs struct {
	Name   string `json:"name"`
	ZoneID string `json:"zoneId,omitempty"` // empty = current zone
}

type setPricesArgs struct {
	BusinessID string           `json:"businessId"`
	Prices     map[string]int64 `json:"prices"` // itemId -> price
}

type stockBusinessArgs struct {
	BusinessID string `json:"businessId"`
	ItemID     string `json:"itemId"`
	Qty        int    `json:"qty"`
}

// decodeArgs parses raw JSON into the verb's schema.
func decodeArgs[T any](raw json.RawMessage) (T, *Error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, badArgs("invalid args: %v", err)
	}
	return v, nil
}
