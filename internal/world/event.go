package world

// Event is one append-only log record. Events are never updated after
// insert; (Tick, TS, Seq) gives them a total order.
type Event struct {
	Seq       int64          `json:"seq"`
	ID        string         `json:"id"`
	Tick      uint64         `json:"tick"`
	TS        int64          `json:"ts"` // unix ms
	Type      string         `json:"type"`
	AgentID   *string        `json:"agentId,omitempty"`
	ZoneID    *string        `json:"zoneId,omitempty"`
	EntityID  *string        `json:"entityId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	RequestID *string        `json:"requestId,omitempty"`
}

// Event types. Closed set; new types are additions, never renames.
const (
	EvAgentRegistered = "AGENT_REGISTERED"
	EvMoveStarted     = "MOVE_STARTED"
	EvMoveCompleted   = "MOVE_COMPLETED"
	EvJobTaken        = "JOB_TAKEN"
	EvJobCompleted    = "JOB_COMPLETED"
	EvBuy             = "BUY"
	EvSell            = "SELL"
	EvHealStarted     = "HEAL_STARTED"
	EvHealCompleted   = "HEAL_COMPLETED"
	EvRestStarted     = "REST_STARTED"
	EvRestCompleted   = "REST_COMPLETED"
	EvItemUsed        = "ITEM_USED"

	EvCrimeSuccess     = "CRIME_SUCCESS"
	EvCrimeFailed      = "CRIME_FAILED"
	EvAgentRobbed      = "AGENT_ROBBED"
	EvRobAttemptFailed = "ROB_ATTEMPT_FAILED"
	EvAgentAttacked    = "AGENT_ATTACKED"
	EvAgentKilled      = "AGENT_KILLED"
	EvVehicleStolen    = "VEHICLE_STOLEN"
	EvVehicleTheftFail = "VEHICLE_THEFT_FAILED"
	EvGambleWon        = "GAMBLE_WON"
	EvGambleLost       = "GAMBLE_LOST"
	EvDisguiseBought   = "DISGUISE_PURCHASED"
	EvDisguiseExpired  = "DISGUISE_EXPIRED"
	EvContractAccepted = "CONTRACT_ACCEPTED"
	EvContractDone     = "CONTRACT_COMPLETED"

	EvCoopStarted   = "COOP_CRIME_STARTED"
	EvCoopJoined    = "COOP_JOINED"
	EvCoopReady     = "COOP_READY"
	EvCoopSuccess   = "COOP_CRIME_SUCCESS"
	EvCoopFailed    = "COOP_CRIME_FAILED"
	EvCoopCancelled = "COOP_CANCELLED"

	EvBountyPlaced  = "BOUNTY_PLACED"
	EvBountyClaimed = "BOUNTY_CLAIMED"
	EvBountyExpired = "BOUNTY_EXPIRED"

	EvAgentArrested    = "AGENT_ARRESTED"
	EvAgentReleased    = "AGENT_RELEASED"
	EvAgentDischarged  = "AGENT_DISCHARGED"
	EvAgentHospitalized = "AGENT_HOSPITALIZED"
	EvJailbreakSuccess = "JAILBREAK_SUCCESS"
	EvJailbreakFailed  = "JAILBREAK_FAILED"
	EvBribeAccepted    = "BRIBE_ACCEPTED"
	EvBribeRejected    = "BRIBE_REJECTED"
	EvTaxCollected     = "TAX_COLLECTED"

	EvMessageSent     = "MESSAGE_SENT"
	EvFriendRequested = "FRIEND_REQUEST_SENT"
	EvFriendAccepted  = "FRIEND_REQUEST_ACCEPTED"
	EvFriendDeclined  = "FRIEND_REQUEST_DECLINED"
	EvFriendshipFaded = "FRIENDSHIP_FADED"
	EvCashGifted      = "CASH_GIFTED"
	EvItemGifted      = "ITEM_GIFTED"

	EvGangCreated      = "GANG_CREATED"
	EvGangInviteSent   = "GANG_INVITE_SENT"
	EvGangInviteAnswer = "GANG_INVITE_ANSWERED"
	EvGangLeft         = "GANG_LEFT"
	EvGangContribution = "GANG_CONTRIBUTION"
	EvGangBetrayed     = "GANG_BETRAYED"
	EvTerritoryClaimed = "TERRITORY_CLAIMED"
	EvTerritoryIncome  = "TERRITORY_INCOME"
	EvTerritoryLost    = "TERRITORY_LOST"

	EvPropertyBought = "PROPERTY_PURCHASED"
	EvPropertyRented = "PROPERTY_RENTED"
	EvPropertySold   = "PROPERTY_SOLD"
	EvRentPaid       = "RENT_PAID"
	EvEvicted        = "EVICTED"

	EvBusinessStarted = "BUSINESS_STARTED"
	EvPricesSet       = "PRICES_SET"
	EvBusinessStocked = "BUSINESS_STOCKED"
	EvBusinessIncome  = "BUSINESS_INCOME"

	EvNPCActionFailed = "NPC_ACTION_FAILED"
	EvTickCompleted   = "TICK_COMPLETED"
	EvTickFailed      = "TICK_FAILED"
	EvTakedown        = "GOVERNMENT_TAKEDOWN"
)
