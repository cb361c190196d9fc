package actions

// Verb is the closed set of action types clients may submit.
type Verb string

const (
	Move    Verb = "MOVE"
	TakeJob Verb = "TAKE_JOB"
	Buy     Verb = "BUY"
	Sell    Verb = "SELL"
	Heal    Verb = "HEAL"
	Rest    Verb = "REST"
	UseItem Verb = "USE_ITEM"

	CommitCrime  Verb = "COMMIT_CRIME"
	RobAgent     Verb = "ROB_AGENT"
	AttackAgent  Verb = "ATTACK_AGENT"
	StealVehicle Verb = "STEAL_VEHICLE"
	Gamble       Verb = "GAMBLE"
	BuyDisguise  Verb = "BUY_DISGUISE"

	InitiateCoopCrime Verb = "INITIATE_COOP_CRIME"
	JoinCoopAction    Verb = "JOIN_COOP_ACTION"

	PlaceBounty Verb = "PLACE_BOUNTY"
	ClaimBounty Verb = "CLAIM_BOUNTY"

	AcceptContract Verb = "ACCEPT_CONTRACT"

	AttemptJailbreak Verb = "ATTEMPT_JAILBREAK"
	BribeCops        Verb = "BRIBE_COPS"

	SendMessage          Verb = "SEND_MESSAGE"
	SendFriendRequest    Verb = "SEND_FRIEND_REQUEST"
	RespondFriendRequest Verb = "RESPOND_FRIEND_REQUEST"
	GiftCash             Verb = "GIFT_CASH"
	GiftItem             Verb = "GIFT_ITEM"

	CreateGang        Verb = "CREATE_GANG"
	InviteToGang      Verb = "INVITE_TO_GANG"
	RespondGangInvite Verb = "RESPOND_GANG_INVITE"
	LeaveGang         Verb = "LEAVE_GANG"
	ContributeToGang  Verb = "CONTRIBUTE_TO_GANG"
	ClaimTerritory    Verb = "CLAIM_TERRITORY"
	BetrayGang        Verb = "BETRAY_GANG"

	BuyProperty  Verb = "BUY_PROPERTY"
	RentProperty Verb = "RENT_PROPERTY"
	SellProperty Verb = "SELL_PROPERTY"

	StartBusiness Verb = "START_BUSINESS"
	SetPrices     Verb = "SET_PRICES"
	StockBusiness Verb = "STOCK_BUSINESS"
)

var allVerbs = map[Verb]bool{
	Move: true, TakeJob: true, Buy: true, Sell: true, Heal: true, Rest: true, UseItem: true,
	CommitCrime: true, RobAgent: true, AttackAgent: true, StealVehicle: true,
	Gamble: true, BuyDisguise: true,
	InitiateCoopCrime: true, JoinCoopAction: true,
	PlaceBounty: true, ClaimBounty: true,
	AcceptContract: true,
	AttemptJailbreak: true, BribeCops: true,
	SendMessage: true, SendFriendRequest: true, RespondFriendRequest: true,
	GiftCash: true, GiftItem: true,
	CreateGang: true, InviteToGang: true, RespondGangInvite: true, LeaveGang: true,
	ContributeToGang: true, ClaimTerritory: true, BetrayGang: true,
	BuyProperty: true, RentProperty: true, SellProperty: true,
	StartBusiness: true, SetPrices: true, StockBusiness: true,
}

// Known reports whether a verb is in the closed set.
func Known(v Verb) bool { return allVerbs[v] }

// jailAllowed lists the only verbs a jailed agent may submit.
func jailAllowed(v Verb) bool {
	return v == AttemptJailbreak || v == BribeCops
}
