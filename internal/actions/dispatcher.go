package actions

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/catalog"
	"github.com/clawcity/clawcity/internal/config"
	"github.com/clawcity/clawcity/internal/entropy"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// Metrics is the hook the dispatcher reports outcomes through. Nil-safe.
type Metrics interface {
	ObserveAction(verb string, outcome string)
}

// Dispatcher routes an authenticated action request to its handler,
// enforces preconditions, applies effects, records the idempotency lock,
// and emits events. One instance serves the HTTP layer and the NPC step.
type Dispatcher struct {
	Store    *store.Store
	Catalog  *catalog.Catalog
	Rules    config.Rules
	Rand     *entropy.Source
	Presence *world.PresenceField
	Metrics  Metrics
}

// Act executes one action for an agent. agentID must already be
// authenticated. The returned Result is safe to serve verbatim, including
// on replay of the same (agentID, requestID).
func (d *Dispatcher) Act(agentID, requestID string, verb Verb, rawArgs json.RawMessage) Result {
	res := d.act(agentID, requestID, verb, rawArgs)
	if d.Metrics != nil {
		outcome := "ok"
		if !res.OK {
			outcome = string(res.Error)
		}
		d.Metrics.ObserveAction(string(verb), outcome)
	}
	return res
}

func (d *Dispatcher) act(agentID, requestID string, verb Verb, rawArgs json.RawMessage) Result {
	if requestID == "" {
		return d.failNow(CodeMissingRequestID, "requestId is required")
	}
	if !Known(verb) {
		return d.failNow(CodeUnknownAction, fmt.Sprintf("unknown action %q", verb))
	}

	// Reservation transaction: replay, reject in-flight, or acquire.
	var (
		state  store.LockState
		replay []byte
	)
	err := d.Store.Update(func(tx *store.Tx) error {
		var err error
		state, replay, err = tx.ReserveLock(agentID, requestID, d.Rules.LockTTL)
		return err
	})
	if err != nil {
		slog.Error("action lock reservation failed", "agent", agentID, "request", requestID, "error", err)
		return d.failNow(CodeInternal, "internal error")
	}
	switch state {
	case store.LockReplayed:
		var res Result
		if err := json.Unmarshal(replay, &res); err != nil {
			slog.Error("stored action result is corrupt", "agent", agentID, "request", requestID, "error", err)
			return d.failNow(CodeInternal, "internal error")
		}
		return res
	case store.LockInFlight:
		return d.failNow(CodeDuplicateInProgress, "request is already in progress")
	}

	// Execution transaction: gate, handle, finalize, all or nothing.
	var res Result
	err = d.Store.Update(func(tx *store.Tx) error {
		w, err := tx.World()
		if err != nil {
			return err
		}

		out, actErr := d.dispatch(tx, w, agentID, requestID, verb, rawArgs)

		res = Result{Tick: w.Tick}
		if actErr == nil {
			res.OK = true
			res.Message = out.Message
			res.Data = out.Data
		} else {
			var aerr *Error
			if !errors.As(actErr, &aerr) {
				// Transient fault: roll back everything including the
				// reservation so the client may retry this requestId.
				return actErr
			}
			// Deterministic failure: the transaction's entity mutations roll
			// back via the error path of handlers (handlers fail before
			// writing), and the failing result is finalized for replay.
			res.OK = false
			res.Error = aerr.Code
			res.Message = aerr.Message
		}

		body, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return tx.FinalizeLock(agentID, requestID, body)
	})
	if err != nil {
		// The execution transaction rolled back; drop the reservation so a
		// retry is possible, then surface INTERNAL_ERROR.
		slog.Error("action failed", "agent", agentID, "request", requestID, "verb", verb, "error", err)
		if relErr := d.Store.Update(func(tx *store.Tx) error {
			return tx.ReleaseLock(agentID, requestID)
		}); relErr != nil {
			slog.Error("releasing action lock failed", "agent", agentID, "request", requestID, "error", relErr)
		}
		return d.failNow(CodeInternal, "internal error")
	}
	return res
}

// dispatch applies the agent state gate and routes to the verb handler.
//
// A handler returning a deterministic *Error must not have mutated entity
// state beforehand: every handler validates all preconditions before its
// first write. The one sanctioned exception is stochastic failure (crime
// gone wrong), which is a success-path outcome, not an error.
func (d *Dispatcher) dispatch(tx *store.Tx, w *world.World, agentID, requestID string, verb Verb, raw json.RawMessage) (*outcome, error) {
	a, err := tx.Agent(agentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, Errf(CodeAgentNotFound, "agent %s not found", agentID)
		}
		return nil, err
	}
	if a.Banned() {
		return nil, Errf(CodeAgentBanned, "agent is banned")
	}
	switch a.Status {
	case agents.StatusJailed:
		if !jailAllowed(verb) {
			return nil, Errf(CodeInvalidStatus, "agent is jailed; only ATTEMPT_JAILBREAK or BRIBE_COPS allowed")
		}
	case agents.StatusBusy:
		return nil, Errf(CodeAgentBusy, "agent is busy until tick %d", deref(a.BusyUntil))
	case agents.StatusHospitalized:
		return nil, Errf(CodeInvalidStatus, "agent is hospitalized until tick %d", deref(a.ReleaseTick))
	}

	ctx := &actionCtx{tx: tx, world: w, agent: a, requestID: requestID}
	out, err := d.route(ctx, verb, raw)
	if err != nil {
		return nil, err
	}

	a.LastActionTick = w.Tick
	if err := tx.SaveAgent(a); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Dispatcher) route(c *actionCtx, verb Verb, raw json.RawMessage) (*outcome, error) {
	switch verb {
	case Move:
		return handle(c, raw, d.doMove)
	case TakeJob:
		return handle(c, raw, d.doTakeJob)
	case Buy:
		return handle(c, raw, d.doBuy)
	case Sell:
		return handle(c, raw, d.doSell)
	case Heal:
		return handle(c, raw, d.doHeal)
	case Rest:
		return handle(c, raw, d.doRest)
	case UseItem:
		return handle(c, raw, d.doUseItem)
	case CommitCrime:
		return handle(c, raw, d.doCommitCrime)
	case RobAgent:
		return handle(c, raw, d.doRobAgent)
	case AttackAgent:
		return handle(c, raw, d.doAttackAgent)
	case StealVehicle:
		return handle(c, raw, d.doStealVehicle)
	case Gamble:
		return handle(c, raw, d.doGamble)
	case BuyDisguise:
		return handle(c, raw, d.doBuyDisguise)
	case InitiateCoopCrime:
		return handle(c, raw, d.doInitiateCoop)
	case JoinCoopAction:
		return handle(c, raw, d.doJoinCoop)
	case PlaceBounty:
		return handle(c, raw, d.doPlaceBounty)
	case ClaimBounty:
		return handle(c, raw, d.doClaimBounty)
	case AcceptContract:
		return handle(c, raw, d.doAcceptContract)
	case AttemptJailbreak:
		return handle(c, raw, d.doJailbreak)
	case BribeCops:
		return handle(c, raw, d.doBribeCops)
	case SendMessage:
		return handle(c, raw, d.doSendMessage)
	case SendFriendRequest:
		return handle(c, raw, d.doSendFriendRequest)
	case RespondFriendRequest:
		return handle(c, raw, d.doRespondFriendRequest)
	case GiftCash:
		return handle(c, raw, d.doGiftCash)
	case GiftItem:
		return handle(c, raw, d.doGiftItem)
	case CreateGang:
		return handle(c, raw, d.doCreateGang)
	case InviteToGang:
		return handle(c, raw, d.doInviteToGang)
	case RespondGangInvite:
		return handle(c, raw, d.doRespondGangInvite)
	case LeaveGang:
		return handle(c, raw, d.doLeaveGang)
	case ContributeToGang:
		return handle(c, raw, d.doContribute)
	case ClaimTerritory:
		return handle(c, raw, d.doClaimTerritory)
	case BetrayGang:
		return handle(c, raw, d.doBetrayGang)
	case BuyProperty:
		return handle(c, raw, d.doBuyProperty)
	case RentProperty:
		return handle(c, raw, d.doRentProperty)
	case SellProperty:
		return handle(c, raw, d.doSellProperty)
	case StartBusiness:
		return handle(c, raw, d.doStartBusiness)
	case SetPrices:
		return handle(c, raw, d.doSetPrices)
	case StockBusiness:
		return handle(c, raw, d.doStockBusiness)
	}
	return nil, Errf(CodeUnknownAction, "unknown action %q", verb)
}

// actionCtx bundles what every handler needs.
type actionCtx struct {
	tx        *store.Tx
	world     *world.World
	agent     *agents.Agent
	requestID string
}

func (c *actionCtx) tick() uint64 { return c.world.Tick }

func (c *actionCtx) reqID() *string {
	if c.requestID == "" {
		return nil
	}
	id := c.requestID
	return &id
}

// handle decodes args and invokes a typed handler.
func handle[T any](c *actionCtx, raw json.RawMessage, fn func(*actionCtx, T) (*outcome, error)) (*outcome, error) {
	args, aerr := decodeArgs[T](raw)
	if aerr != nil {
		return nil, aerr
	}
	return fn(c, args)
}

// failNow builds a failure Result stamped with the current tick, read
// outside any action transaction.
func (d *Dispatcher) failNow(code Code, msg string) Result {
	var tick uint64
	_ = d.Store.View(func(tx *store.Tx) error {
		if w, err := tx.World(); err == nil {
			tick = w.Tick
		}
		return nil
	})
	return Result{OK: false, Tick: tick, Error: code, Message: msg}
}

func deref(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p
}

// presenceAt reads the police presence field for a zone at the current tick.
func (d *Dispatcher) presenceAt(zoneID string, tick uint64) float64 {
	if d.Presence == nil {
		return 0.5
	}
	return d.Presence.At(zoneID, tick)
}
