package store

import (
	"fmt"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/economy"
)

// Post is the only path that moves agent cash. It mutates a.Cash, appends
// the journal entry with the resulting balance, and persists the agent, all
// inside the caller's transaction. A debit the agent cannot cover fails
// with ErrInsufficientFunds and changes nothing.
func (tx *Tx) Post(a *agents.Agent, kind economy.LedgerKind, amount int64, reason string, refEventID *string) (*economy.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("ledger: non-positive amount %d for %s", amount, reason)
	}
	switch kind {
	case economy.Credit:
		a.Cash += amount
	case economy.Debit:
		if a.Cash < amount {
			return nil, ErrInsufficientFunds
		}
		a.Cash -= amount
	default:
		return nil, fmt.Errorf("ledger: unknown kind %q", kind)
	}

	w, err := tx.World()
	if err != nil {
		return nil, err
	}
	entry := &economy.LedgerEntry{
		ID:         NewID(),
		Tick:       w.Tick,
		AgentID:    a.ID,
		Kind:       kind,
		Amount:     amount,
		Reason:     reason,
		Balance:    a.Cash,
		RefEventID: refEventID,
	}
	res, err := tx.tx.Exec(
		`INSERT INTO ledger (id, tick, agent_id, kind, amount, reason, balance, ref_event_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, int64(entry.Tick), entry.AgentID, string(entry.Kind),
		entry.Amount, entry.Reason, entry.Balance, nullStr(entry.RefEventID))
	if err != nil {
		return nil, fmt.Errorf("ledger post %s/%s: %w", a.ID, reason, err)
	}
	entry.Seq, _ = res.LastInsertId()

	if err := tx.SaveAgent(a); err != nil {
		return nil, err
	}
	return entry, nil
}

// DebitUpTo debits as much of amount as the agent can cover and returns the
// amount actually taken. Used by fines, which record the shortfall as tax
// owed rather than failing.
func (tx *Tx) DebitUpTo(a *agents.Agent, amount int64, reason string, refEventID *string) (int64, error) {
	if amount <= 0 {
		return 0, nil
	}
	take := amount
	if a.Cash < take {
		take = a.Cash
	}
	if take == 0 {
		return 0, nil
	}
	if _, err := tx.Post(a, economy.Debit, take, reason, refEventID); err != nil {
		return 0, err
	}
	return take, nil
}

// LedgerFor returns an agent's journal in append order.
func (tx *Tx) LedgerFor(agentID string) ([]*economy.LedgerEntry, error) {
	var entries []*economy.LedgerEntry
	err := tx.tx.Select(&entries,
		`SELECT seq, id, tick, agent_id, kind, amount, reason, balance, ref_event_id
		 FROM ledger WHERE agent_id = ? ORDER BY seq`, agentID)
	return entries, err
}

// ReplayBalance recomputes an agent's cash from the journal. Tests compare
// this against the stored scalar.
func (tx *Tx) ReplayBalance(agentID string) (int64, error) {
	entries, err := tx.LedgerFor(agentID)
	if err != nil {
		return 0, err
	}
	var sum int64
	for _, e := range entries {
		sum += e.Signed()
		if e.Balance != sum {
			return 0, fmt.Errorf("ledger %s: entry %d records balance %d, replay says %d",
				agentID, e.Seq, e.Balance, sum)
		}
	}
	return sum, nil
}
