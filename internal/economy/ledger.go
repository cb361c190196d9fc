// The cash ledger. Every cash mutation appends exactly one entry; the
// running balance is both computed and recorded so tests can replay the
// journal and compare.
package economy

// LedgerKind is the direction of a cash movement.
type LedgerKind string

const (
	Credit LedgerKind = "credit"
	Debit  LedgerKind = "debit"
)

// LedgerEntry is one append-only journal record for an agent.
type LedgerEntry struct {
	Seq        int64      `json:"seq" db:"seq"`
	ID         string     `json:"id" db:"id"`
	Tick       uint64     `json:"tick" db:"tick"`
	AgentID    string     `json:"agentId" db:"agent_id"`
	Kind       LedgerKind `json:"kind" db:"kind"`
	Amount     int64      `json:"amount" db:"amount"` // always > 0
	Reason     string     `json:"reason" db:"reason"`
	Balance    int64      `json:"balance" db:"balance"` // agent cash after this entry
	RefEventID *string    `json:"refEventId,omitempty" db:"ref_event_id"`
}

// Signed returns the entry's contribution to the running balance.
func (e *LedgerEntry) Signed() int64 {
	if e.Kind == Debit {
		return -e.Amount
	}
	return e.Amount
}
