package economy

// Stock is one shelf slot in a business: how many units are held and the
// current asking price per unit.
type Stock struct {
	Qty   int   `json:"qty"`
	Price int64 `json:"price"`
}

// BusinessMetrics are rolling counters kept for the summary refresh.
type BusinessMetrics struct {
	Sales     int   `json:"sales"`     // units sold to agents
	Purchases int   `json:"purchases"` // units bought from agents
	Revenue   int64 `json:"revenue"`
}

// Business trades items with co-located agents. City-run businesses have a
// nil owner; agent-owned ones bank profit in CashOnHand until the periodic
// sweep pays the owner.
type Business struct {
	ID            string           `json:"id"`
	ZoneID        string           `json:"zoneId"`
	Name          string           `json:"name"`
	OwnerAgentID  *string          `json:"ownerAgentId,omitempty"`
	CashOnHand    int64            `json:"cashOnHand"`
	Inventory     map[string]Stock `json:"inventory"`
	Metrics       BusinessMetrics  `json:"metrics"`
	CreatedAtTick uint64           `json:"createdAtTick"`
}

// StockOf returns the shelf slot for an item, zero-valued when absent.
func (b *Business) StockOf(itemID string) Stock {
	return b.Inventory[itemID]
}

// AdjustStock changes the held quantity, keeping the price. Entries at zero
// quantity are kept so the price survives restocking.
func (b *Business) AdjustStock(itemID string, delta int, price int64) {
	if b.Inventory == nil {
		b.Inventory = make(map[string]Stock)
	}
	s := b.Inventory[itemID]
	s.Qty += delta
	if s.Qty < 0 {
		s.Qty = 0
	}
	if price > 0 {
		s.Price = price
	}
	b.Inventory[itemID] = s
}
