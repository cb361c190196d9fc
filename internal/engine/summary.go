package engine

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// Summary scopes. "city" is the published aggregate the API serves;
// "city:building" is the in-progress pass that replaces it on rotation.
const (
	ScopeCity         = "city"
	scopeCityBuilding = "city:building"
)

// ZoneSummary is the per-zone slice of the city aggregate.
type ZoneSummary struct {
	Name   string `json:"name"`
	Agents int    `json:"agents"`
	NPCs   int    `json:"npcs"`
	Jailed int    `json:"jailed"`
	Police string `json:"police"`
}

// GangSummary is the per-gang slice of the city aggregate.
type GangSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Members     int    `json:"members"`
	Treasury    int64  `json:"treasury"`
	Territories int    `json:"territories"`
}

// CitySummary is the denormalized aggregate refreshed incrementally by the
// tick pipeline and served by the world endpoint.
type CitySummary struct {
	Tick         uint64                  `json:"tick"`
	Agents       int                     `json:"agents"`
	NPCs         int                     `json:"npcs"`
	Jailed       int                     `json:"jailed"`
	Hospitalized int                     `json:"hospitalized"`
	TotalCash    int64                   `json:"totalCash"`
	AvgHeat      float64                 `json:"avgHeat"`
	Zones        map[string]*ZoneSummary `json:"zones"`
	Gangs        []GangSummary           `json:"gangs"`

	// Accumulators carried between partial passes; zeroed on rotation.
	HeatSum     float64        `json:"heatSum,omitempty"`
	GangMembers map[string]int `json:"gangMembers,omitempty"`
}

// refreshSummaries is phase 13's aggregate pass. Each tick walks at most
// SummaryBudget agents from the world's cursor; the pass that reaches the
// end folds in gangs and presence labels and publishes, so a large city
// never stalls a tick on a full table scan.
func (e *Engine) refreshSummaries(tx *store.Tx, w *world.World) error {
	part := CitySummary{}
	if w.SummaryCursor != "" {
		if _, err := tx.Summary(scopeCityBuilding, &part); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			// Lost the partial; restart the pass.
			w.SummaryCursor = ""
		}
	}
	if w.SummaryCursor == "" {
		part = CitySummary{
			Zones:       make(map[string]*ZoneSummary, len(e.Catalog.Zones)),
			GangMembers: make(map[string]int),
		}
		for _, z := range e.Catalog.Zones {
			part.Zones[z.ID] = &ZoneSummary{Name: z.Name}
		}
	}

	page, err := tx.AgentsPage(w.SummaryCursor, e.Rules.SummaryBudget)
	if err != nil {
		return err
	}
	for _, a := range page {
		if a.Banned() {
			continue
		}
		part.Agents++
		if a.IsNPC {
			part.NPCs++
		}
		part.TotalCash += a.Cash
		part.HeatSum += a.Heat
		zs := part.Zones[a.ZoneID]
		if zs == nil {
			zs = &ZoneSummary{}
			part.Zones[a.ZoneID] = zs
		}
		zs.Agents++
		if a.IsNPC {
			zs.NPCs++
		}
		switch a.Status {
		case agents.StatusJailed:
			part.Jailed++
			zs.Jailed++
		case agents.StatusHospitalized:
			part.Hospitalized++
		}
		if a.GangID != nil {
			part.GangMembers[*a.GangID]++
		}
	}

	if len(page) == e.Rules.SummaryBudget {
		w.SummaryCursor = page[len(page)-1].ID
		return tx.SaveSummary(scopeCityBuilding, w.Tick, &part)
	}

	// Final page: publish and reset the cursor.
	w.SummaryCursor = ""
	part.Tick = w.Tick
	if part.Agents > 0 {
		part.AvgHeat = part.HeatSum / float64(part.Agents)
	}

	gangs, err := tx.AllGangs()
	if err != nil {
		return err
	}
	part.Gangs = part.Gangs[:0]
	for _, g := range gangs {
		held, err := tx.TerritoriesOf(g.ID)
		if err != nil {
			return err
		}
		part.Gangs = append(part.Gangs, GangSummary{
			ID: g.ID, Name: g.Name,
			Members:     part.GangMembers[g.ID],
			Treasury:    g.Treasury,
			Territories: len(held),
		})
	}
	for zoneID, zs := range part.Zones {
		zs.Police = e.Presence.Label(e.Presence.At(zoneID, w.Tick),
			e.Rules.HotZoneMed, e.Rules.HotZoneHigh)
	}

	part.HeatSum = 0
	part.GangMembers = nil
	return tx.SaveSummary(ScopeCity, w.Tick, &part)
}

// maintain runs the bookkeeping chores of phase 13: expired idempotency
// locks are reaped, thin contract boards are restocked, and snapshots are
// written on their cadence.
func (e *Engine) maintain(tx *store.Tx, w *world.World) error {
	reaped, err := tx.ReapExpiredLocks()
	if err != nil {
		return err
	}
	if reaped > 0 {
		slog.Debug("reaped expired action locks", "count", reaped)
	}

	if err := e.restockContracts(tx, w); err != nil {
		return err
	}

	if e.Rules.SnapshotEveryTicks > 0 && w.Tick%e.Rules.SnapshotEveryTicks == 0 {
		if err := e.writeSnapshot(tx, w); err != nil {
			return err
		}
	}
	return nil
}

// restockContracts keeps each seeded zone's board at ContractsPerZone open
// offers. Seed ExpiresAt is a lifetime; instances get a fresh deadline.
func (e *Engine) restockContracts(tx *store.Tx, w *world.World) error {
	byZone := make(map[string][]economy.Contract)
	for _, seed := range e.Catalog.ContractSeeds {
		byZone[seed.ZoneID] = append(byZone[seed.ZoneID], seed)
	}
	for zoneID, seeds := range byZone {
		n, err := tx.CountOpenContracts(zoneID, w.Tick)
		if err != nil {
			return err
		}
		for ; n < e.Rules.ContractsPerZone; n++ {
			ct := seeds[e.Rand.Pick("contract_seed", len(seeds))]
			ct.ID = store.NewID()
			ct.Status = economy.ContractOpen
			ct.ExpiresAt = w.Tick + ct.ExpiresAt
			ct.AcceptedBy = nil
			if err := tx.SaveContract(&ct); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeSnapshot stores a compact recovery point: the world row, the
// population counts, and the latest published city aggregate.
func (e *Engine) writeSnapshot(tx *store.Tx, w *world.World) error {
	total, npcs, err := tx.CountAgents()
	if err != nil {
		return err
	}
	var city CitySummary
	if _, err := tx.Summary(ScopeCity, &city); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	raw, err := json.Marshal(map[string]any{
		"tick":   w.Tick,
		"world":  w,
		"agents": total,
		"npcs":   npcs,
		"city":   city,
	})
	if err != nil {
		return err
	}
	if err := tx.WriteSnapshot(w.Tick, raw); err != nil {
		return err
	}
	return tx.PruneSnapshots(e.Rules.SnapshotKeep)
}
