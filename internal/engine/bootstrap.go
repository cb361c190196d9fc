package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/config"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/entropy"
	"github.com/clawcity/clawcity/internal/store"
	"github.com/clawcity/clawcity/internal/world"
)

// Bootstrap initializes the world on first boot: the singleton row, the
// seeded businesses, properties, and contract board, and the resident NPC
// population. A restarted server finds the row present and changes nothing,
// so a world's economy survives deploys.
func (e *Engine) Bootstrap(cfg config.Config) error {
	return e.Store.Update(func(tx *store.Tx) error {
		w := &world.World{
			Tick:   0,
			TickMs: cfg.TickMs,
			Status: world.StatusRunning,
			Seed:   cfg.Seed,
			Config: world.Config{
				StartingCashMin: e.Rules.StartingCashMin,
				StartingCashMax: e.Rules.StartingCashMax,
				StartingZone:    e.Rules.StartingZone,
				HeatDecayIdle:   e.Rules.HeatDecayIdle,
				HeatDecayBusy:   e.Rules.HeatDecayBusy,
				ArrestThreshold: e.Rules.ArrestThreshold,
				MaxHeat:         e.Rules.MaxHeat,
			},
		}
		created, err := tx.InitWorld(w)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}

		for _, b := range e.Catalog.BusinessSeeds {
			b := b
			if err := tx.SaveBusiness(&b); err != nil {
				return err
			}
		}
		for _, p := range e.Catalog.PropertySeeds {
			p := p
			if err := tx.SaveProperty(&p); err != nil {
				return err
			}
		}
		if err := e.restockContracts(tx, w); err != nil {
			return err
		}

		for i := 0; i < cfg.NPCCount; i++ {
			if err := e.spawnNPC(tx, i); err != nil {
				return err
			}
		}

		slog.Info("world bootstrapped",
			"seed", cfg.Seed,
			"zones", len(e.Catalog.Zones),
			"businesses", len(e.Catalog.BusinessSeeds),
			"npcs", cfg.NPCCount)
		return nil
	})
}

// spawnNPC creates one resident. NPCs have no key hash: they cannot be
// driven over the API, only by the policy step.
func (e *Engine) spawnNPC(tx *store.Tx, i int) error {
	names := e.Catalog.NPCNames
	name := fmt.Sprintf("Resident %d", i+1)
	if len(names) > 0 {
		name = names[i%len(names)]
		if i >= len(names) {
			name = fmt.Sprintf("%s %d", name, i/len(names)+1)
		}
	}
	zone := e.Catalog.Zones[e.Rand.Pick("npc_spawn", len(e.Catalog.Zones))]

	a := &agents.Agent{
		ID:        store.NewID(),
		Name:      name,
		CreatedAt: tx.Now(),
		ZoneID:    zone.ID,
		Health:    100,
		Stamina:   100,
		Status:    agents.StatusIdle,
		Inventory: map[string]int{},
		Skills: agents.Skills{
			Driving:     int(e.Rand.IntRange("npc_skill", 0, 30)),
			Negotiation: int(e.Rand.IntRange("npc_skill", 0, 30)),
			Stealth:     int(e.Rand.IntRange("npc_skill", 0, 30)),
			Combat:      int(e.Rand.IntRange("npc_skill", 0, 30)),
		},
		IsNPC: true,
	}
	if err := tx.SaveAgent(a); err != nil {
		return err
	}

	ev, err := tx.Emit(world.EvAgentRegistered, store.EventRefs{
		AgentID: a.ID, ZoneID: a.ZoneID,
	}, map[string]any{"name": a.Name, "npc": true}, nil)
	if err != nil {
		return err
	}
	cash := e.Rand.IntRange("starting_cash", e.Rules.StartingCashMin, e.Rules.StartingCashMax)
	_, err = tx.Post(a, economy.Credit, cash, "starting cash", &ev.ID)
	return err
}

// Registration is what a successful register returns. The key is shown
// exactly once; only its hash is stored.
type Registration struct {
	Agent  *agents.Agent
	APIKey string
}

// Register creates a player agent. Cash arrives through the ledger so the
// journal replays to the balance from the first entry.
func (e *Engine) Register(name, llmInfo string) (*Registration, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	key, err := entropy.NewAPIKey()
	if err != nil {
		return nil, err
	}

	a := &agents.Agent{
		ID:        store.NewID(),
		KeyHash:   HashKey(key),
		Name:      name,
		LLMInfo:   llmInfo,
		ZoneID:    e.Rules.StartingZone,
		Health:    100,
		Stamina:   100,
		Status:    agents.StatusIdle,
		Inventory: map[string]int{},
	}
	err = e.Store.Update(func(tx *store.Tx) error {
		a.CreatedAt = tx.Now()
		if err := tx.SaveAgent(a); err != nil {
			return err
		}
		ev, err := tx.Emit(world.EvAgentRegistered, store.EventRefs{
			AgentID: a.ID, ZoneID: a.ZoneID,
		}, map[string]any{"name": a.Name}, nil)
		if err != nil {
			return err
		}
		cash := e.Rand.IntRange("starting_cash", e.Rules.StartingCashMin, e.Rules.StartingCashMax)
		_, err = tx.Post(a, economy.Credit, cash, "starting cash", &ev.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("agent registered", "agent", a.ID, "name", a.Name, "zone", a.ZoneID)
	return &Registration{Agent: a, APIKey: key}, nil
}

// HashKey maps a bearer key to its stored form.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
