package store

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/world"
)

func openTest(t *testing.T, tick uint64) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Update(func(tx *Tx) error {
		_, err := tx.InitWorld(&world.World{Tick: tick, Status: world.StatusRunning})
		return err
	}))
	return s
}

func seedAgent(t *testing.T, s *Store, id string, cash int64) *agents.Agent {
	t.Helper()
	a := &agents.Agent{
		ID:      id,
		Name:    "agent " + id,
		ZoneID:  "residential",
		Cash:    cash,
		Health:  100,
		Stamina: 100,
		Status:  agents.StatusIdle,
	}
	require.NoError(t, s.Update(func(tx *Tx) error { return tx.SaveAgent(a) }))
	return a
}

func TestInitWorldIsIdempotent(t *testing.T) {
	s := openTest(t, 5)
	require.NoError(t, s.Update(func(tx *Tx) error {
		created, err := tx.InitWorld(&world.World{Tick: 99})
		require.NoError(t, err)
		assert.False(t, created, "second init must not replace the row")
		return nil
	}))
	require.NoError(t, s.View(func(tx *Tx) error {
		w, err := tx.World()
		require.NoError(t, err)
		assert.Equal(t, uint64(5), w.Tick)
		return nil
	}))
}

func TestLedgerPostAndReplay(t *testing.T) {
	s := openTest(t, 7)
	a := seedAgent(t, s, "a1", 0)

	require.NoError(t, s.Update(func(tx *Tx) error {
		if _, err := tx.Post(a, economy.Credit, 500, "starting cash", nil); err != nil {
			return err
		}
		_, err := tx.Post(a, economy.Debit, 200, "travel", nil)
		return err
	}))
	assert.Equal(t, int64(300), a.Cash)

	require.NoError(t, s.View(func(tx *Tx) error {
		entries, err := tx.LedgerFor("a1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, uint64(7), entries[0].Tick)
		assert.Equal(t, int64(500), entries[0].Balance)
		assert.Equal(t, int64(300), entries[1].Balance)

		replayed, err := tx.ReplayBalance("a1")
		require.NoError(t, err)
		assert.Equal(t, a.Cash, replayed)

		stored, err := tx.Agent("a1")
		require.NoError(t, err)
		assert.Equal(t, replayed, stored.Cash, "stored scalar matches the journal")
		return nil
	}))
}

func TestLedgerDebitBeyondBalanceFails(t *testing.T) {
	s := openTest(t, 1)
	a := seedAgent(t, s, "a1", 100)

	err := s.Update(func(tx *Tx) error {
		_, err := tx.Post(a, economy.Debit, 150, "too much", nil)
		return err
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(100), a.Cash, "a failed debit changes nothing")

	require.NoError(t, s.View(func(tx *Tx) error {
		entries, err := tx.LedgerFor("a1")
		require.NoError(t, err)
		assert.Empty(t, entries)
		return nil
	}))
}

func TestLedgerRejectsNonPositiveAmounts(t *testing.T) {
	s := openTest(t, 1)
	a := seedAgent(t, s, "a1", 100)
	err := s.Update(func(tx *Tx) error {
		_, err := tx.Post(a, economy.Credit, 0, "nothing", nil)
		return err
	})
	assert.Error(t, err)
}

func TestDebitUpTo(t *testing.T) {
	s := openTest(t, 1)
	a := seedAgent(t, s, "a1", 100)

	require.NoError(t, s.Update(func(tx *Tx) error {
		taken, err := tx.DebitUpTo(a, 250, "fine", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(100), taken)
		assert.Equal(t, int64(0), a.Cash)

		taken, err = tx.DebitUpTo(a, 50, "fine", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), taken, "broke agents yield nothing and no entry")
		return nil
	}))
}

func TestLockLifecycle(t *testing.T) {
	s := openTest(t, 1)
	ttl := time.Hour

	require.NoError(t, s.Update(func(tx *Tx) error {
		state, _, err := tx.ReserveLock("a1", "req-1", ttl)
		require.NoError(t, err)
		assert.Equal(t, LockAcquired, state)

		// Same pair again while unfinalized and unexpired.
		state, _, err = tx.ReserveLock("a1", "req-1", ttl)
		require.NoError(t, err)
		assert.Equal(t, LockInFlight, state)

		// Another agent's identical request id is independent.
		state, _, err = tx.ReserveLock("a2", "req-1", ttl)
		require.NoError(t, err)
		assert.Equal(t, LockAcquired, state)

		return tx.FinalizeLock("a1", "req-1", []byte(`{"ok":true}`))
	}))

	require.NoError(t, s.Update(func(tx *Tx) error {
		state, body, err := tx.ReserveLock("a1", "req-1", ttl)
		require.NoError(t, err)
		assert.Equal(t, LockReplayed, state)
		assert.Equal(t, []byte(`{"ok":true}`), body)

		// Release frees the pair for a fresh attempt.
		require.NoError(t, tx.ReleaseLock("a1", "req-1"))
		state, _, err = tx.ReserveLock("a1", "req-1", ttl)
		require.NoError(t, err)
		assert.Equal(t, LockAcquired, state)
		return nil
	}))
}

func TestLockExpiredReservationIsReclaimed(t *testing.T) {
	s := openTest(t, 1)
	require.NoError(t, s.Update(func(tx *Tx) error {
		// Zero TTL expires the reservation at insertion time.
		state, _, err := tx.ReserveLock("a1", "req-1", 0)
		require.NoError(t, err)
		assert.Equal(t, LockAcquired, state)

		state, _, err = tx.ReserveLock("a1", "req-1", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, LockAcquired, state, "a dead dispatch's lock is reaped, not stuck")
		return nil
	}))
}

func TestReapExpiredLocks(t *testing.T) {
	s := openTest(t, 1)
	require.NoError(t, s.Update(func(tx *Tx) error {
		if _, _, err := tx.ReserveLock("a1", "old", 0); err != nil {
			return err
		}
		_, _, err := tx.ReserveLock("a1", "fresh", time.Hour)
		return err
	}))
	require.NoError(t, s.Update(func(tx *Tx) error {
		n, err := tx.ReapExpiredLocks()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		state, _, err := tx.ReserveLock("a1", "fresh", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, LockInFlight, state, "live reservations survive the sweep")
		return nil
	}))
}

func TestEventsForAgent(t *testing.T) {
	s := openTest(t, 3)
	require.NoError(t, s.Update(func(tx *Tx) error {
		for _, typ := range []string{world.EvMoveStarted, world.EvMoveCompleted, world.EvJobTaken} {
			if _, err := tx.Emit(typ, EventRefs{AgentID: "a1", ZoneID: "market"}, nil, nil); err != nil {
				return err
			}
		}
		_, err := tx.Emit(world.EvMoveStarted, EventRefs{AgentID: "a2"}, nil, nil)
		return err
	}))

	require.NoError(t, s.View(func(tx *Tx) error {
		evs, err := tx.EventsForAgent("a1", 0, 50)
		require.NoError(t, err)
		require.Len(t, evs, 3)
		// Newest first.
		assert.Equal(t, world.EvJobTaken, evs[0].Type)
		assert.Equal(t, world.EvMoveStarted, evs[2].Type)

		evs, err = tx.EventsForAgent("a1", 4, 50)
		require.NoError(t, err)
		assert.Empty(t, evs, "sinceTick windows out older events")

		evs, err = tx.EventsForAgent("a1", 0, 2)
		require.NoError(t, err)
		assert.Len(t, evs, 2)
		return nil
	}))
}

func TestEventsByTypeAscending(t *testing.T) {
	s := openTest(t, 1)
	require.NoError(t, s.Update(func(tx *Tx) error {
		for i := 0; i < 3; i++ {
			if _, err := tx.Emit(world.EvTickCompleted, EventRefs{}, map[string]any{"n": i}, nil); err != nil {
				return err
			}
		}
		return nil
	}))
	require.NoError(t, s.View(func(tx *Tx) error {
		evs, err := tx.EventsByType(world.EvTickCompleted, 0, 10)
		require.NoError(t, err)
		require.Len(t, evs, 3)
		assert.Less(t, evs[0].Seq, evs[1].Seq)
		assert.Less(t, evs[1].Seq, evs[2].Seq)
		return nil
	}))
}

func TestKillEventExists(t *testing.T) {
	s := openTest(t, 10)
	require.NoError(t, s.Update(func(tx *Tx) error {
		_, err := tx.Emit(world.EvAgentKilled, EventRefs{AgentID: "killer", EntityID: "victim"}, nil, nil)
		return err
	}))
	require.NoError(t, s.View(func(tx *Tx) error {
		found, err := tx.KillEventExists("killer", "victim", 5)
		require.NoError(t, err)
		assert.True(t, found)

		found, err = tx.KillEventExists("killer", "victim", 11)
		require.NoError(t, err)
		assert.False(t, found, "kills before the window do not count")

		found, err = tx.KillEventExists("victim", "killer", 5)
		require.NoError(t, err)
		assert.False(t, found, "direction matters")
		return nil
	}))
}

func TestSnapshotRoundtrip(t *testing.T) {
	s := openTest(t, 1)
	raw := bytes.Repeat([]byte(`{"tick":42,"zones":["market","docks"]}`), 50)

	require.NoError(t, s.Update(func(tx *Tx) error {
		return tx.WriteSnapshot(42, raw)
	}))
	require.NoError(t, s.View(func(tx *Tx) error {
		got, err := tx.Snapshot(42)
		require.NoError(t, err)
		assert.Equal(t, raw, got)

		_, err = tx.Snapshot(43)
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	}))
}

func TestPruneSnapshots(t *testing.T) {
	s := openTest(t, 1)
	require.NoError(t, s.Update(func(tx *Tx) error {
		for tick := uint64(1); tick <= 5; tick++ {
			if err := tx.WriteSnapshot(tick, []byte("snapshot payload")); err != nil {
				return err
			}
		}
		return tx.PruneSnapshots(2)
	}))
	require.NoError(t, s.View(func(tx *Tx) error {
		_, err := tx.Snapshot(5)
		assert.NoError(t, err)
		_, err = tx.Snapshot(4)
		assert.NoError(t, err)
		_, err = tx.Snapshot(3)
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	}))
}

func TestSummaryRoundtrip(t *testing.T) {
	s := openTest(t, 9)
	type doc struct {
		Agents int `json:"agents"`
	}
	require.NoError(t, s.View(func(tx *Tx) error {
		var out doc
		_, err := tx.Summary("city", &out)
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	}))
	require.NoError(t, s.Update(func(tx *Tx) error {
		return tx.SaveSummary("city", 9, doc{Agents: 12})
	}))
	require.NoError(t, s.View(func(tx *Tx) error {
		var out doc
		tick, err := tx.Summary("city", &out)
		require.NoError(t, err)
		assert.Equal(t, uint64(9), tick)
		assert.Equal(t, 12, out.Agents)
		return nil
	}))
}

func TestAgentIndexQueries(t *testing.T) {
	s := openTest(t, 1)

	busy := seedAgent(t, s, "busy-1", 0)
	until := uint64(5)
	busy.SetBusy(until, agents.BusyAction{Kind: agents.BusyMove, ToZone: "market"})

	jailed := seedAgent(t, s, "jailed-1", 0)
	jailed.Status = agents.StatusJailed
	release := uint64(3)
	jailed.ReleaseTick = &release

	hot := seedAgent(t, s, "hot-1", 0)
	hot.Heat = 80
	hot.KeyHash = "deadbeef"

	npc := seedAgent(t, s, "npc-1", 0)
	npc.IsNPC = true

	require.NoError(t, s.Update(func(tx *Tx) error {
		for _, a := range []*agents.Agent{busy, jailed, hot, npc} {
			if err := tx.SaveAgent(a); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.View(func(tx *Tx) error {
		due, err := tx.BusyAgentsDue(5)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, "busy-1", due[0].ID)

		due, err = tx.BusyAgentsDue(4)
		require.NoError(t, err)
		assert.Empty(t, due)

		rel, err := tx.ReleaseDueAgents(3)
		require.NoError(t, err)
		require.Len(t, rel, 1)
		assert.Equal(t, "jailed-1", rel[0].ID)

		hots, err := tx.HotAgents(60)
		require.NoError(t, err)
		require.Len(t, hots, 1)
		assert.Equal(t, "hot-1", hots[0].ID)

		byKey, err := tx.AgentByKeyHash("deadbeef")
		require.NoError(t, err)
		assert.Equal(t, "hot-1", byKey.ID)
		assert.Equal(t, "deadbeef", byKey.KeyHash, "key hash survives the doc roundtrip")

		_, err = tx.AgentByKeyHash("nope")
		assert.ErrorIs(t, err, ErrNotFound)

		residents, err := tx.NPCs()
		require.NoError(t, err)
		require.Len(t, residents, 1)
		assert.Equal(t, "npc-1", residents[0].ID)

		total, npcs, err := tx.CountAgents()
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Equal(t, 1, npcs)
		return nil
	}))
}

func TestAgentsPageCursor(t *testing.T) {
	s := openTest(t, 1)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		seedAgent(t, s, id, 0)
	}
	require.NoError(t, s.View(func(tx *Tx) error {
		seen := []string{}
		cursor := ""
		for {
			page, err := tx.AgentsPage(cursor, 2)
			require.NoError(t, err)
			if len(page) == 0 {
				break
			}
			for _, a := range page {
				seen = append(seen, a.ID)
			}
			cursor = page[len(page)-1].ID
			if len(page) < 2 {
				break
			}
		}
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, seen)
		return nil
	}))
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := openTest(t, 1)
	a := seedAgent(t, s, "a1", 0)

	boom := assert.AnError
	err := s.Update(func(tx *Tx) error {
		a.Cash = 999
		if err := tx.SaveAgent(a); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.View(func(tx *Tx) error {
		stored, err := tx.Agent("a1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), stored.Cash, "failed transactions leave no trace")
		return nil
	}))
}

func TestKeylessAgentsDoNotCollide(t *testing.T) {
	s := openTest(t, 1)

	// NPCs carry no bearer key; any number of them may coexist.
	seedAgent(t, s, "npc-a", 100)
	seedAgent(t, s, "npc-b", 100)

	// Real keys stay unique.
	a := seedAgent(t, s, "keyed-a", 100)
	a.KeyHash = "cafe0001"
	require.NoError(t, s.Update(func(tx *Tx) error { return tx.SaveAgent(a) }))

	b := seedAgent(t, s, "keyed-b", 100)
	b.KeyHash = "cafe0001"
	err := s.Update(func(tx *Tx) error { return tx.SaveAgent(b) })
	require.Error(t, err, "duplicate key hashes must be rejected")

	// An empty hash never authenticates anyone.
	require.NoError(t, s.View(func(tx *Tx) error {
		_, err := tx.AgentByKeyHash("")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	}))
}
