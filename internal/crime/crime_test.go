package crime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.05, Clamp(-1, 0.05, 0.95))
	assert.Equal(t, 0.95, Clamp(2, 0.05, 0.95))
	assert.Equal(t, 0.5, Clamp(0.5, 0.05, 0.95))
}

func TestSuccessChance(t *testing.T) {
	// base 0.5 + 40 stealth * 0.005 - 0.5 presence * 0.1 = 0.65
	p := SuccessChance(0.5, 40, false, 0.5, 0.005, 0.10, 0.10, 0.05, 0.95)
	assert.InDelta(t, 0.65, p, 1e-9)

	// Own territory adds the flat bonus.
	p = SuccessChance(0.5, 40, true, 0.5, 0.005, 0.10, 0.10, 0.05, 0.95)
	assert.InDelta(t, 0.75, p, 1e-9)

	// Clamped at both ends.
	assert.Equal(t, 0.95, SuccessChance(0.9, 100, true, 0, 0.005, 0.10, 0.10, 0.05, 0.95))
	assert.Equal(t, 0.05, SuccessChance(0.0, 0, false, 1, 0.005, 0.10, 0.10, 0.05, 0.95))
}

func TestCombatWinChance(t *testing.T) {
	assert.Equal(t, 0.5, CombatWinChance(0, 0))
	assert.Equal(t, 1.0, CombatWinChance(50, 0))
	assert.InDelta(t, 0.75, CombatWinChance(75, 25), 1e-9)
}

func TestCoopStateMachine(t *testing.T) {
	co := &CoopAction{
		ID:              "c1",
		InitiatorID:     "a1",
		Status:          CoopRecruiting,
		ParticipantIDs:  []string{"a1"},
		MinParticipants: 2,
		MaxParticipants: 3,
	}
	assert.True(t, co.Active())
	assert.True(t, co.HasParticipant("a1"))
	assert.False(t, co.HasParticipant("a2"))
	assert.False(t, co.Full())

	co.ParticipantIDs = append(co.ParticipantIDs, "a2", "a3")
	assert.True(t, co.Full())

	co.Arm(120)
	assert.Equal(t, CoopReady, co.Status)
	assert.Equal(t, uint64(120), *co.ExecuteAt)
	assert.True(t, co.Active())

	co.Status = CoopCompleted
	assert.False(t, co.Active())
}

func TestCoopSuccessChance(t *testing.T) {
	co := &CoopAction{
		ParticipantIDs:  []string{"a", "b", "c", "d"},
		MinParticipants: 2,
	}
	// base 0.3 + 2 extras * 0.1 (capped 0.3) + 1 strong pair * 0.02
	// + gang 0.15 - 0.5 presence * 0.1 = 0.62
	p := co.SuccessChance(0.3, 1, true, 0.5, 0.10, 0.30, 0.15, 0.02, 0.10, 0.05, 0.95)
	assert.InDelta(t, 0.62, p, 1e-9)

	// Extras bonus respects the cap.
	co.ParticipantIDs = []string{"a", "b", "c", "d", "e", "f", "g"}
	p = co.SuccessChance(0.3, 0, false, 0, 0.10, 0.30, 0.15, 0.02, 0.10, 0.05, 0.95)
	assert.InDelta(t, 0.60, p, 1e-9)

	// A crew at exactly min gets no extras bonus and never a negative one.
	co.ParticipantIDs = []string{"a", "b"}
	p = co.SuccessChance(0.3, 0, false, 0, 0.10, 0.30, 0.15, 0.02, 0.10, 0.05, 0.95)
	assert.InDelta(t, 0.30, p, 1e-9)
}

func TestGambleDraw(t *testing.T) {
	rows := []Odds{{P: 0.25, Mult: 3.5}}
	assert.Equal(t, 3.5, Draw(rows, 0.1))
	assert.Equal(t, 0.0, Draw(rows, 0.25))
	assert.Equal(t, 0.0, Draw(rows, 0.9))
}
