package clawbot

import (
	"log/slog"
	"math/rand"
	"time"
)

// Bot runs the observe, decide, act cycle for one agent.
type Bot struct {
	Client   *Client
	Interval time.Duration
}

// Run loops until the stop channel closes.
func (b *Bot) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	b.cycle()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.cycle()
		}
	}
}

func (b *Bot) cycle() {
	st, err := b.Client.State()
	if err != nil {
		slog.Error("observation failed", "error", err)
		return
	}

	action, args := decide(st)
	if action == "" {
		slog.Info("sitting tight",
			"tick", st.Tick, "status", st.Agent.Status, "zone", st.Agent.ZoneID)
		return
	}

	res, err := b.Client.Act(action, args)
	if err != nil {
		slog.Error("action failed", "action", action, "error", err)
		return
	}
	if res.OK {
		slog.Info("acted",
			"tick", res.Tick, "action", action, "result", res.Message,
			"cash", st.Agent.Cash, "heat", st.Agent.Heat)
	} else {
		slog.Warn("action rejected",
			"tick", res.Tick, "action", action, "code", res.Error, "message", res.Message)
	}
}

// decide is a plain survival policy: get out of jail, stay healthy and
// rested, keep heat down, and otherwise work the nearest job or wander.
// Returns "" to skip the cycle.
func decide(st *AgentState) (string, map[string]any) {
	a := st.Agent
	switch a.Status {
	case "busy", "hospitalized":
		return "", nil
	case "jailed":
		return "ATTEMPT_JAILBREAK", nil
	}

	if a.Health < 50 && st.Zone.Type == "hospital" {
		return "HEAL", nil
	}
	if a.Health < 50 {
		for _, r := range st.Routes {
			if r.ToZone == "hospital" && a.Cash >= r.CashCost {
				return "MOVE", map[string]any{"toZone": r.ToZone}
			}
		}
	}
	if a.Stamina < 30 {
		return "REST", nil
	}
	if a.Heat > 60 {
		// Lie low until the streets cool off.
		if a.Stamina < 100 {
			return "REST", nil
		}
		return "", nil
	}

	for _, j := range st.Jobs {
		if j.Skill == "" && j.StaminaCost <= a.Stamina {
			return "TAKE_JOB", map[string]any{"jobId": j.ID}
		}
	}
	if len(st.Routes) > 0 {
		r := st.Routes[rand.Intn(len(st.Routes))]
		if a.Cash >= r.CashCost {
			return "MOVE", map[string]any{"toZone": r.ToZone}
		}
	}
	return "", nil
}
