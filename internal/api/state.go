package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/clawcity/clawcity/internal/actions"
	"github.com/clawcity/clawcity/internal/agents"
	"github.com/clawcity/clawcity/internal/crime"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/social"
	"github.com/clawcity/clawcity/internal/store"
)

// stateResponse is the full observation an agent plans from: its own
// snapshot plus everything actionable in its zone.
type stateResponse struct {
	Tick  uint64        `json:"tick"`
	Agent *agents.Agent `json:"agent"`
	Zone  zoneView      `json:"zone"`

	Routes     []routeView          `json:"routes"`
	Jobs       []economy.Job        `json:"jobs"`
	Businesses []*economy.Business  `json:"businesses"`
	Properties []*economy.Property  `json:"properties"`
	Contracts  []*economy.Contract  `json:"contracts"`
	Coops      []*crime.CoopAction  `json:"coopsRecruiting"`
	Nearby     []nearbyAgent        `json:"agentsNearby"`
	Invites    []*social.GangInvite `json:"gangInvites"`
	Messages   []*social.Message    `json:"messages"`
}

type zoneView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Police      string `json:"police"`
}

type routeView struct {
	ToZone        string `json:"toZone"`
	TimeCostTicks uint64 `json:"timeCostTicks"`
	CashCost      int64  `json:"cashCost"`
}

// nearbyAgent is the public projection of a co-located agent. Cash,
// inventory, and heat stay private.
type nearbyAgent struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Status string  `json:"status"`
	GangID *string `json:"gangId,omitempty"`
	IsNPC  bool    `json:"isNpc,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, a *agents.Agent) {
	resp := stateResponse{Agent: a}
	err := s.Store.View(func(tx *store.Tx) error {
		wld, err := tx.World()
		if err != nil {
			return err
		}
		resp.Tick = wld.Tick

		if z := s.Catalog.Zone(a.ZoneID); z != nil {
			resp.Zone = zoneView{
				ID: z.ID, Name: z.Name, Type: string(z.Type), Description: z.Description,
				Police: s.Presence.Label(s.Presence.At(z.ID, wld.Tick),
					s.Rules.HotZoneMed, s.Rules.HotZoneHigh),
			}
		}
		for _, e := range s.Catalog.EdgesFrom(a.ZoneID) {
			resp.Routes = append(resp.Routes, routeView{
				ToZone: e.To, TimeCostTicks: e.TimeCostTicks, CashCost: e.CashCost,
			})
		}
		resp.Jobs = s.Catalog.JobsInZone(a.ZoneID)

		if resp.Businesses, err = tx.BusinessesInZone(a.ZoneID); err != nil {
			return err
		}
		if resp.Properties, err = tx.PropertiesInZone(a.ZoneID); err != nil {
			return err
		}
		if resp.Contracts, err = tx.OpenContractsInZone(a.ZoneID, wld.Tick); err != nil {
			return err
		}
		if resp.Coops, err = tx.RecruitingCoopsInZone(a.ZoneID); err != nil {
			return err
		}

		others, err := tx.AgentsInZone(a.ZoneID)
		if err != nil {
			return err
		}
		for _, o := range others {
			if o.ID == a.ID || o.Banned() {
				continue
			}
			resp.Nearby = append(resp.Nearby, nearbyAgent{
				ID: o.ID, Name: o.Name, Status: string(o.Status),
				GangID: o.GangID, IsNPC: o.IsNPC,
			})
		}

		if resp.Invites, err = tx.InvitesFor(a.ID, wld.Tick); err != nil {
			return err
		}
		if resp.Messages, err = tx.MessagesFor(a.ID, 20); err != nil {
			return err
		}
		return nil
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("state read failed", "agent", a.ID, "error", err)
		writeError(w, http.StatusInternalServerError, actions.CodeInternal, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
