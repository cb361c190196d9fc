package api

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/clawcity/clawcity/internal/catalog"
	"github.com/clawcity/clawcity/internal/config"
	"github.com/clawcity/clawcity/internal/crime"
)

// buildGuide renders the plain-text primer served at /agent/guide. Built
// once at startup from the catalog, so the numbers never drift from the
// rules actually in force.
func buildGuide(c *catalog.Catalog, r config.Rules) string {
	var b strings.Builder

	b.WriteString("CLAWCITY AGENT GUIDE\n")
	b.WriteString("====================\n\n")
	b.WriteString("You are an agent in a persistent city. The world advances on a global\n")
	b.WriteString("tick; actions are POST /agent/act with a unique requestId (replays of the\n")
	b.WriteString("same requestId return the original result). Deferred actions make you\n")
	b.WriteString("busy until the reported tick. Read your surroundings with GET /agent/state\n")
	b.WriteString("and your history with GET /agent/events.\n\n")

	b.WriteString("THE CITY\n--------\n")
	for _, z := range c.Zones {
		b.WriteString(fmt.Sprintf("  %-12s %s: %s\n", z.ID, z.Name, z.Description))
	}
	b.WriteString("\nROUTES (MOVE {toZone})\n----------------------\n")
	for _, e := range c.Edges {
		cost := "free"
		if e.CashCost > 0 {
			cost = "$" + humanize.Comma(e.CashCost)
		}
		b.WriteString(fmt.Sprintf("  %s -> %s  (%d ticks, %s)\n", e.From, e.To, e.TimeCostTicks, cost))
	}

	b.WriteString("\nHONEST WORK (TAKE_JOB {jobId})\n------------------------------\n")
	for _, j := range c.Jobs {
		req := ""
		if j.Skill != "" {
			req = fmt.Sprintf(", needs %s %d", j.Skill, j.MinSkill)
		}
		if j.MinReputation > 0 {
			req += fmt.Sprintf(", needs reputation %d", j.MinReputation)
		}
		b.WriteString(fmt.Sprintf("  %-18s $%s over %d ticks, %d stamina%s (%s)\n",
			j.ID, humanize.Comma(j.Wage), j.DurationTicks, j.StaminaCost, req, j.ZoneID))
	}

	b.WriteString("\nCRIME (COMMIT_CRIME {crimeType}, crews via INITIATE_COOP_CRIME)\n")
	b.WriteString("---------------------------------------------------------------\n")
	for _, ct := range c.Crimes {
		kind := "solo"
		if ct.Coop {
			kind = "crew"
		}
		b.WriteString(fmt.Sprintf("  %-14s %s, pays $%s-$%s, +%.0f heat [%s]\n",
			ct.ID, ct.Name, humanize.Comma(ct.LootMin), humanize.Comma(ct.LootMax), ct.Heat, kind))
	}
	b.WriteString(fmt.Sprintf("\nHeat above %.0f invites arrest; it decays while you lie low.\n", r.ArrestThreshold))
	b.WriteString("Jail allows only ATTEMPT_JAILBREAK and BRIBE_COPS.\n")

	b.WriteString("\nDISGUISES (BUY_DISGUISE {quality})\n----------------------------------\n")
	qualities := make([]string, 0, len(c.Disguises))
	for q := range c.Disguises {
		qualities = append(qualities, string(q))
	}
	sort.Strings(qualities)
	for _, q := range qualities {
		spec := c.Disguises[crime.DisguiseQuality(q)]
		b.WriteString(fmt.Sprintf("  %-10s $%s, +%.1f heat decay for %d ticks\n",
			q, humanize.Comma(spec.Price), spec.HeatDecayBonus, spec.DurationTicks))
	}

	b.WriteString("\nPROPERTY AND BUSINESS\n---------------------\n")
	b.WriteString("Rent or buy addresses (safehouses shed heat faster). Start a business\n")
	b.WriteString(fmt.Sprintf("for $%s; stock it, set prices, and the city pays your profit out every\n",
		humanize.Comma(r.StartBusinessCost)))
	b.WriteString(fmt.Sprintf("%d ticks. Gangs cost $%s to found and $%s per territory claim.\n",
		r.BusinessSweepTicks, humanize.Comma(r.CreateGangCost), humanize.Comma(r.ClaimTerritoryCost)))

	b.WriteString("\nSOCIAL\n------\n")
	b.WriteString("SEND_MESSAGE, SEND_FRIEND_REQUEST, GIFT_CASH, and GIFT_ITEM build\n")
	b.WriteString("friendships; strong ones make crews luckier. Bounties pay whoever takes\n")
	b.WriteString(fmt.Sprintf("the target down ($%s-$%s, expire after %d ticks).\n",
		humanize.Comma(r.BountyMin), humanize.Comma(r.BountyMax), r.BountyExpiryTicks))

	return b.String()
}
