// The stock seed data. Content here is illustrative world dressing; the
// shapes are what the engine depends on.
package catalog

import (
	"github.com/clawcity/clawcity/internal/crime"
	"github.com/clawcity/clawcity/internal/economy"
	"github.com/clawcity/clawcity/internal/world"
)

func stockZones() []world.Zone {
	return []world.Zone{
		{ID: "residential", Name: "Pinecrest Heights", Type: world.ZoneResidential,
			Description: "Quiet apartment blocks where new arrivals get their start.",
			BasePolice:  0.30, Income: 20, X: 2, Y: 1},
		{ID: "market", Name: "Grand Bazaar", Type: world.ZoneMarket,
			Description: "Open-air stalls, pawn shops, and anyone selling anything.",
			BasePolice:  0.45, Income: 60, X: 3, Y: 2},
		{ID: "downtown", Name: "Meridian Plaza", Type: world.ZoneDowntown,
			Description: "Glass towers, office work, and heavy patrols.",
			BasePolice:  0.70, Income: 80, X: 4, Y: 2},
		{ID: "industrial", Name: "Rustbelt Works", Type: world.ZoneIndustrial,
			Description: "Factories and freight yards. Honest pay, dishonest nights.",
			BasePolice:  0.35, Income: 45, X: 5, Y: 3},
		{ID: "docks", Name: "Saltside Docks", Type: world.ZoneDocks,
			Description: "Container cranes and customs officers who look away.",
			BasePolice:  0.25, Income: 70, X: 6, Y: 4},
		{ID: "casino", Name: "The Golden Claw", Type: world.ZoneCasino,
			Description: "Neon, velvet, and odds the house already counted.",
			BasePolice:  0.40, Income: 90, X: 4, Y: 4},
		{ID: "hospital", Name: "St. Ambrose Medical", Type: world.ZoneHospital,
			Description: "Patches anyone up, no questions on intake.",
			BasePolice:  0.50, Income: 10, X: 2, Y: 3},
		{ID: "suburbs", Name: "Willowbrook", Type: world.ZoneSuburbs,
			Description: "Lawns, cul-de-sacs, and very watchful neighbors.",
			BasePolice:  0.55, Income: 30, X: 1, Y: 2},
		{ID: "oldtown", Name: "Old Harbor Quarter", Type: world.ZoneOldTown,
			Description: "Cobblestones and backrooms older than the law.",
			BasePolice:  0.20, Income: 50, X: 5, Y: 1},
		{ID: "warehouse", Name: "Gray Row Storage", Type: world.ZoneWarehouse,
			Description: "Rows of rented lockups nobody inspects twice.",
			BasePolice:  0.15, Income: 40, X: 6, Y: 2},
	}
}

// edge builds the two directed records of a symmetric link.
func edge(a, b string, ticks uint64, cost int64, risk float64) []world.ZoneEdge {
	return []world.ZoneEdge{
		{From: a, To: b, TimeCostTicks: ticks, CashCost: cost, HeatRisk: risk},
		{From: b, To: a, TimeCostTicks: ticks, CashCost: cost, HeatRisk: risk},
	}
}

func stockEdges() []world.ZoneEdge {
	var edges []world.ZoneEdge
	add := func(es []world.ZoneEdge) { edges = append(edges, es...) }
	add(edge("residential", "market", 1, 5, 0.02))
	add(edge("residential", "hospital", 1, 5, 0.01))
	add(edge("residential", "suburbs", 1, 8, 0.01))
	add(edge("market", "downtown", 1, 10, 0.03))
	add(edge("market", "casino", 1, 10, 0.05))
	add(edge("market", "oldtown", 2, 8, 0.06))
	add(edge("downtown", "hospital", 1, 10, 0.01))
	add(edge("downtown", "industrial", 1, 12, 0.02))
	add(edge("downtown", "casino", 1, 15, 0.03))
	add(edge("industrial", "docks", 1, 10, 0.05))
	add(edge("industrial", "warehouse", 1, 8, 0.04))
	add(edge("docks", "warehouse", 1, 6, 0.08))
	add(edge("docks", "oldtown", 2, 10, 0.07))
	add(edge("casino", "oldtown", 1, 12, 0.05))
	add(edge("suburbs", "hospital", 1, 6, 0.01))
	add(edge("oldtown", "warehouse", 1, 6, 0.06))
	return edges
}

func stockItems() []economy.Item {
	return []economy.Item{
		{ID: "bandage", Name: "Bandage", Kind: economy.ItemConsumable, BasePrice: 25,
			Effects: economy.ItemEffects{Health: 15}, Usable: true},
		{ID: "medkit", Name: "Field Medkit", Kind: economy.ItemConsumable, BasePrice: 120,
			Effects: economy.ItemEffects{Health: 50}, Usable: true},
		{ID: "energy_drink", Name: "Energy Drink", Kind: economy.ItemConsumable, BasePrice: 15,
			Effects: economy.ItemEffects{Stamina: 25}, Usable: true},
		{ID: "coffee", Name: "Dock Coffee", Kind: economy.ItemConsumable, BasePrice: 8,
			Effects: economy.ItemEffects{Stamina: 10}, Usable: true},
		{ID: "burner_phone", Name: "Burner Phone", Kind: economy.ItemGear, BasePrice: 200,
			Effects: economy.ItemEffects{Heat: -10}, Usable: true},
		{ID: "lockpick", Name: "Lockpick Set", Kind: economy.ItemGear, BasePrice: 150, Usable: false},
		{ID: "crowbar", Name: "Crowbar", Kind: economy.ItemGear, BasePrice: 60, Usable: false},
		{ID: "watch", Name: "Gold Watch", Kind: economy.ItemValuable, BasePrice: 800, Usable: false},
		{ID: "jewelry", Name: "Jewelry", Kind: economy.ItemValuable, BasePrice: 1200, Usable: false},
		{ID: "contraband_case", Name: "Sealed Case", Kind: economy.ItemContraband, BasePrice: 2500, Usable: false},
	}
}

func stockJobs() []economy.Job {
	return []economy.Job{
		{ID: "shop_assistant", ZoneID: "market", Name: "Shop Assistant",
			Wage: 40, DurationTicks: 3, StaminaCost: 15},
		{ID: "delivery_run", ZoneID: "market", Name: "Delivery Run",
			Wage: 60, DurationTicks: 4, StaminaCost: 20, Skill: "driving", MinSkill: 10},
		{ID: "office_temp", ZoneID: "downtown", Name: "Office Temp",
			Wage: 80, DurationTicks: 5, StaminaCost: 15, MinReputation: 5},
		{ID: "security_shift", ZoneID: "downtown", Name: "Security Shift",
			Wage: 100, DurationTicks: 6, StaminaCost: 25, Skill: "combat", MinSkill: 20},
		{ID: "factory_shift", ZoneID: "industrial", Name: "Factory Shift",
			Wage: 70, DurationTicks: 5, StaminaCost: 30},
		{ID: "dock_loader", ZoneID: "docks", Name: "Dock Loader",
			Wage: 90, DurationTicks: 5, StaminaCost: 35},
		{ID: "night_porter", ZoneID: "casino", Name: "Night Porter",
			Wage: 55, DurationTicks: 3, StaminaCost: 15},
		{ID: "card_dealer", ZoneID: "casino", Name: "Card Dealer",
			Wage: 110, DurationTicks: 6, StaminaCost: 20, Skill: "negotiation", MinSkill: 25, MinReputation: 10},
		{ID: "hospital_orderly", ZoneID: "hospital", Name: "Hospital Orderly",
			Wage: 50, DurationTicks: 4, StaminaCost: 20},
		{ID: "warehouse_picker", ZoneID: "warehouse", Name: "Warehouse Picker",
			Wage: 65, DurationTicks: 4, StaminaCost: 25},
		{ID: "courier", ZoneID: "oldtown", Name: "Quarter Courier",
			Wage: 75, DurationTicks: 4, StaminaCost: 20, Skill: "stealth", MinSkill: 15},
		{ID: "lawn_care", ZoneID: "suburbs", Name: "Lawn Care",
			Wage: 35, DurationTicks: 2, StaminaCost: 15},
	}
}

func stockCrimes() []crime.Type {
	return []crime.Type{
		{ID: "pickpocket", Name: "Pickpocketing", BaseChance: 0.60,
			LootMin: 20, LootMax: 80, Heat: 8, DamageMin: 2, DamageMax: 8},
		{ID: "theft", Name: "Petty Theft", BaseChance: 0.50,
			LootMin: 60, LootMax: 180, Heat: 15, DamageMin: 5, DamageMax: 15},
		{ID: "burglary", Name: "Burglary", BaseChance: 0.40,
			LootMin: 150, LootMax: 500, Heat: 25, DamageMin: 10, DamageMax: 25},
		{ID: "smuggling", Name: "Smuggling Run", BaseChance: 0.45,
			LootMin: 300, LootMax: 800, Heat: 30, DamageMin: 10, DamageMax: 30},
		{ID: "coop_robbery", Name: "Armed Robbery", BaseChance: 0.45,
			LootMin: 800, LootMax: 2000, Heat: 35, DamageMin: 15, DamageMax: 35, Coop: true},
		{ID: "coop_heist", Name: "Vault Heist", BaseChance: 0.30,
			LootMin: 3000, LootMax: 8000, Heat: 50, DamageMin: 20, DamageMax: 45, Coop: true},
		{ID: "coop_hijack", Name: "Cargo Hijack", BaseChance: 0.40,
			LootMin: 1500, LootMax: 4000, Heat: 40, DamageMin: 15, DamageMax: 40, Coop: true},
	}
}

func stockVehicles() []economy.VehicleSpec {
	return []economy.VehicleSpec{
		{ID: "rustbucket", Name: "Rust Bucket Sedan", SpeedFactor: 0.8, StealDiff: 0.05, Value: 400},
		{ID: "commuter", Name: "Commuter Hatchback", SpeedFactor: 0.65, StealDiff: 0.15, Value: 1200},
		{ID: "sportbike", Name: "Street Sportbike", SpeedFactor: 0.5, StealDiff: 0.25, Value: 3000},
		{ID: "luxury", Name: "Executive Saloon", SpeedFactor: 0.45, StealDiff: 0.35, Value: 8000},
	}
}

func stockDisguises() map[crime.DisguiseQuality]crime.DisguiseSpec {
	return map[crime.DisguiseQuality]crime.DisguiseSpec{
		crime.DisguiseCheap: {Quality: crime.DisguiseCheap,
			Price: 100, HeatDecayBonus: 1, DurationTicks: 50},
		crime.DisguiseStandard: {Quality: crime.DisguiseStandard,
			Price: 400, HeatDecayBonus: 2, DurationTicks: 150},
		crime.DisguisePremium: {Quality: crime.DisguisePremium,
			Price: 1200, HeatDecayBonus: 3, DurationTicks: 400},
	}
}

func stockGamble() map[crime.RiskTier][]crime.Odds {
	return map[crime.RiskTier][]crime.Odds{
		crime.RiskLow:     {{P: 0.45, Mult: 2.0}},
		crime.RiskMed:     {{P: 0.25, Mult: 3.5}},
		crime.RiskHigh:    {{P: 0.10, Mult: 8.0}},
		crime.RiskJackpot: {{P: 0.01, Mult: 75.0}},
	}
}

func stockBusinesses() []economy.Business {
	shelf := func(pairs ...any) map[string]economy.Stock {
		inv := make(map[string]economy.Stock)
		for i := 0; i < len(pairs); i += 3 {
			inv[pairs[i].(string)] = economy.Stock{Qty: pairs[i+1].(int), Price: int64(pairs[i+2].(int))}
		}
		return inv
	}
	return []economy.Business{
		{ID: "corner_pharmacy", ZoneID: "residential", Name: "Corner Pharmacy", CashOnHand: 2000,
			Inventory: shelf("bandage", 40, 30, "medkit", 10, 150, "coffee", 50, 10)},
		{ID: "bazaar_general", ZoneID: "market", Name: "Bazaar General Store", CashOnHand: 5000,
			Inventory: shelf("bandage", 30, 28, "energy_drink", 60, 18, "coffee", 80, 9, "crowbar", 15, 75)},
		{ID: "pawn_shop", ZoneID: "market", Name: "Three Ball Pawn", CashOnHand: 8000,
			Inventory: shelf("watch", 4, 950, "jewelry", 2, 1400, "lockpick", 8, 180)},
		{ID: "plaza_outfitters", ZoneID: "downtown", Name: "Plaza Outfitters", CashOnHand: 6000,
			Inventory: shelf("burner_phone", 12, 250, "energy_drink", 30, 20)},
		{ID: "dockside_supply", ZoneID: "docks", Name: "Dockside Supply Co.", CashOnHand: 4000,
			Inventory: shelf("crowbar", 25, 65, "coffee", 100, 8, "lockpick", 5, 170)},
		{ID: "quarter_fence", ZoneID: "oldtown", Name: "The Quiet Fence", CashOnHand: 12000,
			Inventory: shelf("contraband_case", 2, 2800, "lockpick", 10, 160, "burner_phone", 8, 230)},
		{ID: "hospital_kiosk", ZoneID: "hospital", Name: "Lobby Kiosk", CashOnHand: 1500,
			Inventory: shelf("bandage", 50, 35, "medkit", 20, 140, "coffee", 40, 12)},
	}
}

func stockProperties() []economy.Property {
	return []economy.Property{
		{ID: "pinecrest_studio", ZoneID: "residential", Name: "Pinecrest Studio",
			Price: 4000, RentPerPeriod: 60, RentPeriodTicks: 50},
		{ID: "pinecrest_flat", ZoneID: "residential", Name: "Pinecrest Two-Bed",
			Price: 9000, RentPerPeriod: 120, RentPeriodTicks: 50},
		{ID: "willowbrook_house", ZoneID: "suburbs", Name: "Willowbrook House",
			Price: 18000, RentPerPeriod: 220, RentPeriodTicks: 50},
		{ID: "plaza_loft", ZoneID: "downtown", Name: "Meridian Loft",
			Price: 30000, RentPerPeriod: 400, RentPeriodTicks: 50},
		{ID: "harbor_rooms", ZoneID: "oldtown", Name: "Harbor Rooms",
			Price: 7000, RentPerPeriod: 90, RentPeriodTicks: 50, Safehouse: true},
		{ID: "gray_row_lockup", ZoneID: "warehouse", Name: "Gray Row Lockup",
			Price: 12000, RentPerPeriod: 100, RentPeriodTicks: 50, Safehouse: true},
	}
}

func stockContracts() []economy.Contract {
	return []economy.Contract{
		{ID: "contract_escort", ZoneID: "downtown", Name: "Executive Escort",
			Reward: 500, DurationTicks: 6, Skill: "combat", MinSkill: 30, ExpiresAt: 400},
		{ID: "contract_package", ZoneID: "oldtown", Name: "No-Questions Package",
			Reward: 800, DurationTicks: 5, Skill: "stealth", MinSkill: 25, Heat: 12, ExpiresAt: 400},
		{ID: "contract_wheelman", ZoneID: "docks", Name: "Night Wheelman",
			Reward: 1200, DurationTicks: 8, Skill: "driving", MinSkill: 40, Heat: 20, ExpiresAt: 400},
		{ID: "contract_books", ZoneID: "casino", Name: "Creative Bookkeeping",
			Reward: 700, DurationTicks: 6, Skill: "negotiation", MinSkill: 35, Heat: 8, ExpiresAt: 400},
	}
}

func stockNPCNames() []string {
	return []string{
		"Sal Marrone", "Dee Okafor", "Marty Finch", "Lena Vasquez", "Booker Hale",
		"Priya Nair", "Gus Kowalski", "Tam Nguyen", "Rosa Delgado", "Eddie Strand",
		"Mona Petrov", "Clyde Barnes", "Yuki Tanabe", "Oz Reyes", "Franny Doyle",
		"Leo Castellano", "Ingrid Voss", "Dex Mbeki", "Carmen Ruiz", "Vic Szabo",
		"Nadia Brandt", "Percy Whitlock", "Jules Moreau", "Kofi Mensah", "Greta Lindqvist",
	}
}
