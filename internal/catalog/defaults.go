package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/DITF16/stockgame/internal/model"
)

// Built-in game data, written to the store on first run when the
// corresponding documents are missing. Operators can edit the persisted
// copies afterwards; these are only the seed.

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func defaultStocks() []model.Stock {
	return []model.Stock{
		{Code: "GPHM", Name: "Genesis Pharma", Industry: "biotech", Tags: []string{"drug-trials", "patents", "chronic-care"}, InitialPrice: price(100)},
		{Code: "VTAL", Name: "Vital Systems", Industry: "biotech", Tags: []string{"med-devices", "ai-diagnosis"}, InitialPrice: price(80)},
		{Code: "APHL", Name: "Apex Health", Industry: "biotech", Tags: []string{"hospital-chains", "public-health"}, InitialPrice: price(75)},
		{Code: "QLAI", Name: "Quantum Leap AI", Industry: "tech", Tags: []string{"agi", "algorithms", "cloud"}, InitialPrice: price(150)},
		{Code: "CYBD", Name: "Cyber Dynamics", Industry: "tech", Tags: []string{"robotics", "automation", "hardware"}, InitialPrice: price(90)},
		{Code: "HIVE", Name: "Hive Interconnect", Industry: "tech", Tags: []string{"social-media", "metaverse", "cloud"}, InitialPrice: price(120)},
		{Code: "AEGA", Name: "Aegis Aerospace", Industry: "defense", Tags: []string{"fighter-jets", "drones", "space"}, InitialPrice: price(110)},
		{Code: "SNTL", Name: "Sentinel Cyber", Industry: "defense", Tags: []string{"cyber-warfare", "intel", "firewalls"}, InitialPrice: price(85)},
		{Code: "HENG", Name: "Helios Energy", Industry: "energy", Tags: []string{"clean-energy", "solar", "wind"}, InitialPrice: price(90)},
		{Code: "STFN", Name: "Starcore Fusion", Industry: "energy", Tags: []string{"fusion", "future-energy"}, InitialPrice: price(160)},
		{Code: "ATLS", Name: "Atlas Mining", Industry: "energy", Tags: []string{"rare-earth", "lithium", "raw-materials"}, InitialPrice: price(85)},
		{Code: "DRMS", Name: "Dreamweaver Studios", Industry: "consumer", Tags: []string{"gaming", "film", "ip"}, InitialPrice: price(105)},
		{Code: "FLOG", Name: "Flash Logistics", Industry: "consumer", Tags: []string{"ecommerce", "logistics", "warehousing"}, InitialPrice: price(75)},
		{Code: "EFFD", Name: "EcoFuture Foods", Industry: "consumer", Tags: []string{"alt-protein", "vertical-farming"}, InitialPrice: price(95)},
	}
}

func defaultGlobalEvents() []model.GlobalEventTemplate {
	return []model.GlobalEventTemplate{
		{
			Content:            "Global health summit pledges a decade of increased public spending on biotech.",
			AffectedIndustries: []string{"biotech"},
			AffectedTags:       []string{"public-health", "med-devices"},
			TrendImpact:        0.01,
			DurationTicks:      30,
		},
		{
			Content:            "Major medical scandal shakes public trust; regulators crack down on patented drugs.",
			AffectedIndustries: []string{"biotech"},
			AffectedTags:       []string{"hospital-chains", "patents"},
			TrendImpact:        -0.01,
			DurationTicks:      30,
		},
		{
			Content:            "Breakthrough announced in general-purpose foundation models at the world AI congress.",
			AffectedIndustries: []string{"tech"},
			AffectedTags:       []string{"agi", "cloud", "ai-diagnosis"},
			TrendImpact:        0.015,
			DurationTicks:      24,
		},
		{
			Content:            "Sweeping data-sovereignty laws ban cross-border data flows.",
			AffectedIndustries: []string{"tech"},
			AffectedTags:       []string{"cloud", "social-media", "algorithms"},
			TrendImpact:        -0.015,
			DurationTicks:      30,
		},
		{
			Content:            "Geopolitical tensions trigger emergency defense procurement across the globe.",
			AffectedIndustries: []string{"defense"},
			AffectedTags:       []string{"fighter-jets", "cyber-warfare"},
			TrendImpact:        0.02,
			DurationTicks:      20,
		},
		{
			Content:            "Surprise peace treaty: major powers agree to cut defense budgets by 30%.",
			AffectedIndustries: []string{"defense"},
			AffectedTags:       []string{"drones"},
			TrendImpact:        -0.025,
			DurationTicks:      40,
		},
		{
			Content:            "Historic carbon-neutrality treaty promises massive clean-energy subsidies.",
			AffectedIndustries: []string{"energy"},
			AffectedTags:       []string{"clean-energy", "future-energy", "lithium"},
			TrendImpact:        0.015,
			DurationTicks:      48,
		},
		{
			Content:            "Universal basic income pilots launch; analysts predict a consumer-spending boom.",
			AffectedIndustries: []string{"consumer"},
			AffectedTags:       []string{"ecommerce", "gaming"},
			TrendImpact:        0.015,
			DurationTicks:      24,
		},
	}
}

func defaultLocalEvents() []model.LocalEventTemplate {
	return []model.LocalEventTemplate{
		{
			Content:             "A late-stage drug trial reports a 100% success rate.",
			AffectedTags:        []string{"drug-trials"},
			DirectImpactPercent: 0.15,
		},
		{
			Content:             "Falsified clinical data exposed at a major pharma lab; shares plunge.",
			AffectedTags:        []string{"drug-trials"},
			DirectImpactPercent: -0.15,
		},
		{
			Content:             "An AI diagnostic system flags a critical illness early, saving a patient's life.",
			AffectedTags:        []string{"ai-diagnosis"},
			DirectImpactPercent: 0.12,
		},
		{
			Content:             "A foundation model passes a landmark reasoning benchmark, stunning researchers.",
			AffectedTags:        []string{"agi"},
			DirectImpactPercent: 0.15,
		},
		{
			Content:             "A logic-bomb virus sends flagship AI models into mass incoherence.",
			AffectedTags:        []string{"agi"},
			DirectImpactPercent: -0.15,
		},
		{
			Content:             "Factory robots malfunction on live television, rattling investors.",
			AffectedTags:        []string{"robotics"},
			DirectImpactPercent: -0.1,
		},
		{
			Content:             "A quantum firewall repels a record-breaking cyber attack.",
			AffectedTags:        []string{"cyber-warfare", "firewalls"},
			DirectImpactPercent: 0.15,
		},
		{
			Content:             "Defense contractor loses a flagship fighter-jet order over cost overruns.",
			AffectedTags:        []string{"fighter-jets"},
			DirectImpactPercent: -0.15,
		},
		{
			Content:             "Net-positive fusion achieved a decade ahead of schedule.",
			AffectedTags:        []string{"fusion", "future-energy"},
			DirectImpactPercent: 0.2,
		},
		{
			Content:             "A giant rare-earth deposit is discovered beneath the Antarctic ice.",
			AffectedTags:        []string{"rare-earth", "raw-materials"},
			DirectImpactPercent: 0.15,
		},
		{
			Content:             "Blockbuster game launch collapses under server outages and mass refunds.",
			AffectedTags:        []string{"gaming"},
			DirectImpactPercent: -0.15,
		},
		{
			Content:             "Record holiday sales overwhelm e-commerce warehouses in the best possible way.",
			AffectedTags:        []string{"ecommerce", "logistics"},
			DirectImpactPercent: 0.1,
		},
		{
			Content:             "Nationwide courier strike paralyzes deliveries.",
			AffectedTags:        []string{"ecommerce", "logistics"},
			DirectImpactPercent: -0.12,
		},
		{
			Content:             "A celebrity chef declares lab-grown steak 'better than the real thing'.",
			AffectedTags:        []string{"alt-protein"},
			DirectImpactPercent: 0.1,
		},
	}
}
