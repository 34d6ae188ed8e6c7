// Package pricing implements the per-tick price update for one stock.
//
// Each tick a stock's price moves by a uniform random drift plus the
// summed trend impact of every matching active global event, then by
// the one-shot direct impact of a triggered local event:
//
//	new = current * (1 + drift + Σ trendImpact) * (1 + directImpact)
//
// All monetary values use shopspring/decimal — never float64 for money.
// The stochastic math runs in float64 and the result is immediately
// converted back to decimal.
package pricing

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/DITF16/stockgame/internal/model"
)

var (
	// MinPrice is the floor below which no price can fall. Impacts can
	// be arbitrarily negative; the price never reaches zero.
	MinPrice = decimal.NewFromFloat(0.01)

	// PriceScale is the number of decimal places prices are rounded to.
	PriceScale int32 = 4
)

// ComputePrice returns the stock's new price for one tick.
//
// It has no side effects beyond consuming one value from rng, and is
// deterministic for a fixed rng state. A global event that matches a
// stock by industry AND by tag still contributes its trend impact only
// once — the summation runs per qualifying event, not per criterion.
func ComputePrice(
	stock model.Stock,
	current decimal.Decimal,
	globals []model.ActiveGlobalEvent,
	local *model.LocalEventTemplate,
	baseVolatility float64,
	rng *rand.Rand,
) decimal.Decimal {
	drift := uniform(rng, baseVolatility)

	trendImpact := 0.0
	for _, ev := range globals {
		if matchesGlobal(stock, ev.GlobalEventTemplate) {
			trendImpact += ev.TrendImpact
		}
	}

	directImpact := 0.0
	if local != nil && matchesLocal(stock, *local) {
		directImpact = local.DirectImpactPercent
	}

	next := current.InexactFloat64() * (1 + drift + trendImpact) * (1 + directImpact)
	price := decimal.NewFromFloat(next).Round(PriceScale)
	if price.LessThan(MinPrice) {
		return MinPrice
	}
	return price
}

// uniform draws from [-amplitude, +amplitude). Always consumes exactly
// one rng value so tick replay stays aligned even at zero volatility.
func uniform(rng *rand.Rand, amplitude float64) float64 {
	return (rng.Float64()*2 - 1) * amplitude
}

func matchesGlobal(stock model.Stock, ev model.GlobalEventTemplate) bool {
	for _, industry := range ev.AffectedIndustries {
		if stock.Industry == industry {
			return true
		}
	}
	for _, tag := range ev.AffectedTags {
		if stock.HasTag(tag) {
			return true
		}
	}
	return false
}

func matchesLocal(stock model.Stock, ev model.LocalEventTemplate) bool {
	for _, code := range ev.AffectedCodes {
		if stock.Code == code {
			return true
		}
	}
	for _, tag := range ev.AffectedTags {
		if stock.HasTag(tag) {
			return true
		}
	}
	return false
}
