// Package model defines the core domain types shared across the stock game.
// All monetary values use shopspring/decimal — never float64 for money.
// Impact factors are dimensionless drift fractions and stay float64.
package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Stock is a catalog entry. Immutable after load.
type Stock struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Industry     string          `json:"industry"`
	Tags         []string        `json:"tags"`
	InitialPrice decimal.Decimal `json:"initial_price"`
}

// HasTag reports whether the stock carries the given tag.
func (s Stock) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// GlobalEventTemplate describes a macro event that, once triggered,
// applies a per-tick drift to every matching stock for a fixed number
// of ticks.
type GlobalEventTemplate struct {
	Content            string   `json:"content"`
	AffectedIndustries []string `json:"affected_industries"`
	AffectedTags       []string `json:"affected_tags"`
	TrendImpact        float64  `json:"trend_impact"`
	DurationTicks      int      `json:"duration_ticks"`
}

// ActiveGlobalEvent is a triggered instance of a GlobalEventTemplate.
// RemainingTicks is decremented once per tick; the instance is removed
// (and its expiry reported) when it reaches zero.
type ActiveGlobalEvent struct {
	GlobalEventTemplate
	ID             string `json:"id"`
	RemainingTicks int    `json:"remaining_ticks"`
}

// LocalEventTemplate describes an instantaneous flash event applied
// exactly once to matching stocks. It has no duration; only its content
// text survives the tick, as the latest flash news.
type LocalEventTemplate struct {
	Content             string   `json:"content"`
	AffectedCodes       []string `json:"affected_codes"`
	AffectedTags        []string `json:"affected_tags"`
	DirectImpactPercent float64  `json:"direct_impact_percent"`
}

// MarketState is the durable snapshot of the shared market aggregate.
type MarketState struct {
	Prices             map[string]decimal.Decimal   `json:"prices"`
	ActiveGlobalEvents []ActiveGlobalEvent          `json:"active_global_events"`
	PriceHistory       map[string][]decimal.Decimal `json:"price_history"`
	LastLocalNews      string                       `json:"last_local_event_news"`
}

// Portfolio is one identity's cash balance and share holdings.
// Holdings never store zero share counts; a position sold to zero is
// removed entirely.
type Portfolio struct {
	Cash     decimal.Decimal  `json:"cash"`
	Holdings map[string]int64 `json:"holdings"`
}

// Clone returns a deep copy so callers can mutate freely.
func (p Portfolio) Clone() Portfolio {
	holdings := make(map[string]int64, len(p.Holdings))
	for code, qty := range p.Holdings {
		holdings[code] = qty
	}
	return Portfolio{Cash: p.Cash, Holdings: holdings}
}

// Identity names the owner of a portfolio: one user in one chat group.
type Identity struct {
	GroupID     string `json:"group_id"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// Key returns the stable identifier used to address this identity's
// portfolio document.
func (id Identity) Key() string {
	return fmt.Sprintf("%s_%s", id.GroupID, id.UserID)
}
