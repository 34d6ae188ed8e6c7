// Package market owns the shared mutable market aggregate and the
// clock that advances it. One mutex guards the aggregate: the tick's
// price commit and every trade or multi-field read goes through it.
// The lock is never held across store writes or news delivery.
package market

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DITF16/stockgame/internal/catalog"
	"github.com/DITF16/stockgame/internal/model"
	"github.com/DITF16/stockgame/internal/pricing"
	"github.com/DITF16/stockgame/internal/store"
)

// StateDoc is the document name under which the market snapshot is kept.
const StateDoc = "game_state"

// HistoryLength caps each stock's price history; the oldest entries are
// dropped first.
const HistoryLength = 100

const noNewsYet = "No flash news yet."

// State is the owned market aggregate: current prices, active global
// events, bounded price history, and the latest flash-news text. It is
// passed explicitly to the Clock and the Ledger — never ambient.
type State struct {
	cat *catalog.Catalog
	st  store.Store

	mu       sync.Mutex
	prices   map[string]decimal.Decimal
	active   []model.ActiveGlobalEvent
	history  map[string][]decimal.Decimal
	lastNews string
}

// NewState restores the market snapshot from the store, or initializes
// a fresh one (every stock at its initial price, single-entry history)
// on first run. Stocks that joined the catalog since the last snapshot
// are backfilled; prices for codes no longer in the catalog are dropped.
func NewState(ctx context.Context, cat *catalog.Catalog, st store.Store) (*State, error) {
	var snap model.MarketState
	found, err := st.Load(ctx, StateDoc, &snap)
	if err != nil {
		return nil, fmt.Errorf("market: load state: %w", err)
	}

	s := &State{
		cat:      cat,
		st:       st,
		prices:   make(map[string]decimal.Decimal),
		history:  make(map[string][]decimal.Decimal),
		lastNews: noNewsYet,
	}
	if found {
		s.active = snap.ActiveGlobalEvents
		if snap.LastLocalNews != "" {
			s.lastNews = snap.LastLocalNews
		}
	}

	for _, stock := range cat.Stocks() {
		price, ok := snap.Prices[stock.Code]
		if !ok {
			price = stock.InitialPrice
		}
		s.prices[stock.Code] = price

		hist := snap.PriceHistory[stock.Code]
		if len(hist) == 0 {
			hist = []decimal.Decimal{price}
		}
		s.history[stock.Code] = hist
	}

	if !found {
		if err := st.Save(ctx, StateDoc, s.snapshotLocked()); err != nil {
			return nil, fmt.Errorf("market: save initial state: %w", err)
		}
	}
	return s, nil
}

// TickParams are the knobs one tick reads.
type TickParams struct {
	GlobalEventChance float64
	LocalEventChance  float64
	BaseVolatility    float64
}

// TickResult reports what one tick changed, for persistence and the
// news digest. Snapshot is a deep copy, safe to use without the lock.
type TickResult struct {
	Expired   []model.ActiveGlobalEvent
	Triggered []model.ActiveGlobalEvent
	LocalNews string
	Snapshot  model.MarketState
}

// Advance runs one tick's state transition under the market lock:
// age and expire global events, maybe trigger a new global event,
// maybe trigger a local flash event, then recompute every price and
// append it to the bounded history. All prices move together; readers
// never observe a half-updated tick.
//
// Advance performs no I/O — the Clock persists and publishes the
// returned TickResult afterwards.
func (s *State) Advance(params TickParams, rng *rand.Rand) TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res TickResult

	// Age the active set. Events reaching zero expire and are reported.
	kept := s.active[:0]
	for _, ev := range s.active {
		ev.RemainingTicks--
		if ev.RemainingTicks > 0 {
			kept = append(kept, ev)
		} else {
			res.Expired = append(res.Expired, ev)
		}
	}
	s.active = kept

	if rng.Float64() < params.GlobalEventChance {
		if tmpl, ok := s.cat.SampleGlobal(rng); ok {
			ev := model.ActiveGlobalEvent{
				GlobalEventTemplate: tmpl,
				ID:                  uuid.NewString(),
				RemainingTicks:      tmpl.DurationTicks,
			}
			s.active = append(s.active, ev)
			res.Triggered = append(res.Triggered, ev)
		}
	}

	var local *model.LocalEventTemplate
	if rng.Float64() < params.LocalEventChance {
		if tmpl, ok := s.cat.SampleLocal(rng); ok {
			local = &tmpl
			res.LocalNews = "[FLASH] " + tmpl.Content
			s.lastNews = res.LocalNews
		}
	}

	newPrices := make(map[string]decimal.Decimal, len(s.prices))
	for _, stock := range s.cat.Stocks() {
		current, ok := s.prices[stock.Code]
		if !ok {
			current = stock.InitialPrice
		}
		price := pricing.ComputePrice(stock, current, s.active, local, params.BaseVolatility, rng)
		newPrices[stock.Code] = price

		hist := append(s.history[stock.Code], price)
		if len(hist) > HistoryLength {
			hist = hist[len(hist)-HistoryLength:]
		}
		s.history[stock.Code] = hist
	}
	s.prices = newPrices

	res.Snapshot = s.snapshotLocked()
	return res
}

// snapshotLocked deep-copies the aggregate. Caller must hold s.mu.
func (s *State) snapshotLocked() model.MarketState {
	prices := make(map[string]decimal.Decimal, len(s.prices))
	for code, p := range s.prices {
		prices[code] = p
	}
	history := make(map[string][]decimal.Decimal, len(s.history))
	for code, h := range s.history {
		history[code] = append([]decimal.Decimal(nil), h...)
	}
	active := append([]model.ActiveGlobalEvent(nil), s.active...)
	return model.MarketState{
		Prices:             prices,
		ActiveGlobalEvents: active,
		PriceHistory:       history,
		LastLocalNews:      s.lastNews,
	}
}

// Snapshot returns a consistent deep copy of the aggregate.
func (s *State) Snapshot() model.MarketState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Persist writes a snapshot to the store. The snapshot is already a
// copy, so no lock is held across the write.
func (s *State) Persist(ctx context.Context, snap model.MarketState) error {
	return s.st.Save(ctx, StateDoc, snap)
}

// Save snapshots and persists the current state. Used at shutdown.
func (s *State) Save(ctx context.Context) error {
	return s.Persist(ctx, s.Snapshot())
}

// Quote returns the current price for one stock code.
func (s *State) Quote(code string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prices[code]
	return p, ok
}

// QuoteFunc looks up a price inside a Transact callback.
type QuoteFunc func(code string) (decimal.Decimal, bool)

// Transact runs fn while holding the market lock, giving it a price
// view that stays consistent for the duration of the call. The ledger
// executes trades through this so a concurrent tick can never commit a
// torn or stale price mid-transaction. fn must not perform I/O.
func (s *State) Transact(fn func(quote QuoteFunc) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(func(code string) (decimal.Decimal, bool) {
		p, ok := s.prices[code]
		return p, ok
	})
}

// BoardEntry is one row of the market board.
type BoardEntry struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	// Prev is the previous tick's price; zero when only one data
	// point exists yet.
	Prev decimal.Decimal `json:"prev"`
}

// Board returns one entry per stock, sorted by code.
func (s *State) Board() []BoardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]BoardEntry, 0, len(s.prices))
	for _, stock := range s.cat.Stocks() {
		e := BoardEntry{
			Code:  stock.Code,
			Name:  stock.Name,
			Price: s.prices[stock.Code],
		}
		if hist := s.history[stock.Code]; len(hist) >= 2 {
			e.Prev = hist[len(hist)-2]
		}
		entries = append(entries, e)
	}
	return entries
}

// Detail is the full view of a single stock.
type Detail struct {
	Stock   model.Stock       `json:"stock"`
	Price   decimal.Decimal   `json:"price"`
	History []decimal.Decimal `json:"history"`
}

// Detail returns the stock's static info, current price, and a copy of
// its price history.
func (s *State) Detail(code string) (Detail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stock, ok := s.cat.Stock(code)
	if !ok {
		return Detail{}, false
	}
	return Detail{
		Stock:   stock,
		Price:   s.prices[code],
		History: append([]decimal.Decimal(nil), s.history[code]...),
	}, true
}

// ActiveEvents returns a copy of the active global event set.
func (s *State) ActiveEvents() []model.ActiveGlobalEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ActiveGlobalEvent(nil), s.active...)
}

// LastLocalNews returns the latest flash-news text.
func (s *State) LastLocalNews() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastNews
}
