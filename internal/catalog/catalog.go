// Package catalog loads and validates the read-only game data: the
// stock list and the global/local event templates. Malformed entries
// are rejected at load time rather than failing later inside a tick.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sort"

	"github.com/DITF16/stockgame/internal/model"
	"github.com/DITF16/stockgame/internal/store"
)

// Document names under which the catalogs are persisted.
const (
	DocStocks       = "stocks"
	DocGlobalEvents = "events_global"
	DocLocalEvents  = "events_local"
)

// ErrNoStocks is returned when the stock catalog is empty. The
// simulation cannot run without stocks; this is the one unrecoverable
// startup condition.
var ErrNoStocks = errors.New("catalog: no stocks defined")

// codeRegex constrains stock codes to short uppercase tickers.
var codeRegex = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// Catalog holds the validated, immutable game data.
type Catalog struct {
	stocks  []model.Stock
	byCode  map[string]model.Stock
	globals []model.GlobalEventTemplate
	locals  []model.LocalEventTemplate
}

// New validates the given data and builds a Catalog. Stocks are kept
// sorted by code so iteration order is deterministic.
func New(stocks []model.Stock, globals []model.GlobalEventTemplate, locals []model.LocalEventTemplate) (*Catalog, error) {
	if len(stocks) == 0 {
		return nil, ErrNoStocks
	}

	byCode := make(map[string]model.Stock, len(stocks))
	for _, s := range stocks {
		if !codeRegex.MatchString(s.Code) {
			return nil, fmt.Errorf("catalog: stock %q: invalid code", s.Code)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("catalog: stock %q: name is required", s.Code)
		}
		if !s.InitialPrice.IsPositive() {
			return nil, fmt.Errorf("catalog: stock %q: initial price must be positive, got %s", s.Code, s.InitialPrice)
		}
		if _, dup := byCode[s.Code]; dup {
			return nil, fmt.Errorf("catalog: duplicate stock code %q", s.Code)
		}
		byCode[s.Code] = s
	}

	sorted := make([]model.Stock, 0, len(byCode))
	for _, s := range byCode {
		sorted = append(sorted, s)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	for i, e := range globals {
		if e.Content == "" {
			return nil, fmt.Errorf("catalog: global event #%d: content is required", i)
		}
		if e.DurationTicks < 1 {
			return nil, fmt.Errorf("catalog: global event #%d: duration must be at least 1 tick, got %d", i, e.DurationTicks)
		}
		if len(e.AffectedIndustries) == 0 && len(e.AffectedTags) == 0 {
			return nil, fmt.Errorf("catalog: global event #%d: must affect at least one industry or tag", i)
		}
	}
	for i, e := range locals {
		if e.Content == "" {
			return nil, fmt.Errorf("catalog: local event #%d: content is required", i)
		}
		if len(e.AffectedCodes) == 0 && len(e.AffectedTags) == 0 {
			return nil, fmt.Errorf("catalog: local event #%d: must affect at least one code or tag", i)
		}
	}

	return &Catalog{
		stocks:  sorted,
		byCode:  byCode,
		globals: globals,
		locals:  locals,
	}, nil
}

// Load reads the catalogs from the store. Missing documents are seeded
// with the built-in defaults and written back, so a fresh deployment is
// playable without hand-written data files.
func Load(ctx context.Context, st store.Store) (*Catalog, error) {
	stocks, err := loadOrSeed(ctx, st, DocStocks, defaultStocks())
	if err != nil {
		return nil, err
	}
	globals, err := loadOrSeed(ctx, st, DocGlobalEvents, defaultGlobalEvents())
	if err != nil {
		return nil, err
	}
	locals, err := loadOrSeed(ctx, st, DocLocalEvents, defaultLocalEvents())
	if err != nil {
		return nil, err
	}
	return New(stocks, globals, locals)
}

func loadOrSeed[T any](ctx context.Context, st store.Store, name string, defaults []T) ([]T, error) {
	var items []T
	found, err := st.Load(ctx, name, &items)
	if err != nil {
		return nil, err
	}
	if !found {
		if err := st.Save(ctx, name, defaults); err != nil {
			return nil, fmt.Errorf("catalog: seed %s: %w", name, err)
		}
		return defaults, nil
	}
	return items, nil
}

// Stocks returns all stocks, sorted by code.
func (c *Catalog) Stocks() []model.Stock {
	return c.stocks
}

// Stock looks up one stock by code.
func (c *Catalog) Stock(code string) (model.Stock, bool) {
	s, ok := c.byCode[code]
	return s, ok
}

// SampleGlobal picks one global event template uniformly at random.
// An empty catalog yields no event, not an error.
func (c *Catalog) SampleGlobal(rng *rand.Rand) (model.GlobalEventTemplate, bool) {
	if len(c.globals) == 0 {
		return model.GlobalEventTemplate{}, false
	}
	return c.globals[rng.Intn(len(c.globals))], true
}

// SampleLocal picks one local event template uniformly at random.
func (c *Catalog) SampleLocal(rng *rand.Rand) (model.LocalEventTemplate, bool) {
	if len(c.locals) == 0 {
		return model.LocalEventTemplate{}, false
	}
	return c.locals[rng.Intn(len(c.locals))], true
}
