package catalog_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/DITF16/stockgame/internal/catalog"
	"github.com/DITF16/stockgame/internal/model"
	"github.com/DITF16/stockgame/internal/store"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func validStocks() []model.Stock {
	return []model.Stock{
		{Code: "VTAL", Name: "Vitality Labs", Industry: "biotech", InitialPrice: d(50)},
		{Code: "QLAI", Name: "Quantum Leap AI", Industry: "tech", Tags: []string{"ai"}, InitialPrice: d(100)},
	}
}

func TestNew_SortsStocksByCode(t *testing.T) {
	cat, err := catalog.New(validStocks(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stocks := cat.Stocks()
	if len(stocks) != 2 {
		t.Fatalf("expected 2 stocks, got %d", len(stocks))
	}
	if stocks[0].Code != "QLAI" || stocks[1].Code != "VTAL" {
		t.Errorf("stocks not sorted by code: %s, %s", stocks[0].Code, stocks[1].Code)
	}
}

func TestNew_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		stocks  []model.Stock
		globals []model.GlobalEventTemplate
		locals  []model.LocalEventTemplate
	}{
		{name: "no stocks", stocks: nil},
		{
			name:   "lowercase code",
			stocks: []model.Stock{{Code: "qlai", Name: "X", InitialPrice: d(1)}},
		},
		{
			name:   "missing name",
			stocks: []model.Stock{{Code: "QLAI", InitialPrice: d(1)}},
		},
		{
			name:   "zero initial price",
			stocks: []model.Stock{{Code: "QLAI", Name: "X", InitialPrice: decimal.Zero}},
		},
		{
			name: "duplicate code",
			stocks: []model.Stock{
				{Code: "QLAI", Name: "X", InitialPrice: d(1)},
				{Code: "QLAI", Name: "Y", InitialPrice: d(2)},
			},
		},
		{
			name:    "global event without targets",
			stocks:  validStocks(),
			globals: []model.GlobalEventTemplate{{Content: "x", TrendImpact: 0.1, DurationTicks: 2}},
		},
		{
			name:   "global event with zero duration",
			stocks: validStocks(),
			globals: []model.GlobalEventTemplate{
				{Content: "x", AffectedIndustries: []string{"tech"}, TrendImpact: 0.1},
			},
		},
		{
			name:   "local event without content",
			stocks: validStocks(),
			locals: []model.LocalEventTemplate{{AffectedCodes: []string{"QLAI"}, DirectImpactPercent: 0.1}},
		},
		{
			name:   "local event without targets",
			stocks: validStocks(),
			locals: []model.LocalEventTemplate{{Content: "x", DirectImpactPercent: 0.1}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := catalog.New(tc.stocks, tc.globals, tc.locals); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestNew_NoStocksSentinel(t *testing.T) {
	_, err := catalog.New(nil, nil, nil)
	if !errors.Is(err, catalog.ErrNoStocks) {
		t.Errorf("expected ErrNoStocks, got %v", err)
	}
}

func TestLoad_SeedsDefaultsOnFirstRun(t *testing.T) {
	ms := store.NewMemoryStore()

	cat, err := catalog.Load(context.Background(), ms)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cat.Stocks()) == 0 {
		t.Fatal("defaults should include stocks")
	}

	// The seeded documents must be written back so operators can edit them.
	for _, doc := range []string{catalog.DocStocks, catalog.DocGlobalEvents, catalog.DocLocalEvents} {
		var raw any
		found, err := ms.Load(context.Background(), doc, &raw)
		if err != nil || !found {
			t.Errorf("document %q should be seeded, found=%v err=%v", doc, found, err)
		}
	}
}

func TestLoad_PrefersStoredData(t *testing.T) {
	ms := store.NewMemoryStore()
	custom := []model.Stock{{Code: "ONLY", Name: "Only Stock", InitialPrice: d(5)}}
	if err := ms.Save(context.Background(), catalog.DocStocks, custom); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	cat, err := catalog.Load(context.Background(), ms)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cat.Stocks()) != 1 || cat.Stocks()[0].Code != "ONLY" {
		t.Errorf("stored stocks should win over defaults, got %d stocks", len(cat.Stocks()))
	}
}

func TestSample_EmptyCatalogs(t *testing.T) {
	cat, err := catalog.New(validStocks(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	if _, ok := cat.SampleGlobal(rng); ok {
		t.Error("empty global catalog should sample nothing")
	}
	if _, ok := cat.SampleLocal(rng); ok {
		t.Error("empty local catalog should sample nothing")
	}
}

func TestStock_Lookup(t *testing.T) {
	cat, err := catalog.New(validStocks(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := cat.Stock("QLAI"); !ok {
		t.Error("QLAI should exist")
	}
	if _, ok := cat.Stock("NOPE"); ok {
		t.Error("NOPE should not exist")
	}
}
