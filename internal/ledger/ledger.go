// Package ledger implements per-identity portfolios and the buy/sell
// state transitions. Trades execute under the same market lock the tick
// uses, so a price can never change or tear mid-transaction.
//
// All monetary values use shopspring/decimal — never float64 for money.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/DITF16/stockgame/internal/market"
	"github.com/DITF16/stockgame/internal/metrics"
	"github.com/DITF16/stockgame/internal/model"
	"github.com/DITF16/stockgame/internal/store"
)

var (
	// ErrNoAccount is returned when the identity has not joined yet.
	ErrNoAccount = errors.New("ledger: no account, join first")

	// ErrInvalidQuantity is returned for zero or negative share counts.
	ErrInvalidQuantity = errors.New("ledger: quantity must be a positive integer")

	// ErrUnknownStock is returned when the code has no current price.
	ErrUnknownStock = errors.New("ledger: unknown stock code")

	// ErrInsufficientFunds is returned when cash cannot cover the cost.
	ErrInsufficientFunds = errors.New("ledger: insufficient cash")

	// ErrInsufficientHoldings is returned when selling more than held.
	ErrInsufficientHoldings = errors.New("ledger: insufficient holdings")
)

// Ledger manages portfolio documents in the store. A single mutex
// serializes portfolio read-modify-write cycles (single-instance); the
// market lock is additionally acquired for the pricing-dependent part
// of each trade.
type Ledger struct {
	st           store.Store
	market       *market.State
	startingCash decimal.Decimal
	mu           sync.Mutex
}

// New creates a ledger backed by the given store and market state.
func New(st store.Store, mkt *market.State, startingCash decimal.Decimal) *Ledger {
	return &Ledger{st: st, market: mkt, startingCash: startingCash}
}

func portfolioDoc(id model.Identity) string {
	return "portfolio_" + id.Key()
}

// Receipt describes an executed trade: the price in effect at call
// time, the total cost or proceeds, and the cash balance afterwards.
type Receipt struct {
	Code     string          `json:"code"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
	Cash     decimal.Decimal `json:"cash"`
}

// Get loads an identity's portfolio without creating one.
func (l *Ledger) Get(ctx context.Context, id model.Identity) (model.Portfolio, bool, error) {
	var p model.Portfolio
	found, err := l.st.Load(ctx, portfolioDoc(id), &p)
	if err != nil {
		return model.Portfolio{}, false, err
	}
	if found && p.Holdings == nil {
		p.Holdings = make(map[string]int64)
	}
	return p, found, nil
}

// GetOrCreate returns the existing portfolio verbatim, or creates one
// with the configured starting cash. Idempotent: repeated calls never
// re-grant starting cash. The second return reports whether a new
// account was created.
func (l *Ledger) GetOrCreate(ctx context.Context, id model.Identity) (model.Portfolio, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, found, err := l.Get(ctx, id)
	if err != nil {
		return model.Portfolio{}, false, err
	}
	if found {
		return p, false, nil
	}

	p = model.Portfolio{Cash: l.startingCash, Holdings: make(map[string]int64)}
	l.persist(ctx, id, p)
	return p, true, nil
}

// Buy purchases quantity shares of code at the current market price.
// All-or-nothing: on any rejection the portfolio is untouched.
func (l *Ledger) Buy(ctx context.Context, id model.Identity, code string, quantity int64) (Receipt, error) {
	if quantity <= 0 {
		metrics.TradeRejections.WithLabelValues("invalid_quantity").Inc()
		return Receipt{}, ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, found, err := l.Get(ctx, id)
	if err != nil {
		return Receipt{}, err
	}
	if !found {
		return Receipt{}, ErrNoAccount
	}

	var receipt Receipt
	err = l.market.Transact(func(quote market.QuoteFunc) error {
		price, ok := quote(code)
		if !ok {
			metrics.TradeRejections.WithLabelValues("unknown_stock").Inc()
			return fmt.Errorf("%w: %s", ErrUnknownStock, code)
		}

		cost := price.Mul(decimal.NewFromInt(quantity))
		if p.Cash.LessThan(cost) {
			metrics.TradeRejections.WithLabelValues("insufficient_funds").Inc()
			return fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, cost, p.Cash)
		}

		p.Cash = p.Cash.Sub(cost)
		p.Holdings[code] += quantity
		receipt = Receipt{Code: code, Quantity: quantity, Price: price, Total: cost, Cash: p.Cash}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	l.persist(ctx, id, p)
	metrics.TradesTotal.WithLabelValues("buy").Inc()
	slog.Info("trade executed",
		"side", "buy", "user", id.UserID, "group", id.GroupID,
		"code", code, "qty", quantity,
		"price", receipt.Price.String(), "cost", receipt.Total.String(),
	)
	return receipt, nil
}

// Sell disposes of quantity shares of code at the current market price.
// A holding that reaches exactly zero is removed from the portfolio.
func (l *Ledger) Sell(ctx context.Context, id model.Identity, code string, quantity int64) (Receipt, error) {
	if quantity <= 0 {
		metrics.TradeRejections.WithLabelValues("invalid_quantity").Inc()
		return Receipt{}, ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, found, err := l.Get(ctx, id)
	if err != nil {
		return Receipt{}, err
	}
	if !found {
		return Receipt{}, ErrNoAccount
	}

	held := p.Holdings[code]
	if held < quantity {
		metrics.TradeRejections.WithLabelValues("insufficient_holdings").Inc()
		return Receipt{}, fmt.Errorf("%w: have %d shares of %s", ErrInsufficientHoldings, held, code)
	}

	var receipt Receipt
	err = l.market.Transact(func(quote market.QuoteFunc) error {
		price, ok := quote(code)
		if !ok {
			metrics.TradeRejections.WithLabelValues("unknown_stock").Inc()
			return fmt.Errorf("%w: %s", ErrUnknownStock, code)
		}

		proceeds := price.Mul(decimal.NewFromInt(quantity))
		p.Cash = p.Cash.Add(proceeds)
		if held == quantity {
			delete(p.Holdings, code)
		} else {
			p.Holdings[code] = held - quantity
		}
		receipt = Receipt{Code: code, Quantity: quantity, Price: price, Total: proceeds, Cash: p.Cash}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	l.persist(ctx, id, p)
	metrics.TradesTotal.WithLabelValues("sell").Inc()
	slog.Info("trade executed",
		"side", "sell", "user", id.UserID, "group", id.GroupID,
		"code", code, "qty", quantity,
		"price", receipt.Price.String(), "proceeds", receipt.Total.String(),
	)
	return receipt, nil
}

// persist writes the portfolio, fire-and-forget: a failed write is
// logged but the trade has already executed and is reported as such.
func (l *Ledger) persist(ctx context.Context, id model.Identity, p model.Portfolio) {
	if err := l.st.Save(ctx, portfolioDoc(id), p); err != nil {
		slog.Warn("portfolio save failed", "identity", id.Key(), "err", err)
	}
}
