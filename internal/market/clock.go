package market

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DITF16/stockgame/internal/metrics"
)

// startupDelay gives the process a moment to finish wiring before the
// first tick.
const startupDelay = 5 * time.Second

// NewsSink receives the outcome of a tick for fan-out. digest is empty
// when the tick produced no reportable news (or pushing is disabled);
// prices is a copy, safe to retain.
type NewsSink interface {
	PublishTick(ctx context.Context, digest string, prices map[string]decimal.Decimal)
}

// ClockConfig holds the scheduler knobs.
type ClockConfig struct {
	TickInterval      time.Duration
	Cooldown          time.Duration
	GlobalEventChance float64
	LocalEventChance  float64
	BaseVolatility    float64
	EnableNewsPush    bool
}

// Clock drives the market: sleep, tick, repeat. A failed tick is
// logged and followed by a cooldown pause — the loop itself never
// terminates except through context cancellation, which also triggers
// a final state save.
type Clock struct {
	state *State
	cfg   ClockConfig
	rng   *rand.Rand
	sink  NewsSink // may be nil
}

// NewClock creates the market scheduler. rng is injected so tests can
// replay ticks deterministically.
func NewClock(state *State, cfg ClockConfig, rng *rand.Rand, sink NewsSink) *Clock {
	return &Clock{state: state, cfg: cfg, rng: rng, sink: sink}
}

// Run blocks until ctx is canceled.
func (c *Clock) Run(ctx context.Context) {
	if !sleepCtx(ctx, startupDelay) {
		c.finalSave()
		return
	}
	for {
		if !sleepCtx(ctx, c.cfg.TickInterval) {
			c.finalSave()
			return
		}
		if err := c.tick(ctx); err != nil {
			slog.Error("market tick failed", "err", err)
			metrics.TickErrors.Inc()
			if !sleepCtx(ctx, c.cfg.Cooldown) {
				c.finalSave()
				return
			}
		}
	}
}

// Tick runs a single tick immediately. Exposed for tests and for
// operator-triggered refreshes.
func (c *Clock) Tick(ctx context.Context) error {
	return c.tick(ctx)
}

func (c *Clock) tick(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		metrics.TickDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			err = fmt.Errorf("market: tick panic: %v", r)
		}
	}()

	res := c.state.Advance(TickParams{
		GlobalEventChance: c.cfg.GlobalEventChance,
		LocalEventChance:  c.cfg.LocalEventChance,
		BaseVolatility:    c.cfg.BaseVolatility,
	}, c.rng)

	if err := c.state.Persist(ctx, res.Snapshot); err != nil {
		return err
	}

	metrics.TicksTotal.Inc()
	metrics.ActiveGlobalEvents.Set(float64(len(res.Snapshot.ActiveGlobalEvents)))
	slog.Info("market tick",
		"expired", len(res.Expired),
		"triggered", len(res.Triggered),
		"active", len(res.Snapshot.ActiveGlobalEvents),
		"flash", res.LocalNews != "",
	)

	if c.sink != nil {
		digest := ""
		if c.cfg.EnableNewsPush {
			digest = ComposeDigest(res)
		}
		c.sink.PublishTick(ctx, digest, res.Snapshot.Prices)
	}
	return nil
}

// ComposeDigest renders a tick's news as one pushable text block: one
// line per expired event, one per newly triggered global event with its
// duration, and the flash line if a local event fired. Returns "" when
// there is nothing to report.
func ComposeDigest(res TickResult) string {
	var lines []string
	for _, ev := range res.Expired {
		lines = append(lines, "[EXPIRED] "+ev.Content)
	}
	for _, ev := range res.Triggered {
		lines = append(lines, fmt.Sprintf("[GLOBAL] %s (lasts %d ticks)", ev.Content, ev.DurationTicks))
	}
	if res.LocalNews != "" {
		lines = append(lines, res.LocalNews)
	}
	if len(lines) == 0 {
		return ""
	}
	return "Market Bulletin\n" + strings.Join(lines, "\n")
}

// finalSave persists the state once more on shutdown, with its own
// deadline since the run context is already canceled.
func (c *Clock) finalSave() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.state.Save(ctx); err != nil {
		slog.Error("final state save failed", "err", err)
		return
	}
	slog.Info("market clock stopped, state saved")
}

// sleepCtx waits for d or until ctx is canceled; it reports false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
