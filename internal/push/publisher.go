package push

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DITF16/stockgame/internal/metrics"
)

// Deliverer sends a text message to one destination (a chat group).
// The host messaging platform provides the real implementation.
type Deliverer interface {
	Deliver(ctx context.Context, destination, text string) error
}

// LogDeliverer is the default Deliverer when no messaging platform is
// attached: it just logs what would be sent.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(_ context.Context, destination, text string) error {
	slog.Info("news push", "group", destination, "chars", len(text))
	return nil
}

// Publisher fans a tick's news out to every opted-in group and to the
// WebSocket hub. It implements market.NewsSink.
type Publisher struct {
	groups *Groups
	out    Deliverer
	hub    *Hub // optional
	delay  time.Duration
}

// NewPublisher wires a publisher. hub may be nil; delay paces group
// deliveries to respect outbound rate limits.
func NewPublisher(groups *Groups, out Deliverer, hub *Hub, delay time.Duration) *Publisher {
	return &Publisher{groups: groups, out: out, hub: hub, delay: delay}
}

// PublishTick broadcasts the tick to WebSocket clients and, when there
// is a digest, delivers it to each group. A failed delivery is logged
// and skipped; it never aborts the remaining destinations or the tick.
func (p *Publisher) PublishTick(ctx context.Context, digest string, prices map[string]decimal.Decimal) {
	if p.hub != nil {
		p.hub.BroadcastTick(digest, prices)
	}
	if digest == "" {
		return
	}

	groups := p.groups.List()
	slog.Info("pushing news", "groups", len(groups))
	for i, groupID := range groups {
		if err := p.out.Deliver(ctx, groupID, digest); err != nil {
			slog.Warn("news push failed", "group", groupID, "err", err)
			metrics.NewsPushFailures.Inc()
			continue
		}
		metrics.NewsPushesTotal.Inc()

		if i < len(groups)-1 {
			timer := time.NewTimer(p.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}
}
