package push_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DITF16/stockgame/internal/push"
	"github.com/DITF16/stockgame/internal/store"
)

func TestGroups_EnableDisable(t *testing.T) {
	ms := store.NewMemoryStore()
	g, err := push.LoadGroups(context.Background(), ms)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	changed, err := g.Enable(context.Background(), "g1")
	if err != nil || !changed {
		t.Fatalf("first enable: changed=%v err=%v", changed, err)
	}
	changed, err = g.Enable(context.Background(), "g1")
	if err != nil || changed {
		t.Fatalf("second enable should be a no-op: changed=%v err=%v", changed, err)
	}
	if !g.Contains("g1") {
		t.Error("g1 should be enabled")
	}

	changed, err = g.Disable(context.Background(), "g1")
	if err != nil || !changed {
		t.Fatalf("disable: changed=%v err=%v", changed, err)
	}
	changed, err = g.Disable(context.Background(), "g1")
	if err != nil || changed {
		t.Fatalf("second disable should be a no-op: changed=%v err=%v", changed, err)
	}
}

func TestGroups_PersistedAcrossRestarts(t *testing.T) {
	ms := store.NewMemoryStore()
	g, err := push.LoadGroups(context.Background(), ms)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := g.Enable(context.Background(), "g2"); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if _, err := g.Enable(context.Background(), "g1"); err != nil {
		t.Fatalf("enable: %v", err)
	}

	restored, err := push.LoadGroups(context.Background(), ms)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	list := restored.List()
	if len(list) != 2 || list[0] != "g1" || list[1] != "g2" {
		t.Errorf("expected sorted [g1 g2] after restart, got %v", list)
	}
}

// recordingDeliverer captures deliveries and can fail specific groups.
type recordingDeliverer struct {
	delivered []string
	failFor   map[string]bool
}

func (r *recordingDeliverer) Deliver(_ context.Context, destination, _ string) error {
	if r.failFor[destination] {
		return errors.New("platform unavailable")
	}
	r.delivered = append(r.delivered, destination)
	return nil
}

func newTestGroups(t *testing.T, ids ...string) *push.Groups {
	t.Helper()
	g, err := push.LoadGroups(context.Background(), store.NewMemoryStore())
	if err != nil {
		t.Fatalf("load groups: %v", err)
	}
	for _, id := range ids {
		if _, err := g.Enable(context.Background(), id); err != nil {
			t.Fatalf("enable %s: %v", id, err)
		}
	}
	return g
}

func TestPublishTick_DeliversToAllGroups(t *testing.T) {
	out := &recordingDeliverer{}
	p := push.NewPublisher(newTestGroups(t, "g1", "g2", "g3"), out, nil, time.Millisecond)

	p.PublishTick(context.Background(), "Market Bulletin\nnews", nil)

	if len(out.delivered) != 3 {
		t.Errorf("expected 3 deliveries, got %v", out.delivered)
	}
}

func TestPublishTick_FailureIsolatedPerGroup(t *testing.T) {
	out := &recordingDeliverer{failFor: map[string]bool{"g2": true}}
	p := push.NewPublisher(newTestGroups(t, "g1", "g2", "g3"), out, nil, time.Millisecond)

	p.PublishTick(context.Background(), "Market Bulletin\nnews", nil)

	if len(out.delivered) != 2 {
		t.Errorf("failing group must not block the rest, got %v", out.delivered)
	}
}

func TestPublishTick_EmptyDigestSkipsDelivery(t *testing.T) {
	out := &recordingDeliverer{}
	p := push.NewPublisher(newTestGroups(t, "g1"), out, nil, time.Millisecond)

	p.PublishTick(context.Background(), "", nil)

	if len(out.delivered) != 0 {
		t.Errorf("empty digest should deliver nothing, got %v", out.delivered)
	}
}

func TestPublishTick_CanceledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := &recordingDeliverer{}
	p := push.NewPublisher(newTestGroups(t, "g1", "g2"), out, nil, time.Second)

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.PublishTick(ctx, "Market Bulletin\nnews", nil)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish did not stop after cancellation")
	}
}
