// Package push fans tick news out to the groups that opted in, plus any
// connected WebSocket clients. Delivery failures are isolated per
// destination and never fail the tick.
package push

import (
	"context"
	"sort"
	"sync"

	"github.com/DITF16/stockgame/internal/store"
)

// GroupsDoc is the document name for the opted-in group set.
const GroupsDoc = "playing_groups"

// Groups is the set of group ids that receive news pushes. Mutations
// are persisted immediately.
type Groups struct {
	st  store.Store
	mu  sync.Mutex
	ids map[string]struct{}
}

// LoadGroups restores the set from the store; missing means empty.
func LoadGroups(ctx context.Context, st store.Store) (*Groups, error) {
	var list []string
	if _, err := st.Load(ctx, GroupsDoc, &list); err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(list))
	for _, id := range list {
		ids[id] = struct{}{}
	}
	return &Groups{st: st, ids: ids}, nil
}

// Enable opts a group in. Returns false if it was already enabled.
func (g *Groups) Enable(ctx context.Context, groupID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.ids[groupID]; ok {
		return false, nil
	}
	g.ids[groupID] = struct{}{}
	return true, g.persistLocked(ctx)
}

// Disable opts a group out. Returns false if it was not enabled.
func (g *Groups) Disable(ctx context.Context, groupID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.ids[groupID]; !ok {
		return false, nil
	}
	delete(g.ids, groupID)
	return true, g.persistLocked(ctx)
}

// Contains reports whether the group is opted in.
func (g *Groups) Contains(groupID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.ids[groupID]
	return ok
}

// List returns the opted-in group ids, sorted.
func (g *Groups) List() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	list := make([]string, 0, len(g.ids))
	for id := range g.ids {
		list = append(list, id)
	}
	sort.Strings(list)
	return list
}

func (g *Groups) persistLocked(ctx context.Context) error {
	list := make([]string, 0, len(g.ids))
	for id := range g.ids {
		list = append(list, id)
	}
	sort.Strings(list)
	return g.st.Save(ctx, GroupsDoc, list)
}
