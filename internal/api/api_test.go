package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/DITF16/stockgame/internal/api"
	"github.com/DITF16/stockgame/internal/catalog"
	"github.com/DITF16/stockgame/internal/command"
	"github.com/DITF16/stockgame/internal/ledger"
	"github.com/DITF16/stockgame/internal/market"
	"github.com/DITF16/stockgame/internal/model"
	"github.com/DITF16/stockgame/internal/push"
	"github.com/DITF16/stockgame/internal/store"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// newTestRouter wires the full command surface over an in-memory store.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	ms := store.NewMemoryStore()
	cat, err := catalog.New([]model.Stock{
		{Code: "QLAI", Name: "Quantum Leap AI", Industry: "tech", InitialPrice: d(100)},
	}, nil, nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	mkt, err := market.NewState(context.Background(), cat, ms)
	if err != nil {
		t.Fatalf("market: %v", err)
	}
	groups, err := push.LoadGroups(context.Background(), ms)
	if err != nil {
		t.Fatalf("groups: %v", err)
	}
	led := ledger.New(ms, mkt, d(10000))
	disp := command.NewDispatcher(cat, mkt, led, groups)

	r := chi.NewRouter()
	api.NewServer(disp, mkt, led, nil).Register(r)
	return r
}

func doCommand(t *testing.T, router chi.Router, req command.Request) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(req)
	httpReq := httptest.NewRequest("POST", "/api/v1/commands", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httpReq)
	return w
}

func get(t *testing.T, router chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

var alice = model.Identity{GroupID: "g1", UserID: "u1", DisplayName: "alice"}

func TestHandleCommand_JoinAndBuy(t *testing.T) {
	router := newTestRouter(t)

	w := doCommand(t, router, command.Request{Name: "join", Identity: alice})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var reply command.Reply
	json.Unmarshal(w.Body.Bytes(), &reply)
	if !strings.Contains(reply.Text, "welcome") {
		t.Errorf("join reply wrong: %q", reply.Text)
	}

	w = doCommand(t, router, command.Request{
		Name: "buy", Args: []string{"QLAI", "10"}, Identity: alice,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &reply)
	if !strings.Contains(reply.Text, "Bought 10 shares of QLAI") {
		t.Errorf("buy reply wrong: %q", reply.Text)
	}
}

func TestHandleCommand_BadRequests(t *testing.T) {
	router := newTestRouter(t)

	// Malformed body.
	httpReq := httptest.NewRequest("POST", "/api/v1/commands", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httpReq)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", w.Code)
	}

	// Missing identity.
	w = doCommand(t, router, command.Request{Name: "help"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing identity: expected 400, got %d", w.Code)
	}
}

func TestGetMarket(t *testing.T) {
	router := newTestRouter(t)

	w := get(t, router, "/api/v1/market")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var board []market.BoardEntry
	json.Unmarshal(w.Body.Bytes(), &board)
	if len(board) != 1 || board[0].Code != "QLAI" {
		t.Errorf("unexpected board: %+v", board)
	}
	if !board[0].Price.Equal(d(100)) {
		t.Errorf("expected price 100, got %s", board[0].Price)
	}
}

func TestGetStock(t *testing.T) {
	router := newTestRouter(t)

	// Codes are case-insensitive in the path.
	w := get(t, router, "/api/v1/stocks/qlai")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var detail market.Detail
	json.Unmarshal(w.Body.Bytes(), &detail)
	if detail.Stock.Code != "QLAI" || len(detail.History) != 1 {
		t.Errorf("unexpected detail: %+v", detail)
	}

	if w := get(t, router, "/api/v1/stocks/NOPE"); w.Code != http.StatusNotFound {
		t.Errorf("unknown stock: expected 404, got %d", w.Code)
	}
}

func TestGetPortfolio(t *testing.T) {
	router := newTestRouter(t)

	if w := get(t, router, "/api/v1/portfolio/g1/u1"); w.Code != http.StatusNotFound {
		t.Errorf("before join: expected 404, got %d", w.Code)
	}

	doCommand(t, router, command.Request{Name: "join", Identity: alice})

	w := get(t, router, "/api/v1/portfolio/g1/u1")
	if w.Code != http.StatusOK {
		t.Fatalf("after join: expected 200, got %d", w.Code)
	}
	var p model.Portfolio
	json.Unmarshal(w.Body.Bytes(), &p)
	if !p.Cash.Equal(d(10000)) {
		t.Errorf("expected 10000 cash, got %s", p.Cash)
	}
}

func TestGetNewsAndEvents(t *testing.T) {
	router := newTestRouter(t)

	w := get(t, router, "/api/v1/news")
	if w.Code != http.StatusOK {
		t.Fatalf("news: expected 200, got %d", w.Code)
	}
	var news map[string]string
	json.Unmarshal(w.Body.Bytes(), &news)
	if news["news"] == "" {
		t.Error("news field should never be empty")
	}

	w = get(t, router, "/api/v1/events")
	if w.Code != http.StatusOK {
		t.Fatalf("events: expected 200, got %d", w.Code)
	}
	var events []model.ActiveGlobalEvent
	json.Unmarshal(w.Body.Bytes(), &events)
	if len(events) != 0 {
		t.Errorf("fresh game should have no active events, got %+v", events)
	}
}
