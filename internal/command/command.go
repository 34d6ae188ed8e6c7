// Package command maps parsed chat commands onto the game engine and
// renders plain-text replies. Chart images and platform-specific
// message formatting are the host bot's concern, not ours.
package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/DITF16/stockgame/internal/catalog"
	"github.com/DITF16/stockgame/internal/ledger"
	"github.com/DITF16/stockgame/internal/market"
	"github.com/DITF16/stockgame/internal/model"
	"github.com/DITF16/stockgame/internal/push"
)

// Request is one parsed chat command.
type Request struct {
	Name     string         `json:"command"`
	Args     []string       `json:"args"`
	Identity model.Identity `json:"identity"`
}

// Reply is the text sent back to the caller.
type Reply struct {
	Text string `json:"text"`
}

// Dispatcher routes command names to handlers.
type Dispatcher struct {
	cat    *catalog.Catalog
	market *market.State
	ledger *ledger.Ledger
	groups *push.Groups
}

// NewDispatcher wires the command surface.
func NewDispatcher(cat *catalog.Catalog, mkt *market.State, led *ledger.Ledger, groups *push.Groups) *Dispatcher {
	return &Dispatcher{cat: cat, market: mkt, ledger: led, groups: groups}
}

const helpText = `Stock Game commands:
  join                 open an account and receive starting cash (group only)
  buy CODE QTY         buy shares, e.g. buy QLAI 10 (group only)
  sell CODE QTY        sell shares, e.g. sell QLAI 10 (group only)
  view-portfolio       your cash and holdings (group only)
  view-market          all stocks with current prices
  view-detail CODE     one stock with its price history
  view-events          active global events moving the market
  view-news            the latest flash event
  enable-push          receive market news in this group (group only)
  disable-push         stop receiving market news here (group only)
  help                 this menu`

// groupRequired lists commands that only make sense inside a group chat.
var groupRequired = map[string]bool{
	"join":           true,
	"buy":            true,
	"sell":           true,
	"view-portfolio": true,
	"enable-push":    true,
	"disable-push":   true,
}

// Dispatch executes one command and returns the reply text. Unknown
// commands and bad arguments produce usage messages, never errors; the
// engine's trade rejections are translated into player-facing text.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Reply {
	if groupRequired[req.Name] && req.Identity.GroupID == "" {
		return Reply{Text: "This command only works in a group chat."}
	}

	switch req.Name {
	case "help", "":
		return Reply{Text: helpText}
	case "join":
		return d.join(ctx, req)
	case "buy":
		return d.trade(ctx, req, d.ledger.Buy, "Bought")
	case "sell":
		return d.trade(ctx, req, d.ledger.Sell, "Sold")
	case "view-portfolio":
		return d.viewPortfolio(ctx, req)
	case "view-market":
		return d.viewMarket()
	case "view-detail":
		return d.viewDetail(req)
	case "view-events":
		return d.viewEvents()
	case "view-news":
		return Reply{Text: "Latest flash news:\n" + d.market.LastLocalNews()}
	case "enable-push":
		return d.setPush(ctx, req, true)
	case "disable-push":
		return d.setPush(ctx, req, false)
	default:
		return Reply{Text: fmt.Sprintf("Unknown command %q. Try 'help'.", req.Name)}
	}
}

func (d *Dispatcher) join(ctx context.Context, req Request) Reply {
	p, created, err := d.ledger.GetOrCreate(ctx, req.Identity)
	if err != nil {
		return Reply{Text: "Could not open your account, please try again later."}
	}
	name := req.Identity.DisplayName
	if !created {
		return Reply{Text: fmt.Sprintf("@%s you already have an account. Cash: $%s.", name, money(p.Cash))}
	}
	return Reply{Text: fmt.Sprintf(
		"@%s welcome aboard!\nStarting cash: $%s\nUse 'help' to see all commands, and 'enable-push' to get market news in this group.",
		name, money(p.Cash))}
}

type tradeFunc func(ctx context.Context, id model.Identity, code string, quantity int64) (ledger.Receipt, error)

func (d *Dispatcher) trade(ctx context.Context, req Request, exec tradeFunc, verb string) Reply {
	if len(req.Args) != 2 {
		return Reply{Text: fmt.Sprintf("Usage: %s CODE QTY, e.g. %s QLAI 10", req.Name, req.Name)}
	}
	code := strings.ToUpper(req.Args[0])
	qty, err := strconv.ParseInt(req.Args[1], 10, 64)
	if err != nil {
		return Reply{Text: fmt.Sprintf("Invalid quantity %q. Example: %s QLAI 10", req.Args[1], req.Name)}
	}

	receipt, err := exec(ctx, req.Identity, code, qty)
	if err != nil {
		return Reply{Text: tradeErrorText(err, code)}
	}
	return Reply{Text: fmt.Sprintf(
		"@%s trade executed!\n%s %d shares of %s\nPrice: $%s\nTotal: $%s\nCash left: $%s",
		req.Identity.DisplayName, verb, receipt.Quantity, receipt.Code,
		money(receipt.Price), money(receipt.Total), money(receipt.Cash))}
}

func tradeErrorText(err error, code string) string {
	switch {
	case errors.Is(err, ledger.ErrNoAccount):
		return "You don't have an account yet. Use 'join' first."
	case errors.Is(err, ledger.ErrInvalidQuantity):
		return "Quantity must be a positive whole number."
	case errors.Is(err, ledger.ErrUnknownStock):
		return fmt.Sprintf("Stock code %s does not exist.", code)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "Not enough cash for that purchase."
	case errors.Is(err, ledger.ErrInsufficientHoldings):
		return fmt.Sprintf("You don't hold that many shares of %s.", code)
	default:
		return "Trade failed, please try again later."
	}
}

func (d *Dispatcher) viewPortfolio(ctx context.Context, req Request) Reply {
	p, found, err := d.ledger.Get(ctx, req.Identity)
	if err != nil {
		return Reply{Text: "Could not load your portfolio, please try again later."}
	}
	if !found {
		return Reply{Text: "You don't have an account yet. Use 'join' first."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Portfolio of @%s\nCash: $%s\n\nHoldings:\n", req.Identity.DisplayName, money(p.Cash))

	total := decimal.Zero
	if len(p.Holdings) == 0 {
		b.WriteString("  (none)\n")
	} else {
		for _, stock := range d.cat.Stocks() {
			qty, ok := p.Holdings[stock.Code]
			if !ok {
				continue
			}
			price, _ := d.market.Quote(stock.Code)
			value := price.Mul(decimal.NewFromInt(qty))
			total = total.Add(value)
			fmt.Fprintf(&b, "  %s %s: %d shares, $%s (@ $%s)\n",
				stock.Code, stock.Name, qty, money(value), money(price))
		}
	}
	fmt.Fprintf(&b, "\nTotal assets (cash + market value): $%s", money(p.Cash.Add(total)))
	return Reply{Text: b.String()}
}

func (d *Dispatcher) viewMarket() Reply {
	var b strings.Builder
	b.WriteString("Market Board\n")
	for _, e := range d.market.Board() {
		change := "   n/a"
		if e.Prev.IsPositive() {
			pct := e.Price.Sub(e.Prev).Div(e.Prev).Mul(decimal.NewFromInt(100)).Round(2)
			switch {
			case pct.IsPositive():
				change = "+" + pct.String() + "%"
			case pct.IsNegative():
				change = pct.String() + "%"
			default:
				change = " 0.00%"
			}
		}
		fmt.Fprintf(&b, "  %-6s %-22s $%-10s %s\n", e.Code, e.Name, money(e.Price), change)
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n")}
}

func (d *Dispatcher) viewDetail(req Request) Reply {
	if len(req.Args) != 1 {
		return Reply{Text: "Usage: view-detail CODE, e.g. view-detail QLAI"}
	}
	code := strings.ToUpper(req.Args[0])
	detail, ok := d.market.Detail(code)
	if !ok {
		return Reply{Text: fmt.Sprintf("Stock code %s does not exist.", code)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\nIndustry: %s\nTags: %s\nPrice: $%s\n",
		detail.Stock.Name, detail.Stock.Code, detail.Stock.Industry,
		strings.Join(detail.Stock.Tags, ", "), money(detail.Price))

	hist := detail.History
	if len(hist) < 2 {
		b.WriteString("Not enough history yet, wait for the next market tick.")
		return Reply{Text: b.String()}
	}
	if len(hist) > 10 {
		hist = hist[len(hist)-10:]
	}
	points := make([]string, len(hist))
	for i, p := range hist {
		points[i] = money(p)
	}
	fmt.Fprintf(&b, "Recent prices: %s", strings.Join(points, " → "))
	return Reply{Text: b.String()}
}

func (d *Dispatcher) viewEvents() Reply {
	events := d.market.ActiveEvents()
	if len(events) == 0 {
		return Reply{Text: "The market is calm: no global events in effect."}
	}

	var b strings.Builder
	b.WriteString("Global events in effect:\n")
	for _, ev := range events {
		mood := "bearish"
		if ev.TrendImpact > 0 {
			mood = "bullish"
		}
		fmt.Fprintf(&b, "  [%s] %s (%d ticks remaining)\n", mood, ev.Content, ev.RemainingTicks)
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n")}
}

func (d *Dispatcher) setPush(ctx context.Context, req Request, enable bool) Reply {
	groupID := req.Identity.GroupID
	if enable {
		changed, err := d.groups.Enable(ctx, groupID)
		if err != nil {
			return Reply{Text: "Could not update push settings, please try again later."}
		}
		if !changed {
			return Reply{Text: "News push is already enabled in this group."}
		}
		return Reply{Text: "Market news push enabled for this group."}
	}

	changed, err := d.groups.Disable(ctx, groupID)
	if err != nil {
		return Reply{Text: "Could not update push settings, please try again later."}
	}
	if !changed {
		return Reply{Text: "News push is not enabled in this group."}
	}
	return Reply{Text: "Market news push disabled for this group."}
}

// money renders a decimal with two places for player-facing text.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
