// Package api exposes the game over HTTP: the command-dispatch endpoint
// the host bot calls, read-only market views, and the WebSocket feed.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/DITF16/stockgame/internal/command"
	"github.com/DITF16/stockgame/internal/ledger"
	"github.com/DITF16/stockgame/internal/market"
	"github.com/DITF16/stockgame/internal/model"
	"github.com/DITF16/stockgame/internal/push"
)

// Server holds the handler dependencies.
type Server struct {
	dispatcher *command.Dispatcher
	market     *market.State
	ledger     *ledger.Ledger
	hub        *push.Hub
}

// NewServer creates the HTTP surface. hub may be nil to disable /ws.
func NewServer(d *command.Dispatcher, mkt *market.State, led *ledger.Ledger, hub *push.Hub) *Server {
	return &Server{dispatcher: d, market: mkt, ledger: led, hub: hub}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		if s.hub != nil {
			r.Get("/ws", s.hub.HandleWS)
		}
		r.Post("/commands", s.HandleCommand)
		r.Get("/market", s.GetMarket)
		r.Get("/stocks/{code}", s.GetStock)
		r.Get("/events", s.GetEvents)
		r.Get("/news", s.GetNews)
		r.Get("/portfolio/{groupID}/{userID}", s.GetPortfolio)
	})
}

// HandleCommand handles POST /api/v1/commands: one parsed chat command
// in, one text reply out.
func (s *Server) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var req command.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Identity.UserID == "" {
		writeError(w, "identity.user_id is required", http.StatusBadRequest)
		return
	}

	reply := s.dispatcher.Dispatch(r.Context(), req)
	writeJSON(w, http.StatusOK, reply)
}

// GetMarket handles GET /api/v1/market.
func (s *Server) GetMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.market.Board())
}

// GetStock handles GET /api/v1/stocks/{code}.
func (s *Server) GetStock(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	detail, ok := s.market.Detail(code)
	if !ok {
		writeError(w, "stock not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GetEvents handles GET /api/v1/events.
func (s *Server) GetEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.market.ActiveEvents())
}

// GetNews handles GET /api/v1/news.
func (s *Server) GetNews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"news": s.market.LastLocalNews()})
}

// GetPortfolio handles GET /api/v1/portfolio/{groupID}/{userID}.
func (s *Server) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	id := model.Identity{
		GroupID: chi.URLParam(r, "groupID"),
		UserID:  chi.URLParam(r, "userID"),
	}
	p, found, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		writeError(w, "failed to load portfolio", http.StatusInternalServerError)
		return
	}
	if !found {
		writeError(w, "portfolio not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
