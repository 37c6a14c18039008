package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *OpsServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/tickets", s.handleListTickets)
	mux.HandleFunc("GET /v1/tickets/{id}", s.handleGetTicket)
	mux.HandleFunc("GET /v1/channels/{channel_id}/ticket", s.handleGetChannelTicket)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *OpsServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !s.ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTickets handles GET /v1/tickets.
func (s *OpsServer) handleListTickets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter model.TicketFilter

	if v := q.Get("pending"); v != "" {
		pending, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "pending must be true or false")
			return
		}
		filter.Pending = &pending
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	tickets, err := s.store.ListTickets(r.Context(), filter)
	if err != nil {
		s.logger.Error("list tickets failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list tickets")
		return
	}
	if tickets == nil {
		tickets = []*model.Ticket{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tickets": tickets,
		"total":   len(tickets),
	})
}

// handleGetTicket handles GET /v1/tickets/{id}.
func (s *OpsServer) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := s.store.GetTicket(r.Context(), r.PathValue("id"))
	s.writeTicket(w, ticket, err)
}

// handleGetChannelTicket handles GET /v1/channels/{channel_id}/ticket.
func (s *OpsServer) handleGetChannelTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := s.store.GetTicketByChannel(r.Context(), r.PathValue("channel_id"))
	s.writeTicket(w, ticket, err)
}

func (s *OpsServer) writeTicket(w http.ResponseWriter, ticket *model.Ticket, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "ticket not found")
		return
	}
	if err != nil {
		s.logger.Error("get ticket failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to get ticket")
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
