package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/conversation"
	"github.com/elyxhealth/careteam/internal/issues"
)

type messageRequest struct {
	Sender  string         `json:"sender"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
	// UseCrewAI is accepted for compatibility with older clients and ignored.
	UseCrewAI bool `json:"use_crewai,omitempty"`
}

type weekRequest struct {
	Week int `json:"week,omitempty"`
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/messages", s.handlePostMessage)
		r.Get("/conversation", s.handleGetConversation)
		r.Get("/issues", s.handleGetIssues)
		r.Route("/journey", func(r chi.Router) {
			r.Get("/state", s.handleGetJourneyState)
			r.Post("/week", s.handlePostWeek)
		})
	})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Sender) == "" || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "sender and message are required", http.StatusBadRequest)
		return
	}
	if req.UseCrewAI {
		s.logger.Warn("use_crewai requested but unsupported; using built-in routing")
	}

	res, err := s.pipeline.Process(r.Context(), req.Sender, req.Message, req.Context)
	if err != nil {
		s.logger.Error("message processing failed", zap.Error(err))
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	history, err := s.pipeline.Log().History()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []conversation.Message{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleGetIssues(w http.ResponseWriter, r *http.Request) {
	list, err := s.issues.List(r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []issues.Issue{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetJourneyState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.machine.State())
}

func (s *Server) handlePostWeek(w http.ResponseWriter, r *http.Request) {
	var req weekRequest
	if r.Body != nil {
		// An empty body means "simulate the next week".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	week := req.Week
	if week == 0 {
		week = s.machine.State().CurrentWeek
	}
	if week < 1 || week > s.machine.State().TotalWeeks {
		http.Error(w, "week out of range", http.StatusBadRequest)
		return
	}

	report, err := s.machine.SimulateWeek(r.Context(), week)
	if err != nil {
		s.logger.Error("week simulation failed", zap.Int("week", week), zap.Error(err))
		http.Error(w, "simulation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
