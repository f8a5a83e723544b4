package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxRequestBytes = 64 << 10

// Response envelope values
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusHealthy = "healthy"
)

// EmptyMessageError is the error text for a blank /chat message
const EmptyMessageError = "Message cannot be empty"

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

type clearResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
	App    string `json:"app"`
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Message) == "" {
		s.metrics.rejected.Inc()
		respondError(w, http.StatusBadRequest, EmptyMessageError)
		return
	}

	reply := s.history.Exchange(payload.Message, Reply)
	s.logger.Debug("chat reply",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("message_len", len(payload.Message)),
		zap.Int("history_len", s.history.Len()))

	respondJSON(w, http.StatusOK, chatResponse{Status: StatusSuccess, Response: reply})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	n := s.history.Clear()
	s.logger.Debug("conversation cleared",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("dropped", n))
	respondJSON(w, http.StatusOK, clearResponse{Status: StatusSuccess, Message: "Conversation cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: StatusHealthy, App: AppName})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Status: StatusError, Error: message})
}
