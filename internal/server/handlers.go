package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"retailiq/internal/session"
)

func (s *Server) buildMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc("/api/sessions/", s.handleSessionByID)
	mux.HandleFunc("/api/ask", s.handleAsk)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/examples", s.handleExamples)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/chat", s.handleChatWS)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"created_at": sess.CreatedAt,
	})
}

// handleSessionByID serves /api/sessions/{id} and /api/sessions/{id}/reset.
func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	switch {
	case action == "reset" && r.Method == http.MethodPost:
		if err := s.sessions.Reset(id); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "reset": true})
	case action == "" && r.Method == http.MethodGet:
		sess, err := s.sessions.Get(id)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		sess.Lock()
		defer sess.Unlock()
		writeJSON(w, http.StatusOK, sess)
	case action == "" && r.Method == http.MethodDelete:
		if err := s.sessions.Delete(id); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "deleted": true})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type askRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Question  string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in askRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	question := strings.TrimSpace(in.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	sess, err := s.resolveSession(in.SessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	ans, err := s.agent.Ask(r.Context(), sess, question)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"answer":     ans,
	})
}

// resolveSession returns the named session, or a fresh one when no id is given.
func (s *Server) resolveSession(id string) (*session.Session, error) {
	if strings.TrimSpace(id) == "" {
		return s.sessions.Create(), nil
	}
	return s.sessions.Get(id)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.agent.Summary())
}

// exampleQuestions seed the client's welcome screen.
var exampleQuestions = []string{
	"How did each division perform year over year?",
	"Which brands dominate each category?",
	"Show me the sales forecast for the next twelve months",
	"Are there any products with unusual margins?",
	"What seasonal patterns do our sales follow?",
	"Which region is growing fastest?",
	"Give me an executive overview of the business",
	"What happens to revenue if we raise prices 10%?",
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": exampleQuestions})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	status := "ok"
	detail, err := s.llm.Verify(r.Context())
	if err != nil {
		status = "degraded"
		detail = err.Error()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"llm":      s.llm.Name(),
		"detail":   detail,
		"sessions": s.sessions.Len(),
	})
}
