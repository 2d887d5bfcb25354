package chi

import (
	"encoding/json"
	"net/http"

	agentuc "github.com/cinedex/cinedex/internal/usecase/agent"
)

// AgentChat handles POST /api/agent/chat.
func (s *Server) AgentChat(w http.ResponseWriter, r *http.Request) {
	if s.agent == nil {
		writeError(w, http.StatusServiceUnavailable, codeAgentUnavailable, "chat agent is not configured")
		return
	}

	caller, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing session")
		return
	}

	var req struct {
		Message string            `json:"message"`
		History []agentuc.Message `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	answer, err := s.agent.Chat(r.Context(), caller, req.Message, req.History)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}
