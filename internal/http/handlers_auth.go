package http

import (
	"net/http"

	"fintracker/internal/auth"
	"fintracker/internal/core"
	applog "fintracker/internal/log"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool          `json:"success"`
	Token   string        `json:"token"`
	User    auth.Identity `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identity, token, err := s.authProvider.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		// One generic answer for every failure mode.
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Login succeeded",
		applog.FieldUserID, identity.Username)
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token, User: identity})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}
	identity, err := s.authProvider.Verify(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]auth.Identity{"user": identity})
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]core.Category{"categories": core.Categories()})
}
