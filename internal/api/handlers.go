package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/trollornot/troll-analyzer/internal/auth"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

type loginRequest struct {
	Key string `json:"key"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// handleAdminLogin exchanges the admin key for a JWT.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Key == "" {
		respondError(w, http.StatusBadRequest, "Admin key is required")
		return
	}

	token, err := s.authService.Login(req.Key)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid admin key")
			return
		}
		s.logger.Error("admin login failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{Success: true, Token: token})
}
