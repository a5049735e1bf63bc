package api

import (
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/theLastOfCats/novel-library-server/internal/auth"
)

// AuthHandler exchanges the admin password for a bearer token.
type AuthHandler struct {
	Tokens            *auth.TokenService
	AdminPasswordHash string
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Tokens == nil || h.AdminPasswordHash == "" {
		JSONError(w, "Authentication is disabled", http.StatusNotFound)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		JSONError(w, "Password is required", http.StatusBadRequest)
		return
	}

	match, err := auth.VerifyPassword(req.Password, h.AdminPasswordHash)
	if err != nil {
		log.WithError(err).Error("Login: cannot verify admin password")
		JSONError(w, "Error verifying password", http.StatusInternalServerError)
		return
	}
	if !match {
		log.WithField("remote", r.RemoteAddr).Warn("Login: invalid credentials")
		JSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, exp, err := h.Tokens.Sign(auth.AdminSubject)
	if err != nil {
		log.WithError(err).Error("Login: failed to sign token")
		JSONError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: exp.Unix()})
}
