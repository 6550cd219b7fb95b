package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/tripdeskhq/tripdesk/internal/model"
)

type contextKey string

const profileKey contextKey = "profile"

func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing_token", "authentication required")
			return
		}
		subject, ok := s.signer.Validate(token)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid_token", "session expired or invalid")
			return
		}
		profile, ok := s.profiles.Get(subject)
		if !ok {
			respondError(w, http.StatusUnauthorized, "no_session", "session not found")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), profileKey, profile)))
	}
}

func sessionProfile(r *http.Request) (model.Profile, bool) {
	p, ok := r.Context().Value(profileKey).(model.Profile)
	return p, ok
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "malformed JSON")
		return
	}
	emailOK := subtle.ConstantTimeCompare([]byte(body.Email), []byte(s.cfg.AdminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(body.Password), []byte(s.cfg.AdminPassword)) == 1
	if !emailOK || !passOK {
		respondError(w, http.StatusUnauthorized, "bad_credentials", "email or password incorrect")
		return
	}
	profile := model.Profile{
		ID:    uuid.NewString(),
		Email: body.Email,
		Name:  "Administrator",
		Role:  "admin",
	}
	s.profiles.Put(profile)
	token := s.signer.Issue(profile.ID, s.cfg.SessionTTL)
	respondJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"profile": profile,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}
	if profile, ok := sessionProfile(r); ok {
		s.profiles.Delete(profile.ID)
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
