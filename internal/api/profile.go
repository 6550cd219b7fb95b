package api

import (
	"encoding/json"
	"net/http"

	"github.com/tripdeskhq/tripdesk/internal/upload"
)

// handleProfile updates the signed-in profile's editable fields. The avatar
// arrives in whatever shape the form produced — URL string, descriptor or
// list — and is normalized before the first preview URL is stored.
//
// Verification status is deliberately a second, separate call (see
// handleVerification); a partial failure between the two is surfaced by the
// failing call's response rather than rolled back.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "PUT required")
		return
	}
	profile, ok := sessionProfile(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "no_session", "session not found")
		return
	}
	var body struct {
		Name   string       `json:"name"`
		Avatar upload.Value `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "malformed JSON")
		return
	}
	if body.Name != "" {
		profile.Name = body.Name
	}
	if !body.Avatar.IsEmpty() {
		previews := upload.Normalize(body.Avatar)
		if len(previews) > 0 {
			profile.AvatarURL = previews[0].URL
		}
	}
	s.profiles.Put(profile)
	respondJSON(w, http.StatusOK, map[string]any{"step": "profile", "profile": profile})
}

// handleVerification is step two of the profile save flow.
func (s *Server) handleVerification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "PUT required")
		return
	}
	profile, ok := sessionProfile(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "no_session", "session not found")
		return
	}
	var body struct {
		Verified bool `json:"verified"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "malformed JSON")
		return
	}
	profile.Verified = body.Verified
	s.profiles.Put(profile)
	respondJSON(w, http.StatusOK, map[string]any{"step": "verification", "profile": profile})
}
