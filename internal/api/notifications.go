package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tripdeskhq/tripdesk/internal/model"
	"github.com/tripdeskhq/tripdesk/internal/queue"
	"github.com/tripdeskhq/tripdesk/internal/repository"
)

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleNotificationList(w, r)
	case http.MethodPost:
		s.handleNotificationCreate(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET or POST required")
	}
}

func (s *Server) handleNotificationList(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r.URL.Query().Get("limit"), 20)
	items, err := s.notifications.ListRecent(r.Context(), limit)
	if err != nil {
		s.log.WithError(err).Error("list notifications")
		respondJSON(w, http.StatusOK, listResponse[model.Notification]{Data: []model.Notification{}, Total: 0})
		return
	}
	if items == nil {
		items = []model.Notification{}
	}
	respondJSON(w, http.StatusOK, listResponse[model.Notification]{Data: items, Total: len(items)})
}

func (s *Server) handleNotificationCreate(w http.ResponseWriter, r *http.Request) {
	var body queue.DispatchPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "malformed JSON")
		return
	}
	if body.Topic == "" || body.Title == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "topic and title required")
		return
	}
	if err := s.queue.EnqueueDispatch(r.Context(), body); err != nil {
		s.log.WithError(err).Error("enqueue notification")
		respondError(w, http.StatusInternalServerError, "dispatch_failed", "could not queue notification")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleNotificationRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/notifications/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	if parts[0] == "stream" {
		s.handleNotificationStream(w, r)
		return
	}
	if len(parts) == 2 && parts[1] == "read" {
		s.handleNotificationRead(w, r, parts[0])
		return
	}
	http.NotFound(w, r)
}

func (s *Server) handleNotificationRead(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "PUT required")
		return
	}
	if err := s.notifications.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "notification not found")
			return
		}
		s.log.WithError(err).Error("mark notification read")
		respondError(w, http.StatusInternalServerError, "update_failed", "could not mark read")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "read"})
}

// handleNotificationStream pushes new notifications over server-sent events
// until the client disconnects.
func (s *Server) handleNotificationStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "no_stream", "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := s.broker.Subscribe()
	defer cancel()
	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case n, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(n)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
