package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/tripdeskhq/tripdesk/internal/model"
	"github.com/tripdeskhq/tripdesk/internal/repository"
	"github.com/tripdeskhq/tripdesk/internal/table"
)

// listResponse is the wire shape every list endpoint shares.
type listResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func bookingColumns() []table.Column[model.Booking] {
	return []table.Column[model.Booking]{
		{Key: "reference", Header: "Reference", Value: func(b model.Booking) any { return b.Reference }},
		{Key: "customer", Header: "Customer", Value: func(b model.Booking) any { return b.CustomerName }},
		{Key: "service", Header: "Service", Value: func(b model.Booking) any { return string(b.Service) }},
		{Key: "amount", Header: "Amount", Value: func(b model.Booking) any { return b.Amount }},
		{Key: "status", Header: "Status", Value: func(b model.Booking) any { return string(b.Status) }},
		{Key: "created", Header: "Created", Value: func(b model.Booking) any { return b.CreatedAt.Format(time.RFC3339) }},
		{Key: table.ActionsKey, Header: ""},
	}
}

func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleBookingList(w, r)
	case http.MethodPost:
		s.handleBookingCreate(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET or POST required")
	}
}

// handleBookingList serves the paginated table: rows run through the shared
// filter→sort→paginate pipeline and the response carries the filtered total
// so clients can do their page math server-side.
func (s *Server) handleBookingList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.bookings.List(r.Context())
	if err != nil {
		// A failed fetch degrades to an empty table, never a crash.
		s.log.WithError(err).Error("list bookings")
		respondJSON(w, http.StatusOK, listResponse[model.Booking]{Data: []model.Booking{}, Total: 0})
		return
	}

	q := r.URL.Query()
	ctrl, err := table.NewController(table.Config[model.Booking]{
		Columns:  bookingColumns(),
		Key:      func(b model.Booking) string { return b.ID },
		PageSize: intParam(q.Get("limit"), 10),
		Locale:   language.English,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", "table setup failed")
		return
	}
	ctrl.SetRows(rows)
	ctrl.SetSearch(q.Get("search"))
	ctrl.SetFilter("service", q.Get("service"))
	ctrl.SetFilter("status", q.Get("status"))
	ctrl.SetSort(table.SortState{
		Key:       q.Get("sort"),
		Direction: table.Direction(strings.ToLower(q.Get("dir"))),
	})
	ctrl.SetPage(intParam(q.Get("page"), 1))

	data := ctrl.Visible()
	if data == nil {
		data = []model.Booking{}
	}
	respondJSON(w, http.StatusOK, listResponse[model.Booking]{Data: data, Total: ctrl.Total()})
}

func (s *Server) handleBookingCreate(w http.ResponseWriter, r *http.Request) {
	var b model.Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "malformed JSON")
		return
	}
	if b.Reference == "" || b.CustomerName == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "reference and customerName required")
		return
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if err := s.bookings.Create(r.Context(), &b); err != nil {
		s.log.WithError(err).Error("create booking")
		respondError(w, http.StatusInternalServerError, "create_failed", "could not store booking")
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

func (s *Server) handleBookingRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/bookings/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]
	if len(parts) == 1 {
		s.handleBookingGet(w, r, id)
		return
	}
	if parts[1] == "status" {
		s.handleBookingStatus(w, r, id)
		return
	}
	http.NotFound(w, r)
}

func (s *Server) handleBookingGet(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required")
		return
	}
	b, err := s.bookings.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "booking not found")
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleBookingStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "PUT required")
		return
	}
	var body struct {
		Status model.BookingStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "malformed JSON")
		return
	}
	if !model.ValidBookingStatus(body.Status) {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown booking status")
		return
	}
	if err := s.bookings.UpdateStatus(r.Context(), id, body.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "booking not found")
			return
		}
		s.log.WithError(err).Error("update booking status")
		respondError(w, http.StatusInternalServerError, "update_failed", "could not update status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(body.Status)})
}

// handleSummary aggregates bookings per service for the dashboard cards.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required")
		return
	}
	rows, err := s.bookings.Summary(r.Context())
	if err != nil {
		s.log.WithError(err).Error("booking summary")
		rows = nil
	}
	type bucket struct {
		Count    int                         `json:"count"`
		Amount   float64                     `json:"amount"`
		ByStatus map[model.BookingStatus]int `json:"byStatus"`
	}
	services := make(map[model.ServiceKind]*bucket)
	var totalCount int
	var totalAmount float64
	for _, row := range rows {
		b, ok := services[row.Service]
		if !ok {
			b = &bucket{ByStatus: make(map[model.BookingStatus]int)}
			services[row.Service] = b
		}
		b.Count += row.Count
		b.Amount += row.Amount
		b.ByStatus[row.Status] += row.Count
		totalCount += row.Count
		totalAmount += row.Amount
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"services":    services,
		"totalCount":  totalCount,
		"totalAmount": totalAmount,
	})
}

func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
