// Package model contains the record types shared across the API, worker and
// repositories.
package model

import (
	"time"

	"github.com/tripdeskhq/tripdesk/internal/upload"
)

// ServiceKind identifies which marketplace vertical a booking belongs to.
type ServiceKind string

const (
	ServiceBus   ServiceKind = "bus"
	ServiceHotel ServiceKind = "hotel"
	ServiceTaxi  ServiceKind = "taxi"
	ServiceBike  ServiceKind = "bike"
)

// BookingStatus is the booking lifecycle as the console displays it.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// ValidBookingStatus reports whether s is a known status value.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingPending, BookingApproved, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Booking is one reservation row across any of the marketplace services.
// Documents carries attached files in whichever shape the source payload
// used; upload.Value normalizes them.
type Booking struct {
	ID           string        `json:"id"`
	Service      ServiceKind   `json:"service"`
	Reference    string        `json:"reference"`
	CustomerName string        `json:"customerName"`
	Amount       float64       `json:"amount"`
	Status       BookingStatus `json:"status"`
	Documents    upload.Value  `json:"documents"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Notification is one entry in the console's live feed.
type Notification struct {
	ID        string     `json:"id"`
	Topic     string     `json:"topic"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

// Asset records one uploaded file's metadata. Pages is filled in by the
// worker for PDFs after a scan.
type Asset struct {
	ID        string    `json:"id"`
	ObjectKey string    `json:"-"`
	FileName  string    `json:"fileName"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	Pages     *int      `json:"pages,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is the signed-in admin's cached profile.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Verified  bool   `json:"verified"`
}

// SummaryRow is one service/status bucket from the dashboard aggregation.
type SummaryRow struct {
	Service ServiceKind   `json:"service"`
	Status  BookingStatus `json:"status"`
	Count   int           `json:"count"`
	Amount  float64       `json:"amount"`
}
