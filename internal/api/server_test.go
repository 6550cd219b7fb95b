package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/tripdeskhq/tripdesk/internal/config"
	"github.com/tripdeskhq/tripdesk/internal/feed"
	"github.com/tripdeskhq/tripdesk/internal/model"
	"github.com/tripdeskhq/tripdesk/internal/queue"
	"github.com/tripdeskhq/tripdesk/internal/repository"
	"github.com/tripdeskhq/tripdesk/internal/session"
)

type stubBookings struct {
	rows    []model.Booking
	listErr error

	created   []*model.Booking
	createErr error

	statusErr error
	statuses  map[string]model.BookingStatus

	summary    []model.SummaryRow
	summaryErr error
}

func (s *stubBookings) Create(ctx context.Context, b *model.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, b)
	return nil
}

func (s *stubBookings) Get(ctx context.Context, id string) (*model.Booking, error) {
	for i := range s.rows {
		if s.rows[i].ID == id {
			return &s.rows[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubBookings) List(ctx context.Context) ([]model.Booking, error) {
	return s.rows, s.listErr
}

func (s *stubBookings) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	if s.statuses == nil {
		s.statuses = make(map[string]model.BookingStatus)
	}
	s.statuses[id] = status
	return nil
}

func (s *stubBookings) Summary(ctx context.Context) ([]model.SummaryRow, error) {
	return s.summary, s.summaryErr
}

type stubNotifications struct {
	items   []model.Notification
	listErr error
	read    []string
	readErr error
}

func (s *stubNotifications) ListRecent(ctx context.Context, limit int) ([]model.Notification, error) {
	return s.items, s.listErr
}

func (s *stubNotifications) MarkRead(ctx context.Context, id string) error {
	if s.readErr != nil {
		return s.readErr
	}
	s.read = append(s.read, id)
	return nil
}

type stubAssets struct {
	inserted  []*model.Asset
	insertErr error
}

func (s *stubAssets) Insert(ctx context.Context, a *model.Asset) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, a)
	return nil
}

type stubObjects struct {
	putKeys    []string
	putErr     error
	presignErr error
}

func (s *stubObjects) Put(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return err
	}
	s.putKeys = append(s.putKeys, objectKey)
	return nil
}

func (s *stubObjects) PresignGet(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return "https://cdn.test/" + objectKey, nil
}

type stubQueue struct {
	dispatches  []queue.DispatchPayload
	dispatchErr error
	scans       []queue.ScanPayload
	scanErr     error
}

func (s *stubQueue) EnqueueDispatch(ctx context.Context, payload queue.DispatchPayload) error {
	if s.dispatchErr != nil {
		return s.dispatchErr
	}
	s.dispatches = append(s.dispatches, payload)
	return nil
}

func (s *stubQueue) EnqueueScan(ctx context.Context, payload queue.ScanPayload) error {
	if s.scanErr != nil {
		return s.scanErr
	}
	s.scans = append(s.scans, payload)
	return nil
}

type testEnv struct {
	server        *Server
	handler       http.Handler
	bookings      *stubBookings
	notifications *stubNotifications
	assets        *stubAssets
	objects       *stubObjects
	queue         *stubQueue
	profiles      *session.Cache
	token         string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Address:       ":0",
		MaxUploadSize: 25 << 20,
		AllowedTypes:  []string{"application/pdf", "image/png", "image/jpeg"},
		SignedURLTTL:  time.Minute,
		SessionSecret: []byte("test-secret"),
		SessionTTL:    time.Hour,
		AdminEmail:    "admin@example.com",
		AdminPassword: "s3cret",
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	env := &testEnv{
		bookings:      &stubBookings{},
		notifications: &stubNotifications{},
		assets:        &stubAssets{},
		objects:       &stubObjects{},
		queue:         &stubQueue{},
		profiles:      session.NewCache(),
	}
	signer := session.NewSigner(cfg.SessionSecret)
	env.server = New(cfg, log, Deps{
		Bookings:      env.bookings,
		Notifications: env.notifications,
		Assets:        env.assets,
		Objects:       env.objects,
		Queue:         env.queue,
		Signer:        signer,
		Profiles:      env.profiles,
		Broker:        feed.NewBroker(),
	})
	env.handler = env.server.Routes()

	profile := model.Profile{ID: "p1", Email: cfg.AdminEmail, Name: "Administrator", Role: "admin"}
	env.profiles.Put(profile)
	env.token = signer.Issue(profile.ID, time.Hour)
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}

func decodeBody(rec *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}
