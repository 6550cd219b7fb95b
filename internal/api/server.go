// Package api exposes the admin console's HTTP surface: paginated list
// endpoints, uploads, the dashboard summary, session auth and the live
// notification feed.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/tripdeskhq/tripdesk/internal/config"
	"github.com/tripdeskhq/tripdesk/internal/feed"
	"github.com/tripdeskhq/tripdesk/internal/model"
	"github.com/tripdeskhq/tripdesk/internal/queue"
	"github.com/tripdeskhq/tripdesk/internal/session"
)

// BookingStore is the booking persistence the handlers need.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	Get(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error
	Summary(ctx context.Context) ([]model.SummaryRow, error)
}

// NotificationStore lists and updates feed entries.
type NotificationStore interface {
	ListRecent(ctx context.Context, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// AssetStore records uploaded asset metadata.
type AssetStore interface {
	Insert(ctx context.Context, a *model.Asset) error
}

// ObjectStore holds the uploaded bytes.
type ObjectStore interface {
	Put(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

// TaskQueue enqueues background jobs.
type TaskQueue interface {
	EnqueueDispatch(ctx context.Context, payload queue.DispatchPayload) error
	EnqueueScan(ctx context.Context, payload queue.ScanPayload) error
}

// AsynqQueue adapts an asynq client to TaskQueue.
type AsynqQueue struct {
	Client *asynq.Client
}

func (q AsynqQueue) EnqueueDispatch(ctx context.Context, payload queue.DispatchPayload) error {
	return queue.EnqueueDispatch(ctx, q.Client, payload)
}

func (q AsynqQueue) EnqueueScan(ctx context.Context, payload queue.ScanPayload) error {
	return queue.EnqueueScan(ctx, q.Client, payload)
}

// Server exposes the console's HTTP endpoints.
type Server struct {
	cfg           *config.Config
	log           *logrus.Logger
	bookings      BookingStore
	notifications NotificationStore
	assets        AssetStore
	objects       ObjectStore
	queue         TaskQueue
	signer        *session.Signer
	profiles      *session.Cache
	broker        *feed.Broker

	server *http.Server
	once   sync.Once
}

// Deps bundles the server's collaborators.
type Deps struct {
	Bookings      BookingStore
	Notifications NotificationStore
	Assets        AssetStore
	Objects       ObjectStore
	Queue         TaskQueue
	Signer        *session.Signer
	Profiles      *session.Cache
	Broker        *feed.Broker
}

// New constructs a Server.
func New(cfg *config.Config, log *logrus.Logger, deps Deps) *Server {
	return &Server{
		cfg:           cfg,
		log:           log,
		bookings:      deps.Bookings,
		notifications: deps.Notifications,
		assets:        deps.Assets,
		objects:       deps.Objects,
		queue:         deps.Queue,
		signer:        deps.Signer,
		profiles:      deps.Profiles,
		broker:        deps.Broker,
	}
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.once.Do(func() {
		s.server = &http.Server{
			Addr:    s.cfg.Address,
			Handler: s.corsMiddleware(s.loggingMiddleware(s.Routes())),
		}
	})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	s.log.WithField("address", s.cfg.Address).Info("api listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Routes builds the route table without the outer middleware, which keeps
// handler tests independent of CORS and logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.requireSession(s.handleLogout))
	mux.HandleFunc("/bookings", s.requireSession(s.handleBookings))
	mux.HandleFunc("/bookings/", s.requireSession(s.handleBookingRoute))
	mux.HandleFunc("/dashboard/summary", s.requireSession(s.handleSummary))
	mux.HandleFunc("/uploads", s.requireSession(s.handleUpload))
	mux.HandleFunc("/notifications", s.requireSession(s.handleNotifications))
	mux.HandleFunc("/notifications/", s.requireSession(s.handleNotificationRoute))
	mux.HandleFunc("/profile", s.requireSession(s.handleProfile))
	mux.HandleFunc("/profile/verification", s.requireSession(s.handleVerification))
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}
