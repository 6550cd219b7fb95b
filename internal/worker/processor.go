package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	pdf "github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/tripdeskhq/tripdesk/internal/assets"
	"github.com/tripdeskhq/tripdesk/internal/feed"
	"github.com/tripdeskhq/tripdesk/internal/model"
	"github.com/tripdeskhq/tripdesk/internal/queue"
	"github.com/tripdeskhq/tripdesk/internal/repository"
)

// Processor is plugged into the asynq worker loop. The feed broker is
// optional: a standalone worker process persists notifications only, while
// the combined serve mode also pushes them to live SSE sessions.
type Processor struct {
	notifications *repository.NotificationRepository
	assetRepo     *repository.AssetRepository
	store         *assets.Store
	broker        *feed.Broker
	log           *logrus.Logger
}

// NewProcessor constructs a worker processor.
func NewProcessor(notifications *repository.NotificationRepository, assetRepo *repository.AssetRepository, store *assets.Store, broker *feed.Broker, log *logrus.Logger) *Processor {
	return &Processor{
		notifications: notifications,
		assetRepo:     assetRepo,
		store:         store,
		broker:        broker,
		log:           log,
	}
}

// Handler registers the task handlers.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.DispatchNotificationTask, p.handleDispatch)
	mux.HandleFunc(queue.ScanAssetTask, p.handleScan)
	return mux
}

func (p *Processor) handleDispatch(ctx context.Context, task *asynq.Task) error {
	var payload queue.DispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	n := model.Notification{
		ID:    uuid.NewString(),
		Topic: payload.Topic,
		Title: payload.Title,
		Body:  payload.Body,
	}
	if err := p.notifications.Insert(ctx, &n); err != nil {
		p.log.WithError(err).WithField("topic", n.Topic).Error("persist notification")
		return err
	}
	if p.broker != nil {
		p.broker.Publish(n)
	}
	p.log.WithFields(logrus.Fields{"id": n.ID, "topic": n.Topic}).Info("notification dispatched")
	return nil
}

func (p *Processor) handleScan(ctx context.Context, task *asynq.Task) error {
	var payload queue.ScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	data, err := p.store.Get(ctx, payload.ObjectKey)
	if err != nil {
		p.log.WithError(err).WithField("key", payload.ObjectKey).Error("download asset")
		return err
	}
	pages, err := pageCount(data)
	if err != nil {
		p.log.WithError(err).WithField("asset", payload.AssetID).Warn("scan failed")
		return err
	}
	if err := p.assetRepo.SetPages(ctx, payload.AssetID, pages); err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{"asset": payload.AssetID, "pages": pages}).Info("asset scanned")
	return nil
}

func pageCount(data []byte) (int, error) {
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("new pdf reader: %w", err)
	}
	return doc.NumPage(), nil
}
