package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// DispatchNotificationTask fans a new notification out to the feed.
	DispatchNotificationTask = "notification:dispatch"
	// ScanAssetTask inspects an uploaded PDF for page metadata.
	ScanAssetTask = "asset:scan"
)

// DispatchPayload carries the notification to persist and publish.
type DispatchPayload struct {
	Topic string `json:"topic"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ScanPayload tells the worker which uploaded object to scan.
type ScanPayload struct {
	AssetID   string `json:"asset_id"`
	ObjectKey string `json:"object_key"`
}

// EnqueueDispatch enqueues a notification dispatch job.
func EnqueueDispatch(ctx context.Context, client *asynq.Client, payload DispatchPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(DispatchNotificationTask, data)
	if _, err := client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("enqueue dispatch task: %w", err)
	}
	return nil
}

// EnqueueScan enqueues a PDF asset scan job.
func EnqueueScan(ctx context.Context, client *asynq.Client, payload ScanPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(ScanAssetTask, data)
	if _, err := client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue scan task: %w", err)
	}
	return nil
}
