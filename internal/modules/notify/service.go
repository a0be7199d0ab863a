package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/memorium/core/internal/models"
	"github.com/memorium/core/internal/pkg/pagination"
	"github.com/memorium/core/internal/pkg/response"
	"github.com/memorium/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const taskNotificationDispatch = "notification_dispatch"

// Service persists in-app notifications and hands delivery off to the task
// queue. Every entry point is best-effort: failures are logged and swallowed
// so a notification can never fail the operation that triggered it.
type Service struct {
	db     *gorm.DB
	queue  *taskqueue.Service
	logger *zap.Logger
}

func NewService(db *gorm.DB, queue *taskqueue.Service, logger *zap.Logger) *Service {
	return &Service{db: db, queue: queue, logger: logger}
}

type dispatchPayload struct {
	NotificationID string `json:"notification_id"`
	RecipientID    string `json:"recipient_id"`
	Kind           string `json:"kind"`
}

// Notify stores the notification and enqueues its dispatch.
func (s *Service) Notify(recipientID, kind, title, body, relatedID string) {
	n := models.NotificationModel{
		RecipientID: recipientID,
		Kind:        kind,
		Title:       title,
		Body:        body,
		RelatedID:   relatedID,
	}
	if err := s.db.Create(&n).Error; err != nil {
		s.logger.Warn("notification write failed",
			zap.String("recipient", recipientID),
			zap.String("kind", kind),
			zap.Error(err))
		return
	}

	if s.queue == nil {
		return
	}
	payload := dispatchPayload{
		NotificationID: n.ID,
		RecipientID:    recipientID,
		Kind:           kind,
	}
	// Dedup on the subject, not the row id, so a repeated notification about
	// the same thing collapses into one pending dispatch.
	dedupKey := fmt.Sprintf("%s:%s:%s", recipientID, kind, relatedID)
	if _, err := s.queue.Enqueue(context.Background(), taskNotificationDispatch, payload, dedupKey); err != nil {
		s.logger.Warn("notification dispatch enqueue failed",
			zap.String("notification", n.ID),
			zap.Error(err))
	}
}

// DispatchPending drains queued dispatch tasks. Delivery here is the stored
// row itself, so a task completes once its notification is confirmed
// persisted and fails when the row is gone.
func (s *Service) DispatchPending(ctx context.Context) (int, error) {
	if s.queue == nil {
		return 0, nil
	}

	taskType := taskNotificationDispatch
	status := taskqueue.TaskPending
	tasks, _, err := s.queue.List(ctx, 1, 100, &taskType, &status)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, task := range tasks {
		var p dispatchPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			s.markDispatch(ctx, task.ID, taskqueue.TaskFailed, "malformed payload")
			continue
		}
		var count int64
		if err := s.db.Model(&models.NotificationModel{}).
			Where("id = ?", p.NotificationID).Count(&count).Error; err != nil {
			s.logger.Warn("notification lookup failed during dispatch",
				zap.String("task", task.ID), zap.Error(err))
			continue
		}
		if count == 0 {
			s.markDispatch(ctx, task.ID, taskqueue.TaskFailed, "notification row missing")
			continue
		}
		s.markDispatch(ctx, task.ID, taskqueue.TaskCompleted, "")
		done++
	}
	return done, nil
}

func (s *Service) markDispatch(ctx context.Context, taskID string, status taskqueue.TaskStatus, msg string) {
	if err := s.queue.UpdateStatus(ctx, taskID, status, msg); err != nil {
		s.logger.Warn("dispatch status update failed",
			zap.String("task", taskID), zap.Error(err))
	}
}

// ListByRecipient returns the recipient's notifications, newest first.
func (s *Service) ListByRecipient(recipientID string, unreadOnly bool, q pagination.Query) ([]models.NotificationModel, response.Pagination, error) {
	tx := s.db.Model(&models.NotificationModel{}).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC")
	if unreadOnly {
		tx = tx.Where("`read` = ?", false)
	}
	var out []models.NotificationModel
	pag, err := pagination.Paginate(tx, q, &out)
	return out, pag, err
}

// MarkRead marks one of the recipient's notifications as read. Returns
// gorm.ErrRecordNotFound when the notification does not belong to them.
func (s *Service) MarkRead(recipientID, id string) error {
	res := s.db.Model(&models.NotificationModel{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		UpdateColumn("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the recipient as read.
func (s *Service) MarkAllRead(recipientID string) (int64, error) {
	res := s.db.Model(&models.NotificationModel{}).
		Where("recipient_id = ? AND `read` = ?", recipientID, false).
		UpdateColumn("read", true)
	return res.RowsAffected, res.Error
}
