package notify

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/memorium/core/internal/database"
	"github.com/memorium/core/internal/models"
	"github.com/memorium/core/internal/pkg/pagination"
	redisc "github.com/memorium/core/internal/pkg/redis"
	"github.com/memorium/core/internal/pkg/taskqueue"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewService(db, nil, zap.NewNop()), db
}

func newQueuedService(t *testing.T) (*Service, *taskqueue.Service, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	mr := miniredis.RunT(t)
	rc, err := redisc.Connect("redis://" + mr.Addr())
	require.NoError(t, err)
	queue := taskqueue.NewService(rc)
	return NewService(db, queue, zap.NewNop()), queue, db
}

func TestNotifyEnqueuesDispatchTask(t *testing.T) {
	svc, queue, _ := newQueuedService(t)
	ctx := context.Background()

	svc.Notify("user-1", "keeper_expiry", "Expiry", "soon", "memorial-1")
	svc.Notify("user-1", "keeper_expiry", "Expiry", "soon", "memorial-1")

	taskType := "notification_dispatch"
	pending := taskqueue.TaskPending
	tasks, total, err := queue.List(ctx, 1, 10, &taskType, &pending)
	require.NoError(t, err)
	// Same recipient, kind and subject collapse into one pending task.
	require.EqualValues(t, 1, total)
	require.Equal(t, "user-1:keeper_expiry:memorial-1", tasks[0].DedupKey)
}

func TestDispatchPendingCompletesTasks(t *testing.T) {
	svc, queue, db := newQueuedService(t)
	ctx := context.Background()

	svc.Notify("user-1", "contribution_approved", "Approved", "", "c-1")
	svc.Notify("user-2", "keeper_expiry", "Expiry", "", "m-1")

	done, err := svc.DispatchPending(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, done)

	pending := taskqueue.TaskPending
	_, total, err := queue.List(ctx, 1, 10, nil, &pending)
	require.NoError(t, err)
	require.EqualValues(t, 0, total)

	completed := taskqueue.TaskCompleted
	_, total, err = queue.List(ctx, 1, 10, nil, &completed)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	// Draining again is a no-op.
	done, err = svc.DispatchPending(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, done)

	var rows int64
	require.NoError(t, db.Model(&models.NotificationModel{}).Count(&rows).Error)
	require.EqualValues(t, 2, rows)
}

func TestDispatchPendingFailsMissingRow(t *testing.T) {
	svc, queue, db := newQueuedService(t)
	ctx := context.Background()

	svc.Notify("user-1", "contribution_approved", "Approved", "", "c-1")
	require.NoError(t, db.Unscoped().Where("recipient_id = ?", "user-1").
		Delete(&models.NotificationModel{}).Error)

	done, err := svc.DispatchPending(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, done)

	failed := taskqueue.TaskFailed
	tasks, total, err := queue.List(ctx, 1, 10, nil, &failed)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "notification row missing", tasks[0].Error)
}

func TestNotifyPersistsRow(t *testing.T) {
	svc, db := newTestService(t)

	svc.Notify("user-1", "keeper_expiry", "Your memory page is about to expire", "expires soon", "memorial-1")

	var n models.NotificationModel
	require.NoError(t, db.First(&n, "recipient_id = ?", "user-1").Error)
	require.Equal(t, "keeper_expiry", n.Kind)
	require.Equal(t, "memorial-1", n.RelatedID)
	require.False(t, n.Read)
}

func TestListByRecipientUnreadFilter(t *testing.T) {
	svc, _ := newTestService(t)

	svc.Notify("user-1", "contribution_approved", "Condolence approved", "", "c-1")
	svc.Notify("user-1", "contribution_rejected", "Photo rejected", "off topic", "c-2")
	svc.Notify("user-2", "keeper_expiry", "Expiry", "", "m-1")

	all, pag, err := svc.ListByRecipient("user-1", false, pagination.Query{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.EqualValues(t, 2, pag.Total)

	require.NoError(t, svc.MarkRead("user-1", all[0].ID))

	unread, _, err := svc.ListByRecipient("user-1", true, pagination.Query{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	require.NotEqual(t, all[0].ID, unread[0].ID)
}

func TestMarkReadWrongRecipient(t *testing.T) {
	svc, _ := newTestService(t)

	svc.Notify("user-1", "contribution_approved", "Approved", "", "c-1")
	list, _, err := svc.ListByRecipient("user-1", false, pagination.Query{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = svc.MarkRead("user-2", list[0].ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = svc.MarkRead("user-1", "no-such-id")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMarkAllRead(t *testing.T) {
	svc, _ := newTestService(t)

	svc.Notify("user-1", "a", "t1", "", "")
	svc.Notify("user-1", "b", "t2", "", "")
	svc.Notify("user-2", "c", "t3", "", "")

	n, err := svc.MarkAllRead("user-1")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	unread, _, err := svc.ListByRecipient("user-1", true, pagination.Query{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Empty(t, unread)

	n, err = svc.MarkAllRead("user-1")
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	other, _, err := svc.ListByRecipient("user-2", true, pagination.Query{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, other, 1)
}
