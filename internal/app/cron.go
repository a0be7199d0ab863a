package app

import (
	"context"
	"fmt"
	"time"

	pkgcron "github.com/memorium/core/internal/pkg/cron"
	pkgredis "github.com/memorium/core/internal/pkg/redis"
	"go.uber.org/zap"
)

const keeperNoticeWindow = 7 * 24 * time.Hour

// registerCronJobs registers all scheduled background jobs.
func (a *App) registerCronJobs(sched *pkgcron.Scheduler, rc *pkgredis.Client) {
	cronLogger := a.logger.Named("cron")

	sched.Register(pkgcron.Job{
		Name:        "keeper_expiry_notice",
		Description: "notify keepers whose custodianship expires within 7 days",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			expiring, err := a.keeperSvc.ExpiringWithin(keeperNoticeWindow)
			if err != nil {
				cronLogger.Warn("keeper expiry scan failed", zap.Error(err))
				return err
			}
			for _, k := range expiring {
				a.notifySvc.Notify(
					k.ActorID,
					"keeper_expiry",
					"Your memory page is about to expire",
					fmt.Sprintf("Your custodianship expires on %s. Extend it to keep the page active.",
						k.ExpiresAt.Format("2006-01-02")),
					k.MemorialID,
				)
				if err := a.keeperSvc.MarkNotified(k.ID); err != nil {
					cronLogger.Warn("keeper notified flag update failed",
						zap.String("assignment", k.ID), zap.Error(err))
				}
			}
			cronLogger.Info(fmt.Sprintf("keeper expiry notices sent: %d", len(expiring)))
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "notification_dispatch",
		Description: "drain pending notification dispatch tasks",
		Interval:    time.Minute,
		Fn: func(ctx context.Context) error {
			done, err := a.notifySvc.DispatchPending(ctx)
			if err != nil {
				cronLogger.Warn("notification dispatch drain failed", zap.Error(err))
				return err
			}
			if done > 0 {
				cronLogger.Info(fmt.Sprintf("notification dispatch completed %d tasks", done))
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "cleanup_grants",
		Description: "delete grant rows whose dedup window has lapsed",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			deleted, err := a.grantSvc.CleanupExpired()
			if err != nil {
				cronLogger.Warn("grant cleanup failed", zap.Error(err))
				return err
			}
			cronLogger.Info(fmt.Sprintf("grant cleanup removed %d rows", deleted))
			return nil
		},
	})
}
