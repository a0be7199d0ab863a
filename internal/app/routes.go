package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/memorium/core/internal/middleware"
	"github.com/memorium/core/internal/modules/auth"
	"github.com/memorium/core/internal/modules/company"
	"github.com/memorium/core/internal/modules/contribution"
	"github.com/memorium/core/internal/modules/grant"
	"github.com/memorium/core/internal/modules/keeper"
	"github.com/memorium/core/internal/modules/memorial"
	"github.com/memorium/core/internal/modules/notify"
	"github.com/memorium/core/internal/modules/payment"
	"github.com/memorium/core/internal/pkg/pagination"
	pkgredis "github.com/memorium/core/internal/pkg/redis"
	"github.com/memorium/core/internal/pkg/response"
	"github.com/memorium/core/internal/pkg/taskqueue"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.OptionalAuth())
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	taskSvc := taskqueue.NewService(rc)

	// Shared services
	a.keeperSvc = keeper.NewService(db)
	a.notifySvc = notify.NewService(db, taskSvc, a.logger)
	a.grantSvc = grant.NewService(db)

	contributionSvc := contribution.NewService(db, a.logger)
	contributionSvc.SetKeeperChecker(a.keeperSvc)
	contributionSvc.SetNotifier(a.notifySvc)

	memorialHandler := memorial.NewHandler(memorial.NewService(db))
	memorialHandler.SetKeeperChecker(a.keeperSvc)

	api := r.Group(apiPrefix)

	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptime := time.Since(processStart)
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptime.Milliseconds(),
			"humanize":  humanizeDuration(uptime),
		})
	})

	auth.NewHandler(auth.NewService(db)).RegisterRoutes(api, authMW)
	memorialHandler.RegisterRoutes(api, authMW)
	grant.NewHandler(a.grantSvc).RegisterRoutes(api, authMW)
	contribution.NewHandler(contributionSvc).RegisterRoutes(api, authMW)
	keeper.NewHandler(a.keeperSvc).RegisterRoutes(api, authMW)
	company.NewHandler(company.NewService(db)).RegisterRoutes(api, authMW)
	payment.NewHandler(payment.NewService(db, a.keeperSvc)).RegisterRoutes(api, middleware.AdminAuth())
	notify.NewHandler(a.notifySvc).RegisterRoutes(api, authMW)

	// Cron and task queue introspection for operators.
	admin := api.Group("/admin", middleware.AdminAuth())
	admin.GET("/cron", func(c *gin.Context) {
		response.OK(c, a.sched.List())
	})
	admin.POST("/cron/:name/run", func(c *gin.Context) {
		if err := a.sched.Run(c.Request.Context(), c.Param("name")); err != nil {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.OK(c, gin.H{"triggered": c.Param("name")})
	})
	admin.GET("/tasks", func(c *gin.Context) {
		q := pagination.FromContext(c)
		var taskType *string
		if v := c.Query("type"); v != "" {
			taskType = &v
		}
		var status *taskqueue.TaskStatus
		if v := c.Query("status"); v != "" {
			st := taskqueue.TaskStatus(v)
			status = &st
		}
		tasks, total, err := taskSvc.List(c.Request.Context(), q.Page, q.Size, taskType, status)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, gin.H{"tasks": tasks, "total": total})
	})
}
