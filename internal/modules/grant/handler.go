package grant

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/memorium/core/internal/middleware"
	"github.com/memorium/core/internal/models"
	"github.com/memorium/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/memorials/:id")

	g.POST("/candles", h.recordCandle)
	g.GET("/candles", h.candleSummary)
	g.POST("/visits", h.recordVisit)
	g.GET("/visits", h.visitSummary)
}

func (h *Handler) record(c *gin.Context, kind models.GrantKind) {
	var actorID *string
	if id := middleware.CurrentUserID(c); id != "" {
		actorID = &id
	}

	g, err := h.svc.Record(kind, c.Param("id"), actorID, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, errGrantMemorialNotFound):
			response.NotFoundMsg(c, "memorial not found")
		case errors.Is(err, errGrantMemoryBlocked):
			response.ForbiddenMsg(c, "this memorial does not accept candles")
		case errors.Is(err, errGrantBadIP):
			response.UnprocessableEntity(c, "could not determine origin address")
		case errors.Is(err, errAlreadyGranted):
			response.Conflict(c, "already granted within the last 24 hours")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, g)
}

func (h *Handler) summary(c *gin.Context, kind models.GrantKind) {
	sum, err := h.svc.Summarize(kind, c.Param("id"), c.ClientIP(), middleware.IsAdmin(c))
	if err != nil {
		if errors.Is(err, errGrantMemorialNotFound) {
			response.NotFoundMsg(c, "memorial not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, sum)
}

// POST /memorials/:id/candles
func (h *Handler) recordCandle(c *gin.Context) { h.record(c, models.GrantCandle) }

// POST /memorials/:id/visits
func (h *Handler) recordVisit(c *gin.Context) { h.record(c, models.GrantVisit) }

func (h *Handler) candleSummary(c *gin.Context) { h.summary(c, models.GrantCandle) }

func (h *Handler) visitSummary(c *gin.Context) { h.summary(c, models.GrantVisit) }
