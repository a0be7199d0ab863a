package payment

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/memorium/core/internal/modules/keeper"
	"github.com/memorium/core/internal/pkg/pagination"
	"github.com/memorium/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// Payment events come from the provider callback relay, not end users, so
// the whole group is admin-gated.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/payments", authMW)

	g.POST("/events", h.processEvent)
	g.GET("/events", h.listEvents)
}

// POST /payments/events
func (h *Handler) processEvent(c *gin.Context) {
	var dto EventDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ev, k, err := h.svc.ProcessEvent(&dto)
	if err != nil {
		switch {
		case errors.Is(err, errUnknownPackage):
			response.UnprocessableEntity(c, "unknown payment package")
		case errors.Is(err, keeper.ErrMemorialNotFound):
			response.NotFoundMsg(c, "memorial not found")
		case errors.Is(err, keeper.ErrNoAssignment):
			response.NotFoundMsg(c, "no keeper assignment to extend")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, gin.H{
		"event":      ev,
		"assignment": k,
	})
}

func (h *Handler) listEvents(c *gin.Context) {
	items, pag, err := h.svc.ListEvents(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}
