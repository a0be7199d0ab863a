package keeper

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/memorium/core/internal/middleware"
	"github.com/memorium/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/keepers", authMW)

	g.POST("", h.assign)
	g.GET("/mine", h.listMine)

	rg.GET("/memorials/:id/keepers", authMW, h.listByMemorial)
}

// POST /keepers
func (h *Handler) assign(c *gin.Context) {
	var dto AssignDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	k, err := h.svc.Assign(middleware.CurrentUserID(c), &dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrActorNotFound):
			response.NotFoundMsg(c, "actor not found")
		case errors.Is(err, ErrMemorialNotFound):
			response.NotFoundMsg(c, "memorial not found")
		case errors.Is(err, ErrAlreadyAssigned):
			response.Conflict(c, "keeper already assigned for this memorial")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, k)
}

func (h *Handler) listMine(c *gin.Context) {
	out, err := h.svc.ListByActor(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, out)
}

// GET /memorials/:id/keepers. Own assignment or admin only.
func (h *Handler) listByMemorial(c *gin.Context) {
	memorialID := c.Param("id")
	if !middleware.IsAdmin(c) {
		active, err := h.svc.IsActiveKeeper(middleware.CurrentUserID(c), memorialID)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if !active {
			response.Forbidden(c)
			return
		}
	}
	out, err := h.svc.ListByMemorial(memorialID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, out)
}
