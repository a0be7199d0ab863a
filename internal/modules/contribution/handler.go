package contribution

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/memorium/core/internal/middleware"
	"github.com/memorium/core/internal/models"
	"github.com/memorium/core/internal/pkg/pagination"
	"github.com/memorium/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	m := rg.Group("/memorials/:id")
	m.POST("/contributions", authMW, h.submit)
	m.GET("/contributions", h.list)
	m.GET("/activity", authMW, h.activityQueue)

	g := rg.Group("/contributions")
	g.GET("/:id", h.get)
	g.PATCH("/:id/moderation", authMW, h.moderate)
}

// POST /memorials/:id/contributions
func (h *Handler) submit(c *gin.Context) {
	var dto SubmitDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cm, err := h.svc.Submit(c.Param("id"), middleware.CurrentUserID(c), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errValidation):
			response.UnprocessableEntity(c, "invalid contribution payload")
		case errors.Is(err, errMemorialNotFound):
			response.NotFoundMsg(c, "memorial not found")
		case errors.Is(err, errContributionsBlocked):
			response.ForbiddenMsg(c, "this memorial does not accept contributions")
		case errors.Is(err, errDuplicateSubmission):
			response.Conflict(c, "already submitted for this memorial")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, cm)
}

// GET /memorials/:id/contributions. Public view is approved-only; keepers
// and admins may ask for any status.
func (h *Handler) list(c *gin.Context) {
	memorialID := c.Param("id")
	q := pagination.FromContext(c)

	var kind *models.ContributionKind
	if raw := c.Query("kind"); raw != "" {
		k := models.ContributionKind(raw)
		kind = &k
	}

	approved := models.StatusApproved
	status := &approved
	if raw := c.Query("status"); raw != "" {
		privileged, err := h.canModerate(c, memorialID)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if !privileged {
			response.Forbidden(c)
			return
		}
		st := models.ModerationStatus(raw)
		status = &st
	}

	items, pag, err := h.svc.List(memorialID, kind, status, q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

func (h *Handler) get(c *gin.Context) {
	cm, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if cm == nil {
		response.NotFoundMsg(c, "contribution not found")
		return
	}
	if cm.Status != models.StatusApproved {
		privileged, err := h.canModerate(c, cm.MemorialID)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if !privileged && cm.SubmitterID != middleware.CurrentUserID(c) {
			response.NotFoundMsg(c, "contribution not found")
			return
		}
	}
	response.OK(c, cm)
}

// GET /memorials/:id/activity is the moderation inbox, pending by default.
func (h *Handler) activityQueue(c *gin.Context) {
	memorialID := c.Param("id")
	privileged, err := h.canModerate(c, memorialID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !privileged {
		response.Forbidden(c)
		return
	}

	pending := models.StatusPending
	status := &pending
	if raw := c.Query("status"); raw != "" {
		if raw == "all" {
			status = nil
		} else {
			st := models.ModerationStatus(raw)
			status = &st
		}
	}

	items, pag, err := h.svc.ActivityQueue(memorialID, status, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

// PATCH /contributions/:id/moderation
func (h *Handler) moderate(c *gin.Context) {
	var dto ModerateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cm, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if cm == nil {
		response.NotFoundMsg(c, "contribution not found")
		return
	}
	privileged, err := h.canModerate(c, cm.MemorialID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !privileged {
		response.Forbidden(c)
		return
	}

	cm, err = h.svc.Moderate(cm.ID, middleware.CurrentUserID(c), &dto)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidModerationAction):
			response.BadRequest(c, "action must be approve or reject")
		case errors.Is(err, errContributionNotFound):
			response.NotFoundMsg(c, "contribution not found")
		case errors.Is(err, errAlreadyModerated):
			response.Conflict(c, "contribution already moderated")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, cm)
}

// canModerate: admin role or active keeper on the memorial.
func (h *Handler) canModerate(c *gin.Context, memorialID string) (bool, error) {
	if middleware.IsAdmin(c) {
		return true, nil
	}
	uid := middleware.CurrentUserID(c)
	if uid == "" || h.svc.keeper == nil {
		return false, nil
	}
	return h.svc.keeper.IsActiveKeeper(uid, memorialID)
}
