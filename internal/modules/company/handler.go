package company

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
	g := rg.Group("/companies")

	g.GET("", h.listApproved)
	g.GET("/:id", h.get)
	g.POST("", authMW, h.apply)
	g.PUT("/:id", authMW, h.update)

	a := g.Group("", middleware.AdminAuth())
	a.PATCH("/:id/moderation", h.moderate)
	a.DELETE("/:id", h.delete)

	rg.GET("/admin/companies", middleware.AdminAuth(), h.listAll)
}

func (h *Handler) listApproved(c *gin.Context) {
	var kind *models.CompanyKind
	if raw := c.Query("kind"); raw != "" {
		k := models.CompanyKind(raw)
		kind = &k
	}
	items, pag, err := h.svc.ListApproved(kind, c.Query("region"), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

func (h *Handler) listAll(c *gin.Context) {
	var status *models.ModerationStatus
	if raw := c.Query("status"); raw != "" {
		st := models.ModerationStatus(raw)
		status = &st
	}
	items, pag, err := h.svc.ListAll(status, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

// GET /companies/:id. Pending pages are visible only to owner and admin.
func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetBySlugOrID(c.Param("id"))
	if err != nil {
		if errors.Is(err, errCompanyNotFound) {
			response.NotFoundMsg(c, "company page not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	if p.Status != models.StatusApproved &&
		!middleware.IsAdmin(c) && p.OwnerID != middleware.CurrentUserID(c) {
		response.NotFoundMsg(c, "company page not found")
		return
	}
	response.OK(c, p)
}

func (h *Handler) apply(c *gin.Context) {
	var dto ApplyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.Kind != models.CompanyFlorist && dto.Kind != models.CompanyFuneralHome {
		response.UnprocessableEntity(c, "kind must be florist or funeral_home")
		return
	}
	p, err := h.svc.Apply(middleware.CurrentUserID(c), &dto)
	if err != nil {
		if errors.Is(err, errSlugTaken) {
			response.Conflict(c, "company slug already taken")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, p)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCompanyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	p, err := h.svc.GetBySlugOrID(c.Param("id"))
	if err != nil {
		if errors.Is(err, errCompanyNotFound) {
			response.NotFoundMsg(c, "company page not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	if !middleware.IsAdmin(c) && p.OwnerID != middleware.CurrentUserID(c) {
		response.Forbidden(c)
		return
	}

	p, err = h.svc.Update(p.ID, &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) moderate(c *gin.Context) {
	var dto struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Moderate(c.Param("id"), dto.Action)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidModerationAction):
			response.BadRequest(c, "action must be approve or reject")
		case errors.Is(err, errCompanyNotFound):
			response.NotFoundMsg(c, "company page not found")
		case errors.Is(err, errAlreadyModerated):
			response.Conflict(c, "company page already moderated")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, p)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, errCompanyNotFound) {
			response.NotFoundMsg(c, "company page not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
