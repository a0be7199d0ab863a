package memorial

import (
	"bytes"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/memorium/core/internal/middleware"
	"github.com/memorium/core/internal/models"
	"github.com/memorium/core/internal/pkg/pagination"
	"github.com/memorium/core/internal/pkg/response"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// KeeperChecker answers whether an actor holds active custodianship.
type KeeperChecker interface {
	IsActiveKeeper(actorID, memorialID string) (bool, error)
}

type Handler struct {
	svc    *Service
	keeper KeeperChecker
	md     goldmark.Markdown
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc: svc,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// SetKeeperChecker wires the custodianship lookup used for edit authority.
func (h *Handler) SetKeeperChecker(k KeeperChecker) { h.keeper = k }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/memorials")

	g.GET("", h.listPublic)
	g.GET("/:id", h.get)
	g.POST("", authMW, h.create)
	g.PUT("/:id", authMW, h.update)
	g.DELETE("/:id", middleware.AdminAuth(), h.delete)
	g.PATCH("/:id/moderation", middleware.AdminAuth(), h.moderate)

	rg.GET("/admin/memorials", middleware.AdminAuth(), h.listAll)
}

func (h *Handler) listPublic(c *gin.Context) {
	items, pag, err := h.svc.ListPublic(c.Query("region"), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

func (h *Handler) listAll(c *gin.Context) {
	items, pag, err := h.svc.ListAll(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

// GET /memorials/:id accepts the slug or the raw id. Hidden pages are
// visible only to their owner, an active keeper, or an admin.
func (h *Handler) get(c *gin.Context) {
	m, err := h.svc.GetBySlugOrID(c.Param("id"))
	if err != nil {
		if errors.Is(err, errMemorialNotFound) {
			response.NotFoundMsg(c, "memorial not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	if m.IsHidden {
		allowed, err := h.canEdit(c, m)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if !allowed {
			response.NotFoundMsg(c, "memorial not found")
			return
		}
	}

	if c.Query("format") == "html" {
		var buf bytes.Buffer
		if err := h.md.Convert([]byte(m.Obituary), &buf); err != nil {
			response.InternalError(c, err)
			return
		}
		c.JSON(200, gin.H{
			"memorial":      m,
			"obituary_html": buf.String(),
		})
		return
	}
	response.OK(c, m)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateMemorialDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	m, err := h.svc.Create(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, m)
}

// PUT /memorials/:id. Owner, active keeper, or admin.
func (h *Handler) update(c *gin.Context) {
	var dto UpdateMemorialDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	m, err := h.svc.GetBySlugOrID(c.Param("id"))
	if err != nil {
		if errors.Is(err, errMemorialNotFound) {
			response.NotFoundMsg(c, "memorial not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	allowed, err := h.canEdit(c, m)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !allowed {
		response.Forbidden(c)
		return
	}

	m, err = h.svc.Update(m.ID, &dto)
	if err != nil {
		switch {
		case errors.Is(err, errMemorialNotFound):
			response.NotFoundMsg(c, "memorial not found")
		case errors.Is(err, errSlugImmutable):
			response.UnprocessableEntity(c, "slug cannot be changed")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, m)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, errMemorialNotFound) {
			response.NotFoundMsg(c, "memorial not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// PATCH /memorials/:id/moderation. Approve publishes the page, reject hides
// it.
func (h *Handler) moderate(c *gin.Context) {
	var dto struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	status, err := models.ParseModerationAction(dto.Action)
	if err != nil {
		response.BadRequest(c, "action must be approve or reject")
		return
	}

	m, err := h.svc.SetHidden(c.Param("id"), status == models.StatusRejected)
	if err != nil {
		if errors.Is(err, errMemorialNotFound) {
			response.NotFoundMsg(c, "memorial not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, m)
}

func (h *Handler) canEdit(c *gin.Context, m *models.MemorialModel) (bool, error) {
	if middleware.IsAdmin(c) {
		return true, nil
	}
	uid := middleware.CurrentUserID(c)
	if uid == "" {
		return false, nil
	}
	if m.OwnerID == uid {
		return true, nil
	}
	if h.keeper == nil {
		return false, nil
	}
	return h.keeper.IsActiveKeeper(uid, m.ID)
}
