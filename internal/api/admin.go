package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/ticketdesk/backend/internal/forms"
	"github.com/pageza/ticketdesk/backend/internal/models"
)

type CategoryService interface {
	forms.CategoryNameChecker
	List(ctx context.Context, actor *models.User) ([]models.Category, error)
	Add(ctx context.Context, actor *models.User, in forms.ValidatedCategory) (*models.Category, error)
	Rename(ctx context.Context, actor *models.User, id uint, in forms.ValidatedCategory) (*models.Category, error)
	Delete(ctx context.Context, actor *models.User, id uint) error
}

type AdminHandler struct {
	categories CategoryService
	log        *slog.Logger
}

func NewAdminHandler(categories CategoryService, log *slog.Logger) *AdminHandler {
	return &AdminHandler{categories: categories, log: log}
}

func (h *AdminHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/admin", h.Panel)
	router.POST("/admin", h.Act)
}

// adminActionForm is the POST body of /admin.
type adminActionForm struct {
	Action string `form:"action" json:"action"`
	forms.CategoryForm
	forms.CategoryRefForm
}

func (h *AdminHandler) Panel(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context(), GetRequestContext(c).User)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":      "Admin",
		"categories": newCategoryPayloads(categories),
		"flashes":    takeFlashes(c, h.log),
	})
}

func (h *AdminHandler) Act(c *gin.Context) {
	ctx := c.Request.Context()
	actor := GetRequestContext(c).User

	var form adminActionForm
	if err := c.ShouldBind(&form); err != nil {
		respondBadBody(c)
		return
	}

	switch form.Action {
	case "add":
		input, err := form.CategoryForm.Validate(ctx, h.categories, 0)
		if err != nil {
			RespondError(c, h.log, err)
			return
		}
		category, err := h.categories.Add(ctx, actor, input)
		if err != nil {
			RespondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"category": newCategoryPayloads([]models.Category{*category})[0],
			"redirect": "/admin",
		})

	case "edit":
		id, err := form.CategoryRefForm.Validate(ctx)
		if err != nil {
			RespondError(c, h.log, err)
			return
		}
		input, err := form.CategoryForm.Validate(ctx, h.categories, id)
		if err != nil {
			RespondError(c, h.log, err)
			return
		}
		category, err := h.categories.Rename(ctx, actor, id, input)
		if err != nil {
			RespondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"category": newCategoryPayloads([]models.Category{*category})[0],
			"redirect": "/admin",
		})

	case "delete":
		id, err := form.CategoryRefForm.Validate(ctx)
		if err != nil {
			RespondError(c, h.log, err)
			return
		}
		if _, err := (forms.ConfirmForm{}).Validate(ctx); err != nil {
			RespondError(c, h.log, err)
			return
		}
		if err := h.categories.Delete(ctx, actor, id); err != nil {
			RespondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"deleted":  id,
			"redirect": "/admin",
		})

	default:
		fe := forms.FieldErrors{}
		fe.Add("action", forms.MsgInvalidChoice)
		RespondError(c, h.log, fe)
	}
}
