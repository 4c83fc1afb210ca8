package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/ticketdesk/backend/internal/forms"
	"github.com/pageza/ticketdesk/backend/internal/markdown"
	"github.com/pageza/ticketdesk/backend/internal/models"
	"github.com/pageza/ticketdesk/backend/internal/service"
)

type ThreadService interface {
	GetThread(ctx context.Context, ticketID uint, viewer *models.User) (*service.Thread, error)
	AddResponse(ctx context.Context, ticketID uint, author *models.User, in forms.ValidatedResponse) (*models.Response, error)
	TogglePriority(ctx context.Context, ticketID uint, actor *models.User) (*models.Ticket, error)
	MarkResolved(ctx context.Context, ticketID uint, actor *models.User) (bool, error)
}

// PermissionChecker answers whether a role may perform an action.
type PermissionChecker interface {
	Can(role, obj, act string) (bool, error)
}

type ThreadHandler struct {
	threads  ThreadService
	perms    PermissionChecker
	renderer markdown.Renderer
	log      *slog.Logger
}

func NewThreadHandler(threads ThreadService, perms PermissionChecker, renderer markdown.Renderer, log *slog.Logger) *ThreadHandler {
	return &ThreadHandler{threads: threads, perms: perms, renderer: renderer, log: log}
}

// RegisterRoutes mounts the thread pages. requireAdmin guards priority changes.
func (h *ThreadHandler) RegisterRoutes(router gin.IRouter, requireAdmin gin.HandlerFunc) {
	router.GET("/thread/:id", h.View)
	router.POST("/thread/:id", h.Act)
	router.POST("/thread/:id/toggle_priority", requireAdmin, h.TogglePriority)
}

// threadActionForm is the POST body of /thread/:id. action defaults to respond.
type threadActionForm struct {
	Action string `form:"action" json:"action"`
	forms.ResponseForm
}

const (
	actionRespond = "respond"
	actionResolve = "resolve"
)

func (h *ThreadHandler) View(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		RespondError(c, h.log, service.ErrTicketNotFound)
		return
	}
	rc := GetRequestContext(c)

	thread, err := h.threads.GetThread(c.Request.Context(), id, rc.User)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	payload, err := h.threadPayload(thread, rc.User)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	payload.Flashes = takeFlashes(c, h.log)
	c.JSON(http.StatusOK, payload)
}

func (h *ThreadHandler) Act(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		RespondError(c, h.log, service.ErrTicketNotFound)
		return
	}
	rc := GetRequestContext(c)

	var form threadActionForm
	if err := c.ShouldBind(&form); err != nil {
		respondBadBody(c)
		return
	}

	switch form.Action {
	case "", actionRespond:
		input, err := form.ResponseForm.Validate(c.Request.Context())
		if err != nil {
			RespondError(c, h.log, err)
			return
		}
		response, err := h.threads.AddResponse(c.Request.Context(), id, rc.User, input)
		if err != nil {
			RespondError(c, h.log, err)
			return
		}
		payload, err := h.responsePayload(response)
		if err != nil {
			RespondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"response": payload,
			"redirect": threadPath(id),
		})

	case actionResolve:
		if _, err := (forms.ConfirmForm{}).Validate(c.Request.Context()); err != nil {
			RespondError(c, h.log, err)
			return
		}
		changed, err := h.threads.MarkResolved(c.Request.Context(), id, rc.User)
		if err != nil {
			RespondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"changed":  changed,
			"status":   models.StatusResolved,
			"redirect": threadPath(id),
		})

	default:
		fe := forms.FieldErrors{}
		fe.Add("action", forms.MsgInvalidChoice)
		RespondError(c, h.log, fe)
	}
}

func (h *ThreadHandler) TogglePriority(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		RespondError(c, h.log, service.ErrTicketNotFound)
		return
	}

	ticket, err := h.threads.TogglePriority(c.Request.Context(), id, GetRequestContext(c).User)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ticket":   newTicketPayload(ticket),
		"priority": ticket.Priority,
		"redirect": threadPath(id),
	})
}

func (h *ThreadHandler) threadPayload(thread *service.Thread, viewer *models.User) (ThreadPayload, error) {
	ticket := newTicketPayload(thread.Ticket)
	html, err := h.renderer.ToHTMLSanitized(thread.Ticket.Description)
	if err != nil {
		return ThreadPayload{}, err
	}
	ticket.DescriptionHTML = html

	responses := make([]ResponsePayload, 0, len(thread.Responses))
	for i := range thread.Responses {
		p, err := h.responsePayload(&thread.Responses[i])
		if err != nil {
			return ThreadPayload{}, err
		}
		responses = append(responses, p)
	}

	canPrioritize, err := h.perms.Can(viewer.Type, service.ObjTicket, service.ActPrioritize)
	if err != nil {
		return ThreadPayload{}, err
	}

	return ThreadPayload{
		Ticket:        ticket,
		Responses:     responses,
		Owner:         thread.Owner,
		CanPrioritize: canPrioritize,
	}, nil
}

func (h *ThreadHandler) responsePayload(r *models.Response) (ResponsePayload, error) {
	html, err := h.renderer.ToHTMLSanitized(r.Content)
	if err != nil {
		return ResponsePayload{}, err
	}
	return ResponsePayload{
		ID:          r.ID,
		Content:     r.Content,
		ContentHTML: html,
		AuthorID:    r.UserID,
		AuthorName:  r.Author.Name,
		DateCreated: r.DateCreated,
	}, nil
}

// ticketID parses the :id path parameter. Non-numeric ids are treated as missing tickets.
func ticketID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func threadPath(id uint) string {
	return fmt.Sprintf("/thread/%d", id)
}
