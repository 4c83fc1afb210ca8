package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/ticketdesk/backend/internal/forms"
	"github.com/pageza/ticketdesk/backend/internal/models"
)

const msgTicketSubmitted = "Your ticket has been submitted!"

type TicketService interface {
	CategoryChoices(ctx context.Context) ([]models.Category, []uint, error)
	Create(ctx context.Context, author *models.User, in forms.ValidatedTicket) (*models.Ticket, error)
}

type TicketHandler struct {
	tickets TicketService
	log     *slog.Logger
}

func NewTicketHandler(tickets TicketService, log *slog.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, log: log}
}

func (h *TicketHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/ticket", h.NewTicket)
	router.POST("/ticket", h.CreateTicket)
	// Path used by the original HTML app.
	router.GET("/tickets", h.NewTicket)
	router.POST("/tickets", h.CreateTicket)
}

func (h *TicketHandler) NewTicket(c *gin.Context) {
	categories, _, err := h.tickets.CategoryChoices(c.Request.Context())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":      "Tickets",
		"fields":     []string{"title", "category_id", "description"},
		"categories": newCategoryPayloads(categories),
	})
}

func (h *TicketHandler) CreateTicket(c *gin.Context) {
	rc := GetRequestContext(c)

	var form forms.TicketForm
	if err := c.ShouldBind(&form); err != nil {
		respondBadBody(c)
		return
	}

	categories, choices, err := h.tickets.CategoryChoices(c.Request.Context())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	input, err := form.Validate(c.Request.Context(), choices)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	ticket, err := h.tickets.Create(c.Request.Context(), rc.User, input)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	ticket.Author = *rc.User
	for _, cat := range categories {
		if cat.ID == ticket.CategoryID {
			ticket.Category = cat
		}
	}

	addFlash(c, h.log, msgTicketSubmitted)
	c.JSON(http.StatusCreated, gin.H{
		"ticket":   newTicketPayload(ticket),
		"message":  msgTicketSubmitted,
		"redirect": "/main",
	})
}
