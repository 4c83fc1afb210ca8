package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/ticketdesk/backend/internal/models"
	"github.com/pageza/ticketdesk/backend/internal/service"
)

type BoardService interface {
	List(ctx context.Context, viewer *models.User, q service.BoardQuery) (*service.Board, error)
}

type BoardHandler struct {
	board BoardService
	log   *slog.Logger
}

func NewBoardHandler(board BoardService, log *slog.Logger) *BoardHandler {
	return &BoardHandler{board: board, log: log}
}

func (h *BoardHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/main", h.Main)
}

// Main renders the ticket board. Query: page, category, date=asc|desc, priority=0|1.
func (h *BoardHandler) Main(c *gin.Context) {
	rc := GetRequestContext(c)
	q := service.ParseBoardQuery(c.Query("page"), c.Query("category"), c.Query("date"), c.Query("priority"))

	board, err := h.board.List(c.Request.Context(), rc.User, q)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	tickets := make([]TicketPayload, 0, len(board.Tickets))
	for i := range board.Tickets {
		tickets = append(tickets, newTicketPayload(&board.Tickets[i]))
	}

	query := BoardQueryPayload{Page: q.Page, CategoryID: q.CategoryID, Date: "desc"}
	if q.Ascending {
		query.Date = "asc"
	}
	if q.PriorityFirst {
		query.Priority = 1
	}

	c.JSON(http.StatusOK, BoardPayload{
		User:         rc.User.Name,
		Tickets:      tickets,
		Categories:   newCategoryPayloads(board.Categories),
		Pagination:   board.Pagination,
		HasResponses: board.HasResponses,
		Query:        query,
		Flashes:      takeFlashes(c, h.log),
	})
}
