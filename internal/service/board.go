package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/ticketdesk/backend/internal/models"
)

const DefaultPageSize = 10

// BoardQuery is the parsed form of the board's query string.
type BoardQuery struct {
	Page          int
	CategoryID    *uint
	Ascending     bool
	PriorityFirst bool
}

// ParseBoardQuery is lenient: a bad page becomes 1 and a bad category is ignored.
func ParseBoardQuery(page, category, date, priority string) BoardQuery {
	q := BoardQuery{Page: 1}
	if n, err := strconv.Atoi(strings.TrimSpace(page)); err == nil && n >= 1 {
		q.Page = n
	}
	if n, err := strconv.ParseUint(strings.TrimSpace(category), 10, 64); err == nil {
		id := uint(n)
		q.CategoryID = &id
	}
	q.Ascending = strings.EqualFold(strings.TrimSpace(date), "asc")
	q.PriorityFirst = strings.TrimSpace(priority) == "1"
	return q
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
	NextNum *int  `json:"next_num"`
	PrevNum *int  `json:"prev_num"`
}

func newPagination(page, perPage int, total int64) Pagination {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	p := Pagination{
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
	}
	if p.HasNext {
		next := page + 1
		p.NextNum = &next
	}
	if p.HasPrev {
		prev := page - 1
		p.PrevNum = &prev
	}
	return p
}

// pageOffset returns the row offset of page, or false when it does not fit in an int.
func pageOffset(page, perPage int) (int, bool) {
	if page < 1 || page-1 > math.MaxInt/perPage {
		return 0, false
	}
	return (page - 1) * perPage, true
}

// Board is the main page view for one user.
type Board struct {
	Tickets      []models.Ticket
	Categories   []models.Category
	Pagination   Pagination
	HasResponses bool
}

type BoardService struct {
	db       *gorm.DB
	pageSize int
	log      *slog.Logger
}

func NewBoardService(db *gorm.DB, pageSize int, log *slog.Logger) *BoardService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &BoardService{db: db, pageSize: pageSize, log: log}
}

// List returns the requested page of tickets for viewer. A page past the end
// yields no tickets with the metadata still describing the full result.
func (s *BoardService) List(ctx context.Context, viewer *models.User, q BoardQuery) (*Board, error) {
	if viewer == nil {
		return nil, ErrUnauthorized
	}
	if q.Page < 1 {
		q.Page = 1
	}

	filter := models.TicketFilter{
		CategoryID:    q.CategoryID,
		PriorityFirst: q.PriorityFirst,
		Ascending:     q.Ascending,
		Limit:         s.pageSize,
	}

	var (
		tickets []models.Ticket
		total   int64
		err     error
	)
	if offset, ok := pageOffset(q.Page, s.pageSize); ok {
		filter.Offset = offset
		tickets, total, err = models.ListTickets(ctx, s.db, filter)
	} else {
		// The page lies beyond any addressable offset, so it is necessarily empty.
		total, err = models.CountTickets(ctx, s.db, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}

	hasResponses, err := models.HasResponsesOnUserTickets(ctx, s.db, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("check responses: %w", err)
	}

	categories, err := models.ListCategories(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return &Board{
		Tickets:      tickets,
		Categories:   categories,
		Pagination:   newPagination(q.Page, s.pageSize, total),
		HasResponses: hasResponses,
	}, nil
}
