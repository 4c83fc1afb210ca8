package api

import (
	"time"

	"github.com/pageza/ticketdesk/backend/internal/models"
	"github.com/pageza/ticketdesk/backend/internal/service"
)

type UserPayload struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
	Score int    `json:"score"`
}

func newUserPayload(u *models.User) UserPayload {
	return UserPayload{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.EmailAddress(),
		Type:  u.Type,
		Score: u.Score,
	}
}

type CategoryPayload struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func newCategoryPayloads(categories []models.Category) []CategoryPayload {
	out := make([]CategoryPayload, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryPayload{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	return out
}

type TicketPayload struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"description_html,omitempty"`
	Status          string    `json:"status"`
	Priority        int       `json:"priority"`
	CategoryID      uint      `json:"category_id"`
	CategoryName    string    `json:"category_name"`
	AuthorID        uint      `json:"author_id"`
	AuthorName      string    `json:"author_name"`
	DateCreated     time.Time `json:"date_created"`
}

func newTicketPayload(t *models.Ticket) TicketPayload {
	return TicketPayload{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		CategoryID:   t.CategoryID,
		CategoryName: t.Category.Name,
		AuthorID:     t.UserID,
		AuthorName:   t.Author.Name,
		DateCreated:  t.DateCreated,
	}
}

type ResponsePayload struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html,omitempty"`
	AuthorID    uint      `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	DateCreated time.Time `json:"date_created"`
}

type BoardQueryPayload struct {
	Page       int    `json:"page"`
	CategoryID *uint  `json:"category,omitempty"`
	Date       string `json:"date"`
	Priority   int    `json:"priority"`
}

type BoardPayload struct {
	User         string             `json:"user"`
	Tickets      []TicketPayload    `json:"tickets"`
	Categories   []CategoryPayload  `json:"categories"`
	Pagination   service.Pagination `json:"pagination"`
	HasResponses bool               `json:"has_responses"`
	Query        BoardQueryPayload  `json:"query"`
	Flashes      []string           `json:"flashes,omitempty"`
}

type ThreadPayload struct {
	Ticket        TicketPayload     `json:"ticket"`
	Responses     []ResponsePayload `json:"responses"`
	Owner         bool              `json:"owner"`
	CanPrioritize bool              `json:"can_prioritize"`
	Flashes       []string          `json:"flashes,omitempty"`
}
