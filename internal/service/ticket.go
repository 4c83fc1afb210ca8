package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/ticketdesk/backend/internal/forms"
	"github.com/pageza/ticketdesk/backend/internal/models"
)

type TicketService struct {
	db    *gorm.DB
	authz *Authorizer
	log   *slog.Logger
	now   func() time.Time
}

func NewTicketService(db *gorm.DB, authz *Authorizer, log *slog.Logger) *TicketService {
	return &TicketService{db: db, authz: authz, log: log, now: time.Now}
}

// WithClock replaces the clock used for creation timestamps.
func (s *TicketService) WithClock(now func() time.Time) *TicketService {
	s.now = now
	return s
}

// CategoryChoices returns the categories a ticket can be filed under and their ids.
func (s *TicketService) CategoryChoices(ctx context.Context) ([]models.Category, []uint, error) {
	categories, err := models.ListCategories(ctx, s.db)
	if err != nil {
		return nil, nil, fmt.Errorf("list categories: %w", err)
	}
	ids := make([]uint, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	return categories, ids, nil
}

// Create files a new open ticket with priority 0 for author.
func (s *TicketService) Create(ctx context.Context, author *models.User, in forms.ValidatedTicket) (*models.Ticket, error) {
	if err := s.authz.Require(author, ObjTicket, ActCreate); err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		Title:       in.Title,
		Description: in.Description,
		Status:      models.StatusOpen,
		Priority:    0,
		CategoryID:  in.CategoryID,
		UserID:      author.ID,
		DateCreated: s.now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := models.GetCategory(ctx, tx, in.CategoryID); err != nil {
			if isNotFound(err) {
				return ErrCategoryNotFound
			}
			return err
		}
		return models.CreateTicket(ctx, tx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("ticket created", "ticket_id", ticket.ID, "user_id", author.ID, "category_id", ticket.CategoryID)
	return ticket, nil
}
