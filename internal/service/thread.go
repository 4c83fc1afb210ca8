package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/ticketdesk/backend/internal/forms"
	"github.com/pageza/ticketdesk/backend/internal/models"
)

// Thread is a ticket with its responses as seen by one viewer.
type Thread struct {
	Ticket    *models.Ticket
	Responses []models.Response
	// Owner is true when the viewer authored the ticket.
	Owner bool
}

type ThreadService struct {
	db    *gorm.DB
	authz *Authorizer
	log   *slog.Logger
	now   func() time.Time
}

func NewThreadService(db *gorm.DB, authz *Authorizer, log *slog.Logger) *ThreadService {
	return &ThreadService{db: db, authz: authz, log: log, now: time.Now}
}

// WithClock replaces the clock used for response timestamps.
func (s *ThreadService) WithClock(now func() time.Time) *ThreadService {
	s.now = now
	return s
}

func (s *ThreadService) GetThread(ctx context.Context, ticketID uint, viewer *models.User) (*Thread, error) {
	if err := s.authz.Require(viewer, ObjTicket, ActRead); err != nil {
		return nil, err
	}

	ticket, err := models.GetTicket(ctx, s.db, ticketID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("load ticket: %w", err)
	}

	responses, err := models.ListResponses(ctx, s.db, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	return &Thread{
		Ticket:    ticket,
		Responses: responses,
		Owner:     ticket.UserID == viewer.ID,
	}, nil
}

// AddResponse appends a response stamped with the server clock.
func (s *ThreadService) AddResponse(ctx context.Context, ticketID uint, author *models.User, in forms.ValidatedResponse) (*models.Response, error) {
	if err := s.authz.Require(author, ObjTicket, ActRespond); err != nil {
		return nil, err
	}

	response := &models.Response{
		Content:     in.Content,
		TicketID:    ticketID,
		UserID:      author.ID,
		DateCreated: s.now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := models.TicketExists(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrTicketNotFound
		}
		return models.CreateResponse(ctx, tx, response)
	})
	if err != nil {
		return nil, err
	}

	response.Author = *author
	s.log.Info("response added", "ticket_id", ticketID, "response_id", response.ID, "user_id", author.ID)
	return response, nil
}

// TogglePriority flips the ticket between normal and high priority. Only
// admins may do this.
func (s *ThreadService) TogglePriority(ctx context.Context, ticketID uint, actor *models.User) (*models.Ticket, error) {
	if err := s.authz.Require(actor, ObjTicket, ActPrioritize); err != nil {
		return nil, err
	}

	var ticket *models.Ticket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := models.TogglePriority(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrTicketNotFound
		}
		ticket, err = models.GetTicket(ctx, tx, ticketID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("ticket priority toggled", "ticket_id", ticketID, "priority", ticket.Priority, "user_id", actor.ID)
	return ticket, nil
}

// MarkResolved moves an open ticket to resolved. changed is false when the
// ticket was already resolved; there is no way back to open.
func (s *ThreadService) MarkResolved(ctx context.Context, ticketID uint, actor *models.User) (changed bool, err error) {
	if err := s.authz.Require(actor, ObjTicket, ActResolve); err != nil {
		return false, err
	}

	var ownerID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, err := models.GetTicket(ctx, tx, ticketID)
		if err != nil {
			if isNotFound(err) {
				return ErrTicketNotFound
			}
			return err
		}
		ownerID = ticket.UserID

		rows, err := models.MarkResolved(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		changed = rows > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	if changed && ownerID != actor.ID && !actor.IsAdmin() {
		s.log.Warn("ticket resolved by non-owner", "ticket_id", ticketID, "owner_id", ownerID, "user_id", actor.ID)
	} else if changed {
		s.log.Info("ticket resolved", "ticket_id", ticketID, "user_id", actor.ID)
	}
	return changed, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
