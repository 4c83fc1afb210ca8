package models

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentMaxLen bounds response text.
const ContentMaxLen = 500

// Response is one message in a ticket thread. Responses are never edited.
type Response struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Content     string    `gorm:"size:500;not null" json:"content"`
	DateCreated time.Time `gorm:"not null;index" json:"date_created"`
	TicketID    uint      `gorm:"not null;index" json:"ticket_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Author      User      `gorm:"foreignKey:UserID" json:"author"`
}

// CreateResponse inserts the response without touching its associations.
func CreateResponse(ctx context.Context, db *gorm.DB, response *Response) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(response).Error
}

// ListResponses returns a ticket's responses oldest first. id breaks ties
// between responses sharing a timestamp.
func ListResponses(ctx context.Context, db *gorm.DB, ticketID uint) ([]Response, error) {
	var responses []Response
	err := db.WithContext(ctx).
		Preload("Author").
		Where("ticket_id = ?", ticketID).
		Order("date_created ASC").
		Order("id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// HasResponsesOnUserTickets reports whether any response exists on a ticket
// authored by userID.
func HasResponsesOnUserTickets(ctx context.Context, db *gorm.DB, userID uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&Response{}).
		Joins("JOIN tickets ON tickets.id = responses.ticket_id").
		Where("tickets.user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
