package models

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ticket lifecycle states.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

// Column bounds for ticket text.
const (
	TitleMaxLen       = 140
	DescriptionMaxLen = 500
)

// Ticket is a support request filed by a user under one category.
type Ticket struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:140;not null" json:"title"`
	Description string     `gorm:"size:500" json:"description"`
	Status      string     `gorm:"size:20;not null;default:open" json:"status"`
	Priority    int        `gorm:"not null;default:0" json:"priority"`
	CategoryID  uint       `gorm:"not null;index" json:"category_id"`
	Category    Category   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	DateCreated time.Time  `gorm:"not null;index" json:"date_created"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Author      User       `gorm:"foreignKey:UserID" json:"author"`
	Responses   []Response `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// IsResolved reports whether the ticket has left the open state.
func (t *Ticket) IsResolved() bool {
	return t.Status == StatusResolved
}

// TicketFilter drives board listing.
type TicketFilter struct {
	CategoryID *uint
	// PriorityFirst orders by priority ascending before the date key.
	PriorityFirst bool
	// Ascending selects oldest-first date ordering.
	Ascending bool
	Offset    int
	Limit     int
}

// orderColumns returns the ORDER BY terms for the filter. Priority (when requested)
// comes first, then date_created, then id in the date direction to keep pages stable.
func (f TicketFilter) orderColumns() []clause.OrderByColumn {
	desc := !f.Ascending
	var cols []clause.OrderByColumn
	if f.PriorityFirst {
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Table: "tickets", Name: "priority"}})
	}
	return append(cols,
		clause.OrderByColumn{Column: clause.Column{Table: "tickets", Name: "date_created"}, Desc: desc},
		clause.OrderByColumn{Column: clause.Column{Table: "tickets", Name: "id"}, Desc: desc},
	)
}

// CreateTicket inserts the ticket without touching its associations. An empty
// status defaults to open.
func CreateTicket(ctx context.Context, db *gorm.DB, ticket *Ticket) error {
	if ticket.Status == "" {
		ticket.Status = StatusOpen
	}
	return db.WithContext(ctx).Omit(clause.Associations).Create(ticket).Error
}

// GetTicket loads a ticket with its category and author.
func GetTicket(ctx context.Context, db *gorm.DB, id uint) (*Ticket, error) {
	var ticket Ticket
	err := db.WithContext(ctx).
		Preload("Category").
		Preload("Author").
		First(&ticket, id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// matching applies the filter's WHERE terms.
func (f TicketFilter) matching(tx *gorm.DB) *gorm.DB {
	if f.CategoryID != nil {
		tx = tx.Where("tickets.category_id = ?", *f.CategoryID)
	}
	return tx
}

// CountTickets returns how many tickets match filter, ignoring paging.
func CountTickets(ctx context.Context, db *gorm.DB, filter TicketFilter) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&Ticket{}).Scopes(filter.matching).Count(&total).Error
	return total, err
}

// ListTickets returns one page of tickets matching filter plus the total match count.
func ListTickets(ctx context.Context, db *gorm.DB, filter TicketFilter) ([]Ticket, int64, error) {
	total, err := CountTickets(ctx, db, filter)
	if err != nil {
		return nil, 0, err
	}

	var tickets []Ticket
	err = db.WithContext(ctx).
		Scopes(filter.matching).
		Preload("Category").
		Preload("Author").
		Clauses(clause.OrderBy{Columns: filter.orderColumns()}).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&tickets).Error
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// TogglePriority flips priority between 0 and 1 in a single statement.
// It returns the number of rows affected.
func TogglePriority(ctx context.Context, db *gorm.DB, id uint) (int64, error) {
	res := db.WithContext(ctx).
		Model(&Ticket{}).
		Where("id = ?", id).
		Update("priority", gorm.Expr("1 - priority"))
	return res.RowsAffected, res.Error
}

// MarkResolved moves an open ticket to resolved. It returns 0 rows when the
// ticket is missing or already resolved.
func MarkResolved(ctx context.Context, db *gorm.DB, id uint) (int64, error) {
	res := db.WithContext(ctx).
		Model(&Ticket{}).
		Where("id = ? AND status = ?", id, StatusOpen).
		Update("status", StatusResolved)
	return res.RowsAffected, res.Error
}

// TicketExists reports whether a ticket row with id exists.
func TicketExists(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&Ticket{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
