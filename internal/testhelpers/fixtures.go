package testhelpers

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/ticketdesk/backend/internal/models"
)

// TestPassword is the plaintext password of every user created by CreateTestUser.
const TestPassword = "password123"

// CreateTestUser inserts a user whose password is TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Name:         name,
		Email:        &email,
		PasswordHash: string(hash),
		Type:         role,
	}
	if err := models.CreateUser(context.Background(), db, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateTestTicket inserts an open ticket in the first default category.
func CreateTestTicket(t *testing.T, db *gorm.DB, author *models.User, title string, created time.Time) *models.Ticket {
	t.Helper()
	return CreateTestTicketIn(t, db, author, CategoryByName(t, db, models.DefaultCategories[0]).ID, title, created)
}

// CreateTestTicketIn inserts an open ticket in categoryID.
func CreateTestTicketIn(t *testing.T, db *gorm.DB, author *models.User, categoryID uint, title string, created time.Time) *models.Ticket {
	t.Helper()

	ticket := &models.Ticket{
		Title:       title,
		Description: title + " description",
		CategoryID:  categoryID,
		UserID:      author.ID,
		DateCreated: created.UTC(),
	}
	if err := models.CreateTicket(context.Background(), db, ticket); err != nil {
		t.Fatalf("failed to create ticket: %v", err)
	}
	return ticket
}

// CreateTestResponse appends a response to ticket.
func CreateTestResponse(t *testing.T, db *gorm.DB, author *models.User, ticket *models.Ticket, content string, created time.Time) *models.Response {
	t.Helper()

	response := &models.Response{
		Content:     content,
		TicketID:    ticket.ID,
		UserID:      author.ID,
		DateCreated: created.UTC(),
	}
	if err := models.CreateResponse(context.Background(), db, response); err != nil {
		t.Fatalf("failed to create response: %v", err)
	}
	return response
}

// CategoryByName looks up a category created by the default seed.
func CategoryByName(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	var category models.Category
	if err := db.Where("name = ?", name).First(&category).Error; err != nil {
		t.Fatalf("category %q not found: %v", name, err)
	}
	return &category
}
