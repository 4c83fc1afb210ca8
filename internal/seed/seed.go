// Package seed loads development fixtures from YAML into the database.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/pageza/ticketdesk/backend/internal/models"
)

type Fixture struct {
	Categories []CategorySeed `yaml:"categories" validate:"dive"`
	Users      []UserSeed     `yaml:"users" validate:"dive"`
	Tickets    []TicketSeed   `yaml:"tickets" validate:"dive"`
}

type CategorySeed struct {
	Name        string `yaml:"name" validate:"required,max=50"`
	Description string `yaml:"description" validate:"max=200"`
}

type UserSeed struct {
	Name     string `yaml:"name" validate:"required,max=64"`
	Email    string `yaml:"email" validate:"required,email,max=120"`
	Password string `yaml:"password" validate:"required"`
	Role     string `yaml:"role" validate:"omitempty,oneof=user admin"`
}

type TicketSeed struct {
	Title       string `yaml:"title" validate:"required,max=140"`
	Description string `yaml:"description" validate:"required,max=500"`
	Category    string `yaml:"category" validate:"required"`
	Author      string `yaml:"author" validate:"required,email"`
	Priority    int    `yaml:"priority" validate:"oneof=0 1"`
	Resolved    bool   `yaml:"resolved"`
}

// Hasher hashes plaintext passwords for storage.
type Hasher interface {
	Hash(password string) (string, error)
}

// Result counts the rows created by Apply. Existing rows are skipped.
type Result struct {
	Categories int
	Users      int
	Tickets    int
}

var validate = validator.New()

// Load reads and validates a fixture file.
func Load(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates fixture YAML. Unknown keys are rejected and an
// empty document yields an empty fixture.
func Parse(raw []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

// Apply inserts the fixture in one transaction. It is idempotent: categories
// are matched by name, users by email and tickets by title and author.
func Apply(ctx context.Context, db *gorm.DB, hasher Hasher, f *Fixture, log *slog.Logger) (Result, error) {
	var res Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := models.SeedDefaultCategories(ctx, tx); err != nil {
			return err
		}

		for _, c := range f.Categories {
			exists, err := models.CategoryNameExists(ctx, tx, c.Name, 0)
			if err != nil {
				return err
			}
			if exists {
				log.Debug("category exists, skipping", "name", c.Name)
				continue
			}
			category := &models.Category{Name: c.Name}
			if c.Description != "" {
				desc := c.Description
				category.Description = &desc
			}
			if err := models.CreateCategory(ctx, tx, category); err != nil {
				return fmt.Errorf("create category %q: %w", c.Name, err)
			}
			res.Categories++
		}

		for _, u := range f.Users {
			exists, err := models.EmailExists(ctx, tx, u.Email)
			if err != nil {
				return err
			}
			if exists {
				log.Debug("user exists, skipping", "email", u.Email)
				continue
			}
			hash, err := hasher.Hash(u.Password)
			if err != nil {
				return err
			}
			email := u.Email
			user := &models.User{Name: u.Name, Email: &email, PasswordHash: hash, Type: u.Role}
			if err := models.CreateUser(ctx, tx, user); err != nil {
				return fmt.Errorf("create user %q: %w", u.Email, err)
			}
			res.Users++
		}

		for _, t := range f.Tickets {
			created, err := seedTicket(ctx, tx, t)
			if err != nil {
				return err
			}
			if created {
				res.Tickets++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	log.Info("fixture applied", "categories", res.Categories, "users", res.Users, "tickets", res.Tickets)
	return res, nil
}

func seedTicket(ctx context.Context, tx *gorm.DB, t TicketSeed) (bool, error) {
	author, err := models.GetUserByEmail(ctx, tx, t.Author)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("ticket %q: unknown author %q", t.Title, t.Author)
		}
		return false, err
	}

	var category models.Category
	if err := tx.WithContext(ctx).Where("name = ?", t.Category).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("ticket %q: unknown category %q", t.Title, t.Category)
		}
		return false, err
	}

	var count int64
	if err := tx.WithContext(ctx).Model(&models.Ticket{}).
		Where("title = ? AND user_id = ?", t.Title, author.ID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	ticket := &models.Ticket{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		CategoryID:  category.ID,
		UserID:      author.ID,
		DateCreated: time.Now().UTC(),
	}
	if t.Resolved {
		ticket.Status = models.StatusResolved
	}
	if err := models.CreateTicket(ctx, tx, ticket); err != nil {
		return false, fmt.Errorf("create ticket %q: %w", t.Title, err)
	}
	return true, nil
}
