package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/ticketdesk/backend/internal/models"
	"github.com/pageza/ticketdesk/backend/internal/service"
	"github.com/pageza/ticketdesk/backend/internal/testhelpers"
)

type fixture struct {
	db         *gorm.DB
	authz      *service.Authorizer
	auth       *service.AuthService
	board      *service.BoardService
	tickets    *service.TicketService
	threads    *service.ThreadService
	categories *service.CategoryService
	clock      *fakeClock
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	log := testhelpers.DiscardLogger()
	authz, err := service.NewAuthorizer()
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return &fixture{
		db:         db,
		authz:      authz,
		auth:       service.NewAuthService(db, service.NewCredentials(4), "test-secret", time.Hour, log),
		board:      service.NewBoardService(db, 2, log),
		tickets:    service.NewTicketService(db, authz, log).WithClock(clock.Now),
		threads:    service.NewThreadService(db, authz, log).WithClock(clock.Now),
		categories: service.NewCategoryService(db, authz, log),
		clock:      clock,
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	return testhelpers.CreateTestUser(t, f.db, name, name+"@example.com", models.RoleUser)
}

func (f *fixture) admin(t *testing.T, name string) *models.User {
	return testhelpers.CreateTestUser(t, f.db, name, name+"@example.com", models.RoleAdmin)
}

func ctx() context.Context {
	return context.Background()
}
