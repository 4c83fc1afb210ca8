package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/ticketdesk/backend/config"
	"github.com/pageza/ticketdesk/backend/internal/database"
	"github.com/pageza/ticketdesk/backend/internal/models"
	"github.com/pageza/ticketdesk/backend/internal/testhelpers"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(config.DatabaseConfig{Driver: "oracle"}, testhelpers.DiscardLogger())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestRunMigrationsSeedsDefaultCategoriesOnce(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()

	categories, err := models.ListCategories(ctx, db)
	require.NoError(t, err)
	require.Len(t, categories, len(models.DefaultCategories))

	// A second run must not duplicate the seed.
	require.NoError(t, database.RunMigrations(ctx, db, testhelpers.DiscardLogger()))
	categories, err = models.ListCategories(ctx, db)
	require.NoError(t, err)
	assert.Len(t, categories, len(models.DefaultCategories))
}

func TestForeignKeysEnforcedOnSQLite(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "alice", "alice@example.com", models.RoleUser)
	ticket := &models.Ticket{Title: "orphan", CategoryID: 9999, UserID: author.ID}
	assert.Error(t, models.CreateTicket(ctx, db, ticket))
}

func TestHealthCheck(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	assert.NoError(t, database.HealthCheck(context.Background(), db))
}

func TestPostgresMigrations(t *testing.T) {
	db, cfg := testhelpers.SetupPostgresDB(t)
	ctx := context.Background()

	sqlDB, err := database.OpenSQL(cfg)
	require.NoError(t, err)
	defer sqlDB.Close()

	version, err := database.SchemaVersion(ctx, sqlDB)
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)

	author := testhelpers.CreateTestUser(t, db, "alice", "alice@example.com", models.RoleUser)
	category := testhelpers.CategoryByName(t, db, "Technology")
	ticket := testhelpers.CreateTestTicketIn(t, db, author, category.ID, "printer on fire", time.Now())

	// Categories referenced by tickets cannot be deleted.
	assert.Error(t, models.DeleteCategory(ctx, db, category.ID))

	testhelpers.CreateTestResponse(t, db, author, ticket, "on it", time.Now())
	require.NoError(t, db.Delete(&models.Ticket{}, ticket.ID).Error)

	var remaining int64
	require.NoError(t, db.Model(&models.Response{}).Where("ticket_id = ?", ticket.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}
