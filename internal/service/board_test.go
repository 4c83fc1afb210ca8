package service_test

import (
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/ticketdesk/backend/internal/models"
	"github.com/pageza/ticketdesk/backend/internal/service"
	"github.com/pageza/ticketdesk/backend/internal/testhelpers"
)

func TestParseBoardQuery(t *testing.T) {
	seven := uint(7)
	tests := []struct {
		name                           string
		page, category, date, priority string
		want                           service.BoardQuery
	}{
		{"defaults", "", "", "", "", service.BoardQuery{Page: 1}},
		{"all set", "3", "7", "asc", "1", service.BoardQuery{Page: 3, CategoryID: &seven, Ascending: true, PriorityFirst: true}},
		{"bad page", "x", "", "", "", service.BoardQuery{Page: 1}},
		{"zero page", "0", "", "", "", service.BoardQuery{Page: 1}},
		{"negative page", "-4", "", "", "", service.BoardQuery{Page: 1}},
		{"bad category", "", "tech", "", "", service.BoardQuery{Page: 1}},
		{"desc date", "", "", "desc", "0", service.BoardQuery{Page: 1}},
		{"unknown date", "", "", "sideways", "", service.BoardQuery{Page: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ParseBoardQuery(tt.page, tt.category, tt.date, tt.priority))
		})
	}
}

func boardIDs(b *service.Board) []uint {
	ids := make([]uint, 0, len(b.Tickets))
	for _, tk := range b.Tickets {
		ids = append(ids, tk.ID)
	}
	return ids
}

func TestBoardPagination(t *testing.T) {
	f := setup(t)
	alice := f.user(t, "alice")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var created []*models.Ticket
	for i := 0; i < 5; i++ {
		created = append(created, testhelpers.CreateTestTicket(t, f.db, alice, "t", base.Add(time.Duration(i)*time.Hour)))
	}

	page1, err := f.board.List(ctx(), alice, service.BoardQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint{created[4].ID, created[3].ID}, boardIDs(page1))
	assert.Equal(t, service.Pagination{Page: 1, PerPage: 2, Total: 5, Pages: 3, HasNext: true, NextNum: intPtr(2)}, page1.Pagination)

	page3, err := f.board.List(ctx(), alice, service.BoardQuery{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, []uint{created[0].ID}, boardIDs(page3))
	assert.False(t, page3.Pagination.HasNext)
	assert.Equal(t, intPtr(2), page3.Pagination.PrevNum)

	beyond, err := f.board.List(ctx(), alice, service.BoardQuery{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, beyond.Tickets)
	assert.Equal(t, int64(5), beyond.Pagination.Total)
	assert.Equal(t, 3, beyond.Pagination.Pages)
	assert.False(t, beyond.Pagination.HasNext)
	assert.True(t, beyond.Pagination.HasPrev)

	// Pages whose offset would overflow are empty rather than wrapping to page 1.
	for _, raw := range []string{strconv.Itoa(math.MaxInt), strconv.Itoa(math.MaxInt/2 + 1)} {
		q := service.ParseBoardQuery(raw, "", "", "")
		huge, err := f.board.List(ctx(), alice, q)
		require.NoError(t, err)
		assert.Empty(t, huge.Tickets, raw)
		assert.Equal(t, q.Page, huge.Pagination.Page)
		assert.Equal(t, int64(5), huge.Pagination.Total)
		assert.Equal(t, 3, huge.Pagination.Pages)
		assert.False(t, huge.Pagination.HasNext)
		assert.Equal(t, intPtr(q.Page-1), huge.Pagination.PrevNum)
	}
}

func TestBoardEmpty(t *testing.T) {
	f := setup(t)
	alice := f.user(t, "alice")

	b, err := f.board.List(ctx(), alice, service.BoardQuery{Page: 1})
	require.NoError(t, err)
	assert.Empty(t, b.Tickets)
	assert.Equal(t, 0, b.Pagination.Pages)
	assert.False(t, b.Pagination.HasNext)
	assert.False(t, b.Pagination.HasPrev)
	assert.Len(t, b.Categories, len(models.DefaultCategories))
}

func TestBoardFilterAndOrdering(t *testing.T) {
	f := setup(t)
	alice := f.user(t, "alice")
	admin := f.admin(t, "root")
	tech := testhelpers.CategoryByName(t, f.db, "Technology")
	hr := testhelpers.CategoryByName(t, f.db, "Human Resources")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	old := testhelpers.CreateTestTicketIn(t, f.db, alice, tech.ID, "old", base)
	mid := testhelpers.CreateTestTicketIn(t, f.db, alice, hr.ID, "mid", base.Add(time.Hour))
	recent := testhelpers.CreateTestTicketIn(t, f.db, alice, tech.ID, "new", base.Add(2*time.Hour))
	_, err := f.threads.TogglePriority(ctx(), old.ID, admin)
	require.NoError(t, err)

	board := service.NewBoardService(f.db, 10, testhelpers.DiscardLogger())
	tests := []struct {
		name string
		q    service.BoardQuery
		want []uint
	}{
		{"default newest first", service.BoardQuery{Page: 1}, []uint{recent.ID, mid.ID, old.ID}},
		{"date asc", service.BoardQuery{Page: 1, Ascending: true}, []uint{old.ID, mid.ID, recent.ID}},
		{"priority ascending", service.BoardQuery{Page: 1, PriorityFirst: true}, []uint{recent.ID, mid.ID, old.ID}},
		{"priority with date asc", service.BoardQuery{Page: 1, PriorityFirst: true, Ascending: true}, []uint{mid.ID, recent.ID, old.ID}},
		{"category filter", service.BoardQuery{Page: 1, CategoryID: &tech.ID}, []uint{recent.ID, old.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := board.List(ctx(), alice, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, boardIDs(b))
			if tt.q.CategoryID != nil {
				for _, tk := range b.Tickets {
					assert.Equal(t, *tt.q.CategoryID, tk.CategoryID)
				}
			}
		})
	}
}

func TestBoardHasResponses(t *testing.T) {
	f := setup(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	ticket := testhelpers.CreateTestTicket(t, f.db, alice, "vpn", time.Now())

	b, err := f.board.List(ctx(), alice, service.BoardQuery{Page: 1})
	require.NoError(t, err)
	assert.False(t, b.HasResponses)

	testhelpers.CreateTestResponse(t, f.db, bob, ticket, "try rebooting", time.Now())

	b, err = f.board.List(ctx(), alice, service.BoardQuery{Page: 1})
	require.NoError(t, err)
	assert.True(t, b.HasResponses)

	b, err = f.board.List(ctx(), bob, service.BoardQuery{Page: 1})
	require.NoError(t, err)
	assert.False(t, b.HasResponses)
}

func TestBoardRequiresViewer(t *testing.T) {
	f := setup(t)
	_, err := f.board.List(ctx(), nil, service.BoardQuery{Page: 1})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func intPtr(n int) *int {
	return &n
}
