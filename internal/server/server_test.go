package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/ticketdesk/backend/config"
	"github.com/pageza/ticketdesk/backend/internal/models"
	"github.com/pageza/ticketdesk/backend/internal/testhelpers"
)

func testConfig() *config.Config {
	return &config.Config{
		Env: config.Test,
		Server: config.ServerConfig{
			Host:        "127.0.0.1",
			Port:        "0",
			CORSOrigins: []string{"http://localhost:5173"},
		},
		Session: config.SessionConfig{Name: "ticketdesk_session", Secret: "test-session-secret", MaxAge: time.Hour},
		Auth: config.AuthConfig{
			JWTSecret:     "test-jwt-secret",
			TokenTTL:      time.Hour,
			BcryptCost:    4,
			LoginAttempts: 10,
			LoginWindow:   time.Minute,
		},
		Board: config.BoardConfig{PageSize: 10},
	}
}

// client replays cookies between requests like a browser would.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
	bearer  string
}

func newTestServer(t *testing.T) (*client, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	srv, err := New(testConfig(), db, nil, testhelpers.DiscardLogger())
	require.NoError(t, err)
	return &client{t: t, handler: srv.Handler(), cookies: map[string]*http.Cookie{}}, db
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postJSON(path string, body interface{}) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	require.NoError(c.t, err)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) login(email string) map[string]interface{} {
	w := c.postForm("/login", url.Values{"email": {email}, "password": {testhelpers.TestPassword}})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	return decode(c.t, w)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestHealth(t *testing.T) {
	c, _ := newTestServer(t)

	w := c.get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestAnonymousPages(t *testing.T) {
	c, _ := newTestServer(t)

	for _, path := range []string{"/", "/index", "/login", "/register"} {
		w := c.get(path)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	for _, path := range []string{"/main", "/ticket", "/thread/1", "/admin", "/logout"} {
		w := c.get(path)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	c, _ := newTestServer(t)

	w := c.get("/health")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRegisterLoginLogout(t *testing.T) {
	c, _ := newTestServer(t)

	w := c.postForm("/register", url.Values{
		"name":             {"Alice"},
		"email":            {"a@x.com"},
		"password":         {"pw"},
		"password_confirm": {"pw"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "/login", decode(t, w)["redirect"])

	// The flash queued by registration shows on the login page.
	w = c.get("/login")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["flashes"], "You are now a registered user!")

	w = c.postForm("/register", url.Values{
		"name":             {"Imposter"},
		"email":            {"a@x.com"},
		"password":         {"pw"},
		"password_confirm": {"pw"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Please use a different email address."}, fields["email"])

	w = c.postForm("/login", url.Values{"email": {"a@x.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode(t, w)["error"])
	assert.Equal(t, http.StatusUnauthorized, c.get("/main").Code, "failed login must not establish a session")

	w = c.postForm("/login", url.Values{"email": {"a@x.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "/main", body["redirect"])
	assert.NotEmpty(t, body["token"])

	assert.Equal(t, http.StatusOK, c.get("/main").Code)
	assert.Equal(t, http.StatusFound, c.get("/login").Code, "logged in users are sent to the board")
	assert.Equal(t, http.StatusFound, c.get("/").Code)

	w = c.get("/logout")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/index", w.Header().Get("Location"))
	assert.Equal(t, http.StatusUnauthorized, c.get("/main").Code)
}

func TestBearerTokenAccess(t *testing.T) {
	c, db := newTestServer(t)
	testhelpers.CreateTestUser(t, db, "alice", "alice@example.com", models.RoleUser)

	token := c.login("alice@example.com")["token"].(string)

	api := &client{t: t, handler: c.handler, cookies: map[string]*http.Cookie{}, bearer: token}
	w := api.get("/main")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode(t, w)["user"])
}

func TestCreateTicketAndBoard(t *testing.T) {
	c, db := newTestServer(t)
	testhelpers.CreateTestUser(t, db, "alice", "alice@example.com", models.RoleUser)
	tech := testhelpers.CategoryByName(t, db, "Technology")
	c.login("alice@example.com")

	w := c.get("/ticket")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["categories"], 3)

	w = c.postForm("/ticket", url.Values{"title": {"Printer down"}, "category_id": {"999"}, "description": {"help"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Not a valid choice."}, fields["category_id"])

	w = c.postForm("/ticket", url.Values{"title": {"Printer down"}, "category_id": {idString(tech.ID)}, "description": {"**no** paper"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ticket := decode(t, w)["ticket"].(map[string]interface{})
	assert.Equal(t, "open", ticket["status"])
	assert.Equal(t, float64(0), ticket["priority"])
	assert.Equal(t, "Technology", ticket["category_name"])

	w = c.get("/main?category=" + idString(tech.ID) + "&page=abc&date=asc")
	require.Equal(t, http.StatusOK, w.Code)
	board := decode(t, w)
	tickets := board["tickets"].([]interface{})
	require.Len(t, tickets, 1)
	assert.Equal(t, "Printer down", tickets[0].(map[string]interface{})["title"])
	assert.Contains(t, board["flashes"], "Your ticket has been submitted!")

	pagination := board["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(1), pagination["total"])
	assert.Equal(t, "asc", board["query"].(map[string]interface{})["date"])
}

func TestTicketFormJSON(t *testing.T) {
	c, db := newTestServer(t)
	testhelpers.CreateTestUser(t, db, "alice", "alice@example.com", models.RoleUser)
	tech := testhelpers.CategoryByName(t, db, "Technology")
	c.login("alice@example.com")

	w := c.postJSON("/ticket", map[string]interface{}{
		"title":       "VPN",
		"category_id": tech.ID,
		"description": "cannot connect",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	tests := []struct {
		name       string
		categoryID interface{}
		want       string
	}{
		{"blank", "", "This field is required."},
		{"null", nil, "This field is required."},
		{"non numeric", "tech", "Not a valid choice."},
		{"unknown", 9999, "Not a valid choice."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := c.postJSON("/ticket", map[string]interface{}{
				"title":       "",
				"category_id": tt.categoryID,
				"description": "cannot connect",
			})
			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, "validation failed", body["error"])
			fields := body["fields"].(map[string]interface{})
			assert.Equal(t, []interface{}{tt.want}, fields["category_id"])
			assert.Equal(t, []interface{}{"This field is required."}, fields["title"])
		})
	}
}

func TestAdminCategoryRefJSON(t *testing.T) {
	c, db := newTestServer(t)
	testhelpers.CreateTestUser(t, db, "root", "root@example.com", models.RoleAdmin)
	c.login("root@example.com")

	for _, raw := range []interface{}{"", "tech", 1.5} {
		w := c.postJSON("/admin", map[string]interface{}{"action": "delete", "category_id": raw})
		require.Equal(t, http.StatusBadRequest, w.Code, raw)
		fields := decode(t, w)["fields"].(map[string]interface{})
		assert.Contains(t, fields, "category_id", raw)
	}
}

func TestThreadLifecycle(t *testing.T) {
	c, db := newTestServer(t)
	alice := testhelpers.CreateTestUser(t, db, "alice", "alice@example.com", models.RoleUser)
	testhelpers.CreateTestUser(t, db, "root", "root@example.com", models.RoleAdmin)
	ticket := testhelpers.CreateTestTicket(t, db, alice, "Printer down", time.Now())
	path := "/thread/" + idString(ticket.ID)

	c.login("alice@example.com")

	w := c.postForm(path, url.Values{"content": {"<script>x</script>still broken"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	response := decode(t, w)["response"].(map[string]interface{})
	assert.NotContains(t, response["content_html"], "<script")

	w = c.postForm(path, url.Values{"content": {"   "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.get(path)
	require.Equal(t, http.StatusOK, w.Code)
	thread := decode(t, w)
	assert.Equal(t, true, thread["owner"])
	assert.Equal(t, false, thread["can_prioritize"])
	assert.Len(t, thread["responses"], 1)

	assert.Equal(t, http.StatusForbidden, c.postForm(path+"/toggle_priority", nil).Code)

	w = c.postForm(path, url.Values{"action": {"resolve"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["changed"])

	w = c.postForm(path, url.Values{"action": {"resolve"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["changed"])

	w = c.postForm(path, url.Values{"action": {"reopen"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusNotFound, c.get("/thread/9999").Code)
	assert.Equal(t, http.StatusNotFound, c.get("/thread/abc").Code)

	admin := &client{t: t, handler: c.handler, cookies: map[string]*http.Cookie{}}
	admin.login("root@example.com")
	w = admin.postForm(path+"/toggle_priority", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["priority"])

	w = admin.get(path)
	require.Equal(t, http.StatusOK, w.Code)
	thread = decode(t, w)
	assert.Equal(t, true, thread["can_prioritize"])
	assert.Equal(t, "resolved", thread["ticket"].(map[string]interface{})["status"])
}

func TestAdminPanel(t *testing.T) {
	c, db := newTestServer(t)
	alice := testhelpers.CreateTestUser(t, db, "alice", "alice@example.com", models.RoleUser)
	testhelpers.CreateTestUser(t, db, "root", "root@example.com", models.RoleAdmin)
	tech := testhelpers.CategoryByName(t, db, "Technology")
	testhelpers.CreateTestTicketIn(t, db, alice, tech.ID, "laptop", time.Now())

	user := &client{t: t, handler: c.handler, cookies: map[string]*http.Cookie{}}
	user.login("alice@example.com")
	assert.Equal(t, http.StatusForbidden, user.get("/admin").Code)
	assert.Equal(t, http.StatusForbidden, user.postForm("/admin", url.Values{"action": {"add"}, "name": {"Legal"}}).Code)

	c.login("root@example.com")
	w := c.get("/admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["categories"], 3)

	w = c.postForm("/admin", url.Values{"action": {"add"}, "name": {"Legal"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	legalID := uint(decode(t, w)["category"].(map[string]interface{})["id"].(float64))

	w = c.postForm("/admin", url.Values{"action": {"add"}, "name": {"Legal"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.postForm("/admin", url.Values{"action": {"edit"}, "category_id": {idString(legalID)}, "name": {"Legal"}})
	require.Equal(t, http.StatusOK, w.Code, "renaming to its own name is allowed")

	w = c.postForm("/admin", url.Values{"action": {"edit"}, "category_id": {idString(legalID)}, "name": {"Technology"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.postForm("/admin", url.Values{"action": {"delete"}, "category_id": {idString(tech.ID)}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.postForm("/admin", url.Values{"action": {"delete"}, "category_id": {idString(legalID)}})
	require.Equal(t, http.StatusOK, w.Code)

	w = c.postForm("/admin", url.Values{"action": {"delete"}, "category_id": {idString(legalID)}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
