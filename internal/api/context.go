package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/ticketdesk/backend/internal/models"
)

// SessionUserKey is the session key holding the logged in user's id.
const SessionUserKey = "user_id"

const requestContextKey = "ticketdesk.request_context"

// Ways a principal can be established.
const (
	AuthViaSession = "session"
	AuthViaToken   = "token"
)

// RequestContext carries per-request state resolved by middleware: the
// principal (nil when anonymous) and correlation data for logs.
type RequestContext struct {
	User       *models.User
	AuthMethod string
	RequestID  string
}

// Authenticated reports whether a principal was resolved.
func (rc *RequestContext) Authenticated() bool {
	return rc != nil && rc.User != nil
}

// UserID returns the principal's id or 0.
func (rc *RequestContext) UserID() uint {
	if !rc.Authenticated() {
		return 0
	}
	return rc.User.ID
}

// SetRequestContext attaches rc to the gin context.
func SetRequestContext(c *gin.Context, rc *RequestContext) {
	c.Set(requestContextKey, rc)
}

// GetRequestContext returns the request context, creating an empty one if
// no middleware has run yet.
func GetRequestContext(c *gin.Context) *RequestContext {
	if v, ok := c.Get(requestContextKey); ok {
		if rc, ok := v.(*RequestContext); ok {
			return rc
		}
	}
	rc := &RequestContext{}
	SetRequestContext(c, rc)
	return rc
}
