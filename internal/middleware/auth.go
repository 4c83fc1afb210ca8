package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/pageza/ticketdesk/backend/internal/api"
	"github.com/pageza/ticketdesk/backend/internal/models"
	"github.com/pageza/ticketdesk/backend/internal/service"
)

// PrincipalResolver loads users for session cookies and bearer tokens.
type PrincipalResolver interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	ValidateToken(token string) (*service.TokenClaims, error)
}

// LoadPrincipal resolves the current user from the session cookie, falling
// back to an Authorization bearer token. Requests without a usable credential
// continue anonymously; a session pointing at a deleted user is cleared.
func LoadPrincipal(users PrincipalResolver, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := api.GetRequestContext(c)
		ctx := c.Request.Context()

		session := sessions.Default(c)
		if id, ok := sessionUserID(session.Get(api.SessionUserKey)); ok {
			user, err := users.GetUserByID(ctx, id)
			switch {
			case err == nil:
				rc.User = user
				rc.AuthMethod = api.AuthViaSession
			case errors.Is(err, service.ErrUserNotFound):
				session.Delete(api.SessionUserKey)
				api.SaveSession(c, log, session, "drop stale principal")
			default:
				api.RespondError(c, log, err)
				return
			}
		}

		if rc.User == nil {
			if token := bearerToken(c.GetHeader("Authorization")); token != "" {
				user, err := userFromToken(ctx, users, token)
				switch {
				case err == nil:
					rc.User = user
					rc.AuthMethod = api.AuthViaToken
				case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
					log.Debug("ignoring bearer token", "error", err, "request_id", rc.RequestID)
				default:
					api.RespondError(c, log, err)
					return
				}
			}
		}

		c.Next()
	}
}

func userFromToken(ctx context.Context, users PrincipalResolver, token string) (*models.User, error) {
	claims, err := users.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return users.GetUserByID(ctx, claims.UserID)
}

// RequireAuth aborts anonymous requests with 401.
func RequireAuth(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !api.GetRequestContext(c).Authenticated() {
			api.RespondError(c, log, service.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RequirePermission aborts with 401 when anonymous and 403 when the user's
// role may not perform act on obj.
func RequirePermission(authz *service.Authorizer, obj, act string, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authz.Require(api.GetRequestContext(c).User, obj, act); err != nil {
			api.RespondError(c, log, err)
			return
		}
		c.Next()
	}
}

// RequireRole aborts unless the user holds role directly or by inheritance.
func RequireRole(authz *service.Authorizer, role string, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := api.GetRequestContext(c).User
		if user == nil {
			api.RespondError(c, log, service.ErrUnauthorized)
			return
		}
		if !authz.HasRole(user.Type, role) {
			api.RespondError(c, log, service.ErrForbidden)
			return
		}
		c.Next()
	}
}

// sessionUserID accepts the integer types a cookie codec may hand back.
func sessionUserID(v interface{}) (uint, bool) {
	switch id := v.(type) {
	case int:
		if id > 0 {
			return uint(id), true
		}
	case int64:
		if id > 0 {
			return uint(id), true
		}
	case uint:
		if id > 0 {
			return id, true
		}
	}
	return 0, false
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
