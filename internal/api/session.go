package api

import (
	"fmt"
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/pageza/ticketdesk/backend/internal/models"
)

// establishSession replaces any existing session with one for user.
func establishSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(SessionUserKey, int(user.ID))
	if err := session.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func clearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// addFlash queues msg for the next page the user loads. A failed save only
// loses the message, so it is logged rather than failing the request.
func addFlash(c *gin.Context, log *slog.Logger, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg)
	SaveSession(c, log, session, "queue flash")
}

// takeFlashes drains queued flash messages.
func takeFlashes(c *gin.Context, log *slog.Logger) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	SaveSession(c, log, session, "drain flashes")

	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// SaveSession persists session, logging failures at warn with the request id.
// It is used where losing the write is preferable to failing the request.
func SaveSession(c *gin.Context, log *slog.Logger, session sessions.Session, op string) {
	if err := session.Save(); err != nil {
		log.Warn("session save failed",
			"op", op,
			"error", err,
			"path", c.Request.URL.Path,
			"request_id", GetRequestContext(c).RequestID,
		)
	}
}
