package middleware

import (
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

// SecureHeaders sets the standard hardening headers. TLS termination happens
// in front of the service, so no redirect to https is issued here.
func SecureHeaders(isDevelopment bool) gin.HandlerFunc {
	cfg := secure.DefaultConfig()
	cfg.SSLRedirect = false
	cfg.ContentSecurityPolicy = "default-src 'self'"
	cfg.IsDevelopment = isDevelopment
	return secure.New(cfg)
}
