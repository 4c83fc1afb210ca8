package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/ticketdesk/backend/config"
	"github.com/pageza/ticketdesk/backend/internal/api"
	"github.com/pageza/ticketdesk/backend/internal/database"
	"github.com/pageza/ticketdesk/backend/internal/markdown"
	"github.com/pageza/ticketdesk/backend/internal/middleware"
	"github.com/pageza/ticketdesk/backend/internal/models"
	"github.com/pageza/ticketdesk/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    *slog.Logger
}

// New wires services, middleware and routes. redisClient may be nil, which
// disables login rate limiting.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *slog.Logger) (*Server, error) {
	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authz, err := service.NewAuthorizer()
	if err != nil {
		return nil, err
	}

	creds := service.NewCredentials(cfg.Auth.BcryptCost)
	authSvc := service.NewAuthService(db, creds, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	boardSvc := service.NewBoardService(db, cfg.Board.PageSize, log)
	ticketSvc := service.NewTicketService(db, authz, log)
	threadSvc := service.NewThreadService(db, authz, log)
	categorySvc := service.NewCategoryService(db, authz, log)

	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.SecureHeaders(!cfg.Env.IsProduction()),
	)
	if len(cfg.Server.CORSOrigins) > 0 {
		router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	}
	router.Use(sessions.Sessions(cfg.Session.Name, newSessionStore(cfg.Session)))
	router.Use(middleware.LoadPrincipal(authSvc, log))

	requireAuth := middleware.RequireAuth(log)
	requireAdmin := middleware.RequireRole(authz, models.RoleAdmin, log)
	loginLimiter := middleware.NewLoginRateLimiter(redisClient, cfg.Auth.LoginAttempts, cfg.Auth.LoginWindow, log)

	api.NewHealthHandler(func(ctx context.Context) error {
		return database.HealthCheck(ctx, db)
	}).RegisterRoutes(router)
	api.NewAuthHandler(authSvc, log).RegisterRoutes(router, loginLimiter.Middleware(), requireAuth)

	authed := router.Group("/", requireAuth)
	api.NewBoardHandler(boardSvc, log).RegisterRoutes(authed)
	api.NewTicketHandler(ticketSvc, log).RegisterRoutes(authed)
	api.NewThreadHandler(threadSvc, authz, markdown.NewRenderer(), log).RegisterRoutes(authed, requireAdmin)

	admin := router.Group("/", requireAuth, requireAdmin)
	api.NewAdminHandler(categorySvc, log).RegisterRoutes(admin)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		log: log,
	}, nil
}

func newSessionStore(cfg config.SessionConfig) sessions.Store {
	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server, waiting at most 5 seconds.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
