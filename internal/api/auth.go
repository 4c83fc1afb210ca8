package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/ticketdesk/backend/internal/forms"
	"github.com/pageza/ticketdesk/backend/internal/models"
	"github.com/pageza/ticketdesk/backend/internal/service"
)

const msgRegistered = "You are now a registered user!"

// AuthService is the subset of service.AuthService the handlers need.
type AuthService interface {
	forms.EmailChecker
	Register(ctx context.Context, in forms.ValidatedRegistration) (*models.User, error)
	Login(ctx context.Context, in forms.ValidatedLogin) (*models.User, string, error)
}

type AuthHandler struct {
	auth AuthService
	log  *slog.Logger
}

func NewAuthHandler(auth AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// RegisterRoutes mounts the anonymous auth pages. loginLimit guards POST /login.
func (h *AuthHandler) RegisterRoutes(router gin.IRouter, loginLimit gin.HandlerFunc, requireAuth gin.HandlerFunc) {
	router.GET("/", h.Index)
	router.GET("/index", h.Index)
	router.GET("/login", redirectIfAuthenticated, h.LoginForm)
	router.POST("/login", redirectIfAuthenticated, loginLimit, h.Login)
	router.GET("/register", redirectIfAuthenticated, h.RegisterForm)
	router.POST("/register", redirectIfAuthenticated, h.Register)
	router.GET("/logout", requireAuth, h.Logout)
}

// redirectIfAuthenticated sends logged in users straight to the board.
func redirectIfAuthenticated(c *gin.Context) {
	if GetRequestContext(c).Authenticated() {
		c.Redirect(http.StatusFound, "/main")
		c.Abort()
		return
	}
	c.Next()
}

func (h *AuthHandler) Index(c *gin.Context) {
	if GetRequestContext(c).Authenticated() {
		c.Redirect(http.StatusFound, "/main")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":    "Home",
		"login":    "/login",
		"register": "/register",
		"flashes":  takeFlashes(c, h.log),
	})
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":   "Sign In",
		"fields":  []string{"email", "password"},
		"flashes": takeFlashes(c, h.log),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form forms.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		respondBadBody(c)
		return
	}
	input, err := form.Validate(c.Request.Context())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.log.Info("login failed", "ip", c.ClientIP())
		}
		RespondError(c, h.log, err)
		return
	}

	if err := establishSession(c, user); err != nil {
		RespondError(c, h.log, err)
		return
	}
	GetRequestContext(c).User = user
	h.log.Info("user logged in", "user_id", user.ID)

	c.JSON(http.StatusOK, gin.H{
		"user":     newUserPayload(user),
		"token":    token,
		"redirect": "/main",
	})
}

func (h *AuthHandler) RegisterForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":   "Register",
		"fields":  []string{"name", "email", "password", "password_confirm"},
		"flashes": takeFlashes(c, h.log),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form forms.RegistrationForm
	if err := c.ShouldBind(&form); err != nil {
		respondBadBody(c)
		return
	}
	input, err := form.Validate(c.Request.Context(), h.auth)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	addFlash(c, h.log, msgRegistered)
	c.JSON(http.StatusCreated, gin.H{
		"user":     newUserPayload(user),
		"message":  msgRegistered,
		"redirect": "/login",
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	rc := GetRequestContext(c)
	if err := clearSession(c); err != nil {
		RespondError(c, h.log, err)
		return
	}
	h.log.Info("user logged out", "user_id", rc.UserID())
	rc.User = nil
	c.Redirect(http.StatusFound, "/index")
}
