package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/pageza/ticketdesk/backend/internal/forms"
	"github.com/pageza/ticketdesk/backend/internal/models"
)

// TokenClaims is the payload of bearer tokens handed to API clients.
type TokenClaims struct {
	UserID uint   `json:"-"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	db        *gorm.DB
	creds     *Credentials
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *slog.Logger
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, creds *Credentials, jwtSecret string, tokenTTL time.Duration, log *slog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		db:        db,
		creds:     creds,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

// EmailExists satisfies forms.EmailChecker.
func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	return models.EmailExists(ctx, s.db, email)
}

// Register stores a new user with role "user". An email that is already
// registered, including by a concurrent request, yields ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, in forms.ValidatedRegistration) (*models.User, error) {
	hash, err := s.creds.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	email := in.Email
	user := &models.User{
		Name:         in.Name,
		Email:        &email,
		PasswordHash: hash,
		Type:         models.RoleUser,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := models.EmailExists(ctx, tx, email)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}
		if err := models.CreateUser(ctx, tx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and returns the user with a fresh bearer token.
func (s *AuthService) Login(ctx context.Context, in forms.ValidatedLogin) (*models.User, string, error) {
	user, err := models.GetUserByEmail(ctx, s.db, in.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if !s.creds.Verify(user.PasswordHash, in.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := models.GetUserByID(ctx, s.db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := TokenClaims{
		Role: user.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrInvalidToken
	}
	claims.UserID = uint(id)
	return claims, nil
}
