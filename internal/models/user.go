package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account holder. Type carries the role.
type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"size:64;index" json:"name"`
	Email        *string `gorm:"size:120;uniqueIndex" json:"email,omitempty"`
	PasswordHash string  `gorm:"column:password;size:256" json:"-"`
	Type         string  `gorm:"size:20;default:user" json:"type"`
	Score        int     `gorm:"default:0" json:"score"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Type == RoleAdmin
}

// EmailAddress returns the email or an empty string when unset.
func (u *User) EmailAddress() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// CreateUser inserts a new user into the database
func CreateUser(ctx context.Context, db *gorm.DB, user *User) error {
	if user.Type == "" {
		user.Type = RoleUser
	}
	return db.WithContext(ctx).Create(user).Error
}

// GetUserByID retrieves a user by ID
func GetUserByID(ctx context.Context, db *gorm.DB, id uint) (*User, error) {
	var user User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether a user is already registered with email.
func EmailExists(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	_, err := GetUserByEmail(ctx, db, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
