package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateName      = errors.New("category name already in use")
	ErrCategoryInUse      = errors.New("category is referenced by tickets")
	ErrInvalidToken       = errors.New("invalid token")
)
