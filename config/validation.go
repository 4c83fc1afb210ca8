package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// insecureDefaults are the development secrets shipped in setDefaults.
var insecureDefaults = map[string]bool{
	"dev-session-secret-change-me": true,
	"dev-jwt-secret-change-me":     true,
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.Path == "" {
			add("database.path", "is required for the sqlite driver")
		}
	case "postgres":
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			add("database", "host and name are required for the postgres driver")
		}
	default:
		add("database.driver", fmt.Sprintf("unsupported driver %q", cfg.Database.Driver))
	}

	if cfg.Session.Secret == "" {
		add("session.secret", "is required")
	}
	if cfg.Auth.JWTSecret == "" {
		add("auth.jwt_secret", "is required")
	}
	if cfg.Board.PageSize <= 0 {
		add("board.page_size", "must be greater than zero")
	}

	if cfg.Env == Production {
		if insecureDefaults[cfg.Session.Secret] {
			add("session.secret", "must be overridden in production")
		}
		if insecureDefaults[cfg.Auth.JWTSecret] {
			add("auth.jwt_secret", "must be overridden in production")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
