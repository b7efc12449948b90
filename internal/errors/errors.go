package errors

import (
	"errors"
	"fmt"
)

// Common error types for the storefront
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Registration errors
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrRegistrationFailed  = errors.New("registration failed")

	// Session errors
	ErrSessionExpired = errors.New("session expired")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
