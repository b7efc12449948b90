package users

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/jrsteele09/go-storefront/internal/utils"
)

// RoleType is the account role assigned by the API
type RoleType string

const (
	RoleCustomer RoleType = "customer"
	RoleSeller   RoleType = "seller"
	RoleAdmin    RoleType = "admin"
)

const minPasswordLength = 6

// User is the profile record returned by the API and kept in the session
type User struct {
	ID       utils.FlexString `json:"id,omitempty"`   // Numeric on the wire
	Username string           `json:"username"`       // Unique username
	Email    string           `json:"email"`          // User's email address
	Role     RoleType         `json:"role,omitempty"` // customer, seller or admin
}

// DisplayName returns the best available label for the user
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Registration is the new-account form
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims whitespace from the identifying fields
func (r Registration) Normalize() Registration {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	return r
}

// Validate applies the same rules the API enforces so obviously bad forms never leave the client
func (r Registration) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("email is invalid")
	}
	return ValidatePasswordStrength(r.Password)
}

// ValidatePasswordStrength checks the minimum password length
func ValidatePasswordStrength(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}
