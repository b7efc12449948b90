package sessions

import (
	"context"

	"github.com/jrsteele09/go-storefront/users"
	"golang.org/x/oauth2"
)

// Keys used in durable storage
const (
	KeyAccess  = "access"
	KeyRefresh = "refresh"
	KeyUser    = "user"
)

// Credential is the token pair issued by the API
type Credential struct {
	AccessToken  string
	RefreshToken string // Empty when the API did not issue one
}

// Token converts the credential for use with oauth2 helpers
func (c Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
	}
}

// State is a snapshot of the session
type State struct {
	User          *users.User
	Credential    *Credential
	Authenticated bool
}

// Session is the single owner of client authentication state. Views, the route
// guard and the API client all read it through this interface.
type Session interface {
	Restore(ctx context.Context) error
	Login(ctx context.Context, credential Credential, user *users.User) error
	Logout(ctx context.Context) error
	Credential() (Credential, bool)
	IsAuthenticated() bool
	User() *users.User
}
