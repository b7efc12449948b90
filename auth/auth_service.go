package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-storefront/apiclient"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/token"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// API paths relative to the API base URL
const (
	PathToken    = "users/token/"
	PathRegister = "users/register/"
	PathLogout   = "users/logout/"
	PathProfile  = "users/profile/%s/"
)

// TokenPair is the body returned by the token endpoint
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// Service performs the account operations behind the login, register, profile and logout views
type Service struct {
	client  *apiclient.Client
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService creates a Service that calls the API through client
func NewService(client *apiclient.Client, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] client is required")
	}
	s := &Service{
		client:  client,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login exchanges the credentials for a token pair and stores it in session.
// A rejected login returns ErrInvalidCredentials and leaves session untouched.
func (s *Service) Login(ctx context.Context, session sessions.Session, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return apperrors.ErrInvalidCredentials
	}

	var pair TokenPair
	err := s.client.Post(ctx, PathToken, loginRequest{Username: username, Password: password}, &pair)
	switch {
	case errors.Is(err, apiclient.ErrUnauthenticated), errors.Is(err, apiclient.ErrRequest):
		return errors.Wrap(apperrors.ErrInvalidCredentials, "[Service.Login]")
	case err != nil:
		return errors.Wrap(err, "[Service.Login] token request failed")
	case pair.Access == "":
		return errors.Wrap(MissingAccessTokenErr, "[Service.Login]")
	}

	user, err := s.Profile(ctx, pair.Access)
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("profile lookup failed, using login name")
		user = &users.User{Username: username}
	}

	if err := session.Login(ctx, sessions.Credential{AccessToken: pair.Access, RefreshToken: pair.Refresh}, user); err != nil {
		return errors.Wrap(err, "[Service.Login] failed to store session")
	}
	log.Info().Str("username", user.DisplayName()).Msg("user logged in")
	return nil
}

// Profile fetches the user record for the owner of accessToken
func (s *Service) Profile(ctx context.Context, accessToken string) (*users.User, error) {
	claims, err := token.Parse(accessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Profile]")
	}
	if claims.UserID == "" {
		return nil, errors.Wrap(UnknownUserIDErr, "[Service.Profile]")
	}

	var user users.User
	path := fmt.Sprintf(PathProfile, url.PathEscape(claims.UserID))
	if err := s.client.WithCredentials(apiclient.StaticToken(accessToken)).Get(ctx, path, &user); err != nil {
		return nil, errors.Wrap(err, "[Service.Profile] profile request failed")
	}
	return &user, nil
}

// Register validates the form locally then creates the account
func (s *Service) Register(ctx context.Context, registration users.Registration) error {
	registration = registration.Normalize()
	if err := registration.Validate(); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidRegistration, "%s", err.Error())
	}

	if err := s.client.Post(ctx, PathRegister, registration, nil); err != nil {
		if errors.Is(err, apiclient.ErrRequest) {
			return errors.Wrap(apperrors.ErrRegistrationFailed, err.Error())
		}
		return errors.Wrap(err, "[Service.Register] register request failed")
	}
	log.Info().Str("username", registration.Username).Msg("user registered")
	return nil
}

// Logout asks the API to blacklist the refresh token, then clears session.
// The API call is best effort; the local session is always cleared.
func (s *Service) Logout(ctx context.Context, session sessions.Session) error {
	if credential, ok := session.Credential(); ok {
		if tok := credential.Token(); tok.Valid() && tok.RefreshToken != "" {
			err := s.client.WithCredentials(apiclient.StaticToken(tok.AccessToken)).
				Post(ctx, PathLogout, logoutRequest{Refresh: tok.RefreshToken}, nil)
			if err != nil {
				log.Warn().Err(err).Msg("refresh token revocation failed")
			}
		}
	}

	if err := session.Logout(ctx); err != nil {
		return errors.Wrap(err, "[Service.Logout] failed to clear session")
	}
	return nil
}

// SessionRemaining reports how long the session's access token stays valid.
// An access token past its exp claim returns ErrSessionExpired.
func (s *Service) SessionRemaining(session sessions.Session) (time.Duration, error) {
	credential, ok := session.Credential()
	if !ok {
		return 0, NoCredentialErr
	}
	claims, err := token.Parse(credential.AccessToken)
	if err != nil {
		return 0, errors.Wrap(err, "[Service.SessionRemaining]")
	}
	now := s.nowTime()
	if claims.Expired(now) {
		return 0, errors.Wrap(apperrors.ErrSessionExpired, "[Service.SessionRemaining]")
	}
	return claims.Remaining(now), nil
}
