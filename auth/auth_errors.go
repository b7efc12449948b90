package auth

import "errors"

var (
	MissingAccessTokenErr = errors.New("token response missing access token")
	UnknownUserIDErr      = errors.New("access token carries no user id")
	NoCredentialErr       = errors.New("session has no credential")
)
