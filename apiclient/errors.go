package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed API call
type Kind int

const (
	KindAuthentication Kind = iota + 1 // 401
	KindAuthorization                  // 403
	KindNotFound                       // 404
	KindServer                         // 5xx
	KindClient                         // any other non-2xx
	KindNetwork                        // transport failure, no response
	KindDecode                         // 2xx with an unreadable body
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against an *Error of the same kind
var (
	ErrUnauthenticated = errors.New("api: authentication failed")
	ErrForbidden       = errors.New("api: forbidden")
	ErrNotFound        = errors.New("api: not found")
	ErrServer          = errors.New("api: server error")
	ErrRequest         = errors.New("api: request rejected")
	ErrNetwork         = errors.New("api: network failure")
	ErrDecode          = errors.New("api: undecodable response")
)

var kindSentinels = map[Kind]error{
	KindAuthentication: ErrUnauthenticated,
	KindAuthorization:  ErrForbidden,
	KindNotFound:       ErrNotFound,
	KindServer:         ErrServer,
	KindClient:         ErrRequest,
	KindNetwork:        ErrNetwork,
	KindDecode:         ErrDecode,
}

// Error is returned for every failed call
type Error struct {
	Kind       Kind
	Method     string
	Path       string
	StatusCode int    // Zero for network failures
	Body       []byte // Raw response body, possibly truncated
	Err        error  // Underlying transport or decode error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.Path, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s %s: %s error", e.Method, e.Path, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// KindForStatus maps a non-2xx status code to its Kind
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindAuthorization
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindClient
	}
}

// StatusCode returns the HTTP status carried by err, or zero
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
