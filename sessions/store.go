package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-storefront/storage"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/rs/zerolog/log"
)

var ErrEmptyAccessToken = errors.New("access token is required")

// Store keeps session state in memory and mirrors every change to storage
// before the change is visible. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	storage storage.Storage
	state   State
}

var _ Session = (*Store)(nil)

// NewStore creates an unauthenticated store over s. Call Restore to load persisted state.
func NewStore(s storage.Storage) *Store {
	return &Store{storage: s}
}

// Restore loads persisted tokens and user. The store becomes authenticated
// only when both the access and refresh tokens are present.
func (s *Store) Restore(ctx context.Context) error {
	access, err := s.read(ctx, KeyAccess)
	if err != nil {
		return err
	}
	refresh, err := s.read(ctx, KeyRefresh)
	if err != nil {
		return err
	}
	rawUser, err := s.read(ctx, KeyUser)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if access == "" || refresh == "" {
		s.state = State{}
		return nil
	}

	var user *users.User
	if rawUser != "" {
		user = &users.User{}
		if err := json.Unmarshal([]byte(rawUser), user); err != nil {
			log.Warn().Err(err).Msg("Ignoring unreadable persisted user")
			user = nil
		}
	}

	s.state = State{
		User:          user,
		Credential:    &Credential{AccessToken: access, RefreshToken: refresh},
		Authenticated: true,
	}
	return nil
}

// Login persists credential and user, then marks the store authenticated.
// A storage failure puts the previously persisted session back, or clears it
// when that fails too, and leaves the in-memory state unchanged.
func (s *Store) Login(ctx context.Context, credential Credential, user *users.User) error {
	if credential.AccessToken == "" {
		return ErrEmptyAccessToken
	}

	rawUser, err := encodeUser(user)
	if err != nil {
		return fmt.Errorf("[Store.Login] encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, credential, rawUser); err != nil {
		s.rollback(ctx)
		return fmt.Errorf("[Store.Login] %w", err)
	}

	var userCopy *users.User
	if user != nil {
		u := *user
		userCopy = &u
	}
	s.state = State{
		User:          userCopy,
		Credential:    &credential,
		Authenticated: true,
	}
	return nil
}

// persist writes the access token last so an interrupted write never leaves
// a restorable mix of old and new keys.
func (s *Store) persist(ctx context.Context, credential Credential, rawUser string) error {
	if err := s.storage.Delete(ctx, KeyAccess); err != nil {
		return fmt.Errorf("clear access token: %w", err)
	}
	if err := s.setOrDelete(ctx, KeyRefresh, credential.RefreshToken); err != nil {
		return fmt.Errorf("persist refresh token: %w", err)
	}
	if err := s.setOrDelete(ctx, KeyUser, rawUser); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	if err := s.storage.Set(ctx, KeyAccess, credential.AccessToken); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	return nil
}

// rollback writes the in-memory session back to storage. Caller holds s.mu.
func (s *Store) rollback(ctx context.Context) {
	if s.state.Authenticated && s.state.Credential != nil {
		rawUser, err := encodeUser(s.state.User)
		if err == nil {
			if err = s.persist(ctx, *s.state.Credential, rawUser); err == nil {
				return
			}
		}
		log.Warn().Err(err).Msg("Failed to restore previous session, clearing it")
	}
	if err := s.storage.Delete(ctx, KeyAccess, KeyRefresh, KeyUser); err != nil {
		log.Err(err).Msg("Failed to clear partially written session")
	}
}

func encodeUser(user *users.User) (string, error) {
	if user == nil {
		return "", nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Logout clears memory first, then removes every persisted key
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	if err := s.storage.Delete(ctx, KeyAccess, KeyRefresh, KeyUser); err != nil {
		return fmt.Errorf("[Store.Logout] delete persisted session: %w", err)
	}
	return nil
}

// Credential returns the current token pair
func (s *Store) Credential() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.Credential == nil {
		return Credential{}, false
	}
	return *s.state.Credential, true
}

// AccessToken returns the current access token or an empty string
func (s *Store) AccessToken() string {
	credential, _ := s.Credential()
	return credential.AccessToken
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Authenticated
}

// User returns a copy of the signed-in user, or nil
func (s *Store) User() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// State returns a snapshot of the whole session
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state
	if state.Credential != nil {
		c := *state.Credential
		state.Credential = &c
	}
	if state.User != nil {
		u := *state.User
		state.User = &u
	}
	return state
}

func (s *Store) read(ctx context.Context, key string) (string, error) {
	value, err := s.storage.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("[Store.Restore] read %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) setOrDelete(ctx context.Context, key, value string) error {
	if value == "" {
		return s.storage.Delete(ctx, key)
	}
	return s.storage.Set(ctx, key, value)
}
