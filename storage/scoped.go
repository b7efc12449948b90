package storage

import (
	"context"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Scoped namespaces every key of a shared backend under one client id.
// The id is hashed so raw cookie values never appear in the backend.
type Scoped struct {
	backend Storage
	prefix  string
}

var _ Storage = (*Scoped)(nil)

// Scope returns the view of backend belonging to id
func Scope(backend Storage, id string) *Scoped {
	return &Scoped{
		backend: backend,
		prefix:  Namespace(id) + ":",
	}
}

// Namespace derives the storage namespace for a client id
func Namespace(id string) string {
	sum := blake2b.Sum256([]byte(id))
	return hex.EncodeToString(sum[:16])
}

func (s *Scoped) Get(ctx context.Context, key string) (string, error) {
	return s.backend.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, s.prefix+key, value)
}

func (s *Scoped) Delete(ctx context.Context, keys ...string) error {
	scoped := make([]string, 0, len(keys))
	for _, key := range keys {
		scoped = append(scoped, s.prefix+key)
	}
	return s.backend.Delete(ctx, scoped...)
}
