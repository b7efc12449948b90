package sessions_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/stretchr/testify/require"
)

var errStorageDown = errors.New("storage down")

// failingStorage wraps a repo and fails writes to one key
type failingStorage struct {
	storage.Storage
	failSet    string
	failDelete string
}

func (f failingStorage) Set(ctx context.Context, key, value string) error {
	if key == f.failSet {
		return errStorageDown
	}
	return f.Storage.Set(ctx, key, value)
}

func (f failingStorage) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if key == f.failDelete {
			return errStorageDown
		}
	}
	return f.Storage.Delete(ctx, keys...)
}

// flakyStorage fails the first write to one key
type flakyStorage struct {
	storage.Storage
	mu     sync.Mutex
	failOn string
	failed bool
}

func (f *flakyStorage) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	fail := key == f.failOn && !f.failed
	if fail {
		f.failed = true
	}
	f.mu.Unlock()
	if fail {
		return errStorageDown
	}
	return f.Storage.Set(ctx, key, value)
}

func storedValue(t *testing.T, s storage.Storage, key string) (string, bool) {
	t.Helper()
	value, err := s.Get(context.Background(), key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false
	}
	require.NoError(t, err)
	return value, true
}

func TestStore_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("authenticated and persisted", func(t *testing.T) {
		repo := storage.NewInMemoryRepo()
		store := sessions.NewStore(repo)
		user := &users.User{Username: "jane", Email: "jane@example.com"}

		err := store.Login(ctx, sessions.Credential{AccessToken: "a1", RefreshToken: "r1"}, user)
		require.NoError(t, err)

		require.True(t, store.IsAuthenticated())
		access, _ := storedValue(t, repo, sessions.KeyAccess)
		refresh, _ := storedValue(t, repo, sessions.KeyRefresh)
		require.Equal(t, "a1", access)
		require.Equal(t, "r1", refresh)

		rawUser, ok := storedValue(t, repo, sessions.KeyUser)
		require.True(t, ok)
		require.JSONEq(t, `{"username":"jane","email":"jane@example.com"}`, rawUser)

		credential, ok := store.Credential()
		require.True(t, ok)
		require.Equal(t, "a1", credential.AccessToken)
		require.Equal(t, "a1", store.AccessToken())
		require.Equal(t, "jane", store.User().Username)
	})

	t.Run("user is copied", func(t *testing.T) {
		store := sessions.NewStore(storage.NewInMemoryRepo())
		user := &users.User{Username: "jane"}
		require.NoError(t, store.Login(ctx, sessions.Credential{AccessToken: "a1", RefreshToken: "r1"}, user))

		user.Username = "mallory"
		require.Equal(t, "jane", store.User().Username)
		store.User().Username = "mallory"
		require.Equal(t, "jane", store.User().Username)
	})

	t.Run("without user or refresh", func(t *testing.T) {
		repo := storage.NewInMemoryRepo()
		require.NoError(t, repo.Set(ctx, sessions.KeyUser, `{"username":"old"}`))
		require.NoError(t, repo.Set(ctx, sessions.KeyRefresh, "old-refresh"))
		store := sessions.NewStore(repo)

		require.NoError(t, store.Login(ctx, sessions.Credential{AccessToken: "a1"}, nil))
		require.True(t, store.IsAuthenticated())
		require.Nil(t, store.User())

		_, ok := storedValue(t, repo, sessions.KeyUser)
		require.False(t, ok)
		_, ok = storedValue(t, repo, sessions.KeyRefresh)
		require.False(t, ok)
	})

	t.Run("empty access token rejected", func(t *testing.T) {
		store := sessions.NewStore(storage.NewInMemoryRepo())
		err := store.Login(ctx, sessions.Credential{RefreshToken: "r1"}, nil)
		require.ErrorIs(t, err, sessions.ErrEmptyAccessToken)
		require.False(t, store.IsAuthenticated())
	})

	t.Run("storage failure keeps previous state", func(t *testing.T) {
		store := sessions.NewStore(failingStorage{Storage: storage.NewInMemoryRepo(), failSet: sessions.KeyRefresh})
		err := store.Login(ctx, sessions.Credential{AccessToken: "a1", RefreshToken: "r1"}, nil)
		require.ErrorIs(t, err, errStorageDown)
		require.False(t, store.IsAuthenticated())
		_, ok := store.Credential()
		require.False(t, ok)
	})

	t.Run("failed login never restores a mixed credential", func(t *testing.T) {
		repo := storage.NewInMemoryRepo()
		require.NoError(t, sessions.NewStore(repo).Login(ctx, sessions.Credential{AccessToken: "aX", RefreshToken: "rX"}, &users.User{Username: "x"}))

		store := sessions.NewStore(failingStorage{Storage: repo, failSet: sessions.KeyRefresh})
		require.NoError(t, store.Restore(ctx))
		err := store.Login(ctx, sessions.Credential{AccessToken: "aY", RefreshToken: "rY"}, &users.User{Username: "y"})
		require.ErrorIs(t, err, errStorageDown)
		require.Equal(t, "aX", store.AccessToken())

		reloaded := sessions.NewStore(repo)
		require.NoError(t, reloaded.Restore(ctx))
		require.False(t, reloaded.IsAuthenticated())
		_, ok := storedValue(t, repo, sessions.KeyAccess)
		require.False(t, ok)
	})

	t.Run("failed login puts the previous session back", func(t *testing.T) {
		repo := storage.NewInMemoryRepo()
		require.NoError(t, sessions.NewStore(repo).Login(ctx, sessions.Credential{AccessToken: "aX", RefreshToken: "rX"}, &users.User{Username: "x"}))

		store := sessions.NewStore(&flakyStorage{Storage: repo, failOn: sessions.KeyUser})
		require.NoError(t, store.Restore(ctx))
		err := store.Login(ctx, sessions.Credential{AccessToken: "aY", RefreshToken: "rY"}, &users.User{Username: "y"})
		require.ErrorIs(t, err, errStorageDown)

		reloaded := sessions.NewStore(repo)
		require.NoError(t, reloaded.Restore(ctx))
		require.True(t, reloaded.IsAuthenticated())
		credential, _ := reloaded.Credential()
		require.Equal(t, sessions.Credential{AccessToken: "aX", RefreshToken: "rX"}, credential)
		require.Equal(t, "x", reloaded.User().Username)
	})

	t.Run("visible to concurrent readers once returned", func(t *testing.T) {
		store := sessions.NewStore(storage.NewInMemoryRepo())
		require.NoError(t, store.Login(ctx, sessions.Credential{AccessToken: "a1", RefreshToken: "r1"}, nil))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				require.True(t, store.IsAuthenticated())
				require.Equal(t, "a1", store.AccessToken())
			}()
		}
		wg.Wait()
	})
}

func TestStore_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("clears memory and storage", func(t *testing.T) {
		repo := storage.NewInMemoryRepo()
		store := sessions.NewStore(repo)
		require.NoError(t, store.Login(ctx, sessions.Credential{AccessToken: "a1", RefreshToken: "r1"}, &users.User{Username: "jane"}))

		require.NoError(t, store.Logout(ctx))

		require.False(t, store.IsAuthenticated())
		require.Nil(t, store.User())
		require.Empty(t, store.AccessToken())
		require.Equal(t, sessions.State{}, store.State())
		for _, key := range []string{sessions.KeyAccess, sessions.KeyRefresh, sessions.KeyUser} {
			_, ok := storedValue(t, repo, key)
			require.False(t, ok, key)
		}
	})

	t.Run("storage failure still logs out in memory", func(t *testing.T) {
		store := sessions.NewStore(failingStorage{Storage: storage.NewInMemoryRepo(), failDelete: sessions.KeyAccess})
		require.NoError(t, store.Login(ctx, sessions.Credential{AccessToken: "a1", RefreshToken: "r1"}, nil))

		err := store.Logout(ctx)
		require.ErrorIs(t, err, errStorageDown)
		require.False(t, store.IsAuthenticated())
	})
}

func TestStore_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("both tokens present", func(t *testing.T) {
		repo := storage.NewInMemoryRepo()
		require.NoError(t, repo.Set(ctx, sessions.KeyAccess, "a1"))
		require.NoError(t, repo.Set(ctx, sessions.KeyRefresh, "r1"))
		require.NoError(t, repo.Set(ctx, sessions.KeyUser, `{"username":"jane","email":"jane@example.com"}`))

		store := sessions.NewStore(repo)
		require.NoError(t, store.Restore(ctx))

		require.True(t, store.IsAuthenticated())
		credential, ok := store.Credential()
		require.True(t, ok)
		require.Equal(t, sessions.Credential{AccessToken: "a1", RefreshToken: "r1"}, credential)
		require.Equal(t, "jane@example.com", store.User().Email)
	})

	t.Run("refresh missing stays unauthenticated", func(t *testing.T) {
		repo := storage.NewInMemoryRepo()
		require.NoError(t, repo.Set(ctx, sessions.KeyAccess, "a1"))

		store := sessions.NewStore(repo)
		require.NoError(t, store.Restore(ctx))
		require.False(t, store.IsAuthenticated())
		require.Empty(t, store.AccessToken())
	})

	t.Run("access missing stays unauthenticated", func(t *testing.T) {
		repo := storage.NewInMemoryRepo()
		require.NoError(t, repo.Set(ctx, sessions.KeyRefresh, "r1"))

		store := sessions.NewStore(repo)
		require.NoError(t, store.Restore(ctx))
		require.False(t, store.IsAuthenticated())
	})

	t.Run("corrupt user ignored", func(t *testing.T) {
		repo := storage.NewInMemoryRepo()
		require.NoError(t, repo.Set(ctx, sessions.KeyAccess, "a1"))
		require.NoError(t, repo.Set(ctx, sessions.KeyRefresh, "r1"))
		require.NoError(t, repo.Set(ctx, sessions.KeyUser, "{broken"))

		store := sessions.NewStore(repo)
		require.NoError(t, store.Restore(ctx))
		require.True(t, store.IsAuthenticated())
		require.Nil(t, store.User())
	})

	t.Run("login survives a restart", func(t *testing.T) {
		repo := storage.NewInMemoryRepo()
		first := sessions.NewStore(repo)
		require.NoError(t, first.Login(ctx, sessions.Credential{AccessToken: "a1", RefreshToken: "r1"}, nil))

		second := sessions.NewStore(repo)
		require.NoError(t, second.Restore(ctx))
		require.True(t, second.IsAuthenticated())

		require.NoError(t, second.Logout(ctx))
		third := sessions.NewStore(repo)
		require.NoError(t, third.Restore(ctx))
		require.False(t, third.IsAuthenticated())
	})
}

func TestContext(t *testing.T) {
	_, ok := sessions.FromContext(context.Background())
	require.False(t, ok)

	store := sessions.NewStore(storage.NewInMemoryRepo())
	got, ok := sessions.FromContext(sessions.NewContext(context.Background(), store))
	require.True(t, ok)
	require.Same(t, store, got)
}

func TestCredential_Token(t *testing.T) {
	tok := sessions.Credential{AccessToken: "a1", RefreshToken: "r1"}.Token()
	require.Equal(t, "Bearer", tok.Type())
	require.Equal(t, "a1", tok.AccessToken)
}
