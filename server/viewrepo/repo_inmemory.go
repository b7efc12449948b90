package viewrepo

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/segmentio/ksuid"
)

const DefaultTTL = 30 * time.Minute

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu      sync.RWMutex
	views   map[string]*ProductsView // by view id
	byOwner map[string]string        // owner to view id
	ttl     time.Duration
	nowTime func() time.Time
}

var _ Repo = (*InMemoryRepo)(nil)

// Option configures an InMemoryRepo
type Option func(*InMemoryRepo)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(r *InMemoryRepo) {
		r.nowTime = nowFunc
	}
}

// NewInMemoryRepo creates a new in-memory view repository
func NewInMemoryRepo(ttl time.Duration, opts ...Option) *InMemoryRepo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &InMemoryRepo{
		views:   make(map[string]*ProductsView),
		byOwner: make(map[string]string),
		ttl:     ttl,
		nowTime: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *InMemoryRepo) Mount(owner string, cursor *catalog.Cursor) (*ProductsView, error) {
	if owner == "" {
		return nil, errors.New("owner cannot be empty")
	}
	if cursor == nil {
		return nil, errors.New("cursor cannot be nil")
	}

	id, err := ksuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate view id: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.unmountLocked(owner)
	now := r.nowTime()
	view := &ProductsView{
		ID:        id.String(),
		Owner:     owner,
		Cursor:    cursor,
		CreatedAt: now,
		LastUsed:  now,
	}
	r.views[view.ID] = view
	r.byOwner[owner] = view.ID

	copied := *view
	return &copied, nil
}

func (r *InMemoryRepo) Get(owner, id string) (*ProductsView, error) {
	if owner == "" || id == "" {
		return nil, ErrViewNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	view, exists := r.views[id]
	if !exists || view.Owner != owner {
		return nil, ErrViewNotFound
	}
	now := r.nowTime()
	if now.Sub(view.LastUsed) > r.ttl {
		r.unmountLocked(owner)
		return nil, ErrViewNotFound
	}
	view.LastUsed = now

	copied := *view
	return &copied, nil
}

func (r *InMemoryRepo) Unmount(owner string) error {
	if owner == "" {
		return errors.New("owner cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unmountLocked(owner)
	return nil
}

func (r *InMemoryRepo) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowTime()
	removed := 0
	for _, view := range r.views {
		if now.Sub(view.LastUsed) > r.ttl {
			r.unmountLocked(view.Owner)
			removed++
		}
	}
	return removed
}

// Len returns the number of mounted views
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

func (r *InMemoryRepo) unmountLocked(owner string) {
	id, exists := r.byOwner[owner]
	if !exists {
		return
	}
	if view, ok := r.views[id]; ok {
		view.Cursor.Close()
		delete(r.views, id)
	}
	delete(r.byOwner, owner)
}
