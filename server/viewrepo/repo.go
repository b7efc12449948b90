package viewrepo

import (
	"errors"
	"time"

	"github.com/jrsteele09/go-storefront/catalog"
)

var ErrViewNotFound = errors.New("view not found")

// ProductsView is a mounted product listing owned by one browser session
type ProductsView struct {
	ID        string
	Owner     string
	Cursor    *catalog.Cursor
	CreatedAt time.Time
	LastUsed  time.Time
}

type Repo interface {
	// Mount registers cursor as owner's listing, unmounting any previous one
	Mount(owner string, cursor *catalog.Cursor) (*ProductsView, error)
	// Get returns owner's view with the given id and marks it used
	Get(owner, id string) (*ProductsView, error)
	// Unmount closes and removes owner's view
	Unmount(owner string) error
	// Sweep unmounts views idle for longer than the repo TTL
	Sweep() int
}
