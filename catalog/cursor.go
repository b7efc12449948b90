package catalog

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/jrsteele09/go-storefront/internal/utils"
)

var (
	ErrBusy   = errors.New("a page is already loading")
	ErrClosed = errors.New("cursor is closed")
)

// Cursor walks the product listing one page at a time.
// Navigation is refused while a fetch is in flight.
type Cursor struct {
	mu      sync.Mutex
	fetcher Fetcher
	first   string

	current  string
	next     string
	previous string
	count    int
	results  []Product
	loaded   bool
	loading  bool
	closed   bool
}

func NewCursor(fetcher Fetcher, first string) *Cursor {
	return &Cursor{
		fetcher: fetcher,
		first:   first,
	}
}

// Load fetches the first page
func (c *Cursor) Load(ctx context.Context) error {
	_, err := c.move(ctx, func() string { return c.first })
	return err
}

// Next fetches the page after the current one. It reports false without
// fetching when there is no next page.
func (c *Cursor) Next(ctx context.Context) (bool, error) {
	return c.move(ctx, func() string { return c.next })
}

// Previous fetches the page before the current one. It reports false without
// fetching when there is no previous page.
func (c *Cursor) Previous(ctx context.Context) (bool, error) {
	return c.move(ctx, func() string { return c.previous })
}

// Close unmounts the cursor. Results arriving afterwards are dropped.
func (c *Cursor) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.results = nil
}

func (c *Cursor) move(ctx context.Context, target func() string) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	if c.loading {
		c.mu.Unlock()
		return false, ErrBusy
	}
	location := target()
	if location == "" {
		c.mu.Unlock()
		return false, nil
	}
	c.loading = true
	c.mu.Unlock()

	page, err := c.fetcher.FetchPage(ctx, location)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.closed {
		return true, ErrClosed
	}
	if err != nil {
		return true, err
	}
	c.current = location
	c.next = utils.Value(page.Next)
	c.previous = utils.Value(page.Previous)
	c.count = page.Count
	c.results = page.Results
	c.loaded = true
	return true, nil
}

// Snapshot is the render model of a cursor
type Snapshot struct {
	Results     []Product
	Count       int
	Current     string
	Loaded      bool
	Loading     bool
	CanNext     bool
	CanPrevious bool
}

func (c *Cursor) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Results:     slices.Clone(c.results),
		Count:       c.count,
		Current:     c.current,
		Loaded:      c.loaded,
		Loading:     c.loading,
		CanNext:     !c.loading && !c.closed && c.next != "",
		CanPrevious: !c.loading && !c.closed && c.previous != "",
	}
}

// Filter narrows the current page to products whose name matches query
func (s Snapshot) Filter(query string) Snapshot {
	s.Results = FilterProducts(s.Results, query)
	return s
}
