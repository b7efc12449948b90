package catalog

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-storefront/apiclient"
	"github.com/pkg/errors"
)

const DefaultPageSize = 2

// Fetcher loads one page from a base-relative location
type Fetcher interface {
	FetchPage(ctx context.Context, location string) (Page, error)
}

// Service fetches product pages through the API client
type Service struct {
	client   *apiclient.Client
	locator  *Locator
	pageSize int
}

var _ Fetcher = (*Service)(nil)

func NewService(client *apiclient.Client, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		client:   client,
		locator:  NewLocator(client.BaseURL()),
		pageSize: pageSize,
	}
}

// FirstPage is the location of the first listing page
func (s *Service) FirstPage() string {
	return fmt.Sprintf("products?page_size=%d", s.pageSize)
}

// FetchPage returns the page at location with next and previous rewritten as
// base-relative locations. Locations that cannot be followed become nil.
func (s *Service) FetchPage(ctx context.Context, location string) (Page, error) {
	var page Page
	if err := s.client.Get(ctx, location, &page); err != nil {
		return Page{}, errors.Wrapf(err, "[Service.FetchPage] %s", location)
	}
	page.Next = s.relative(page.Next)
	page.Previous = s.relative(page.Previous)
	if page.Results == nil {
		page.Results = []Product{}
	}
	return page, nil
}

// NewCursor returns a cursor positioned before the first page
func (s *Service) NewCursor() *Cursor {
	return NewCursor(s, s.FirstPage())
}

func (s *Service) relative(raw *string) *string {
	rel := s.locator.Relative(raw)
	if rel == "" {
		return nil
	}
	return &rel
}
