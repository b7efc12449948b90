package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/server/viewrepo"
	"github.com/rs/zerolog/log"
)

const productListFragment = "product-list"

type navigation int

const (
	navigateNext navigation = iota
	navigatePrevious
)

// ProductsPageData contains data for rendering the product listing
type ProductsPageData struct {
	Layout
	ViewID   string
	Query    string
	Snapshot catalog.Snapshot
}

// ProductsHandler shows the mounted listing for this browser (GET /products).
// Without a known view id a fresh listing is mounted and its first page loaded.
func (s *Server) ProductsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("products.html")
	return func(w http.ResponseWriter, r *http.Request) {
		owner := browserIDFrom(r)
		query := r.URL.Query()

		view, err := s.views.Get(owner, query.Get("view"))
		if err != nil {
			view, err = s.views.Mount(owner, s.catalog.NewCursor())
			if err != nil {
				log.Err(err).Msg("Failed to mount products view")
				redirectSuccess(w, r, RouteError)
				return
			}
			if err := view.Cursor.Load(r.Context()); err != nil {
				if s.interceptAPIError(w, r, err) {
					return
				}
				log.Err(err).Msg("Failed to load products")
			}
		}

		render(w, r, tmpl, http.StatusOK, productListFragment, s.productsData(r, view, query.Get("q")))
	}
}

// ProductsNavigateHandler moves the mounted listing one page (POST /products/next, /products/previous)
func (s *Server) ProductsNavigateHandler(direction navigation) http.HandlerFunc {
	tmpl := mustParseTemplate("products.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		view, err := s.views.Get(browserIDFrom(r), r.FormValue("view"))
		if err != nil {
			// Unknown or expired view, start again from the first page
			redirectSuccess(w, r, RouteProducts)
			return
		}

		move := view.Cursor.Next
		if direction == navigatePrevious {
			move = view.Cursor.Previous
		}

		switch _, err := move(r.Context()); {
		case err == nil:
		case errors.Is(err, catalog.ErrBusy):
			log.Debug().Str("view", view.ID).Msg("Page already loading, navigation ignored")
		case errors.Is(err, catalog.ErrClosed):
			redirectSuccess(w, r, RouteProducts)
			return
		default:
			if s.interceptAPIError(w, r, err) {
				return
			}
			// The listing keeps its previous page
			log.Err(err).Str("view", view.ID).Msg("Failed to load products page")
		}

		if !isHTMXRequest(r) {
			redirectSuccess(w, r, RouteProducts+"?view="+view.ID)
			return
		}
		render(w, r, tmpl, http.StatusOK, productListFragment, s.productsData(r, view, r.FormValue("q")))
	}
}

func (s *Server) productsData(r *http.Request, view *viewrepo.ProductsView, query string) ProductsPageData {
	return ProductsPageData{
		Layout:   s.layout(r, "Products"),
		ViewID:   view.ID,
		Query:    query,
		Snapshot: view.Cursor.Snapshot().Filter(query),
	}
}
