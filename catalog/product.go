package catalog

import (
	"strings"

	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Category groups products
type Category struct {
	ID   utils.FlexString `json:"id"`
	Name string           `json:"name"`
}

// Product is one listed item. Price arrives either as a decimal string or a number.
type Product struct {
	ID          utils.FlexString `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       utils.FlexString `json:"price"`
	Stock       int              `json:"stock,omitempty"`
	Category    *Category        `json:"category,omitempty"`
	Seller      *users.User      `json:"seller,omitempty"`
}

// Page is the pagination envelope returned by the listing endpoint
type Page struct {
	Results  []Product `json:"results"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Count    int       `json:"count"`
}

// FilterProducts returns the products whose name fuzzily matches query
func FilterProducts(products []Product, query string) []Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return products
	}
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if fuzzy.MatchNormalized(strings.ToLower(query), strings.ToLower(p.Name)) {
			matched = append(matched, p)
		}
	}
	return matched
}
