package catalog

import (
	"strings"

	"pos-service/internal/model"
)

// Filter keeps the products whose name or category contains query, ignoring case.
// An empty query keeps everything. Whitespace in the query is matched literally.
// Order is preserved.
func Filter(products []model.Product, query string) []model.Product {
	q := strings.ToLower(query)
	if q == "" {
		return products
	}

	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Category), q) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
