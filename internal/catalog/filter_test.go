package catalog

import (
	"testing"

	"pos-service/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	products := []model.Product{
		{ID: 1, Name: "Alfajor Triple", Category: "Golosinas"},
		{ID: 2, Name: "Coca Cola 500ml", Category: "Bebidas"},
		{ID: 3, Name: "Agua Mineral", Category: "Bebidas"},
		{ID: 4, Name: "Yerba Mate", Category: ""},
	}

	tests := []struct {
		query string
		want  []uint
	}{
		{"", []uint{1, 2, 3, 4}},
		{"   ", []uint{}},
		{"a m", []uint{3, 4}},
		{"cola", []uint{2}},
		{"COLA", []uint{2}},
		{"bebidas", []uint{2, 3}},
		{"a", []uint{1, 2, 3, 4}},
		{"mate", []uint{4}},
		{"nothing", []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ids := []uint{}
			for _, p := range Filter(products, tt.query) {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
