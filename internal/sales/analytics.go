// Package sales derives the dashboard figures from already loaded orders and items.
// Every function here is pure and recomputed per request.
package sales

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"pos-service/internal/model"

	"github.com/shopspring/decimal"
)

// TopProductsLimit is how many products the ranking keeps
const TopProductsLimit = 5

// ErrInvalidStoreFilter is returned for store selectors outside "all", "1", "2", "3"
var ErrInvalidStoreFilter = errors.New("invalid store filter")

// StoreFilter narrows the dashboard to one store. The zero value means all stores.
type StoreFilter struct {
	StoreID model.StoreID
}

// AllStores is the filter that keeps everything
var AllStores = StoreFilter{}

// ParseStoreFilter reads the dashboard selector value
func ParseStoreFilter(s string) (StoreFilter, error) {
	if s == "" || s == "all" {
		return AllStores, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || !model.StoreID(n).Valid() {
		return AllStores, fmt.Errorf("%w: %q", ErrInvalidStoreFilter, s)
	}
	return StoreFilter{StoreID: model.StoreID(n)}, nil
}

// IsAll reports whether the filter keeps every store
func (f StoreFilter) IsAll() bool {
	return f.StoreID == 0
}

// String returns the selector value
func (f StoreFilter) String() string {
	if f.IsAll() {
		return "all"
	}
	return strconv.FormatUint(uint64(f.StoreID), 10)
}

// ProductCount is one row of the product ranking
type ProductCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// StoreRevenue is one slice of the per-store revenue split
type StoreRevenue struct {
	StoreID model.StoreID   `json:"store_id"`
	Name    string          `json:"name"`
	Total   decimal.Decimal `json:"total"`
}

// Summary is everything the dashboard shows for a filter
type Summary struct {
	Filter         StoreFilter     `json:"-"`
	Store          string          `json:"store"`
	Orders         []model.Order   `json:"orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TicketCount    int             `json:"ticket_count"`
	TopProducts    []ProductCount  `json:"top_products"`
	RevenueByStore []StoreRevenue  `json:"revenue_by_store"`
}

// FilterOrders keeps the orders of the filtered store
func FilterOrders(orders []model.Order, f StoreFilter) []model.Order {
	if f.IsAll() {
		return orders
	}
	filtered := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if o.StoreID == f.StoreID {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// FilterItems keeps the items sold at the filtered store
func FilterItems(items []model.SoldItem, f StoreFilter) []model.SoldItem {
	if f.IsAll() {
		return items
	}
	filtered := make([]model.SoldItem, 0, len(items))
	for _, it := range items {
		if it.StoreID == f.StoreID {
			filtered = append(filtered, it)
		}
	}
	return filtered
}

// TotalRevenue sums the order totals
func TotalRevenue(orders []model.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	return total
}

// TopProducts groups items by product name, sums quantities and returns the limit
// highest. Ties keep the order in which names were first seen.
func TopProducts(items []model.SoldItem, limit int) []ProductCount {
	index := make(map[string]int)
	counts := make([]ProductCount, 0)
	for _, it := range items {
		i, ok := index[it.ProductName]
		if !ok {
			i = len(counts)
			index[it.ProductName] = i
			counts = append(counts, ProductCount{Name: it.ProductName})
		}
		counts[i].Count += it.Quantity
	}

	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Count > counts[b].Count
	})

	if limit >= 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// RevenueByStore splits revenue across the fixed stores. Callers pass the unfiltered
// order set; stores without sales appear with a zero total.
func RevenueByStore(orders []model.Order) []StoreRevenue {
	split := make([]StoreRevenue, len(model.Stores))
	for i, s := range model.Stores {
		split[i] = StoreRevenue{StoreID: s.ID, Name: s.Name, Total: decimal.Zero}
	}
	for _, o := range orders {
		for i := range split {
			if split[i].StoreID == o.StoreID {
				split[i].Total = split[i].Total.Add(o.Total)
				break
			}
		}
	}
	return split
}

// Summarize computes the dashboard for a filter. The per-store split always covers the
// global order set, whatever the filter.
func Summarize(orders []model.Order, items []model.SoldItem, f StoreFilter) Summary {
	displayed := FilterOrders(orders, f)
	if displayed == nil {
		displayed = []model.Order{}
	}

	store := "Global"
	if !f.IsAll() {
		store = f.StoreID.Name()
	}

	return Summary{
		Filter:         f,
		Store:          store,
		Orders:         displayed,
		TotalRevenue:   TotalRevenue(displayed),
		TicketCount:    len(displayed),
		TopProducts:    TopProducts(FilterItems(items, f), TopProductsLimit),
		RevenueByStore: RevenueByStore(orders),
	}
}
