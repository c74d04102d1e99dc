// Package repotest provides in-memory repositories with error injection for tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"pos-service/internal/model"
	"pos-service/internal/repository"
)

// Products is an in-memory repository.ProductRepository
type Products struct {
	mu       sync.Mutex
	products []model.Product

	// ListErr and GetErr, when set, are returned instead of data.
	ListErr error
	GetErr  error
}

// NewProducts seeds a product repository
func NewProducts(products ...model.Product) *Products {
	return &Products{products: append([]model.Product(nil), products...)}
}

// SetPrice changes a stored product's price
func (p *Products) SetPrice(id uint, product model.Product) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.products {
		if p.products[i].ID == id {
			p.products[i] = product
		}
	}
}

func (p *Products) ListProducts(_ context.Context) ([]model.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ListErr != nil {
		return nil, p.ListErr
	}
	out := append([]model.Product(nil), p.products...)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (p *Products) GetProduct(_ context.Context, id uint) (*model.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.GetErr != nil {
		return nil, p.GetErr
	}
	for _, prod := range p.products {
		if prod.ID == id {
			found := prod
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Orders is an in-memory repository.OrderRepository. CreateSale is all-or-nothing.
type Orders struct {
	mu     sync.Mutex
	orders []model.Order
	items  []model.OrderItem
	nextID uint
	base   time.Time

	CreateOrderErr error
	CreateItemsErr error
	ListErr        error
	UpdateErr      error

	// Hook runs at the start of every write, before any error injection.
	Hook func()
}

// NewOrders creates an empty order repository
func NewOrders() *Orders {
	return &Orders{base: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (o *Orders) CreateOrder(_ context.Context, order *model.Order) error {
	o.runHook()
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.CreateOrderErr != nil {
		return o.CreateOrderErr
	}
	o.insertOrder(order)
	return nil
}

func (o *Orders) CreateOrderItems(_ context.Context, items []model.OrderItem) error {
	o.runHook()
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.CreateItemsErr != nil {
		return o.CreateItemsErr
	}
	o.insertItems(items)
	return nil
}

func (o *Orders) CreateSale(_ context.Context, order *model.Order) error {
	o.runHook()
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.CreateOrderErr != nil {
		return o.CreateOrderErr
	}
	if o.CreateItemsErr != nil {
		return o.CreateItemsErr
	}
	o.insertOrder(order)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	o.insertItems(order.Items)
	return nil
}

func (o *Orders) ListCompletedOrders(_ context.Context) ([]model.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ListErr != nil {
		return nil, o.ListErr
	}
	out := make([]model.Order, 0, len(o.orders))
	for _, ord := range o.orders {
		if ord.Status == model.StatusCompleted {
			out = append(out, ord)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (o *Orders) ListCompletedItems(_ context.Context) ([]model.SoldItem, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ListErr != nil {
		return nil, o.ListErr
	}
	out := make([]model.SoldItem, 0, len(o.items))
	for _, it := range o.items {
		ord := o.find(it.OrderID)
		if ord == nil || ord.Status != model.StatusCompleted {
			continue
		}
		out = append(out, model.SoldItem{ProductName: it.ProductName, Quantity: it.Quantity, StoreID: ord.StoreID})
	}
	return out, nil
}

func (o *Orders) GetOrder(_ context.Context, id uint) (*model.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ord := o.find(id)
	if ord == nil {
		return nil, repository.ErrNotFound
	}
	found := *ord
	found.Items = nil
	for _, it := range o.items {
		if it.OrderID == id {
			found.Items = append(found.Items, it)
		}
	}
	return &found, nil
}

func (o *Orders) UpdateOrderStatus(_ context.Context, id uint, from, to model.OrderStatus) (bool, error) {
	o.runHook()
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.UpdateErr != nil {
		return false, o.UpdateErr
	}
	ord := o.find(id)
	if ord == nil {
		return false, repository.ErrNotFound
	}
	if ord.Status != from {
		return false, nil
	}
	ord.Status = to
	return true, nil
}

// Seed stores an order as-is, assigning an id and timestamp when missing
func (o *Orders) Seed(order model.Order, items ...model.OrderItem) model.Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.insertOrder(&order)
	for i := range items {
		items[i].OrderID = order.ID
	}
	o.insertItems(items)
	return order
}

// AllOrders returns every stored order regardless of status
func (o *Orders) AllOrders() []model.Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]model.Order(nil), o.orders...)
}

// AllItems returns every stored order item
func (o *Orders) AllItems() []model.OrderItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]model.OrderItem(nil), o.items...)
}

func (o *Orders) runHook() {
	if o.Hook != nil {
		o.Hook()
	}
}

func (o *Orders) insertOrder(order *model.Order) {
	o.nextID++
	if order.ID == 0 {
		order.ID = o.nextID
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = o.base.Add(time.Duration(o.nextID) * time.Minute)
	}
	order.Store = model.Store{ID: order.StoreID, Name: order.StoreID.Name()}
	stored := *order
	stored.Items = nil
	o.orders = append(o.orders, stored)
}

func (o *Orders) insertItems(items []model.OrderItem) {
	for i := range items {
		if items[i].ID == 0 {
			items[i].ID = uint(len(o.items) + 1)
		}
		o.items = append(o.items, items[i])
	}
}

func (o *Orders) find(id uint) *model.Order {
	for i := range o.orders {
		if o.orders[i].ID == id {
			return &o.orders[i]
		}
	}
	return nil
}
