package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pos-service/internal/model"
	"pos-service/prometheus"

	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a ProductRepository backed by gorm
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var products []model.Product
	if err := r.db.WithContext(ctx).Order("name asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *productRepository) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, nil
}
