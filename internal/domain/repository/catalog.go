package repository

import (
	"context"

	"github.com/yinshi/foodcourt/internal/domain/model"
)

// CatalogRepository exposes read access to the dish catalog. Active-row
// filtering is explicit in the method name: soft-deleted dishes are never
// returned.
type CatalogRepository interface {
	GetActive(ctx context.Context, dishID int64) (*model.Dish, error)
}
