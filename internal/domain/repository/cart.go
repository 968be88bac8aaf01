package repository

import (
	"context"

	"github.com/yinshi/foodcourt/internal/domain/model"
)

// CartRepository manages a user's shopping cart. Rows are soft-deleted.
type CartRepository interface {
	// Upsert adds quantity to an existing active position or creates one.
	Upsert(ctx context.Context, userID, dishID int64, quantity int) (*model.CartItem, error)
	ListActive(ctx context.Context, userID int64) ([]model.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, dishID int64, quantity int) error
	Remove(ctx context.Context, userID, dishID int64) error
}
