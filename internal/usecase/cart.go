package usecase

import (
	"context"
	"errors"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
	"github.com/yinshi/foodcourt/internal/domain/repository"
)

// CartUseCase manages the user's shopping cart against the live catalog.
type CartUseCase struct {
	carts   repository.CartRepository
	catalog repository.CatalogRepository
}

// NewCartUseCase constructs CartUseCase.
func NewCartUseCase(carts repository.CartRepository, catalog repository.CatalogRepository) *CartUseCase {
	return &CartUseCase{carts: carts, catalog: catalog}
}

// Add puts quantity of a dish into the cart, merging with an existing active
// position. The dish must exist and be active.
func (u *CartUseCase) Add(ctx context.Context, userID, dishID int64, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, domainErrors.ErrInvalidQuantity
	}
	if _, err := u.catalog.GetActive(ctx, dishID); err != nil {
		return nil, err
	}
	return u.carts.Upsert(ctx, userID, dishID, quantity)
}

// List returns active cart positions joined with dish details. Positions
// whose dish has been removed from the catalog are skipped.
func (u *CartUseCase) List(ctx context.Context, userID int64) ([]model.CartLine, error) {
	items, err := u.carts.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := make([]model.CartLine, 0, len(items))
	for _, item := range items {
		dish, err := u.catalog.GetActive(ctx, item.DishID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		lines = append(lines, model.CartLine{Item: item, Dish: *dish})
	}
	return lines, nil
}

// UpdateQuantity sets the quantity of an existing cart position.
func (u *CartUseCase) UpdateQuantity(ctx context.Context, userID, dishID int64, quantity int) error {
	if quantity < 1 {
		return domainErrors.ErrInvalidQuantity
	}
	return u.carts.UpdateQuantity(ctx, userID, dishID, quantity)
}

// Remove soft-deletes a cart position.
func (u *CartUseCase) Remove(ctx context.Context, userID, dishID int64) error {
	return u.carts.Remove(ctx, userID, dishID)
}
