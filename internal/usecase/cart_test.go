package usecase

import (
	"context"
	"fmt"
	"testing"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
	testhelpers "github.com/yinshi/foodcourt/internal/test"
)

func newCartFixture() (*CartUseCase, *testhelpers.CartRepositoryStub) {
	carts := &testhelpers.CartRepositoryStub{}
	return NewCartUseCase(carts, newCatalogStub()), carts
}

func TestCartAdd(t *testing.T) {
	uc, carts := newCartFixture()

	item, err := uc.Add(context.Background(), 7, 1, 2)
	if err != nil {
		t.Fatalf("add returned error: %v", err)
	}
	if item.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", item.Quantity)
	}

	item, err = uc.Add(context.Background(), 7, 1, 1)
	if err != nil {
		t.Fatalf("add returned error: %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", item.Quantity)
	}
	if len(carts.Items) != 1 {
		t.Fatalf("expected single position, got %d", len(carts.Items))
	}
}

func TestCartAddValidation(t *testing.T) {
	uc, _ := newCartFixture()

	if _, err := uc.Add(context.Background(), 7, 1, 0); err != domainErrors.ErrInvalidQuantity {
		t.Fatalf("expected invalid quantity error, got %v", err)
	}
	if _, err := uc.Add(context.Background(), 7, 99, 1); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found for unknown dish, got %v", err)
	}
}

func TestCartListJoinsDishes(t *testing.T) {
	uc, carts := newCartFixture()
	carts.Items = []model.CartItem{
		{ID: 1, UserID: 7, DishID: 1, Quantity: 2, Status: model.CartItemStatusActive},
		{ID: 2, UserID: 7, DishID: 99, Quantity: 1, Status: model.CartItemStatusActive},
		{ID: 3, UserID: 7, DishID: 2, Quantity: 1, Status: model.CartItemStatusDeleted},
	}

	lines, err := uc.List(context.Background(), 7)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	// The vanished dish and the soft-deleted position are both skipped.
	if len(lines) != 1 {
		t.Fatalf("expected single line, got %d", len(lines))
	}
	if lines[0].Dish.Title != "Beef Noodles" {
		t.Fatalf("unexpected dish %q", lines[0].Dish.Title)
	}
	if lines[0].Item.Quantity != 2 {
		t.Fatalf("unexpected quantity %d", lines[0].Item.Quantity)
	}
}

func TestCartUpdateQuantity(t *testing.T) {
	uc, carts := newCartFixture()
	carts.Items = []model.CartItem{{ID: 1, UserID: 7, DishID: 1, Quantity: 2, Status: model.CartItemStatusActive}}

	if err := uc.UpdateQuantity(context.Background(), 7, 1, 5); err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if carts.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", carts.Items[0].Quantity)
	}

	if err := uc.UpdateQuantity(context.Background(), 7, 1, 0); err != domainErrors.ErrInvalidQuantity {
		t.Fatalf("expected invalid quantity error, got %v", err)
	}
	if err := uc.UpdateQuantity(context.Background(), 7, 99, 2); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCartRemove(t *testing.T) {
	uc, carts := newCartFixture()
	carts.Items = []model.CartItem{{ID: 1, UserID: 7, DishID: 1, Quantity: 2, Status: model.CartItemStatusActive}}

	if err := uc.Remove(context.Background(), 7, 1); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	if carts.Items[0].Status != model.CartItemStatusDeleted {
		t.Fatal("expected soft-deleted position")
	}
	if err := uc.Remove(context.Background(), 7, 1); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found on repeat removal, got %v", err)
	}
}

func TestCartListPropagatesErrors(t *testing.T) {
	carts := &testhelpers.CartRepositoryStub{Err: fmt.Errorf("storage down")}
	uc := NewCartUseCase(carts, newCatalogStub())
	if _, err := uc.List(context.Background(), 7); err == nil {
		t.Fatal("expected repository error")
	}
}
