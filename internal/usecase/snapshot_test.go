package usecase

import (
	"context"
	"testing"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
	testhelpers "github.com/yinshi/foodcourt/internal/test"
)

func newCatalogStub() *testhelpers.CatalogRepositoryStub {
	return &testhelpers.CatalogRepositoryStub{
		Dishes: map[int64]model.Dish{
			1: {ID: 1, Title: "Beef Noodles", Size: model.DishSizeDefault, Price: "12.50", BusinessID: 10, BusinessName: "Noodle House", FoodCourtID: 100, FoodCourtName: "Central Court", Status: model.DishStatusActive},
			2: {ID: 2, Title: "Dumplings", Size: model.DishSizeDefault, Price: "8.00", BusinessID: 20, BusinessName: "Dumpling Bar", FoodCourtID: 100, FoodCourtName: "Central Court", Status: model.DishStatusActive},
			3: {ID: 3, Title: "Milk Tea", Size: model.DishSizeSmall, Price: "3.25", BusinessID: 10, BusinessName: "Noodle House", FoodCourtID: 100, FoodCourtName: "Central Court", Status: model.DishStatusActive},
			4: {ID: 4, Title: "Sushi Set", Size: model.DishSizeDefault, Price: "22.00", BusinessID: 30, BusinessName: "Sushi Stand", FoodCourtID: 200, FoodCourtName: "North Court", Status: model.DishStatusActive},
		},
	}
}

func TestSnapshotResolverGroupsBySeller(t *testing.T) {
	resolver := NewSnapshotResolver(newCatalogStub())

	snapshot, err := resolver.Resolve(context.Background(), []model.DishSelection{
		{DishID: 2, Quantity: 1},
		{DishID: 1, Quantity: 2},
		{DishID: 3, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	if snapshot.FoodCourtID != 100 || snapshot.FoodCourtName != "Central Court" {
		t.Fatalf("unexpected food court %d %q", snapshot.FoodCourtID, snapshot.FoodCourtName)
	}
	if len(snapshot.Groups) != 2 {
		t.Fatalf("expected 2 seller groups, got %d", len(snapshot.Groups))
	}
	// Groups are ordered by business identifier.
	if snapshot.Groups[0].BusinessID != 10 || snapshot.Groups[1].BusinessID != 20 {
		t.Fatalf("unexpected group order: %d, %d", snapshot.Groups[0].BusinessID, snapshot.Groups[1].BusinessID)
	}
	if snapshot.Groups[0].Subtotal != "28.25" {
		t.Fatalf("expected subtotal 28.25, got %q", snapshot.Groups[0].Subtotal)
	}
	if snapshot.Groups[1].Subtotal != "8.00" {
		t.Fatalf("expected subtotal 8.00, got %q", snapshot.Groups[1].Subtotal)
	}
	if snapshot.Total != "36.25" {
		t.Fatalf("expected total 36.25, got %q", snapshot.Total)
	}
}

func TestSnapshotResolverLineAmounts(t *testing.T) {
	resolver := NewSnapshotResolver(newCatalogStub())

	snapshot, err := resolver.Resolve(context.Background(), []model.DishSelection{{DishID: 1, Quantity: 3}})
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	line := snapshot.Groups[0].Lines[0]
	if line.Price != "12.50" {
		t.Fatalf("expected catalog price 12.50, got %q", line.Price)
	}
	if line.Amount != "37.50" {
		t.Fatalf("expected line amount 37.50, got %q", line.Amount)
	}
	if line.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", line.Quantity)
	}
}

func TestSnapshotResolverRejectsEmptySelection(t *testing.T) {
	resolver := NewSnapshotResolver(newCatalogStub())
	if _, err := resolver.Resolve(context.Background(), nil); err != domainErrors.ErrEmptyCart {
		t.Fatalf("expected empty cart error, got %v", err)
	}
}

func TestSnapshotResolverRejectsInvalidQuantity(t *testing.T) {
	resolver := NewSnapshotResolver(newCatalogStub())
	if _, err := resolver.Resolve(context.Background(), []model.DishSelection{{DishID: 1, Quantity: 0}}); err != domainErrors.ErrInvalidQuantity {
		t.Fatalf("expected invalid quantity error, got %v", err)
	}
}

func TestSnapshotResolverRejectsUnknownDish(t *testing.T) {
	resolver := NewSnapshotResolver(newCatalogStub())
	if _, err := resolver.Resolve(context.Background(), []model.DishSelection{{DishID: 99, Quantity: 1}}); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestSnapshotResolverRejectsMixedFoodCourts(t *testing.T) {
	resolver := NewSnapshotResolver(newCatalogStub())
	_, err := resolver.Resolve(context.Background(), []model.DishSelection{
		{DishID: 1, Quantity: 1},
		{DishID: 4, Quantity: 1},
	})
	if err != domainErrors.ErrMultiFoodCourt {
		t.Fatalf("expected multi food court error, got %v", err)
	}
}

func TestSnapshotResolverMergesRepeatedDish(t *testing.T) {
	resolver := NewSnapshotResolver(newCatalogStub())

	snapshot, err := resolver.Resolve(context.Background(), []model.DishSelection{
		{DishID: 1, Quantity: 1},
		{DishID: 1, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}
	if len(snapshot.Groups) != 1 {
		t.Fatalf("expected single group, got %d", len(snapshot.Groups))
	}
	if len(snapshot.Groups[0].Lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(snapshot.Groups[0].Lines))
	}
	if snapshot.Total != "37.50" {
		t.Fatalf("expected total 37.50, got %q", snapshot.Total)
	}
}
