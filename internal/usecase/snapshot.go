package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
	"github.com/yinshi/foodcourt/internal/domain/repository"
)

// moneyScale is the fixed number of decimal places for serialized amounts.
const moneyScale = 2

// SnapshotResolver turns client dish selections into a trusted, seller-grouped
// order snapshot. Prices come from the catalog only; a client-submitted price
// never enters the computation.
type SnapshotResolver struct {
	catalog repository.CatalogRepository
}

// NewSnapshotResolver constructs SnapshotResolver.
func NewSnapshotResolver(catalog repository.CatalogRepository) *SnapshotResolver {
	return &SnapshotResolver{catalog: catalog}
}

// Resolve fetches authoritative dish data for every selection, groups lines by
// seller and totals them with exact decimal arithmetic. All selections must
// belong to one food court; the first dish fixes the reference.
func (r *SnapshotResolver) Resolve(ctx context.Context, selections []model.DishSelection) (*model.OrderSnapshot, error) {
	if len(selections) == 0 {
		return nil, domainErrors.ErrEmptyCart
	}

	groups := make(map[int64]*model.SellerGroup)
	subtotals := make(map[int64]decimal.Decimal)
	total := decimal.Zero
	snapshot := &model.OrderSnapshot{}

	for _, sel := range selections {
		if sel.Quantity < 1 {
			return nil, domainErrors.ErrInvalidQuantity
		}

		dish, err := r.catalog.GetActive(ctx, sel.DishID)
		if err != nil {
			return nil, err
		}

		price, err := decimal.NewFromString(dish.Price)
		if err != nil {
			return nil, fmt.Errorf("dish %d has malformed price %q: %w", dish.ID, dish.Price, err)
		}

		if snapshot.FoodCourtID == 0 {
			snapshot.FoodCourtID = dish.FoodCourtID
			snapshot.FoodCourtName = dish.FoodCourtName
		} else if snapshot.FoodCourtID != dish.FoodCourtID {
			return nil, domainErrors.ErrMultiFoodCourt
		}

		amount := price.Mul(decimal.NewFromInt(int64(sel.Quantity)))
		line := model.DishLine{
			DishID:   dish.ID,
			Title:    dish.Title,
			Size:     int(dish.Size),
			Price:    price.StringFixed(moneyScale),
			Quantity: sel.Quantity,
			Amount:   amount.StringFixed(moneyScale),
		}

		group, ok := groups[dish.BusinessID]
		if !ok {
			group = &model.SellerGroup{BusinessID: dish.BusinessID, BusinessName: dish.BusinessName}
			groups[dish.BusinessID] = group
		}
		group.Lines = append(group.Lines, line)
		subtotals[dish.BusinessID] = subtotals[dish.BusinessID].Add(amount)
		total = total.Add(amount)
	}

	businessIDs := make([]int64, 0, len(groups))
	for id := range groups {
		businessIDs = append(businessIDs, id)
	}
	sort.Slice(businessIDs, func(i, j int) bool { return businessIDs[i] < businessIDs[j] })

	for _, id := range businessIDs {
		group := groups[id]
		group.Subtotal = subtotals[id].StringFixed(moneyScale)
		snapshot.Groups = append(snapshot.Groups, *group)
	}
	snapshot.Total = total.StringFixed(moneyScale)

	return snapshot, nil
}
