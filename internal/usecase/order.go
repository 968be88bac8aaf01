package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
	"github.com/yinshi/foodcourt/internal/domain/repository"
)

// OrderUseCase encapsulates the master/sub order lifecycle.
type OrderUseCase struct {
	orders   repository.OrderRepository
	carts    repository.CartRepository
	resolver *SnapshotResolver
	ids      *IDGenerator
	window   time.Duration
	now      func() time.Time
}

// NewOrderUseCase constructs OrderUseCase with the given expiry window.
func NewOrderUseCase(orders repository.OrderRepository, carts repository.CartRepository, resolver *SnapshotResolver, ids *IDGenerator, window time.Duration) *OrderUseCase {
	return &OrderUseCase{
		orders:   orders,
		carts:    carts,
		resolver: resolver,
		ids:      ids,
		window:   window,
		now:      time.Now,
	}
}

// CreateMasterOrder resolves selections into a snapshot, computes amounts and
// persists the master order together with one sub-order per seller group. The
// order starts unpaid with expiry = now + window.
func (u *OrderUseCase) CreateMasterOrder(ctx context.Context, userID int64, selections []model.DishSelection, ordersType model.OrderType) (*model.PayOrder, error) {
	if ordersType == 0 {
		ordersType = model.OrderTypeOnline
	}
	if !model.ValidOrderType(ordersType) {
		return nil, domainErrors.ErrInvalidOrderType
	}

	snapshot, err := u.resolver.Resolve(ctx, selections)
	if err != nil {
		return nil, err
	}

	now := u.now()

	// Discounts are an extension point; the base design charges full total.
	memberDiscount := decimal.Zero
	otherDiscount := decimal.Zero
	payable, err := computePayable(snapshot.Total, memberDiscount, otherDiscount)
	if err != nil {
		return nil, err
	}

	ordersID, err := u.ids.NextOrderID(ctx, now)
	if err != nil {
		return nil, err
	}

	master := &model.PayOrder{
		OrdersID:       ordersID,
		UserID:         userID,
		FoodCourtID:    snapshot.FoodCourtID,
		FoodCourtName:  snapshot.FoodCourtName,
		DishesDetail:   snapshot.Groups,
		TotalAmount:    snapshot.Total,
		MemberDiscount: memberDiscount.StringFixed(moneyScale),
		OtherDiscount:  otherDiscount.StringFixed(moneyScale),
		Payable:        payable,
		PaymentStatus:  model.PaymentStatusUnpaid,
		PaymentMode:    model.PaymentModeUnset,
		OrdersType:     ordersType,
		Created:        now,
		Expires:        now.Add(u.window),
	}

	subs := make([]model.ConsumeOrder, 0, len(snapshot.Groups))
	for _, group := range snapshot.Groups {
		subID, err := u.ids.NextOrderID(ctx, now)
		if err != nil {
			return nil, err
		}
		subPayable, err := computePayable(group.Subtotal, decimal.Zero, decimal.Zero)
		if err != nil {
			return nil, err
		}
		subs = append(subs, model.ConsumeOrder{
			OrdersID:       subID,
			MasterOrdersID: ordersID,
			UserID:         userID,
			BusinessID:     group.BusinessID,
			BusinessName:   group.BusinessName,
			FoodCourtID:    snapshot.FoodCourtID,
			FoodCourtName:  snapshot.FoodCourtName,
			DishesDetail:   group.Lines,
			TotalAmount:    group.Subtotal,
			MemberDiscount: "0.00",
			OtherDiscount:  "0.00",
			Payable:        subPayable,
			PaymentStatus:  model.PaymentStatusUnpaid,
			PaymentMode:    model.PaymentModeUnset,
			OrdersType:     ordersType,
			Created:        now,
			Expires:        master.Expires,
		})
	}

	if err := u.orders.CreateMaster(ctx, master, subs); err != nil {
		return nil, err
	}
	return master, nil
}

// CreateMasterOrderFromCart builds an order from the user's active cart and
// clears the purchased positions afterwards.
func (u *OrderUseCase) CreateMasterOrderFromCart(ctx context.Context, userID int64, ordersType model.OrderType) (*model.PayOrder, error) {
	items, err := u.carts.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domainErrors.ErrEmptyCart
	}

	selections := make([]model.DishSelection, 0, len(items))
	for _, item := range items {
		selections = append(selections, model.DishSelection{DishID: item.DishID, Quantity: item.Quantity})
	}

	master, err := u.CreateMasterOrder(ctx, userID, selections, ordersType)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := u.carts.Remove(ctx, userID, item.DishID); err != nil {
			return nil, fmt.Errorf("clear cart position %d: %w", item.DishID, err)
		}
	}
	return master, nil
}

// GetOrder returns the user's order with read-time expiry derivation applied:
// a stored unpaid order past its expiry is reported expired without a write.
func (u *OrderUseCase) GetOrder(ctx context.Context, userID int64, ordersID string) (*model.PayOrder, error) {
	order, err := u.orders.GetMaster(ctx, ordersID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}
	order.PaymentStatus = order.EffectiveStatus(u.now())
	return order, nil
}

// Lookup fetches an order without ownership filtering; it serves internal
// reconciliation paths, not user queries.
func (u *OrderUseCase) Lookup(ctx context.Context, ordersID string) (*model.PayOrder, error) {
	order, err := u.orders.GetMaster(ctx, ordersID)
	if err != nil {
		return nil, err
	}
	order.PaymentStatus = order.EffectiveStatus(u.now())
	return order, nil
}

// ListByUser returns the user's orders, newest first, with expiry derivation.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.PayOrder, error) {
	orders, err := u.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := u.now()
	for i := range orders {
		orders[i].PaymentStatus = orders[i].EffectiveStatus(now)
	}
	return orders, nil
}

// SubOrders returns the seller-scoped sub-orders of the user's master order.
func (u *OrderUseCase) SubOrders(ctx context.Context, userID int64, masterOrdersID string) ([]model.ConsumeOrder, error) {
	master, err := u.orders.GetMaster(ctx, masterOrdersID)
	if err != nil {
		return nil, err
	}
	if master.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}
	subs, err := u.orders.ListSubOrders(ctx, masterOrdersID)
	if err != nil {
		return nil, err
	}
	now := u.now()
	for i := range subs {
		subs[i].PaymentStatus = subs[i].EffectiveStatus(now)
	}
	return subs, nil
}

// Settle applies the one-time payment transition after validating inputs
// against the enumerated status/mode sets.
func (u *OrderUseCase) Settle(ctx context.Context, ordersID string, status model.PaymentStatus, mode model.PaymentMode) (*model.PayOrder, error) {
	if !model.ValidSettlementStatus(status) {
		return nil, domainErrors.ErrInvalidStatus
	}
	if !model.ValidSettlementMode(mode) {
		return nil, domainErrors.ErrInvalidMode
	}
	return u.orders.Settle(ctx, ordersID, status, mode)
}

// SettleLatePayment settles a gateway-confirmed payment for an order whose
// expiry window has already passed.
func (u *OrderUseCase) SettleLatePayment(ctx context.Context, ordersID string, mode model.PaymentMode) (*model.PayOrder, error) {
	if !model.ValidSettlementMode(mode) {
		return nil, domainErrors.ErrInvalidMode
	}
	return u.orders.SettleLate(ctx, ordersID, mode)
}

// OverdueOrders lists unpaid masters past expiry for the sweeper.
func (u *OrderUseCase) OverdueOrders(ctx context.Context, limit int) ([]model.PayOrder, error) {
	return u.orders.ListOverdue(ctx, limit)
}

// ExpireOrder rewrites a stale unpaid order to expired.
func (u *OrderUseCase) ExpireOrder(ctx context.Context, ordersID string) (bool, error) {
	return u.orders.ExpireOverdue(ctx, ordersID)
}

func computePayable(total string, memberDiscount, otherDiscount decimal.Decimal) (string, error) {
	totalDec, err := decimal.NewFromString(total)
	if err != nil {
		return "", fmt.Errorf("malformed total %q: %w", total, err)
	}
	payable := totalDec.Sub(memberDiscount).Sub(otherDiscount)
	if payable.IsNegative() {
		return "", domainErrors.ErrInvalidDiscount
	}
	return payable.StringFixed(moneyScale), nil
}
