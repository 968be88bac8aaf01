package repository

import (
	"context"

	"github.com/yinshi/foodcourt/internal/domain/model"
)

// OrderRepository describes persistence operations with master and sub orders.
type OrderRepository interface {
	// CreateMaster persists the master order together with its sub-orders in
	// one transaction.
	CreateMaster(ctx context.Context, master *model.PayOrder, subs []model.ConsumeOrder) error
	GetMaster(ctx context.Context, ordersID string) (*model.PayOrder, error)
	ListByUser(ctx context.Context, userID int64) ([]model.PayOrder, error)
	ListSubOrders(ctx context.Context, masterOrdersID string) ([]model.ConsumeOrder, error)
	// Settle performs the one-time unpaid -> paid/failed transition under an
	// exclusive row lock and cascades the outcome to sub-orders.
	Settle(ctx context.Context, ordersID string, status model.PaymentStatus, mode model.PaymentMode) (*model.PayOrder, error)
	// SettleLate settles a gateway-confirmed payment on an unpaid order even
	// after its expiry has passed, under the same row lock.
	SettleLate(ctx context.Context, ordersID string, mode model.PaymentMode) (*model.PayOrder, error)
	// ListOverdue returns unpaid masters whose expiry has passed.
	ListOverdue(ctx context.Context, limit int) ([]model.PayOrder, error)
	// ExpireOverdue rewrites a stale unpaid order to expired; reports whether
	// a rewrite happened.
	ExpireOverdue(ctx context.Context, ordersID string) (bool, error)
}
