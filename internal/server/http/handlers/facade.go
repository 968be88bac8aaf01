package handlers

import (
	"context"

	"github.com/yinshi/foodcourt/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID int64, selections []model.DishSelection, ordersType model.OrderType) (*model.PayOrder, error)
	CreateOrderFromCart(ctx context.Context, userID int64, ordersType model.OrderType) (*model.PayOrder, error)
	Order(ctx context.Context, userID int64, ordersID string) (*model.PayOrder, error)
	Orders(ctx context.Context, userID int64) ([]model.PayOrder, error)
	SubOrders(ctx context.Context, userID int64, ordersID string) ([]model.ConsumeOrder, error)
}

// CartFacade provides shopping cart operations.
type CartFacade interface {
	AddToCart(ctx context.Context, userID, dishID int64, quantity int) (*model.CartItem, error)
	Cart(ctx context.Context, userID int64) ([]model.CartLine, error)
	UpdateCartQuantity(ctx context.Context, userID, dishID int64, quantity int) error
	RemoveFromCart(ctx context.Context, userID, dishID int64) error
}

// TradeFacade exposes the settlement ledger.
type TradeFacade interface {
	Trades(ctx context.Context, userID int64, ordersID string) ([]model.TradeRecord, error)
}

// CallbackFacade processes signed gateway notifications.
type CallbackFacade interface {
	HandleCallback(ctx context.Context, payload map[string]string) error
}

// CourtFacade aggregates the full set of operations used across handlers.
type CourtFacade interface {
	AuthFacade
	OrderFacade
	CartFacade
	TradeFacade
	CallbackFacade
}
