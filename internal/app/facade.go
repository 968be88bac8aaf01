package app

import (
	"context"

	"github.com/yinshi/foodcourt/internal/adapter/gateway"
	"github.com/yinshi/foodcourt/internal/domain/model"
	"github.com/yinshi/foodcourt/internal/usecase"
)

// PaymentProvider exposes the gateway query used for reconciliation.
type PaymentProvider interface {
	QueryOrder(ctx context.Context, ordersID string) (*gateway.PaymentResult, error)
}

// CourtFacade aggregates use cases behind one application surface shared by
// the HTTP layer and the background sweeper.
type CourtFacade struct {
	auth     *usecase.AuthUseCase
	orders   *usecase.OrderUseCase
	carts    *usecase.CartUseCase
	trades   *usecase.TradeUseCase
	callback *usecase.CallbackUseCase
	payments PaymentProvider
}

func NewCourtFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderUseCase,
	carts *usecase.CartUseCase,
	trades *usecase.TradeUseCase,
	callback *usecase.CallbackUseCase,
	payments PaymentProvider,
) *CourtFacade {
	return &CourtFacade{
		auth:     auth,
		orders:   orders,
		carts:    carts,
		trades:   trades,
		callback: callback,
		payments: payments,
	}
}

func (f *CourtFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *CourtFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *CourtFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *CourtFacade) CreateOrder(ctx context.Context, userID int64, selections []model.DishSelection, ordersType model.OrderType) (*model.PayOrder, error) {
	return f.orders.CreateMasterOrder(ctx, userID, selections, ordersType)
}

func (f *CourtFacade) CreateOrderFromCart(ctx context.Context, userID int64, ordersType model.OrderType) (*model.PayOrder, error) {
	return f.orders.CreateMasterOrderFromCart(ctx, userID, ordersType)
}

func (f *CourtFacade) Order(ctx context.Context, userID int64, ordersID string) (*model.PayOrder, error) {
	return f.orders.GetOrder(ctx, userID, ordersID)
}

func (f *CourtFacade) Orders(ctx context.Context, userID int64) ([]model.PayOrder, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *CourtFacade) SubOrders(ctx context.Context, userID int64, ordersID string) ([]model.ConsumeOrder, error) {
	return f.orders.SubOrders(ctx, userID, ordersID)
}

func (f *CourtFacade) Trades(ctx context.Context, userID int64, ordersID string) ([]model.TradeRecord, error) {
	return f.trades.ListByOrder(ctx, userID, ordersID)
}

func (f *CourtFacade) AddToCart(ctx context.Context, userID, dishID int64, quantity int) (*model.CartItem, error) {
	return f.carts.Add(ctx, userID, dishID, quantity)
}

func (f *CourtFacade) Cart(ctx context.Context, userID int64) ([]model.CartLine, error) {
	return f.carts.List(ctx, userID)
}

func (f *CourtFacade) UpdateCartQuantity(ctx context.Context, userID, dishID int64, quantity int) error {
	return f.carts.UpdateQuantity(ctx, userID, dishID, quantity)
}

func (f *CourtFacade) RemoveFromCart(ctx context.Context, userID, dishID int64) error {
	return f.carts.Remove(ctx, userID, dishID)
}

func (f *CourtFacade) HandleCallback(ctx context.Context, payload map[string]string) error {
	return f.callback.HandleCallback(ctx, payload)
}

func (f *CourtFacade) OverdueOrders(ctx context.Context, limit int) ([]model.PayOrder, error) {
	return f.orders.OverdueOrders(ctx, limit)
}

func (f *CourtFacade) QueryPayment(ctx context.Context, ordersID string) (*gateway.PaymentResult, error) {
	return f.payments.QueryOrder(ctx, ordersID)
}

func (f *CourtFacade) SettleLateOrder(ctx context.Context, ordersID string, mode model.PaymentMode) (*model.PayOrder, error) {
	return f.orders.SettleLatePayment(ctx, ordersID, mode)
}

func (f *CourtFacade) ExpireOrder(ctx context.Context, ordersID string) (bool, error) {
	return f.orders.ExpireOrder(ctx, ordersID)
}

func (f *CourtFacade) RecordTrade(ctx context.Context, record *model.TradeRecord) error {
	return f.trades.Record(ctx, record)
}
