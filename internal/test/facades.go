package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yinshi/foodcourt/internal/adapter/gateway"
	"github.com/yinshi/foodcourt/internal/domain/model"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn         func(context.Context, int64, []model.DishSelection, model.OrderType) (*model.PayOrder, error)
	CreateFromCartFn func(context.Context, int64, model.OrderType) (*model.PayOrder, error)
	OrderFn          func(context.Context, int64, string) (*model.PayOrder, error)
	OrdersFn         func(context.Context, int64) ([]model.PayOrder, error)
	SubOrdersFn      func(context.Context, int64, string) ([]model.ConsumeOrder, error)
}

// CreateOrder delegates to provided function or returns a default order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, userID int64, selections []model.DishSelection, ordersType model.OrderType) (*model.PayOrder, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, userID, selections, ordersType)
	}
	return &model.PayOrder{OrdersID: "YS20260831000001", UserID: userID, OrdersType: ordersType}, nil
}

// CreateOrderFromCart delegates to provided function or returns a default order.
func (s OrderFacadeStub) CreateOrderFromCart(ctx context.Context, userID int64, ordersType model.OrderType) (*model.PayOrder, error) {
	if s.CreateFromCartFn != nil {
		return s.CreateFromCartFn(ctx, userID, ordersType)
	}
	return &model.PayOrder{OrdersID: "YS20260831000001", UserID: userID, OrdersType: ordersType}, nil
}

// Order returns a preconfigured order.
func (s OrderFacadeStub) Order(ctx context.Context, userID int64, ordersID string) (*model.PayOrder, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, userID, ordersID)
	}
	return &model.PayOrder{OrdersID: ordersID, UserID: userID}, nil
}

// Orders returns predefined orders for given user.
func (s OrderFacadeStub) Orders(ctx context.Context, userID int64) ([]model.PayOrder, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.PayOrder{{OrdersID: "YS20260831000001", UserID: userID}}, nil
}

// SubOrders returns predefined sub-orders of a master.
func (s OrderFacadeStub) SubOrders(ctx context.Context, userID int64, ordersID string) ([]model.ConsumeOrder, error) {
	if s.SubOrdersFn != nil {
		return s.SubOrdersFn(ctx, userID, ordersID)
	}
	return []model.ConsumeOrder{{OrdersID: "YS20260831000002", MasterOrdersID: ordersID, UserID: userID}}, nil
}

// CartFacadeStub simulates cart operations.
type CartFacadeStub struct {
	AddFn    func(context.Context, int64, int64, int) (*model.CartItem, error)
	CartFn   func(context.Context, int64) ([]model.CartLine, error)
	UpdateFn func(context.Context, int64, int64, int) error
	RemoveFn func(context.Context, int64, int64) error
}

// AddToCart delegates or returns the added position.
func (s CartFacadeStub) AddToCart(ctx context.Context, userID, dishID int64, quantity int) (*model.CartItem, error) {
	if s.AddFn != nil {
		return s.AddFn(ctx, userID, dishID, quantity)
	}
	return &model.CartItem{ID: 1, UserID: userID, DishID: dishID, Quantity: quantity, Status: model.CartItemStatusActive}, nil
}

// Cart returns preconfigured cart lines.
func (s CartFacadeStub) Cart(ctx context.Context, userID int64) ([]model.CartLine, error) {
	if s.CartFn != nil {
		return s.CartFn(ctx, userID)
	}
	return []model.CartLine{{
		Item: model.CartItem{ID: 1, UserID: userID, DishID: 1, Quantity: 2, Status: model.CartItemStatusActive},
		Dish: model.Dish{ID: 1, Title: "Beef Noodles", Price: "12.50", Status: model.DishStatusActive},
	}}, nil
}

// UpdateCartQuantity executes configured handler.
func (s CartFacadeStub) UpdateCartQuantity(ctx context.Context, userID, dishID int64, quantity int) error {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, userID, dishID, quantity)
	}
	return nil
}

// RemoveFromCart executes configured handler.
func (s CartFacadeStub) RemoveFromCart(ctx context.Context, userID, dishID int64) error {
	if s.RemoveFn != nil {
		return s.RemoveFn(ctx, userID, dishID)
	}
	return nil
}

// TradeFacadeStub returns ledger entries for order trade history endpoints.
type TradeFacadeStub struct {
	TradesFn func(context.Context, int64, string) ([]model.TradeRecord, error)
}

// Trades returns preconfigured records.
func (s TradeFacadeStub) Trades(ctx context.Context, userID int64, ordersID string) ([]model.TradeRecord, error) {
	if s.TradesFn != nil {
		return s.TradesFn(ctx, userID, ordersID)
	}
	return []model.TradeRecord{{SerialNumber: "LS20260831000001", OrdersID: ordersID, UserID: userID, PaymentResult: model.TradeResultSuccess, Created: time.Unix(0, 0)}}, nil
}

// CallbackFacadeStub simulates gateway callback processing.
type CallbackFacadeStub struct {
	HandleFn func(context.Context, map[string]string) error
	Payloads []map[string]string
}

// HandleCallback records the payload and delegates when configured.
func (s *CallbackFacadeStub) HandleCallback(ctx context.Context, payload map[string]string) error {
	s.Payloads = append(s.Payloads, payload)
	if s.HandleFn != nil {
		return s.HandleFn(ctx, payload)
	}
	return nil
}

// SettleCall stores information about SettleLateOrder invocations.
type SettleCall struct {
	OrdersID string
	Mode     model.PaymentMode
}

// SweeperFacadeStub mimics sweeper interactions with the court facade.
type SweeperFacadeStub struct {
	Batches  [][]model.PayOrder
	OrdersFn func(context.Context, int) ([]model.PayOrder, error)
	QueryFn  func(context.Context, string) (*gateway.PaymentResult, error)
	SettleFn func(context.Context, string, model.PaymentMode) (*model.PayOrder, error)
	ExpireFn func(context.Context, string) (bool, error)
	RecordFn func(context.Context, *model.TradeRecord) error

	Settled         []SettleCall
	Expired         []string
	Records         []model.TradeRecord
	mu              sync.Mutex
	ordersCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *SweeperFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *SweeperFacadeStub) Unlock() { s.mu.Unlock() }

// OverdueOrders returns batches from configured queue.
func (s *SweeperFacadeStub) OverdueOrders(ctx context.Context, limit int) ([]model.PayOrder, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.ordersCallCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// QueryPayment returns configured gateway state.
func (s *SweeperFacadeStub) QueryPayment(ctx context.Context, ordersID string) (*gateway.PaymentResult, error) {
	if s.QueryFn != nil {
		return s.QueryFn(ctx, ordersID)
	}
	return &gateway.PaymentResult{OrdersID: ordersID, TradeStatus: model.TradeResultUnknown}, nil
}

// SettleLateOrder records settlement requests.
func (s *SweeperFacadeStub) SettleLateOrder(ctx context.Context, ordersID string, mode model.PaymentMode) (*model.PayOrder, error) {
	if s.SettleFn != nil {
		return s.SettleFn(ctx, ordersID, mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Settled = append(s.Settled, SettleCall{OrdersID: ordersID, Mode: mode})
	return &model.PayOrder{OrdersID: ordersID, PaymentStatus: model.PaymentStatusPaid, PaymentMode: mode}, nil
}

// ExpireOrder records expiry requests.
func (s *SweeperFacadeStub) ExpireOrder(ctx context.Context, ordersID string) (bool, error) {
	if s.ExpireFn != nil {
		return s.ExpireFn(ctx, ordersID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Expired = append(s.Expired, ordersID)
	return true, nil
}

// RecordTrade stores ledger entries.
func (s *SweeperFacadeStub) RecordTrade(ctx context.Context, record *model.TradeRecord) error {
	if s.RecordFn != nil {
		return s.RecordFn(ctx, record)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, *record)
	return nil
}

// PaymentProviderStub fetches gateway transaction state for tests.
type PaymentProviderStub struct {
	QueryFn func(context.Context, string) (*gateway.PaymentResult, error)
	Result  *gateway.PaymentResult
	Err     error
}

// QueryOrder returns configured response or a default successful payment.
func (s PaymentProviderStub) QueryOrder(ctx context.Context, ordersID string) (*gateway.PaymentResult, error) {
	if s.QueryFn != nil {
		return s.QueryFn(ctx, ordersID)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Result != nil {
		return s.Result, nil
	}
	return &gateway.PaymentResult{OrdersID: ordersID, TradeStatus: model.TradeResultSuccess, PaymentMode: model.PaymentModeWechat}, nil
}
