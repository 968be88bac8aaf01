package test

import (
	"context"
	"time"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// CatalogRepositoryStub serves dishes from a fixed map.
type CatalogRepositoryStub struct {
	GetActiveFn func(context.Context, int64) (*model.Dish, error)
	Dishes      map[int64]model.Dish
	Err         error
}

// GetActive returns the configured dish or not found.
func (s *CatalogRepositoryStub) GetActive(ctx context.Context, dishID int64) (*model.Dish, error) {
	if s.GetActiveFn != nil {
		return s.GetActiveFn(ctx, dishID)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if dish, ok := s.Dishes[dishID]; ok && dish.Status == model.DishStatusActive {
		d := dish
		return &d, nil
	}
	return nil, domainErrors.ErrNotFound
}

// SerialRepositoryStub hands out sequence numbers per (scope, date) pair.
type SerialRepositoryStub struct {
	NextFn   func(context.Context, string, time.Time) (int, error)
	Counters map[string]int
	Err      error
}

// Next increments and returns the in-memory counter.
func (s *SerialRepositoryStub) Next(ctx context.Context, scope string, date time.Time) (int, error) {
	if s.NextFn != nil {
		return s.NextFn(ctx, scope, date)
	}
	if s.Err != nil {
		return 0, s.Err
	}
	if s.Counters == nil {
		s.Counters = make(map[string]int)
	}
	key := scope + "/" + date.UTC().Format("20060102")
	s.Counters[key]++
	return s.Counters[key], nil
}

// OrderRepositoryStub allows tests to customize order persistence behaviour.
type OrderRepositoryStub struct {
	CreateMasterFn  func(context.Context, *model.PayOrder, []model.ConsumeOrder) error
	GetMasterFn     func(context.Context, string) (*model.PayOrder, error)
	ListByUserFn    func(context.Context, int64) ([]model.PayOrder, error)
	ListSubOrdersFn func(context.Context, string) ([]model.ConsumeOrder, error)
	SettleFn        func(context.Context, string, model.PaymentStatus, model.PaymentMode) (*model.PayOrder, error)
	SettleLateFn    func(context.Context, string, model.PaymentMode) (*model.PayOrder, error)
	ListOverdueFn   func(context.Context, int) ([]model.PayOrder, error)
	ExpireFn        func(context.Context, string) (bool, error)

	Masters []model.PayOrder
	Subs    []model.ConsumeOrder
	Expired []string
}

// CreateMaster records the master order and its sub-orders.
func (s *OrderRepositoryStub) CreateMaster(ctx context.Context, master *model.PayOrder, subs []model.ConsumeOrder) error {
	if s.CreateMasterFn != nil {
		return s.CreateMasterFn(ctx, master, subs)
	}
	s.Masters = append(s.Masters, *master)
	s.Subs = append(s.Subs, subs...)
	return nil
}

// GetMaster returns a stored master order by business identifier.
func (s *OrderRepositoryStub) GetMaster(ctx context.Context, ordersID string) (*model.PayOrder, error) {
	if s.GetMasterFn != nil {
		return s.GetMasterFn(ctx, ordersID)
	}
	for _, o := range s.Masters {
		if o.OrdersID == ordersID {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ListByUser returns stored orders belonging to the user.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.PayOrder, error) {
	if s.ListByUserFn != nil {
		return s.ListByUserFn(ctx, userID)
	}
	var out []model.PayOrder
	for _, o := range s.Masters {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

// ListSubOrders returns stored sub-orders of the master.
func (s *OrderRepositoryStub) ListSubOrders(ctx context.Context, masterOrdersID string) ([]model.ConsumeOrder, error) {
	if s.ListSubOrdersFn != nil {
		return s.ListSubOrdersFn(ctx, masterOrdersID)
	}
	var out []model.ConsumeOrder
	for _, sub := range s.Subs {
		if sub.MasterOrdersID == masterOrdersID {
			out = append(out, sub)
		}
	}
	return out, nil
}

// Settle applies the transition in-memory with at-most-once semantics.
func (s *OrderRepositoryStub) Settle(ctx context.Context, ordersID string, status model.PaymentStatus, mode model.PaymentMode) (*model.PayOrder, error) {
	if s.SettleFn != nil {
		return s.SettleFn(ctx, ordersID, status, mode)
	}
	for i := range s.Masters {
		if s.Masters[i].OrdersID != ordersID {
			continue
		}
		if s.Masters[i].PaymentStatus != model.PaymentStatusUnpaid {
			return nil, domainErrors.ErrAlreadySettled
		}
		s.Masters[i].PaymentStatus = status
		s.Masters[i].PaymentMode = mode
		order := s.Masters[i]
		return &order, nil
	}
	return nil, domainErrors.ErrNotFound
}

// SettleLate marks a stored unpaid order as paid regardless of its expiry.
func (s *OrderRepositoryStub) SettleLate(ctx context.Context, ordersID string, mode model.PaymentMode) (*model.PayOrder, error) {
	if s.SettleLateFn != nil {
		return s.SettleLateFn(ctx, ordersID, mode)
	}
	for i := range s.Masters {
		if s.Masters[i].OrdersID != ordersID {
			continue
		}
		if s.Masters[i].PaymentStatus != model.PaymentStatusUnpaid {
			return nil, domainErrors.ErrAlreadySettled
		}
		s.Masters[i].PaymentStatus = model.PaymentStatusPaid
		s.Masters[i].PaymentMode = mode
		order := s.Masters[i]
		return &order, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListOverdue returns unpaid orders past expiry, honoring the limit.
func (s *OrderRepositoryStub) ListOverdue(ctx context.Context, limit int) ([]model.PayOrder, error) {
	if s.ListOverdueFn != nil {
		return s.ListOverdueFn(ctx, limit)
	}
	var out []model.PayOrder
	now := time.Now()
	for _, o := range s.Masters {
		if o.PaymentStatus == model.PaymentStatusUnpaid && !now.Before(o.Expires) {
			out = append(out, o)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// ExpireOverdue rewrites a stored unpaid order to expired.
func (s *OrderRepositoryStub) ExpireOverdue(ctx context.Context, ordersID string) (bool, error) {
	if s.ExpireFn != nil {
		return s.ExpireFn(ctx, ordersID)
	}
	for i := range s.Masters {
		if s.Masters[i].OrdersID == ordersID && s.Masters[i].PaymentStatus == model.PaymentStatusUnpaid {
			s.Masters[i].PaymentStatus = model.PaymentStatusExpired
			s.Expired = append(s.Expired, ordersID)
			return true, nil
		}
	}
	return false, nil
}

// CartRepositoryStub keeps cart positions in-memory.
type CartRepositoryStub struct {
	UpsertFn         func(context.Context, int64, int64, int) (*model.CartItem, error)
	ListActiveFn     func(context.Context, int64) ([]model.CartItem, error)
	UpdateQuantityFn func(context.Context, int64, int64, int) error
	RemoveFn         func(context.Context, int64, int64) error

	Items   []model.CartItem
	Removed []int64
	Err     error
}

// Upsert merges quantity into an existing active position or appends one.
func (s *CartRepositoryStub) Upsert(ctx context.Context, userID, dishID int64, quantity int) (*model.CartItem, error) {
	if s.UpsertFn != nil {
		return s.UpsertFn(ctx, userID, dishID, quantity)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Items {
		if s.Items[i].UserID == userID && s.Items[i].DishID == dishID && s.Items[i].Status == model.CartItemStatusActive {
			s.Items[i].Quantity += quantity
			item := s.Items[i]
			return &item, nil
		}
	}
	item := model.CartItem{
		ID:       int64(len(s.Items) + 1),
		UserID:   userID,
		DishID:   dishID,
		Quantity: quantity,
		Status:   model.CartItemStatusActive,
	}
	s.Items = append(s.Items, item)
	return &item, nil
}

// ListActive returns active positions of the user.
func (s *CartRepositoryStub) ListActive(ctx context.Context, userID int64) ([]model.CartItem, error) {
	if s.ListActiveFn != nil {
		return s.ListActiveFn(ctx, userID)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.CartItem
	for _, item := range s.Items {
		if item.UserID == userID && item.Status == model.CartItemStatusActive {
			out = append(out, item)
		}
	}
	return out, nil
}

// UpdateQuantity sets quantity on a matching active position.
func (s *CartRepositoryStub) UpdateQuantity(ctx context.Context, userID, dishID int64, quantity int) error {
	if s.UpdateQuantityFn != nil {
		return s.UpdateQuantityFn(ctx, userID, dishID, quantity)
	}
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Items {
		if s.Items[i].UserID == userID && s.Items[i].DishID == dishID && s.Items[i].Status == model.CartItemStatusActive {
			s.Items[i].Quantity = quantity
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// Remove soft-deletes a matching position.
func (s *CartRepositoryStub) Remove(ctx context.Context, userID, dishID int64) error {
	if s.RemoveFn != nil {
		return s.RemoveFn(ctx, userID, dishID)
	}
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Items {
		if s.Items[i].UserID == userID && s.Items[i].DishID == dishID && s.Items[i].Status == model.CartItemStatusActive {
			s.Items[i].Status = model.CartItemStatusDeleted
			s.Removed = append(s.Removed, dishID)
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// TradeRepositoryStub appends trade records in-memory.
type TradeRepositoryStub struct {
	RecordFn      func(context.Context, *model.TradeRecord) error
	ListByOrderFn func(context.Context, string) ([]model.TradeRecord, error)

	Records []model.TradeRecord
	Err     error
}

// Record appends a ledger entry.
func (s *TradeRepositoryStub) Record(ctx context.Context, record *model.TradeRecord) error {
	if s.RecordFn != nil {
		return s.RecordFn(ctx, record)
	}
	if s.Err != nil {
		return s.Err
	}
	record.ID = int64(len(s.Records) + 1)
	s.Records = append(s.Records, *record)
	return nil
}

// ListByOrder returns stored records for the order.
func (s *TradeRepositoryStub) ListByOrder(ctx context.Context, ordersID string) ([]model.TradeRecord, error) {
	if s.ListByOrderFn != nil {
		return s.ListByOrderFn(ctx, ordersID)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.TradeRecord
	for _, r := range s.Records {
		if r.OrdersID == ordersID {
			out = append(out, r)
		}
	}
	return out, nil
}
