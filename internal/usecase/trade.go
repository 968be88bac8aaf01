package usecase

import (
	"context"
	"time"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
	"github.com/yinshi/foodcourt/internal/domain/repository"
)

// TradeUseCase appends and reads the settlement ledger.
type TradeUseCase struct {
	trades repository.TradeRepository
	orders repository.OrderRepository
	ids    *IDGenerator
	now    func() time.Time
}

// NewTradeUseCase constructs TradeUseCase.
func NewTradeUseCase(trades repository.TradeRepository, orders repository.OrderRepository, ids *IDGenerator) *TradeUseCase {
	return &TradeUseCase{
		trades: trades,
		orders: orders,
		ids:    ids,
		now:    time.Now,
	}
}

// Record appends one settlement attempt; a missing serial number is assigned
// from the daily trade sequence.
func (u *TradeUseCase) Record(ctx context.Context, record *model.TradeRecord) error {
	if record.SerialNumber == "" {
		serial, err := u.ids.NextTradeSerial(ctx, u.now())
		if err != nil {
			return err
		}
		record.SerialNumber = serial
	}
	if record.Created.IsZero() {
		record.Created = u.now()
	}
	return u.trades.Record(ctx, record)
}

// ListByOrder returns the user's trade records for an order, newest first.
// An order owned by another user reads as absent.
func (u *TradeUseCase) ListByOrder(ctx context.Context, userID int64, ordersID string) ([]model.TradeRecord, error) {
	order, err := u.orders.GetMaster(ctx, ordersID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}
	return u.trades.ListByOrder(ctx, ordersID)
}
