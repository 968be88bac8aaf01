package repository

import (
	"context"

	"github.com/yinshi/foodcourt/internal/domain/model"
)

// TradeRepository appends settlement attempts to the trade ledger.
type TradeRepository interface {
	Record(ctx context.Context, record *model.TradeRecord) error
	ListByOrder(ctx context.Context, ordersID string) ([]model.TradeRecord, error)
}
