package repository

import (
	"context"
	"time"
)

// Serial counter scopes; each scope keeps an independent per-date sequence.
const (
	SerialScopeOrders = "orders"
	SerialScopeTrade  = "trade"
)

// SerialRepository issues strictly increasing per-date sequence numbers.
// Concurrent callers for the same (scope, date) never observe duplicates.
type SerialRepository interface {
	Next(ctx context.Context, scope string, date time.Time) (int, error)
}
