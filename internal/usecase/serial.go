package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/yinshi/foodcourt/internal/domain/repository"
)

const (
	orderIDPrefix     = "YS"
	tradeSerialPrefix = "LS"
	serialWidth       = 6
)

// IDGenerator builds order identifiers and trade serials from the per-date
// serial counter: PREFIX + YYYYMMDD + zero-padded sequence.
type IDGenerator struct {
	serials repository.SerialRepository
}

// NewIDGenerator constructs IDGenerator.
func NewIDGenerator(serials repository.SerialRepository) *IDGenerator {
	return &IDGenerator{serials: serials}
}

// NextOrderID issues a fresh globally unique order identifier.
func (g *IDGenerator) NextOrderID(ctx context.Context, now time.Time) (string, error) {
	serial, err := g.serials.Next(ctx, repository.SerialScopeOrders, now)
	if err != nil {
		return "", fmt.Errorf("next order serial: %w", err)
	}
	return formatSerial(orderIDPrefix, now, serial), nil
}

// NextTradeSerial issues a fresh transaction serial number for the ledger.
func (g *IDGenerator) NextTradeSerial(ctx context.Context, now time.Time) (string, error) {
	serial, err := g.serials.Next(ctx, repository.SerialScopeTrade, now)
	if err != nil {
		return "", fmt.Errorf("next trade serial: %w", err)
	}
	return formatSerial(tradeSerialPrefix, now, serial), nil
}

func formatSerial(prefix string, date time.Time, serial int) string {
	return fmt.Sprintf("%s%s%0*d", prefix, date.UTC().Format("20060102"), serialWidth, serial)
}
