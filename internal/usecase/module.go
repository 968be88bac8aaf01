package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/yinshi/foodcourt/internal/config"
	"github.com/yinshi/foodcourt/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewIDGenerator,
	NewSnapshotResolver,
	NewTradeUseCase,
	NewCartUseCase,
	newOrderUseCase,
	newCallbackUseCase,
)

func newOrderUseCase(cfg *config.Config, orders repository.OrderRepository, carts repository.CartRepository, resolver *SnapshotResolver, ids *IDGenerator) *OrderUseCase {
	return NewOrderUseCase(orders, carts, resolver, ids, cfg.OrderExpiryWindow)
}

func newCallbackUseCase(cfg *config.Config, orders *OrderUseCase, trades *TradeUseCase, logger *slog.Logger) *CallbackUseCase {
	return NewCallbackUseCase(orders, trades, cfg.GatewaySigningKey, logger)
}
