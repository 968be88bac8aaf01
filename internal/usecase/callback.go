package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
	"github.com/yinshi/foodcourt/internal/pkg/sign"
)

// CallbackUseCase processes signed settlement notifications from the payment
// gateway. Settlement happens at most once per order; every attempt, winning
// or not, leaves a trade record.
type CallbackUseCase struct {
	orders *OrderUseCase
	trades *TradeUseCase
	secret string
	logger *slog.Logger
}

// NewCallbackUseCase constructs CallbackUseCase with the shared gateway secret.
func NewCallbackUseCase(orders *OrderUseCase, trades *TradeUseCase, secret string, logger *slog.Logger) *CallbackUseCase {
	return &CallbackUseCase{
		orders: orders,
		trades: trades,
		secret: secret,
		logger: logger,
	}
}

// HandleCallback verifies the payload signature, applies the settlement
// transition and records the attempt. A losing attempt against an already
// settled order still records an UNKNOWN ledger entry and reports
// ErrAlreadySettled so the gateway can stop retrying.
func (u *CallbackUseCase) HandleCallback(ctx context.Context, payload map[string]string) error {
	if err := sign.Verify(payload, u.secret); err != nil {
		u.logger.Warn("rejected callback with untrusted signature",
			slog.String("orders_id", payload["orders_id"]),
		)
		return err
	}

	// The gateway reference is persisted with every trade record, so a payload
	// without it is malformed even when the signature checks out.
	ordersID := payload["orders_id"]
	outOrdersID := payload["out_orders_id"]
	if ordersID == "" || outOrdersID == "" {
		return domainErrors.ErrMissingField
	}

	var status model.PaymentStatus
	switch payload["trade_status"] {
	case string(model.TradeResultSuccess):
		status = model.PaymentStatusPaid
	case string(model.TradeResultFail):
		status = model.PaymentStatusFailed
	default:
		return domainErrors.ErrInvalidStatus
	}

	modeValue, err := strconv.Atoi(payload["payment_mode"])
	if err != nil {
		return domainErrors.ErrInvalidMode
	}
	mode := model.PaymentMode(modeValue)
	if !model.ValidSettlementMode(mode) {
		return domainErrors.ErrInvalidMode
	}

	settled, err := u.orders.Settle(ctx, ordersID, status, mode)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadySettled) {
			if recordErr := u.recordAttempt(ctx, ordersID, model.TradeResultUnknown, mode, outOrdersID); recordErr != nil {
				u.logger.Error("failed to record losing settlement attempt",
					slog.String("orders_id", ordersID),
					slog.String("error", recordErr.Error()),
				)
			}
		}
		return err
	}

	result := model.TradeResultSuccess
	if status == model.PaymentStatusFailed {
		result = model.TradeResultFail
	}
	record := &model.TradeRecord{
		OrdersID:       settled.OrdersID,
		UserID:         settled.UserID,
		TotalAmount:    settled.TotalAmount,
		MemberDiscount: settled.MemberDiscount,
		OtherDiscount:  settled.OtherDiscount,
		Payment:        settled.Payable,
		PaymentResult:  result,
		PaymentMode:    mode,
		OutOrdersID:    outOrdersID,
	}
	if err := u.trades.Record(ctx, record); err != nil {
		return err
	}

	u.logger.Info("settled order from gateway callback",
		slog.String("orders_id", ordersID),
		slog.Int("payment_status", int(status)),
		slog.Int("payment_mode", int(mode)),
	)
	return nil
}

func (u *CallbackUseCase) recordAttempt(ctx context.Context, ordersID string, result model.TradeResult, mode model.PaymentMode, outOrdersID string) error {
	order, err := u.orders.Lookup(ctx, ordersID)
	if err != nil {
		return err
	}
	return u.trades.Record(ctx, &model.TradeRecord{
		OrdersID:       order.OrdersID,
		UserID:         order.UserID,
		TotalAmount:    order.TotalAmount,
		MemberDiscount: order.MemberDiscount,
		OtherDiscount:  order.OtherDiscount,
		Payment:        order.Payable,
		PaymentResult:  result,
		PaymentMode:    mode,
		OutOrdersID:    outOrdersID,
	})
}
