package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
	"github.com/yinshi/foodcourt/internal/pkg/sign"
	testhelpers "github.com/yinshi/foodcourt/internal/test"
)

const callbackSecret = "court-secret"

func newCallbackFixture() (*CallbackUseCase, *testhelpers.OrderRepositoryStub, *testhelpers.TradeRepositoryStub) {
	orders := &testhelpers.OrderRepositoryStub{
		Masters: []model.PayOrder{{
			OrdersID:       "YS20260831000001",
			UserID:         7,
			TotalAmount:    "33.00",
			MemberDiscount: "0.00",
			OtherDiscount:  "0.00",
			Payable:        "33.00",
			PaymentStatus:  model.PaymentStatusUnpaid,
			Expires:        time.Now().Add(time.Hour),
		}},
	}
	trades := &testhelpers.TradeRepositoryStub{}
	ids := NewIDGenerator(&testhelpers.SerialRepositoryStub{})
	orderUC := NewOrderUseCase(orders, &testhelpers.CartRepositoryStub{}, NewSnapshotResolver(newCatalogStub()), ids, testExpiryWindow)
	tradeUC := NewTradeUseCase(trades, orders, ids)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCallbackUseCase(orderUC, tradeUC, callbackSecret, logger), orders, trades
}

func signedPayload(overrides map[string]string) map[string]string {
	payload := map[string]string{
		"orders_id":     "YS20260831000001",
		"trade_status":  "SUCCESS",
		"payment_mode":  "2",
		"out_orders_id": "wx-tx-001",
	}
	for k, v := range overrides {
		payload[k] = v
	}
	payload[sign.SignatureKey] = sign.Sign(payload, callbackSecret)
	return payload
}

func TestHandleCallbackSettlesOrder(t *testing.T) {
	uc, orders, trades := newCallbackFixture()

	if err := uc.HandleCallback(context.Background(), signedPayload(nil)); err != nil {
		t.Fatalf("callback returned error: %v", err)
	}

	if orders.Masters[0].PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("expected paid status, got %d", orders.Masters[0].PaymentStatus)
	}
	if orders.Masters[0].PaymentMode != model.PaymentModeWechat {
		t.Fatalf("expected wechat mode, got %d", orders.Masters[0].PaymentMode)
	}
	if len(trades.Records) != 1 {
		t.Fatalf("expected one trade record, got %d", len(trades.Records))
	}
	record := trades.Records[0]
	if record.PaymentResult != model.TradeResultSuccess {
		t.Fatalf("expected SUCCESS result, got %q", record.PaymentResult)
	}
	if record.SerialNumber == "" {
		t.Fatal("expected auto-assigned trade serial")
	}
	if record.Payment != "33.00" {
		t.Fatalf("unexpected payment amount %q", record.Payment)
	}
	if record.OutOrdersID != "wx-tx-001" {
		t.Fatalf("unexpected gateway reference %q", record.OutOrdersID)
	}
}

func TestHandleCallbackFailure(t *testing.T) {
	uc, orders, trades := newCallbackFixture()

	payload := signedPayload(map[string]string{"trade_status": "FAIL"})
	if err := uc.HandleCallback(context.Background(), payload); err != nil {
		t.Fatalf("callback returned error: %v", err)
	}
	if orders.Masters[0].PaymentStatus != model.PaymentStatusFailed {
		t.Fatalf("expected failed status, got %d", orders.Masters[0].PaymentStatus)
	}
	if trades.Records[0].PaymentResult != model.TradeResultFail {
		t.Fatalf("expected FAIL result, got %q", trades.Records[0].PaymentResult)
	}
}

func TestHandleCallbackRejectsBadSignature(t *testing.T) {
	uc, orders, trades := newCallbackFixture()

	payload := signedPayload(nil)
	payload["trade_status"] = "FAIL" // tampered after signing

	if err := uc.HandleCallback(context.Background(), payload); err != domainErrors.ErrUntrustedSignature {
		t.Fatalf("expected untrusted signature error, got %v", err)
	}
	if orders.Masters[0].PaymentStatus != model.PaymentStatusUnpaid {
		t.Fatal("tampered callback settled the order")
	}
	if len(trades.Records) != 0 {
		t.Fatal("tampered callback left a trade record")
	}
}

func TestHandleCallbackRejectsMissingSignature(t *testing.T) {
	uc, _, _ := newCallbackFixture()

	payload := signedPayload(nil)
	delete(payload, sign.SignatureKey)

	if err := uc.HandleCallback(context.Background(), payload); err != domainErrors.ErrUntrustedSignature {
		t.Fatalf("expected untrusted signature error, got %v", err)
	}
}

func TestHandleCallbackValidatesFields(t *testing.T) {
	uc, _, _ := newCallbackFixture()

	if err := uc.HandleCallback(context.Background(), signedPayload(map[string]string{"trade_status": "PENDING"})); err != domainErrors.ErrInvalidStatus {
		t.Fatalf("expected invalid status error, got %v", err)
	}
	if err := uc.HandleCallback(context.Background(), signedPayload(map[string]string{"payment_mode": "nine"})); err != domainErrors.ErrInvalidMode {
		t.Fatalf("expected invalid mode error, got %v", err)
	}
	if err := uc.HandleCallback(context.Background(), signedPayload(map[string]string{"payment_mode": "0"})); err != domainErrors.ErrInvalidMode {
		t.Fatalf("expected invalid mode for unset channel, got %v", err)
	}
}

func TestHandleCallbackRequiresGatewayReference(t *testing.T) {
	uc, orders, trades := newCallbackFixture()

	// Empty values are dropped from the canonical form, so the signature
	// still verifies; the presence check has to catch the gap.
	if err := uc.HandleCallback(context.Background(), signedPayload(map[string]string{"out_orders_id": ""})); err != domainErrors.ErrMissingField {
		t.Fatalf("expected missing field error, got %v", err)
	}
	if err := uc.HandleCallback(context.Background(), signedPayload(map[string]string{"orders_id": ""})); err != domainErrors.ErrMissingField {
		t.Fatalf("expected missing field error, got %v", err)
	}

	if orders.Masters[0].PaymentStatus != model.PaymentStatusUnpaid {
		t.Fatal("incomplete callback settled the order")
	}
	if len(trades.Records) != 0 {
		t.Fatal("incomplete callback left a trade record")
	}
}

func TestHandleCallbackUnknownOrder(t *testing.T) {
	uc, _, trades := newCallbackFixture()

	payload := signedPayload(map[string]string{"orders_id": "YS20260831999999"})
	if err := uc.HandleCallback(context.Background(), payload); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
	if len(trades.Records) != 0 {
		t.Fatal("unknown order left a trade record")
	}
}

func TestHandleCallbackLosingAttemptRecordsUnknown(t *testing.T) {
	uc, orders, trades := newCallbackFixture()

	if err := uc.HandleCallback(context.Background(), signedPayload(nil)); err != nil {
		t.Fatalf("first callback returned error: %v", err)
	}

	// Second delivery loses the settlement race but still hits the ledger.
	payload := signedPayload(map[string]string{"trade_status": "FAIL", "payment_mode": "3", "out_orders_id": "ali-tx-002"})
	if err := uc.HandleCallback(context.Background(), payload); err != domainErrors.ErrAlreadySettled {
		t.Fatalf("expected already settled error, got %v", err)
	}

	if orders.Masters[0].PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("losing attempt changed settled status to %d", orders.Masters[0].PaymentStatus)
	}
	if len(trades.Records) != 2 {
		t.Fatalf("expected two trade records, got %d", len(trades.Records))
	}
	second := trades.Records[1]
	if second.PaymentResult != model.TradeResultUnknown {
		t.Fatalf("expected UNKNOWN result on losing attempt, got %q", second.PaymentResult)
	}
	if second.OutOrdersID != "ali-tx-002" {
		t.Fatalf("unexpected gateway reference %q", second.OutOrdersID)
	}
}

func TestHandleCallbackExpiredOrder(t *testing.T) {
	uc, orders, _ := newCallbackFixture()
	orders.Masters[0].PaymentStatus = model.PaymentStatusExpired

	if err := uc.HandleCallback(context.Background(), signedPayload(nil)); err != domainErrors.ErrAlreadySettled {
		t.Fatalf("expected already settled error, got %v", err)
	}
	if orders.Masters[0].PaymentStatus != model.PaymentStatusExpired {
		t.Fatal("callback rewrote expired order")
	}
}
