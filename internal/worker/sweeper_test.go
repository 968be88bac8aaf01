package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yinshi/foodcourt/internal/adapter/gateway"
	"github.com/yinshi/foodcourt/internal/domain/model"
	testhelpers "github.com/yinshi/foodcourt/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitFor(t *testing.T, facade *testhelpers.SweeperFacadeStub, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		facade.Lock()
		done := cond()
		facade.Unlock()
		if done {
			return
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for sweeper")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestNewExpirySweeperDefaults(t *testing.T) {
	sweeper := NewExpirySweeper(&testhelpers.SweeperFacadeStub{}, time.Second, 0, 0, testLogger())
	if sweeper.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", sweeper.batchSize)
	}
	if sweeper.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", sweeper.workers)
	}
}

func TestExpirySweeperExpiresUnknownOrders(t *testing.T) {
	facade := &testhelpers.SweeperFacadeStub{
		Batches: [][]model.PayOrder{{{OrdersID: "YS20260831000001"}}},
		QueryFn: func(ctx context.Context, ordersID string) (*gateway.PaymentResult, error) {
			return nil, gateway.ErrOrderUnknown
		},
	}
	sweeper := NewExpirySweeper(facade, 10*time.Millisecond, 1, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)

	waitFor(t, facade, func() bool { return len(facade.Expired) > 0 })
	sweeper.Stop()

	if facade.Expired[0] != "YS20260831000001" {
		t.Fatalf("unexpected expired order %q", facade.Expired[0])
	}
	if len(facade.Settled) != 0 {
		t.Fatal("unknown order must not be settled")
	}
}

func TestExpirySweeperExpiresFailedPayments(t *testing.T) {
	facade := &testhelpers.SweeperFacadeStub{
		Batches: [][]model.PayOrder{{{OrdersID: "YS20260831000001"}}},
		QueryFn: func(ctx context.Context, ordersID string) (*gateway.PaymentResult, error) {
			return &gateway.PaymentResult{OrdersID: ordersID, TradeStatus: model.TradeResultFail}, nil
		},
	}
	sweeper := NewExpirySweeper(facade, 10*time.Millisecond, 1, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)

	waitFor(t, facade, func() bool { return len(facade.Expired) > 0 })
	sweeper.Stop()
}

func TestExpirySweeperSettlesLatePayment(t *testing.T) {
	facade := &testhelpers.SweeperFacadeStub{
		Batches: [][]model.PayOrder{{{OrdersID: "YS20260831000001", UserID: 7, Payable: "33.00"}}},
		QueryFn: func(ctx context.Context, ordersID string) (*gateway.PaymentResult, error) {
			return &gateway.PaymentResult{
				OrdersID:    ordersID,
				TradeStatus: model.TradeResultSuccess,
				PaymentMode: model.PaymentModeAlipay,
				OutOrdersID: "ali-tx-007",
			}, nil
		},
	}
	sweeper := NewExpirySweeper(facade, 10*time.Millisecond, 1, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)

	waitFor(t, facade, func() bool { return len(facade.Records) > 0 })
	sweeper.Stop()

	if len(facade.Settled) == 0 {
		t.Fatal("expected settlement call")
	}
	call := facade.Settled[0]
	if call.Mode != model.PaymentModeAlipay {
		t.Fatalf("unexpected settlement %v", call)
	}
	record := facade.Records[0]
	if record.PaymentResult != model.TradeResultSuccess {
		t.Fatalf("expected SUCCESS trade record, got %q", record.PaymentResult)
	}
	if record.OutOrdersID != "ali-tx-007" {
		t.Fatalf("unexpected gateway reference %q", record.OutOrdersID)
	}
	if len(facade.Expired) != 0 {
		t.Fatal("late paid order must not be expired")
	}
}

func TestExpirySweeperSkipsTransientErrors(t *testing.T) {
	attempts := int32(0)
	facade := &testhelpers.SweeperFacadeStub{
		Batches: [][]model.PayOrder{
			{{OrdersID: "YS20260831000001"}},
			{{OrdersID: "YS20260831000001"}},
		},
		QueryFn: func(ctx context.Context, ordersID string) (*gateway.PaymentResult, error) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				return nil, fmt.Errorf("connection refused")
			}
			return nil, gateway.ErrOrderUnknown
		},
	}
	sweeper := NewExpirySweeper(facade, 5*time.Millisecond, 1, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)

	waitFor(t, facade, func() bool { return len(facade.Expired) > 0 })
	sweeper.Stop()

	// First pass failed transiently; the order survived until the retry.
	if atomic.LoadInt32(&attempts) < 2 {
		t.Fatalf("expected at least two query attempts, got %d", attempts)
	}
}

func TestExpirySweeperHandlesRateLimiting(t *testing.T) {
	attempts := int32(0)
	facade := &testhelpers.SweeperFacadeStub{
		Batches: [][]model.PayOrder{
			{{OrdersID: "YS20260831000001"}},
			{{OrdersID: "YS20260831000001"}},
		},
		QueryFn: func(ctx context.Context, ordersID string) (*gateway.PaymentResult, error) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				return nil, gateway.TooManyRequestsError{RetryAfter: 10 * time.Millisecond}
			}
			return nil, gateway.ErrOrderUnknown
		},
	}
	sweeper := NewExpirySweeper(facade, 5*time.Millisecond, 1, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)

	waitFor(t, facade, func() bool { return len(facade.Expired) > 0 })
	sweeper.Stop()
}

func TestExpirySweeperStopIsIdempotent(t *testing.T) {
	sweeper := NewExpirySweeper(&testhelpers.SweeperFacadeStub{}, 10*time.Millisecond, 1, 2, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)
	sweeper.Stop()
	sweeper.Stop()
}
