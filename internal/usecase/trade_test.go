package usecase

import (
	"context"
	"testing"
	"time"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
	testhelpers "github.com/yinshi/foodcourt/internal/test"
)

func newTradeFixture() (*TradeUseCase, *testhelpers.OrderRepositoryStub, *testhelpers.TradeRepositoryStub) {
	orders := &testhelpers.OrderRepositoryStub{
		Masters: []model.PayOrder{{OrdersID: "YS20260831000001", UserID: 7, Expires: time.Now().Add(time.Hour)}},
	}
	trades := &testhelpers.TradeRepositoryStub{}
	uc := NewTradeUseCase(trades, orders, NewIDGenerator(&testhelpers.SerialRepositoryStub{}))
	return uc, orders, trades
}

func TestTradeRecordAssignsSerial(t *testing.T) {
	uc, _, trades := newTradeFixture()
	uc.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }

	record := &model.TradeRecord{OrdersID: "YS20260831000001", UserID: 7, PaymentResult: model.TradeResultSuccess}
	if err := uc.Record(context.Background(), record); err != nil {
		t.Fatalf("record returned error: %v", err)
	}
	if record.SerialNumber != "LS20260831000001" {
		t.Fatalf("unexpected serial %q", record.SerialNumber)
	}
	if record.Created.IsZero() {
		t.Fatal("expected creation timestamp assigned")
	}
	if len(trades.Records) != 1 {
		t.Fatalf("expected one stored record, got %d", len(trades.Records))
	}
}

func TestTradeRecordKeepsExplicitSerial(t *testing.T) {
	uc, _, trades := newTradeFixture()

	record := &model.TradeRecord{SerialNumber: "LS20260831000042", OrdersID: "YS20260831000001"}
	if err := uc.Record(context.Background(), record); err != nil {
		t.Fatalf("record returned error: %v", err)
	}
	if trades.Records[0].SerialNumber != "LS20260831000042" {
		t.Fatalf("explicit serial was replaced with %q", trades.Records[0].SerialNumber)
	}
}

func TestTradeListByOrderChecksOwnership(t *testing.T) {
	uc, _, trades := newTradeFixture()
	trades.Records = []model.TradeRecord{
		{ID: 1, OrdersID: "YS20260831000001", PaymentResult: model.TradeResultSuccess},
		{ID: 2, OrdersID: "YS20260831000009", PaymentResult: model.TradeResultFail},
	}

	records, err := uc.ListByOrder(context.Background(), 7, "YS20260831000001")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if len(records) != 1 || records[0].ID != 1 {
		t.Fatalf("unexpected records %v", records)
	}

	if _, err := uc.ListByOrder(context.Background(), 8, "YS20260831000001"); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}
	if _, err := uc.ListByOrder(context.Background(), 7, "YS20260831999999"); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found for unknown order, got %v", err)
	}
}
