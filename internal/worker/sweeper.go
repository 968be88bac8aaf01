package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/yinshi/foodcourt/internal/adapter/gateway"
	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
)

// CourtFacade exposes the subset of application functionality required by the sweeper.
type CourtFacade interface {
	OverdueOrders(ctx context.Context, limit int) ([]model.PayOrder, error)
	QueryPayment(ctx context.Context, ordersID string) (*gateway.PaymentResult, error)
	SettleLateOrder(ctx context.Context, ordersID string, mode model.PaymentMode) (*model.PayOrder, error)
	ExpireOrder(ctx context.Context, ordersID string) (bool, error)
	RecordTrade(ctx context.Context, record *model.TradeRecord) error
}

// ExpirySweeper periodically reconciles overdue unpaid orders against the
// payment gateway: a late successful payment settles the order, everything
// else is rewritten to expired. Gateway lookups run outside any row lock.
type ExpirySweeper struct {
	facade        CourtFacade
	sweepInterval time.Duration
	batchSize     int
	workers       int
	logger        *slog.Logger

	jobs   chan model.PayOrder
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewExpirySweeper constructs the sweeper worker pool.
func NewExpirySweeper(facade CourtFacade, sweepInterval time.Duration, batchSize, workers int, logger *slog.Logger) *ExpirySweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &ExpirySweeper{
		facade:        facade,
		sweepInterval: sweepInterval,
		batchSize:     batchSize,
		workers:       workers,
		logger:        logger,
		jobs:          make(chan model.PayOrder, batchSize*workers),
	}
}

// Start launches background sweeping.
func (s *ExpirySweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *ExpirySweeper) dispatch(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.jobs)
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetchAndDispatch(ctx)
		}
	}
}

func (s *ExpirySweeper) fetchAndDispatch(ctx context.Context) {
	orders, err := s.facade.OverdueOrders(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("fetch overdue orders failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case s.jobs <- order:
		}
	}
}

func (s *ExpirySweeper) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-s.jobs:
			if !ok {
				return
			}
			s.handleOrder(ctx, order)
		}
	}
}

func (s *ExpirySweeper) handleOrder(ctx context.Context, order model.PayOrder) {
	result, err := s.facade.QueryPayment(ctx, order.OrdersID)
	if err != nil {
		switch e := err.(type) {
		case gateway.TooManyRequestsError:
			s.logger.Warn("gateway rate limited", slog.Duration("retry_after", e.RetryAfter))
			time.Sleep(e.RetryAfter)
		default:
			if errors.Is(err, gateway.ErrOrderUnknown) {
				// The gateway never saw a transaction for this order.
				s.expire(ctx, order.OrdersID)
				return
			}
			// Transient failure: leave the order for the next sweep.
			s.logger.Error("gateway query failed", slog.String("orders_id", order.OrdersID), slog.String("error", err.Error()))
		}
		return
	}

	switch result.TradeStatus {
	case model.TradeResultSuccess:
		s.settleLatePayment(ctx, order, result)
	default:
		s.expire(ctx, order.OrdersID)
	}
}

// settleLatePayment applies a payment that completed after the local expiry
// cutoff. Losing the settlement race to a concurrent callback is fine.
func (s *ExpirySweeper) settleLatePayment(ctx context.Context, order model.PayOrder, result *gateway.PaymentResult) {
	settled, err := s.facade.SettleLateOrder(ctx, order.OrdersID, result.PaymentMode)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadySettled) {
			return
		}
		s.logger.Error("late settlement failed", slog.String("orders_id", order.OrdersID), slog.String("error", err.Error()))
		return
	}

	record := &model.TradeRecord{
		OrdersID:       settled.OrdersID,
		UserID:         settled.UserID,
		TotalAmount:    settled.TotalAmount,
		MemberDiscount: settled.MemberDiscount,
		OtherDiscount:  settled.OtherDiscount,
		Payment:        settled.Payable,
		PaymentResult:  model.TradeResultSuccess,
		PaymentMode:    result.PaymentMode,
		OutOrdersID:    result.OutOrdersID,
	}
	if err := s.facade.RecordTrade(ctx, record); err != nil {
		s.logger.Error("record late settlement failed", slog.String("orders_id", order.OrdersID), slog.String("error", err.Error()))
		return
	}
	s.logger.Info("settled overdue order from gateway state", slog.String("orders_id", order.OrdersID))
}

func (s *ExpirySweeper) expire(ctx context.Context, ordersID string) {
	rewritten, err := s.facade.ExpireOrder(ctx, ordersID)
	if err != nil {
		s.logger.Error("expire order failed", slog.String("orders_id", ordersID), slog.String("error", err.Error()))
		return
	}
	if rewritten {
		s.logger.Info("expired overdue order", slog.String("orders_id", ordersID))
	}
}
