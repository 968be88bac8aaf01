package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yinshi/foodcourt/internal/domain/model"
	"github.com/yinshi/foodcourt/internal/server/http/handlers"
	testhelpers "github.com/yinshi/foodcourt/internal/test"
)

func TestSetupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := &testhelpers.CourtFacadeStub{
		OrderFacadeStub: testhelpers.OrderFacadeStub{
			OrdersFn: func(context.Context, int64) ([]model.PayOrder, error) {
				return []model.PayOrder{{
					OrdersID:      "YS20260831000001",
					UserID:        1,
					PaymentStatus: model.PaymentStatusPaid,
					Payable:       "25.00",
					Created:       time.Unix(0, 0).UTC(),
				}}, nil
			},
		},
	}
	engine := Setup(facade, logger)

	body, _ := json.Marshal(map[string]string{"login": "user", "password": "pass"})
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for register, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user/orders", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for orders, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user/cart", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for cart, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user/orders", nil)
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", resp.Code)
	}

	body, _ = json.Marshal(map[string]string{"orders_id": "YS20260831000001"})
	req = httptest.NewRequest(http.MethodPost, "/api/payment/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for callback, got %d", resp.Code)
	}
	if len(facade.Payloads) != 1 {
		t.Fatalf("expected callback payload to be recorded, got %d", len(facade.Payloads))
	}
}

var _ handlers.CourtFacade = (*testhelpers.CourtFacadeStub)(nil)
