package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/yinshi/foodcourt/internal/domain/model"
	"github.com/yinshi/foodcourt/internal/pkg/sign"
)

// ErrOrderUnknown indicates the gateway has no transaction for the order.
var ErrOrderUnknown = errors.New("order unknown to gateway")

// TooManyRequestsError represents rate limiting signal from the gateway.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// PaymentResult is the gateway's view of one order's transaction.
type PaymentResult struct {
	OrdersID    string
	TradeStatus model.TradeResult
	PaymentMode model.PaymentMode
	OutOrdersID string
	TotalAmount string
}

// Client exposes operations to query the payment gateway.
type Client interface {
	QueryOrder(ctx context.Context, ordersID string) (*PaymentResult, error)
}

// HTTPClient implements Client via the gateway's signed HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	secret     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates an HTTP gateway client with default timeout.
func NewHTTPClient(baseURL, secret string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		secret:  secret,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// QueryOrder asks the gateway for the transaction state of an order. Both the
// request and the response carry a signature over the shared secret; an
// unverifiable response is rejected.
func (c *HTTPClient) QueryOrder(ctx context.Context, ordersID string) (*PaymentResult, error) {
	params := map[string]string{"orders_id": ordersID}
	params[sign.SignatureKey] = sign.Sign(params, c.secret)

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/pay/orders/query")
	query := endpoint.Query()
	for key, value := range params {
		query.Set(key, value)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		if err := sign.Verify(payload, c.secret); err != nil {
			c.logger.Warn("rejected gateway response with untrusted signature",
				slog.String("orders_id", ordersID),
			)
			return nil, err
		}
		return parseResult(payload)
	case http.StatusNoContent:
		return nil, ErrOrderUnknown
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, TooManyRequestsError{RetryAfter: retryAfter}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("gateway error: %s", resp.Status)
	}
}

func parseResult(payload map[string]string) (*PaymentResult, error) {
	result := &PaymentResult{
		OrdersID:    payload["orders_id"],
		OutOrdersID: payload["out_orders_id"],
		TotalAmount: payload["total_amount"],
	}

	switch payload["trade_status"] {
	case string(model.TradeResultSuccess):
		result.TradeStatus = model.TradeResultSuccess
	case string(model.TradeResultFail):
		result.TradeStatus = model.TradeResultFail
	default:
		result.TradeStatus = model.TradeResultUnknown
	}

	if raw := payload["payment_mode"]; raw != "" {
		mode, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed payment mode %q: %w", raw, err)
		}
		result.PaymentMode = model.PaymentMode(mode)
	}
	return result, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
