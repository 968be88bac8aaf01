package dto

import (
	"time"

	"github.com/yinshi/foodcourt/internal/domain/model"
)

// DishSelectionRequest is one (dish, quantity) pair in an order request.
type DishSelectionRequest struct {
	DishID   int64 `json:"dish_id"`
	Quantity int   `json:"quantity"`
}

// OrderCreateRequest describes the order creation payload. With FromCart set
// the dish list is ignored and the active cart is purchased instead.
type OrderCreateRequest struct {
	Dishes     []DishSelectionRequest `json:"dishes_detail"`
	OrdersType int                    `json:"orders_type"`
	FromCart   bool                   `json:"from_cart"`
}

// OrderResponse describes a master order.
type OrderResponse struct {
	OrdersID       string              `json:"orders_id"`
	FoodCourtID    int64               `json:"food_court_id"`
	FoodCourtName  string              `json:"food_court_name"`
	DishesDetail   []model.SellerGroup `json:"dishes_detail"`
	TotalAmount    string              `json:"total_amount"`
	MemberDiscount string              `json:"member_discount"`
	OtherDiscount  string              `json:"other_discount"`
	Payable        string              `json:"payable"`
	PaymentStatus  int                 `json:"payment_status"`
	PaymentMode    int                 `json:"payment_mode"`
	OrdersType     int                 `json:"orders_type"`
	Created        time.Time           `json:"created"`
	Expires        time.Time           `json:"expires"`
}

// SubOrderResponse describes one seller-scoped sub-order.
type SubOrderResponse struct {
	OrdersID       string           `json:"orders_id"`
	MasterOrdersID string           `json:"master_orders_id"`
	BusinessID     int64            `json:"business_id"`
	BusinessName   string           `json:"business_name"`
	DishesDetail   []model.DishLine `json:"dishes_detail"`
	TotalAmount    string           `json:"total_amount"`
	Payable        string           `json:"payable"`
	PaymentStatus  int              `json:"payment_status"`
	OrdersType     int              `json:"orders_type"`
	Created        time.Time        `json:"created"`
}

// TradeResponse describes one settlement ledger entry.
type TradeResponse struct {
	SerialNumber  string    `json:"serial_number"`
	OrdersID      string    `json:"orders_id"`
	TotalAmount   string    `json:"total_amount"`
	Payment       string    `json:"payment"`
	PaymentResult string    `json:"payment_result"`
	PaymentMode   int       `json:"payment_mode"`
	OutOrdersID   string    `json:"out_orders_id"`
	Created       time.Time `json:"created"`
}
