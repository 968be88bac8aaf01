package model

import "time"

// PaymentStatus enumerates payment lifecycle states of an order.
type PaymentStatus int

const (
	PaymentStatusUnpaid              PaymentStatus = 0
	PaymentStatusPaid                PaymentStatus = 200
	PaymentStatusAwaitingFulfillment PaymentStatus = 201
	PaymentStatusCompleted           PaymentStatus = 206
	PaymentStatusExpired             PaymentStatus = 400
	PaymentStatusFailed              PaymentStatus = 500
)

// PaymentMode enumerates supported payment channels.
type PaymentMode int

const (
	PaymentModeUnset  PaymentMode = 0
	PaymentModeWallet PaymentMode = 1
	PaymentModeWechat PaymentMode = 2
	PaymentModeAlipay PaymentMode = 3
)

// OrderType enumerates how an order is consumed.
type OrderType int

const (
	OrderTypeOnline   OrderType = 1
	OrderTypeDineIn   OrderType = 2
	OrderTypeTakeaway OrderType = 3
)

// ValidSettlementStatus reports whether status is an allowed settlement target.
func ValidSettlementStatus(status PaymentStatus) bool {
	return status == PaymentStatusPaid || status == PaymentStatusFailed
}

// ValidSettlementMode reports whether mode is an allowed settlement channel.
func ValidSettlementMode(mode PaymentMode) bool {
	return mode == PaymentModeWallet || mode == PaymentModeWechat || mode == PaymentModeAlipay
}

// ValidOrderType reports whether t is a known order type.
func ValidOrderType(t OrderType) bool {
	return t == OrderTypeOnline || t == OrderTypeDineIn || t == OrderTypeTakeaway
}

// PayOrder is the master payment order covering a single food court.
// Monetary fields are exact decimal strings.
type PayOrder struct {
	ID             int64
	OrdersID       string
	UserID         int64
	FoodCourtID    int64
	FoodCourtName  string
	DishesDetail   []SellerGroup
	TotalAmount    string
	MemberDiscount string
	OtherDiscount  string
	Payable        string
	PaymentStatus  PaymentStatus
	PaymentMode    PaymentMode
	OrdersType     OrderType
	Created        time.Time
	Updated        time.Time
	Expires        time.Time
	Extend         string
}

// EffectiveStatus reports the status visible to callers at the given moment:
// a stored UNPAID order whose expiry has passed reads as EXPIRED.
func (o *PayOrder) EffectiveStatus(now time.Time) PaymentStatus {
	if o.PaymentStatus == PaymentStatusUnpaid && !now.Before(o.Expires) {
		return PaymentStatusExpired
	}
	return o.PaymentStatus
}

// ConsumeOrder is the seller-scoped portion of a master order.
type ConsumeOrder struct {
	ID             int64
	OrdersID       string
	MasterOrdersID string
	UserID         int64
	BusinessID     int64
	BusinessName   string
	FoodCourtID    int64
	FoodCourtName  string
	DishesDetail   []DishLine
	TotalAmount    string
	MemberDiscount string
	OtherDiscount  string
	Payable        string
	PaymentStatus  PaymentStatus
	PaymentMode    PaymentMode
	OrdersType     OrderType
	Created        time.Time
	Updated        time.Time
	Expires        time.Time
	Extend         string
}

// EffectiveStatus mirrors PayOrder.EffectiveStatus for sub-orders.
func (o *ConsumeOrder) EffectiveStatus(now time.Time) PaymentStatus {
	if o.PaymentStatus == PaymentStatusUnpaid && !now.Before(o.Expires) {
		return PaymentStatusExpired
	}
	return o.PaymentStatus
}
