package model

import "time"

// TradeResult is the reported outcome of one settlement attempt.
type TradeResult string

const (
	TradeResultSuccess TradeResult = "SUCCESS"
	TradeResultFail    TradeResult = "FAIL"
	TradeResultUnknown TradeResult = "UNKNOWN"
)

// TradeRecord is an append-only ledger entry; one order may accumulate many
// records across gateway retries while settling at most once.
type TradeRecord struct {
	ID             int64
	SerialNumber   string
	OrdersID       string
	UserID         int64
	TotalAmount    string
	MemberDiscount string
	OtherDiscount  string
	Payment        string
	PaymentResult  TradeResult
	PaymentMode    PaymentMode
	OutOrdersID    string
	Created        time.Time
	Extend         string
}
