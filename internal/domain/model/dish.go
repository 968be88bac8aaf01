package model

import "time"

// DishStatus marks catalog row validity; deleted rows are kept with a flag.
type DishStatus int

const (
	DishStatusActive  DishStatus = 1
	DishStatusDeleted DishStatus = 2
)

// DishSize enumerates portion sizes.
type DishSize int

const (
	DishSizeDefault DishSize = 10
	DishSizeSmall   DishSize = 11
	DishSizeMedium  DishSize = 12
	DishSizeLarge   DishSize = 13
)

// Dish is the authoritative catalog record; price is a decimal string and is
// never taken from client input.
type Dish struct {
	ID            int64
	Title         string
	Subtitle      string
	Size          DishSize
	Price         string
	BusinessID    int64
	BusinessName  string
	FoodCourtID   int64
	FoodCourtName string
	IsRecommend   bool
	Status        DishStatus
	Created       time.Time
	Updated       time.Time
}

// DishSelection is a client-submitted (dish, quantity) pair; everything else
// about the dish is resolved from the catalog.
type DishSelection struct {
	DishID   int64
	Quantity int
}

// DishLine is a priced line inside an order snapshot.
type DishLine struct {
	DishID   int64  `json:"dish_id"`
	Title    string `json:"title"`
	Size     int    `json:"size"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Amount   string `json:"amount"`
}

// SellerGroup collects one seller's lines inside a master order snapshot.
type SellerGroup struct {
	BusinessID   int64      `json:"business_id"`
	BusinessName string     `json:"business_name"`
	Lines        []DishLine `json:"dishes_detail"`
	Subtotal     string     `json:"subtotal"`
}

// OrderSnapshot is the resolved, trusted view of a cart at order time.
type OrderSnapshot struct {
	FoodCourtID   int64
	FoodCourtName string
	Groups        []SellerGroup
	Total         string
}
