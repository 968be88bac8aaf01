package model

import "time"

// CartItemStatus marks cart rows; removal is a soft delete.
type CartItemStatus int

const (
	CartItemStatusActive  CartItemStatus = 1
	CartItemStatusDeleted CartItemStatus = 2
)

// CartItem is one dish position in a user's shopping cart.
type CartItem struct {
	ID       int64
	UserID   int64
	DishID   int64
	Quantity int
	Status   CartItemStatus
	Created  time.Time
	Updated  time.Time
}

// CartLine is a cart position joined with its current catalog record.
type CartLine struct {
	Item CartItem
	Dish Dish
}
