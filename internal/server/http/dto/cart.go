package dto

// CartAddRequest describes the add-to-cart payload.
type CartAddRequest struct {
	DishID   int64 `json:"dish_id"`
	Quantity int   `json:"quantity"`
}

// CartUpdateRequest sets a new quantity on an existing cart position.
type CartUpdateRequest struct {
	Quantity int `json:"quantity"`
}

// CartItemResponse describes one cart position joined with the dish.
type CartItemResponse struct {
	DishID   int64  `json:"dish_id"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}
