package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/server/http/dto"
)

// CartHandler manages shopping cart endpoints.
type CartHandler struct {
	facade CartFacade
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(facade CartFacade) *CartHandler {
	return &CartHandler{facade: facade}
}

// Add handles POST /api/user/cart.
func (h *CartHandler) Add(c *gin.Context) {
	userID := CurrentUserID(c)

	var req dto.CartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	item, err := h.facade.AddToCart(c.Request.Context(), userID, req.DishID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidQuantity):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"dish_id": item.DishID, "quantity": item.Quantity})
}

// List handles GET /api/user/cart.
func (h *CartHandler) List(c *gin.Context) {
	userID := CurrentUserID(c)
	lines, err := h.facade.Cart(c.Request.Context(), userID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(lines) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.CartItemResponse, 0, len(lines))
	for _, line := range lines {
		response = append(response, dto.CartItemResponse{
			DishID:   line.Dish.ID,
			Title:    line.Dish.Title,
			Price:    line.Dish.Price,
			Quantity: line.Item.Quantity,
		})
	}
	c.JSON(http.StatusOK, response)
}

// Update handles PUT /api/user/cart/:dish_id.
func (h *CartHandler) Update(c *gin.Context) {
	userID := CurrentUserID(c)
	dishID, err := strconv.ParseInt(c.Param("dish_id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.CartUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.UpdateCartQuantity(c.Request.Context(), userID, dishID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidQuantity):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.Status(http.StatusOK)
}

// Remove handles DELETE /api/user/cart/:dish_id.
func (h *CartHandler) Remove(c *gin.Context) {
	userID := CurrentUserID(c)
	dishID, err := strconv.ParseInt(c.Param("dish_id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.RemoveFromCart(c.Request.Context(), userID, dishID); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}
