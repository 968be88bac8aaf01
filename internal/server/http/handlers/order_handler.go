package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
	"github.com/yinshi/foodcourt/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/user/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	userID := CurrentUserID(c)

	var req dto.OrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	ordersType := model.OrderType(req.OrdersType)

	var order *model.PayOrder
	var err error
	if req.FromCart {
		order, err = h.facade.CreateOrderFromCart(c.Request.Context(), userID, ordersType)
	} else {
		selections := make([]model.DishSelection, 0, len(req.Dishes))
		for _, d := range req.Dishes {
			selections = append(selections, model.DishSelection{DishID: d.DishID, Quantity: d.Quantity})
		}
		order, err = h.facade.CreateOrder(c.Request.Context(), userID, selections, ordersType)
	}
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrEmptyCart),
			errors.Is(err, domainErrors.ErrInvalidQuantity),
			errors.Is(err, domainErrors.ErrMultiFoodCourt),
			errors.Is(err, domainErrors.ErrInvalidOrderType),
			errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrConflict):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Get handles GET /api/user/orders/:orders_id.
func (h *OrderHandler) Get(c *gin.Context) {
	userID := CurrentUserID(c)
	order, err := h.facade.Order(c.Request.Context(), userID, c.Param("orders_id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// List handles GET /api/user/orders.
func (h *OrderHandler) List(c *gin.Context) {
	userID := CurrentUserID(c)
	orders, err := h.facade.Orders(c.Request.Context(), userID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, response)
}

// SubOrders handles GET /api/user/orders/:orders_id/suborders.
func (h *OrderHandler) SubOrders(c *gin.Context) {
	userID := CurrentUserID(c)
	subs, err := h.facade.SubOrders(c.Request.Context(), userID, c.Param("orders_id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.SubOrderResponse, 0, len(subs))
	for _, sub := range subs {
		response = append(response, dto.SubOrderResponse{
			OrdersID:       sub.OrdersID,
			MasterOrdersID: sub.MasterOrdersID,
			BusinessID:     sub.BusinessID,
			BusinessName:   sub.BusinessName,
			DishesDetail:   sub.DishesDetail,
			TotalAmount:    sub.TotalAmount,
			Payable:        sub.Payable,
			PaymentStatus:  int(sub.PaymentStatus),
			OrdersType:     int(sub.OrdersType),
			Created:        sub.Created,
		})
	}
	c.JSON(http.StatusOK, response)
}

func toOrderResponse(order *model.PayOrder) dto.OrderResponse {
	return dto.OrderResponse{
		OrdersID:       order.OrdersID,
		FoodCourtID:    order.FoodCourtID,
		FoodCourtName:  order.FoodCourtName,
		DishesDetail:   order.DishesDetail,
		TotalAmount:    order.TotalAmount,
		MemberDiscount: order.MemberDiscount,
		OtherDiscount:  order.OtherDiscount,
		Payable:        order.Payable,
		PaymentStatus:  int(order.PaymentStatus),
		PaymentMode:    int(order.PaymentMode),
		OrdersType:     int(order.OrdersType),
		Created:        order.Created,
		Expires:        order.Expires,
	}
}
