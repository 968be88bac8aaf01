package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/server/http/dto"
)

// TradeHandler serves the settlement ledger of a user's orders.
type TradeHandler struct {
	facade TradeFacade
}

// NewTradeHandler constructs TradeHandler.
func NewTradeHandler(facade TradeFacade) *TradeHandler {
	return &TradeHandler{facade: facade}
}

// List handles GET /api/user/orders/:orders_id/trades.
func (h *TradeHandler) List(c *gin.Context) {
	userID := CurrentUserID(c)
	records, err := h.facade.Trades(c.Request.Context(), userID, c.Param("orders_id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(records) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.TradeResponse, 0, len(records))
	for _, r := range records {
		response = append(response, dto.TradeResponse{
			SerialNumber:  r.SerialNumber,
			OrdersID:      r.OrdersID,
			TotalAmount:   r.TotalAmount,
			Payment:       r.Payment,
			PaymentResult: string(r.PaymentResult),
			PaymentMode:   int(r.PaymentMode),
			OutOrdersID:   r.OutOrdersID,
			Created:       r.Created,
		})
	}
	c.JSON(http.StatusOK, response)
}
