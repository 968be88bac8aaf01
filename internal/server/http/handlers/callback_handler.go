package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
)

// CallbackHandler receives signed settlement notifications from the payment
// gateway. It is not behind user authentication; the signature is the trust
// boundary.
type CallbackHandler struct {
	facade CallbackFacade
}

// NewCallbackHandler constructs CallbackHandler.
func NewCallbackHandler(facade CallbackFacade) *CallbackHandler {
	return &CallbackHandler{facade: facade}
}

// Handle processes POST /api/payment/callback.
func (h *CallbackHandler) Handle(c *gin.Context) {
	var payload map[string]string
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.HandleCallback(c.Request.Context(), payload); err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrUntrustedSignature):
			c.Status(http.StatusForbidden)
		case errors.Is(err, domainErrors.ErrInvalidStatus),
			errors.Is(err, domainErrors.ErrInvalidMode),
			errors.Is(err, domainErrors.ErrMissingField):
			c.Status(http.StatusBadRequest)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrAlreadySettled):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	// Gateways retry until they see this exact acknowledgement body.
	c.String(http.StatusOK, "success")
}
