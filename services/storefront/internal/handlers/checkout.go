package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hey-granth/StandardStitch/pkg/events"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/middlewares"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/views"
)

type CheckoutHandler struct {
	sink events.Sink
}

func NewCheckoutHandler(sink events.Sink) *CheckoutHandler {
	return &CheckoutHandler{sink: sink}
}

// GET /cart
func (h *CheckoutHandler) Cart(c *gin.Context) {
	v := views.NewCart(middlewares.SessionFrom(c), h.sink)
	v.Load(c.Request.Context())
	page(c, &v.Status, v)
}

// DELETE /cart/items/:id
func (h *CheckoutHandler) RemoveItem(c *gin.Context) {
	v := views.NewCart(middlewares.SessionFrom(c), h.sink)
	v.RemoveItem(c.Request.Context(), c.Param("id"))
	action(c, &v.Status, v)
}

// POST /cart/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	v := views.NewCart(middlewares.SessionFrom(c), h.sink)
	ctx := c.Request.Context()
	v.Load(ctx)
	if !v.Failed() {
		v.Checkout(ctx)
	}
	action(c, &v.Status, v)
}

// GET /orders
func (h *CheckoutHandler) Orders(c *gin.Context) {
	v := views.NewOrders(middlewares.SessionFrom(c))
	v.Load(c.Request.Context())
	page(c, &v.Status, v)
}
