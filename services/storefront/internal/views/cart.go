package views

import (
	"context"

	"github.com/google/uuid"

	"github.com/hey-granth/StandardStitch/pkg/events"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

// newIdempotencyKey mints one key per logical submit.
var newIdempotencyKey = uuid.NewString

type CartView struct {
	Status
	Cart *domain.Cart `json:"cart"`

	sess *session.Session
	sink events.Sink
}

func NewCart(sess *session.Session, sink events.Sink) *CartView {
	return &CartView{sess: sess, sink: sink}
}

func (v *CartView) Load(ctx context.Context) {
	defer v.begin()()
	v.load(ctx)
}

func (v *CartView) load(ctx context.Context) bool {
	cart, err := v.sess.API().Checkout.Cart(ctx)
	if err != nil {
		v.fail(ctx, v.sess, "load cart", err, "Failed to load cart")
		return false
	}
	v.Cart = cart
	return true
}

// RemoveItem deletes a line and re-reads the cart so the total stays the server's.
func (v *CartView) RemoveItem(ctx context.Context, itemID string) {
	defer v.begin()()
	if err := v.sess.API().Checkout.RemoveItem(ctx, itemID); err != nil {
		v.fail(ctx, v.sess, "remove cart item "+itemID, err, "Failed to remove item")
		return
	}
	v.load(ctx)
}

// Checkout starts a (simulated) payment for the loaded cart and sends the
// browser to its orders.
func (v *CartView) Checkout(ctx context.Context) {
	defer v.begin()()
	if v.Cart.Empty() {
		v.Problem, v.Error = ProblemValidation, "Your cart is empty"
		return
	}
	cs, err := v.sess.API().Checkout.StartSession(ctx, v.Cart.ID, newIdempotencyKey())
	if err != nil {
		v.fail(ctx, v.sess, "checkout cart "+v.Cart.ID, err, "Checkout failed")
		return
	}
	snap := v.sess.Snapshot()
	ev := events.CheckoutStarted{CartID: v.Cart.ID, PaymentID: cs.PaymentID, Amount: cs.Amount.StringFixed(2), Items: len(v.Cart.Items)}
	if snap.User != nil {
		ev.UserID = snap.User.ID
	}
	events.Emit(ctx, v.sink, events.RKCheckoutStarted, ev)
	v.Notice, v.Redirect = "Payment Successful! (Simulated)", "/orders"
}

type OrdersView struct {
	Status
	Orders []domain.Order `json:"orders"`

	sess *session.Session
}

func NewOrders(sess *session.Session) *OrdersView {
	return &OrdersView{sess: sess, Orders: []domain.Order{}}
}

func (v *OrdersView) Load(ctx context.Context) {
	defer v.begin()()
	orders, err := v.sess.API().Checkout.Orders(ctx)
	if err != nil {
		v.fail(ctx, v.sess, "load orders", err, "Failed to load orders")
		return
	}
	v.Orders = orders
}
