package clients

import (
	"context"
	"net/url"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
)

type CheckoutClient struct{ api *apiclient.Client }

func (c *CheckoutClient) Cart(ctx context.Context) (*domain.Cart, error) {
	var out domain.Cart
	if err := c.api.Get(ctx, "/checkout/cart", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CheckoutClient) AddItem(ctx context.Context, listingID string, qty int) (*domain.CartItem, error) {
	var out domain.CartItem
	body := map[string]any{"listing": listingID, "qty": qty}
	if err := c.api.Post(ctx, "/checkout/cart/items", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CheckoutClient) RemoveItem(ctx context.Context, itemID string) error {
	return c.api.Delete(ctx, "/checkout/cart/items/"+url.PathEscape(itemID), nil)
}

func (c *CheckoutClient) StartSession(ctx context.Context, cartID, idempotencyKey string) (*domain.CheckoutSession, error) {
	var out domain.CheckoutSession
	body := map[string]string{"cart_id": cartID}
	if err := c.api.Post(ctx, "/checkout/checkout/session", body, &out, apiclient.WithIdempotencyKey(idempotencyKey)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CheckoutClient) Orders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.api.Get(ctx, "/checkout/orders", &out); err != nil {
		return nil, err
	}
	return out, nil
}
