package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID           string          `json:"id"`
	Listing      string          `json:"listing"`
	ListingSKU   string          `json:"listing_sku"`
	ListingPrice decimal.Decimal `json:"listing_price"`
	SpecName     string          `json:"spec_name,omitempty"`
	VendorName   string          `json:"vendor_name"`
	Qty          int             `json:"qty"`
}

// Cart is the user's single active cart. TotalAmount is computed by the API.
type Cart struct {
	ID          string          `json:"id"`
	User        string          `json:"user"`
	Items       []CartItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

func (c *Cart) Empty() bool { return c == nil || len(c.Items) == 0 }

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCancelled OrderStatus = "cancelled"
)

type OrderItem struct {
	ID         string          `json:"id"`
	Listing    string          `json:"listing"`
	SpecName   string          `json:"spec_name,omitempty"`
	VendorName string          `json:"vendor_name,omitempty"`
	Qty        int             `json:"qty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID          string          `json:"id"`
	User        string          `json:"user"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	Items       []OrderItem     `json:"items,omitempty"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}

// CheckoutSession is the API's (simulated) payment intent for a cart.
type CheckoutSession struct {
	PaymentID    string          `json:"payment_id"`
	PaymentToken string          `json:"payment_token"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
}
