// Package events defines the storefront's activity events and where they go.
package events

import (
	"encoding/json"
	"fmt"
)

const (
	RKCheckoutStarted = "storefront.checkout.started"
	RKListingCreated  = "storefront.listing.created"

	RKVendorOnboarded = "storefront.vendor.onboarded"
	RKVendorApproved  = "storefront.vendor.approved"
	RKVendorRejected  = "storefront.vendor.rejected"

	RKSessionLogin  = "storefront.session.login"
	RKSessionLogout = "storefront.session.logout"
)

type CheckoutStarted struct {
	UserID    string `json:"user_id"`
	CartID    string `json:"cart_id"`
	PaymentID string `json:"payment_id"`
	Amount    string `json:"amount"` // decimal string, as the API sends it
	Items     int    `json:"items"`
}

type ListingCreated struct {
	VendorID  string `json:"vendor_id"`
	ListingID string `json:"listing_id"`
	SKU       string `json:"sku"`
}

type VendorOnboarded struct {
	VendorID string `json:"vendor_id"`
	UserID   string `json:"user_id"`
	City     string `json:"city"`
}

// VendorDecision is an admin approving or rejecting a vendor.
type VendorDecision struct {
	VendorID string `json:"vendor_id"`
	ActorID  string `json:"actor_id"`
}

type SessionChanged struct {
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
}

func Decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}

// Describe renders an encoded event as a one-line human message.
func Describe(key string, body []byte) (string, error) {
	switch key {
	case RKCheckoutStarted:
		ev, err := Decode[CheckoutStarted](body)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("user %s started checkout of cart %s: %d items, %s (payment=%s)",
			ev.UserID, ev.CartID, ev.Items, ev.Amount, ev.PaymentID), nil

	case RKListingCreated:
		ev, err := Decode[ListingCreated](body)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("vendor %s listed %s (listing=%s)", ev.VendorID, ev.SKU, ev.ListingID), nil

	case RKVendorOnboarded:
		ev, err := Decode[VendorOnboarded](body)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("user %s onboarded vendor %s in %s", ev.UserID, ev.VendorID, ev.City), nil

	case RKVendorApproved, RKVendorRejected:
		ev, err := Decode[VendorDecision](body)
		if err != nil {
			return "", err
		}
		verb := "approved"
		if key == RKVendorRejected {
			verb = "rejected"
		}
		return fmt.Sprintf("%s %s vendor %s", ev.ActorID, verb, ev.VendorID), nil

	case RKSessionLogin, RKSessionLogout:
		ev, err := Decode[SessionChanged](body)
		if err != nil {
			return "", err
		}
		if key == RKSessionLogout {
			return fmt.Sprintf("user %s signed out", ev.UserID), nil
		}
		return fmt.Sprintf("user %s signed in as %s", ev.UserID, ev.Role), nil
	}
	return string(body), nil
}
