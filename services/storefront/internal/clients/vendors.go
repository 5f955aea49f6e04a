package clients

import (
	"context"
	"net/url"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
)

type VendorClient struct{ api *apiclient.Client }

func (c *VendorClient) Me(ctx context.Context) (*domain.Vendor, error) {
	var out domain.Vendor
	if err := c.api.Get(ctx, "/vendors/vendors/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *VendorClient) List(ctx context.Context) ([]domain.Vendor, error) {
	var out []domain.Vendor
	if err := c.api.Get(ctx, "/vendors/vendors/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *VendorClient) Approve(ctx context.Context, id string) error {
	return c.api.Post(ctx, "/vendors/vendors/"+url.PathEscape(id)+"/approve", nil, nil)
}

func (c *VendorClient) Reject(ctx context.Context, id string) error {
	return c.api.Post(ctx, "/vendors/vendors/"+url.PathEscape(id)+"/reject", nil, nil)
}

func (c *VendorClient) Onboard(ctx context.Context, in domain.OnboardForm) (*domain.Vendor, error) {
	var out domain.Vendor
	if err := c.api.Post(ctx, "/vendors/onboard", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *VendorClient) Listings(ctx context.Context, vendorID string) ([]domain.Listing, error) {
	var out []domain.Listing
	if err := c.api.Get(ctx, "/vendors/vendors/"+url.PathEscape(vendorID)+"/listings", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateListing posts a listing under idempotencyKey. Replays of the same key
// return the listing created by the first call.
func (c *VendorClient) CreateListing(ctx context.Context, in domain.ListingDraft, idempotencyKey string) (*domain.Listing, error) {
	var out domain.Listing
	err := c.api.Post(ctx, "/vendors/listings", in, &out, apiclient.WithIdempotencyKey(idempotencyKey))
	if err != nil {
		return nil, err
	}
	return &out, nil
}
