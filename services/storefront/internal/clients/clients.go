package clients

import (
	"github.com/hey-granth/StandardStitch/pkg/apiclient"
)

// Clients groups the typed endpoint clients of one session. All of them share
// the session's authenticated apiclient.
type Clients struct {
	Auth     *AuthClient
	Vendors  *VendorClient
	Schools  *SchoolClient
	Catalog  *CatalogClient
	Checkout *CheckoutClient
}

func New(api *apiclient.Client) *Clients {
	return &Clients{
		Auth:     &AuthClient{api: api},
		Vendors:  &VendorClient{api: api},
		Schools:  &SchoolClient{api: api},
		Catalog:  &CatalogClient{api: api},
		Checkout: &CheckoutClient{api: api},
	}
}
