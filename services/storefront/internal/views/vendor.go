package views

import (
	"context"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/pkg/events"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

type VendorDashboardView struct {
	Status
	Vendor   *domain.Vendor   `json:"vendor"`
	Listings []domain.Listing `json:"listings"`
	CanList  bool             `json:"can_list"`

	sess *session.Session
	sink events.Sink
}

func NewVendorDashboard(sess *session.Session, sink events.Sink) *VendorDashboardView {
	return &VendorDashboardView{sess: sess, sink: sink, Listings: []domain.Listing{}}
}

// Load reads the vendor profile and, once approved, its listings.
func (v *VendorDashboardView) Load(ctx context.Context) {
	defer v.begin()()
	v.load(ctx)
}

func (v *VendorDashboardView) load(ctx context.Context) {
	vendor, err := v.sess.API().Vendors.Me(ctx)
	if err != nil {
		v.Vendor, v.Listings, v.CanList = nil, []domain.Listing{}, false
		if apiclient.IsNotFound(err) {
			v.Notice = "No vendor profile found."
			return
		}
		v.fail(ctx, v.sess, "load vendor profile", err, "Failed to load vendor profile")
		return
	}
	v.Vendor, v.CanList = vendor, vendor.Approved()
	if !v.CanList {
		v.Listings = []domain.Listing{}
		return
	}
	v.loadListings(ctx)
}

func (v *VendorDashboardView) loadListings(ctx context.Context) {
	listings, err := v.sess.API().Vendors.Listings(ctx, v.Vendor.ID)
	if err != nil {
		v.fail(ctx, v.sess, "load listings", err, "Failed to load listings")
		return
	}
	v.Listings = listings
}

// CreateListing submits draft for the loaded, approved vendor. Each call is a
// new logical submit with its own idempotency key.
func (v *VendorDashboardView) CreateListing(ctx context.Context, draft domain.ListingDraft) {
	defer v.begin()()
	if !v.Vendor.Approved() {
		v.Problem, v.Error = ProblemValidation, "Listings can be created once your vendor profile is approved."
		return
	}
	draft.VendorID, draft.Enabled = v.Vendor.ID, true

	l, err := v.sess.API().Vendors.CreateListing(ctx, draft, newIdempotencyKey())
	if err != nil {
		v.fail(ctx, v.sess, "create listing", err, "Failed to create listing. Ensure you are approved and inputs are valid.")
		return
	}
	events.Emit(ctx, v.sink, events.RKListingCreated, events.ListingCreated{VendorID: v.Vendor.ID, ListingID: l.ID, SKU: l.SKU})
	v.loadListings(ctx)
	if !v.Failed() {
		v.Notice = "Listing created"
	}
}
