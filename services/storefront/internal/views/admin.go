package views

import (
	"context"

	"github.com/hey-granth/StandardStitch/pkg/events"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

type AdminView struct {
	Status
	Vendors []domain.Vendor `json:"vendors"`

	sess *session.Session
	sink events.Sink
}

func NewAdmin(sess *session.Session, sink events.Sink) *AdminView {
	return &AdminView{sess: sess, sink: sink, Vendors: []domain.Vendor{}}
}

func (v *AdminView) Load(ctx context.Context) {
	defer v.begin()()
	v.load(ctx)
}

func (v *AdminView) load(ctx context.Context) {
	vendors, err := v.sess.API().Vendors.List(ctx)
	if err != nil {
		v.fail(ctx, v.sess, "load vendors", err, "Failed to load vendors")
		return
	}
	v.Vendors = vendors
}

func (v *AdminView) Approve(ctx context.Context, vendorID string) {
	v.decide(ctx, vendorID, true)
}

func (v *AdminView) Reject(ctx context.Context, vendorID string) {
	v.decide(ctx, vendorID, false)
}

func (v *AdminView) decide(ctx context.Context, vendorID string, approve bool) {
	defer v.begin()()
	call, key, verb := v.sess.API().Vendors.Reject, events.RKVendorRejected, "reject"
	if approve {
		call, key, verb = v.sess.API().Vendors.Approve, events.RKVendorApproved, "approve"
	}
	if err := call(ctx, vendorID); err != nil {
		v.fail(ctx, v.sess, verb+" vendor "+vendorID, err, "Failed to "+verb+" vendor")
		return
	}
	ev := events.VendorDecision{VendorID: vendorID}
	if snap := v.sess.Snapshot(); snap.User != nil {
		ev.ActorID = snap.User.ID
	}
	events.Emit(ctx, v.sink, key, ev)
	v.load(ctx)
}
