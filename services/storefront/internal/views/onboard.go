package views

import (
	"context"
	"errors"
	"log"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/pkg/events"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

type VendorOnboardView struct {
	Status
	Form domain.OnboardForm `json:"form"`

	sess *session.Session
	sink events.Sink
}

// NewVendorOnboard opens the onboarding form, or points back to role
// selection when the user already has a vendor profile.
func NewVendorOnboard(sess *session.Session, sink events.Sink) *VendorOnboardView {
	v := &VendorOnboardView{sess: sess, sink: sink}
	if snap := sess.Snapshot(); snap.Vendor != nil {
		v.Redirect = afterLogin
	}
	return v
}

func (v *VendorOnboardView) Submit(ctx context.Context, form domain.OnboardForm) {
	defer v.begin()()
	v.Form = form

	vendor, err := v.sess.API().Vendors.Onboard(ctx, form)
	if err != nil {
		if v.fail(ctx, v.sess, "onboard vendor", err, "Onboarding failed. Please check your inputs.") != ProblemValidation {
			return
		}
		var pe *apiclient.APIError
		if errors.As(err, &pe) {
			v.Error = "Onboarding failed. Please check your inputs."
			if msg := pe.Message("gst_number", "error"); msg != "" {
				v.Error = msg
			}
		}
		return
	}
	if _, err := v.sess.RefreshVendorProfile(ctx); err != nil {
		log.Printf("[storefront] refresh vendor after onboarding: %v", err)
	}

	ev := events.VendorOnboarded{VendorID: vendor.ID, City: vendor.City}
	if snap := v.sess.Snapshot(); snap.User != nil {
		ev.UserID = snap.User.ID
	}
	events.Emit(ctx, v.sink, events.RKVendorOnboarded, ev)
	v.Redirect = afterLogin
}
