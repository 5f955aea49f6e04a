package views

import (
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

type RoleOutcome string

const (
	OutcomeRedirect RoleOutcome = "redirect"
	OutcomePending  RoleOutcome = "pending"
	OutcomeRejected RoleOutcome = "rejected"
	OutcomePicker   RoleOutcome = "picker"
)

type RoleChoice struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path"`
}

var continueAsParent = RoleChoice{Label: "Continue as Parent", Path: "/schools"}

var roleChoices = []RoleChoice{
	{Label: "Parent", Description: "Shop uniforms for your child's school", Path: "/schools"},
	{Label: "Vendor", Description: "Sell uniforms to partner schools", Path: "/vendor/onboard"},
}

// ResolveRole decides where a signed-in user lands. The role wins first, then
// an existing vendor profile's review status, then the picker.
func ResolveRole(snap session.Snapshot) (RoleOutcome, string) {
	switch r := snap.Role(); {
	case r == domain.RoleVendor:
		return OutcomeRedirect, "/vendor/dashboard"
	case r.IsAdmin():
		return OutcomeRedirect, "/admin"
	}
	if snap.Vendor != nil {
		switch snap.Vendor.Status {
		case domain.VendorPending:
			return OutcomePending, ""
		case domain.VendorRejected:
			return OutcomeRejected, ""
		}
	}
	return OutcomePicker, ""
}

type RoleSelectionView struct {
	Status
	Outcome RoleOutcome    `json:"outcome"`
	Message string         `json:"message,omitempty"`
	Vendor  *domain.Vendor `json:"vendor,omitempty"`
	Choices []RoleChoice   `json:"choices,omitempty"`
}

// NewRoleSelection evaluates a settled snapshot; callers wait for background
// vendor loads first.
func NewRoleSelection(snap session.Snapshot) *RoleSelectionView {
	v := &RoleSelectionView{Vendor: snap.Vendor}
	outcome, target := ResolveRole(snap)
	v.Outcome, v.Redirect = outcome, target
	switch outcome {
	case OutcomePending:
		v.Message = "Your vendor application is under review. We'll let you know once it's approved."
		v.Choices = []RoleChoice{continueAsParent}
	case OutcomeRejected:
		v.Message = "Your vendor application was not approved. Please contact support for details."
		v.Choices = []RoleChoice{continueAsParent}
	case OutcomePicker:
		v.Choices = roleChoices
	}
	return v
}
