package views

import (
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Navigation lists the header links for snap.
func Navigation(snap session.Snapshot) []NavItem {
	items := []NavItem{{Label: "Schools", Path: "/schools"}}
	if !snap.SignedIn() {
		return append(items, NavItem{Label: "Login", Path: "/login"}, NavItem{Label: "Sign Up", Path: "/signup"})
	}
	role := snap.Role()
	if role == domain.RoleVendor && snap.Vendor.Approved() {
		items = append(items, NavItem{Label: "Vendor Dashboard", Path: "/vendor/dashboard"})
	}
	if role.IsAdmin() {
		items = append(items, NavItem{Label: "Admin", Path: "/admin"})
	}
	items = append(items, NavItem{Label: "Cart", Path: "/cart"}, NavItem{Label: "Orders", Path: "/orders"})
	if role == domain.RoleParent {
		items = append(items, NavItem{Label: "Become a Vendor", Path: "/vendor/onboard"})
	}
	return items
}
