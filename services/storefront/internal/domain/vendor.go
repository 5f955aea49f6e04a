package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type VendorStatus string

const (
	VendorPending  VendorStatus = "pending"
	VendorApproved VendorStatus = "approved"
	VendorRejected VendorStatus = "rejected"
)

type Vendor struct {
	ID           string       `json:"id"`
	OfficialName string       `json:"official_name"`
	GSTNumber    string       `json:"gst_number"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	City         string       `json:"city"`
	Status       VendorStatus `json:"status"`
	IsActive     bool         `json:"is_active"`
}

func (v *Vendor) Approved() bool { return v != nil && v.Status == VendorApproved }

// Listing is a vendor's offer of one uniform spec at one school.
type Listing struct {
	ID           string          `json:"id"`
	VendorName   string          `json:"vendor_name"`
	Price        decimal.Decimal `json:"price"`
	MRP          decimal.Decimal `json:"mrp"`
	BasePrice    decimal.Decimal `json:"base_price"`
	SKU          string          `json:"sku"`
	LeadTimeDays int             `json:"lead_time_days"`
	Enabled      bool            `json:"enabled"`
	SchoolName   string          `json:"school_name,omitempty"`
	SpecItemType string          `json:"spec_item_type,omitempty"`
	CreatedAt    *time.Time      `json:"created_at,omitempty"`
}

// Discounted reports whether the MRP is shown struck through next to a lower price.
func (l Listing) Discounted() bool {
	return l.MRP.GreaterThan(l.Price)
}

// ListingDraft is the vendor dashboard's create-listing form.
type ListingDraft struct {
	SKU          string          `json:"sku"`
	BasePrice    decimal.Decimal `json:"base_price"`
	MRP          decimal.Decimal `json:"mrp"`
	LeadTimeDays int             `json:"lead_time_days"`
	SchoolID     string          `json:"school"`
	SpecID       string          `json:"spec"`
	VendorID     string          `json:"vendor"`
	Enabled      bool            `json:"enabled"`
}

// OnboardForm is the vendor onboarding form.
type OnboardForm struct {
	OfficialName string `json:"official_name"`
	GSTNumber    string `json:"gst_number"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	City         string `json:"city"`
}
