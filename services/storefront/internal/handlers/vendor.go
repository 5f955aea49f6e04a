package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/hey-granth/StandardStitch/pkg/events"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/middlewares"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/views"
)

type VendorHandler struct {
	sink events.Sink
}

func NewVendorHandler(sink events.Sink) *VendorHandler {
	return &VendorHandler{sink: sink}
}

// GET /vendor/dashboard
func (h *VendorHandler) Dashboard(c *gin.Context) {
	v := views.NewVendorDashboard(middlewares.SessionFrom(c), h.sink)
	v.Load(c.Request.Context())
	page(c, &v.Status, v)
}

// POST /vendor/listings
func (h *VendorHandler) CreateListing(c *gin.Context) {
	var in struct {
		SKU          string          `json:"sku"            binding:"required"`
		BasePrice    decimal.Decimal `json:"base_price"`
		MRP          decimal.Decimal `json:"mrp"`
		LeadTimeDays int             `json:"lead_time_days" binding:"gte=0"`
		SchoolID     string          `json:"school"         binding:"required"`
		SpecID       string          `json:"spec"           binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	if !in.BasePrice.IsPositive() || in.MRP.LessThan(in.BasePrice) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "base_price must be positive and mrp at least base_price"})
		return
	}
	v := views.NewVendorDashboard(middlewares.SessionFrom(c), h.sink)
	ctx := c.Request.Context()
	v.Load(ctx)
	if v.Failed() {
		action(c, &v.Status, v)
		return
	}
	v.CreateListing(ctx, domain.ListingDraft{
		SKU: in.SKU, BasePrice: in.BasePrice, MRP: in.MRP,
		LeadTimeDays: in.LeadTimeDays, SchoolID: in.SchoolID, SpecID: in.SpecID,
	})
	if v.Problem == views.ProblemNone {
		c.JSON(http.StatusCreated, v)
		return
	}
	action(c, &v.Status, v)
}

// GET /vendor/onboard
func (h *VendorHandler) OnboardPage(c *gin.Context) {
	v := views.NewVendorOnboard(middlewares.SessionFrom(c), h.sink)
	page(c, &v.Status, v)
}

// POST /vendor/onboard
func (h *VendorHandler) Onboard(c *gin.Context) {
	var in domain.OnboardForm
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	v := views.NewVendorOnboard(middlewares.SessionFrom(c), h.sink)
	v.Redirect = ""
	v.Submit(c.Request.Context(), in)
	action(c, &v.Status, v)
}
