package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hey-granth/StandardStitch/services/storefront/internal/middlewares"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/views"
)

type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler { return &CatalogHandler{} }

// GET /schools?q=
func (h *CatalogHandler) Schools(c *gin.Context) {
	v := views.NewSchoolList(middlewares.SessionFrom(c))
	v.Query = c.Query("q")
	v.Load(c.Request.Context())
	page(c, &v.Status, v)
}

// GET /schools/:id?gender=All|M|F
func (h *CatalogHandler) School(c *gin.Context) {
	g, err := views.ParseGenderFilter(c.Query("gender"))
	if err != nil {
		badRequest(c, err)
		return
	}
	v := views.NewSchoolDetails(middlewares.SessionFrom(c))
	v.Gender = g
	v.Load(c.Request.Context(), c.Param("id"))
	page(c, &v.Status, v)
}

// POST /cart/items
func (h *CatalogHandler) AddToCart(c *gin.Context) {
	var in struct {
		ListingID string `json:"listing_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	v := views.NewSchoolDetails(middlewares.SessionFrom(c))
	v.AddToCart(c.Request.Context(), in.ListingID)
	if v.Problem == views.ProblemNone {
		c.JSON(http.StatusCreated, v.Status)
		return
	}
	action(c, &v.Status, v.Status)
}
