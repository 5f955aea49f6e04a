package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hey-granth/StandardStitch/pkg/events"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/middlewares"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

// Mount registers the storefront routes on r.
func Mount(r gin.IRouter, reg *session.Registry, sink events.Sink, cookie middlewares.CookieConfig) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	app := r.Group("")
	app.Use(middlewares.CSRFToken(), middlewares.Sessions(reg, cookie))

	a := NewAccountHandler(sink)
	app.GET("/login", a.Page("login"))
	app.GET("/signup", a.Page("signup"))
	app.POST("/login", a.Login)
	app.POST("/signup", a.Signup)
	app.POST("/logout", a.Logout)
	app.GET("/nav", a.Nav)

	ch := NewCatalogHandler()
	app.GET("/schools", ch.Schools)
	app.GET("/schools/:id", ch.School)

	secured := app.Group("")
	secured.Use(middlewares.RequireSession())
	{
		secured.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/role-selection") })
		secured.GET("/role-selection", a.RoleSelection)

		secured.POST("/cart/items", ch.AddToCart)
		co := NewCheckoutHandler(sink)
		secured.GET("/cart", co.Cart)
		secured.DELETE("/cart/items/:id", co.RemoveItem)
		secured.POST("/cart/checkout", co.Checkout)
		secured.GET("/orders", co.Orders)

		vh := NewVendorHandler(sink)
		secured.GET("/vendor/onboard", vh.OnboardPage)
		secured.POST("/vendor/onboard", vh.Onboard)
		secured.GET("/vendor/dashboard", vh.Dashboard)
		secured.POST("/vendor/listings", vh.CreateListing)

		ah := NewAdminHandler(sink)
		admin := secured.Group("/admin")
		admin.Use(middlewares.RequireRole(domain.RoleSchoolAdmin, domain.RoleOps))
		admin.GET("", ah.Dashboard)
		admin.POST("/vendors/:id/approve", ah.Approve)
		admin.POST("/vendors/:id/reject", ah.Reject)
	}
}
