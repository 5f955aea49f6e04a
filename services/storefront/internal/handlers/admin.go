package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hey-granth/StandardStitch/pkg/events"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/middlewares"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/views"
)

type AdminHandler struct {
	sink events.Sink
}

func NewAdminHandler(sink events.Sink) *AdminHandler {
	return &AdminHandler{sink: sink}
}

// GET /admin (school_admin/ops)
func (h *AdminHandler) Dashboard(c *gin.Context) {
	v := views.NewAdmin(middlewares.SessionFrom(c), h.sink)
	v.Load(c.Request.Context())
	page(c, &v.Status, v)
}

// POST /admin/vendors/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	v := views.NewAdmin(middlewares.SessionFrom(c), h.sink)
	v.Approve(c.Request.Context(), c.Param("id"))
	action(c, &v.Status, v)
}

// POST /admin/vendors/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	v := views.NewAdmin(middlewares.SessionFrom(c), h.sink)
	v.Reject(c.Request.Context(), c.Param("id"))
	action(c, &v.Status, v)
}
