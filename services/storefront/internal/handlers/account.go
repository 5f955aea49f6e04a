package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hey-granth/StandardStitch/pkg/events"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/middlewares"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/views"
)

type AccountHandler struct {
	sink events.Sink
}

func NewAccountHandler(sink events.Sink) *AccountHandler {
	return &AccountHandler{sink: sink}
}

// GET /login and GET /signup
func (h *AccountHandler) Page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := middlewares.SessionFrom(c).Snapshot()
		if snap.SignedIn() {
			c.Redirect(http.StatusFound, "/role-selection")
			return
		}
		c.JSON(http.StatusOK, gin.H{"page": name, "session": snap})
	}
}

// POST /login
func (h *AccountHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email"    binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	v := views.NewLogin(middlewares.SessionFrom(c), h.sink)
	v.Submit(c.Request.Context(), in.Email, in.Password)
	action(c, &v.Status, v)
}

// POST /signup
func (h *AccountHandler) Signup(c *gin.Context) {
	var in struct {
		Email    string `json:"email"    binding:"required"`
		Password string `json:"password" binding:"required"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	v := views.NewSignup(middlewares.SessionFrom(c), h.sink)
	v.Submit(c.Request.Context(), in.Email, in.Password, in.Phone)
	action(c, &v.Status, v)
}

// POST /logout
func (h *AccountHandler) Logout(c *gin.Context) {
	sess := middlewares.SessionFrom(c)
	snap := sess.Snapshot()
	if err := sess.Logout(c.Request.Context()); err != nil {
		log.Printf("[storefront] logout: %v", err)
	}
	if snap.User != nil {
		events.Emit(c.Request.Context(), h.sink, events.RKSessionLogout, events.SessionChanged{UserID: snap.User.ID})
	}
	c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
}

// GET /nav
func (h *AccountHandler) Nav(c *gin.Context) {
	snap := middlewares.SessionFrom(c).Snapshot()
	c.JSON(http.StatusOK, gin.H{"items": views.Navigation(snap), "session": snap})
}

// GET /role-selection
func (h *AccountHandler) RoleSelection(c *gin.Context) {
	sess := middlewares.SessionFrom(c)
	sess.Wait()
	v := views.NewRoleSelection(sess.Snapshot())
	page(c, &v.Status, v)
}
