package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/pkg/tokenstore"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/apitest"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/clients"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

const cookieName = "sf_session"

type env struct {
	api   *apitest.Server
	store *tokenstore.Memory
	reg   *session.Registry
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api := apitest.New()
	t.Cleanup(api.Close)
	store := tokenstore.NewMemory()
	base := apiclient.New(api.URL, apiclient.WithRetry(0, 0))
	reg := session.NewRegistry(func(id string) *session.Session {
		b := tokenstore.Bind(store, id)
		return session.New(id, b, clients.New(base.WithTokens(b)))
	})
	return &env{api: api, store: store, reg: reg}
}

func (e *env) router(protected ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Sessions(e.reg, CookieConfig{Name: cookieName, MaxAge: 3600}))
	handlers := append(protected, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/page", handlers...)
	r.POST("/page", handlers...)
	return r
}

func TestDecide(t *testing.T) {
	user := &domain.User{ID: "u1"}
	assert.Equal(t, Placeholder, Decide(session.Snapshot{State: session.Uninitialized}))
	assert.Equal(t, Placeholder, Decide(session.Snapshot{State: session.Loading, User: user}))
	assert.Equal(t, RedirectLogin, Decide(session.Snapshot{State: session.Anonymous}))
	assert.Equal(t, Allow, Decide(session.Snapshot{State: session.Authenticated, User: user}))
	assert.Equal(t, "redirect_login", RedirectLogin.String())
}

func TestSessionsIssuesCookie(t *testing.T) {
	e := newEnv(t)
	r := e.router()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/page", nil))
	require.Equal(t, http.StatusOK, w.Code)
	set := w.Header().Get("Set-Cookie")
	require.True(t, strings.HasPrefix(set, cookieName+"="))
	assert.Contains(t, set, "HttpOnly")
	assert.Equal(t, 1, e.reg.Len())

	sid := strings.TrimPrefix(strings.SplitN(set, ";", 2)[0], cookieName+"=")
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: sid})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
	assert.Equal(t, 1, e.reg.Len())

	req = httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "../../etc"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"))
	assert.Equal(t, 2, e.reg.Len())
}

func TestRequireSessionAnonymous(t *testing.T) {
	e := newEnv(t)
	r := e.router(RequireSession())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/page", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/page", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"login required","redirect":"/login"}`, w.Body.String())
}

func TestRequireSessionAuthenticated(t *testing.T) {
	e := newEnv(t)
	sid := "6f1c2b1e-4a54-4c55-9d2e-6a1f0f6f3b10"
	e.api.AddUser(domain.User{ID: "u1", Email: "p@b.com", Role: domain.RoleParent}, "pw", "tok-1", "")
	require.NoError(t, e.store.Save(context.Background(), sid, tokenstore.Tokens{Access: "tok-1"}))
	r := e.router(RequireSession())

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: sid})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRequireSessionWhileLoading(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sess := session.New("sid", tokenstore.Bind(tokenstore.NewMemory(), "sid"), nil)
	r := gin.New()
	r.GET("/page", func(c *gin.Context) { c.Set(sessionKey, sess) }, RequireSession(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/page", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"loading"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	e := newEnv(t)
	e.api.AddUser(domain.User{ID: "a1", Email: "ops@b.com", Role: domain.RoleOps}, "pw", "tok-ops", "")
	e.api.AddUser(domain.User{ID: "u1", Email: "p@b.com", Role: domain.RoleParent}, "pw", "tok-parent", "")
	ops, parent := "0d7f4a8e-1111-4c55-9d2e-6a1f0f6f3b10", "0d7f4a8e-2222-4c55-9d2e-6a1f0f6f3b10"
	require.NoError(t, e.store.Save(context.Background(), ops, tokenstore.Tokens{Access: "tok-ops"}))
	require.NoError(t, e.store.Save(context.Background(), parent, tokenstore.Tokens{Access: "tok-parent"}))
	r := e.router(RequireSession(), RequireRole(domain.RoleSchoolAdmin, domain.RoleOps))

	for sid, want := range map[string]int{ops: http.StatusOK, parent: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/page", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: sid})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, sid)
	}
}

func TestCSRFTokenWithoutProtection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CSRFToken())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("X-CSRF-Token"))
}
