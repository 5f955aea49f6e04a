package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/pkg/tokenstore"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/apitest"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/clients"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
)

func newSession(t *testing.T, api *apitest.Server, store tokenstore.Store, sid string) *Session {
	t.Helper()
	b := tokenstore.Bind(store, sid)
	c := apiclient.New(api.URL, apiclient.WithRetry(0, 0)).WithTokens(b)
	return New(sid, b, clients.New(c))
}

func fakeAPI(t *testing.T) *apitest.Server {
	t.Helper()
	api := apitest.New()
	t.Cleanup(api.Close)
	return api
}

func expiredJWT(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("not-our-key"))
	require.NoError(t, err)
	return tok
}

func TestLoginThenVendorLoad(t *testing.T) {
	api := fakeAPI(t)
	api.AddUser(domain.User{ID: "u1", Email: "a@b.com", Role: domain.RoleVendor}, "secret123", "", "")
	api.SetVendor("u1", domain.Vendor{ID: "v1", Status: domain.VendorApproved})
	store := tokenstore.NewMemory()
	s := newSession(t, api, store, "sid-1")
	ctx := context.Background()

	res, err := s.API().Auth.Login(ctx, clients.Credentials{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, res))

	snap := s.Snapshot()
	assert.Equal(t, Authenticated, snap.State)
	require.NotNil(t, snap.User)
	assert.Equal(t, "u1", snap.User.ID)

	s.Wait()
	snap = s.Snapshot()
	require.NotNil(t, snap.Vendor)
	assert.Equal(t, "v1", snap.Vendor.ID)
	assert.Equal(t, 1, api.Calls(http.MethodGet, "/vendors/vendors/me"))

	tok, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, res.Access, tok.Access)
	assert.Equal(t, res.Refresh, tok.Refresh)
}

func TestLogoutClearsEverythingWithoutCallingAPI(t *testing.T) {
	api := fakeAPI(t)
	api.AddUser(domain.User{ID: "u1", Email: "a@b.com", Role: domain.RoleVendor}, "secret123", "", "")
	api.SetVendor("u1", domain.Vendor{ID: "v1", Status: domain.VendorApproved})
	store := tokenstore.NewMemory()
	s := newSession(t, api, store, "sid-1")
	ctx := context.Background()

	res, err := s.API().Auth.Login(ctx, clients.Credentials{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, res))
	s.Wait()

	before := api.TotalCalls()
	require.NoError(t, s.Logout(ctx))

	snap := s.Snapshot()
	assert.Equal(t, Anonymous, snap.State)
	assert.Nil(t, snap.User)
	assert.Nil(t, snap.Vendor)
	tok, _ := store.Load(ctx, "sid-1")
	assert.True(t, tok.Empty())
	assert.Empty(t, tok.Refresh)
	assert.Equal(t, before, api.TotalCalls())
}

func TestInitWithoutTokenIsAnonymous(t *testing.T) {
	api := fakeAPI(t)
	s := newSession(t, api, tokenstore.NewMemory(), "sid-1")

	require.NoError(t, s.EnsureInit(context.Background()))
	assert.Equal(t, Anonymous, s.Snapshot().State)
	assert.Zero(t, api.TotalCalls())
}

func TestInitRestoresUserFromToken(t *testing.T) {
	api := fakeAPI(t)
	api.AddUser(domain.User{ID: "u1", Email: "a@b.com", Role: domain.RoleParent}, "pw", "tok-1", "")
	store := tokenstore.NewMemory()
	require.NoError(t, store.Save(context.Background(), "sid-1", tokenstore.Tokens{Access: "tok-1"}))
	s := newSession(t, api, store, "sid-1")

	require.NoError(t, s.EnsureInit(context.Background()))
	require.NoError(t, s.EnsureInit(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, Authenticated, snap.State)
	assert.Equal(t, "u1", snap.User.ID)
	assert.Nil(t, snap.Vendor)
	assert.Equal(t, 1, api.Calls(http.MethodGet, "/auth/me"))
}

func TestInitWithRejectedTokenClearsStorage(t *testing.T) {
	api := fakeAPI(t)
	store := tokenstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "sid-1", tokenstore.Tokens{Access: "garbage", Refresh: "r"}))
	s := newSession(t, api, store, "sid-1")

	require.NoError(t, s.EnsureInit(ctx))

	assert.Equal(t, Anonymous, s.Snapshot().State)
	tok, _ := store.Load(ctx, "sid-1")
	assert.True(t, tok.Empty())
	assert.Equal(t, 1, api.Calls(http.MethodGet, "/auth/me"))
}

func TestInitRefreshesExpiredAccessToken(t *testing.T) {
	api := fakeAPI(t)
	api.AddUser(domain.User{ID: "u1", Email: "a@b.com", Role: domain.RoleParent}, "pw", "", "r-1")
	store := tokenstore.NewMemory()
	ctx := context.Background()
	stale := expiredJWT(t)
	require.NoError(t, store.Save(ctx, "sid-1", tokenstore.Tokens{Access: stale, Refresh: "r-1"}))
	s := newSession(t, api, store, "sid-1")

	require.NoError(t, s.EnsureInit(ctx))

	assert.Equal(t, Authenticated, s.Snapshot().State)
	assert.Equal(t, 1, api.Calls(http.MethodPost, "/auth/refresh"))
	tok, _ := store.Load(ctx, "sid-1")
	assert.NotEqual(t, stale, tok.Access)
	assert.Equal(t, "r-1", tok.Refresh)
}

func TestInitWithUnusableRefreshSignsOut(t *testing.T) {
	api := fakeAPI(t)
	store := tokenstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "sid-1", tokenstore.Tokens{Access: expiredJWT(t), Refresh: "revoked"}))
	s := newSession(t, api, store, "sid-1")

	require.NoError(t, s.EnsureInit(ctx))

	assert.Equal(t, Anonymous, s.Snapshot().State)
	assert.Zero(t, api.Calls(http.MethodGet, "/auth/me"))
	tok, _ := store.Load(ctx, "sid-1")
	assert.True(t, tok.Empty())
}

func TestInterruptedInitIsRetried(t *testing.T) {
	api := fakeAPI(t)
	api.AddUser(domain.User{ID: "u1", Email: "a@b.com"}, "pw", "tok-1", "")
	store := tokenstore.NewMemory()
	require.NoError(t, store.Save(context.Background(), "sid-1", tokenstore.Tokens{Access: "tok-1"}))
	s := newSession(t, api, store, "sid-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, s.EnsureInit(ctx))
	assert.Equal(t, Uninitialized, s.Snapshot().State)
	tok, _ := store.Load(context.Background(), "sid-1")
	assert.Equal(t, "tok-1", tok.Access)

	require.NoError(t, s.EnsureInit(context.Background()))
	assert.Equal(t, Authenticated, s.Snapshot().State)
}

func TestRefreshVendorProfile(t *testing.T) {
	api := fakeAPI(t)
	api.AddUser(domain.User{ID: "u1", Email: "a@b.com", Role: domain.RoleParent}, "pw", "tok-1", "")
	store := tokenstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "sid-1", tokenstore.Tokens{Access: "tok-1"}))
	s := newSession(t, api, store, "sid-1")
	require.NoError(t, s.EnsureInit(ctx))

	api.SetVendor("u1", domain.Vendor{ID: "v1", Status: domain.VendorPending})
	v, err := s.RefreshVendorProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.VendorPending, v.Status)
	assert.Equal(t, domain.VendorPending, s.Snapshot().Vendor.Status)

	api.Fail(http.MethodGet, "/vendors/vendors/me", http.StatusInternalServerError, `{}`)
	_, err = s.RefreshVendorProfile(ctx)
	require.Error(t, err)
	assert.Nil(t, s.Snapshot().Vendor)
}

func TestStaleVendorResultIsDiscarded(t *testing.T) {
	api := fakeAPI(t)
	api.AddUser(domain.User{ID: "u1", Email: "a@b.com", Role: domain.RoleVendor}, "secret123", "", "")
	api.SetVendor("u1", domain.Vendor{ID: "v1", Status: domain.VendorApproved})
	s := newSession(t, api, tokenstore.NewMemory(), "sid-1")
	ctx := context.Background()

	res, err := s.API().Auth.Login(ctx, clients.Credentials{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, res))
	s.Wait()

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	require.NoError(t, s.Logout(ctx))
	require.NoError(t, s.Login(ctx, res))
	s.Wait()
	s.mu.Lock()
	s.vendor = nil
	s.mu.Unlock()

	_, err = s.refreshVendor(ctx, gen)
	require.NoError(t, err)
	assert.Nil(t, s.Snapshot().Vendor)
}

func TestHandleAuthError(t *testing.T) {
	api := fakeAPI(t)
	store := tokenstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "sid-1", tokenstore.Tokens{Access: "x"}))
	s := newSession(t, api, store, "sid-1")

	assert.False(t, s.HandleAuthError(ctx, errors.New("boom")))
	tok, _ := store.Load(ctx, "sid-1")
	assert.False(t, tok.Empty())

	assert.True(t, s.HandleAuthError(ctx, &apiclient.AuthError{Method: "GET", Path: "/checkout/cart"}))
	tok, _ = store.Load(ctx, "sid-1")
	assert.True(t, tok.Empty())
	assert.Equal(t, Anonymous, s.Snapshot().State)
}

func TestLoginRejectsEmptyResponse(t *testing.T) {
	s := newSession(t, fakeAPI(t), tokenstore.NewMemory(), "sid-1")
	require.Error(t, s.Login(context.Background(), &domain.AuthResponse{}))
	assert.Equal(t, Uninitialized, s.Snapshot().State)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New("sid-1", tokenstore.Bind(tokenstore.NewMemory(), "sid-1"), nil)
	s.user = &domain.User{ID: "u1", Role: domain.RoleParent}
	snap := s.Snapshot()
	snap.User.Role = domain.RoleOps
	assert.Equal(t, domain.RoleParent, s.Snapshot().User.Role)
	assert.Equal(t, domain.RoleParent, s.Snapshot().Role())
}

func TestLogoutDuringRefreshStaysLoggedOut(t *testing.T) {
	api := fakeAPI(t)
	api.AddUser(domain.User{ID: "u1", Email: "a@b.com", Role: domain.RoleParent}, "pw", "", "r-1")
	store := tokenstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "sid-1", tokenstore.Tokens{Access: expiredJWT(t), Refresh: "r-1"}))
	s := newSession(t, api, store, "sid-1")

	entered, release := api.Hold(http.MethodPost, "/auth/refresh")
	t.Cleanup(release)
	done := make(chan error, 1)
	go func() { done <- s.EnsureInit(ctx) }()

	<-entered
	require.NoError(t, s.Logout(ctx))
	release()
	require.NoError(t, <-done)

	tok, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.True(t, tok.Empty())
	assert.Empty(t, tok.Refresh)
	assert.Equal(t, Anonymous, s.Snapshot().State)
	assert.Zero(t, api.Calls(http.MethodGet, "/auth/me"))
}

func TestLoginDuringRefreshKeepsNewTokens(t *testing.T) {
	api := fakeAPI(t)
	api.AddUser(domain.User{ID: "u1", Email: "a@b.com", Role: domain.RoleParent}, "pw", "", "r-1")
	api.AddUser(domain.User{ID: "u2", Email: "c@d.com", Role: domain.RoleParent}, "secret123", "", "")
	store := tokenstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "sid-1", tokenstore.Tokens{Access: expiredJWT(t), Refresh: "r-1"}))
	s := newSession(t, api, store, "sid-1")

	entered, release := api.Hold(http.MethodPost, "/auth/refresh")
	t.Cleanup(release)
	done := make(chan error, 1)
	go func() { done <- s.EnsureInit(ctx) }()

	<-entered
	res, err := s.API().Auth.Login(ctx, clients.Credentials{Email: "c@d.com", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, res))
	release()
	require.NoError(t, <-done)
	s.Wait()

	tok, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, res.Access, tok.Access)
	assert.Equal(t, res.Refresh, tok.Refresh)
	assert.Equal(t, "u2", s.Snapshot().User.ID)
}

func TestWaitAlongsideLogins(t *testing.T) {
	api := fakeAPI(t)
	api.AddUser(domain.User{ID: "u1", Email: "a@b.com", Role: domain.RoleVendor}, "secret123", "", "")
	api.SetVendor("u1", domain.Vendor{ID: "v1", Status: domain.VendorApproved})
	s := newSession(t, api, tokenstore.NewMemory(), "sid-1")
	ctx := context.Background()

	res, err := s.API().Auth.Login(ctx, clients.Credentials{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Login(ctx, res))
		}()
		go func() {
			defer wg.Done()
			s.Wait()
		}()
	}
	wg.Wait()
	s.Wait()

	snap := s.Snapshot()
	assert.Equal(t, Authenticated, snap.State)
	require.NotNil(t, snap.Vendor)
	assert.Equal(t, "v1", snap.Vendor.ID)
}

func TestWaitWithoutLoginReturns(t *testing.T) {
	s := newSession(t, fakeAPI(t), tokenstore.NewMemory(), "sid-1")
	s.Wait()
}
