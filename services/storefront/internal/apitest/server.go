// Package apitest runs an in-memory stand-in for the marketplace REST API on an
// httptest server. It keeps just enough state for storefront tests: users and
// tokens, vendor profiles, schools and catalogs, listings, carts and orders.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
)

type failure struct {
	status int
	body   string
}

type hold struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]*domain.User // by id
	passwords map[string]string       // email -> password
	access    map[string]string       // access token -> user id
	refresh   map[string]string       // refresh token -> user id
	vendors   map[string]*domain.Vendor
	owners    map[string]string // vendor id -> user id
	schools   []domain.School
	catalog   map[string][]domain.UniformSpec
	listings  map[string]domain.Listing // by id
	byKey     map[string]string         // idempotency key -> listing id
	sessions  map[string]domain.CheckoutSession
	carts     map[string]*domain.Cart // by user id
	orders    map[string][]domain.Order
	calls     map[string]int
	failures  map[string]failure
	holds     map[string]*hold
	keys      []string // idempotency keys seen on listing creation
}

func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		users:     map[string]*domain.User{},
		passwords: map[string]string{},
		access:    map[string]string{},
		refresh:   map[string]string{},
		vendors:   map[string]*domain.Vendor{},
		owners:    map[string]string{},
		catalog:   map[string][]domain.UniformSpec{},
		listings:  map[string]domain.Listing{},
		byKey:     map[string]string{},
		sessions:  map[string]domain.CheckoutSession{},
		carts:     map[string]*domain.Cart{},
		orders:    map[string][]domain.Order{},
		calls:     map[string]int{},
		failures:  map[string]failure{},
		holds:     map[string]*hold{},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// AddUser registers a user that can log in with password and is already
// authenticated by access / refresh when those are non-empty.
func (s *Server) AddUser(u domain.User, password, access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := u
	s.users[u.ID] = &cp
	s.passwords[u.Email] = password
	if access != "" {
		s.access[access] = u.ID
	}
	if refresh != "" {
		s.refresh[refresh] = u.ID
	}
}

// SetVendor attaches a vendor profile to a user.
func (s *Server) SetVendor(userID string, v domain.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := v
	s.vendors[userID] = &cp
	s.owners[v.ID] = userID
}

func (s *Server) Vendor(userID string) *domain.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vendors[userID]
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// AddSchool registers a school with its catalog. Listings embedded in specs
// become addable to carts.
func (s *Server) AddSchool(sc domain.School, specs ...domain.UniformSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schools = append(s.schools, sc)
	s.catalog[sc.ID] = specs
	for _, sp := range specs {
		for _, l := range sp.Listings {
			s.listings[l.ID] = l
		}
	}
}

// AddListing registers a vendor listing directly.
func (s *Server) AddListing(vendorID string, l domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.VendorName = vendorID
	s.listings[l.ID] = l
}

// SetCart replaces a user's cart items. The total is recomputed server side.
func (s *Server) SetCart(userID, cartID string, items ...domain.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &domain.Cart{ID: cartID, User: userID, Items: items}
	s.carts[userID] = c
	recompute(c)
}

func (s *Server) Orders(userID string) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Order(nil), s.orders[userID]...)
}

// ListingCount returns how many listings a vendor owns.
func (s *Server) ListingCount(vendorID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.listings {
		if l.VendorName == vendorID {
			n++
		}
	}
	return n
}

// IdempotencyKeys returns the keys sent to listing creation, in order.
func (s *Server) IdempotencyKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

// Calls counts requests by "METHOD /path".
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// TotalCalls counts every request served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// Fail makes every request to "METHOD /path" answer status with body.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

func (s *Server) Heal(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

// Hold parks every request to "METHOD /path" until release is called or the
// caller gives up. entered is closed when the first such request arrives.
func (s *Server) Hold(method, path string) (entered <-chan struct{}, release func()) {
	h := &hold{entered: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.holds[method+" "+path] = h
	s.mu.Unlock()
	var once sync.Once
	return h.entered, func() { once.Do(func() { close(h.release) }) }
}

func (s *Server) routes() http.Handler {
	r := gin.New()
	r.Use(s.record)

	r.POST("/auth/login", s.login)
	r.POST("/auth/signup", s.signup)
	r.POST("/auth/refresh", s.refreshToken)

	authed := r.Group("")
	authed.Use(s.bearer)
	authed.GET("/auth/me", s.me)

	authed.GET("/vendors/vendors/me", s.vendorMe)
	authed.GET("/vendors/vendors/", s.vendorList)
	authed.POST("/vendors/vendors/:id/approve", s.vendorDecision(domain.VendorApproved))
	authed.POST("/vendors/vendors/:id/reject", s.vendorDecision(domain.VendorRejected))
	authed.GET("/vendors/vendors/:id/listings", s.vendorListings)
	authed.POST("/vendors/onboard", s.onboard)
	authed.POST("/vendors/listings", s.createListing)

	r.GET("/schools/schools/", s.schoolList)
	r.GET("/schools/schools/:id", s.schoolGet)
	r.GET("/catalog/schools/:id/catalog", s.schoolCatalog)

	authed.GET("/checkout/cart", s.cart)
	authed.POST("/checkout/cart/items", s.addItem)
	authed.DELETE("/checkout/cart/items/:id", s.removeItem)
	authed.POST("/checkout/checkout/session", s.checkoutSession)
	authed.GET("/checkout/orders", s.orderList)
	return r
}

func (s *Server) record(c *gin.Context) {
	key := c.Request.Method + " " + c.Request.URL.Path
	s.mu.Lock()
	s.calls[key]++
	f, failing := s.failures[key]
	h := s.holds[key]
	s.mu.Unlock()
	if h != nil {
		h.once.Do(func() { close(h.entered) })
		select {
		case <-h.release:
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	if failing {
		c.Data(f.status, "application/json", []byte(f.body))
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) bearer(c *gin.Context) {
	h := c.GetHeader("Authorization")
	tok := strings.TrimPrefix(h, "Bearer ")
	s.mu.Lock()
	uid, ok := s.access[tok]
	s.mu.Unlock()
	if !strings.HasPrefix(h, "Bearer ") || !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
		return
	}
	c.Set("uid", uid)
	c.Next()
}

func (s *Server) issue(uid string) domain.AuthResponse {
	access, refresh := "a-"+uuid.NewString(), "r-"+uuid.NewString()
	s.access[access] = uid
	s.refresh[refresh] = uid
	return domain.AuthResponse{Access: access, Refresh: refresh, User: *s.users[uid]}
}

func (s *Server) login(c *gin.Context) {
	var in struct{ Email, Password string }
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pw, ok := s.passwords[in.Email]
	if !ok || pw != in.Password {
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Invalid credentials"}})
		return
	}
	for id, u := range s.users {
		if u.Email == in.Email {
			c.JSON(http.StatusOK, s.issue(id))
			return
		}
	}
}

func (s *Server) signup(c *gin.Context) {
	var in struct{ Email, Password, Phone string }
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.passwords[in.Email]; taken {
		c.JSON(http.StatusBadRequest, gin.H{"email": []string{"Email already exists"}})
		return
	}
	if len(in.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"password": []string{"Ensure this field has at least 8 characters."}})
		return
	}
	u := &domain.User{ID: uuid.NewString(), Email: in.Email, Phone: in.Phone, Role: domain.RoleParent, IsActive: true}
	s.users[u.ID] = u
	s.passwords[in.Email] = in.Password
	c.JSON(http.StatusCreated, s.issue(u.ID))
}

func (s *Server) refreshToken(c *gin.Context) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	_ = c.ShouldBindJSON(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.refresh[in.Refresh]
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	access := "a-" + uuid.NewString()
	s.access[access] = uid
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (s *Server) me(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.users[c.GetString("uid")])
}

func (s *Server) vendorMe(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vendors[c.GetString("uid")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) vendorList(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		out = append(out, *v)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) isAdmin(c *gin.Context) bool {
	u := s.users[c.GetString("uid")]
	return u != nil && u.Role.IsAdmin()
}

func (s *Server) vendorDecision(to domain.VendorStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.isAdmin(c) {
			c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
			return
		}
		owner, ok := s.owners[c.Param("id")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		s.vendors[owner].Status = to
		c.JSON(http.StatusOK, s.vendors[owner])
	}
}

func (s *Server) vendorListings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Listing{}
	for _, l := range s.listings {
		if l.VendorName == c.Param("id") {
			out = append(out, l)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) onboard(c *gin.Context) {
	var in domain.OnboardForm
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := c.GetString("uid")
	if _, exists := s.vendors[uid]; exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vendor profile already exists"})
		return
	}
	if in.GSTNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"gst_number": []string{"This field is required."}})
		return
	}
	v := &domain.Vendor{
		ID: uuid.NewString(), OfficialName: in.OfficialName, GSTNumber: in.GSTNumber,
		Email: in.Email, Phone: in.Phone, City: in.City, Status: domain.VendorPending, IsActive: true,
	}
	s.vendors[uid] = v
	s.owners[v.ID] = uid
	c.JSON(http.StatusCreated, v)
}

func (s *Server) createListing(c *gin.Context) {
	key := c.GetHeader("Idempotency-Key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key header is required"})
		return
	}
	var in domain.ListingDraft
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	if id, seen := s.byKey[key]; seen {
		c.JSON(http.StatusOK, s.listings[id])
		return
	}
	v := s.vendors[c.GetString("uid")]
	if v == nil || v.ID != in.VendorID || v.Status != domain.VendorApproved {
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Vendor must be approved for this school"}})
		return
	}
	l := domain.Listing{
		ID: uuid.NewString(), VendorName: v.ID, SKU: in.SKU, BasePrice: in.BasePrice,
		Price: in.BasePrice, MRP: in.MRP, LeadTimeDays: in.LeadTimeDays, Enabled: in.Enabled,
	}
	s.listings[l.ID] = l
	s.byKey[key] = l.ID
	c.JSON(http.StatusCreated, l)
}

func (s *Server) schoolList(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, append([]domain.School{}, s.schools...))
}

func (s *Server) schoolGet(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.schools {
		if sc.ID == c.Param("id") {
			c.JSON(http.StatusOK, sc)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func (s *Server) schoolCatalog(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	specs, ok := s.catalog[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, specs)
}

func (s *Server) userCart(uid string) *domain.Cart {
	cart, ok := s.carts[uid]
	if !ok {
		cart = &domain.Cart{ID: uuid.NewString(), User: uid, Items: []domain.CartItem{}}
		s.carts[uid] = cart
	}
	return cart
}

func (s *Server) cart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.userCart(c.GetString("uid")))
}

func (s *Server) addItem(c *gin.Context) {
	var in struct {
		Listing string `json:"listing"`
		Qty     int    `json:"qty"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.Qty < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"qty": []string{"Quantity must be at least 1"}})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[in.Listing]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	cart := s.userCart(c.GetString("uid"))
	for i := range cart.Items {
		if cart.Items[i].Listing == l.ID {
			cart.Items[i].Qty = in.Qty
			recompute(cart)
			c.JSON(http.StatusOK, cart.Items[i])
			return
		}
	}
	item := domain.CartItem{
		ID: uuid.NewString(), Listing: l.ID, ListingSKU: l.SKU, ListingPrice: l.Price,
		VendorName: l.VendorName, Qty: in.Qty,
	}
	cart.Items = append(cart.Items, item)
	recompute(cart)
	c.JSON(http.StatusCreated, item)
}

func (s *Server) removeItem(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.userCart(c.GetString("uid"))
	for i, it := range cart.Items {
		if it.ID == c.Param("id") {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			recompute(cart)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func (s *Server) checkoutSession(c *gin.Context) {
	key := c.GetHeader("Idempotency-Key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key header is required"})
		return
	}
	var in struct {
		CartID string `json:"cart_id"`
	}
	_ = c.ShouldBindJSON(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, seen := s.sessions[key]; seen {
		c.JSON(http.StatusOK, cs)
		return
	}
	uid := c.GetString("uid")
	cart := s.userCart(uid)
	if cart.ID != in.CartID {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if len(cart.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}
	cs := domain.CheckoutSession{
		PaymentID: uuid.NewString(), PaymentToken: "mock_pi_" + key,
		Amount: cart.TotalAmount, Status: "pending",
	}
	s.sessions[key] = cs
	order := domain.Order{ID: uuid.NewString(), User: uid, TotalAmount: cart.TotalAmount, Status: domain.OrderPending}
	for _, it := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID: uuid.NewString(), Listing: it.Listing, Qty: it.Qty, UnitPrice: it.ListingPrice,
			Subtotal: it.ListingPrice.Mul(decimal.NewFromInt(int64(it.Qty))),
		})
	}
	s.orders[uid] = append(s.orders[uid], order)
	cart.Items = []domain.CartItem{}
	recompute(cart)
	c.JSON(http.StatusCreated, cs)
}

func (s *Server) orderList(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.Order{}, s.orders[c.GetString("uid")]...)
	c.JSON(http.StatusOK, out)
}

func recompute(c *domain.Cart) {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.ListingPrice.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	c.TotalAmount = total
}
