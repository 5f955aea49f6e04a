// Package session holds the per-browser authorization state of the storefront:
// who is signed in, their vendor profile, and where their tokens live.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/pkg/auth"
	"github.com/hey-granth/StandardStitch/pkg/tokenstore"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/clients"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
)

type State string

const (
	Uninitialized State = "uninitialized"
	Loading       State = "loading"
	Authenticated State = "authenticated"
	Anonymous     State = "anonymous"
)

const (
	expiryLeeway  = 30 * time.Second
	vendorTimeout = 10 * time.Second
)

// Tokens is the persisted token pair of one session. *tokenstore.Bound satisfies it.
type Tokens interface {
	Load(ctx context.Context) (tokenstore.Tokens, error)
	Save(ctx context.Context, t tokenstore.Tokens) error
	Clear(ctx context.Context) error
}

// Snapshot is a point-in-time copy of a session; callers may keep it.
type Snapshot struct {
	State  State          `json:"state"`
	User   *domain.User   `json:"user,omitempty"`
	Vendor *domain.Vendor `json:"vendor,omitempty"`
}

func (s Snapshot) Settled() bool { return s.State == Authenticated || s.State == Anonymous }

func (s Snapshot) SignedIn() bool { return s.User != nil }

func (s Snapshot) Role() domain.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

type Session struct {
	id     string
	tokens Tokens
	api    *clients.Clients
	now    func() time.Time

	mu       sync.Mutex
	state    State
	user     *domain.User
	vendor   *domain.Vendor
	gen      uint64
	lastSeen time.Time
	loading  chan struct{} // closed when the latest background vendor load ends
}

func New(id string, tokens Tokens, api *clients.Clients) *Session {
	return &Session{id: id, tokens: tokens, api: api, now: time.Now, state: Uninitialized}
}

func (s *Session) ID() string { return s.id }

// API returns the endpoint clients authenticated as this session.
func (s *Session) API() *clients.Clients { return s.api }

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{State: s.state}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.vendor != nil {
		v := *s.vendor
		snap.Vendor = &v
	}
	return snap
}

// EnsureInit runs CheckAuth once for a fresh session. Concurrent callers after
// the first return immediately and observe the loading state.
func (s *Session) EnsureInit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Uninitialized {
		s.mu.Unlock()
		return nil
	}
	s.state = Loading
	gen := s.gen
	s.mu.Unlock()
	return s.checkAuth(ctx, gen)
}

// CheckAuth re-derives the signed-in user from the persisted tokens.
func (s *Session) CheckAuth(ctx context.Context) error {
	s.mu.Lock()
	s.state = Loading
	gen := s.gen
	s.mu.Unlock()
	return s.checkAuth(ctx, gen)
}

func (s *Session) checkAuth(ctx context.Context, gen uint64) error {
	tok, err := s.tokens.Load(ctx)
	if err != nil {
		s.settle(gen, Anonymous, nil, nil)
		return fmt.Errorf("load tokens: %w", err)
	}
	if tok.Empty() {
		s.settle(gen, Anonymous, nil, nil)
		return nil
	}

	if auth.Expired(tok.Access, s.now(), expiryLeeway) {
		if tok.Refresh == "" {
			return s.drop(ctx, gen)
		}
		access, rotated, err := s.api.Auth.Refresh(ctx, tok.Refresh)
		if err != nil {
			if interrupted(ctx, err) {
				return s.abandon(gen, err)
			}
			log.Printf("[session] %s refresh failed: %v", s.id, err)
			return s.drop(ctx, gen)
		}
		tok.Access = access
		if rotated != "" {
			tok.Refresh = rotated
		}
		current, err := s.saveIfCurrent(ctx, gen, tok)
		if !current {
			return nil
		}
		if err != nil {
			s.settle(gen, Anonymous, nil, nil)
			return fmt.Errorf("save refreshed tokens: %w", err)
		}
	}

	u, err := s.api.Auth.Me(ctx)
	if err != nil {
		if interrupted(ctx, err) {
			return s.abandon(gen, err)
		}
		log.Printf("[session] %s identity check failed: %v", s.id, err)
		return s.drop(ctx, gen)
	}

	v, err := s.api.Vendors.Me(ctx)
	if err != nil && !apiclient.IsNotFound(err) {
		log.Printf("[session] %s vendor profile: %v", s.id, err)
	}
	s.settle(gen, Authenticated, u, v)
	return nil
}

// saveIfCurrent persists tok unless generation gen has been superseded. Every
// token write runs under s.mu for the current generation.
func (s *Session) saveIfCurrent(ctx context.Context, gen uint64, tok tokenstore.Tokens) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false, nil
	}
	return true, s.tokens.Save(ctx, tok)
}

// drop clears persisted tokens and leaves the session anonymous.
func (s *Session) drop(ctx context.Context, gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil
	}
	s.state, s.user, s.vendor = Anonymous, nil, nil
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

// abandon puts an interrupted initialization back so the next request retries it.
func (s *Session) abandon(gen uint64, err error) error {
	s.mu.Lock()
	if s.gen == gen && s.state == Loading {
		s.state = Uninitialized
	}
	s.mu.Unlock()
	return err
}

// settle applies a result computed under generation gen. It reports false when
// a login or logout happened in between and the result was discarded.
func (s *Session) settle(gen uint64, st State, u *domain.User, v *domain.Vendor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.state, s.user, s.vendor = st, u, v
	return true
}

// Login stores the token pair from a successful login or signup, marks the
// session authenticated and loads the vendor profile in the background.
func (s *Session) Login(ctx context.Context, res *domain.AuthResponse) error {
	if res == nil || res.Access == "" {
		return errors.New("login response without access token")
	}
	u := res.User
	done := make(chan struct{})

	s.mu.Lock()
	if err := s.tokens.Save(ctx, tokenstore.Tokens{Access: res.Access, Refresh: res.Refresh}); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist tokens: %w", err)
	}
	s.gen++
	gen := s.gen
	s.state, s.user, s.vendor = Authenticated, &u, nil
	s.loading = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), vendorTimeout)
		defer cancel()
		_, _ = s.refreshVendor(bctx, gen)
	}()
	return nil
}

// Wait blocks until the vendor load started by the latest Login has finished.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.loading
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Logout forgets the user and vendor and clears the persisted tokens. It never
// calls the API.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state, s.user, s.vendor = Anonymous, nil, nil
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

// RefreshVendorProfile re-reads the caller's vendor profile. On failure the
// profile is cleared; a 404 simply means the user has none.
func (s *Session) RefreshVendorProfile(ctx context.Context) (*domain.Vendor, error) {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	return s.refreshVendor(ctx, gen)
}

func (s *Session) refreshVendor(ctx context.Context, gen uint64) (*domain.Vendor, error) {
	v, err := s.api.Vendors.Me(ctx)
	if err != nil {
		v = nil
		if !apiclient.IsNotFound(err) {
			log.Printf("[session] %s vendor profile: %v", s.id, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.user != nil {
		s.vendor = v
	}
	return v, err
}

// HandleAuthError logs the session out when err says the API rejected its token.
func (s *Session) HandleAuthError(ctx context.Context, err error) bool {
	if !apiclient.IsAuth(err) {
		return false
	}
	log.Printf("[session] %s token rejected, signing out: %v", s.id, err)
	if err := s.Logout(ctx); err != nil {
		log.Printf("[session] %s logout: %v", s.id, err)
	}
	return true
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
