// Package tokenstore persists the access/refresh token pair of a storefront session.
package tokenstore

import (
	"context"
	"sync"
)

// Fixed keys under which a session's tokens are stored.
const (
	KeyAccess  = "access_token"
	KeyRefresh = "refresh_token"
)

type Tokens struct {
	Access  string
	Refresh string
}

func (t Tokens) Empty() bool { return t.Access == "" }

// Store holds one token pair per session id. Save and Clear always touch both keys.
type Store interface {
	Load(ctx context.Context, sid string) (Tokens, error)
	Save(ctx context.Context, sid string, t Tokens) error
	Clear(ctx context.Context, sid string) error
}

type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]string)}
}

func (m *Memory) Load(_ context.Context, sid string) (Tokens, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	kv := m.data[sid]
	return Tokens{Access: kv[KeyAccess], Refresh: kv[KeyRefresh]}, nil
}

func (m *Memory) Save(_ context.Context, sid string, t Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sid] = map[string]string{KeyAccess: t.Access, KeyRefresh: t.Refresh}
	return nil
}

func (m *Memory) Clear(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sid)
	return nil
}

// Bound pins a Store to one session id. It also serves as the bearer token
// source for that session's API client.
type Bound struct {
	store Store
	sid   string
}

func Bind(s Store, sid string) *Bound { return &Bound{store: s, sid: sid} }

func (b *Bound) SessionID() string { return b.sid }

func (b *Bound) Load(ctx context.Context) (Tokens, error) { return b.store.Load(ctx, b.sid) }

func (b *Bound) Save(ctx context.Context, t Tokens) error { return b.store.Save(ctx, b.sid, t) }

func (b *Bound) Clear(ctx context.Context) error { return b.store.Clear(ctx, b.sid) }

func (b *Bound) AccessToken(ctx context.Context) (string, error) {
	t, err := b.Load(ctx)
	if err != nil {
		return "", err
	}
	return t.Access, nil
}
