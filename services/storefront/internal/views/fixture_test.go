package views

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/pkg/events"
	"github.com/hey-granth/StandardStitch/pkg/tokenstore"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/apitest"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/clients"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

type fixture struct {
	api   *apitest.Server
	store *tokenstore.Memory
	sess  *session.Session
	sink  *events.Recorder
}

func newFixture(t *testing.T, opts ...apiclient.Option) *fixture {
	t.Helper()
	api := apitest.New()
	t.Cleanup(api.Close)
	store := tokenstore.NewMemory()
	b := tokenstore.Bind(store, "sid-1")
	c := apiclient.New(api.URL, append([]apiclient.Option{apiclient.WithRetry(0, 0)}, opts...)...).WithTokens(b)
	return &fixture{api: api, store: store, sess: session.New("sid-1", b, clients.New(c)), sink: &events.Recorder{}}
}

// signIn registers u with the fake API and restores the session from its token.
func (f *fixture) signIn(t *testing.T, u domain.User) {
	t.Helper()
	tok := "tok-" + u.ID
	f.api.AddUser(u, "pw-"+u.ID, tok, "")
	require.NoError(t, f.store.Save(context.Background(), "sid-1", tokenstore.Tokens{Access: tok}))
	require.NoError(t, f.sess.CheckAuth(context.Background()))
	require.Equal(t, session.Authenticated, f.sess.Snapshot().State)
}
