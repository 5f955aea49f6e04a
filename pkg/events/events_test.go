package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct{ calls int }

func (f *failingSink) PublishJSON(context.Context, string, any) error {
	f.calls++
	return errors.New("channel closed")
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		key  string
		body string
		want string
	}{
		{RKCheckoutStarted, `{"user_id":"u1","cart_id":"c1","payment_id":"p1","amount":"998.00","items":2}`,
			"user u1 started checkout of cart c1: 2 items, 998.00 (payment=p1)"},
		{RKListingCreated, `{"vendor_id":"v1","listing_id":"l1","sku":"SHIRT-32"}`, "vendor v1 listed SHIRT-32 (listing=l1)"},
		{RKVendorOnboarded, `{"vendor_id":"v1","user_id":"u1","city":"Pune"}`, "user u1 onboarded vendor v1 in Pune"},
		{RKVendorApproved, `{"vendor_id":"v1","actor_id":"a1"}`, "a1 approved vendor v1"},
		{RKVendorRejected, `{"vendor_id":"v1","actor_id":"a1"}`, "a1 rejected vendor v1"},
		{RKSessionLogin, `{"user_id":"u1","role":"parent"}`, "user u1 signed in as parent"},
		{RKSessionLogout, `{"user_id":"u1"}`, "user u1 signed out"},
		{"storefront.unknown", `{"x":1}`, `{"x":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			got, err := Describe(tc.key, []byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDescribeRejectsBadPayload(t *testing.T) {
	_, err := Describe(RKListingCreated, []byte(`not json`))
	assert.Error(t, err)
}

func TestEmit(t *testing.T) {
	ctx := context.Background()
	Emit(ctx, nil, RKSessionLogin, SessionChanged{UserID: "u1"})

	f := &failingSink{}
	Emit(ctx, f, RKSessionLogin, SessionChanged{UserID: "u1"})
	assert.Equal(t, 1, f.calls)

	r := &Recorder{}
	Emit(ctx, r, RKSessionLogin, SessionChanged{UserID: "u1", Role: "vendor"})
	Emit(ctx, r, RKSessionLogout, SessionChanged{UserID: "u1"})
	assert.Equal(t, []string{RKSessionLogin, RKSessionLogout}, r.Keys())

	got, ok := r.Last(RKSessionLogin)
	require.True(t, ok)
	ev, err := Decode[SessionChanged](got.Body)
	require.NoError(t, err)
	assert.Equal(t, "vendor", ev.Role)

	_, ok = r.Last(RKCheckoutStarted)
	assert.False(t, ok)
}

func TestConsole(t *testing.T) {
	assert.NoError(t, NewConsole().PublishJSON(context.Background(), RKVendorApproved, VendorDecision{VendorID: "v1", ActorID: "a1"}))
}
