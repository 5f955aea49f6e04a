package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hey-granth/StandardStitch/pkg/events"
)

type acks struct {
	mu       sync.Mutex
	acked    []uint64
	rejected []uint64
}

func (a *acks) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *acks) Nack(tag uint64, _ bool, _ bool) error { return a.Reject(tag, false) }

func (a *acks) Reject(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rejected = append(a.rejected, tag)
	return nil
}

type chanSource chan amqp.Delivery

func (c chanSource) Deliveries(context.Context) (<-chan amqp.Delivery, error) { return c, nil }

func TestWorkerAcksKnownEventsAndRejectsGarbage(t *testing.T) {
	a := &acks{}
	src := make(chanSource, 3)
	src <- amqp.Delivery{Acknowledger: a, DeliveryTag: 1, RoutingKey: events.RKVendorApproved, AppId: "storefront",
		Body: []byte(`{"vendor_id":"v1","actor_id":"a1"}`)}
	src <- amqp.Delivery{Acknowledger: a, DeliveryTag: 2, RoutingKey: events.RKCheckoutStarted, Body: []byte(`{oops`)}
	src <- amqp.Delivery{Acknowledger: a, DeliveryTag: 3, RoutingKey: "storefront.other", Body: []byte(`{}`)}
	close(src)

	var lines []string
	w := New(src)
	w.logf = func(format string, args ...any) { lines = append(lines, fmt.Sprintf(format, args...)) }

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, []uint64{1, 3}, a.acked)
	assert.Equal(t, []uint64{2}, a.rejected)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "a1 approved vendor v1")
}

func TestWorkerStopsOnCancel(t *testing.T) {
	src := make(chanSource)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(src).Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
