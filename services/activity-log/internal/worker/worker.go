// Package worker tails the storefront's activity exchange and writes each
// event to the log as a readable line.
package worker

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hey-granth/StandardStitch/pkg/events"
)

// Source yields deliveries; *mq.Consumer is the real one.
type Source interface {
	Deliveries(ctx context.Context) (<-chan amqp.Delivery, error)
}

type Worker struct {
	src  Source
	logf func(format string, args ...any)
}

func New(src Source) *Worker {
	return &Worker{src: src, logf: log.Printf}
}

// Run consumes until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.src.Deliveries(ctx)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(d)
		}
	}
}

// handle logs one event. Payloads that do not decode are rejected without
// requeue, which dead-letters them when the queue has a DLX.
func (w *Worker) handle(d amqp.Delivery) {
	msg, err := events.Describe(d.RoutingKey, d.Body)
	if err != nil {
		w.logf("[activity] drop key=%s err=%v", d.RoutingKey, err)
		_ = d.Reject(false)
		return
	}
	w.logf("[activity] %s %s :: %s", d.Timestamp.Format("2006-01-02 15:04:05"), d.AppId, msg)
	_ = d.Ack(false)
}
