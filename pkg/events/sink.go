package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Sink accepts activity events. *mq.Publisher is the production sink.
type Sink interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Emit publishes best-effort: failures are logged and a nil sink drops the event.
func Emit(ctx context.Context, s Sink, key string, v any) {
	if s == nil {
		return
	}
	if err := s.PublishJSON(ctx, key, v); err != nil {
		log.Printf("[events] publish %s: %v", key, err)
	}
}

// Console logs events instead of publishing them, for runs without RabbitMQ.
type Console struct{}

func NewConsole() *Console { return &Console{} }

func (c *Console) PublishJSON(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	msg, err := Describe(key, b)
	if err != nil {
		return err
	}
	log.Printf("[events] %s :: %s", key, msg)
	return nil
}

type Recorded struct {
	Key  string
	Body []byte
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

func (r *Recorder) PublishJSON(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	r.mu.Lock()
	r.events = append(r.events, Recorded{Key: key, Body: b})
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Key
	}
	return out
}

// Last returns the most recent event with key.
func (r *Recorder) Last(key string) (Recorded, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Key == key {
			return r.events[i], true
		}
	}
	return Recorded{}, false
}
