package apiclient

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type retryPolicy struct {
	max     uint64
	initial time.Duration
}

// allows reports whether a call may be repeated automatically: GETs always,
// POSTs only when they carry an idempotency key.
func (p retryPolicy) allows(method string, r request) bool {
	if p.max == 0 {
		return false
	}
	switch method {
	case http.MethodGet:
		return true
	case http.MethodPost:
		return r.idempotencyKey != ""
	default:
		return false
	}
}

func (p retryPolicy) run(ctx context.Context, method, path string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initial
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !transient(ctx, err) {
			return backoff.Permanent(err)
		}
		log.Printf("[apiclient] %s %s attempt %d: %v", method, path, attempt, err)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, p.max), ctx))
}

// transient errors are transport failures, 429 and 5xx.
func transient(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, ErrTokens) {
		return false
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return false
	}
	var pe *APIError
	if errors.As(err, &pe) {
		return pe.Status == http.StatusTooManyRequests || pe.Status >= 500
	}
	return true
}
