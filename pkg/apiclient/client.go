// Package apiclient is the single configured sender for calls to the marketplace REST API.
// It attaches the session's bearer token, decodes JSON bodies and maps failures to
// AuthError / APIError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/hey-granth/StandardStitch/pkg/apiclient"

// TokenSource yields the current access token; an empty token means anonymous.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	tokens  TokenSource
	retry   retryPolicy
	tracer  trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds each attempt. It is applied to a copy of the HTTP client,
// whichever order the options come in.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetry bounds automatic retries of idempotent calls. max == 0 disables them.
func WithRetry(max uint64, initial time.Duration) Option {
	return func(c *Client) { c.retry = retryPolicy{max: max, initial: initial} }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: 10 * time.Second},
		retry:  retryPolicy{max: 2, initial: 200 * time.Millisecond},
		tracer: otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(c)
	}
	h := *c.http
	if c.timeout > 0 {
		h.Timeout = c.timeout
	}
	c.http = &h
	return c
}

// WithTokens returns a copy of c that authenticates with ts. The transport is shared.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

type RequestOption func(*request)

type request struct {
	idempotencyKey string
}

// WithIdempotencyKey sets the Idempotency-Key header. The same key is sent on every
// automatic retry of the call, which is also what makes a POST retryable.
func WithIdempotencyKey(key string) RequestOption {
	return func(r *request) { r.idempotencyKey = key }
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends one logical call, retrying per the client's policy, and decodes a 2xx body into out.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var r request
	for _, o := range opts {
		o(&r)
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = b
	}

	var data []byte
	send := func() error {
		d, err := c.send(ctx, method, path, payload, r)
		if err != nil {
			return err
		}
		data = d
		return nil
	}

	var err error
	if c.retry.allows(method, r) {
		err = c.retry.run(ctx, method, path, send)
	} else {
		err = send()
	}
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, r request) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", r.idempotencyKey)
	}
	if c.tokens != nil {
		tok, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTokens, err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	res, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return data, nil
	case res.StatusCode == http.StatusUnauthorized:
		span.SetStatus(codes.Error, "unauthorized")
		return nil, &AuthError{Method: method, Path: path, Body: data}
	default:
		span.SetStatus(codes.Error, http.StatusText(res.StatusCode))
		return nil, &APIError{Method: method, Path: path, Status: res.StatusCode, Body: data}
	}
}
