package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrTokens marks failures reading the session's access token.
var ErrTokens = errors.New("token source")

// AuthError is returned for 401 responses: the access token is missing, stale or invalid.
type AuthError struct {
	Method string
	Path   string
	Body   []byte
}

func (e *AuthError) Error() string {
	msg := firstMessage(e.Body, "detail")
	if msg == "" {
		msg = "unauthorized"
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, msg)
}

func (e *AuthError) Message(keys ...string) string {
	return firstMessage(e.Body, keys...)
}

// APIError is any other non-2xx response.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, body)
}

// Message returns the first message found under keys, in order.
func (e *APIError) Message(keys ...string) string {
	return firstMessage(e.Body, keys...)
}

// Field returns the first validation message for a field, DRF style ({"field": ["msg"]}).
func (e *APIError) Field(name string) string {
	return firstMessage(e.Body, name)
}

// Fields returns the first message of every field in a validation body.
func (e *APIError) Fields() map[string]string {
	var raw map[string]json.RawMessage
	if json.Unmarshal(e.Body, &raw) != nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if msg := decodeMessage(v); msg != "" {
			out[k] = msg
		}
	}
	return out
}

func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// StatusOf returns the HTTP status carried by err, 401 for auth errors, or 0.
func StatusOf(err error) int {
	var ae *AuthError
	if errors.As(err, &ae) {
		return http.StatusUnauthorized
	}
	var pe *APIError
	if errors.As(err, &pe) {
		return pe.Status
	}
	return 0
}

func firstMessage(body []byte, keys ...string) string {
	var raw map[string]json.RawMessage
	if json.Unmarshal(body, &raw) != nil {
		return ""
	}
	for _, k := range keys {
		if msg := decodeMessage(raw[k]); msg != "" {
			return msg
		}
	}
	return ""
}

func decodeMessage(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(v, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(v, &list) == nil && len(list) > 0 {
		return list[0]
	}
	// nested serializer errors: take the first field in name order
	var nested map[string]json.RawMessage
	if json.Unmarshal(v, &nested) == nil {
		keys := make([]string, 0, len(nested))
		for k := range nested {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if msg := decodeMessage(nested[k]); msg != "" {
				return msg
			}
		}
	}
	return ""
}
