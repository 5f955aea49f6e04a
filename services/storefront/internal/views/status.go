// Package views builds the storefront's page view models. Each view loads its
// data from the marketplace API on demand, keeps its own status, and submits
// actions back to the API on behalf of one session.
package views

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

type Problem string

const (
	ProblemNone       Problem = ""
	ProblemAuth       Problem = "auth"
	ProblemValidation Problem = "validation"
	ProblemNotFound   Problem = "not_found"
	ProblemServer     Problem = "server"
	ProblemCanceled   Problem = "canceled"
)

// Classify sorts a failed API call into the problems a view knows how to show.
// Only a finished request context counts as canceled; an API timeout is a
// server problem the user gets to see.
func Classify(ctx context.Context, err error) Problem {
	switch {
	case err == nil:
		return ProblemNone
	case ctx.Err() != nil:
		return ProblemCanceled
	case apiclient.IsAuth(err):
		return ProblemAuth
	}
	switch st := apiclient.StatusOf(err); {
	case st == http.StatusNotFound:
		return ProblemNotFound
	case st >= 400 && st < 500 && st != http.StatusTooManyRequests:
		return ProblemValidation
	default:
		return ProblemServer
	}
}

const sessionExpired = "Your session has expired. Please sign in again."

// Status is the part every view shares.
type Status struct {
	Loading  bool              `json:"loading"`
	Problem  Problem           `json:"problem,omitempty"`
	Error    string            `json:"error,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Notice   string            `json:"notice,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// begin marks the view loading and clears the previous outcome. Call the
// returned func with defer.
func (st *Status) begin() func() {
	st.Loading = true
	st.Problem, st.Error, st.Fields, st.Notice = ProblemNone, "", nil, ""
	return func() { st.Loading = false }
}

func (st *Status) Failed() bool { return st.Problem != ProblemNone }

// fail records err on the view. Rejected tokens sign the session out and send
// the browser to /login; everything else shows fallback unless the API gave a
// better message.
func (st *Status) fail(ctx context.Context, sess *session.Session, action string, err error, fallback string) Problem {
	p := Classify(ctx, err)
	st.Problem = p
	switch p {
	case ProblemCanceled:
		log.Printf("[storefront] %s: abandoned: %v", action, err)
		return p
	case ProblemAuth:
		sess.HandleAuthError(ctx, err)
		st.Error, st.Redirect = sessionExpired, "/login"
	case ProblemValidation:
		st.Error = fallback
		var pe *apiclient.APIError
		if errors.As(err, &pe) {
			st.Fields = pe.Fields()
			if msg := pe.Message("error", "detail", "non_field_errors"); msg != "" {
				st.Error = msg
			}
		}
	default:
		st.Error = fallback
	}
	log.Printf("[storefront] %s: %v", action, err)
	return p
}
