package views

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/pkg/events"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/clients"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

const afterLogin = "/role-selection"

type LoginView struct {
	Status
	Email string `json:"email,omitempty"`

	sess *session.Session
	sink events.Sink
}

func NewLogin(sess *session.Session, sink events.Sink) *LoginView {
	return &LoginView{sess: sess, sink: sink}
}

// Submit signs in with email and password. Any failure, 401 included, is shown
// as a credential problem; the session is left untouched.
func (v *LoginView) Submit(ctx context.Context, email, password string) {
	defer v.begin()()
	v.Email = email

	res, err := v.sess.API().Auth.Login(ctx, clients.Credentials{Email: email, Password: password})
	if err != nil {
		v.Problem = credentialProblem(ctx, err)
		v.Error = "Invalid credentials"
		var m messager
		if errors.As(err, &m) {
			if msg := m.Message("detail", "non_field_errors"); msg != "" {
				v.Error = msg
			}
		}
		log.Printf("[storefront] login %s: %v", email, err)
		return
	}
	v.signIn(ctx, res)
}

func (v *LoginView) signIn(ctx context.Context, res *domain.AuthResponse) {
	if err := v.sess.Login(ctx, res); err != nil {
		v.Problem, v.Error = ProblemServer, "Login failed"
		log.Printf("[storefront] login: %v", err)
		return
	}
	events.Emit(ctx, v.sink, events.RKSessionLogin, events.SessionChanged{UserID: res.User.ID, Role: string(res.User.Role)})
	v.Redirect = afterLogin
}

type SignupView struct {
	Status
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	sess *session.Session
	sink events.Sink
}

func NewSignup(sess *session.Session, sink events.Sink) *SignupView {
	return &SignupView{sess: sess, sink: sink}
}

// Submit creates the account and signs straight in. A blank phone is not sent.
func (v *SignupView) Submit(ctx context.Context, email, password, phone string) {
	defer v.begin()()
	v.Email, v.Phone = email, strings.TrimSpace(phone)

	res, err := v.sess.API().Auth.Signup(ctx, clients.SignupRequest{Email: email, Password: password, Phone: v.Phone})
	if err != nil {
		v.Problem = credentialProblem(ctx, err)
		v.Error = "Signup failed"
		var pe *apiclient.APIError
		if errors.As(err, &pe) {
			v.Fields = pe.Fields()
			if msg := pe.Message("email", "password"); msg != "" {
				v.Error = msg
			}
		}
		log.Printf("[storefront] signup %s: %v", email, err)
		return
	}
	login := LoginView{sess: v.sess, sink: v.sink}
	login.signIn(ctx, res)
	v.Problem, v.Error, v.Redirect = login.Problem, login.Error, login.Redirect
}

// messager is implemented by both API error types.
type messager interface {
	Message(keys ...string) string
}

func credentialProblem(ctx context.Context, err error) Problem {
	if p := Classify(ctx, err); p != ProblemAuth {
		return p
	}
	return ProblemValidation
}
