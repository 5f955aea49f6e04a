package clients

import (
	"context"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
)

type AuthClient struct{ api *apiclient.Client }

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

func (c *AuthClient) Login(ctx context.Context, in Credentials) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.api.Post(ctx, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) Signup(ctx context.Context, in SignupRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.api.Post(ctx, "/auth/signup", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.api.Get(ctx, "/auth/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new access token. The API may rotate
// the refresh token too; an empty Refresh means keep the old one.
func (c *AuthClient) Refresh(ctx context.Context, refresh string) (access, rotated string, err error) {
	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := c.api.Post(ctx, "/auth/refresh", map[string]string{"refresh": refresh}, &out); err != nil {
		return "", "", err
	}
	return out.Access, out.Refresh, nil
}
