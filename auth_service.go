package sweetshop

import (
	"context"
	"net/http"
	"strings"
)

var _ AuthGateway = &AuthService{}

// AuthService wraps the authentication endpoints of the remote API.
type AuthService struct {
	client *Client
}

// NewAuthService returns an AuthService issuing requests through c.
func NewAuthService(c *Client) *AuthService {
	return &AuthService{client: c}
}

// Register creates a new account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*Identity, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)

	identity := &Identity{}
	if err := s.client.do(ctx, call{
		op:     "auth.register",
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   reg,
		result: identity,
	}); err != nil {
		return nil, err
	}
	return identity, nil
}

// Login exchanges credentials for a bearer token. The API expects a form
// encoded body where the email travels as username.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AccessToken, error) {
	token := &AccessToken{}
	if err := s.client.do(ctx, call{
		op:     "auth.login",
		method: http.MethodPost,
		path:   "/api/auth/login",
		form: map[string]string{
			"username": strings.TrimSpace(email),
			"password": password,
		},
		result: token,
	}); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, classifyStatus(http.StatusUnauthorized, "", nil, map[string]any{
			"op": "auth.login",
		})
	}
	return token, nil
}

// CurrentUser resolves the identity of the stored bearer token.
func (s *AuthService) CurrentUser(ctx context.Context) (*Identity, error) {
	identity := &Identity{}
	if err := s.client.do(ctx, call{
		op:     "auth.me",
		method: http.MethodGet,
		path:   "/api/auth/me",
		result: identity,
	}); err != nil {
		return nil, err
	}
	return identity, nil
}

// Logout removes the persisted credentials. It makes no network call.
func (s *AuthService) Logout(st Storage) error {
	return ClearCredentials(st)
}
