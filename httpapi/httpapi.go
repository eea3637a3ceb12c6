// Package httpapi adapts the console's REST API to the access-go backend
// interfaces: auth operations, anti-forgery token supply and role
// permission persistence.
//
// Usage:
//
//	api := httpapi.New("https://console.example.com")
//	store := session.New(api)
//	tokens := xsrf.New(api)
//	authSvc := auth.New(api, tokens, flags, store)
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	access "github.com/fieldline/access-go"
)

// Client talks to the console REST API. It implements access.AuthBackend,
// session.Backend, xsrf.Source and roles.Backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  access.TokenProvider
}

// compile-time check
var _ access.AuthBackend = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Client) { a.http = c }
}

// WithTokenProvider sets the anti-forgery token provider whose token is
// attached to mutating requests.
func WithTokenProvider(p access.TokenProvider) Option {
	return func(a *Client) { a.tokens = p }
}

// New creates a REST API client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Wire shapes. The console API predates the profile field renames, hence
// the mixed naming.

type userPayload struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	Email        string                     `json:"email"`
	Role         string                     `json:"role"`
	IsActive     bool                       `json:"isActive"`
	Organization *orgPayload                `json:"organization,omitempty"`
	Permissions  map[string]map[string]bool `json:"permissions,omitempty"`
	Subscription *subscriptionPayload       `json:"subscription,omitempty"`
}

type orgPayload struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	IsActive             bool   `json:"isActive"`
	IsSubscriptionActive bool   `json:"isSubscriptionActive"`
}

type subscriptionPayload struct {
	Plan           string                     `json:"planName"`
	Tier           string                     `json:"tier"`
	MaxEmployees   int                        `json:"maxEmployees"`
	EnabledModules []string                   `json:"enabledModules"`
	ModuleFeatures map[string]map[string]bool `json:"moduleFeatures,omitempty"`
	EndDate        time.Time                  `json:"endDate"`
	IsActive       bool                       `json:"isActive"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token        string       `json:"token"`
	User         *userPayload `json:"user"`
	HasWebAccess bool         `json:"hasWebAccess"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// FetchToken implements xsrf.Source by hitting the anti-forgery endpoint.
func (c *Client) FetchToken(ctx context.Context) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/antiforgery", nil, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("httpapi: empty anti-forgery token in response")
	}
	return out.Token, nil
}

// Login submits credentials and maps the response to a LoginResult. The
// session token's expiry is decoded locally without signature
// verification; the server remains the authority on validity.
func (c *Client) Login(ctx context.Context, creds access.Credentials) (*access.LoginResult, error) {
	body := loginRequest{Email: creds.Email, Password: creds.Password}
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("httpapi: login response missing user")
	}

	return &access.LoginResult{
		Identity:        toIdentity(out.User),
		Token:           out.Token,
		ExpiresAt:       tokenExpiry(out.Token),
		HasPortalAccess: out.HasWebAccess,
	}, nil
}

// WhoAmI resolves the identity bound to the current session cookie.
func (c *Client) WhoAmI(ctx context.Context) (*access.Identity, error) {
	var out userPayload
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return toIdentity(&out), nil
}

// Logout invalidates the session on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
}

// Permissions implements roles.Backend: loads a role's stored matrix.
func (c *Client) Permissions(ctx context.Context, roleID string) (access.StoredMatrix, error) {
	var out access.StoredMatrix
	path := fmt.Sprintf("/api/v1/roles/%s/permissions", roleID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = make(access.StoredMatrix)
	}
	return out, nil
}

// SavePermissions implements roles.Backend: persists a role's matrix
// wholesale.
func (c *Client) SavePermissions(ctx context.Context, roleID string, m access.StoredMatrix) error {
	path := fmt.Sprintf("/api/v1/roles/%s/permissions", roleID)
	return c.do(ctx, http.MethodPut, path, m, nil)
}

// do issues one request and decodes the response. A 401 maps to
// access.ErrUnauthorized so orchestration can distinguish session expiry
// from other failures.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpapi: encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("httpapi: creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil && method != http.MethodGet {
		token, err := c.tokens.Get(ctx)
		if err != nil {
			return fmt.Errorf("httpapi: anti-forgery token: %w", err)
		}
		req.Header.Set("X-XSRF-Token", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("httpapi: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("httpapi: %s %s: %w", method, path, access.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("httpapi: %s %s returned %d: %s", method, path, resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("httpapi: decoding response: %w", err)
	}
	return nil
}

func toIdentity(u *userPayload) *access.Identity {
	id := &access.Identity{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
		Permissions: u.Permissions,
	}
	if u.Organization != nil {
		id.Organization = &access.Organization{
			ID:                   u.Organization.ID,
			Name:                 u.Organization.Name,
			IsActive:             u.Organization.IsActive,
			IsSubscriptionActive: u.Organization.IsSubscriptionActive,
		}
	}
	if u.Subscription != nil {
		id.Subscription = &access.Subscription{
			Plan:           u.Subscription.Plan,
			Tier:           u.Subscription.Tier,
			MaxEmployees:   u.Subscription.MaxEmployees,
			EnabledModules: u.Subscription.EnabledModules,
			ModuleFeatures: u.Subscription.ModuleFeatures,
			EndDate:        u.Subscription.EndDate,
			IsActive:       u.Subscription.IsActive,
		}
	}
	return id
}

// tokenExpiry decodes the JWT expiry claim without verifying the
// signature. A missing or malformed claim yields the zero time.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
