package tallysdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client talks to a tally server. Unauthenticated calls live here; everything
// behind a bearer token goes through a Session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account and returns a session for it.
func (c *Client) Register(ctx context.Context, username, email, password string) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return c.NewSession(out.Token), nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", "", LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return c.NewSession(out.Token), nil
}

// NewSession wraps a token obtained elsewhere.
func (c *Client) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}

// Health calls /livez.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", "", nil)
	if err != nil {
		return out, err
	}
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}
