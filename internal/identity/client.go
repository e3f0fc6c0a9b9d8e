package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client calls the hosted identity provider's HTTP API. Requests carry the
// public (anon) API key, so they are subject to the provider's own checks;
// the service-role credential is never used for identity verification.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewClient creates an identity client for the given provider base URL.
func NewClient(authURL, anonKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(authURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// VerifyToken exchanges a bearer access token for the identity it belongs to.
// The provider validates the token itself (signature, expiry, revocation);
// any non-200 answer means the caller is not authenticated.
func (c *Client) VerifyToken(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("empty access token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for server-side logs; the caller only
		// ever sees a generic authentication failure.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("verify token: provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("provider returned user without id")
	}
	return &user, nil
}

// FactorsForToken lists the authentication factors enrolled by the token's
// identity, with each factor's verification status. This round-trips to the
// provider on every call: enrollment can change between navigations, so the
// result must never be cached.
func (c *Client) FactorsForToken(ctx context.Context, accessToken string) ([]Factor, error) {
	user, err := c.VerifyToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return user.Factors, nil
}
