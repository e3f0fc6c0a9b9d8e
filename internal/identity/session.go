package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClient holds the provider-issued access token for the current
// session and answers the two questions the navigation guard asks: "is there
// a session, and how strong is it" and "which factors are enrolled".
//
// The session snapshot is decoded from the access token's HS256 claims
// (subject, email, assurance level, expiry); the factor list round-trips to
// the provider. Safe for concurrent use.
type SessionClient struct {
	client *Client
	secret []byte

	mu          sync.RWMutex
	accessToken string
}

// NewSessionClient wraps an identity Client with token storage. The secret is
// the provider's JWT signing secret used to verify access tokens locally.
func NewSessionClient(client *Client, jwtSecret []byte) *SessionClient {
	return &SessionClient{client: client, secret: jwtSecret}
}

// SetSession installs the access token obtained from a sign-in or token
// refresh. An empty token is equivalent to ClearSession.
func (s *SessionClient) SetSession(accessToken string) {
	s.mu.Lock()
	s.accessToken = accessToken
	s.mu.Unlock()
}

// ClearSession forgets the current session (sign-out).
func (s *SessionClient) ClearSession() {
	s.SetSession("")
}

func (s *SessionClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// GetSession returns the current session snapshot, or (nil, nil) when signed
// out or expired. A token that fails verification is reported as an error so
// callers can fail closed rather than treating a forged token as signed-out.
func (s *SessionClient) GetSession(ctx context.Context) (*Session, error) {
	token := s.token()
	if token == "" {
		return nil, nil
	}

	session, err := s.parseAccessToken(token)
	if err != nil {
		if errors.Is(err, errTokenExpired) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// ListFactors returns the factors enrolled by the current session's identity.
func (s *SessionClient) ListFactors(ctx context.Context) ([]Factor, error) {
	token := s.token()
	if token == "" {
		return nil, fmt.Errorf("no active session")
	}
	return s.client.FactorsForToken(ctx, token)
}

var errTokenExpired = errors.New("access token expired")

// parseAccessToken verifies the HS256 signature and extracts the session
// snapshot from the standard provider claims: sub, email, aal, exp.
func (s *SessionClient) parseAccessToken(tokenString string) (*Session, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errTokenExpired
		}
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("access token missing sub claim")
	}
	email, _ := claims["email"].(string)

	assurance := AssuranceBase
	if aal, _ := claims["aal"].(string); aal == string(AssuranceElevated) {
		assurance = AssuranceElevated
	}

	var expiresAt time.Time
	if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
		expiresAt = exp.Time
	}

	return &Session{
		UserID:    sub,
		Email:     email,
		Assurance: assurance,
		ExpiresAt: expiresAt,
	}, nil
}
