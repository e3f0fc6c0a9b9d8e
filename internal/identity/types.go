// Package identity talks to the hosted identity provider. The provider owns
// sessions, credentials, and MFA enrollment; this package only reads:
// it verifies bearer tokens against the provider's user endpoint and derives
// session snapshots from the provider-issued access token.
package identity

import "time"

// AssuranceLevel is the strength of authentication completed for a session.
// The provider encodes it in the access token's "aal" claim.
type AssuranceLevel string

const (
	// AssuranceBase means only the first factor (password) was completed.
	AssuranceBase AssuranceLevel = "aal1"

	// AssuranceElevated means MFA was completed for this session.
	AssuranceElevated AssuranceLevel = "aal2"
)

// Factor verification statuses.
const (
	FactorStatusVerified   = "verified"
	FactorStatusUnverified = "unverified"
)

// Session is a read-only snapshot of the provider's current session. It is
// derived per navigation attempt and never cached: enrollment and assurance
// can change between navigations.
type Session struct {
	UserID    string
	Email     string
	Assurance AssuranceLevel
	ExpiresAt time.Time
}

// Elevated reports whether the session completed MFA.
func (s *Session) Elevated() bool {
	return s != nil && s.Assurance == AssuranceElevated
}

// Factor is an enrolled authentication factor (e.g. TOTP). Only factors with
// status "verified" count toward step-up: an unverified factor is an
// enrollment in progress, not something a session can step up to.
type Factor struct {
	ID           string `json:"id"`
	FriendlyName string `json:"friendly_name"`
	Type         string `json:"factor_type"`
	Status       string `json:"status"`
}

// Verified reports whether enrollment of this factor completed.
func (f Factor) Verified() bool {
	return f.Status == FactorStatusVerified
}

// User is the provider's record of an identity, as returned by the user
// endpoint when exchanging a bearer token.
type User struct {
	ID      string   `json:"id"`
	Aud     string   `json:"aud"`
	Email   string   `json:"email"`
	Role    string   `json:"role"`
	Factors []Factor `json:"factors"`
}
