// Package guard gates every client-side route transition. It is the first of
// the two access-control layers: a pure decision function over the current
// session and the target route. The second layer (the privileged
// introspection service) never trusts decisions made here.
package guard

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gregcorwin/Email/internal/identity"
)

// Decision is the outcome of evaluating one navigation attempt. Decisions are
// computed fresh per attempt and never cached: the session can change between
// navigations.
type Decision int

const (
	// Proceed allows the transition to the target route.
	Proceed Decision = iota

	// RedirectToLogin sends the visitor to the login route.
	RedirectToLogin

	// RedirectToStepUp sends an authenticated but base-assurance session to
	// the step-up MFA view, with the explicit step-up marker set.
	RedirectToStepUp

	// RedirectToHome sends an already-elevated session away from the login
	// route to the default authenticated landing route.
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToStepUp:
		return "redirect-to-step-up"
	case RedirectToHome:
		return "redirect-to-home"
	default:
		return "unknown"
	}
}

// StepUpQueryParam is the transient query marker distinguishing "user chose
// to step up" from "user merely landed on the login route".
const StepUpQueryParam = "stepUpMfa"

// Navigation is one navigation attempt: the target route plus the optional
// step-up marker carried as request state. It is discarded after the decision
// is applied.
type Navigation struct {
	Path            string
	StepUpRequested bool
}

// ParseNavigation builds a Navigation from a raw target like
// "/auth?stepUpMfa=true".
func ParseNavigation(target string) Navigation {
	nav := Navigation{Path: target}
	if i := strings.IndexByte(target, '?'); i >= 0 {
		nav.Path = target[:i]
		if values, err := url.ParseQuery(target[i+1:]); err == nil {
			nav.StepUpRequested = values.Get(StepUpQueryParam) == "true"
		}
	}
	return nav
}

// IdentityProvider is the read-only view of the hosted identity provider the
// guard consults. Injected so the guard is testable with fabricated sessions;
// implemented by identity.SessionClient.
type IdentityProvider interface {
	// GetSession returns the current session snapshot, (nil, nil) when
	// signed out.
	GetSession(ctx context.Context) (*identity.Session, error)

	// ListFactors returns the enrolled factors with verification status.
	// This can be slow or fail; the guard treats failure as "no session".
	ListFactors(ctx context.Context) ([]identity.Factor, error)
}

const defaultIdentityTimeout = 10 * time.Second

// Guard decides whether a navigation may proceed. It never mutates session
// state; its only observable output is the Decision.
type Guard struct {
	identity IdentityProvider
	routes   *RouteTable
	timeout  time.Duration
}

// NewGuard creates a Guard over the given identity provider and route table.
func NewGuard(provider IdentityProvider, routes *RouteTable) *Guard {
	return &Guard{
		identity: provider,
		routes:   routes,
		timeout:  defaultIdentityTimeout,
	}
}

// WithTimeout overrides the per-navigation identity lookup timeout.
func (g *Guard) WithTimeout(d time.Duration) *Guard {
	if d > 0 {
		g.timeout = d
	}
	return g
}

// Routes exposes the guard's route table to the hosting dispatcher.
func (g *Guard) Routes() *RouteTable { return g.routes }

// Decide evaluates one navigation attempt against the session state current
// at call time.
//
// The decision table:
//
//   - no session, protected route            → RedirectToLogin
//   - no session, public route               → Proceed
//   - elevated session on the login route
//     without the explicit step-up marker    → RedirectToHome
//   - base session, protected route, account
//     has a verified MFA factor              → RedirectToStepUp
//   - base session, protected route, no
//     verified factor (mid-enrollment)       → Proceed
//   - anything else                          → Proceed
//
// Identity lookups (session and factor list) run under the guard's timeout.
// Any lookup failure is treated as "no session": the guard fails closed,
// never open.
func (g *Guard) Decide(ctx context.Context, nav Navigation) Decision {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	route, _ := g.routes.Match(nav.Path)

	session, err := g.identity.GetSession(ctx)
	if err != nil {
		session = nil
	}

	if session == nil {
		if route.RequiresAuth {
			return RedirectToLogin
		}
		return Proceed
	}

	// A signed-in visitor landing on the login route without explicitly
	// asking to step up gets bounced to the landing page, but only when the
	// session is fully elevated. A base session may still need the view to
	// complete its second factor.
	if g.routes.IsLogin(nav.Path) && !nav.StepUpRequested {
		if session.Elevated() {
			return RedirectToHome
		}
		return Proceed
	}

	if !route.RequiresAuth {
		return Proceed
	}

	if session.Elevated() {
		return Proceed
	}

	// Base assurance on a protected route: the factor lookup happens on
	// every such navigation (enrollment can change between attempts), so
	// this is a suspension point, not a cached value.
	factors, err := g.identity.ListFactors(ctx)
	if err != nil {
		// Fail closed: an unverifiable session is an untrusted session.
		return RedirectToLogin
	}

	for _, factor := range factors {
		if factor.Verified() {
			return RedirectToStepUp
		}
	}

	// No completed factor to step up to: the account is mid-enrollment and
	// is deliberately allowed through.
	return Proceed
}
