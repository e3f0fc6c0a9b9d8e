package guard

import (
	"context"
	"errors"
	"log"
	"sync"
)

// ErrSuperseded is returned when a navigation attempt resolves after a newer
// attempt has already started. The stale decision is discarded, never applied.
var ErrSuperseded = errors.New("navigation superseded by a newer attempt")

// Navigator is the thin dispatcher around the Guard. It serializes navigation
// attempts: each attempt gets a sequence number when it starts, the guard
// evaluates against the session state current at resolution time (Decide
// queries the provider inside the evaluation, not before), and a decision
// whose attempt is no longer the newest is dropped.
//
// No cancellation primitive exists beyond this natural supersession.
type Navigator struct {
	guard *Guard

	mu      sync.Mutex
	seq     uint64
	current string
}

// NewNavigator creates a Navigator positioned on the application root.
func NewNavigator(g *Guard) *Navigator {
	return &Navigator{guard: g, current: "/"}
}

// Current returns the last applied location.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate evaluates a navigation attempt to the raw target (path plus
// optional query, e.g. "/auth?stepUpMfa=true") and applies the decision
// unless a newer attempt superseded it.
func (n *Navigator) Navigate(ctx context.Context, target string) (Decision, error) {
	nav := ParseNavigation(target)

	n.mu.Lock()
	n.seq++
	attempt := n.seq
	n.mu.Unlock()

	decision := n.guard.Decide(ctx, nav)

	n.mu.Lock()
	defer n.mu.Unlock()
	if attempt != n.seq {
		return decision, ErrSuperseded
	}

	n.current = n.locationFor(decision, nav)
	log.Printf("navigate %s: %s -> %s", nav.Path, decision, n.current)
	return decision, nil
}

// locationFor maps a decision onto the location the dispatcher lands on.
func (n *Navigator) locationFor(d Decision, nav Navigation) string {
	routes := n.guard.Routes()
	switch d {
	case RedirectToLogin:
		return routes.LoginPath()
	case RedirectToStepUp:
		return routes.LoginPath() + "?" + StepUpQueryParam + "=true"
	case RedirectToHome:
		return routes.HomePath()
	default:
		return nav.Path
	}
}
