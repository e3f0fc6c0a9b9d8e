// Package introspect implements the privileged introspection service: it
// returns the database's row-level-security policy definitions for a fixed
// set of tables, but only to callers holding the app_admin role. It is the
// server-side half of the access-control gateway and re-derives authorization
// from scratch on every request and never trusts the client-side guard.
package introspect

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gregcorwin/Email/internal/db/models"
	"github.com/gregcorwin/Email/internal/identity"
	"github.com/gregcorwin/Email/internal/repository"
)

// ProtectedTables is the fixed allow-list handed to the privileged query.
// Request input never reaches the query: a caller cannot introspect tables
// outside this list.
var ProtectedTables = []string{
	"templates",
	"collections",
	"designs",
	"transformation_sets",
	"transformation_rules",
	"template_variables",
	"user_roles",
}

// TokenVerifier exchanges a bearer credential for a verified identity. The
// implementation (identity.Client) calls the provider with the public API
// key, so verification is subject to the provider's own checks and never
// bypassed by an administrative credential.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, accessToken string) (*identity.User, error)
}

// Handler serves OPTIONS and POST for the get-rls-policies endpoint. It is
// stateless: concurrent requests share nothing mutable, and every request
// re-runs the full identity → role → query sequence.
type Handler struct {
	verifier      TokenVerifier
	roles         repository.UserRoleRepository
	policies      repository.PolicyRepository
	allowedOrigin string
}

// NewHandler wires the introspection endpoint. Collaborators may be nil when
// deployment secrets are missing; the handler then reports a configuration
// error per request instead of failing open.
func NewHandler(verifier TokenVerifier, roles repository.UserRoleRepository, policies repository.PolicyRepository, allowedOrigin string) *Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &Handler{
		verifier:      verifier,
		roles:         roles,
		policies:      policies,
		allowedOrigin: allowedOrigin,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Every response, success or failure, carries the same base headers.
	// Browser-side callers cannot even read an error response without them.
	h.setBaseHeaders(w)

	// Preflight gets an empty success; all other verbs run the full check.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.writeError(w, r, newError(KindUnexpected,
				"An unexpected server error occurred.",
				fmt.Errorf("panic: %v", rec)))
		}
	}()

	records, appErr := h.policyRecords(r)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(records); err != nil {
		log.Printf("get-rls-policies: encode response: %v", err)
	}
}

// policyRecords runs the authorization sequence and, only after it fully
// succeeds, the privileged query. Order is load-bearing: identity first, role
// second, query last.
func (h *Handler) policyRecords(r *http.Request) ([]models.PolicyRecord, *Error) {
	ctx := r.Context()

	if h.verifier == nil || h.roles == nil || h.policies == nil {
		return nil, newError(KindConfiguration,
			"Function not configured correctly. Missing critical environment variables.",
			fmt.Errorf("introspection collaborators not wired"))
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, newError(KindAuthentication, "Missing Authorization header.", nil)
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))

	user, err := h.verifier.VerifyToken(ctx, token)
	if err != nil || user == nil {
		return nil, newError(KindAuthentication, "Authentication failed or invalid token.", err)
	}

	assignment, err := h.roles.FindRole(ctx, user.ID, models.RoleAppAdmin)
	if err != nil {
		return nil, newError(KindUpstream, "Failed to verify user role.", err)
	}
	if assignment == nil {
		return nil, newError(KindAuthorization,
			"Access Denied: Administrator privileges required.",
			fmt.Errorf("user %s is not %s", user.ID, models.RoleAppAdmin))
	}

	records, err := h.policies.PoliciesForTables(ctx, ProtectedTables)
	if err != nil {
		return nil, newError(KindUpstream, "Failed to fetch RLS policies.", err)
	}
	if records == nil {
		// An empty result is a valid success; the caller gets [], not null.
		records = []models.PolicyRecord{}
	}

	log.Printf("get-rls-policies: admin %s fetched %d policy definitions", user.ID, len(records))
	return records, nil
}

func (h *Handler) setBaseHeaders(w http.ResponseWriter) {
	header := w.Header()
	header.Set("Content-Type", "application/json")
	header.Set("Access-Control-Allow-Origin", h.allowedOrigin)
	header.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

// errorBody is the caller-visible error envelope.
type errorBody struct {
	HTTPCode int    `json:"http_code"`
	Message  string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, appErr *Error) {
	status := appErr.Kind.HTTPStatus()
	log.Printf("get-rls-policies: %s %s -> %d %s (detail: %v)",
		r.Method, r.URL.Path, status, appErr.Message, appErr.Unwrap())

	w.WriteHeader(status)
	envelope := errorEnvelope{Error: errorBody{HTTPCode: status, Message: appErr.Message}}
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		log.Printf("get-rls-policies: encode error response: %v", err)
	}
}
