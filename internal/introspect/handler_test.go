package introspect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregcorwin/Email/internal/db/models"
	"github.com/gregcorwin/Email/internal/identity"
)

const adminUserID = "5237fd04-7d3a-4b07-9df1-4b0e67a1a001"

type fakeVerifier struct {
	user     *identity.User
	err      error
	gotToken string
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, accessToken string) (*identity.User, error) {
	f.gotToken = accessToken
	return f.user, f.err
}

type fakeRoleStore struct {
	assignment *models.UserRole
	err        error

	gotUserID string
	gotRole   string
}

func (f *fakeRoleStore) Create(ctx context.Context, ur *models.UserRole) error { return nil }

func (f *fakeRoleStore) FindRole(ctx context.Context, userID, role string) (*models.UserRole, error) {
	f.gotUserID = userID
	f.gotRole = role
	return f.assignment, f.err
}

func (f *fakeRoleStore) ListByUserID(ctx context.Context, userID string) ([]models.UserRole, error) {
	return nil, nil
}

func (f *fakeRoleStore) Delete(ctx context.Context, id string) error { return nil }

type fakePolicyStore struct {
	records []models.PolicyRecord
	err     error

	called    bool
	gotTables []string
}

func (f *fakePolicyStore) PoliciesForTables(ctx context.Context, tables []string) ([]models.PolicyRecord, error) {
	f.called = true
	f.gotTables = tables
	return f.records, f.err
}

func adminVerifier() *fakeVerifier {
	return &fakeVerifier{user: &identity.User{ID: adminUserID, Email: "admin@example.test"}}
}

func adminRoleStore() *fakeRoleStore {
	return &fakeRoleStore{assignment: &models.UserRole{ID: "r-1", UserID: adminUserID, Role: models.RoleAppAdmin}}
}

func doRequest(t *testing.T, h *Handler, method, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/functions/v1/get-rls-policies", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func assertBaseHeaders(t *testing.T, rec *httptest.ResponseRecorder, origin string) {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type",
		rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestHandler_Preflight(t *testing.T) {
	h := NewHandler(adminVerifier(), adminRoleStore(), &fakePolicyStore{}, "https://app.example.test")

	rec := doRequest(t, h, http.MethodOptions, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assertBaseHeaders(t, rec, "https://app.example.test")
}

func TestHandler_MissingAuthorizationHeader(t *testing.T) {
	policies := &fakePolicyStore{}
	h := NewHandler(adminVerifier(), adminRoleStore(), policies, "*")

	rec := doRequest(t, h, http.MethodPost, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":{"http_code":401,"message":"Missing Authorization header."}}`, rec.Body.String())
	assertBaseHeaders(t, rec, "*")
	assert.False(t, policies.called)
}

func TestHandler_InvalidToken(t *testing.T) {
	verifier := &fakeVerifier{err: fmt.Errorf("provider says no")}
	policies := &fakePolicyStore{}
	h := NewHandler(verifier, adminRoleStore(), policies, "*")

	rec := doRequest(t, h, http.MethodPost, "Bearer bad-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":{"http_code":401,"message":"Authentication failed or invalid token."}}`, rec.Body.String())
	assert.Equal(t, "bad-token", verifier.gotToken, "the Bearer prefix is stripped before verification")
	assert.False(t, policies.called)
}

func TestHandler_NonAdminDenied(t *testing.T) {
	roles := &fakeRoleStore{assignment: nil}
	policies := &fakePolicyStore{}
	h := NewHandler(adminVerifier(), roles, policies, "*")

	rec := doRequest(t, h, http.MethodPost, "Bearer valid-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":{"http_code":403,"message":"Access Denied: Administrator privileges required."}}`, rec.Body.String())
	assertBaseHeaders(t, rec, "*")

	assert.Equal(t, adminUserID, roles.gotUserID)
	assert.Equal(t, models.RoleAppAdmin, roles.gotRole)
	assert.False(t, policies.called, "the privileged query never runs for a denied caller")
}

func TestHandler_RoleLookupFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "store unreachable", err: fmt.Errorf("connection refused")},
		// More than one matching assignment is ambiguity, not authorization.
		{name: "ambiguous assignment", err: fmt.Errorf("multiple \"app_admin\" assignments for user %s", adminUserID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policies := &fakePolicyStore{}
			h := NewHandler(adminVerifier(), &fakeRoleStore{err: tt.err}, policies, "*")

			rec := doRequest(t, h, http.MethodPost, "Bearer valid-token")
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":{"http_code":500,"message":"Failed to verify user role."}}`, rec.Body.String())
			assert.False(t, policies.called)
		})
	}
}

func TestHandler_AdminFetchesPolicies(t *testing.T) {
	qual := "(auth.uid() IS NOT NULL)"
	policies := &fakePolicyStore{
		records: []models.PolicyRecord{
			{
				SchemaName: "public",
				TableName:  "templates",
				PolicyName: "templates_select_authenticated",
				Permissive: "PERMISSIVE",
				Roles:      []string{"authenticated"},
				Command:    "SELECT",
				Using:      &qual,
			},
		},
	}
	h := NewHandler(adminVerifier(), adminRoleStore(), policies, "*")

	rec := doRequest(t, h, http.MethodPost, "Bearer valid-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assertBaseHeaders(t, rec, "*")

	assert.Equal(t, ProtectedTables, policies.gotTables, "the allow-list is fixed, never caller-supplied")

	var got []models.PolicyRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, policies.records, got)
}

func TestHandler_NoPoliciesIsEmptyArray(t *testing.T) {
	h := NewHandler(adminVerifier(), adminRoleStore(), &fakePolicyStore{records: nil}, "*")

	rec := doRequest(t, h, http.MethodPost, "Bearer valid-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_PolicyQueryFailure(t *testing.T) {
	policies := &fakePolicyStore{err: fmt.Errorf("pg_policies query failed")}
	h := NewHandler(adminVerifier(), adminRoleStore(), policies, "*")

	rec := doRequest(t, h, http.MethodPost, "Bearer valid-token")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"http_code":500,"message":"Failed to fetch RLS policies."}}`, rec.Body.String())
}

func TestHandler_NotConfigured(t *testing.T) {
	h := NewHandler(nil, nil, nil, "*")

	rec := doRequest(t, h, http.MethodPost, "Bearer valid-token")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"http_code":500,"message":"Function not configured correctly. Missing critical environment variables."}}`, rec.Body.String())
	assertBaseHeaders(t, rec, "*")
}

func TestHandler_EmptyOriginDefaultsToWildcard(t *testing.T) {
	h := NewHandler(adminVerifier(), adminRoleStore(), &fakePolicyStore{}, "")

	rec := doRequest(t, h, http.MethodOptions, "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
