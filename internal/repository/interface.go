package repository

import (
	"context"
	"errors"

	"github.com/gregcorwin/Email/internal/db/models"
)

// ErrNotFound marks lookups and writes that matched no row. Callers test for
// it with errors.Is; the wrapping message names the entity and ID.
var ErrNotFound = errors.New("not found")

// TemplateRepository exposes persistence operations for email templates.
type TemplateRepository interface {
	Create(ctx context.Context, tmpl *models.Template) error
	GetByID(ctx context.Context, id string) (*models.Template, error)
	List(ctx context.Context) ([]models.Template, error)
	Update(ctx context.Context, tmpl *models.Template) error
	Delete(ctx context.Context, id string) error
}

// TemplateVariableRepository exposes persistence operations for template variables.
type TemplateVariableRepository interface {
	Create(ctx context.Context, v *models.TemplateVariable) error
	ListByTemplateID(ctx context.Context, templateID string) ([]models.TemplateVariable, error)
	Delete(ctx context.Context, id string) error
}

// UserRoleRepository is the Role Store: the authoritative mapping from a
// hosted-auth identity to role labels. Read-only from the gateway's
// perspective; assignments are written out of band.
type UserRoleRepository interface {
	Create(ctx context.Context, ur *models.UserRole) error

	// FindRole returns the single assignment of role to userID, (nil, nil)
	// when the identity does not hold the role, and an error when the lookup
	// fails or the store holds more than one matching row. Ambiguity is an
	// error, not an authorization: callers fail closed on it.
	FindRole(ctx context.Context, userID, role string) (*models.UserRole, error)

	ListByUserID(ctx context.Context, userID string) ([]models.UserRole, error)
	Delete(ctx context.Context, id string) error
}

// PolicyRepository is the privileged query path: it reads row-level-security
// policy definitions using the service-level database connection, bypassing
// ordinary per-row restrictions. Callers must complete identity and role
// verification before invoking it.
type PolicyRepository interface {
	PoliciesForTables(ctx context.Context, tables []string) ([]models.PolicyRecord, error)
}
