package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RoleAppAdmin is the privileged role label checked by the introspection
// service. Identities without this assignment are authenticated but not
// permitted.
const RoleAppAdmin = "app_admin"

// UserRole maps a hosted-auth identity to a role label. The Role Store is
// many-to-many capable; this application only ever checks for the presence of
// RoleAppAdmin. The user ID is the identity provider's subject (UUID), not a
// local foreign key; user records live in the hosted auth service.
type UserRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:ur"`

	ID        string    `bun:"id,pk,type:uuid" json:"id"`
	UserID    string    `bun:"user_id,notnull,type:uuid" json:"user_id"`
	Role      string    `bun:"role,notnull" json:"role"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// PolicyRecord is one row-level-security policy definition as reported by
// PostgreSQL's pg_policies view. It is opaque structured data: the
// introspection service returns it verbatim and never interprets the fields.
type PolicyRecord struct {
	SchemaName string   `bun:"schemaname" json:"schemaname"`
	TableName  string   `bun:"tablename" json:"tablename"`
	PolicyName string   `bun:"policyname" json:"policyname"`
	Permissive string   `bun:"permissive" json:"permissive"`
	Roles      []string `bun:"roles,array" json:"roles"`
	Command    string   `bun:"cmd" json:"cmd"`
	Using      *string  `bun:"qual" json:"qual"`
	WithCheck  *string  `bun:"with_check" json:"with_check"`
}
