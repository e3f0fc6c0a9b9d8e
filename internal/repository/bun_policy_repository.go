package repository

import (
	"context"
	"fmt"

	"github.com/gregcorwin/Email/internal/db/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// BunPolicyRepository reads row-level-security policy definitions from
// PostgreSQL's pg_policies catalog view. The backing *bun.DB must be the
// service-level connection: pg_policies is only visible in full to a role
// with catalog read rights, which is exactly why the introspection service
// gates access to this repository behind its own identity and role checks.
type BunPolicyRepository struct {
	db *bun.DB
}

// NewBunPolicyRepository creates a new Bun-based policy repository
func NewBunPolicyRepository(db *bun.DB) PolicyRepository {
	return &BunPolicyRepository{db: db}
}

// PoliciesForTables returns the policy definitions for the given table names.
// The caller supplies a fixed allow-list, never request input. An empty
// result is a valid success: tables with RLS disabled simply have no rows.
func (r *BunPolicyRepository) PoliciesForTables(ctx context.Context, tables []string) ([]models.PolicyRecord, error) {
	if r.db.Dialect().Name() != dialect.PG {
		return nil, fmt.Errorf("policy introspection requires PostgreSQL")
	}
	if len(tables) == 0 {
		return []models.PolicyRecord{}, nil
	}

	records := make([]models.PolicyRecord, 0)
	err := r.db.NewSelect().
		Table("pg_policies").
		Column("schemaname", "tablename", "policyname", "permissive", "roles", "cmd", "qual", "with_check").
		Where("tablename IN (?)", bun.In(tables)).
		Order("tablename ASC", "policyname ASC").
		Scan(ctx, &records)
	if err != nil {
		return nil, fmt.Errorf("query pg_policies: %w", err)
	}
	return records, nil
}
