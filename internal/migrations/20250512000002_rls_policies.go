package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20250512000002, down_20250512000002)
}

// rlsTables are the application tables protected by row-level security.
// These are the same tables the introspection endpoint reports on.
var rlsTables = []string{"templates", "template_variables", "user_roles"}

// up_20250512000002 enables row-level security and creates the baseline
// policies. PostgreSQL only: SQLite has no RLS, so this migration is a no-op
// there (local development relies on the application-level checks alone).
func up_20250512000002(ctx context.Context, db *bun.DB) error {
	if !IsPostgreSQL(db) {
		fmt.Println(" [up] skipping RLS policies (not PostgreSQL)")
		return nil
	}

	for _, table := range rlsTables {
		fmt.Printf(" [up] enabling row level security on %s...", table)
		if _, err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ENABLE ROW LEVEL SECURITY`, table)); err != nil {
			return fmt.Errorf("failed to enable RLS on %s: %w", table, err)
		}
		fmt.Println(" OK")
	}

	fmt.Print(" [up] creating RLS policies...")

	// Authenticated users can read the template catalog.
	policies := []string{
		`CREATE POLICY templates_select_authenticated ON templates
			FOR SELECT TO authenticated USING (true)`,
		`CREATE POLICY template_variables_select_authenticated ON template_variables
			FOR SELECT TO authenticated USING (true)`,

		// Writes to the catalog require the app_admin role assignment.
		`CREATE POLICY templates_write_admin ON templates
			FOR ALL TO authenticated
			USING (EXISTS (
				SELECT 1 FROM user_roles ur
				WHERE ur.user_id = auth.uid() AND ur.role = 'app_admin'))
			WITH CHECK (EXISTS (
				SELECT 1 FROM user_roles ur
				WHERE ur.user_id = auth.uid() AND ur.role = 'app_admin'))`,

		// Identities may read their own role assignments; only the service
		// role (which bypasses RLS) writes them.
		`CREATE POLICY user_roles_select_own ON user_roles
			FOR SELECT TO authenticated USING (user_id = auth.uid())`,
	}

	for _, policy := range policies {
		if _, err := db.Exec(policy); err != nil {
			return fmt.Errorf("failed to create RLS policy: %w", err)
		}
	}
	fmt.Println(" OK")

	return nil
}

// down_20250512000002 drops the policies and disables row-level security
func down_20250512000002(ctx context.Context, db *bun.DB) error {
	if !IsPostgreSQL(db) {
		return nil
	}

	drops := []string{
		`DROP POLICY IF EXISTS templates_select_authenticated ON templates`,
		`DROP POLICY IF EXISTS template_variables_select_authenticated ON template_variables`,
		`DROP POLICY IF EXISTS templates_write_admin ON templates`,
		`DROP POLICY IF EXISTS user_roles_select_own ON user_roles`,
	}
	for _, drop := range drops {
		if _, err := db.Exec(drop); err != nil {
			return fmt.Errorf("failed to drop RLS policy: %w", err)
		}
	}

	for _, table := range rlsTables {
		if _, err := db.Exec(fmt.Sprintf(`ALTER TABLE %s DISABLE ROW LEVEL SECURITY`, table)); err != nil {
			return fmt.Errorf("failed to disable RLS on %s: %w", table, err)
		}
	}
	return nil
}
