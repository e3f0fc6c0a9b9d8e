package migrations

import (
	"context"
	"fmt"

	"github.com/gregcorwin/Email/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20250512000001, down_20250512000001)
}

// up_20250512000001 creates the templates, template_variables and user_roles tables
func up_20250512000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating templates table...")
	_, err := db.NewCreateTable().
		Model((*models.Template)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create templates table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_templates_name ON templates(name)`)
	if err != nil {
		return fmt.Errorf("failed to create templates name index: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating template_variables table...")
	_, err = db.NewCreateTable().
		Model((*models.TemplateVariable)(nil)).
		IfNotExists().
		ForeignKey(`("template_id") REFERENCES "templates" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create template_variables table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_template_variables_template_id ON template_variables(template_id)`)
	if err != nil {
		return fmt.Errorf("failed to create template_variables template_id index: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating user_roles table...")
	_, err = db.NewCreateTable().
		Model((*models.UserRole)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create user_roles table: %w", err)
	}

	// Deliberately NOT unique on (user_id, role): the Role Store lookup
	// treats a duplicate assignment as an error rather than an
	// authorization, and the schema keeps that failure mode reachable.
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_user_roles_user_id_role ON user_roles(user_id, role)`)
	if err != nil {
		return fmt.Errorf("failed to create user_roles lookup index: %w", err)
	}
	fmt.Println(" OK")

	return nil
}

// down_20250512000001 drops the schema tables
func down_20250512000001(ctx context.Context, db *bun.DB) error {
	for _, table := range []string{"user_roles", "template_variables", "templates"} {
		if _, err := db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)); err != nil {
			return fmt.Errorf("failed to drop %s table: %w", table, err)
		}
	}
	return nil
}
