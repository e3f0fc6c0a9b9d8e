package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gregcorwin/Email/internal/db/bunx"
	"github.com/gregcorwin/Email/internal/db/models"
	"github.com/uptrace/bun"
)

// ========================================
// Template Repository
// ========================================

// BunTemplateRepository implements TemplateRepository using Bun ORM
type BunTemplateRepository struct {
	db *bun.DB
}

// NewBunTemplateRepository creates a new Bun-based template repository
func NewBunTemplateRepository(db *bun.DB) TemplateRepository {
	return &BunTemplateRepository{db: db}
}

// Create inserts a new template
func (r *BunTemplateRepository) Create(ctx context.Context, tmpl *models.Template) error {
	if tmpl.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if tmpl.ID == "" {
		tmpl.ID = bunx.NewUUIDv7()
	}

	_, err := r.db.NewInsert().
		Model(tmpl).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

// GetByID retrieves a template by ID
func (r *BunTemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	tmpl := new(models.Template)
	err := r.db.NewSelect().
		Model(tmpl).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return tmpl, nil
}

// List retrieves all templates
func (r *BunTemplateRepository) List(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	err := r.db.NewSelect().
		Model(&templates).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// Update updates an existing template
func (r *BunTemplateRepository) Update(ctx context.Context, tmpl *models.Template) error {
	tmpl.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(tmpl).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("template %s: %w", tmpl.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a template by ID
func (r *BunTemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.Template)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return nil
}

// ========================================
// TemplateVariable Repository
// ========================================

// BunTemplateVariableRepository implements TemplateVariableRepository using Bun ORM
type BunTemplateVariableRepository struct {
	db *bun.DB
}

// NewBunTemplateVariableRepository creates a new Bun-based template variable repository
func NewBunTemplateVariableRepository(db *bun.DB) TemplateVariableRepository {
	return &BunTemplateVariableRepository{db: db}
}

// Create inserts a new template variable
func (r *BunTemplateVariableRepository) Create(ctx context.Context, v *models.TemplateVariable) error {
	if v.TemplateID == "" || v.Name == "" {
		return fmt.Errorf("template_id and name are required")
	}
	if v.ID == "" {
		v.ID = bunx.NewUUIDv7()
	}

	_, err := r.db.NewInsert().
		Model(v).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create template variable: %w", err)
	}
	return nil
}

// ListByTemplateID retrieves all variables declared by a template
func (r *BunTemplateVariableRepository) ListByTemplateID(ctx context.Context, templateID string) ([]models.TemplateVariable, error) {
	var variables []models.TemplateVariable
	err := r.db.NewSelect().
		Model(&variables).
		Where("template_id = ?", templateID).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list template variables: %w", err)
	}
	return variables, nil
}

// Delete removes a template variable by ID
func (r *BunTemplateVariableRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.TemplateVariable)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete template variable: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("template variable %s: %w", id, ErrNotFound)
	}
	return nil
}
