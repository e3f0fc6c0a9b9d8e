package repository

import (
	"context"
	"fmt"

	"github.com/gregcorwin/Email/internal/db/bunx"
	"github.com/gregcorwin/Email/internal/db/models"
	"github.com/uptrace/bun"
)

// BunUserRoleRepository implements UserRoleRepository using Bun ORM
type BunUserRoleRepository struct {
	db *bun.DB
}

// NewBunUserRoleRepository creates a new Bun-based user role repository
func NewBunUserRoleRepository(db *bun.DB) UserRoleRepository {
	return &BunUserRoleRepository{db: db}
}

// Create inserts a new role assignment
func (r *BunUserRoleRepository) Create(ctx context.Context, ur *models.UserRole) error {
	if ur.ID == "" {
		ur.ID = bunx.NewUUIDv7()
	}

	_, err := r.db.NewInsert().
		Model(ur).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create user role: %w", err)
	}
	return nil
}

// FindRole looks up the assignment of role to userID.
//
// The store carries no unique constraint on (user_id, role), so the query
// fetches up to two rows and rejects the result when both come back: a
// duplicated assignment means the store is in an unexpected state, and an
// unexpected state must never authorize.
func (r *BunUserRoleRepository) FindRole(ctx context.Context, userID, role string) (*models.UserRole, error) {
	var assignments []models.UserRole
	err := r.db.NewSelect().
		Model(&assignments).
		Where("user_id = ?", userID).
		Where("role = ?", role).
		Limit(2).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("find role: %w", err)
	}

	switch len(assignments) {
	case 0:
		return nil, nil
	case 1:
		return &assignments[0], nil
	default:
		return nil, fmt.Errorf("find role: multiple %q assignments for user %s", role, userID)
	}
}

// ListByUserID retrieves all role assignments for an identity
func (r *BunUserRoleRepository) ListByUserID(ctx context.Context, userID string) ([]models.UserRole, error) {
	var assignments []models.UserRole
	err := r.db.NewSelect().
		Model(&assignments).
		Where("user_id = ?", userID).
		Order("role ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}
	return assignments, nil
}

// Delete removes a role assignment by ID
func (r *BunUserRoleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.UserRole)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete user role: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user role %s: %w", id, ErrNotFound)
	}
	return nil
}
