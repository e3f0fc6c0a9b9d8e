package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/gregcorwin/Email/internal/db/bunx"
	"github.com/gregcorwin/Email/internal/db/models"
)

const (
	testSubject = "5237fd04-7d3a-4b07-9df1-4b0e67a1a001"
	otherUser   = "9a1b2c3d-4e5f-4a6b-8c7d-0e67a1a00e99"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := bunx.NewDB(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Template)(nil),
		(*models.TemplateVariable)(nil),
		(*models.UserRole)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}
	return db
}

func TestUserRoleRepository_FindRole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRoleRepository(db)
	ctx := context.Background()

	t.Run("absent role returns nil, nil", func(t *testing.T) {
		assignment, err := repo.FindRole(ctx, testSubject, models.RoleAppAdmin)
		require.NoError(t, err)
		assert.Nil(t, assignment)
	})

	require.NoError(t, repo.Create(ctx, &models.UserRole{UserID: testSubject, Role: models.RoleAppAdmin}))
	require.NoError(t, repo.Create(ctx, &models.UserRole{UserID: otherUser, Role: "editor"}))

	t.Run("single assignment is returned", func(t *testing.T) {
		assignment, err := repo.FindRole(ctx, testSubject, models.RoleAppAdmin)
		require.NoError(t, err)
		require.NotNil(t, assignment)
		assert.Equal(t, testSubject, assignment.UserID)
		assert.Equal(t, models.RoleAppAdmin, assignment.Role)
		assert.NotEmpty(t, assignment.ID)
	})

	t.Run("other users' roles do not match", func(t *testing.T) {
		assignment, err := repo.FindRole(ctx, otherUser, models.RoleAppAdmin)
		require.NoError(t, err)
		assert.Nil(t, assignment)
	})

	t.Run("duplicate assignment is an error, not a grant", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &models.UserRole{UserID: testSubject, Role: models.RoleAppAdmin}))

		assignment, err := repo.FindRole(ctx, testSubject, models.RoleAppAdmin)
		assert.Nil(t, assignment)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple")
	})
}

func TestUserRoleRepository_ListAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRoleRepository(db)
	ctx := context.Background()

	admin := &models.UserRole{UserID: testSubject, Role: models.RoleAppAdmin}
	require.NoError(t, repo.Create(ctx, admin))
	require.NoError(t, repo.Create(ctx, &models.UserRole{UserID: testSubject, Role: "editor"}))

	assignments, err := repo.ListByUserID(ctx, testSubject)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, models.RoleAppAdmin, assignments[0].Role)
	assert.Equal(t, "editor", assignments[1].Role)

	require.NoError(t, repo.Delete(ctx, admin.ID))

	assignment, err := repo.FindRole(ctx, testSubject, models.RoleAppAdmin)
	require.NoError(t, err)
	assert.Nil(t, assignment)

	err = repo.Delete(ctx, admin.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTemplateRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunTemplateRepository(db)
	ctx := context.Background()

	tmpl := &models.Template{
		Name:     "welcome",
		Subject:  "Welcome aboard",
		HTMLBody: "<p>Hello {{first_name}}</p>",
		TextBody: "Hello {{first_name}}",
	}
	require.NoError(t, repo.Create(ctx, tmpl))
	require.NotEmpty(t, tmpl.ID)

	t.Run("create requires a name", func(t *testing.T) {
		err := repo.Create(ctx, &models.Template{Subject: "nameless"})
		assert.Error(t, err)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, tmpl.ID)
		require.NoError(t, err)
		assert.Equal(t, "welcome", got.Name)
		assert.Equal(t, "<p>Hello {{first_name}}</p>", got.HTMLBody)
	})

	t.Run("get unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list is ordered by name", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &models.Template{Name: "alert"}))

		templates, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, templates, 2)
		assert.Equal(t, "alert", templates[0].Name)
		assert.Equal(t, "welcome", templates[1].Name)
	})

	t.Run("update", func(t *testing.T) {
		tmpl.Subject = "Welcome to the team"
		require.NoError(t, repo.Update(ctx, tmpl))

		got, err := repo.GetByID(ctx, tmpl.ID)
		require.NoError(t, err)
		assert.Equal(t, "Welcome to the team", got.Subject)
	})

	t.Run("update unknown id", func(t *testing.T) {
		err := repo.Update(ctx, &models.Template{ID: "00000000-0000-0000-0000-000000000000", Name: "ghost"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, tmpl.ID))

		_, err := repo.GetByID(ctx, tmpl.ID)
		assert.Error(t, err)
	})
}

func TestTemplateVariableRepository(t *testing.T) {
	db := setupTestDB(t)
	templates := NewBunTemplateRepository(db)
	variables := NewBunTemplateVariableRepository(db)
	ctx := context.Background()

	tmpl := &models.Template{Name: "welcome"}
	require.NoError(t, templates.Create(ctx, tmpl))

	t.Run("create requires template and name", func(t *testing.T) {
		assert.Error(t, variables.Create(ctx, &models.TemplateVariable{Name: "orphan"}))
		assert.Error(t, variables.Create(ctx, &models.TemplateVariable{TemplateID: tmpl.ID}))
	})

	first := &models.TemplateVariable{TemplateID: tmpl.ID, Name: "first_name", DefaultValue: "there"}
	require.NoError(t, variables.Create(ctx, first))
	require.NoError(t, variables.Create(ctx, &models.TemplateVariable{TemplateID: tmpl.ID, Name: "company"}))

	got, err := variables.ListByTemplateID(ctx, tmpl.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "company", got[0].Name)
	assert.Equal(t, "first_name", got[1].Name)
	assert.Equal(t, "there", got[1].DefaultValue)

	require.NoError(t, variables.Delete(ctx, first.ID))
	got, err = variables.ListByTemplateID(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
