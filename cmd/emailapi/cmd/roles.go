package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/gregcorwin/Email/internal/db/bunx"
	"github.com/gregcorwin/Email/internal/db/models"
	"github.com/gregcorwin/Email/internal/repository"
)

// Role assignments are written out of band by an operator; the request path
// only ever reads them.
var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage role assignments in the Role Store",
	Long:  `Assign, list and revoke role labels for hosted-auth identities in the user_roles table.`,
}

var rolesAssignCmd = &cobra.Command{
	Use:   "assign <user-id> <role>",
	Short: "Assign a role to an identity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, role := args[0], args[1]

		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		repo := repository.NewBunUserRoleRepository(db)
		ctx := context.Background()

		// Refuse duplicate assignments up front: the introspection service
		// treats an ambiguous store as an error, so don't create one.
		existing, err := repo.FindRole(ctx, userID, role)
		if err != nil {
			return fmt.Errorf("failed to check existing assignment: %w", err)
		}
		if existing != nil {
			log.Printf("User %s already has role %q (assignment %s)", userID, role, existing.ID)
			return nil
		}

		assignment := &models.UserRole{UserID: userID, Role: role}
		if err := repo.Create(ctx, assignment); err != nil {
			return fmt.Errorf("failed to assign role: %w", err)
		}

		log.Printf("Assigned role %q to user %s (assignment %s)", role, userID, assignment.ID)
		return nil
	},
}

var rolesListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List an identity's role assignments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		repo := repository.NewBunUserRoleRepository(db)

		assignments, err := repo.ListByUserID(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list roles: %w", err)
		}

		if len(assignments) == 0 {
			log.Printf("No role assignments for user %s", args[0])
			return nil
		}
		for _, a := range assignments {
			log.Printf("  %s  %s  (assigned %s)", a.ID, a.Role, a.CreatedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var rolesRevokeCmd = &cobra.Command{
	Use:   "revoke <assignment-id>",
	Short: "Revoke a role assignment by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		repo := repository.NewBunUserRoleRepository(db)

		if err := repo.Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to revoke assignment: %w", err)
		}

		log.Printf("Revoked assignment %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
	rolesCmd.AddCommand(rolesAssignCmd)
	rolesCmd.AddCommand(rolesListCmd)
	rolesCmd.AddCommand(rolesRevokeCmd)
}
