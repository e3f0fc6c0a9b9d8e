package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gregcorwin/Email/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "emailapi",
	Short: "API server for the email template manager",
	Long: `emailapi serves the email template manager backend: the template CRUD
API and the privileged RLS policy introspection endpoint. Authentication is
delegated to the hosted identity provider; role assignments live in the local
user_roles table.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
