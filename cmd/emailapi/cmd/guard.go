package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregcorwin/Email/internal/guard"
	"github.com/gregcorwin/Email/internal/identity"
)

var guardCmd = &cobra.Command{
	Use:   "guard",
	Short: "Evaluate navigation guard decisions",
}

// The check subcommand runs the same decision function the client-side guard
// runs, against the live identity provider. Useful for verifying what a given
// access token can reach without driving a browser.
var guardCheckCmd = &cobra.Command{
	Use:   "check <access-token> <target>",
	Short: "Decide whether a session may navigate to a target route",
	Long: `Evaluates one navigation attempt for the session behind the given access
token, e.g. "emailapi guard check eyJhbG... /designs". The target may carry
the step-up marker: "/auth?stepUpMfa=true".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, target := args[0], args[1]

		if cfg.JWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required to decode access tokens")
		}

		client := identity.NewClient(cfg.AuthURL, cfg.AuthAnonKey)
		session := identity.NewSessionClient(client, []byte(cfg.JWTSecret))
		session.SetSession(token)

		decision, location, err := runGuardCheck(cmd.Context(), session, target)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "decision: %s\nlocation: %s\n", decision, location)
		return nil
	},
}

// runGuardCheck evaluates one navigation attempt over a fresh navigator and
// reports the decision plus the location it lands on.
func runGuardCheck(ctx context.Context, provider guard.IdentityProvider, target string) (guard.Decision, string, error) {
	g := guard.NewGuard(provider, guard.DefaultRouteTable())
	nav := guard.NewNavigator(g)

	decision, err := nav.Navigate(ctx, target)
	if err != nil {
		return decision, "", fmt.Errorf("evaluate navigation: %w", err)
	}
	return decision, nav.Current(), nil
}

func init() {
	rootCmd.AddCommand(guardCmd)
	guardCmd.AddCommand(guardCheckCmd)
}
