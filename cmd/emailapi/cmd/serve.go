package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gregcorwin/Email/internal/db/bunx"
	"github.com/gregcorwin/Email/internal/identity"
	"github.com/gregcorwin/Email/internal/introspect"
	"github.com/gregcorwin/Email/internal/repository"
	"github.com/gregcorwin/Email/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the email template API server",
	Long:  `Starts the HTTP server with the template CRUD API and the RLS policy introspection endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The service-level connection: this is the privileged query path,
		// it bypasses row-level security.
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		templateRepo := repository.NewBunTemplateRepository(db)
		variableRepo := repository.NewBunTemplateVariableRepository(db)
		userRoleRepo := repository.NewBunUserRoleRepository(db)
		policyRepo := repository.NewBunPolicyRepository(db)

		// Identity verification uses the public anon key so the provider's
		// own checks always apply.
		identityClient := identity.NewClient(cfg.AuthURL, cfg.AuthAnonKey)

		introspection := introspect.NewHandler(identityClient, userRoleRepo, policyRepo, cfg.AllowedOrigin)

		corsOpts := server.DefaultCORSOptions(cfg.AllowedOrigin)
		router := server.NewRouter(server.RouterOptions{
			Templates:     templateRepo,
			Variables:     variableRepo,
			Introspection: introspection,
			CORSOptions:   &corsOpts,
		})

		httpServer := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		}

		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			log.Printf("emailapi listening on %s", cfg.ServerAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("server failed: %v", err)
			}
		}()

		<-done
		log.Printf("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Printf("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
