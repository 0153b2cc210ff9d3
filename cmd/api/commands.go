package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carojasb94/collection-agency/internal/accounts/api"
	"github.com/carojasb94/collection-agency/internal/platform/database"
	"github.com/carojasb94/collection-agency/internal/platform/server"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			srv := server.NewServer(
				a.logger,
				a.cfg.Server,
				api.NewAccountsHandler(a.debtSvc, a.importSvc, a.cfg.Server.MaxUploadMB<<20),
				api.NewAgencyHandler(a.agencySvc),
			)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Run() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if err != nil {
					a.logger.Error("server startup failed", zap.Error(err))
				}
				return err
			case sig := <-stop:
				a.logger.Info("shutting down", zap.String("signal", sig.String()))
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if err := database.Migrate(a.db); err != nil {
				return err
			}
			a.logger.Info("schema migrated")
			return nil
		},
	}
}

func newImportCmd(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import debts from a CSV file on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("opening %s: %w", file, err)
			}
			defer f.Close()

			summary, err := a.importSvc.Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created=%d duplicated=%d failed=%d\n",
				summary.Created, summary.Duplicated, summary.Failed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newAgencyCmd(configPath *string) *cobra.Command {
	agencyCmd := &cobra.Command{
		Use:   "agency",
		Short: "Manage collection agencies",
	}

	var name string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a collection agency",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--name is required")
			}
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			agency, err := a.agencySvc.Create(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "agency %d created: %s\n", agency.ID, agency.Name)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "agency name")

	agencyCmd.AddCommand(createCmd)
	return agencyCmd
}
