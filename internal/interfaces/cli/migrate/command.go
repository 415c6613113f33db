package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orris-inc/passage/internal/infrastructure/database"
	"github.com/orris-inc/passage/internal/infrastructure/migration"
	"github.com/orris-inc/passage/internal/interfaces/cli/bootstrap"
)

var (
	env        string
	configPath string
	dryRun     bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Create or update the ledger tables from the persistence models.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(newUpCommand())

	return cmd
}

func newUpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply the schema",
		Long:  `Create missing tables, columns and indexes for every ledger model.`,
		RunE:  runUp,
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the models without touching the database")

	return cmd
}

func runUp(cmd *cobra.Command, args []string) error {
	_, log, err := bootstrap.InitDatabaseOnly(env, configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	manager := migration.NewManager(dryRun)
	if err := manager.Migrate(database.Get(), migration.AutoMigrateModels()...); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "migrations applied with strategy %s\n", manager.GetStrategy().GetName())
	return nil
}
