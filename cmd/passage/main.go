package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/passage/internal/interfaces/cli/admin"
	"github.com/orris-inc/passage/internal/interfaces/cli/migrate"
	"github.com/orris-inc/passage/internal/interfaces/cli/server"
	"github.com/orris-inc/passage/internal/interfaces/cli/sweep"
	"github.com/orris-inc/passage/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "passage",
		Short:        "Passage - VPN subscription ledger and client profile service",
		Long:         `Passage keeps the subscription ledger, serves client profiles for every supported proxy protocol and runs renewal, alert and cleanup sweeps.`,
		Version:      version.String(),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		sweep.NewCommand(),
		admin.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
