package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/instance"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

// NewLoaderCmd creates the loader command with subcommands.
func NewLoaderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loader",
		Short: "Manage mod loaders",
		Long:  "Install mod loaders into existing instances and servers",
	}

	cmd.AddCommand(newLoaderInstallCmd())

	return cmd
}

func newLoaderInstallCmd() *cobra.Command {
	var (
		server  bool
		backend string
		version string
	)

	cmd := &cobra.Command{
		Use:   "install <instance> <kind>",
		Short: "Install a mod loader",
		Long:  "Install fabric, quilt, forge or neoforge into an existing instance or, with --server, a server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoaderInstall(cmd, instance.LoaderOptions{
				Name:          args[0],
				IsServer:      server,
				LoaderRequest: instance.LoaderRequest{Kind: args[1], Backend: backend, Version: version},
			})
		},
	}

	cmd.Flags().BoolVar(&server, "server", false, "Target a server instead of a client instance")
	cmd.Flags().StringVar(&backend, "backend", "", "Fabric-family backend (fabric, legacy_fabric, babric, cursed_legacy, ornithe)")
	cmd.Flags().StringVar(&version, "version", "", "Loader version, latest when empty")

	return cmd
}

func runLoaderInstall(cmd *cobra.Command, opts instance.LoaderOptions) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	err = withProgress(cmd, func(ctx context.Context, progress chan<- orchestrator.Event) error {
		opts.Progress = progress
		return a.assembler.InstallLoader(ctx, opts)
	})
	if err != nil {
		return err
	}

	logger.Success("Loader installed", logger.Fields{"name": opts.Name, "loader": opts.Kind})
	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s into %s\n", opts.Kind, opts.Name)
	return nil
}
